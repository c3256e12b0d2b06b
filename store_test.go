package main

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordStore(t *testing.T) {
	t.Run("publish installs a snapshot", func(t *testing.T) {
		s := newRecordStore()
		gen := s.begin()

		ok := s.publish(gen, "fetch-1", []RawRecord{{"Nombre": "Ana"}})

		require.True(t, ok)
		records, status := s.snapshot()
		assert.Len(t, records, 1)
		assert.Equal(t, gen, status.Generation)
		assert.Equal(t, "fetch-1", status.FetchID)
		assert.Equal(t, 1, status.RecordCount)
		require.NotNil(t, status.FetchedAt)
		assert.Empty(t, status.LastError)
	})

	t.Run("stale publish cannot overwrite a newer snapshot", func(t *testing.T) {
		s := newRecordStore()
		older := s.begin()
		newer := s.begin()

		require.True(t, s.publish(newer, "fetch-new", []RawRecord{{"Nombre": "Rosa"}}))
		assert.False(t, s.publish(older, "fetch-old", []RawRecord{{"Nombre": "Ana"}}))

		records, status := s.snapshot()
		require.Len(t, records, 1)
		assert.Equal(t, "Rosa", records[0]["Nombre"])
		assert.Equal(t, "fetch-new", status.FetchID)
	})

	t.Run("failure keeps the previous snapshot and surfaces the error", func(t *testing.T) {
		s := newRecordStore()
		require.True(t, s.publish(s.begin(), "fetch-1", []RawRecord{{"Nombre": "Ana"}}))

		s.fail(s.begin(), errors.New("sheet export returned status 500"))

		records, status := s.snapshot()
		assert.Len(t, records, 1)
		assert.Equal(t, "sheet export returned status 500", status.LastError)
	})

	t.Run("stale failure is dropped", func(t *testing.T) {
		s := newRecordStore()
		older := s.begin()
		require.True(t, s.publish(s.begin(), "fetch-2", nil))

		s.fail(older, errors.New("late failure"))

		_, status := s.snapshot()
		assert.Empty(t, status.LastError)
	})

	t.Run("successful publish clears the error state", func(t *testing.T) {
		s := newRecordStore()
		s.fail(s.begin(), errors.New("boom"))

		_, status := s.snapshot()
		require.Equal(t, "boom", status.LastError)

		require.True(t, s.publish(s.begin(), "fetch-3", []RawRecord{}))
		_, status = s.snapshot()
		assert.Empty(t, status.LastError)
	})

	t.Run("empty store reports no fetch time", func(t *testing.T) {
		s := newRecordStore()

		records, status := s.snapshot()
		assert.Nil(t, records)
		assert.Nil(t, status.FetchedAt)
		assert.Zero(t, status.Generation)
	})
}
