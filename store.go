package main

import (
	"sync"
	"time"
)

// recordStore holds the currently published record snapshot. Snapshots are
// replaced wholesale, never mutated in place, so handlers can iterate a
// snapshot while a refresh cycle builds the next one.
//
// Every fetch cycle takes a generation from begin before doing any work; a
// publish or failure only lands if no newer generation has published in the
// meantime. That keeps a late response from an old cycle from overwriting
// fresher state, since overlapping fetches are not otherwise de-duplicated.
type recordStore struct {
	mu sync.RWMutex

	issued     uint64
	generation uint64

	records   []RawRecord
	fetchID   string
	fetchedAt time.Time

	lastErr       string
	errGeneration uint64
}

func newRecordStore() *recordStore {
	return &recordStore{}
}

// begin allocates the generation for a new fetch cycle.
func (s *recordStore) begin() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// publish installs a new snapshot. It reports false, leaving the store
// untouched, when a newer generation has already published.
func (s *recordStore) publish(gen uint64, fetchID string, records []RawRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.generation {
		return false
	}
	s.generation = gen
	s.records = records
	s.fetchID = fetchID
	s.fetchedAt = time.Now()
	s.lastErr = ""
	s.errGeneration = 0
	return true
}

// fail records a fetch error. Errors from cycles older than the published
// snapshot, or older than an already-recorded error, are dropped.
func (s *recordStore) fail(gen uint64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen <= s.generation || gen <= s.errGeneration {
		return
	}
	s.lastErr = err.Error()
	s.errGeneration = gen
}

// snapshot returns the published records and their status. The slice must
// be treated as read-only by callers.
func (s *recordStore) snapshot() ([]RawRecord, FetchStatus) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := FetchStatus{
		FetchID:     s.fetchID,
		Generation:  s.generation,
		RecordCount: len(s.records),
		LastError:   s.lastErr,
	}
	if !s.fetchedAt.IsZero() {
		t := s.fetchedAt
		status.FetchedAt = &t
	}
	return s.records, status
}
