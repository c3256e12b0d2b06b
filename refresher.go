package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// refresher re-fetches the sheet export on a fixed cadence and publishes
// each successful payload as a new store snapshot. The cadence fires
// regardless of whether the previous fetch finished; the store's
// generation guard keeps out-of-order completions harmless.
type refresher struct {
	client *sheetClient
	store  *recordStore
	cron   *cron.Cron
}

func newRefresher(client *sheetClient, store *recordStore, interval time.Duration) (*refresher, error) {
	r := &refresher{
		client: client,
		store:  store,
		cron:   cron.New(),
	}
	spec := fmt.Sprintf("@every %ds", int(interval.Seconds()))
	if _, err := r.cron.AddFunc(spec, func() { r.runCycle() }); err != nil {
		return nil, fmt.Errorf("scheduling refresh: %w", err)
	}
	return r, nil
}

// Start begins the cadence and kicks off an immediate first fetch.
func (r *refresher) Start() {
	r.cron.Start()
	go r.runCycle()
}

// Stop unregisters the trigger. In-flight cycles are left to finish; their
// results still pass through the generation guard.
func (r *refresher) Stop() {
	r.cron.Stop()
}

func (r *refresher) runCycle() {
	if _, err := r.refreshOnce(context.Background()); err != nil {
		log.Printf("Error refreshing sheet data: %v", err)
	}
}

// refreshOnce runs one fetch cycle and returns the resulting status. A
// fetch failure is recorded on the store and returned; the previous
// snapshot stays published.
func (r *refresher) refreshOnce(ctx context.Context) (FetchStatus, error) {
	gen := r.store.begin()
	fetchID := uuid.NewString()

	records, err := r.client.fetchRecords(ctx)
	if err != nil {
		r.store.fail(gen, err)
		_, status := r.store.snapshot()
		return status, err
	}

	if r.store.publish(gen, fetchID, records) {
		log.Printf("Published %d record(s) from sheet (generation %d)", len(records), gen)
	}
	_, status := r.store.snapshot()
	return status, nil
}
