// Package services: services/catalog_store.go
package services

import (
	"context"
	"sync"
	"time"

	"school-activities/logger"
	"school-activities/models"
)

// FetchRecorder receives one observation per catalog fetch.
type FetchRecorder interface {
	CatalogFetch(ok bool, d time.Duration)
}

// CatalogStore keeps the most recently fetched catalog and coalesces refreshes.
// At most one fetch runs at a time; refreshes requested while it runs share a single
// follow-up fetch, so snapshots are always applied in request order.
type CatalogStore struct {
	api      ActivityAPI
	recorder FetchRecorder
	timeout  time.Duration

	mu         sync.Mutex
	current    *models.Catalog
	generation uint64
	running    *refreshCall
	queued     *refreshCall
}

// refreshCall is one fetch shared by every caller that joined it. ctx belongs to the
// caller that created the call, detached from its cancellation.
type refreshCall struct {
	ctx     context.Context
	done    chan struct{}
	catalog *models.Catalog
	err     error
}

func newRefreshCall(ctx context.Context) *refreshCall {
	return &refreshCall{ctx: context.WithoutCancel(ctx), done: make(chan struct{})}
}

// NewCatalogStore creates a store. timeout bounds each shared fetch; recorder may be nil.
func NewCatalogStore(api ActivityAPI, recorder FetchRecorder, timeout time.Duration) *CatalogStore {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &CatalogStore{api: api, recorder: recorder, timeout: timeout}
}

// Refresh fetches a fresh catalog, or joins the fetch that will run next if one is
// already in flight. ctx only bounds the wait: cancelling it never aborts a fetch
// other callers depend on.
func (s *CatalogStore) Refresh(ctx context.Context) (*models.Catalog, error) {
	s.mu.Lock()
	var call *refreshCall
	switch {
	case s.running == nil:
		call = newRefreshCall(ctx)
		s.running = call
		go s.run(call)
	case s.queued == nil:
		call = newRefreshCall(ctx)
		s.queued = call
	default:
		call = s.queued
	}
	s.mu.Unlock()

	select {
	case <-call.done:
		return call.catalog, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// run performs call, then any refresh that was queued while it ran. Each fetch runs
// under the context of the caller that created its call.
func (s *CatalogStore) run(call *refreshCall) {
	for call != nil {
		s.fetch(call)

		s.mu.Lock()
		if call.err == nil {
			s.current = call.catalog
			s.generation++
		}
		close(call.done)
		call = s.queued
		s.queued = nil
		s.running = call
		s.mu.Unlock()
	}
}

func (s *CatalogStore) fetch(call *refreshCall) {
	ctx, cancel := context.WithTimeout(call.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	call.catalog, call.err = s.api.FetchCatalog(ctx)
	elapsed := time.Since(start)

	if s.recorder != nil {
		s.recorder.CatalogFetch(call.err == nil, elapsed)
	}
	if call.err != nil {
		logger.Error.Printf("CatalogStore: catalog fetch failed after %v: %v", elapsed, call.err)
		return
	}
	logger.Debug.Printf("CatalogStore: fetched %d activities in %v", call.catalog.Len(), elapsed)
}

// Current returns the last successfully fetched catalog (nil before the first one)
// and its generation.
func (s *CatalogStore) Current() (*models.Catalog, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.generation
}

// Generation counts successful fetches.
func (s *CatalogStore) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
