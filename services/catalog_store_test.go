// file: services/catalog_store_test.go
package services

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"school-activities/models"
)

// gatedAPI blocks every FetchCatalog until release is called, and counts fetches.
type gatedAPI struct {
	MockActivityAPI
	fetches  atomic.Int32
	started  chan struct{}
	gate     chan struct{}
	catalogs []*models.Catalog
	err      error

	mu       sync.Mutex
	requests []any
}

// requestKey tags a refresh context so tests can see which caller's context a fetch ran under.
type requestKey struct{}

func newGatedAPI(catalogs ...*models.Catalog) *gatedAPI {
	return &gatedAPI{
		started:  make(chan struct{}, 16),
		gate:     make(chan struct{}),
		catalogs: catalogs,
	}
}

func (g *gatedAPI) FetchCatalog(ctx context.Context) (*models.Catalog, error) {
	n := int(g.fetches.Add(1))
	g.mu.Lock()
	g.requests = append(g.requests, ctx.Value(requestKey{}))
	g.mu.Unlock()
	g.started <- struct{}{}
	<-g.gate
	if g.err != nil {
		return nil, g.err
	}
	return g.catalogs[min(n, len(g.catalogs))-1], nil
}

func (g *gatedAPI) release() { close(g.gate) }

type recordedFetch struct {
	ok bool
}

type fakeRecorder struct {
	mu      sync.Mutex
	fetches []recordedFetch
}

func (r *fakeRecorder) CatalogFetch(ok bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetches = append(r.fetches, recordedFetch{ok: ok})
}

func catalogOf(names ...string) *models.Catalog {
	c := &models.Catalog{}
	for _, n := range names {
		c.Activities = append(c.Activities, models.Activity{Name: n, MaxParticipants: 1, Participants: []string{}})
	}
	return c
}

func TestCatalogStore_RefreshStoresSnapshot(t *testing.T) {
	api := new(MockActivityAPI)
	first := catalogOf("Chess")
	api.On("FetchCatalog", mock.Anything).Return(first, nil).Once()
	rec := &fakeRecorder{}

	store := NewCatalogStore(api, rec, time.Second)
	current, gen := store.Current()
	assert.Nil(t, current)
	assert.Zero(t, gen)

	got, err := store.Refresh(context.Background())
	require.NoError(t, err)
	assert.Same(t, first, got)

	current, gen = store.Current()
	assert.Same(t, first, current)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, []recordedFetch{{ok: true}}, rec.fetches)
	api.AssertExpectations(t)
}

func TestCatalogStore_FailedRefreshKeepsSnapshot(t *testing.T) {
	api := new(MockActivityAPI)
	first := catalogOf("Chess")
	api.On("FetchCatalog", mock.Anything).Return(first, nil).Once()
	api.On("FetchCatalog", mock.Anything).Return(nil, ErrUnavailable).Once()
	rec := &fakeRecorder{}

	store := NewCatalogStore(api, rec, time.Second)
	_, err := store.Refresh(context.Background())
	require.NoError(t, err)

	_, err = store.Refresh(context.Background())
	assert.True(t, errors.Is(err, ErrUnavailable))

	current, gen := store.Current()
	assert.Same(t, first, current)
	assert.Equal(t, uint64(1), gen)
	assert.Equal(t, []recordedFetch{{ok: true}, {ok: false}}, rec.fetches)
}

// Test: any number of refreshes started during one fetch share a single follow-up fetch
func TestCatalogStore_CoalescesConcurrentRefreshes(t *testing.T) {
	api := newGatedAPI(catalogOf("old"), catalogOf("new"))
	store := NewCatalogStore(api, nil, time.Second)

	results := make(chan *models.Catalog, 6)
	go func() {
		c, _ := store.Refresh(context.Background())
		results <- c
	}()
	<-api.started // first fetch is in flight

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, _ := store.Refresh(context.Background())
			results <- c
		}()
	}

	// wait until all five joined the queued call before letting fetches finish
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.queued != nil
	}, time.Second, time.Millisecond)
	time.Sleep(20 * time.Millisecond)

	api.release()
	wg.Wait()

	assert.Equal(t, int32(2), api.fetches.Load(), "one fetch plus one replay")

	seen := map[string]int{}
	for i := 0; i < 6; i++ {
		seen[(<-results).Names()[0]]++
	}
	assert.Equal(t, map[string]int{"old": 1, "new": 5}, seen)

	current, gen := store.Current()
	assert.Equal(t, []string{"new"}, current.Names())
	assert.Equal(t, uint64(2), gen)
}

func TestCatalogStore_CallerCancellationDoesNotAbortFetch(t *testing.T) {
	api := newGatedAPI(catalogOf("Chess"))
	store := NewCatalogStore(api, nil, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() {
		_, err := store.Refresh(ctx)
		errs <- err
	}()
	<-api.started

	cancel()
	assert.ErrorIs(t, <-errs, context.Canceled)

	api.release()
	require.Eventually(t, func() bool {
		return store.Generation() == 1
	}, time.Second, time.Millisecond)

	current, _ := store.Current()
	assert.Equal(t, []string{"Chess"}, current.Names())
}

func TestCatalogStore_SequentialRefreshesEachFetch(t *testing.T) {
	api := new(MockActivityAPI)
	api.On("FetchCatalog", mock.Anything).Return(catalogOf("A"), nil).Times(3)

	store := NewCatalogStore(api, nil, time.Second)
	for i := 0; i < 3; i++ {
		_, err := store.Refresh(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(3), store.Generation())
	api.AssertNumberOfCalls(t, "FetchCatalog", 3)
}

// Test: the follow-up fetch runs under the context of the caller that queued it,
// not the one whose request started the first fetch
func TestCatalogStore_QueuedFetchUsesQueuingCallerContext(t *testing.T) {
	api := newGatedAPI(catalogOf("old"), catalogOf("new"))
	store := NewCatalogStore(api, nil, time.Second)

	done := make(chan struct{}, 2)
	go func() {
		_, _ = store.Refresh(context.WithValue(context.Background(), requestKey{}, "first"))
		done <- struct{}{}
	}()
	<-api.started

	go func() {
		_, _ = store.Refresh(context.WithValue(context.Background(), requestKey{}, "second"))
		done <- struct{}{}
	}()
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return store.queued != nil
	}, time.Second, time.Millisecond)

	api.release()
	<-done
	<-done

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []any{"first", "second"}, api.requests)
}
