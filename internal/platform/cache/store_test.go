package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoad_UsesSingleFlight(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32

	loader := func(context.Context) (any, error) {
		calls.Add(1)
		time.Sleep(20 * time.Millisecond)
		return "value", nil
	}

	const workers = 32
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)
	errCh := make(chan error, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			v, err := store.GetOrLoad(context.Background(), "league:id:l1", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "value" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", 1)
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry")
	}

	now = now.Add(time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire at ttl")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be removed")
	}
}

func TestStore_MaxEntriesEvictsOldest(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 9, 7, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute, WithMaxEntries(2))
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "a", 1)
	now = now.Add(time.Second)
	store.Set(context.Background(), "b", 2)
	now = now.Add(time.Second)
	store.Set(context.Background(), "c", 3)

	if store.Len() != 2 {
		t.Fatalf("unexpected size: %d", store.Len())
	}
	if _, ok := store.Get(context.Background(), "a"); ok {
		t.Fatalf("expected oldest entry to be evicted")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("db down")
	if _, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) { return nil, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped loader error, got %v", err)
	}
	v, err := store.GetOrLoad(context.Background(), "k", func(context.Context) (any, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to load, got v=%v err=%v", v, err)
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), "league:members:l1", 1)
	store.Set(context.Background(), "league:members:l2", 2)
	store.Set(context.Background(), "league:id:l1", 3)

	store.DeletePrefix(context.Background(), "league:members:")
	if store.Len() != 1 {
		t.Fatalf("unexpected size after prefix delete: %d", store.Len())
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")
