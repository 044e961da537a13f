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
		return "contests", nil
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
			v, err := store.GetOrLoad(context.Background(), "contests:upcoming:29342400", loader)
			if err != nil {
				errCh <- err
				return
			}
			if got, _ := v.(string); got != "contests" {
				errCh <- errUnexpectedValue
			}
		}()
	}

	close(start)
	wg.Wait()
	close(errCh)
	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("loader called %d times, want 1", got)
	}
}

func TestStore_ExpiresAfterTTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 6, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "k", 1)
	if _, ok := store.Get(context.Background(), "k"); !ok {
		t.Fatalf("expected fresh entry to be readable")
	}

	now = now.Add(2 * time.Minute)
	if _, ok := store.Get(context.Background(), "k"); ok {
		t.Fatalf("expected entry to expire")
	}
	if store.Len() != 0 {
		t.Fatalf("expected expired entry to be evicted, len=%d", store.Len())
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(context.Background(), "contests:upcoming:1", 1)
	store.Set(context.Background(), "contests:upcoming:2", 2)
	store.Set(context.Background(), "users:leaderboard", 3)

	store.DeletePrefix(context.Background(), "contests:")

	if store.Len() != 1 {
		t.Fatalf("expected one remaining entry, len=%d", store.Len())
	}
	if _, ok := store.Get(context.Background(), "users:leaderboard"); !ok {
		t.Fatalf("expected unrelated key to survive")
	}
}

func TestStore_GetOrLoad_DoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var calls atomic.Int32
	loader := func(context.Context) (any, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("db down")
		}
		return "ok", nil
	}

	if _, err := store.GetOrLoad(context.Background(), "k", loader); err == nil {
		t.Fatalf("expected first load to fail")
	}
	v, err := store.GetOrLoad(context.Background(), "k", loader)
	if err != nil || v != "ok" {
		t.Fatalf("expected retry to load, got v=%v err=%v", v, err)
	}
}

var errUnexpectedValue = errors.New("unexpected loaded value")

func TestStore_Stats(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	loader := func(context.Context) (any, error) { return 1, nil }

	for range 3 {
		if _, err := store.GetOrLoad(context.Background(), "user:leaderboard:total:100", loader); err != nil {
			t.Fatalf("load: %v", err)
		}
	}

	got := store.Stats()
	if got != (Stats{Hits: 2, Misses: 1, Loads: 1}) {
		t.Fatalf("unexpected stats: %+v", got)
	}
}

func TestStore_DeletePrefixSweepsExpired(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	store := NewStore(time.Minute)
	store.now = func() time.Time { return now }

	store.Set(context.Background(), "user:leaderboard:total:100", 1)
	now = now.Add(2 * time.Minute)
	store.Set(context.Background(), "contest:upcoming:1", 2)

	store.DeletePrefix(context.Background(), "nothing:")
	if store.Len() != 1 {
		t.Fatalf("expected expired entry to be swept, len=%d", store.Len())
	}
}
