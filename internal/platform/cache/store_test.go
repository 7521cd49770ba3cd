package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestStore_GetOrLoadDeduplicatesConcurrentLoads(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	var loads atomic.Int32
	release := make(chan struct{})
	loader := func(context.Context) (any, error) {
		loads.Add(1)
		<-release
		return "catalog", nil
	}

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan any, callers)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := store.GetOrLoad(context.Background(), "survey:catalog", loader)
			if err != nil {
				t.Errorf("load: %v", err)
				return
			}
			results <- v
		}()
	}

	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()
	close(results)

	for v := range results {
		if v != "catalog" {
			t.Fatalf("unexpected value %v", v)
		}
	}
	if got := loads.Load(); got != 1 {
		t.Fatalf("loader ran %d times, want 1", got)
	}
	if _, err := store.GetOrLoad(context.Background(), "survey:catalog", loader); err != nil || loads.Load() != 1 {
		t.Fatalf("expected cached value on later call, loads=%d err=%v", loads.Load(), err)
	}
}

func TestStore_GetOrLoadDoesNotCacheErrors(t *testing.T) {
	t.Parallel()

	store := NewStore(time.Minute)
	boom := errors.New("db down")
	calls := 0
	loader := func(context.Context) (any, error) {
		calls++
		if calls == 1 {
			return nil, boom
		}
		return 42, nil
	}

	if _, err := store.GetOrLoad(t.Context(), "k", loader); !errors.Is(err, boom) {
		t.Fatalf("expected loader error, got %v", err)
	}
	v, err := store.GetOrLoad(t.Context(), "k", loader)
	if err != nil || v != 42 {
		t.Fatalf("expected retry to load 42, got %v %v", v, err)
	}
	if _, err := store.GetOrLoad(t.Context(), "k", nil); err == nil {
		t.Fatalf("expected error for nil loader")
	}
}

func TestStore_TTL(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(time.Hour, func() time.Time { return now })

	store.Set(t.Context(), "survey:session:1", 1)
	store.Set(t.Context(), "survey:session:2", 2)

	now = now.Add(59 * time.Minute)
	if _, ok := store.Get(t.Context(), "survey:session:1"); !ok {
		t.Fatalf("entry expired early")
	}
	store.Set(t.Context(), "survey:session:2", 2)

	now = now.Add(time.Minute)
	if _, ok := store.Get(t.Context(), "survey:session:1"); ok {
		t.Fatalf("entry should expire at its deadline")
	}
	if got := store.Len(); got != 1 {
		t.Fatalf("expected refreshed entry to survive, got %d live", got)
	}
}

func TestStore_NoTTLKeepsEntries(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 9, 1, 18, 0, 0, 0, time.UTC)
	store := NewStoreWithClock(0, func() time.Time { return now })
	store.Set(t.Context(), "k", "v")

	now = now.Add(24 * 365 * time.Hour)
	if _, ok := store.Get(t.Context(), "k"); !ok {
		t.Fatalf("entry without ttl should not expire")
	}
	if _, ok := store.Get(t.Context(), ""); ok {
		t.Fatalf("empty key should never hit")
	}
}

func TestStore_DeletePrefix(t *testing.T) {
	t.Parallel()

	store := NewStore(0)
	store.Set(t.Context(), "event:list:active", "a")
	store.Set(t.Context(), "event:id:1", "b")
	store.Set(t.Context(), "survey:catalog", "c")

	store.DeletePrefix(t.Context(), "event:")

	if store.Len() != 1 {
		t.Fatalf("expected only the catalog to remain, got %d", store.Len())
	}
	if _, ok := store.Get(t.Context(), "survey:catalog"); !ok {
		t.Fatalf("unrelated entry should survive")
	}
}
