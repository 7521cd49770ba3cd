package cache

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

var errNilLoader = errors.New("cache: loader is required")

type item struct {
	value    any
	deadline time.Time
}

func (it item) expired(now time.Time) bool {
	return !it.deadline.IsZero() && !now.Before(it.deadline)
}

// Store is an in-process TTL map with per-key load deduplication. A
// non-positive ttl keeps entries until they are deleted.
type Store struct {
	ttl   time.Duration
	clock func() time.Time
	group singleflight.Group

	mu    sync.RWMutex
	items map[string]item
}

func NewStore(ttl time.Duration) *Store {
	return NewStoreWithClock(ttl, nil)
}

func NewStoreWithClock(ttl time.Duration, clock func() time.Time) *Store {
	if clock == nil {
		clock = time.Now
	}
	return &Store{ttl: ttl, clock: clock, items: map[string]item{}}
}

func (s *Store) Get(_ context.Context, key string) (any, bool) {
	if key == "" {
		return nil, false
	}

	s.mu.RLock()
	it, ok := s.items[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if it.expired(s.clock()) {
		s.mu.Lock()
		if cur, still := s.items[key]; still && cur.deadline.Equal(it.deadline) {
			delete(s.items, key)
		}
		s.mu.Unlock()
		return nil, false
	}
	return it.value, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	it := item{value: value}
	if s.ttl > 0 {
		it.deadline = s.clock().Add(s.ttl)
	}

	s.mu.Lock()
	s.items[key] = it
	s.mu.Unlock()
}

func (s *Store) Delete(_ context.Context, key string) {
	s.mu.Lock()
	delete(s.items, key)
	s.mu.Unlock()
	s.group.Forget(key)
}

func (s *Store) DeletePrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.items {
		if strings.HasPrefix(key, prefix) {
			delete(s.items, key)
			s.group.Forget(key)
		}
	}
}

// Len drops expired entries and counts the rest.
func (s *Store) Len() int {
	now := s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	for key, it := range s.items {
		if it.expired(now) {
			delete(s.items, key)
		}
	}
	return len(s.items)
}

// GetOrLoad returns the cached value for key or runs loader once for all
// concurrent callers and caches its result. Errors are not cached.
func (s *Store) GetOrLoad(ctx context.Context, key string, loader func(context.Context) (any, error)) (any, error) {
	if loader == nil {
		return nil, errNilLoader
	}
	if key == "" {
		return loader(ctx)
	}
	if v, ok := s.Get(ctx, key); ok {
		return v, nil
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		if v, ok := s.Get(ctx, key); ok {
			return v, nil
		}
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}
		s.Set(ctx, key, v)
		return v, nil
	})
	return v, err
}
