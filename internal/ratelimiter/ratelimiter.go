// Package ratelimiter implements fixed-window admission control over a
// pluggable counter store, so a single-instance deployment can run on the
// in-memory store while multi-instance ones can plug in a shared backend.
package ratelimiter

import (
	"fmt"
	"sync"
	"time"
)

// CounterStore atomically increments and returns the counter for a key. Keys
// carry the window bucket, so entries are only ever touched within one window
// and can be dropped afterwards.
type CounterStore interface {
	Incr(key string, ttl time.Duration) (int, error)
}

// Limiter allows at most limit requests per identity per fixed window.
// Windows are aligned to wall-clock boundaries and reset entirely at the
// boundary; near it a client can see up to twice the nominal rate, an
// accepted tradeoff for a defense-in-depth layer.
type Limiter struct {
	store  CounterStore
	scope  string
	limit  int
	window time.Duration
}

func New(store CounterStore, scope string, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, scope: scope, limit: limit, window: window}
}

// Allow records one request for identity and reports whether it is admitted.
// When denied, retryAfter is the time until the current window resets.
func (l *Limiter) Allow(identity string) (allowed bool, retryAfter time.Duration) {
	now := time.Now()
	bucket := now.Truncate(l.window)
	key := fmt.Sprintf("%s|%s|%d", l.scope, identity, bucket.Unix())

	count, err := l.store.Incr(key, l.window)
	if err != nil {
		// Fail open: the limiter is not the primary defense.
		return true, 0
	}
	if count > l.limit {
		return false, bucket.Add(l.window).Sub(now)
	}
	return true, 0
}

// MemoryStore is the in-process CounterStore. Entries expire with their
// window and are swept by a background cleaner.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*entry
	done    chan struct{}
}

type entry struct {
	count   int
	expires time.Time
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*entry),
		done:    make(chan struct{}),
	}
	go s.cleanup()
	return s
}

func (s *MemoryStore) Incr(key string, ttl time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	e, ok := s.entries[key]
	if !ok || e.expires.Before(now) {
		e = &entry{expires: now.Add(2 * ttl)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}

func (s *MemoryStore) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			now := time.Now()
			for key, e := range s.entries {
				if e.expires.Before(now) {
					delete(s.entries, key)
				}
			}
			s.mu.Unlock()
		}
	}
}

// Stop terminates the background cleaner.
func (s *MemoryStore) Stop() {
	close(s.done)
}
