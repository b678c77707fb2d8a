package cache

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Shared hands out one cache instance to every consumer it is injected into.
//
// The instance is created on first access and replaced by a fresh, empty one whenever it
// is found expired, which releases the memory held by a stale value. Writers should go
// through Set: a value set on an instance obtained from Instance just before a
// replacement is lost, and the next access simply misses.
type Shared[T any] struct {
	ttl  time.Duration
	opts []Option

	mu      sync.Mutex
	current *TTLCache[T]
}

// NewShared creates a holder whose instances use ttl and opts.
func NewShared[T any](ttl time.Duration, opts ...Option) (*Shared[T], error) {
	// Validate once so Instance never has to report an error.
	if _, err := New[T](ttl, opts...); err != nil {
		return nil, err
	}
	return &Shared[T]{
		ttl:  ttl,
		opts: opts,
	}, nil
}

// Instance returns the current cache, replacing it first if it is missing or expired.
func (s *Shared[T]) Instance() *TTLCache[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.instanceLocked()
}

// Set stores value on the current instance without releasing the holder lock in
// between, so a concurrent Instance call cannot discard the instance being written.
func (s *Shared[T]) Set(value T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.instanceLocked().Set(value)
}

// Clear empties the current instance.
func (s *Shared[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != nil {
		s.current.Clear()
	}
}

func (s *Shared[T]) instanceLocked() *TTLCache[T] {
	if s.current != nil && !s.current.IsExpired() {
		return s.current
	}

	if s.current != nil {
		logrus.Debugf("Replacing expired cache instance")
	}
	// ttl was validated by NewShared
	s.current, _ = New[T](s.ttl, s.opts...)
	return s.current
}

// TTL returns the lifetime configured for every instance.
func (s *Shared[T]) TTL() time.Duration {
	return s.ttl
}
