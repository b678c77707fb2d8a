// Handles caching of a single upstream response for a bounded time
package cache

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTTL is the lifetime used when no TTL is configured (86400 minutes).
const DefaultTTL = 86400 * time.Minute

// MaxMinutes is the largest TTL in minutes that fits in a time.Duration.
const MaxMinutes = math.MaxInt64 / int64(time.Minute)

// Minutes converts a TTL expressed in minutes, the unit used by configuration files.
// Values beyond MaxMinutes saturate instead of overflowing.
func Minutes(n int) time.Duration {
	if int64(n) > MaxMinutes {
		return time.Duration(math.MaxInt64)
	}
	if int64(n) < -MaxMinutes {
		return time.Duration(math.MinInt64)
	}
	return time.Duration(n) * time.Minute
}

// Option configures a TTLCache.
type Option func(*settings)

type settings struct {
	now func() time.Time
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}

// TTLCache holds zero or one value, valid for ttl after it was set.
//
// Expiry is evaluated lazily on every access: nothing runs in the background and an
// expired value stays in memory until it is overwritten or cleared.
// All methods are safe for concurrent use.
type TTLCache[T any] struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.RWMutex
	value     T
	present   bool
	expiresAt time.Time
}

// New creates an empty cache whose entries live for ttl.
// A zero ttl makes every entry expire immediately.
func New[T any](ttl time.Duration, opts ...Option) (*TTLCache[T], error) {
	if ttl < 0 {
		return nil, fmt.Errorf("%w: %s is negative", ErrInvalidTTL, ttl)
	}

	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}

	return &TTLCache[T]{
		ttl: ttl,
		now: s.now,
	}, nil
}

// TTL returns the configured lifetime of an entry.
func (c *TTLCache[T]) TTL() time.Duration {
	return c.ttl
}

// IsExpired reports whether the cache holds no valid value.
func (c *TTLCache[T]) IsExpired() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.expiredLocked()
}

// expiredLocked compares the deadline fixed at Set time against a fresh clock reading.
func (c *TTLCache[T]) expiredLocked() bool {
	if !c.present {
		return true
	}
	return !c.now().Before(c.expiresAt)
}

// Set stores value and restarts its lifetime, discarding any previous entry.
// Absent values (nil pointers, interfaces, slices, maps, channels and funcs) are ignored
// and leave the current entry untouched. An interface holding a nil pointer, such as
// (*T)(nil) stored in an any, is absent too.
func (c *TTLCache[T]) Set(value T) {
	if isAbsent(value) {
		logrus.Debugf("Ignoring absent value, keeping current cache entry")
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.value = value
	c.present = true
	c.expiresAt = c.now().Add(c.ttl)

	logrus.Debugf("Cached value until %s", c.expiresAt.Format(time.RFC3339))
}

// Get returns the stored value, or ErrCacheMiss when the cache is empty or expired.
func (c *TTLCache[T]) Get() (T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		var zero T
		return zero, ErrCacheMiss
	}
	return c.value, nil
}

// ExpiresAt returns the deadline of the stored value.
// ok is false when the cache is empty or already expired.
func (c *TTLCache[T]) ExpiresAt() (deadline time.Time, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.expiredLocked() {
		return time.Time{}, false
	}
	return c.expiresAt, true
}

// Clear empties the cache. Clearing an empty cache does nothing.
func (c *TTLCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	c.value = zero
	c.present = false
	c.expiresAt = time.Time{}

	logrus.Debugf("Cache cleared")
}

func isAbsent[T any](value T) bool {
	v := reflect.ValueOf(&value).Elem()
	if v.Kind() == reflect.Interface {
		if v.IsNil() {
			return true
		}
		v = v.Elem()
	}
	return isNil(v)
}

func isNil(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return v.IsNil()
	default:
		return false
	}
}
