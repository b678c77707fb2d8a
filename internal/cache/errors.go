package cache

import "errors"

var (
	// ErrCacheMiss is returned by Get when nothing valid is stored.
	// Empty and expired caches are indistinguishable to the caller.
	ErrCacheMiss = errors.New("cache not available")

	// ErrInvalidTTL is returned by constructors given a negative TTL.
	ErrInvalidTTL = errors.New("invalid cache TTL")
)
