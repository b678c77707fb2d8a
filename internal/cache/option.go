package cache

import "github.com/samber/mo"

// Lookup is Get for callers that prefer an optional over an error.
func (c *TTLCache[T]) Lookup() mo.Option[T] {
	value, err := c.Get()
	if err != nil {
		return mo.None[T]()
	}
	return mo.Some(value)
}

// SetIfPresent stores the wrapped value. None is treated like an absent value.
func (c *TTLCache[T]) SetIfPresent(value mo.Option[T]) {
	if v, ok := value.Get(); ok {
		c.Set(v)
	}
}
