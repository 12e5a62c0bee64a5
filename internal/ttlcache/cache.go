package ttlcache

import "time"

// Cache holds at most one value together with the instant it expires.
//
// Cache is not safe for concurrent use; the owner serializes access.
type Cache[T any] struct {
	ttl        time.Duration
	now        func() time.Time
	value      T
	expiresAt  time.Time
	set        bool
	generation uint64
}

// Option configures a Cache.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// New creates an empty cache whose entries live for ttl.
func New[T any](ttl time.Duration, opts ...Option) *Cache[T] {
	o := options{now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return &Cache[T]{ttl: ttl, now: o.now}
}

// TTL returns the lifetime applied to every Set.
func (c *Cache[T]) TTL() time.Duration {
	return c.ttl
}

// Get returns the stored value if it has not expired yet.
// An expired value stays in place but is reported as a miss.
func (c *Cache[T]) Get() (T, bool) {
	if !c.set || !c.now().Before(c.expiresAt) {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores v, replacing any previous value, and restarts the TTL.
func (c *Cache[T]) Set(v T) {
	c.value = v
	c.expiresAt = c.now().Add(c.ttl)
	c.set = true
}

// Invalidate drops the stored value so the next Get misses.
func (c *Cache[T]) Invalidate() {
	var zero T
	c.value = zero
	c.expiresAt = time.Time{}
	c.set = false
	c.generation++
}

// Generation changes every time Invalidate is called.
func (c *Cache[T]) Generation() uint64 {
	return c.generation
}

// SetIfGeneration stores v only if no Invalidate happened since gen was read.
// It reports whether v was stored.
func (c *Cache[T]) SetIfGeneration(gen uint64, v T) bool {
	if gen != c.generation {
		return false
	}
	c.Set(v)
	return true
}

// ExpiresAt returns when the current value expires, or the zero time if
// nothing is stored.
func (c *Cache[T]) ExpiresAt() time.Time {
	if !c.set {
		return time.Time{}
	}
	return c.expiresAt
}
