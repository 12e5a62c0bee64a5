package service

import "time"

// Default cache lifetimes.
const (
	DefaultTagTTL   = 120 * time.Second
	DefaultStashTTL = 30 * time.Second
)

// Option configures a cached service.
type Option func(*options)

type options struct {
	ttl time.Duration
	now func() time.Time
}

// WithTTL overrides the service's default cache lifetime.
// Non-positive values are ignored.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl > 0 {
			o.ttl = ttl
		}
	}
}

// WithClock replaces time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func buildOptions(ttl time.Duration, opts []Option) options {
	o := options{ttl: ttl, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
