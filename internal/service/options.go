package service

import (
	"time"
)

// Option configures a service at construction time.
type Option func(*options)

type options struct {
	clock    func() time.Time
	location *time.Location
}

// WithClock replaces time.Now as the source of the current time.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithLocation sets the time zone whose midnight starts "today" in statistics.
func WithLocation(loc *time.Location) Option {
	return func(o *options) {
		if loc != nil {
			o.location = loc
		}
	}
}

func newOptions(opts []Option) options {
	o := options{
		clock:    time.Now,
		location: time.Local,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o options) now() time.Time {
	return o.clock().UTC()
}
