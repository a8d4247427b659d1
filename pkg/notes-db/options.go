package notesdb

import (
	"log/slog"
	"time"
)

type options struct {
	logger *slog.Logger
	clock  func() time.Time
	strict bool
}

// Option configures a Store at Initialize time.
type Option func(*options)

func defaultOptions() *options {
	return &options{
		logger: slog.Default(),
		clock:  time.Now,
		strict: false,
	}
}

// WithLogger sets the logger used for statement-level debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithClock replaces the time source used to stamp created_at and updated_at.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		if clock != nil {
			o.clock = clock
		}
	}
}

// WithStrict makes Update and Delete return ErrNotFound when the id does not exist.
// By default both silently succeed.
func WithStrict(strict bool) Option {
	return func(o *options) {
		o.strict = strict
	}
}
