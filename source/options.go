package source

import (
	"github.com/xiaoshi2013/warden/internal/logging"
	"github.com/xiaoshi2013/warden/types"
)

// Option configures a topology source.
type Option func(*options)

type options struct {
	logger  types.Logger
	onError func(err error)
}

// WithLogger sets the logger used by the source.
func WithLogger(logger types.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithErrorHandler sets a callback for listener and decoding errors.
//
// Delivery continues after an error; a later snapshot re-triggers reconciliation.
func WithErrorHandler(fn func(err error)) Option {
	return func(o *options) {
		o.onError = fn
	}
}

func applyOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.onError == nil {
		o.onError = func(error) {}
	}

	return o
}
