package payflow

import (
	"github.com/vitwit/payflow/logger"
	"github.com/vitwit/payflow/metrics"
	"github.com/vitwit/payflow/reference"
	"github.com/vitwit/payflow/types"
)

type Option func(*Checkout)

func WithLogger(l logger.Logger) Option {
	return func(c *Checkout) {
		c.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(c *Checkout) {
		c.metrics = r
	}
}

func WithReferenceGenerator(g reference.Generator) Option {
	return func(c *Checkout) {
		c.refgen = g
	}
}

// WithStatusListener registers a callback invoked after every status
// transition. UIs use it to swap affordances without polling the status.
func WithStatusListener(fn func(types.Status)) Option {
	return func(c *Checkout) {
		c.onStatus = fn
	}
}
