package reconcile

import "github.com/okian/dynasty/pkg/logger"

// Option applies a configuration option to the Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for per-decision debug output.
func WithLogger(l logger.Logger) Option {
	return func(r *Reconciler) {
		if l != nil {
			r.logger = l
		}
	}
}
