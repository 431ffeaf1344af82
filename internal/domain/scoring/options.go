package scoring

import "github.com/okian/dynasty/pkg/logger"

// Option applies a configuration option to the Grader.
type Option func(*Grader)

// WithDeltaScale replaces the delta-to-letter scale.
func WithDeltaScale(scale Scale) Option {
	return func(g *Grader) {
		if scale.Validate() == nil {
			g.scale = scale
		}
	}
}

// WithMissingPostFactor sets the multiplier applied to the pre-trade FPG when
// the post window is missing. Must be non-positive.
func WithMissingPostFactor(f float64) Option {
	return func(g *Grader) {
		if f <= 0 {
			g.missingPost = f
		}
	}
}

// WithMissingPreFactor sets the multiplier applied to the post-trade FPG when
// there is no baseline. Must be non-negative.
func WithMissingPreFactor(f float64) Option {
	return func(g *Grader) {
		if f >= 0 {
			g.missingPre = f
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Grader) {
		if l != nil {
			g.logger = l
		}
	}
}
