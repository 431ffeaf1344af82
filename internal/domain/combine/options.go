package combine

import (
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/pkg/logger"
)

// Option applies a configuration option to the Combiner.
type Option func(*Combiner)

// WithWeights sets the player and pick weights of a mixed side. Both must be
// positive and sum to one.
func WithWeights(player, pick float64) Option {
	return func(c *Combiner) {
		if validWeights(player, pick) {
			c.playerWeight, c.pickWeight = player, pick
		}
	}
}

// WithMargin sets the GPA lead a side needs to win.
func WithMargin(m float64) Option {
	return func(c *Combiner) {
		if m >= 0 {
			c.margin = m
		}
	}
}

// WithGPATable sets the letter to grade-point table.
func WithGPATable(t scoring.GPATable) Option {
	return func(c *Combiner) {
		if t.Validate() == nil {
			c.gpa = t
		}
	}
}

// WithCutPoints sets the GPA to letter scale.
func WithCutPoints(s scoring.Scale) Option {
	return func(c *Combiner) {
		if s.Validate() == nil {
			c.cuts = s
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Combiner) {
		if l != nil {
			c.logger = l
		}
	}
}
