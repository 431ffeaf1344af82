package provenance

import (
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/okian/dynasty/pkg/logger"
)

// Option applies a configuration option to the Tracker.
type Option func(*Tracker)

// WithSlotsPerRound sets the number of picks in a round.
func WithSlotsPerRound(n int) Option {
	return func(t *Tracker) {
		if n > 0 {
			t.perRound = n
		}
	}
}

// WithSlotTable replaces the slot grade table. Invalid tables are ignored.
func WithSlotTable(table SlotTable) Option {
	return func(t *Tracker) {
		if table.Validate() == nil {
			t.slots = table
		}
	}
}

// WithRound2Cap sets the best grade any pick after the first round can get.
func WithRound2Cap(g types.Grade) Option {
	return func(t *Tracker) {
		if g.Valid() {
			t.round2Cap = g
		}
	}
}

// WithGPATable sets the letter to grade-point table.
func WithGPATable(table scoring.GPATable) Option {
	return func(t *Tracker) {
		if table.Validate() == nil {
			t.gpa = table
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(t *Tracker) {
		if l != nil {
			t.logger = l
		}
	}
}
