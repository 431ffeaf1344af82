package provenance

import (
	"fmt"

	"github.com/okian/dynasty/internal/domain/types"
)

// DefaultSlotsPerRound is the number of teams picking in each round.
const DefaultSlotsPerRound = 10

// DefaultRound2Cap is the best grade a pick outside the first round can earn.
const DefaultRound2Cap = types.GradeD

// SlotStep maps every overall slot at or below Max to Grade.
type SlotStep struct {
	Max   int         `koanf:"max" json:"max"`
	Grade types.Grade `koanf:"grade" json:"grade"`
}

// SlotTable is an ascending slot-to-letter table; later slots are F.
type SlotTable []SlotStep

// DefaultSlotTable grades overall draft slots.
func DefaultSlotTable() SlotTable {
	return SlotTable{
		{Max: 2, Grade: types.GradeAPlus},
		{Max: 4, Grade: types.GradeA},
		{Max: 7, Grade: types.GradeB},
		{Max: 10, Grade: types.GradeC},
		{Max: 15, Grade: types.GradeD},
	}
}

// Grade returns the letter for an overall slot.
func (t SlotTable) Grade(overall int) types.Grade {
	for _, s := range t {
		if overall <= s.Max {
			return s.Grade
		}
	}
	return types.GradeF
}

// Validate checks the steps strictly ascend and the letters strictly worsen.
func (t SlotTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidSlotTable)
	}
	for i, s := range t {
		if !s.Grade.Valid() {
			return fmt.Errorf("%w: unknown grade %q", ErrInvalidSlotTable, s.Grade)
		}
		if s.Max < 1 {
			return fmt.Errorf("%w: slot %d", ErrInvalidSlotTable, s.Max)
		}
		if i == 0 {
			continue
		}
		if s.Max <= t[i-1].Max {
			return fmt.Errorf("%w: slot %d does not ascend", ErrInvalidSlotTable, s.Max)
		}
		if s.Grade.Rank() <= t[i-1].Grade.Rank() {
			return fmt.Errorf("%w: grade %s does not worsen", ErrInvalidSlotTable, s.Grade)
		}
	}
	return nil
}

// Tier buckets a projected overall slot.
func Tier(overall int) string {
	switch {
	case overall <= 3:
		return TierLottery
	case overall <= 6:
		return TierHigh
	case overall <= 8:
		return TierMid
	default:
		return TierLate
	}
}

// Value tiers.
const (
	TierLottery = "lottery"
	TierHigh    = "high"
	TierMid     = "mid"
	TierLate    = "late"
)

// Overall converts a round and pick number into an overall slot.
func Overall(round, pick, perRound int) int { return (round-1)*perRound + pick }

func capGrade(g, limit types.Grade) types.Grade {
	if g.Rank() < limit.Rank() {
		return limit
	}
	return g
}
