package scoring

import (
	"fmt"

	"github.com/okian/dynasty/internal/domain/types"
	"github.com/shopspring/decimal"
)

// Threshold maps every value at or above Min to Grade.
type Threshold struct {
	Min   float64     `koanf:"min" json:"min"`
	Grade types.Grade `koanf:"grade" json:"grade"`
}

// Scale is a descending threshold list; values below the last step are F.
type Scale []Threshold

// DefaultDeltaScale maps a side's total FPG delta to a letter.
func DefaultDeltaScale() Scale {
	return Scale{
		{Min: 8, Grade: types.GradeAPlus},
		{Min: 4, Grade: types.GradeA},
		{Min: 1, Grade: types.GradeB},
		{Min: -1, Grade: types.GradeC},
		{Min: -4, Grade: types.GradeD},
	}
}

// DefaultCutPoints maps a GPA back to a letter.
func DefaultCutPoints() Scale {
	return Scale{
		{Min: 4.15, Grade: types.GradeAPlus},
		{Min: 3.5, Grade: types.GradeA},
		{Min: 2.5, Grade: types.GradeB},
		{Min: 1.5, Grade: types.GradeC},
		{Min: 0.5, Grade: types.GradeD},
	}
}

// Grade returns the letter for v.
func (s Scale) Grade(v float64) types.Grade {
	for _, t := range s {
		if v >= t.Min {
			return t.Grade
		}
	}
	return types.GradeF
}

// Validate checks the thresholds strictly descend and the letters strictly
// worsen, which keeps the mapping monotonic.
func (s Scale) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidScale)
	}
	for i, t := range s {
		if !t.Grade.Valid() {
			return fmt.Errorf("%w: unknown grade %q", ErrInvalidScale, t.Grade)
		}
		if i == 0 {
			continue
		}
		if t.Min >= s[i-1].Min {
			return fmt.Errorf("%w: threshold %v does not descend", ErrInvalidScale, t.Min)
		}
		if t.Grade.Rank() <= s[i-1].Grade.Rank() {
			return fmt.Errorf("%w: grade %s does not worsen", ErrInvalidScale, t.Grade)
		}
	}
	return nil
}

// DeltaToGrade maps a total delta with the default scale.
func DeltaToGrade(delta float64) types.Grade { return DefaultDeltaScale().Grade(delta) }

// GPATable gives each letter its grade-point value.
type GPATable map[types.Grade]float64

// DefaultGPATable is the standard 4.3 scale.
func DefaultGPATable() GPATable {
	return GPATable{
		types.GradeAPlus: 4.3,
		types.GradeA:     4.0,
		types.GradeB:     3.0,
		types.GradeC:     2.0,
		types.GradeD:     1.0,
		types.GradeF:     0.0,
	}
}

// GPA returns the value for g; INC and unknown letters have none.
func (t GPATable) GPA(g types.Grade) (float64, bool) {
	v, ok := t[g]
	return v, ok
}

// Validate checks every letter has a value and values fall with the letter.
func (t GPATable) Validate() error {
	for i, g := range types.Grades {
		v, ok := t[g]
		if !ok {
			return fmt.Errorf("%w: no value for %s", ErrInvalidScale, g)
		}
		if i > 0 && v >= t[types.Grades[i-1]] {
			return fmt.Errorf("%w: %s is not below %s", ErrInvalidScale, g, types.Grades[i-1])
		}
	}
	return nil
}

// Round rounds v half away from zero to the given number of decimals.
func Round(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
