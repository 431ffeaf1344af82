package scoring

import (
	"github.com/okian/dynasty/internal/domain/model"
	"github.com/shopspring/decimal"
)

var (
	two  = decimal.NewFromInt(2)
	four = decimal.NewFromInt(4)
)

// FPG is fantasy points per game, rounded to one decimal:
// PTS + REB + 2·AST + 4·STL + 4·BLK + 2·FGM − FGA + FTM − FTA + 3PM − 2·TOV.
func FPG(s model.StatLine) float64 {
	d := decimal.NewFromFloat
	v := d(s.PTS).
		Add(d(s.REB)).
		Add(d(s.AST).Mul(two)).
		Add(d(s.STL).Mul(four)).
		Add(d(s.BLK).Mul(four)).
		Add(d(s.FGM).Mul(two)).
		Sub(d(s.FGA)).
		Add(d(s.FTM)).
		Sub(d(s.FTA)).
		Add(d(s.FG3M)).
		Sub(d(s.TOV).Mul(two))
	return v.Round(1).InexactFloat64()
}
