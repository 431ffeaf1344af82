// Package combine merges player and pick components into final side grades,
// decides trade verdicts and builds owner report cards. Every function is a
// pure function of its inputs.
package combine

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/okian/dynasty/pkg/logger"
	"github.com/shopspring/decimal"
)

// Defaults.
const (
	DefaultPlayerWeight = 0.6
	DefaultPickWeight   = 0.4
	DefaultMargin       = 0.5
)

// PickSource looks up ledger entries by pick id.
type PickSource interface {
	Lookup(id string) (provenance.Entry, bool)
}

// PickGrade is one received pick's contribution.
type PickGrade struct {
	PickID      string           `json:"pick_id"`
	Grade       types.Grade      `json:"grade"`
	GPA         float64          `json:"gpa"`
	Status      types.PickStatus `json:"status"`
	Overall     int              `json:"slot"`
	Provisional bool             `json:"provisional,omitempty"`
}

// SideGrade is a side's final grade.
type SideGrade struct {
	Owner       model.OwnerID     `json:"owner"`
	Player      scoring.SideGrade `json:"player_component"`
	PlayerGPA   *float64          `json:"player_gpa"`
	Picks       []PickGrade       `json:"pick_grades"`
	PickGPA     *float64          `json:"pick_gpa"`
	Basis       types.Basis       `json:"grade_basis"`
	Grade       types.Grade       `json:"combined_grade"`
	GPA         *float64          `json:"combined_gpa"`
	Provisional bool              `json:"provisional,omitempty"`
}

// Graded reports whether the side has a combined grade.
func (s SideGrade) Graded() bool { return s.GPA != nil }

// TradeGrade is the final verdict on one trade.
type TradeGrade struct {
	TradeIndex int              `json:"trade_index"`
	Season     model.Season     `json:"season"`
	Date       string           `json:"date,omitempty"`
	SideA      SideGrade        `json:"side_a"`
	SideB      SideGrade        `json:"side_b"`
	Verdict    types.Verdict    `json:"verdict"`
	Winner     model.OwnerID    `json:"winner,omitempty"`
	Confidence types.Confidence `json:"confidence"`
	Summary    string           `json:"summary"`
}

// Result holds every combined trade grade.
type Result struct {
	Grades []TradeGrade   `json:"trades"`
	Issues []report.Issue `json:"issues"`
}

// Distribution counts side grades by letter.
func (r Result) Distribution() map[types.Grade]int {
	out := make(map[types.Grade]int)
	for _, g := range r.Grades {
		out[g.SideA.Grade]++
		out[g.SideB.Grade]++
	}
	return out
}

// BasisCounts counts sides by the components that graded them.
func (r Result) BasisCounts() map[types.Basis]int {
	out := make(map[types.Basis]int)
	for _, g := range r.Grades {
		out[g.SideA.Basis]++
		out[g.SideB.Basis]++
	}
	return out
}

// Combiner merges grade components.
type Combiner struct {
	gpa          scoring.GPATable
	cuts         scoring.Scale
	playerWeight float64
	pickWeight   float64
	margin       float64
	logger       logger.Logger
}

// New creates a Combiner with the 60/40 weighting and a 0.5 winning margin.
func New(opts ...Option) *Combiner {
	c := &Combiner{
		gpa:          scoring.DefaultGPATable(),
		cuts:         scoring.DefaultCutPoints(),
		playerWeight: DefaultPlayerWeight,
		pickWeight:   DefaultPickWeight,
		margin:       DefaultMargin,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Combine grades every trade. players is matched to trades by trade index;
// a trade without a player component is graded on its picks alone.
func (c *Combiner) Combine(ctx context.Context, trades []model.Trade, players []scoring.TradeGrade, picks PickSource) (Result, error) {
	issues := report.NewCollector()
	byIndex := make(map[int]scoring.TradeGrade, len(players))
	for _, p := range players {
		byIndex[p.TradeIndex] = p
	}

	res := Result{Grades: make([]TradeGrade, 0, len(trades))}
	for _, t := range trades {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		pg, ok := byIndex[t.Index]
		if !ok {
			pg = scoring.TradeGrade{
				SideA:      incomplete(t.SideA.Owner),
				SideB:      incomplete(t.SideB.Owner),
				Confidence: types.ConfidenceIncomplete,
			}
		}
		tg := c.CombineTrade(t, pg, picks)
		ref := fmt.Sprintf("trade#%d", t.Index)
		for _, s := range []SideGrade{tg.SideA, tg.SideB} {
			if !s.Graded() && s.Player.Reason == scoring.ReasonPickOnly {
				issues.Add(report.StageCombine, ref,
					fmt.Errorf("%w: %s received no graded picks", model.ErrIncompleteGrade, s.Owner))
			}
		}
		res.Grades = append(res.Grades, tg)
	}
	res.Issues = issues.Issues()
	c.logger.Info(ctx, "trade grades combined",
		logger.Int("trades", len(res.Grades)),
		logger.Int("issues", len(res.Issues)))
	return res, nil
}

func incomplete(owner model.OwnerID) scoring.SideGrade {
	return scoring.SideGrade{
		Owner:      owner,
		Grade:      types.GradeInc,
		Reason:     scoring.ReasonIncomplete,
		Confidence: types.ConfidenceIncomplete,
	}
}

// CombineTrade grades both sides of t and decides the verdict.
func (c *Combiner) CombineTrade(t model.Trade, players scoring.TradeGrade, picks PickSource) TradeGrade {
	a := c.CombineSide(players.SideA, t.SideA.Received, picks)
	b := c.CombineSide(players.SideB, t.SideB.Received, picks)
	verdict, winner := c.Verdict(a, b)
	return TradeGrade{
		TradeIndex: t.Index,
		Season:     t.Season,
		Date:       t.Date,
		SideA:      a,
		SideB:      b,
		Verdict:    verdict,
		Winner:     winner,
		Confidence: players.Confidence,
		Summary:    summary(verdict, winner, a, b),
	}
}

// CombineSide weighs the player component against the picks the side
// received. Picks without a grade are left out of the average.
func (c *Combiner) CombineSide(player scoring.SideGrade, received []model.Asset, picks PickSource) SideGrade {
	s := SideGrade{Owner: player.Owner, Player: player}
	if gpa, ok := c.gpa.GPA(player.Grade); ok {
		s.PlayerGPA = &gpa
	}

	var pickGPAs []float64
	for _, a := range model.Picks(received) {
		if a.Pick == nil || picks == nil {
			continue
		}
		e, ok := picks.Lookup(a.Pick.ID())
		if !ok {
			continue
		}
		g, gpa, ok := e.Grade()
		if !ok {
			continue
		}
		pg := PickGrade{PickID: e.ID, Grade: g, GPA: gpa, Status: e.Status}
		switch {
		case e.Outcome != nil:
			pg.Overall = e.Outcome.Overall
		case e.Projection != nil:
			pg.Overall = e.Projection.Overall
			pg.Provisional = true
			s.Provisional = true
		}
		s.Picks = append(s.Picks, pg)
		pickGPAs = append(pickGPAs, gpa)
	}
	if len(pickGPAs) > 0 {
		avg := mean(pickGPAs)
		s.PickGPA = &avg
	}

	s.Basis, s.GPA, s.Grade = c.Weigh(player.Grade, s.PlayerGPA, s.PickGPA)
	return s
}

// Weigh combines an optional player GPA with an optional pick GPA.
func (c *Combiner) Weigh(playerGrade types.Grade, playerGPA, pickGPA *float64) (types.Basis, *float64, types.Grade) {
	switch {
	case playerGPA != nil && pickGPA != nil:
		v := decimal.NewFromFloat(*playerGPA).Mul(decimal.NewFromFloat(c.playerWeight)).
			Add(decimal.NewFromFloat(*pickGPA).Mul(decimal.NewFromFloat(c.pickWeight))).
			Round(2).InexactFloat64()
		return types.BasisMixed, &v, c.cuts.Grade(v)
	case pickGPA != nil:
		v := scoring.Round(*pickGPA, 2)
		return types.BasisPicksOnly, &v, c.cuts.Grade(v)
	case playerGPA != nil:
		v := scoring.Round(*playerGPA, 2)
		return types.BasisPlayersOnly, &v, playerGrade
	default:
		return types.BasisIncomplete, nil, types.GradeInc
	}
}

// Verdict names the winner when one side leads by at least the margin.
func (c *Combiner) Verdict(a, b SideGrade) (types.Verdict, model.OwnerID) {
	if !a.Graded() || !b.Graded() {
		return types.VerdictIncomplete, ""
	}
	diff := decimal.NewFromFloat(*a.GPA).Sub(decimal.NewFromFloat(*b.GPA))
	margin := decimal.NewFromFloat(c.margin)
	switch {
	case diff.GreaterThanOrEqual(margin):
		return types.VerdictWinner, a.Owner
	case diff.Neg().GreaterThanOrEqual(margin):
		return types.VerdictWinner, b.Owner
	default:
		return types.VerdictEven, ""
	}
}

func summary(v types.Verdict, winner model.OwnerID, a, b SideGrade) string {
	switch v {
	case types.VerdictWinner:
		return fmt.Sprintf("%s won this trade (%s vs %s)", winner, a.Grade, b.Grade)
	case types.VerdictEven:
		return fmt.Sprintf("Even trade (%s vs %s)", a.Grade, b.Grade)
	default:
		return fmt.Sprintf("Incomplete (%s: %s, %s: %s)", a.Owner, a.Grade, b.Owner, b.Grade)
	}
}

func mean(vs []float64) float64 {
	sum := decimal.Zero
	for _, v := range vs {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Div(decimal.NewFromInt(int64(len(vs)))).Round(2).InexactFloat64()
}

func validWeights(player, pick float64) bool {
	if player <= 0 || pick <= 0 {
		return false
	}
	return decimal.NewFromFloat(player).Add(decimal.NewFromFloat(pick)).Equal(decimal.NewFromInt(1))
}

// OwnerReport is one owner's report card.
type OwnerReport struct {
	Owner      model.OwnerID      `json:"owner"`
	Sides      int                `json:"graded_sides"`
	AvgGPA     *float64           `json:"avg_gpa"`
	AvgGrade   types.Grade        `json:"avg_grade"`
	Wins       int                `json:"wins"`
	Losses     int                `json:"losses"`
	Evens      int                `json:"evens"`
	Incomplete int                `json:"incomplete"`
	TotalDelta float64            `json:"total_player_delta"`
	Picks      *provenance.Rollup `json:"picks,omitempty"`
}

// Report builds a card for every owner in owners plus anyone else who
// appears in grades, sorted by owner.
func (c *Combiner) Report(grades []TradeGrade, rollups []provenance.Rollup, owners []model.OwnerID) []OwnerReport {
	cards := make(map[model.OwnerID]*OwnerReport)
	gpas := make(map[model.OwnerID][]float64)
	deltas := make(map[model.OwnerID]decimal.Decimal)
	card := func(o model.OwnerID) *OwnerReport {
		r, ok := cards[o]
		if !ok {
			r = &OwnerReport{Owner: o, AvgGrade: types.GradeInc}
			cards[o] = r
		}
		return r
	}
	for _, o := range owners {
		card(o)
	}

	for _, g := range grades {
		for _, s := range []SideGrade{g.SideA, g.SideB} {
			r := card(s.Owner)
			if s.GPA != nil {
				gpas[s.Owner] = append(gpas[s.Owner], *s.GPA)
			}
			if s.Player.Total != nil {
				deltas[s.Owner] = deltas[s.Owner].Add(decimal.NewFromFloat(*s.Player.Total))
			}
			switch {
			case g.Verdict == types.VerdictIncomplete:
				r.Incomplete++
			case g.Verdict == types.VerdictEven:
				r.Evens++
			case g.Winner == s.Owner:
				r.Wins++
			default:
				r.Losses++
			}
		}
	}
	for _, roll := range rollups {
		roll := roll
		card(roll.Owner).Picks = &roll
	}

	out := make([]OwnerReport, 0, len(cards))
	for o, r := range cards {
		if vs := gpas[o]; len(vs) > 0 {
			avg := mean(vs)
			r.Sides = len(vs)
			r.AvgGPA = &avg
			r.AvgGrade = c.cuts.Grade(avg)
		}
		r.TotalDelta = deltas[o].Round(1).InexactFloat64()
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Owner < out[j].Owner })
	return out
}
