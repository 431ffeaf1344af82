// Package scoring grades traded players by the change in their fantasy
// points per game across the trade.
package scoring

import (
	"context"
	"fmt"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/okian/dynasty/pkg/logger"
	"github.com/shopspring/decimal"
)

// Default missing-window factors.
const (
	DefaultMissingPostFactor = -0.5
	DefaultMissingPreFactor  = 0.5
)

// INC reasons.
const (
	ReasonPickOnly   = "pick-only"
	ReasonIncomplete = "incomplete"
	ReasonNoData     = "no gradeable players"
)

// PlayerGrade is one received player's pre/post comparison.
type PlayerGrade struct {
	Player    string             `json:"player"`
	PlayerKey string             `json:"player_key"`
	Pre       *float64           `json:"pre_fpg"`
	Post      *float64           `json:"post_fpg"`
	Delta     *float64           `json:"delta"`
	Status    types.PlayerStatus `json:"status"`
}

// SideGrade is the player component of one side.
type SideGrade struct {
	Owner      model.OwnerID    `json:"owner"`
	Players    []PlayerGrade    `json:"players"`
	Picks      int              `json:"picks_received"`
	Total      *float64         `json:"total_delta"`
	Grade      types.Grade      `json:"grade"`
	Reason     string           `json:"reason,omitempty"`
	Confidence types.Confidence `json:"confidence"`
}

// TradeGrade holds both sides' player components.
type TradeGrade struct {
	TradeIndex int              `json:"trade_index"`
	Season     model.Season     `json:"season"`
	Date       string           `json:"date,omitempty"`
	SideA      SideGrade        `json:"side_a"`
	SideB      SideGrade        `json:"side_b"`
	Confidence types.Confidence `json:"confidence"`
}

// Result is the graded trade list.
type Result struct {
	Grades []TradeGrade   `json:"grades"`
	Issues []report.Issue `json:"issues"`
}

// Grader computes player components. It holds no state between calls.
type Grader struct {
	scale       Scale
	missingPost float64
	missingPre  float64
	logger      logger.Logger
}

// NewGrader creates a Grader with the default scale and factors.
func NewGrader(opts ...Option) *Grader {
	g := &Grader{
		scale:       DefaultDeltaScale(),
		missingPost: DefaultMissingPostFactor,
		missingPre:  DefaultMissingPreFactor,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Grade grades every trade. Missing windows and ungradeable sides are
// reported, never fatal.
func (g *Grader) Grade(ctx context.Context, trades []model.Trade, stats *Stats) (Result, error) {
	issues := report.NewCollector()
	res := Result{Grades: make([]TradeGrade, 0, len(trades))}
	for _, t := range trades {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		tg := g.GradeTrade(t, stats)
		ref := fmt.Sprintf("trade#%d", t.Index)
		for _, side := range []SideGrade{tg.SideA, tg.SideB} {
			for _, p := range side.Players {
				if p.Status != types.StatusGraded {
					issues.Add(report.StageGrade, ref,
						fmt.Errorf("%w: %s %s", model.ErrMissingStatsWindow, p.Player, p.Status))
				}
			}
			if side.Grade == types.GradeInc && side.Reason != ReasonPickOnly {
				issues.Add(report.StageGrade, ref,
					fmt.Errorf("%w: %s side %s", model.ErrIncompleteGrade, side.Owner, side.Reason))
			}
		}
		res.Grades = append(res.Grades, tg)
	}
	res.Issues = issues.Issues()
	g.logger.Info(ctx, "player components graded",
		logger.Int("trades", len(res.Grades)),
		logger.Int("issues", len(res.Issues)))
	return res, nil
}

// GradeTrade grades both sides of t.
func (g *Grader) GradeTrade(t model.Trade, stats *Stats) TradeGrade {
	a := g.GradeSide(t.Season, t.SideA, stats)
	b := g.GradeSide(t.Season, t.SideB, stats)
	return TradeGrade{
		TradeIndex: t.Index,
		Season:     t.Season,
		Date:       t.Date,
		SideA:      a,
		SideB:      b,
		Confidence: types.MinConfidence(a.Confidence, b.Confidence),
	}
}

// GradeSide sums the deltas of every gradeable player the side received.
func (g *Grader) GradeSide(season model.Season, side model.Side, stats *Stats) SideGrade {
	sg := SideGrade{Owner: side.Owner, Picks: len(model.Picks(side.Received))}
	total := decimal.Zero
	gradeable, fallback := 0, 0
	for _, a := range model.Players(side.Received) {
		pg := g.GradePlayer(season, a, stats)
		sg.Players = append(sg.Players, pg)
		if pg.Status.Gradeable() {
			gradeable++
			total = total.Add(decimal.NewFromFloat(*pg.Delta))
		}
		if pg.Status.Fallback() {
			fallback++
		}
	}

	switch {
	case gradeable == 0 && len(sg.Players) == 0 && sg.Picks > 0:
		sg.Grade, sg.Reason = types.GradeInc, ReasonPickOnly
		sg.Confidence = types.ConfidenceIncomplete
	case gradeable == 0 && len(sg.Players) == 0:
		sg.Grade, sg.Reason = types.GradeInc, ReasonIncomplete
		sg.Confidence = types.ConfidenceIncomplete
	case gradeable == 0:
		sg.Grade, sg.Reason = types.GradeInc, ReasonNoData
		sg.Confidence = types.ConfidenceIncomplete
	default:
		v := total.Round(1).InexactFloat64()
		sg.Total = &v
		sg.Grade = g.scale.Grade(v)
		switch {
		case gradeable < len(sg.Players):
			sg.Confidence = types.ConfidenceLow
		case fallback > 0:
			sg.Confidence = types.ConfidenceMedium
		default:
			sg.Confidence = types.ConfidenceHigh
		}
	}
	return sg
}

// GradePlayer applies the missing-window table to one player. A post season
// with no statistics at all is still open and the player is not graded.
func (g *Grader) GradePlayer(season model.Season, a model.Asset, stats *Stats) PlayerGrade {
	pg := PlayerGrade{Player: a.Player, PlayerKey: a.PlayerKey}
	post := season.Next()
	if !stats.HasSeason(post) {
		if line, ok := stats.Lookup(season, a.PlayerKey); ok {
			pre := FPG(line)
			pg.Pre = &pre
		}
		pg.Status = types.StatusWindowOpen
		return pg
	}

	preLine, hasPre := stats.Lookup(season, a.PlayerKey)
	postLine, hasPost := stats.Lookup(post, a.PlayerKey)
	var delta decimal.Decimal
	switch {
	case hasPre && hasPost:
		pre, after := FPG(preLine), FPG(postLine)
		pg.Pre, pg.Post = &pre, &after
		delta = decimal.NewFromFloat(after).Sub(decimal.NewFromFloat(pre))
		pg.Status = types.StatusGraded
	case hasPre:
		pre := FPG(preLine)
		pg.Pre = &pre
		delta = decimal.NewFromFloat(pre).Mul(decimal.NewFromFloat(g.missingPost))
		pg.Status = types.StatusNoPostData
	case hasPost:
		after := FPG(postLine)
		pg.Post = &after
		delta = decimal.NewFromFloat(after).Mul(decimal.NewFromFloat(g.missingPre))
		pg.Status = types.StatusNoBaseline
	default:
		pg.Status = types.StatusNoData
		return pg
	}
	d := delta.Round(1).InexactFloat64()
	pg.Delta = &d
	return pg
}
