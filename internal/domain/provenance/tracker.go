// Package provenance traces every traded draft pick from its original owner
// through each trade to its current holder and grades what it became.
package provenance

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/internal/domain/token"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/okian/dynasty/pkg/logger"
)

// Drafts holds completed draft results keyed by draft year.
type Drafts map[int][]model.DraftSlot

// Standings holds final standings keyed by season.
type Standings map[model.Season][]model.Standing

// Tracker builds pick ledgers. Team names in drafts and standings are
// resolved to owners through the injected resolver.
type Tracker struct {
	owners    token.OwnerResolver
	perRound  int
	slots     SlotTable
	round2Cap types.Grade
	gpa       scoring.GPATable
	logger    logger.Logger
}

// NewTracker creates a Tracker with the default slot table and round-2 cap.
func NewTracker(owners token.OwnerResolver, opts ...Option) *Tracker {
	t := &Tracker{
		owners:    owners,
		perRound:  DefaultSlotsPerRound,
		slots:     DefaultSlotTable(),
		round2Cap: DefaultRound2Cap,
		gpa:       scoring.DefaultGPATable(),
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Build scans trades in chronological order and returns the full ledger.
// Nothing is carried over from earlier runs.
func (t *Tracker) Build(ctx context.Context, trades []model.Trade, drafts Drafts, standings Standings) (Ledger, error) {
	issues := report.NewCollector()

	ordered := make([]model.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool { return model.ChronoLess(ordered[i], ordered[j]) })

	entries := make(map[string]*Entry)
	for _, tr := range ordered {
		if err := ctx.Err(); err != nil {
			return Ledger{}, err
		}
		for _, side := range []model.Side{tr.SideA, tr.SideB} {
			to := tr.Other(side.Owner)
			for _, a := range model.Picks(side.Given) {
				if a.Pick == nil {
					continue
				}
				e := entryFor(entries, *a.Pick)
				if e.CurrentOwner != side.Owner {
					issues.Add(report.StageProvenance, e.ID,
						fmt.Errorf("%w: trade#%d sends %s from %s but %s holds it",
							model.ErrCustodyGap, tr.Index, e.ID, side.Owner, e.CurrentOwner))
				}
				e.Transfers = append(e.Transfers, Transfer{
					TradeIndex: tr.Index,
					Season:     tr.Season,
					Date:       tr.Date,
					From:       side.Owner,
					To:         to,
					Raw:        a.Raw,
				})
				e.CurrentOwner = to
				e.Swap = e.Swap || a.Pick.Swap
			}
		}
	}

	latest, order := t.latestOrder(standings)
	ledger := Ledger{Entries: make([]Entry, 0, len(entries)), index: make(map[string]int, len(entries))}
	for _, e := range entries {
		switch results := drafts[e.Year]; {
		case len(results) > 0:
			t.complete(ctx, e, results, standings, issues)
		case latest != "" && e.Year < latest.DraftYear():
			// The draft already happened; later standings say nothing about it.
			e.Status = types.PickPending
			issues.Add(report.StageProvenance, e.ID,
				fmt.Errorf("%w: %d draft held before %s standings", model.ErrMissingDraftResults, e.Year, latest))
		default:
			t.project(ctx, e, latest, order, issues)
		}
		ledger.Entries = append(ledger.Entries, *e)
	}
	sort.Slice(ledger.Entries, func(i, j int) bool {
		a, b := ledger.Entries[i], ledger.Entries[j]
		if a.Year != b.Year {
			return a.Year < b.Year
		}
		if a.Round != b.Round {
			return a.Round < b.Round
		}
		return a.OriginalOwner < b.OriginalOwner
	})
	for i, e := range ledger.Entries {
		ledger.index[e.ID] = i
	}
	ledger.Issues = issues.Issues()

	counts := ledger.StatusCounts()
	t.logger.Info(ctx, "pick ledger built",
		logger.Int("picks", len(ledger.Entries)),
		logger.Int("completed", counts[types.PickCompleted]),
		logger.Int("projected", counts[types.PickProjected]),
		logger.Int("pending", counts[types.PickPending]),
		logger.Int("issues", len(ledger.Issues)))
	return ledger, nil
}

func entryFor(entries map[string]*Entry, ref model.PickRef) *Entry {
	id := ref.ID()
	if e, ok := entries[id]; ok {
		return e
	}
	e := &Entry{
		ID:            id,
		OriginalOwner: ref.OriginalOwner,
		Year:          ref.Year,
		Round:         ref.Round,
		CurrentOwner:  ref.OriginalOwner,
		Status:        types.PickPending,
	}
	entries[id] = e
	return e
}

// complete resolves the entry against actual draft results. An entry whose
// slot cannot be identified stays completed but ungraded.
func (t *Tracker) complete(ctx context.Context, e *Entry, results []model.DraftSlot, standings Standings, issues *report.Collector) {
	e.Status = types.PickCompleted
	slot, method, ok := t.resolveSlot(e, results, standings)
	if !ok {
		issues.Add(report.StageProvenance, e.ID,
			fmt.Errorf("%w: %s held by %s", model.ErrUnresolvedDraftSlot, e.ID, e.CurrentOwner))
		return
	}
	overall := Overall(slot.Round, slot.PickNumber, t.perRound)
	g := t.gradeSlot(e.Round, overall)
	gpa, _ := t.gpa.GPA(g)
	e.Outcome = &Outcome{
		Round:      slot.Round,
		PickNumber: slot.PickNumber,
		Overall:    overall,
		Team:       slot.Team,
		Player:     slot.Player,
		Method:     method,
		Grade:      g,
		GPA:        gpa,
	}
	t.logger.Debug(ctx, "draft slot resolved",
		logger.String("pick", e.ID),
		logger.String("method", method),
		logger.Int("overall", overall))
}

func (t *Tracker) resolveSlot(e *Entry, results []model.DraftSlot, standings Standings) (model.DraftSlot, string, bool) {
	var round []model.DraftSlot
	for _, s := range results {
		if s.Round == e.Round {
			round = append(round, s)
		}
	}

	for _, s := range round {
		if s.OriginalTeam == "" {
			continue
		}
		if o, ok := t.owners.Owner(s.OriginalTeam); ok && o == e.OriginalOwner {
			return s, MethodOriginalTeam, true
		}
	}

	// The draft follows the standings of the season that just ended.
	order := t.rankOf(standings[model.SeasonStarting(e.Year-1)])
	if rank, ok := order.ranks[e.OriginalOwner]; ok {
		expected := order.size + 1 - rank
		for _, s := range round {
			if s.PickNumber != expected {
				continue
			}
			if o, ok := t.owners.Owner(s.Team); ok && o == e.CurrentOwner {
				return s, MethodExpectedSlot, true
			}
		}
	}

	var held []model.DraftSlot
	for _, s := range round {
		if o, ok := t.owners.Owner(s.Team); ok && o == e.CurrentOwner {
			held = append(held, s)
		}
	}
	if len(held) == 1 {
		return held[0], MethodHolderOnly, true
	}
	return model.DraftSlot{}, "", false
}

// project estimates a future pick from the original owner's latest rank
// under reverse-standings order. Only drafts from the one following the
// latest standings onward are projected.
func (t *Tracker) project(ctx context.Context, e *Entry, season model.Season, order standingOrder, issues *report.Collector) {
	rank, ok := order.ranks[e.OriginalOwner]
	if !ok {
		e.Status = types.PickPending
		issues.Add(report.StageProvenance, e.ID,
			fmt.Errorf("%w: no rank for %s", model.ErrMissingStandings, e.OriginalOwner))
		return
	}
	pick := order.size + 1 - rank
	if pick < 1 {
		pick = 1
	}
	overall := Overall(e.Round, pick, t.perRound)
	g := t.gradeSlot(e.Round, overall)
	gpa, _ := t.gpa.GPA(g)
	e.Status = types.PickProjected
	e.Projection = &Projection{
		PickNumber:  pick,
		Overall:     overall,
		Tier:        Tier(overall),
		Rank:        rank,
		BasedOn:     season,
		Grade:       g,
		GPA:         gpa,
		Provisional: true,
	}
	t.logger.Debug(ctx, "pick projected",
		logger.String("pick", e.ID),
		logger.Int("overall", overall),
		logger.String("tier", e.Projection.Tier))
}

func (t *Tracker) gradeSlot(round, overall int) types.Grade {
	g := t.slots.Grade(overall)
	if round >= 2 {
		g = capGrade(g, t.round2Cap)
	}
	return g
}

type standingOrder struct {
	size  int
	ranks map[model.OwnerID]int
}

func (t *Tracker) rankOf(rows []model.Standing) standingOrder {
	o := standingOrder{size: len(rows), ranks: make(map[model.OwnerID]int, len(rows))}
	for _, r := range rows {
		if owner, ok := t.owners.Owner(r.Team); ok {
			o.ranks[owner] = r.Rank
		}
	}
	return o
}

func (t *Tracker) latestOrder(standings Standings) (model.Season, standingOrder) {
	var latest model.Season
	for s, rows := range standings {
		if len(rows) == 0 {
			continue
		}
		if latest == "" || latest.Before(s) {
			latest = s
		}
	}
	return latest, t.rankOf(standings[latest])
}
