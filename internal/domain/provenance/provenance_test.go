package provenance_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/resolve"
	"github.com/okian/dynasty/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func owners() *resolve.Resolver {
	r, err := resolve.New([]resolve.OwnerEntry{
		{ID: "Gold", Aliases: []string{"GOLD", "Golden State of Mind"}},
		{ID: "Moss", Aliases: []string{"MOSS", "Moss Bosses"}},
		{ID: "Green", Aliases: []string{"GREEN", "Green Machine"}},
	})
	if err != nil {
		panic(err)
	}
	return r
}

func pick(from, orig model.OwnerID, year, round int) model.Asset {
	return model.Asset{
		Kind: model.KindPick,
		From: from,
		Raw:  string(from) + " " + string(orig) + " pick",
		Pick: &model.PickRef{OriginalOwner: orig, Year: year, Round: round},
	}
}

func trade(idx int, season model.Season, date string, from, to model.OwnerID, assets ...model.Asset) model.Trade {
	t := model.NewTrade(season, date, from, to, assets, nil)
	t.Index = idx
	return t
}

func standings(season model.Season, teams ...string) provenance.Standings {
	rows := make([]model.Standing, len(teams))
	for i, team := range teams {
		rows[i] = model.Standing{Rank: i + 1, Team: team}
	}
	return provenance.Standings{season: rows}
}

func kinds(issues []report.Issue, err error) int {
	n := 0
	for _, is := range issues {
		if is.Kind == report.Kind(err) {
			n++
		}
	}
	return n
}

func TestCustodyChain(t *testing.T) {
	ctx := context.Background()

	Convey("Given a pick traded X to Y and then Y to Z", t, func() {
		trades := []model.Trade{
			trade(0, "2023-24", "2023-11-02", "Gold", "Moss", pick("Gold", "Gold", 2026, 1)),
			trade(1, "2024-25", "2024-12-10", "Moss", "Green", pick("Moss", "Gold", 2026, 1)),
		}

		Convey("When the ledger is built", func() {
			ledger, err := provenance.NewTracker(owners()).Build(ctx, trades, nil,
				standings("2024-25", "Moss Bosses", "Green Machine", "Golden State of Mind"))
			So(err, ShouldBeNil)

			e, ok := ledger.Lookup("Gold_2026_R1")
			So(ok, ShouldBeTrue)

			Convey("Then Z holds it with a two-step chain in order", func() {
				So(e.CurrentOwner, ShouldEqual, model.OwnerID("Green"))
				So(len(e.Transfers), ShouldEqual, 2)
				So(e.Transfers[0].From, ShouldEqual, model.OwnerID("Gold"))
				So(e.Transfers[0].To, ShouldEqual, model.OwnerID("Moss"))
				So(e.Transfers[1].From, ShouldEqual, model.OwnerID("Moss"))
				So(e.Transfers[1].To, ShouldEqual, model.OwnerID("Green"))
				So(len(ledger.Issues), ShouldEqual, 0)
			})

			Convey("Then the future pick is projected from the latest standings", func() {
				So(e.Status, ShouldEqual, types.PickProjected)
				So(e.Projection.PickNumber, ShouldEqual, 1)
				So(e.Projection.Tier, ShouldEqual, provenance.TierLottery)
				So(e.Projection.Grade, ShouldEqual, types.GradeAPlus)
				So(e.Projection.GPA, ShouldEqual, 4.3)
				So(e.Projection.Provisional, ShouldBeTrue)
				So(e.Projection.BasedOn, ShouldEqual, model.Season("2024-25"))
			})
		})

		Convey("When the trades arrive out of order", func() {
			reversed := []model.Trade{trades[1], trades[0]}
			ledger, err := provenance.NewTracker(owners()).Build(ctx, reversed, nil, nil)
			So(err, ShouldBeNil)

			Convey("Then the chain is still chronological", func() {
				e, _ := ledger.Lookup("Gold_2026_R1")
				So(e.Transfers[0].Season, ShouldEqual, model.Season("2023-24"))
				So(e.Transfers[1].Season, ShouldEqual, model.Season("2024-25"))
				So(e.CurrentOwner, ShouldEqual, model.OwnerID("Green"))
			})
		})
	})

	Convey("Given a pick sent by someone who does not hold it", t, func() {
		trades := []model.Trade{
			trade(0, "2023-24", "", "Moss", "Green", pick("Moss", "Gold", 2026, 2)),
		}

		Convey("Then the transfer is kept and the gap reported", func() {
			ledger, err := provenance.NewTracker(owners()).Build(ctx, trades, nil, nil)
			So(err, ShouldBeNil)
			e, _ := ledger.Lookup("Gold_2026_R2")
			So(e.CurrentOwner, ShouldEqual, model.OwnerID("Green"))
			So(kinds(ledger.Issues, model.ErrCustodyGap), ShouldEqual, 1)
		})

		Convey("Then missing standings leave it pending", func() {
			ledger, _ := provenance.NewTracker(owners()).Build(ctx, trades, nil, nil)
			e, _ := ledger.Lookup("Gold_2026_R2")
			So(e.Status, ShouldEqual, types.PickPending)
			So(e.Projection, ShouldBeNil)
			So(kinds(ledger.Issues, model.ErrMissingStandings), ShouldEqual, 1)
		})
	})

	Convey("Given a pick whose draft was held but has no results", t, func() {
		trades := []model.Trade{
			trade(0, "2021-22", "2022-01-10", "Gold", "Moss", pick("Gold", "Gold", 2022, 1)),
			trade(1, "2023-24", "2024-01-10", "Gold", "Moss", pick("Gold", "Gold", 2025, 1)),
		}
		ledger, err := provenance.NewTracker(owners()).Build(ctx, trades, nil,
			standings("2024-25", "Golden State of Mind", "Moss Bosses", "Green Machine"))
		So(err, ShouldBeNil)

		Convey("Then it is not graded from later standings", func() {
			e, ok := ledger.Lookup("Gold_2022_R1")
			So(ok, ShouldBeTrue)
			So(e.Status, ShouldEqual, types.PickPending)
			So(e.Projection, ShouldBeNil)
			So(e.Outcome, ShouldBeNil)
			So(kinds(ledger.Issues, model.ErrMissingDraftResults), ShouldEqual, 1)
		})

		Convey("Then the draft that follows the latest standings is still projected", func() {
			e, _ := ledger.Lookup("Gold_2025_R1")
			So(e.Status, ShouldEqual, types.PickProjected)
			So(e.Projection.PickNumber, ShouldEqual, 3)
			So(e.Projection.BasedOn, ShouldEqual, model.Season("2024-25"))
		})
	})

	Convey("Given a cancelled context", t, func() {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := provenance.NewTracker(owners()).Build(cctx,
			[]model.Trade{trade(0, "2023-24", "", "Gold", "Moss", pick("Gold", "Gold", 2026, 1))}, nil, nil)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestSlotResolution(t *testing.T) {
	ctx := context.Background()
	sent := []model.Trade{
		trade(0, "2023-24", "2023-12-01", "Gold", "Moss", pick("Gold", "Gold", 2024, 1)),
	}

	Convey("Given draft results naming the original team", t, func() {
		drafts := provenance.Drafts{2024: {
			{Round: 1, PickNumber: 1, Team: "Green Machine", Player: "Other"},
			{Round: 1, PickNumber: 2, Team: "Moss Bosses", Player: "Moss Own"},
			{Round: 1, PickNumber: 3, Team: "Moss Bosses", OriginalTeam: "Golden State of Mind", Player: "Rookie"},
		}}

		Convey("Then the pick is completed at that slot", func() {
			ledger, _ := provenance.NewTracker(owners()).Build(ctx, sent, drafts, nil)
			e, _ := ledger.Lookup("Gold_2024_R1")
			So(e.Status, ShouldEqual, types.PickCompleted)
			So(e.Outcome.Method, ShouldEqual, provenance.MethodOriginalTeam)
			So(e.Outcome.Overall, ShouldEqual, 3)
			So(e.Outcome.Player, ShouldEqual, "Rookie")
			So(e.Outcome.Grade, ShouldEqual, types.GradeA)
		})
	})

	Convey("Given results without original teams and last season's standings", t, func() {
		drafts := provenance.Drafts{2024: {
			{Round: 1, PickNumber: 1, Team: "Moss Bosses"},
			{Round: 1, PickNumber: 2, Team: "Moss Bosses"},
			{Round: 1, PickNumber: 3, Team: "Green Machine"},
		}}
		last := standings("2023-24", "Green Machine", "Moss Bosses", "Golden State of Mind")

		Convey("Then the reverse-standings slot held by the holder is used", func() {
			ledger, _ := provenance.NewTracker(owners()).Build(ctx, sent, drafts, last)
			e, _ := ledger.Lookup("Gold_2024_R1")
			So(e.Outcome.Method, ShouldEqual, provenance.MethodExpectedSlot)
			So(e.Outcome.PickNumber, ShouldEqual, 1)
			So(e.Outcome.Grade, ShouldEqual, types.GradeAPlus)
		})

		Convey("Then without standings two holder slots are unresolvable", func() {
			ledger, _ := provenance.NewTracker(owners()).Build(ctx, sent, drafts, nil)
			e, _ := ledger.Lookup("Gold_2024_R1")
			So(e.Status, ShouldEqual, types.PickCompleted)
			So(e.Outcome, ShouldBeNil)
			_, _, graded := e.Grade()
			So(graded, ShouldBeFalse)
			So(kinds(ledger.Issues, model.ErrUnresolvedDraftSlot), ShouldEqual, 1)
		})
	})

	Convey("Given the holder made exactly one selection in the round", t, func() {
		drafts := provenance.Drafts{2024: {
			{Round: 1, PickNumber: 1, Team: "Green Machine"},
			{Round: 1, PickNumber: 2, Team: "Moss Bosses"},
			{Round: 2, PickNumber: 1, Team: "Moss Bosses"},
		}}

		Convey("Then that selection is used", func() {
			ledger, _ := provenance.NewTracker(owners()).Build(ctx, sent, drafts, nil)
			e, _ := ledger.Lookup("Gold_2024_R1")
			So(e.Outcome.Method, ShouldEqual, provenance.MethodHolderOnly)
			So(e.Outcome.PickNumber, ShouldEqual, 2)
		})
	})
}

func TestSlotGrades(t *testing.T) {
	Convey("Given the default slot table", t, func() {
		table := provenance.DefaultSlotTable()

		Convey("Then grades fall as the slot rises", func() {
			So(table.Grade(1), ShouldEqual, types.GradeAPlus)
			So(table.Grade(2), ShouldEqual, types.GradeAPlus)
			So(table.Grade(3), ShouldEqual, types.GradeA)
			So(table.Grade(7), ShouldEqual, types.GradeB)
			So(table.Grade(10), ShouldEqual, types.GradeC)
			So(table.Grade(15), ShouldEqual, types.GradeD)
			So(table.Grade(16), ShouldEqual, types.GradeF)
			prev := table.Grade(1)
			for s := 2; s <= 30; s++ {
				So(table.Grade(s).Rank(), ShouldBeGreaterThanOrEqualTo, prev.Rank())
				prev = table.Grade(s)
			}
		})

		Convey("Then every second-round grade is below every first-round grade", func() {
			worstFirst := table.Grade(provenance.Overall(1, provenance.DefaultSlotsPerRound, provenance.DefaultSlotsPerRound))
			bestSecond := table.Grade(provenance.Overall(2, 1, provenance.DefaultSlotsPerRound))
			So(bestSecond.Rank(), ShouldBeGreaterThan, worstFirst.Rank())
		})

		Convey("Then malformed tables are rejected", func() {
			So(table.Validate(), ShouldBeNil)
			bad := provenance.SlotTable{{Max: 4, Grade: types.GradeA}, {Max: 2, Grade: types.GradeB}}
			So(errors.Is(bad.Validate(), provenance.ErrInvalidSlotTable), ShouldBeTrue)
		})
	})

	Convey("Given one slot per round", t, func() {
		ctx := context.Background()
		trades := []model.Trade{trade(0, "2023-24", "", "Gold", "Moss", pick("Gold", "Gold", 2024, 2))}
		drafts := provenance.Drafts{2024: {{Round: 2, PickNumber: 1, Team: "Moss Bosses"}}}

		Convey("Then a second-round pick is still capped", func() {
			ledger, _ := provenance.NewTracker(owners(), provenance.WithSlotsPerRound(1)).Build(ctx, trades, drafts, nil)
			e, _ := ledger.Lookup("Gold_2024_R2")
			So(e.Outcome.Overall, ShouldEqual, 2)
			So(e.Outcome.Grade, ShouldEqual, types.GradeD)
			So(e.Outcome.GPA, ShouldEqual, 1.0)
		})

		Convey("Then the cap is configurable", func() {
			ledger, _ := provenance.NewTracker(owners(),
				provenance.WithSlotsPerRound(1),
				provenance.WithRound2Cap(types.GradeB)).Build(ctx, trades, drafts, nil)
			e, _ := ledger.Lookup("Gold_2024_R2")
			So(e.Outcome.Grade, ShouldEqual, types.GradeB)
		})
	})
}

func TestRollups(t *testing.T) {
	Convey("Given a ledger with graded and pending picks", t, func() {
		ctx := context.Background()
		trades := []model.Trade{
			trade(0, "2023-24", "", "Gold", "Moss", pick("Gold", "Gold", 2024, 1)),
			trade(1, "2023-24", "", "Green", "Gold", pick("Green", "Green", 2026, 1)),
			trade(2, "2024-25", "", "Gold", "Green", pick("Gold", "Green", 2026, 1)),
		}
		drafts := provenance.Drafts{2024: {{Round: 1, PickNumber: 3, Team: "Moss Bosses", OriginalTeam: "Gold"}}}
		ledger, err := provenance.NewTracker(owners()).Build(ctx, trades, drafts, nil)
		So(err, ShouldBeNil)

		Convey("Then each owner's portfolio is derived", func() {
			roll := map[model.OwnerID]provenance.Rollup{}
			for _, r := range ledger.Rollups() {
				roll[r.Owner] = r
			}
			So(roll["Moss"].Acquired, ShouldEqual, 1)
			So(*roll["Moss"].ReceivedGPA, ShouldEqual, 4.0)
			So(roll["Gold"].Sent, ShouldEqual, 2)
			So(*roll["Gold"].SentGPA, ShouldEqual, 4.0)
			So(roll["Green"].Own, ShouldEqual, 1)
			So(roll["Green"].Sent, ShouldEqual, 1)
			So(roll["Green"].SentGPA, ShouldBeNil)
		})

		Convey("Then status counts cover every entry", func() {
			counts := ledger.StatusCounts()
			So(counts[types.PickCompleted], ShouldEqual, 1)
			So(counts[types.PickPending], ShouldEqual, 1)
		})
	})
}

func player(from model.OwnerID, name string) model.Asset {
	return model.Asset{Kind: model.KindPlayer, From: from, Raw: name, Player: name, PlayerKey: resolve.Normalize(name)}
}

func TestPlayerMovements(t *testing.T) {
	Convey("Given a player traded twice and listed out of order", t, func() {
		trades := []model.Trade{
			trade(1, "2024-25", "2024-12-10", "Moss", "Green", player("Moss", "Herb Jones")),
			trade(0, "2023-24", "2023-11-02", "Gold", "Moss", player("Gold", "Herb Jones"), pick("Gold", "Gold", 2026, 1)),
			trade(2, "2024-25", "2025-01-05", "Green", "Gold", player("Green", "Ja Morant")),
		}
		moves := provenance.PlayerMovements(trades)

		Convey("Then each player has one chain in key order", func() {
			So(len(moves), ShouldEqual, 2)
			So(moves[0].Key, ShouldEqual, "herb jones")
			So(moves[1].Key, ShouldEqual, "ja morant")
		})

		Convey("Then the chain is chronological and ends with the last receiver", func() {
			h := moves[0]
			So(len(h.Transfers), ShouldEqual, 2)
			So(h.Transfers[0].TradeIndex, ShouldEqual, 0)
			So(h.Transfers[0].To, ShouldEqual, model.OwnerID("Moss"))
			So(h.Transfers[1].From, ShouldEqual, model.OwnerID("Moss"))
			So(h.CurrentOwner, ShouldEqual, model.OwnerID("Green"))
		})

		Convey("Then picks do not appear", func() {
			n := 0
			for _, h := range moves {
				n += len(h.Transfers)
			}
			So(n, ShouldEqual, 3)
		})
	})
}
