package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/dynasty/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func player(from model.OwnerID, name string) model.Asset {
	return model.Asset{Kind: model.KindPlayer, From: from, Raw: name, Player: name, PlayerKey: name}
}

func pick(from, orig model.OwnerID, year, round int) model.Asset {
	return model.Asset{Kind: model.KindPick, From: from, Raw: "pick", Pick: &model.PickRef{OriginalOwner: orig, Year: year, Round: round}}
}

func TestSeason(t *testing.T) {
	Convey("Given season labels", t, func() {
		Convey("When parsing a valid label", func() {
			s, err := model.ParseSeason("2023-24")

			Convey("Then the years are derived", func() {
				So(err, ShouldBeNil)
				So(s.StartYear(), ShouldEqual, 2023)
				So(s.DraftYear(), ShouldEqual, 2024)
				So(s.Next(), ShouldEqual, model.Season("2024-25"))
				So(s.Prev(), ShouldEqual, model.Season("2022-23"))
			})
		})

		Convey("When parsing malformed labels", func() {
			_, err1 := model.ParseSeason("2023")
			_, err2 := model.ParseSeason("2023-25")

			Convey("Then both are rejected", func() {
				So(errors.Is(err1, model.ErrInvalidSeason), ShouldBeTrue)
				So(errors.Is(err2, model.ErrInvalidSeason), ShouldBeTrue)
			})
		})

		Convey("When deriving a season from a date", func() {
			Convey("Then July starts the new season", func() {
				So(model.SeasonOf(time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)), ShouldEqual, model.Season("2024-25"))
				So(model.SeasonOf(time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)), ShouldEqual, model.Season("2023-24"))
			})

			Convey("Then the century rollover is formatted with two digits", func() {
				So(model.SeasonStarting(2099), ShouldEqual, model.Season("2099-00"))
			})
		})
	})
}

func TestParseDate(t *testing.T) {
	Convey("Given transaction log dates", t, func() {
		Convey("Then export and canonical layouts parse to the same day", func() {
			a, err := model.ParseDate("Tue Jan 16, 2024, 9:15PM")
			So(err, ShouldBeNil)
			b, err := model.ParseDate("2024-01-16")
			So(err, ShouldBeNil)
			So(model.FormatDate(a), ShouldEqual, model.FormatDate(b))
		})

		Convey("Then garbage is rejected", func() {
			_, err := model.ParseDate("last tuesday")
			So(errors.Is(err, model.ErrInvalidDate), ShouldBeTrue)
		})
	})
}

func TestTrade(t *testing.T) {
	Convey("Given a trade built with NewTrade", t, func() {
		tr := model.NewTrade("2023-24", "", "Gold", "Moss",
			[]model.Asset{player("Gold", "a"), pick("Gold", "Gold", 2025, 1)},
			[]model.Asset{player("Moss", "b")})

		Convey("Then received lists mirror the counterparty's given lists", func() {
			So(tr.Validate(), ShouldBeNil)
			So(len(tr.SideA.Received), ShouldEqual, 1)
			So(len(tr.SideB.Received), ShouldEqual, 2)
			So(tr.HasPlayers(), ShouldBeTrue)
			So(tr.Other("Gold"), ShouldEqual, model.OwnerID("Moss"))
		})

		Convey("When one side's gives are replaced", func() {
			tr.SetGiven("Moss", []model.Asset{player("Moss", "b"), player("Moss", "c")})

			Convey("Then conservation still holds", func() {
				So(tr.Validate(), ShouldBeNil)
				So(len(tr.SideA.Received), ShouldEqual, 2)
			})
		})

		Convey("When the sides are swapped", func() {
			rev := model.NewTrade("2023-24", "2024-01-01", "Moss", "Gold",
				[]model.Asset{player("Moss", "b")},
				[]model.Asset{pick("Gold", "Gold", 2025, 1), player("Gold", "a")})

			Convey("Then the canonical key is the same", func() {
				So(rev.CanonicalKey(), ShouldEqual, tr.CanonicalKey())
			})
		})

		Convey("When both sides share an owner", func() {
			bad := model.NewTrade("2023-24", "", "Gold", "Gold", []model.Asset{player("Gold", "a")}, nil)

			Convey("Then validation fails", func() {
				So(errors.Is(bad.Validate(), model.ErrInvalidTrade), ShouldBeTrue)
			})
		})

		Convey("When a received list is tampered with", func() {
			tr.SideA.Received = nil

			Convey("Then conservation is reported broken", func() {
				So(errors.Is(tr.Validate(), model.ErrInvalidTrade), ShouldBeTrue)
			})
		})
	})

	Convey("Given trades in different seasons and dates", t, func() {
		undated := model.Trade{Index: 0, Season: "2023-24"}
		dated := model.Trade{Index: 1, Season: "2023-24", Date: "2024-02-01"}
		earlier := model.Trade{Index: 2, Season: "2022-23"}

		Convey("Then seasons order first and undated trades sort last", func() {
			So(model.ChronoLess(earlier, dated), ShouldBeTrue)
			So(model.ChronoLess(dated, undated), ShouldBeTrue)
			So(model.ChronoLess(undated, dated), ShouldBeFalse)
		})
	})
}
