package repository_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/dynasty/internal/adapters/repository"
	"github.com/okian/dynasty/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	var out []string
	for _, e := range entries {
		out = append(out, e.Name())
	}
	return out
}

func TestFileStoreInputs(t *testing.T) {
	ctx := context.Background()

	Convey("Given an empty input directory", t, func() {
		s := repository.NewFileStore(repository.WithInputDir(t.TempDir()))

		Convey("Then required inputs are fatal", func() {
			_, err := s.Backbone(ctx)
			So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
			_, err = s.Stats(ctx)
			So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
		})

		Convey("Then optional inputs are empty", func() {
			rows, err := s.Bundle(ctx)
			So(err, ShouldBeNil)
			So(rows, ShouldBeEmpty)
			drafts, err := s.Drafts(ctx)
			So(err, ShouldBeNil)
			So(drafts, ShouldBeEmpty)
			standings, err := s.Standings(ctx)
			So(err, ShouldBeNil)
			So(standings, ShouldBeEmpty)
		})
	})

	Convey("Given a full set of inputs", t, func() {
		dir := t.TempDir()
		write(t, dir, "backbone.json", `[{"season":"2023-24","give":["GOLD Pascal Siakam"],"get":["MOSS Jalen Williams"]}]`)
		write(t, dir, "log.csv", "Date,From,To,Player\n\"Tue Jan 16, 2024, 9:15PM\",Gold,Moss,Pascal Siakam\n")
		write(t, dir, "stats.json", `{"2023-24":[{"name":"Pascal Siakam","gp":70,"pts":21.5}]}`)
		write(t, dir, "drafts.json", `{"2024":[{"round":1,"pick_number":3,"team":"Moss"}]}`)
		write(t, dir, "standings.json", `{"2023-24":[{"rank":1,"team":"Gold","score":1200.5}]}`)
		s := repository.NewFileStore(
			repository.WithInputDir(dir),
			repository.WithInputs(repository.Inputs{Bundle: "log.csv"}))

		Convey("Then each input is decoded", func() {
			bb, err := s.Backbone(ctx)
			So(err, ShouldBeNil)
			So(bb[0].Give, ShouldResemble, []string{"GOLD Pascal Siakam"})

			rows, err := s.Bundle(ctx)
			So(err, ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
			So(rows[0].Date, ShouldEqual, "Tue Jan 16, 2024, 9:15PM")
			So(rows[0].Asset, ShouldEqual, "Pascal Siakam")

			stats, err := s.Stats(ctx)
			So(err, ShouldBeNil)
			So(stats[model.Season("2023-24")][0].PTS, ShouldEqual, 21.5)

			drafts, err := s.Drafts(ctx)
			So(err, ShouldBeNil)
			So(drafts[2024][0].PickNumber, ShouldEqual, 3)

			standings, err := s.Standings(ctx)
			So(err, ShouldBeNil)
			So(standings[model.Season("2023-24")][0].Team, ShouldEqual, "Gold")
		})
	})

	Convey("Given malformed inputs", t, func() {
		dir := t.TempDir()
		write(t, dir, "backbone.json", `{not json`)
		write(t, dir, "stats.json", `{"last year":[]}`)
		write(t, dir, "drafts.json", `{"next":[]}`)
		s := repository.NewFileStore(repository.WithInputDir(dir))

		Convey("Then each is reported as invalid", func() {
			_, err := s.Backbone(ctx)
			So(errors.Is(err, repository.ErrInvalidArtifact), ShouldBeTrue)
			_, err = s.Stats(ctx)
			So(errors.Is(err, repository.ErrInvalidArtifact), ShouldBeTrue)
			_, err = s.Drafts(ctx)
			So(errors.Is(err, repository.ErrInvalidArtifact), ShouldBeTrue)
		})
	})
}

func TestFileStoreCommit(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2025, 7, 1, 12, 0, 0, 0, time.UTC) }

	Convey("Given staged artifacts", t, func() {
		out := t.TempDir()
		s := repository.NewFileStore(
			repository.WithOutputDir(out),
			repository.WithRunID("run-1"),
			repository.WithClock(clock))
		So(s.Stage(ctx, repository.ArtifactTrades, []string{"t0"}), ShouldBeNil)
		So(s.Stage(ctx, repository.ArtifactRunReport, map[string]int{"issues": 0}), ShouldBeNil)

		Convey("Then nothing is visible before commit", func() {
			_, err := s.Artifact(ctx, repository.ArtifactTrades)
			So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
		})

		Convey("When committed", func() {
			So(s.Commit(ctx), ShouldBeNil)

			Convey("Then every artifact is in place with the run id", func() {
				So(listDir(t, out), ShouldResemble, []string{repository.ArtifactRunReport, repository.ArtifactTrades})
				v, err := s.Artifact(ctx, repository.ArtifactTrades)
				So(err, ShouldBeNil)
				doc := v.(map[string]any)
				meta := doc["meta"].(map[string]any)
				So(meta["run_id"], ShouldEqual, "run-1")
				So(meta["generated_at"], ShouldEqual, "2025-07-01T12:00:00Z")
				So(doc["data"], ShouldResemble, []any{"t0"})
			})

			Convey("Then a second commit has nothing to do", func() {
				So(errors.Is(s.Commit(ctx), repository.ErrNothingStaged), ShouldBeTrue)
			})
		})
	})

	Convey("Given a previous artifact and a run that is discarded", t, func() {
		out := t.TempDir()
		write(t, out, repository.ArtifactTrades, `{"meta":{"run_id":"old"},"data":[]}`)
		s := repository.NewFileStore(repository.WithOutputDir(out), repository.WithRunID("new"))
		So(s.Stage(ctx, repository.ArtifactTrades, []string{"partial"}), ShouldBeNil)

		Convey("Then the prior artifact is untouched and no staging file remains", func() {
			So(s.Discard(), ShouldBeNil)
			So(listDir(t, out), ShouldResemble, []string{repository.ArtifactTrades})
			v, err := s.Artifact(ctx, repository.ArtifactTrades)
			So(err, ShouldBeNil)
			So(v.(map[string]any)["meta"].(map[string]any)["run_id"], ShouldEqual, "old")
		})
	})

	Convey("Given a commit that fails on one artifact", t, func() {
		out := t.TempDir()
		So(os.Mkdir(filepath.Join(out, repository.ArtifactTrades), 0o755), ShouldBeNil)
		write(t, filepath.Join(out, repository.ArtifactTrades), "keep", "x")
		s := repository.NewFileStore(repository.WithOutputDir(out), repository.WithRunID("run-2"))
		So(s.Stage(ctx, repository.ArtifactPickLedger, []string{"p0"}), ShouldBeNil)
		So(s.Stage(ctx, repository.ArtifactTrades, []string{"t0"}), ShouldBeNil)
		So(s.Stage(ctx, repository.ArtifactRunReport, map[string]int{"issues": 0}), ShouldBeNil)

		Convey("Then the run report is never committed", func() {
			So(s.Commit(ctx), ShouldNotBeNil)
			_, err := s.Artifact(ctx, repository.ArtifactRunReport)
			So(errors.Is(err, repository.ErrArtifactMissing), ShouldBeTrue)
			So(listDir(t, out), ShouldResemble, []string{repository.ArtifactPickLedger, repository.ArtifactTrades})
		})
	})

	Convey("Given a cancelled context at commit time", t, func() {
		out := t.TempDir()
		s := repository.NewFileStore(repository.WithOutputDir(out))
		So(s.Stage(ctx, repository.ArtifactTrades, 1), ShouldBeNil)
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		Convey("Then staging files are removed", func() {
			So(errors.Is(s.Commit(cctx), context.Canceled), ShouldBeTrue)
			So(listDir(t, out), ShouldBeEmpty)
		})
	})

	Convey("Given two stores", t, func() {
		a, b := repository.NewFileStore(), repository.NewFileStore()
		So(a.RunID(), ShouldNotEqual, b.RunID())
		So(len(a.RunID()), ShouldEqual, 36)
	})
}
