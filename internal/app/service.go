// Package service runs the reconciliation pipeline: it loads the input
// snapshots, drives each stage in order and commits the artifacts together.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/okian/dynasty/internal/adapters/repository"
	"github.com/okian/dynasty/internal/domain/combine"
	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/reconcile"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/pkg/logger"
	"github.com/okian/dynasty/pkg/metrics"
)

// Resolver is the entity resolver as the pipeline uses it.
type Resolver interface {
	reconcile.Resolver
	Owners() []model.OwnerID
	KnownOwner(id model.OwnerID) bool
}

// ResolverFactory builds the resolver once the player universe is known.
// players holds every name found in the statistics snapshot.
type ResolverFactory func(players []string) (Resolver, error)

// Through selects the last stage a run executes.
type Through int

// Run extents. Each includes the stages before it.
const (
	ThroughReconcile Through = iota + 1
	ThroughPicks
	ThroughGrade
)

func (t Through) String() string {
	switch t {
	case ThroughReconcile:
		return report.StageReconcile
	case ThroughPicks:
		return report.StageProvenance
	case ThroughGrade:
		return report.StageCombine
	default:
		return "unknown"
	}
}

// Service wires the stores and stages together. It is not safe for
// concurrent runs; a run is one pass over one store.
type Service struct {
	store       repository.Store
	newResolver ResolverFactory

	provenanceOpts []provenance.Option
	scoringOpts    []scoring.Option
	combineOpts    []combine.Option

	metrics  *metrics.Manager
	textfile string
	now      func() time.Time

	logger logger.Logger
}

// New creates a Service reading from and writing to store.
func New(store repository.Store, newResolver ResolverFactory, opts ...Option) *Service {
	s := &Service{
		store:       store,
		newResolver: newResolver,
		metrics:     metrics.Global(),
		now:         time.Now,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reconcile loads the backbone and bundle and produces the canonical trade
// list.
func (s *Service) Reconcile(ctx context.Context, resolver Resolver) (reconcile.Result, error) {
	backbone, err := s.store.Backbone(ctx)
	if err != nil {
		return reconcile.Result{}, err
	}
	bundle, err := s.store.Bundle(ctx)
	if err != nil {
		return reconcile.Result{}, err
	}
	return reconcile.New(resolver, reconcile.WithLogger(s.logger.Named("reconcile"))).Reconcile(ctx, backbone, bundle)
}

// TrackPicks builds the pick ledger for trades.
func (s *Service) TrackPicks(ctx context.Context, resolver Resolver, trades []model.Trade) (provenance.Ledger, error) {
	drafts, err := s.store.Drafts(ctx)
	if err != nil {
		return provenance.Ledger{}, err
	}
	standings, err := s.store.Standings(ctx)
	if err != nil {
		return provenance.Ledger{}, err
	}
	tracker := provenance.NewTracker(resolver,
		append([]provenance.Option{provenance.WithLogger(s.logger.Named("provenance"))}, s.provenanceOpts...)...)
	return tracker.Build(ctx, trades, provenance.Drafts(drafts), provenance.Standings(standings))
}

// Graded is the output of the grading stages.
type Graded struct {
	Players scoring.Result
	Trades  combine.Result
	Owners  []combine.OwnerReport
}

// Grade scores the players of every trade, folds in the pick grades from
// ledger and builds the owner report cards.
func (s *Service) Grade(ctx context.Context, resolver Resolver, data map[model.Season][]model.StatLine,
	trades []model.Trade, ledger provenance.Ledger,
) (Graded, error) {
	stats := scoring.NewStats(data, func(name string) string {
		key, _ := resolver.PlayerKey(name)
		return key
	})
	grader := scoring.NewGrader(append([]scoring.Option{scoring.WithLogger(s.logger.Named("grade"))}, s.scoringOpts...)...)
	players, err := grader.Grade(ctx, trades, stats)
	if err != nil {
		return Graded{}, err
	}

	combiner := combine.New(append([]combine.Option{combine.WithLogger(s.logger.Named("combine"))}, s.combineOpts...)...)
	combined, err := combiner.Combine(ctx, trades, players.Grades, ledger)
	if err != nil {
		return Graded{}, err
	}
	return Graded{
		Players: players,
		Trades:  combined,
		Owners:  combiner.Report(combined.Grades, ledger.Rollups(), resolver.Owners()),
	}, nil
}

// TradesArtifact is the body of trades.json.
type TradesArtifact struct {
	Trades  []model.Trade          `json:"trades"`
	Matches []reconcile.MatchAudit `json:"matches"`
	Stats   reconcile.Stats        `json:"stats"`
}

// LedgerArtifact is the body of pick_ledger.json.
type LedgerArtifact struct {
	Picks   []provenance.Entry  `json:"picks"`
	Owners  []provenance.Rollup `json:"owners"`
	Summary map[string]int      `json:"summary"`
}

// Run executes every stage up to through, stages each artifact and commits
// them together. On failure the staged files are removed and the previous
// artifacts stay in place.
func (s *Service) Run(ctx context.Context, through Through) (rep *RunReport, err error) {
	if through < ThroughReconcile || through > ThroughGrade {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStage, through)
	}
	rep = newRunReport(s.store.RunID(), through, s.now())
	log := s.logger.With(logger.String("run_id", rep.RunID), logger.String("through", through.String()))
	log.Info(ctx, "run started")

	defer func() {
		if err == nil {
			return
		}
		if derr := s.store.Discard(); derr != nil {
			err = errors.Join(err, derr)
		}
		s.metrics.RecordRun(metrics.ResultFailure, s.now())
		s.exportMetrics(ctx)
		log.Error(ctx, "run failed", logger.Error(err))
	}()

	// Stats are optional until grading, but every name in them joins the
	// player universe so reconciliation and grading key players the same way.
	stats, err := s.store.Stats(ctx)
	if err != nil && (through >= ThroughGrade || !errors.Is(err, repository.ErrArtifactMissing)) {
		return nil, err
	}
	resolver, err := s.newResolver(statNames(stats))
	if err != nil {
		return nil, err
	}

	var recon reconcile.Result
	if err = s.timed(ctx, rep, report.StageReconcile, func() (e error) {
		recon, e = s.Reconcile(ctx, resolver)
		return e
	}); err != nil {
		return nil, err
	}
	rep.addReconcile(recon)
	if err = s.store.Stage(ctx, repository.ArtifactTrades, TradesArtifact{
		Trades: recon.Trades, Matches: recon.Matches, Stats: recon.Stats,
	}); err != nil {
		return nil, err
	}
	if err = s.store.Stage(ctx, repository.ArtifactPlayerMovement, provenance.PlayerMovements(recon.Trades)); err != nil {
		return nil, err
	}

	if through >= ThroughPicks {
		var ledger provenance.Ledger
		if err = s.timed(ctx, rep, report.StageProvenance, func() (e error) {
			ledger, e = s.TrackPicks(ctx, resolver, recon.Trades)
			return e
		}); err != nil {
			return nil, err
		}
		rep.addLedger(ledger)
		if err = s.store.Stage(ctx, repository.ArtifactPickLedger, LedgerArtifact{
			Picks: ledger.Entries, Owners: ledger.Rollups(), Summary: rep.Picks,
		}); err != nil {
			return nil, err
		}

		if through >= ThroughGrade {
			var graded Graded
			if err = s.timed(ctx, rep, report.StageGrade, func() (e error) {
				graded, e = s.Grade(ctx, resolver, stats, recon.Trades, ledger)
				return e
			}); err != nil {
				return nil, err
			}
			rep.addGraded(graded)
			if err = s.store.Stage(ctx, repository.ArtifactTradeGrades, graded.Trades.Grades); err != nil {
				return nil, err
			}
			if err = s.store.Stage(ctx, repository.ArtifactOwnerReport, graded.Owners); err != nil {
				return nil, err
			}
		}
	}

	rep.finish(s.now())
	if err = s.store.Stage(ctx, repository.ArtifactRunReport, rep); err != nil {
		return nil, err
	}
	if err = s.store.Commit(ctx); err != nil {
		return nil, err
	}

	s.publish(rep)
	s.metrics.RecordRun(metrics.ResultSuccess, rep.FinishedAt)
	s.exportMetrics(ctx)
	log.Info(ctx, "run committed",
		logger.Int("trades", rep.Reconcile.Trades),
		logger.Int("issues", len(rep.Issues)),
		logger.Duration("elapsed", rep.FinishedAt.Sub(rep.StartedAt)))
	return rep, nil
}

func (s *Service) timed(ctx context.Context, rep *RunReport, stage string, fn func() error) error {
	start := s.now()
	err := fn()
	d := s.now().Sub(start)
	s.metrics.RecordStageDuration(stage, d)
	rep.Stages = append(rep.Stages, StageTiming{Stage: stage, DurationMS: float64(d) / float64(time.Millisecond)})
	s.logger.Debug(ctx, "stage finished", logger.String("stage", stage), logger.Duration("elapsed", d))
	return err
}

func (s *Service) publish(rep *RunReport) {
	s.metrics.UpdateReconciliation(metrics.Reconciliation{
		Trades:      rep.Reconcile.Trades,
		Confirmed:   rep.Reconcile.Confirmed,
		NeedsReview: rep.Reconcile.NeedsReview,
		Injected:    rep.Reconcile.Injected,
		Duplicates:  rep.Reconcile.DuplicatesDropped,
	})
	if rep.Picks != nil {
		s.metrics.UpdatePicks(rep.Picks)
	}
	if rep.Grades != nil {
		s.metrics.UpdateGrades(rep.Grades)
	}
	s.metrics.UpdateIssues(rep.issuesByStage())
}

func (s *Service) exportMetrics(ctx context.Context) {
	if s.textfile == "" {
		return
	}
	if err := s.metrics.WriteTextfile(s.textfile); err != nil {
		s.logger.Warn(ctx, "metrics textfile not written", logger.Error(err))
	}
}

func statNames(data map[model.Season][]model.StatLine) []string {
	seen := make(map[string]bool)
	var names []string
	for _, lines := range data {
		for _, l := range lines {
			if l.Name != "" && !seen[l.Name] {
				seen[l.Name] = true
				names = append(names, l.Name)
			}
		}
	}
	sort.Strings(names)
	return names
}
