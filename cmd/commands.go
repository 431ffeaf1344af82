package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/google/subcommands"
	"github.com/okian/dynasty/internal/adapters/repository"
	service "github.com/okian/dynasty/internal/app"
	"github.com/okian/dynasty/internal/config"
	"github.com/okian/dynasty/internal/domain/combine"
	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/pkg/logger"
	"github.com/okian/dynasty/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// commands are the pipeline subcommands; each runs every stage up to its own.
var commands = []subcommands.Command{
	&runCmd{name: "reconcile", through: service.ThroughReconcile,
		synopsis: "merge the backbone and bundle into the canonical trade list"},
	&runCmd{name: "picks", through: service.ThroughPicks,
		synopsis: "reconcile, then trace every traded pick to its draft slot"},
	&runCmd{name: "grade", through: service.ThroughGrade,
		synopsis: "reconcile, trace picks and grade every trade"},
	&runCmd{name: "run", through: service.ThroughGrade,
		synopsis: "run the whole pipeline (same as grade)"},
}

// common holds the flags every subcommand accepts.
type common struct {
	configPath string
	dataDir    string
	outDir     string
}

func (c *common) setFlags(f *flag.FlagSet) {
	f.StringVar(&c.configPath, "config", "", "YAML config file (overrides DYNASTY_CONFIG)")
	f.StringVar(&c.dataDir, "data", "", "input directory (overrides data_dir)")
	f.StringVar(&c.outDir, "out", "", "artifact directory (overrides out_dir)")
}

// setup loads configuration, initializes logging and builds the service.
func (c *common) setup(ctx context.Context) (*service.Service, error) {
	if c.configPath != "" {
		if err := os.Setenv(config.EnvPrefix+"CONFIG", c.configPath); err != nil {
			return nil, err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
	}
	if c.outDir != "" {
		cfg.OutDir = c.outDir
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(os.Stderr)); err != nil {
		return nil, err
	}
	log := logger.Get()
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	league, err := config.LoadLeague(cfg.Input(cfg.LeagueFile))
	if err != nil {
		return nil, err
	}
	store := repository.NewFileStore(
		repository.WithInputDir(cfg.DataDir),
		repository.WithOutputDir(cfg.OutDir),
		repository.WithInputs(repository.Inputs{
			Backbone:  cfg.BackboneFile,
			Bundle:    cfg.BundleFile,
			Stats:     cfg.StatsFile,
			Drafts:    cfg.DraftsFile,
			Standings: cfg.StandingsFile,
		}),
	)
	newResolver := func(players []string) (service.Resolver, error) {
		r, err := league.Resolver(cfg, players...)
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	return service.New(store, newResolver, serviceOptions(cfg, log)...), nil
}

// serviceOptions maps configuration onto the stages.
func serviceOptions(cfg *config.Config, log logger.Logger) []service.Option {
	return []service.Option{
		service.WithLogger(log.Named("pipeline")),
		service.WithMetrics(newMetrics(cfg)),
		service.WithMetricsTextfile(cfg.MetricsTextfile),
		service.WithScoringOptions(
			scoring.WithDeltaScale(cfg.DeltaScale),
			scoring.WithMissingPostFactor(cfg.MissingPostFactor),
			scoring.WithMissingPreFactor(cfg.MissingPreFactor),
		),
		service.WithProvenanceOptions(
			provenance.WithSlotsPerRound(cfg.SlotsPerRound),
			provenance.WithSlotTable(cfg.SlotTable),
			provenance.WithRound2Cap(cfg.Round2GradeCap),
			provenance.WithGPATable(cfg.GPATable),
		),
		service.WithCombineOptions(
			combine.WithWeights(cfg.PlayerWeight, cfg.PickWeight),
			combine.WithMargin(cfg.WinMargin),
			combine.WithGPATable(cfg.GPATable),
			combine.WithCutPoints(cfg.CutPoints),
		),
	}
}

// newMetrics builds the run's metrics manager on its own registry so the
// textfile holds only pipeline series.
func newMetrics(cfg *config.Config) *metrics.Manager {
	return metrics.NewManager(
		metrics.WithPrometheusRegistry(prometheus.NewRegistry()),
		metrics.WithEnabled(cfg.MetricsEnabled),
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithStageBuckets(cfg.MetricsBuckets),
		metrics.WithConstLabels(cfg.MetricsLabels),
	)
}

type runCmd struct {
	common
	name     string
	synopsis string
	through  service.Through
	out      io.Writer
}

func (c *runCmd) Name() string     { return c.name }
func (c *runCmd) Synopsis() string { return c.synopsis }
func (c *runCmd) Usage() string {
	return fmt.Sprintf(`%s [-config <file>] [-data <dir>] [-out <dir>]

  %s. Artifacts are written to the output directory only when every stage
  succeeds; the run report is printed to stdout.
`, c.name, c.synopsis)
}

func (c *runCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *runCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.setup(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rep, err := svc.Run(ctx, c.through)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if err := printJSON(c.writer(), summary(rep)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (c *runCmd) writer() io.Writer {
	if c.out != nil {
		return c.out
	}
	return os.Stdout
}

// runSummary is the stdout view of a run report; the full report with every
// issue is in run_report.json.
type runSummary struct {
	RunID       string         `json:"run_id"`
	Through     string         `json:"through"`
	Trades      int            `json:"trades"`
	Confirmed   int            `json:"confirmed"`
	NeedsReview int            `json:"needs_review"`
	Picks       map[string]int `json:"picks,omitempty"`
	Grades      map[string]int `json:"grades,omitempty"`
	Issues      map[string]int `json:"issues"`
}

func summary(rep *service.RunReport) runSummary {
	return runSummary{
		RunID:       rep.RunID,
		Through:     rep.Through,
		Trades:      rep.Reconcile.Trades,
		Confirmed:   rep.Reconcile.Confirmed,
		NeedsReview: rep.Reconcile.NeedsReview,
		Picks:       rep.Picks,
		Grades:      rep.Grades,
		Issues:      rep.IssueCounts,
	}
}

type auditCmd struct {
	common
	out io.Writer
}

func (*auditCmd) Name() string     { return "audit" }
func (*auditCmd) Synopsis() string { return "check every owner field in the artifacts is a canonical owner" }
func (*auditCmd) Usage() string {
	return `audit [-config <file>] [-data <dir>] [-out <dir>]

  Walks the committed artifacts and lists owner references that are not
  league owner ids. Exits non-zero when any are found.
`
}

func (c *auditCmd) SetFlags(f *flag.FlagSet) { c.setFlags(f) }

func (c *auditCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	svc, err := c.setup(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	rep, err := svc.Audit(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	w := c.out
	if w == nil {
		w = os.Stdout
	}
	if err := printJSON(w, rep); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if len(rep.Issues) > 0 {
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
