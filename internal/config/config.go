// Package config defines run configuration and the league alias tables.
//
// Conventions:
//   - New() returns a Config filled with defaults; Load layers a YAML file and
//     DYNASTY_ environment variables on top.
//   - Scales and tables are plain data so they can be overridden from YAML.
//   - Errors are wrapped with this package's sentinels.
package config

import (
	"fmt"
	"path/filepath"

	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/resolve"
	"github.com/okian/dynasty/internal/domain/scoring"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/shopspring/decimal"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json output.
	LogFormat string `koanf:"log_format"`

	// DataDir holds the input snapshots, OutDir the written artifacts.
	DataDir string `koanf:"data_dir"`
	OutDir  string `koanf:"out_dir"`

	LeagueFile    string `koanf:"league_file"`
	BackboneFile  string `koanf:"backbone_file"`
	BundleFile    string `koanf:"bundle_file"`
	StatsFile     string `koanf:"stats_file"`
	DraftsFile    string `koanf:"drafts_file"`
	StandingsFile string `koanf:"standings_file"`

	// MetricsTextfile is written after every run when set.
	MetricsTextfile  string            `koanf:"metrics_textfile"`
	MetricsEnabled   bool              `koanf:"metrics_enabled"`
	MetricsNamespace string            `koanf:"metrics_namespace"`
	MetricsBuckets   []float64         `koanf:"metrics_buckets"`
	MetricsLabels    map[string]string `koanf:"metrics_labels"`

	// OwnerThreshold and PlayerThreshold are the minimum similarity for a
	// fuzzy match.
	OwnerThreshold  float64 `koanf:"owner_threshold"`
	PlayerThreshold float64 `koanf:"player_threshold"`

	DeltaScale        scoring.Scale `koanf:"delta_scale"`
	MissingPostFactor float64       `koanf:"missing_post_factor"`
	MissingPreFactor  float64       `koanf:"missing_pre_factor"`

	SlotsPerRound  int                  `koanf:"slots_per_round"`
	SlotTable      provenance.SlotTable `koanf:"slot_table"`
	Round2GradeCap types.Grade          `koanf:"round2_grade_cap"`

	GPATable     scoring.GPATable `koanf:"gpa_table"`
	CutPoints    scoring.Scale    `koanf:"cut_points"`
	PlayerWeight float64          `koanf:"player_weight"`
	PickWeight   float64          `koanf:"pick_weight"`
	WinMargin    float64          `koanf:"win_margin"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		DataDir:           "data",
		OutDir:            "out",
		LeagueFile:        "league.yaml",
		BackboneFile:      "backbone.json",
		BundleFile:        "bundle.csv",
		StatsFile:         "stats.json",
		DraftsFile:        "drafts.json",
		StandingsFile:     "standings.json",
		MetricsEnabled:    true,
		MetricsNamespace:  "dynasty",
		MetricsBuckets:    []float64{1, 5, 10, 50, 100, 500, 1000, 5000},
		OwnerThreshold:    resolve.DefaultOwnerThreshold,
		PlayerThreshold:   resolve.DefaultPlayerThreshold,
		DeltaScale:        scoring.DefaultDeltaScale(),
		MissingPostFactor: scoring.DefaultMissingPostFactor,
		MissingPreFactor:  scoring.DefaultMissingPreFactor,
		SlotsPerRound:     provenance.DefaultSlotsPerRound,
		SlotTable:         provenance.DefaultSlotTable(),
		Round2GradeCap:    provenance.DefaultRound2Cap,
		GPATable:          scoring.DefaultGPATable(),
		CutPoints:         scoring.DefaultCutPoints(),
		PlayerWeight:      0.6,
		PickWeight:        0.4,
		WinMargin:         0.5,
	}
}

// Input returns the path of an input file under DataDir.
func (c *Config) Input(name string) string { return filepath.Join(c.DataDir, name) }

// Validate checks every value a stage would otherwise silently ignore.
func (c *Config) Validate() error {
	switch {
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.OutDir == "":
		return fmt.Errorf("%w: out_dir must not be empty", ErrInvalidConfig)
	case c.BackboneFile == "":
		return fmt.Errorf("%w: backbone_file must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format %q", ErrInvalidConfig, c.LogFormat)
	case !unit(c.OwnerThreshold) || !unit(c.PlayerThreshold):
		return fmt.Errorf("%w: thresholds must be in (0, 1]", ErrInvalidConfig)
	case c.MissingPostFactor > 0:
		return fmt.Errorf("%w: missing_post_factor must not be positive", ErrInvalidConfig)
	case c.MissingPreFactor < 0:
		return fmt.Errorf("%w: missing_pre_factor must not be negative", ErrInvalidConfig)
	case c.SlotsPerRound < 1:
		return fmt.Errorf("%w: slots_per_round must be positive", ErrInvalidConfig)
	case !c.Round2GradeCap.Valid():
		return fmt.Errorf("%w: round2_grade_cap %q", ErrInvalidConfig, c.Round2GradeCap)
	case !increasing(c.MetricsBuckets):
		return fmt.Errorf("%w: metrics_buckets must be strictly increasing", ErrInvalidConfig)
	case c.WinMargin < 0:
		return fmt.Errorf("%w: win_margin must not be negative", ErrInvalidConfig)
	case c.PlayerWeight <= 0 || c.PickWeight <= 0 ||
		!decimal.NewFromFloat(c.PlayerWeight).Add(decimal.NewFromFloat(c.PickWeight)).Equal(decimal.NewFromInt(1)):
		return fmt.Errorf("%w: player_weight and pick_weight must be positive and sum to 1", ErrInvalidConfig)
	}
	tables := []struct {
		name string
		err  error
	}{
		{"delta_scale", c.DeltaScale.Validate()},
		{"cut_points", c.CutPoints.Validate()},
		{"slot_table", c.SlotTable.Validate()},
		{"gpa_table", c.GPATable.Validate()},
	}
	for _, t := range tables {
		if t.err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, t.name, t.err)
		}
	}
	return nil
}

func unit(v float64) bool { return v > 0 && v <= 1 }

func increasing(v []float64) bool {
	for i := 1; i < len(v); i++ {
		if v[i] <= v[i-1] {
			return false
		}
	}
	return true
}
