package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/dynasty/internal/config"
	"github.com/okian/dynasty/internal/domain/types"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "data")
				convey.So(cfg.OwnerThreshold, convey.ShouldEqual, 0.85)
				convey.So(len(cfg.DeltaScale), convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("DYNASTY_DATA_DIR", "/srv/league")
			_ = os.Setenv("DYNASTY_PLAYER_THRESHOLD", "0.9")
			_ = os.Setenv("DYNASTY_SLOTS_PER_ROUND", "12")
			_ = os.Setenv("DYNASTY_ROUND2_GRADE_CAP", "C")
			_ = os.Setenv("DYNASTY_METRICS_ENABLED", "false")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.DataDir, convey.ShouldEqual, "/srv/league")
				convey.So(cfg.PlayerThreshold, convey.ShouldEqual, 0.9)
				convey.So(cfg.SlotsPerRound, convey.ShouldEqual, 12)
				convey.So(cfg.Round2GradeCap, convey.ShouldEqual, types.GradeC)
				convey.So(cfg.MetricsEnabled, convey.ShouldBeFalse)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
out_dir: "artifacts"
win_margin: 0.75
delta_scale:
  - {min: 10, grade: "A+"}
  - {min: 5, grade: "A"}
  - {min: 0, grade: "C"}
gpa_table:
  "A+": 4.5
metrics_namespace: league
metrics_buckets: [2, 20, 200]
metrics_labels:
  league: main
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DYNASTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutDir, convey.ShouldEqual, "artifacts")
				convey.So(cfg.WinMargin, convey.ShouldEqual, 0.75)
				convey.So(len(cfg.DeltaScale), convey.ShouldEqual, 3)
				convey.So(cfg.DeltaScale.Grade(6), convey.ShouldEqual, types.GradeA)
				convey.So(cfg.GPATable[types.GradeAPlus], convey.ShouldEqual, 4.5)
				convey.So(cfg.GPATable[types.GradeB], convey.ShouldEqual, 3.0) // From defaults
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "league")
				convey.So(cfg.MetricsBuckets, convey.ShouldResemble, []float64{2, 20, 200})
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"league": "main"})
				convey.So(cfg.MetricsEnabled, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
out_dir: "artifacts"
owner_threshold: 0.9
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DYNASTY_CONFIG", tmpFile)
			_ = os.Setenv("DYNASTY_OWNER_THRESHOLD", "0.95") // This should override the file
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.OutDir, convey.ShouldEqual, "artifacts")
				convey.So(cfg.OwnerThreshold, convey.ShouldEqual, 0.95)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("DYNASTY_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("DYNASTY_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with an out-of-range threshold", func() {
			_ = os.Setenv("DYNASTY_OWNER_THRESHOLD", "1.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("DYNASTY_SLOTS_PER_ROUND", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"DYNASTY_CONFIG",
		"DYNASTY_DATA_DIR",
		"DYNASTY_OWNER_THRESHOLD",
		"DYNASTY_PLAYER_THRESHOLD",
		"DYNASTY_SLOTS_PER_ROUND",
		"DYNASTY_ROUND2_GRADE_CAP",
		"DYNASTY_METRICS_ENABLED",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "dynasty-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
