package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	. "github.com/smartystreets/goconvey/convey"
)

func gather(r *prometheus.Registry, name string) []*dto.Metric {
	families, err := r.Gather()
	So(err, ShouldBeNil)
	for _, f := range families {
		if f.GetName() == name {
			return f.GetMetric()
		}
	}
	return nil
}

func labelValue(m *dto.Metric, name string) string {
	for _, l := range m.GetLabel() {
		if l.GetName() == name {
			return l.GetValue()
		}
	}
	return ""
}

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test"),
				WithSubsystem("run"),
				WithStageBuckets([]float64{1, 10}),
				WithConstLabels(map[string]string{"league": "main"}),
				WithPrometheusRegistry(registry),
			)
			manager.UpdateReconciliation(Reconciliation{Trades: 3})

			Convey("Then metrics use the namespace and constant labels", func() {
				ms := gather(registry, "test_run_trades")
				So(len(ms), ShouldEqual, 1)
				So(ms[0].GetGauge().GetValue(), ShouldEqual, 3)
				So(labelValue(ms[0], "league"), ShouldEqual, "main")
			})
		})

		Convey("When stage buckets arrive out of order", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry), WithStageBuckets([]float64{100, 1, 10}))
			manager.RecordStageDuration("reconcile", 5*time.Millisecond)

			Convey("Then the histogram uses them sorted", func() {
				ms := gather(registry, "dynasty_pipeline_stage_duration_milliseconds")
				So(len(ms), ShouldEqual, 1)
				var bounds []float64
				for _, b := range ms[0].GetHistogram().GetBucket() {
					bounds = append(bounds, b.GetUpperBound())
				}
				So(bounds, ShouldResemble, []float64{1, 10, 100})
			})
		})

		Convey("When two managers use separate registries", func() {
			So(func() {
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
				NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
			}, ShouldNotPanic)
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry))

		Convey("When a run is recorded", func() {
			m.UpdateReconciliation(Reconciliation{Trades: 10, Confirmed: 7, NeedsReview: 3, Injected: 1, Duplicates: 2})
			m.UpdatePicks(map[string]int{"completed": 4, "projected": 2})
			m.UpdateGrades(map[string]int{"A": 3, "INC": 1})
			m.UpdateIssues(map[string]map[string]int{"reconcile": {"unparsable_pick": 2}})
			m.RecordStageDuration("reconcile", 25*time.Millisecond)
			m.RecordRun(ResultSuccess, time.Unix(1700000000, 0))

			Convey("Then every gauge carries the run's values", func() {
				So(gather(registry, "dynasty_pipeline_trades_confirmed")[0].GetGauge().GetValue(), ShouldEqual, 7)
				So(gather(registry, "dynasty_pipeline_duplicates_dropped")[0].GetGauge().GetValue(), ShouldEqual, 2)
				So(len(gather(registry, "dynasty_pipeline_picks")), ShouldEqual, 2)
				issues := gather(registry, "dynasty_pipeline_issues")
				So(labelValue(issues[0], "kind"), ShouldEqual, "unparsable_pick")
				So(issues[0].GetGauge().GetValue(), ShouldEqual, 2)
				h := gather(registry, "dynasty_pipeline_stage_duration_milliseconds")[0].GetHistogram()
				So(h.GetSampleCount(), ShouldEqual, 1)
				So(h.GetSampleSum(), ShouldEqual, 25)
				So(gather(registry, "dynasty_pipeline_last_success_timestamp_seconds")[0].GetGauge().GetValue(), ShouldEqual, 1700000000)
			})

			Convey("Then a later run replaces labelled gauges", func() {
				m.UpdatePicks(map[string]int{"pending": 1})
				picks := gather(registry, "dynasty_pipeline_picks")
				So(len(picks), ShouldEqual, 1)
				So(labelValue(picks[0], "status"), ShouldEqual, "pending")
			})
		})

		Convey("When a run fails", func() {
			m.RecordRun(ResultFailure, time.Unix(1700000000, 0))

			Convey("Then the success time is not stamped", func() {
				So(gather(registry, "dynasty_pipeline_last_success_timestamp_seconds")[0].GetGauge().GetValue(), ShouldEqual, 0)
				runs := gather(registry, "dynasty_pipeline_runs_total")
				So(labelValue(runs[0], "result"), ShouldEqual, ResultFailure)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		m := NewManager(WithPrometheusRegistry(registry), WithEnabled(false))
		m.UpdateReconciliation(Reconciliation{Trades: 5})

		Convey("Then nothing is recorded", func() {
			So(gather(registry, "dynasty_pipeline_trades")[0].GetGauge().GetValue(), ShouldEqual, 0)
		})
	})

	Convey("Given the global helpers", t, func() {
		So(func() {
			UpdateReconciliation(Reconciliation{Trades: 1})
			UpdatePicks(map[string]int{"pending": 1})
			UpdateGrades(map[string]int{"B": 1})
			UpdateIssues(nil)
			RecordStageDuration("grade", time.Millisecond)
			RecordRun(ResultSuccess, time.Now())
		}, ShouldNotPanic)
		So(Global().Registry(), ShouldEqual, GetRegistry())
	})
}

func TestWriteTextfile(t *testing.T) {
	Convey("Given a manager with values", t, func() {
		m := NewManager(WithPrometheusRegistry(prometheus.NewRegistry()))
		m.UpdateReconciliation(Reconciliation{Trades: 12})

		Convey("When written to a textfile", func() {
			path := filepath.Join(t.TempDir(), "dynasty.prom")
			So(m.WriteTextfile(path), ShouldBeNil)

			Convey("Then the file holds the exposition format", func() {
				body, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(strings.Contains(string(body), "dynasty_pipeline_trades 12"), ShouldBeTrue)
			})
		})

		Convey("When the directory does not exist", func() {
			err := m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
			So(err, ShouldNotBeNil)
		})
	})
}
