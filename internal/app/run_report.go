package service

import (
	"time"

	"github.com/okian/dynasty/internal/domain/provenance"
	"github.com/okian/dynasty/internal/domain/reconcile"
	"github.com/okian/dynasty/internal/domain/report"
)

// StageTiming is one stage's wall time.
type StageTiming struct {
	Stage      string  `json:"stage"`
	DurationMS float64 `json:"duration_ms"`
}

// RunReport is the body of run_report.json: counts from every stage that ran
// and every issue they raised, in stage order.
type RunReport struct {
	RunID      string        `json:"run_id"`
	Through    string        `json:"through"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Stages     []StageTiming `json:"stages"`

	Reconcile reconcile.Stats `json:"reconcile"`
	Picks     map[string]int  `json:"picks,omitempty"`
	Grades    map[string]int  `json:"grades,omitempty"`
	Basis     map[string]int  `json:"grade_basis,omitempty"`
	Verdicts  map[string]int  `json:"verdicts,omitempty"`

	IssueCounts map[string]int `json:"issue_counts"`
	Issues      []report.Issue `json:"issues"`
}

func newRunReport(runID string, through Through, start time.Time) *RunReport {
	return &RunReport{
		RunID:       runID,
		Through:     through.String(),
		StartedAt:   start.UTC(),
		IssueCounts: map[string]int{},
		Issues:      []report.Issue{},
	}
}

func (r *RunReport) addReconcile(res reconcile.Result) {
	r.Reconcile = res.Stats
	r.addIssues(res.Issues)
}

func (r *RunReport) addLedger(l provenance.Ledger) {
	r.Picks = make(map[string]int)
	for status, n := range l.StatusCounts() {
		r.Picks[string(status)] = n
	}
	r.addIssues(l.Issues)
}

func (r *RunReport) addGraded(g Graded) {
	r.Grades = make(map[string]int)
	for grade, n := range g.Trades.Distribution() {
		r.Grades[string(grade)] = n
	}
	r.Basis = make(map[string]int)
	for basis, n := range g.Trades.BasisCounts() {
		r.Basis[string(basis)] = n
	}
	r.Verdicts = make(map[string]int)
	for _, t := range g.Trades.Grades {
		r.Verdicts[string(t.Verdict)]++
	}
	r.addIssues(g.Players.Issues)
	r.addIssues(g.Trades.Issues)
}

func (r *RunReport) addIssues(issues []report.Issue) {
	for _, is := range issues {
		r.IssueCounts[is.Kind]++
	}
	r.Issues = append(r.Issues, issues...)
}

func (r *RunReport) finish(at time.Time) { r.FinishedAt = at.UTC() }

// issuesByStage groups issue counts for the metrics gauges.
func (r *RunReport) issuesByStage() map[string]map[string]int {
	out := make(map[string]map[string]int)
	for _, is := range r.Issues {
		if out[is.Stage] == nil {
			out[is.Stage] = make(map[string]int)
		}
		out[is.Stage][is.Kind]++
	}
	return out
}
