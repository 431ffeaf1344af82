// Package report collects the recoverable problems a run skipped or flagged.
package report

import (
	"errors"
	"sort"
	"strings"

	"github.com/okian/dynasty/internal/domain/model"
)

// Stage names.
const (
	StageReconcile  = "reconcile"
	StageProvenance = "provenance"
	StageGrade      = "grade"
	StageCombine    = "combine"
	StageAudit      = "audit"
)

// KindOther labels errors outside the known taxonomy.
const KindOther = "other"

// Issue is one skipped or flagged item.
type Issue struct {
	Stage  string `json:"stage"`
	Kind   string `json:"kind"`
	Ref    string `json:"ref"`
	Detail string `json:"detail"`
}

// Collector accumulates issues in the order they were found.
type Collector struct {
	issues []Issue
}

// NewCollector returns an empty collector.
func NewCollector() *Collector { return &Collector{} }

// Add records err against ref. A nil err is ignored.
func (c *Collector) Add(stage, ref string, err error) {
	if err == nil {
		return
	}
	c.issues = append(c.issues, Issue{Stage: stage, Kind: KindOf(err), Ref: ref, Detail: err.Error()})
}

// Issues returns a copy of the collected issues.
func (c *Collector) Issues() []Issue {
	out := make([]Issue, len(c.issues))
	copy(out, c.issues)
	return out
}

// Len returns the number of issues.
func (c *Collector) Len() int { return len(c.issues) }

// Count returns the number of issues of the given kind.
func (c *Collector) Count(kind string) int {
	n := 0
	for _, is := range c.issues {
		if is.Kind == kind {
			n++
		}
	}
	return n
}

// Counts returns issue totals per kind.
func (c *Collector) Counts() map[string]int {
	out := make(map[string]int)
	for _, is := range c.issues {
		out[is.Kind]++
	}
	return out
}

// Kinds returns the kinds present, sorted.
func (c *Collector) Kinds() []string {
	counts := c.Counts()
	out := make([]string, 0, len(counts))
	for k := range counts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// KindOf maps err onto the recoverable taxonomy, e.g. "unparsable_pick".
func KindOf(err error) string {
	for _, kind := range model.Kinds {
		if errors.Is(err, kind) {
			return strings.ReplaceAll(kind.Error(), " ", "_")
		}
	}
	return KindOther
}

// Kind returns the report label of a taxonomy error.
func Kind(err error) string { return strings.ReplaceAll(err.Error(), " ", "_") }
