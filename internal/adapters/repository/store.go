// Package repository reads the pipeline's input snapshots and writes its
// artifacts.
package repository

import (
	"context"
	"time"

	"github.com/okian/dynasty/internal/domain/model"
)

// Artifact names.
const (
	ArtifactTrades         = "trades.json"
	ArtifactPlayerMovement = "player_movement.json"
	ArtifactPickLedger     = "pick_ledger.json"
	ArtifactTradeGrades    = "trade_grades.json"
	ArtifactOwnerReport    = "owner_report.json"
	ArtifactRunReport      = "run_report.json"
)

// Artifacts lists every JSON artifact a full run commits.
var Artifacts = []string{
	ArtifactTrades,
	ArtifactPlayerMovement,
	ArtifactPickLedger,
	ArtifactTradeGrades,
	ArtifactOwnerReport,
	ArtifactRunReport,
}

// Meta is stamped into every artifact so a mixed set can be detected.
type Meta struct {
	RunID       string    `json:"run_id"`
	Artifact    string    `json:"artifact"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Envelope is the on-disk shape of an artifact.
type Envelope struct {
	Meta Meta `json:"meta"`
	Data any  `json:"data"`
}

// Store provides the pipeline's inputs and an all-or-nothing artifact commit.
type Store interface {
	// Backbone returns the authoritative trade list. Missing is fatal.
	Backbone(ctx context.Context) ([]model.BackboneRecord, error)
	// Bundle returns the per-asset log; missing yields no rows.
	Bundle(ctx context.Context) ([]model.BundleRow, error)
	// Stats returns per-season averages. Missing is fatal.
	Stats(ctx context.Context) (map[model.Season][]model.StatLine, error)
	// Drafts returns completed draft results by year; missing yields none.
	Drafts(ctx context.Context) (map[int][]model.DraftSlot, error)
	// Standings returns final standings by season; missing yields none.
	Standings(ctx context.Context) (map[model.Season][]model.Standing, error)

	// Stage writes an artifact to a staging file.
	Stage(ctx context.Context, name string, data any) error
	// Commit replaces every staged artifact at once.
	Commit(ctx context.Context) error
	// Discard removes staged files, leaving committed artifacts untouched.
	Discard() error

	// Artifact decodes a committed artifact generically.
	Artifact(ctx context.Context, name string) (any, error)
	// RunID returns the id stamped into staged artifacts.
	RunID() string
}
