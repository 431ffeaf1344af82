package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/okian/dynasty/internal/domain/model"
)

// Inputs names the snapshot files under the input directory.
type Inputs struct {
	Backbone  string
	Bundle    string
	Stats     string
	Drafts    string
	Standings string
}

// DefaultInputs are the file names used when none are configured.
func DefaultInputs() Inputs {
	return Inputs{
		Backbone:  "backbone.json",
		Bundle:    "bundle.csv",
		Stats:     "stats.json",
		Drafts:    "drafts.json",
		Standings: "standings.json",
	}
}

func (in Inputs) merge(o Inputs) Inputs {
	pick := func(a, b string) string {
		if b != "" {
			return b
		}
		return a
	}
	return Inputs{
		Backbone:  pick(in.Backbone, o.Backbone),
		Bundle:    pick(in.Bundle, o.Bundle),
		Stats:     pick(in.Stats, o.Stats),
		Drafts:    pick(in.Drafts, o.Drafts),
		Standings: pick(in.Standings, o.Standings),
	}
}

// FileStore reads snapshots from disk and stages artifacts next to their
// final location so Commit only renames.
type FileStore struct {
	inDir  string
	outDir string
	inputs Inputs
	runID  string
	now    func() time.Time

	mu     sync.Mutex
	staged map[string]string // artifact name -> staging path
}

// NewFileStore creates a FileStore with a fresh run id.
func NewFileStore(opts ...Option) *FileStore {
	s := &FileStore{
		inDir:  ".",
		outDir: ".",
		inputs: DefaultInputs(),
		runID:  uuid.NewString(),
		now:    time.Now,
		staged: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID returns the id stamped into staged artifacts.
func (s *FileStore) RunID() string { return s.runID }

// Backbone reads the authoritative trade list.
func (s *FileStore) Backbone(ctx context.Context) ([]model.BackboneRecord, error) {
	var out []model.BackboneRecord
	if err := s.readJSON(ctx, s.inputs.Backbone, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Bundle reads the per-asset CSV log.
func (s *FileStore) Bundle(ctx context.Context) ([]model.BundleRow, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.inDir, s.inputs.Bundle)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	var rows []model.BundleRow
	if err := gocsv.Unmarshal(f, &rows); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	return rows, nil
}

// Stats reads per-season player averages.
func (s *FileStore) Stats(ctx context.Context) (map[model.Season][]model.StatLine, error) {
	var raw map[string][]model.StatLine
	if err := s.readJSON(ctx, s.inputs.Stats, true, &raw); err != nil {
		return nil, err
	}
	return bySeason(s.inputs.Stats, raw)
}

// Drafts reads completed draft results keyed by year.
func (s *FileStore) Drafts(ctx context.Context) (map[int][]model.DraftSlot, error) {
	var raw map[string][]model.DraftSlot
	if err := s.readJSON(ctx, s.inputs.Drafts, false, &raw); err != nil {
		return nil, err
	}
	out := make(map[int][]model.DraftSlot, len(raw))
	for k, v := range raw {
		year, err := strconv.Atoi(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: year %q", ErrInvalidArtifact, s.inputs.Drafts, k)
		}
		out[year] = v
	}
	return out, nil
}

// Standings reads final standings keyed by season.
func (s *FileStore) Standings(ctx context.Context) (map[model.Season][]model.Standing, error) {
	var raw map[string][]model.Standing
	if err := s.readJSON(ctx, s.inputs.Standings, false, &raw); err != nil {
		return nil, err
	}
	return bySeason(s.inputs.Standings, raw)
}

func bySeason[T any](name string, raw map[string][]T) (map[model.Season][]T, error) {
	out := make(map[model.Season][]T, len(raw))
	for k, v := range raw {
		season, err := model.ParseSeason(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, name, err)
		}
		out[season] = v
	}
	return out, nil
}

func (s *FileStore) readJSON(ctx context.Context, name string, required bool, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path := filepath.Join(s.inDir, name)
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && required:
		return fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	case errors.Is(err, fs.ErrNotExist):
		return nil
	case err != nil:
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	return nil
}

// Stage writes data wrapped in an Envelope to a staging file. Staging the
// same name twice replaces the earlier staging file.
func (s *FileStore) Stage(ctx context.Context, name string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	env := Envelope{
		Meta: Meta{RunID: s.runID, Artifact: name, GeneratedAt: s.now().UTC()},
		Data: data,
	}
	body, err := json.MarshalIndent(env, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", name, err)
	}
	if err := os.MkdirAll(s.outDir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", s.outDir, err)
	}

	tmp := filepath.Join(s.outDir, fmt.Sprintf(".%s.%s.tmp", name, s.runID))
	if err := os.WriteFile(tmp, body, 0o644); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("stage %s: %w", name, err)
	}

	s.mu.Lock()
	s.staged[name] = tmp
	s.mu.Unlock()
	return nil
}

// Commit renames every staged file over its artifact, the run report last so
// it only lands once every other artifact has. A failed rename stops the
// commit and removes the remaining staging files; artifacts already renamed
// carry this run's id, so a mixed set is detectable.
func (s *FileStore) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.staged) == 0 {
		return ErrNothingStaged
	}
	if err := ctx.Err(); err != nil {
		s.discardLocked()
		return err
	}

	names := make([]string, 0, len(s.staged))
	for name := range s.staged {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == ArtifactRunReport) != (names[j] == ArtifactRunReport) {
			return names[j] == ArtifactRunReport
		}
		return names[i] < names[j]
	})

	for _, name := range names {
		tmp := s.staged[name]
		if err := os.Rename(tmp, filepath.Join(s.outDir, name)); err != nil {
			s.discardLocked()
			return fmt.Errorf("commit %s: %w", name, err)
		}
		delete(s.staged, name)
	}
	return nil
}

// Discard removes every staging file.
func (s *FileStore) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.discardLocked()
}

func (s *FileStore) discardLocked() error {
	var errs []error
	for name, tmp := range s.staged {
		if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
		delete(s.staged, name)
	}
	return errors.Join(errs...)
}

// Artifact decodes a committed artifact into generic JSON values.
func (s *FileStore) Artifact(ctx context.Context, name string) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filepath.Join(s.outDir, name)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrArtifactMissing, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidArtifact, path, err)
	}
	return v, nil
}

var _ Store = (*FileStore)(nil)
