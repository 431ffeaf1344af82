package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/okian/dynasty/internal/adapters/repository"
	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/pkg/logger"
)

// OwnerPaths select every field of an artifact that must hold a canonical
// owner id.
var OwnerPaths = []string{
	"$..owner",
	"$..original_owner",
	"$..current_owner",
	"$..from",
	"$..to",
	"$..winner",
}

// auditable are the artifacts that carry owner ids. The run report only
// repeats issue text.
var auditable = []string{
	repository.ArtifactTrades,
	repository.ArtifactPlayerMovement,
	repository.ArtifactPickLedger,
	repository.ArtifactTradeGrades,
	repository.ArtifactOwnerReport,
}

// AuditReport lists owner references in committed artifacts that do not name
// a league owner.
type AuditReport struct {
	Artifacts []string          `json:"artifacts"`
	RunIDs    map[string]string `json:"run_ids"`
	MixedRun  bool              `json:"mixed_run"`
	Checked   int               `json:"checked"`
	Issues    []report.Issue    `json:"issues"`
}

// Audit walks the committed artifacts and reports every owner field whose
// value is not a canonical owner id. trades.json must exist; the others are
// audited when present.
func (s *Service) Audit(ctx context.Context) (AuditReport, error) {
	resolver, err := s.newResolver(nil)
	if err != nil {
		return AuditReport{}, err
	}
	issues := report.NewCollector()
	rep := AuditReport{RunIDs: make(map[string]string)}

	for _, name := range auditable {
		doc, err := s.store.Artifact(ctx, name)
		if errors.Is(err, repository.ErrArtifactMissing) && name != repository.ArtifactTrades {
			s.logger.Debug(ctx, "artifact not present", logger.String("artifact", name))
			continue
		}
		if err != nil {
			return AuditReport{}, err
		}
		rep.Artifacts = append(rep.Artifacts, name)
		if id, err := jsonpath.Get("$.meta.run_id", doc); err == nil {
			if str, ok := id.(string); ok {
				rep.RunIDs[name] = str
			}
		}

		reported := make(map[string]bool)
		for _, path := range OwnerPaths {
			values, err := ownerValues(path, doc)
			if err != nil {
				return AuditReport{}, fmt.Errorf("%w: %s %s: %w", ErrAudit, name, path, err)
			}
			for _, v := range values {
				rep.Checked++
				if resolver.KnownOwner(model.OwnerID(v)) || reported[v] {
					continue
				}
				reported[v] = true
				issues.Add(report.StageAudit, name,
					fmt.Errorf("%w: %q at %s is not an owner id", model.ErrUnresolvableAlias, v, path))
			}
		}
	}

	rep.MixedRun = mixed(rep.RunIDs)
	rep.Issues = issues.Issues()
	s.logger.Info(ctx, "artifacts audited",
		logger.Strings("artifacts", rep.Artifacts),
		logger.Int("checked", rep.Checked),
		logger.Int("issues", len(rep.Issues)),
		logger.Bool("mixed_run", rep.MixedRun))
	return rep, nil
}

// ownerValues returns the non-empty strings path selects in doc. Recursive
// paths yield a list; a plain path may yield a single value.
func ownerValues(path string, doc any) ([]string, error) {
	got, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil, err
	}
	list, ok := got.([]any)
	if !ok {
		list = []any{got}
	}
	var out []string
	for _, v := range list {
		if str, ok := v.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	sort.Strings(out)
	return out, nil
}

func mixed(ids map[string]string) bool {
	seen := ""
	for _, id := range ids {
		if seen == "" {
			seen = id
			continue
		}
		if id != seen {
			return true
		}
	}
	return false
}
