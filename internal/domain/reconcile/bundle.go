package reconcile

import (
	"fmt"
	"strings"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/token"
)

// bundleAsset is one player row of a bundle group.
type bundleAsset struct {
	Name      string
	From      model.OwnerID
	To        model.OwnerID
	claimedBy int
}

// group is the set of bundle rows sharing a date and owner pair.
type group struct {
	ID       string
	Date     string
	Season   model.Season
	Pair     [2]model.OwnerID
	Players  []*bundleAsset
	PickRows int

	claimants []int
}

func groupID(date string, pair [2]model.OwnerID) string {
	return fmt.Sprintf("%s|%s|%s", date, pair[0], pair[1])
}

// groupBundle turns raw rows into groups in first-seen order. Rows that
// cannot be dated or attributed are reported and skipped.
func (r *Reconciler) groupBundle(rows []model.BundleRow, issues *report.Collector) []*group {
	var groups []*group
	byID := make(map[string]*group)
	for i, row := range rows {
		ref := fmt.Sprintf("bundle#%d", i)
		when, err := model.ParseDate(row.Date)
		if err != nil {
			issues.Add(report.StageReconcile, ref, err)
			continue
		}
		from, ok := r.resolver.Owner(token.StripMarkup(row.From))
		if !ok {
			issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: bundle sender %q", model.ErrUnresolvableAlias, row.From))
			continue
		}
		to, ok := r.resolver.Owner(token.StripMarkup(row.To))
		if !ok {
			issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: bundle receiver %q", model.ErrUnresolvableAlias, row.To))
			continue
		}
		if from == to {
			issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: bundle row moves asset within %s", model.ErrInvalidTrade, from))
			continue
		}

		date := model.FormatDate(when)
		pair := model.OwnerPair(from, to)
		id := groupID(date, pair)
		g, ok := byID[id]
		if !ok {
			g = &group{ID: id, Date: date, Season: model.SeasonOf(when), Pair: pair}
			byID[id] = g
			groups = append(groups, g)
		}

		name := token.StripMarkup(row.Asset)
		if name == "" || token.IsPick(name) || strings.EqualFold(name, "draft pick") {
			g.PickRows++
			continue
		}
		g.Players = append(g.Players, &bundleAsset{Name: name, From: from, To: to, claimedBy: -1})
	}
	return groups
}
