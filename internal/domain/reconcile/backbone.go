package reconcile

import (
	"errors"
	"fmt"

	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/token"
)

// parseBackbone converts a backbone record into a trade. Side A is the owner
// of the Give tokens, side B the owner of the Get tokens.
func (r *Reconciler) parseBackbone(i int, rec model.BackboneRecord, issues *report.Collector) (model.Trade, bool) {
	ref := fmt.Sprintf("backbone#%d", i)

	var date string
	if rec.Date != "" {
		when, err := model.ParseDate(rec.Date)
		if err != nil {
			issues.Add(report.StageReconcile, ref, err)
		} else {
			date = model.FormatDate(when)
		}
	}
	season, err := model.ParseSeason(rec.Season)
	if err != nil {
		if date == "" {
			issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: %w", model.ErrInvalidTrade, err))
			return model.Trade{}, false
		}
		when, _ := model.ParseDate(date)
		season = model.SeasonOf(when)
	}

	give, aOwner := r.parseSide(ref, rec.Give, issues)
	get, bOwner := r.parseSide(ref, rec.Get, issues)
	switch {
	case aOwner == "" || bOwner == "":
		issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: side owner unresolved", model.ErrInvalidTrade))
		return model.Trade{}, false
	case aOwner == bOwner:
		issues.Add(report.StageReconcile, ref, fmt.Errorf("%w: both sides resolve to %s", model.ErrInvalidTrade, aOwner))
		return model.Trade{}, false
	}
	for k := range give {
		give[k].From = aOwner
	}
	for k := range get {
		get[k].From = bOwner
	}

	t := model.NewTrade(season, date, aOwner, bOwner, give, get)
	t.Source = model.SourceBackbone
	t.BackboneIndex = i
	return t, true
}

// parseSide parses one token list. The side owner is the first resolved
// prefix; tokens naming a different owner are kept and reported.
func (r *Reconciler) parseSide(ref string, raws []string, issues *report.Collector) ([]model.Asset, model.OwnerID) {
	var (
		owner  model.OwnerID
		assets []model.Asset
	)
	for _, raw := range raws {
		tok, err := token.Parse(raw, r.resolver)
		if errors.Is(err, token.ErrEmptyToken) {
			continue
		}
		if err != nil {
			issues.Add(report.StageReconcile, ref, err)
		}
		if tok.Owner != "" {
			if owner == "" {
				owner = tok.Owner
			} else if tok.Owner != owner {
				issues.Add(report.StageReconcile, ref,
					fmt.Errorf("%w: token %q names %s on a side owned by %s", model.ErrInvalidTrade, raw, tok.Owner, owner))
			}
		}
		assets = append(assets, r.asset(ref, tok, issues))
	}
	return assets, owner
}

func (r *Reconciler) asset(ref string, tok token.Token, issues *report.Collector) model.Asset {
	a := model.Asset{Raw: tok.Raw, Position: tok.Position}
	if tok.Pick {
		a.Kind = model.KindPick
		pick, err := token.ParsePick(tok.Body, r.resolver)
		if err != nil {
			issues.Add(report.StageReconcile, ref, err)
			return a
		}
		a.Pick = &pick
		return a
	}
	a.Kind = model.KindPlayer
	a.Player = tok.Body
	a.PlayerKey, _ = r.resolver.PlayerKey(tok.Body)
	return a
}
