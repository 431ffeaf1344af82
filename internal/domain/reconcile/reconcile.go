// Package reconcile merges the backbone trade list with the bundle
// transaction log into one canonical, deduplicated trade list.
package reconcile

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/dynasty/internal/domain/dedupe"
	"github.com/okian/dynasty/internal/domain/model"
	"github.com/okian/dynasty/internal/domain/report"
	"github.com/okian/dynasty/internal/domain/token"
	"github.com/okian/dynasty/pkg/logger"
)

// Resolver is what the reconciler needs from the entity resolver.
type Resolver interface {
	token.OwnerResolver
	PlayerKey(raw string) (string, bool)
	PlayerScore(a, b string) float64
	SamePlayer(a, b string) bool
}

// Match outcomes.
const (
	OutcomeMatched      = "matched"
	OutcomeAmbiguous    = "ambiguous"
	OutcomeNoCandidates = "no_candidates"
	OutcomeNoOverlap    = "no_overlap"
	OutcomePickOnly     = "pick_only"
)

// Candidate is one scored bundle group for a backbone trade.
type Candidate struct {
	Group    string  `json:"group"`
	Overlap  int     `json:"overlap"`
	Ratio    float64 `json:"ratio"`
	Exact    bool    `json:"exact"`
	SameDate bool    `json:"same_date"`
}

// MatchAudit records why a backbone trade was or was not matched.
type MatchAudit struct {
	BackboneIndex int         `json:"backbone_index"`
	Candidates    []Candidate `json:"candidates"`
	Selected      string      `json:"selected,omitempty"`
	Outcome       string      `json:"outcome"`
}

// Stats summarizes a reconciliation.
type Stats struct {
	BackboneRecords   int `json:"backbone_records"`
	BackboneTrades    int `json:"backbone_trades"`
	DuplicatesDropped int `json:"duplicates_dropped"`
	BundleRows        int `json:"bundle_rows"`
	BundleGroups      int `json:"bundle_groups"`
	Matched           int `json:"matched"`
	Ambiguous         int `json:"ambiguous"`
	Appended          int `json:"appended"`
	Injected          int `json:"injected"`
	GroupsSkipped     int `json:"groups_skipped"`
	Confirmed         int `json:"confirmed"`
	NeedsReview       int `json:"needs_review"`
	Trades            int `json:"trades"`
}

// Result is the reconciled trade list with its audit trail.
type Result struct {
	Trades  []model.Trade  `json:"trades"`
	Matches []MatchAudit   `json:"matches"`
	Stats   Stats          `json:"stats"`
	Issues  []report.Issue `json:"issues"`
}

// Reconciler is stateless between calls.
type Reconciler struct {
	resolver Resolver
	logger   logger.Logger
}

// New creates a Reconciler.
func New(resolver Resolver, opts ...Option) *Reconciler {
	r := &Reconciler{resolver: resolver, logger: logger.Nop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// working is a backbone trade while it is being enriched.
type working struct {
	trade model.Trade
	group *group
}

// Reconcile produces the canonical trade list. The same inputs always give
// the same output.
func (r *Reconciler) Reconcile(ctx context.Context, backbone []model.BackboneRecord, bundle []model.BundleRow) (Result, error) {
	issues := report.NewCollector()
	var res Result
	res.Stats.BackboneRecords = len(backbone)
	res.Stats.BundleRows = len(bundle)

	var parsed []model.Trade
	for i, rec := range backbone {
		if t, ok := r.parseBackbone(i, rec, issues); ok {
			parsed = append(parsed, t)
		}
	}
	parsed, dups := dedupe.Trades(ctx, dedupe.NewKeyDeduper(dedupe.WithCapacity(len(parsed))), parsed,
		func(_ int, t model.Trade) int { return t.BackboneIndex })
	for _, d := range dups {
		issues.Add(report.StageReconcile, fmt.Sprintf("backbone#%d", d.Dropped.BackboneIndex),
			fmt.Errorf("%w: repeats backbone#%d", model.ErrDuplicateTrade, d.KeptRef))
	}
	res.Stats.DuplicatesDropped = len(dups)
	res.Stats.BackboneTrades = len(parsed)

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	groups := r.groupBundle(bundle, issues)
	res.Stats.BundleGroups = len(groups)

	work := make([]*working, len(parsed))
	for i := range parsed {
		work[i] = &working{trade: parsed[i]}
	}
	for i, w := range work {
		audit := r.selectGroup(w, groups)
		switch audit.Outcome {
		case OutcomeMatched:
			res.Stats.Matched++
			w.group.claimants = append(w.group.claimants, i)
		case OutcomeAmbiguous:
			res.Stats.Ambiguous++
			issues.Add(report.StageReconcile, fmt.Sprintf("backbone#%d", w.trade.BackboneIndex),
				fmt.Errorf("%w: %d groups tie", model.ErrAmbiguousBundleMatch, tied(audit.Candidates)))
		}
		r.logger.Debug(ctx, "bundle match",
			logger.Int("backbone_index", w.trade.BackboneIndex),
			logger.String("outcome", audit.Outcome),
			logger.String("group", audit.Selected),
			logger.Int("candidates", len(audit.Candidates)))
		res.Matches = append(res.Matches, audit)
	}

	for _, g := range groups {
		res.Stats.Appended += r.partition(g, work, issues)
	}

	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	trades := make([]model.Trade, 0, len(work))
	for _, w := range work {
		trades = append(trades, w.trade)
	}
	injected, skipped := r.inject(groups, trades, issues)
	trades = append(trades, injected...)
	res.Stats.Injected = len(injected)
	res.Stats.GroupsSkipped = skipped

	res.Trades = r.finalize(ctx, trades, issues)
	for _, t := range res.Trades {
		if t.Confirmed {
			res.Stats.Confirmed++
		}
		if t.NeedsReview {
			res.Stats.NeedsReview++
		}
	}
	res.Stats.Trades = len(res.Trades)
	res.Issues = issues.Issues()

	r.logger.Info(ctx, "trades reconciled",
		logger.Int("trades", res.Stats.Trades),
		logger.Int("matched", res.Stats.Matched),
		logger.Int("injected", res.Stats.Injected),
		logger.Int("duplicates", res.Stats.DuplicatesDropped),
		logger.Int("needs_review", res.Stats.NeedsReview),
		logger.Int("issues", len(res.Issues)))
	return res, nil
}

// selectGroup scores every same-season, same-pair group and picks the one
// with the largest player overlap. Ties go to an exact full-set match, then
// to a group on the backbone's own date; anything still tied is ambiguous.
func (r *Reconciler) selectGroup(w *working, groups []*group) MatchAudit {
	audit := MatchAudit{BackboneIndex: w.trade.BackboneIndex, Candidates: []Candidate{}}
	players := model.Players(w.trade.Assets())
	if len(players) == 0 {
		audit.Outcome = OutcomePickOnly
		return audit
	}

	pair := w.trade.Owners()
	var pool []*group
	for _, g := range groups {
		if g.Season != w.trade.Season || g.Pair != pair {
			continue
		}
		overlap := len(r.pairPlayers(players, g.Players, false))
		audit.Candidates = append(audit.Candidates, Candidate{
			Group:    g.ID,
			Overlap:  overlap,
			Ratio:    float64(overlap) / float64(len(players)),
			Exact:    overlap == len(players) && overlap == len(g.Players),
			SameDate: w.trade.Date != "" && w.trade.Date == g.Date,
		})
		pool = append(pool, g)
	}
	if len(pool) == 0 {
		audit.Outcome = OutcomeNoCandidates
		return audit
	}

	best := 0
	for _, c := range audit.Candidates {
		if c.Overlap > best {
			best = c.Overlap
		}
	}
	if best == 0 {
		audit.Outcome = OutcomeNoOverlap
		return audit
	}

	var top []int
	for i, c := range audit.Candidates {
		if c.Overlap == best {
			top = append(top, i)
		}
	}
	top = narrow(top, func(i int) bool { return audit.Candidates[i].Exact })
	top = narrow(top, func(i int) bool { return audit.Candidates[i].SameDate })
	if len(top) != 1 {
		audit.Outcome = OutcomeAmbiguous
		return audit
	}
	w.group = pool[top[0]]
	audit.Selected = w.group.ID
	audit.Outcome = OutcomeMatched
	return audit
}

// narrow keeps the indexes satisfying keep, unless none do.
func narrow(idx []int, keep func(int) bool) []int {
	if len(idx) < 2 {
		return idx
	}
	var out []int
	for _, i := range idx {
		if keep(i) {
			out = append(out, i)
		}
	}
	if len(out) == 0 {
		return idx
	}
	return out
}

func tied(cands []Candidate) int {
	best, n := 0, 0
	for _, c := range cands {
		switch {
		case c.Overlap > best:
			best, n = c.Overlap, 1
		case c.Overlap == best:
			n++
		}
	}
	return n
}

// pairPlayers greedily pairs backbone players with bundle rows, each row used
// once. Each backbone player takes its best-scoring row above the threshold,
// first row on ties. With onlyFree set, rows claimed by another trade are
// skipped. The result maps backbone player position to row position.
func (r *Reconciler) pairPlayers(players []model.Asset, rows []*bundleAsset, onlyFree bool) map[int]int {
	used := make(map[int]bool)
	out := make(map[int]int)
	for pi, p := range players {
		bestRow, bestScore := -1, 0.0
		for ri, row := range rows {
			if used[ri] || (onlyFree && row.claimedBy >= 0) {
				continue
			}
			if !r.resolver.SamePlayer(p.Player, row.Name) {
				continue
			}
			if s := r.resolver.PlayerScore(p.Player, row.Name); bestRow < 0 || s > bestScore {
				bestRow, bestScore = ri, s
			}
		}
		if bestRow >= 0 {
			used[bestRow] = true
			out[pi] = bestRow
		}
	}
	return out
}

// partition hands a group's rows to the trades that selected it. Claimants
// take their matches in backbone order; leftover rows go to a sole claimant
// unless another trade of that season and pair already moves the player, and
// are reported otherwise. It returns the number of appended assets.
func (r *Reconciler) partition(g *group, work []*working, issues *report.Collector) int {
	if len(g.claimants) == 0 {
		return 0
	}
	for _, wi := range g.claimants {
		w := work[wi]
		w.trade.Date = g.Date
		w.trade.BundleGroup = g.ID
		r.corroborate(w, wi, g)
	}

	appended := 0
	for _, row := range g.Players {
		if row.claimedBy >= 0 {
			continue
		}
		if len(g.claimants) > 1 {
			issues.Add(report.StageReconcile, "bundle:"+g.ID,
				fmt.Errorf("%w: %q shared by %d trades", model.ErrUnassignedBundleAsset, row.Name, len(g.claimants)))
			continue
		}
		wi := g.claimants[0]
		w := work[wi]
		if other, ok := r.heldElsewhere(row.Name, wi, work); ok {
			issues.Add(report.StageReconcile, "bundle:"+g.ID,
				fmt.Errorf("%w: %q already in backbone#%d", model.ErrUnassignedBundleAsset, row.Name, work[other].trade.BackboneIndex))
			continue
		}
		row.claimedBy = wi
		side, _ := w.trade.SideOf(row.From)
		key, _ := r.resolver.PlayerKey(row.Name)
		given := append(append([]model.Asset(nil), side.Given...), model.Asset{
			Kind:         model.KindPlayer,
			From:         row.From,
			Raw:          row.Name,
			Player:       row.Name,
			PlayerKey:    key,
			Corroborated: true,
		})
		w.trade.SetGiven(row.From, given)
		appended++
	}
	return appended
}

// heldElsewhere finds another trade of the same season and owner pair as
// work[wi] that already moves the named player.
func (r *Reconciler) heldElsewhere(name string, wi int, work []*working) (int, bool) {
	key := pairKey(work[wi].trade.Season, work[wi].trade.Owners())
	for i, w := range work {
		if i == wi || pairKey(w.trade.Season, w.trade.Owners()) != key {
			continue
		}
		for _, a := range model.Players(w.trade.Assets()) {
			if r.resolver.SamePlayer(name, a.Player) {
				return i, true
			}
		}
	}
	return -1, false
}

// corroborate marks the claimant's players found in the group and adopts the
// bundle spelling for them.
func (r *Reconciler) corroborate(w *working, wi int, g *group) {
	type loc struct{ side, idx int }
	owners := []model.OwnerID{w.trade.SideA.Owner, w.trade.SideB.Owner}
	given := [][]model.Asset{
		append([]model.Asset(nil), w.trade.SideA.Given...),
		append([]model.Asset(nil), w.trade.SideB.Given...),
	}
	var (
		players []model.Asset
		locs    []loc
	)
	for s := range given {
		for k, a := range given[s] {
			if a.IsPlayer() {
				players = append(players, a)
				locs = append(locs, loc{side: s, idx: k})
			}
		}
	}
	for pi, ri := range r.pairPlayers(players, g.Players, true) {
		row := g.Players[ri]
		row.claimedBy = wi
		a := &given[locs[pi].side][locs[pi].idx]
		a.Player = row.Name
		a.PlayerKey, _ = r.resolver.PlayerKey(row.Name)
		a.Corroborated = true
	}
	for s, owner := range owners {
		w.trade.SetGiven(owner, given[s])
	}
}

// inject turns unclaimed groups into trades unless one of their players
// already appears in a trade for the same season and owner pair.
func (r *Reconciler) inject(groups []*group, trades []model.Trade, issues *report.Collector) ([]model.Trade, int) {
	seen := make(map[string][]string)
	index := func(t model.Trade) {
		k := pairKey(t.Season, t.Owners())
		for _, a := range model.Players(t.Assets()) {
			seen[k] = append(seen[k], a.Player)
		}
	}
	for _, t := range trades {
		index(t)
	}

	var (
		out     []model.Trade
		skipped int
	)
	for _, g := range groups {
		if len(g.claimants) > 0 {
			continue
		}
		if len(g.Players) == 0 {
			skipped++
			issues.Add(report.StageReconcile, "bundle:"+g.ID,
				fmt.Errorf("%w: only pick rows", model.ErrBundleGroupSkipped))
			continue
		}
		if name, ok := r.overlaps(g, seen[pairKey(g.Season, g.Pair)]); ok {
			skipped++
			issues.Add(report.StageReconcile, "bundle:"+g.ID,
				fmt.Errorf("%w: %q already traded between %s and %s in %s", model.ErrBundleGroupSkipped, name, g.Pair[0], g.Pair[1], g.Season))
			continue
		}

		var aGives, bGives []model.Asset
		for _, row := range g.Players {
			key, _ := r.resolver.PlayerKey(row.Name)
			a := model.Asset{Kind: model.KindPlayer, From: row.From, Raw: row.Name, Player: row.Name, PlayerKey: key, Corroborated: true}
			if row.From == g.Pair[0] {
				aGives = append(aGives, a)
			} else {
				bGives = append(bGives, a)
			}
		}
		t := model.NewTrade(g.Season, g.Date, g.Pair[0], g.Pair[1], aGives, bGives)
		t.Source = model.SourceBundle
		t.BundleGroup = g.ID
		out = append(out, t)
		index(t)
	}
	return out, skipped
}

func (r *Reconciler) overlaps(g *group, existing []string) (string, bool) {
	for _, row := range g.Players {
		for _, name := range existing {
			if r.resolver.SamePlayer(row.Name, name) {
				return row.Name, true
			}
		}
	}
	return "", false
}

func pairKey(season model.Season, pair [2]model.OwnerID) string {
	return fmt.Sprintf("%s|%s|%s", season, pair[0], pair[1])
}

// finalize sets the review flags, orders trades chronologically, drops any
// remaining canonical duplicates and assigns indexes.
func (r *Reconciler) finalize(ctx context.Context, trades []model.Trade, issues *report.Collector) []model.Trade {
	for i := range trades {
		t := &trades[i]
		t.Index = i
		t.Confirmed = false
		for _, a := range t.Assets() {
			if a.Corroborated {
				t.Confirmed = true
				break
			}
		}
		t.NeedsReview = t.HasPlayers() && !t.Confirmed
	}
	sort.SliceStable(trades, func(i, j int) bool { return model.ChronoLess(trades[i], trades[j]) })

	kept, dups := dedupe.Trades(ctx, dedupe.NewKeyDeduper(dedupe.WithCapacity(len(trades))), trades,
		func(i int, _ model.Trade) int { return i })
	for _, d := range dups {
		issues.Add(report.StageReconcile, tradeRef(d.Dropped),
			fmt.Errorf("%w: repeats trade at position %d", model.ErrDuplicateTrade, d.KeptRef))
	}

	out := make([]model.Trade, 0, len(kept))
	for _, t := range kept {
		if err := t.Validate(); err != nil {
			issues.Add(report.StageReconcile, tradeRef(t), err)
			continue
		}
		t.Index = len(out)
		out = append(out, t)
	}
	return out
}

func tradeRef(t model.Trade) string {
	if t.Source == model.SourceBundle {
		return "bundle:" + t.BundleGroup
	}
	return fmt.Sprintf("backbone#%d", t.BackboneIndex)
}
