// Package resolve maps free-text owner and player references to canonical
// identities using static alias tables and fuzzy matching.
package resolve

import (
	"fmt"
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
)

// Default similarity thresholds.
const (
	DefaultOwnerThreshold  = 0.85
	DefaultPlayerThreshold = 0.80
)

// Kind selects the identity universe for Resolve.
type Kind string

const (
	KindOwner  Kind = "owner"
	KindPlayer Kind = "player"
)

// Method records how a match was found.
type Method string

const (
	MethodAlias Method = "alias"
	MethodExact Method = "exact"
	MethodFuzzy Method = "fuzzy"
)

// OwnerEntry is one owner and every spelling that refers to it.
type OwnerEntry struct {
	ID      model.OwnerID
	Aliases []string
}

// Match is a resolved reference.
type Match struct {
	Kind      Kind    `json:"kind"`
	Raw       string  `json:"raw"`
	Canonical string  `json:"canonical"`
	Key       string  `json:"key"`
	Score     float64 `json:"score"`
	Method    Method  `json:"method"`
}

type entry struct {
	norm      string
	canonical string
}

// Resolver is immutable after construction and safe for concurrent use.
type Resolver struct {
	ownerThreshold  float64
	playerThreshold float64

	owners      []entry
	ownerIndex  map[string]model.OwnerID
	ownerIDs    map[model.OwnerID]bool
	players     []entry
	playerIndex map[string]string
	aliases     map[string]string

	pendingPlayers []string
	pendingAliases map[string]string
}

// New builds a Resolver over the owner table. An alias that normalizes to the
// same text for two different owners is rejected.
func New(owners []OwnerEntry, opts ...Option) (*Resolver, error) {
	r := &Resolver{
		ownerThreshold:  DefaultOwnerThreshold,
		playerThreshold: DefaultPlayerThreshold,
		ownerIndex:      make(map[string]model.OwnerID),
		ownerIDs:        make(map[model.OwnerID]bool),
		playerIndex:     make(map[string]string),
		aliases:         make(map[string]string),
		pendingAliases:  make(map[string]string),
	}
	for _, opt := range opts {
		opt(r)
	}
	if !validThreshold(r.ownerThreshold) || !validThreshold(r.playerThreshold) {
		return nil, fmt.Errorf("%w: owner=%v player=%v", ErrInvalidThreshold, r.ownerThreshold, r.playerThreshold)
	}

	for _, o := range owners {
		r.ownerIDs[o.ID] = true
		for _, alias := range append([]string{string(o.ID)}, o.Aliases...) {
			n := Normalize(alias)
			if n == "" {
				continue
			}
			if prev, ok := r.ownerIndex[n]; ok {
				if prev != o.ID {
					return nil, fmt.Errorf("%w: %q -> %s and %s", ErrAmbiguousAlias, alias, prev, o.ID)
				}
				continue
			}
			r.ownerIndex[n] = o.ID
			r.owners = append(r.owners, entry{norm: n, canonical: string(o.ID)})
		}
	}

	// Alias targets join the player universe so overrides always resolve.
	raws := make([]string, 0, len(r.pendingAliases))
	for raw := range r.pendingAliases {
		raws = append(raws, raw)
	}
	sort.Strings(raws)
	for _, raw := range raws {
		canonical := r.pendingAliases[raw]
		r.aliases[Normalize(raw)] = canonical
		r.pendingPlayers = append(r.pendingPlayers, canonical)
	}
	for _, name := range r.pendingPlayers {
		n := Normalize(name)
		if n == "" {
			continue
		}
		if _, ok := r.playerIndex[n]; ok {
			continue
		}
		r.playerIndex[n] = name
		r.players = append(r.players, entry{norm: n, canonical: name})
	}
	r.pendingPlayers, r.pendingAliases = nil, nil
	return r, nil
}

func validThreshold(t float64) bool { return t > 0 && t <= 1 }

// Resolve maps raw to a canonical identity of the given kind. A miss returns
// model.ErrUnresolvableAlias; nothing below the threshold is ever guessed.
func (r *Resolver) Resolve(raw string, kind Kind) (Match, error) {
	var (
		m  Match
		ok bool
	)
	switch kind {
	case KindOwner:
		m, ok = r.resolveOwner(raw)
	case KindPlayer:
		m, ok = r.resolvePlayer(raw)
	}
	if !ok {
		return Match{}, fmt.Errorf("%w: %s %q", model.ErrUnresolvableAlias, kind, raw)
	}
	return m, nil
}

// Owner resolves an owner reference.
func (r *Resolver) Owner(raw string) (model.OwnerID, bool) {
	m, ok := r.resolveOwner(raw)
	return model.OwnerID(m.Canonical), ok
}

// Player resolves a player reference.
func (r *Resolver) Player(raw string) (Match, bool) {
	return r.resolvePlayer(raw)
}

// KnownOwner reports whether id is a canonical owner id.
func (r *Resolver) KnownOwner(id model.OwnerID) bool { return r.ownerIDs[id] }

// Owners returns the canonical owner ids in sorted order.
func (r *Resolver) Owners() []model.OwnerID {
	out := make([]model.OwnerID, 0, len(r.ownerIDs))
	for id := range r.ownerIDs {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PlayerKey returns the identity key for a player name: the canonical form
// if it resolves, the normalized raw text otherwise.
func (r *Resolver) PlayerKey(raw string) (string, bool) {
	if m, ok := r.resolvePlayer(raw); ok {
		return m.Key, true
	}
	return Normalize(raw), false
}

// SamePlayer reports whether two spellings are close enough to be the same
// player under the player threshold.
func (r *Resolver) SamePlayer(a, b string) bool {
	return Ratio(Normalize(a), Normalize(b)) >= r.playerThreshold
}

// PlayerScore is the similarity of two player spellings.
func (r *Resolver) PlayerScore(a, b string) float64 {
	return Ratio(Normalize(a), Normalize(b))
}

func (r *Resolver) resolveOwner(raw string) (Match, bool) {
	n := Normalize(raw)
	if n == "" {
		return Match{}, false
	}
	if id, ok := r.ownerIndex[n]; ok {
		return Match{Kind: KindOwner, Raw: raw, Canonical: string(id), Key: string(id), Score: 1, Method: MethodExact}, true
	}
	best, ok := fuzzy(n, r.owners, r.ownerThreshold)
	if !ok {
		return Match{}, false
	}
	return Match{Kind: KindOwner, Raw: raw, Canonical: best.canonical, Key: best.canonical, Score: best.score, Method: MethodFuzzy}, true
}

func (r *Resolver) resolvePlayer(raw string) (Match, bool) {
	n := Normalize(raw)
	if n == "" {
		return Match{}, false
	}
	if canonical, ok := r.aliases[n]; ok {
		return Match{Kind: KindPlayer, Raw: raw, Canonical: canonical, Key: Normalize(canonical), Score: 1, Method: MethodAlias}, true
	}
	if canonical, ok := r.playerIndex[n]; ok {
		return Match{Kind: KindPlayer, Raw: raw, Canonical: canonical, Key: n, Score: 1, Method: MethodExact}, true
	}
	best, ok := fuzzy(n, r.players, r.playerThreshold)
	if !ok {
		return Match{}, false
	}
	return Match{Kind: KindPlayer, Raw: raw, Canonical: best.canonical, Key: best.norm, Score: best.score, Method: MethodFuzzy}, true
}

type scored struct {
	entry
	score float64
}

// fuzzy returns the highest scoring entry at or above threshold. Ties keep
// the first registered entry.
func fuzzy(n string, universe []entry, threshold float64) (scored, bool) {
	var best scored
	found := false
	for _, e := range universe {
		s := Ratio(n, e.norm)
		if s < threshold {
			continue
		}
		if !found || s > best.score {
			best = scored{entry: e, score: s}
			found = true
		}
	}
	return best, found
}
