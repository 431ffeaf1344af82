package model

import (
	"fmt"
	"sort"
	"strings"
)

// Trade sources.
const (
	SourceBackbone = "backbone"
	SourceBundle   = "bundle"
)

// Side is one owner's half of a trade.
type Side struct {
	Owner    OwnerID `json:"owner"`
	Given    []Asset `json:"assets_given"`
	Received []Asset `json:"assets_received"`
}

// Players returns the player assets in list.
func Players(list []Asset) []Asset {
	var out []Asset
	for _, a := range list {
		if a.IsPlayer() {
			out = append(out, a)
		}
	}
	return out
}

// Picks returns the pick assets in list.
func Picks(list []Asset) []Asset {
	var out []Asset
	for _, a := range list {
		if a.IsPick() {
			out = append(out, a)
		}
	}
	return out
}

// Trade is a canonical two-owner exchange.
type Trade struct {
	Index  int    `json:"index"`
	Season Season `json:"season"`
	// Date is YYYY-MM-DD, empty when unresolved.
	Date  string `json:"date,omitempty"`
	SideA Side   `json:"side_a"`
	SideB Side   `json:"side_b"`

	Confirmed   bool `json:"confirmed"`
	NeedsReview bool `json:"needs_review"`

	Source        string `json:"source"`
	BackboneIndex int    `json:"backbone_index"`
	BundleGroup   string `json:"bundle_group,omitempty"`
}

// NewTrade builds a trade where a gives aGives to b and b gives bGives to a.
// Received lists are derived so both sides always agree.
func NewTrade(season Season, date string, a, b OwnerID, aGives, bGives []Asset) Trade {
	return Trade{
		Season: season,
		Date:   date,
		SideA: Side{
			Owner:    a,
			Given:    cloneAssets(aGives),
			Received: cloneAssets(bGives),
		},
		SideB: Side{
			Owner:    b,
			Given:    cloneAssets(bGives),
			Received: cloneAssets(aGives),
		},
		BackboneIndex: -1,
	}
}

func cloneAssets(in []Asset) []Asset {
	out := make([]Asset, len(in))
	copy(out, in)
	return out
}

// Assets returns every asset in the trade, side A's gives first.
func (t Trade) Assets() []Asset {
	out := make([]Asset, 0, len(t.SideA.Given)+len(t.SideB.Given))
	out = append(out, t.SideA.Given...)
	return append(out, t.SideB.Given...)
}

// HasPlayers reports whether any player changes hands.
func (t Trade) HasPlayers() bool { return len(Players(t.Assets())) > 0 }

// Owners returns the owner pair in sorted order.
func (t Trade) Owners() [2]OwnerID { return OwnerPair(t.SideA.Owner, t.SideB.Owner) }

// Other returns the counterparty of owner.
func (t Trade) Other(owner OwnerID) OwnerID {
	if t.SideA.Owner == owner {
		return t.SideB.Owner
	}
	return t.SideA.Owner
}

// SideOf returns the side held by owner.
func (t Trade) SideOf(owner OwnerID) (Side, bool) {
	switch owner {
	case t.SideA.Owner:
		return t.SideA, true
	case t.SideB.Owner:
		return t.SideB, true
	}
	return Side{}, false
}

// SetGiven replaces what owner gives and keeps the counterparty's received
// list in step.
func (t *Trade) SetGiven(owner OwnerID, assets []Asset) {
	switch owner {
	case t.SideA.Owner:
		t.SideA.Given = cloneAssets(assets)
		t.SideB.Received = cloneAssets(assets)
	case t.SideB.Owner:
		t.SideB.Given = cloneAssets(assets)
		t.SideA.Received = cloneAssets(assets)
	}
}

// Validate checks the two-owner and conservation invariants.
func (t Trade) Validate() error {
	if t.SideA.Owner == "" || t.SideB.Owner == "" {
		return fmt.Errorf("%w: missing side owner", ErrInvalidTrade)
	}
	if t.SideA.Owner == t.SideB.Owner {
		return fmt.Errorf("%w: both sides owned by %s", ErrInvalidTrade, t.SideA.Owner)
	}
	if !sameAssets(t.SideA.Received, t.SideB.Given) || !sameAssets(t.SideB.Received, t.SideA.Given) {
		return fmt.Errorf("%w: received assets do not match counterparty's given", ErrInvalidTrade)
	}
	if len(t.SideA.Given)+len(t.SideB.Given) == 0 {
		return fmt.Errorf("%w: no assets", ErrInvalidTrade)
	}
	return nil
}

func sameAssets(a, b []Asset) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Key() != b[i].Key() {
			return false
		}
	}
	return true
}

// CanonicalKey identifies a trade by season, owner pair and the multiset of
// assets each owner gives. Side order does not matter.
func (t Trade) CanonicalKey() string {
	pair := t.Owners()
	var b strings.Builder
	b.WriteString(string(t.Season))
	for _, owner := range pair {
		side, _ := t.SideOf(owner)
		keys := make([]string, 0, len(side.Given))
		for _, a := range side.Given {
			keys = append(keys, a.Key())
		}
		sort.Strings(keys)
		b.WriteString("|")
		b.WriteString(string(owner))
		b.WriteString(":")
		b.WriteString(strings.Join(keys, ","))
	}
	return b.String()
}

// OwnerPair orders two owners so the pair is usable as a map key.
func OwnerPair(a, b OwnerID) [2]OwnerID {
	if b < a {
		return [2]OwnerID{b, a}
	}
	return [2]OwnerID{a, b}
}

// ChronoLess orders trades by season, then date with undated trades last
// within their season, then by index.
func ChronoLess(a, b Trade) bool {
	if a.Season != b.Season {
		return a.Season.Before(b.Season)
	}
	ad, bd := dateKey(a.Date), dateKey(b.Date)
	if ad != bd {
		return ad < bd
	}
	return a.Index < b.Index
}

func dateKey(d string) string {
	if d == "" {
		return "9999"
	}
	return d
}
