package model

import "fmt"

// OwnerID is a canonical owner identifier from the configured enumeration.
type OwnerID string

// AssetKind distinguishes players from draft picks.
type AssetKind string

const (
	KindPlayer AssetKind = "player"
	KindPick   AssetKind = "pick"
)

// PickRef identifies a draft pick by the owner it originally belonged to.
type PickRef struct {
	OriginalOwner OwnerID `json:"original_owner"`
	Year          int     `json:"year"`
	Round         int     `json:"round"`
	Swap          bool    `json:"swap,omitempty"`
	SlotHint      int     `json:"slot_hint,omitempty"`
}

// ID returns the ledger key for the pick, e.g. "Gold_2025_R1".
func (p PickRef) ID() string {
	return fmt.Sprintf("%s_%d_R%d", p.OriginalOwner, p.Year, p.Round)
}

// Asset is one player or pick moving between owners in a trade.
type Asset struct {
	Kind AssetKind `json:"kind"`
	// From is the owner sending the asset.
	From OwnerID `json:"from"`
	Raw  string  `json:"raw"`

	Player    string `json:"player,omitempty"`
	PlayerKey string `json:"player_key,omitempty"`
	Position  string `json:"position,omitempty"`

	Pick *PickRef `json:"pick,omitempty"`

	// Corroborated is set when the bundle log confirmed the asset.
	Corroborated bool `json:"corroborated,omitempty"`
}

// IsPlayer reports whether the asset is a player.
func (a Asset) IsPlayer() bool { return a.Kind == KindPlayer }

// IsPick reports whether the asset is a draft pick.
func (a Asset) IsPick() bool { return a.Kind == KindPick }

// Key returns an identity used for duplicate detection. Picks use their
// ledger id when parsed; anything else falls back to the normalized text.
func (a Asset) Key() string {
	switch {
	case a.IsPick() && a.Pick != nil:
		return "pick:" + a.Pick.ID()
	case a.IsPlayer() && a.PlayerKey != "":
		return "player:" + a.PlayerKey
	default:
		return string(a.Kind) + ":" + a.Raw
	}
}
