package provenance

import (
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
)

// PlayerHistory is the trade custody chain of one player.
type PlayerHistory struct {
	Key          string        `json:"player_key"`
	Player       string        `json:"player"`
	CurrentOwner model.OwnerID `json:"current_owner"`
	Transfers    []Transfer    `json:"transfers"`
}

// PlayerMovements follows every traded player through the trades in
// chronological order. Players are identified by their resolver key and
// listed in key order. Moves outside trades (drops, waivers) are not seen,
// so a chain may restart with a different sender.
func PlayerMovements(trades []model.Trade) []PlayerHistory {
	ordered := make([]model.Trade, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool { return model.ChronoLess(ordered[i], ordered[j]) })

	byKey := make(map[string]*PlayerHistory)
	for _, tr := range ordered {
		for _, side := range []model.Side{tr.SideA, tr.SideB} {
			to := tr.Other(side.Owner)
			for _, a := range model.Players(side.Given) {
				key := a.PlayerKey
				if key == "" {
					key = a.Player
				}
				h, ok := byKey[key]
				if !ok {
					h = &PlayerHistory{Key: key}
					byKey[key] = h
				}
				h.Player = a.Player
				h.CurrentOwner = to
				h.Transfers = append(h.Transfers, Transfer{
					TradeIndex: tr.Index,
					Season:     tr.Season,
					Date:       tr.Date,
					From:       side.Owner,
					To:         to,
					Raw:        a.Raw,
				})
			}
		}
	}

	out := make([]PlayerHistory, 0, len(byKey))
	for _, h := range byKey {
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
