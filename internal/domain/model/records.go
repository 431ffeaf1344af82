// Package model contains domain models passed between pipeline stages.
package model

// BackboneRecord is one entry of the authoritative trade list. Give holds
// tokens sent by the first owner, Get the tokens sent back.
type BackboneRecord struct {
	Season string   `json:"season"`
	Date   string   `json:"date,omitempty"`
	Give   []string `json:"give"`
	Get    []string `json:"get"`
}

// BundleRow is one asset movement from the per-transaction log.
type BundleRow struct {
	Date  string `json:"date" csv:"Date"`
	From  string `json:"from" csv:"From"`
	To    string `json:"to" csv:"To"`
	Asset string `json:"asset" csv:"Player"`
}

// StatLine is a player's season averages.
type StatLine struct {
	Name string  `json:"name"`
	GP   int     `json:"gp"`
	PTS  float64 `json:"pts"`
	REB  float64 `json:"reb"`
	AST  float64 `json:"ast"`
	STL  float64 `json:"stl"`
	BLK  float64 `json:"blk"`
	TOV  float64 `json:"tov"`
	FGM  float64 `json:"fgm"`
	FGA  float64 `json:"fga"`
	FTM  float64 `json:"ftm"`
	FTA  float64 `json:"fta"`
	FG3M float64 `json:"fg3m"`
}

// DraftSlot is one selection from a completed draft.
type DraftSlot struct {
	Round      int    `json:"round"`
	PickNumber int    `json:"pick_number"`
	Team       string `json:"team"`
	// OriginalTeam is set when the source records whose pick it was.
	OriginalTeam string `json:"original_team,omitempty"`
	Player       string `json:"player,omitempty"`
}

// Standing is an owner's final position in a season.
type Standing struct {
	Rank  int     `json:"rank"`
	Team  string  `json:"team"`
	Score float64 `json:"score,omitempty"`
}
