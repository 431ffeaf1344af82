package scoring

import (
	"sort"

	"github.com/okian/dynasty/internal/domain/model"
)

// Stats indexes per-season averages by player key.
type Stats struct {
	bySeason map[model.Season]map[string]model.StatLine
	names    []string
}

// NewStats builds the index. key maps a raw name to the identity used on
// trade assets; the first line for a key wins. Lines with no games played
// are ignored.
func NewStats(data map[model.Season][]model.StatLine, key func(string) string) *Stats {
	s := &Stats{bySeason: make(map[model.Season]map[string]model.StatLine, len(data))}
	seasons := make([]model.Season, 0, len(data))
	for season := range data {
		seasons = append(seasons, season)
	}
	sort.Slice(seasons, func(i, j int) bool { return seasons[i] < seasons[j] })

	seen := make(map[string]bool)
	for _, season := range seasons {
		idx := make(map[string]model.StatLine, len(data[season]))
		for _, line := range data[season] {
			if line.GP <= 0 {
				continue
			}
			k := key(line.Name)
			if _, dup := idx[k]; dup {
				continue
			}
			idx[k] = line
			if !seen[line.Name] {
				seen[line.Name] = true
				s.names = append(s.names, line.Name)
			}
		}
		s.bySeason[season] = idx
	}
	return s
}

// HasSeason reports whether any statistics exist for season.
func (s *Stats) HasSeason(season model.Season) bool {
	_, ok := s.bySeason[season]
	return ok
}

// Lookup returns the season line for a player key.
func (s *Stats) Lookup(season model.Season, key string) (model.StatLine, bool) {
	line, ok := s.bySeason[season][key]
	return line, ok
}

// Names lists every player name in first-seen order.
func (s *Stats) Names() []string { return append([]string(nil), s.names...) }
