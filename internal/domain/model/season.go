package model

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// seasonStartMonth is the first month that belongs to a new season.
const seasonStartMonth = time.July

var seasonPattern = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Season is a league season label such as "2023-24".
type Season string

// ParseSeason validates a label and returns it as a Season.
func ParseSeason(s string) (Season, error) {
	m := seasonPattern.FindStringSubmatch(s)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidSeason, s)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return "", fmt.Errorf("%w: %q does not span consecutive years", ErrInvalidSeason, s)
	}
	return Season(s), nil
}

// SeasonStarting builds the label for the season that starts in year.
func SeasonStarting(year int) Season {
	return Season(fmt.Sprintf("%d-%02d", year, (year+1)%100))
}

// SeasonOf returns the season a calendar date falls in.
func SeasonOf(t time.Time) Season {
	if t.Month() >= seasonStartMonth {
		return SeasonStarting(t.Year())
	}
	return SeasonStarting(t.Year() - 1)
}

// StartYear returns the calendar year the season starts in, or 0 for a
// malformed label.
func (s Season) StartYear() int {
	m := seasonPattern.FindStringSubmatch(string(s))
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}

// DraftYear is the year of the draft held after this season ends.
func (s Season) DraftYear() int {
	if y := s.StartYear(); y > 0 {
		return y + 1
	}
	return 0
}

// Next returns the following season.
func (s Season) Next() Season { return SeasonStarting(s.StartYear() + 1) }

// Prev returns the preceding season.
func (s Season) Prev() Season { return SeasonStarting(s.StartYear() - 1) }

// Before reports whether s is earlier than other.
func (s Season) Before(other Season) bool { return s.StartYear() < other.StartYear() }
