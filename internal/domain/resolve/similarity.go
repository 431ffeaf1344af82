package resolve

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Ratio is the gestalt pattern-matching similarity of two strings compared
// rune by rune: twice the matched runes over the combined length.
func Ratio(a, b string) float64 {
	return difflib.NewMatcher(runes(a), runes(b)).Ratio()
}

func runes(s string) []string {
	return strings.Split(s, "")
}
