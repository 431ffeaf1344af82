package resolve

import (
	"strings"
	"unicode"

	xrunes "golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var suffixes = map[string]bool{"jr": true, "sr": true, "ii": true, "iii": true, "iv": true}

var punctuation = strings.NewReplacer(
	"’", "", "‘", "", "“", "", "”", "",
	".", "", "'", "", "`", "", ",", "", "\"", "",
)

// Normalize folds a name into its comparison form: diacritics stripped,
// lower case, punctuation dropped, a trailing generational suffix removed and
// whitespace collapsed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, xrunes.Remove(xrunes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = punctuation.Replace(strings.ToLower(folded))
	fields := strings.Fields(folded)
	if n := len(fields); n > 1 && suffixes[fields[n-1]] {
		fields = fields[:n-1]
	}
	return strings.Join(fields, " ")
}
