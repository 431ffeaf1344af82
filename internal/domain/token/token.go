// Package token parses backbone asset tokens.
//
// A token is an owner prefix, an optional position and a body:
//
//	token    := prefix [position] body
//	prefix   := owner abbreviation (resolvable, or an upper-case word)
//	position := POS ("/" POS)*        POS := PG | SG | SF | PF | C
//	body     := pick-description | player-name
//
// A body is a pick description when it mentions a round, a "<year> 1st|2nd"
// phrase, swap rights or frp/srp shorthand. Everything else is a player name.
package token

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/okian/dynasty/internal/domain/model"
)

// OwnerResolver resolves owner references.
type OwnerResolver interface {
	Owner(raw string) (model.OwnerID, bool)
}

var (
	positionPattern = regexp.MustCompile(`^(PG|SG|SF|PF|C)(/(PG|SG|SF|PF|C))*$`)
	pickPattern     = regexp.MustCompile(`(?i)\bround\b|\b20\d{2}\s+(1st|2nd|first|second)\b|\bswap\b|\bfrp\b|\bsrp\b|\bdraft pick\b|\bpick\b`)
	markupPattern   = regexp.MustCompile(`<[^>]*>`)
)

// Token is a parsed asset token.
type Token struct {
	Raw string
	// Owner is the resolved prefix owner, empty when the prefix did not resolve.
	Owner     model.OwnerID
	OwnerText string
	Position  string
	Body      string
	Pick      bool
}

// Parse splits raw into prefix, position and body. When the prefix does not
// resolve the token is still returned, together with an error wrapping
// model.ErrUnresolvableAlias.
func Parse(raw string, owners OwnerResolver) (Token, error) {
	fields := strings.Fields(StripMarkup(raw))
	if len(fields) == 0 {
		return Token{Raw: raw}, fmt.Errorf("%w: empty token", ErrEmptyToken)
	}
	tok := Token{Raw: raw}

	var prefixErr error
	if id, ok := owners.Owner(fields[0]); ok && len(fields) > 1 {
		tok.Owner, tok.OwnerText = id, fields[0]
		fields = fields[1:]
	} else if len(fields) > 1 && looksLikeAbbreviation(fields[0]) {
		tok.OwnerText = fields[0]
		fields = fields[1:]
		prefixErr = fmt.Errorf("%w: owner prefix %q in %q", model.ErrUnresolvableAlias, tok.OwnerText, raw)
	} else {
		prefixErr = fmt.Errorf("%w: no owner prefix in %q", model.ErrUnresolvableAlias, raw)
	}

	if len(fields) > 1 && positionPattern.MatchString(fields[0]) {
		tok.Position = fields[0]
		fields = fields[1:]
	}
	tok.Body = strings.Join(fields, " ")
	tok.Pick = IsPick(tok.Body)
	return tok, prefixErr
}

// IsPick reports whether text describes a draft pick.
func IsPick(text string) bool { return pickPattern.MatchString(text) }

// StripMarkup removes HTML tags and collapses whitespace.
func StripMarkup(s string) string {
	return strings.Join(strings.Fields(markupPattern.ReplaceAllString(s, " ")), " ")
}

func looksLikeAbbreviation(word string) bool {
	if len(word) < 2 || len(word) > 6 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return !positionPattern.MatchString(word)
}
