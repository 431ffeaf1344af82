package token

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/okian/dynasty/internal/domain/model"
)

var (
	yearPattern  = regexp.MustCompile(`\b(20\d{2})\b`)
	roundPattern = regexp.MustCompile(`(?i)\b(1st|2nd|first|second|frp|srp)\b|\bround\s+([12])\b|\bR([12])\b`)
	slotPattern  = regexp.MustCompile(`\(?#(\d{1,2})\)?`)
	swapPattern  = regexp.MustCompile(`(?i)\bswap`)
)

var noise = map[string]bool{
	"round": true, "pick": true, "draft": true, "right": true, "rights": true,
	"to": true, "swap": true, "with": true, "own": true, "the": true, "and": true,
	"of": true, "via": true, "from": true,
}

var roundWords = map[string]int{
	"1st": 1, "first": 1, "frp": 1,
	"2nd": 2, "second": 2, "srp": 2,
}

// ParsePick extracts the original owner, year and round from a pick
// description. Any missing part yields model.ErrUnparsablePick; the owner is
// never inferred from context.
func ParsePick(body string, owners OwnerResolver) (model.PickRef, error) {
	var ref model.PickRef

	m := yearPattern.FindStringSubmatch(body)
	if m == nil {
		return ref, fmt.Errorf("%w: no year in %q", model.ErrUnparsablePick, body)
	}
	ref.Year, _ = strconv.Atoi(m[1])

	rm := roundPattern.FindStringSubmatch(body)
	switch {
	case rm == nil:
		return ref, fmt.Errorf("%w: no round in %q", model.ErrUnparsablePick, body)
	case rm[1] != "":
		ref.Round = roundWords[strings.ToLower(rm[1])]
	case rm[2] != "":
		ref.Round, _ = strconv.Atoi(rm[2])
	default:
		ref.Round, _ = strconv.Atoi(rm[3])
	}

	if sm := slotPattern.FindStringSubmatch(body); sm != nil {
		ref.SlotHint, _ = strconv.Atoi(sm[1])
	}
	ref.Swap = swapPattern.MatchString(body)

	rest := slotPattern.ReplaceAllString(body, " ")
	rest = yearPattern.ReplaceAllString(rest, " ")
	rest = roundPattern.ReplaceAllString(rest, " ")
	owner, ok := ownerWord(rest, owners)
	if !ok {
		return ref, fmt.Errorf("%w: no owner in %q", model.ErrUnparsablePick, body)
	}
	ref.OriginalOwner = owner
	return ref, nil
}

// ownerWord tries the whole remainder first so multi-word team names match,
// then each word in order.
func ownerWord(rest string, owners OwnerResolver) (model.OwnerID, bool) {
	var words []string
	for _, w := range strings.Fields(rest) {
		w = strings.Trim(w, "(),.:;")
		w = strings.TrimSuffix(strings.TrimSuffix(w, "'s"), "’s")
		if w == "" || noise[strings.ToLower(w)] {
			continue
		}
		words = append(words, w)
	}
	if len(words) > 1 {
		if id, ok := owners.Owner(strings.Join(words, " ")); ok {
			return id, true
		}
	}
	for _, w := range words {
		if id, ok := owners.Owner(w); ok {
			return id, true
		}
	}
	return "", false
}
