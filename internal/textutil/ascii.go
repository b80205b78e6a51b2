package textutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonASCII = runes.Predicate(func(r rune) bool { return r > unicode.MaxASCII })

// ToASCII decomposes s (NFKD) and drops every rune outside the ASCII range,
// so "Pokémon" becomes "Pokemon" and CJK titles collapse to whatever ASCII
// punctuation they carried. Consoles without UTF-8 support can print the
// result safely.
func ToASCII(s string) string {
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFKD, runes.Remove(nonASCII))
	out, _, err := transform.String(t, s)
	if err != nil {
		return strings.Map(func(r rune) rune {
			if r > unicode.MaxASCII {
				return -1
			}
			return r
		}, s)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > unicode.MaxASCII {
			return false
		}
	}
	return true
}
