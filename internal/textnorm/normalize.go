// Package textnorm maps free-form author and title text to a comparable ASCII form.
package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize approximates s in ASCII and trims surrounding whitespace.
// The second return value is false when nothing usable remains, which callers
// treat as an absent field (e.g. kožušček -> kozuscek, "  " -> absent).
func Normalize(s string) (string, bool) {
	if s == "" {
		return "", false
	}
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}
	if !isASCII(folded) {
		folded = unidecode.Unidecode(folded)
	}
	folded = strings.TrimSpace(folded)
	if folded == "" {
		return "", false
	}
	return folded, true
}

// MustNormalize returns the normalized text, or "" when it is absent.
func MustNormalize(s string) string {
	out, _ := Normalize(s)
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
