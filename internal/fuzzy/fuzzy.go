// Package fuzzy scores free-text similarity on a 0-100 scale.
//
// The default scorer is a token-set ratio: both inputs are reduced to sets of
// lowercase ASCII tokens, and the score is the best pairwise similarity among
// the shared tokens alone and the shared tokens followed by each side's
// leftovers. Word order does not matter, and one side carrying extra tokens
// (initials expanded, a middle name) costs much less than disagreeing tokens.
package fuzzy

import (
	"math"
	"sort"
	"strings"
)

// Scorer computes a symmetric similarity between two strings in [0, 100].
type Scorer interface {
	Score(a, b string) int
}

// ScorerFunc adapts an ordinary function to the Scorer interface.
type ScorerFunc func(a, b string) int

// Score calls f(a, b).
func (f ScorerFunc) Score(a, b string) int {
	return f(a, b)
}

// TokenSet is the default Scorer.
var TokenSet Scorer = ScorerFunc(TokenSetRatio)

// TokenSetRatio compares the token sets of a and b.
// Returns 0 when either side has no tokens after processing.
func TokenSetRatio(a, b string) int {
	p1 := Process(a)
	p2 := Process(b)
	if p1 == "" || p2 == "" {
		return 0
	}

	tokens1 := tokenSet(p1)
	tokens2 := tokenSet(p2)

	var intersection, diff1to2, diff2to1 []string
	for tok := range tokens1 {
		if _, ok := tokens2[tok]; ok {
			intersection = append(intersection, tok)
		} else {
			diff1to2 = append(diff1to2, tok)
		}
	}
	for tok := range tokens2 {
		if _, ok := tokens1[tok]; !ok {
			diff2to1 = append(diff2to1, tok)
		}
	}
	sort.Strings(intersection)
	sort.Strings(diff1to2)
	sort.Strings(diff2to1)

	sect := strings.Join(intersection, " ")
	combined1to2 := strings.TrimSpace(sect + " " + strings.Join(diff1to2, " "))
	combined2to1 := strings.TrimSpace(sect + " " + strings.Join(diff2to1, " "))

	return max(
		Ratio(sect, combined1to2),
		Ratio(sect, combined2to1),
		Ratio(combined1to2, combined2to1),
	)
}

// Ratio is the indel similarity of a and b: 2*LCS / (len(a)+len(b)), scaled
// to 0-100 and rounded. Identical strings score 100, an empty side scores 0.
func Ratio(a, b string) int {
	if a == b {
		return 100
	}
	if a == "" || b == "" {
		return 0
	}
	lcs := longestCommonSubsequence(a, b)
	total := len(a) + len(b)
	return int(math.Round(100 * float64(2*lcs) / float64(total)))
}

// Process reduces s to lowercase ASCII words separated by single spaces.
// Non-ASCII runes are dropped and ASCII punctuation becomes a separator.
func Process(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r < 0x80:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func tokenSet(processed string) map[string]struct{} {
	fields := strings.Fields(processed)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// longestCommonSubsequence works on bytes; callers pass processed ASCII.
func longestCommonSubsequence(a, b string) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				curr[j] = prev[j-1] + 1
			} else {
				curr[j] = max(prev[j], curr[j-1])
			}
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
