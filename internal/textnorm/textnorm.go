// Package textnorm canonicalizes free-text fields so provider and item
// descriptions can be compared across invoices that differ only in casing,
// accents or punctuation.
package textnorm

import "strings"

var accentFold = map[rune]rune{
	'á': 'a', 'à': 'a', 'ä': 'a', 'â': 'a',
	'é': 'e', 'è': 'e', 'ë': 'e', 'ê': 'e',
	'í': 'i', 'ì': 'i', 'ï': 'i', 'î': 'i',
	'ó': 'o', 'ò': 'o', 'ö': 'o', 'ô': 'o',
	'ú': 'u', 'ù': 'u', 'ü': 'u', 'û': 'u',
}

// Normalize produces the canonical comparison form of a free-text field:
// lowercase, accented Latin vowels folded, everything outside [a-z0-9 ]
// dropped, and internal whitespace collapsed to single spaces. It is pure
// and idempotent: Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	lowered := strings.ToLower(text)

	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if folded, ok := accentFold[r]; ok {
			r = folded
		}
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		}
	}

	// Fields collapses runs of spaces and trims in one pass.
	return strings.Join(strings.Fields(b.String()), " ")
}
