// Package similarity scores how alike two normalized strings are.
//
// The metric is the Ratcliff/Obershelp matching-blocks ratio, also known as
// gestalt pattern matching: twice the number of matching characters divided
// by the total length of both strings. Identical strings
// score 1.0, disjoint strings score near 0, and the metric is symmetric.
package similarity

// Ratio returns the similarity between a and b in [0, 1].
func Ratio(a, b string) float64 {
	if a == b {
		return 1.0
	}
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1.0
	}
	matched := matchingTotal(ra, rb)
	return 2.0 * float64(matched) / float64(total)
}

// matchingTotal sums the lengths of the Ratcliff/Obershelp matching blocks:
// the longest common substring, then recursively the pieces to its left and
// right on both sides.
func matchingTotal(a, b []rune) int {
	ai, bi, size := longestCommonSubstring(a, b)
	if size == 0 {
		return 0
	}
	total := size
	total += matchingTotal(a[:ai], b[:bi])
	total += matchingTotal(a[ai+size:], b[bi+size:])
	return total
}

// longestCommonSubstring finds the leftmost longest run of runes common to a
// and b, returning its start in each plus its length.
func longestCommonSubstring(a, b []rune) (aStart, bStart, size int) {
	if len(a) == 0 || len(b) == 0 {
		return 0, 0, 0
	}

	// lengths[j] holds the length of the common run ending at a[i], b[j-1]
	// from the previous row; a single row is enough.
	lengths := make([]int, len(b)+1)
	for i := 0; i < len(a); i++ {
		// Walk b right-to-left so the row can be updated in place.
		for j := len(b); j >= 1; j-- {
			if a[i] == b[j-1] {
				lengths[j] = lengths[j-1] + 1
				if lengths[j] > size {
					size = lengths[j]
					aStart = i - size + 1
					bStart = j - size
				}
			} else {
				lengths[j] = 0
			}
		}
	}
	return aStart, bStart, size
}
