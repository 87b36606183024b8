// Package fuzzy provides edit-distance primitives for typo-tolerant
// command search.
package fuzzy

// LevenshteinDistance computes the Levenshtein edit distance between two
// strings: the minimum number of single-character insertions, deletions,
// or substitutions required to turn one into the other.
func LevenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	// Runes, not bytes, so multibyte input is counted correctly.
	ra := []rune(a)
	rb := []rune(b)

	// Two-row rolling buffer keeps memory at O(len(b)).
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

// DamerauLevenshteinDistance is like LevenshteinDistance but counts an
// adjacent-character transposition as a single edit, so swapped-letter
// typos ("gerp" for "grep") cost 1 instead of 2.
func DamerauLevenshteinDistance(a, b string) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	ra := []rune(a)
	rb := []rune(b)
	la := len(ra)
	lb := len(rb)

	// The transposition case reaches back two rows, so keep the full matrix.
	d := make([][]int, la+1)
	for i := range d {
		d[i] = make([]int, lb+1)
		d[i][0] = i
	}
	for j := 0; j <= lb; j++ {
		d[0][j] = j
	}

	for i := 1; i <= la; i++ {
		for j := 1; j <= lb; j++ {
			cost := 0
			if ra[i-1] != rb[j-1] {
				cost = 1
			}
			d[i][j] = min(
				d[i-1][j]+1,      // deletion
				d[i][j-1]+1,      // insertion
				d[i-1][j-1]+cost, // substitution
			)
			if i > 1 && j > 1 && ra[i-1] == rb[j-2] && ra[i-2] == rb[j-1] {
				d[i][j] = min(d[i][j], d[i-2][j-2]+cost) // transposition
			}
		}
	}

	return d[la][lb]
}

// Similarity maps Damerau-Levenshtein distance onto [0, 1], where 1.0 is an
// exact match. The distance is normalized by the longer input length.
func Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	maxLen := max(len([]rune(a)), len([]rune(b)))
	if maxLen == 0 {
		return 1.0
	}

	return 1.0 - float64(DamerauLevenshteinDistance(a, b))/float64(maxLen)
}
