package match

// levenshtein computes the edit distance between two rune slices with the
// standard dynamic-programming table. Identity fields are short, so the full
// (len(b)+1) x (len(a)+1) table is fine; no need for the O(min) space variant.
func levenshtein(a, b []rune) int {
	matrix := make([][]int, len(b)+1)
	for i := range matrix {
		matrix[i] = make([]int, len(a)+1)
		matrix[i][0] = i
	}
	for j := 0; j <= len(a); j++ {
		matrix[0][j] = j
	}

	for i := 1; i <= len(b); i++ {
		for j := 1; j <= len(a); j++ {
			if b[i-1] == a[j-1] {
				matrix[i][j] = matrix[i-1][j-1]
				continue
			}
			matrix[i][j] = 1 + min(
				matrix[i-1][j-1], // substitution
				matrix[i][j-1],   // insertion
				matrix[i-1][j],   // deletion
			)
		}
	}
	return matrix[len(b)][len(a)]
}

// Similarity scores how close two strings are as a percentage in [0, 100]:
// 100*(maxLen-distance)/maxLen over the Levenshtein distance. Two empty
// strings are a trivial perfect match and score exactly 100.
//
// Similarity performs no normalization; callers pass already-canonical text
// when they want accent- and case-insensitive comparison.
func Similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	maxLen := max(len(ra), len(rb))
	if maxLen == 0 {
		return 100
	}
	distance := levenshtein(ra, rb)
	return float64(maxLen-distance) / float64(maxLen) * 100
}
