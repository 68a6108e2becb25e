package match

import "strings"

// Token weighting for NameSimilarity. Token-level agreement dominates so that
// reordered name components ("Juan Pérez García" vs "Pérez García Juan")
// still score highly despite poor whole-string similarity.
const (
	globalWeight = 0.4
	tokenWeight  = 0.6
)

// NameSimilarity compares two full names, tolerant of word reordering and
// partial matches. Both names are normalized internally.
//
// The score blends whole-string similarity with the mean best-match score of
// each token of the first name against the tokens of the second. The token
// pass iterates the first name's tokens only; the comparison is deliberately
// asymmetric when token counts differ.
func NameSimilarity(name1, name2 string) float64 {
	n1 := Normalize(name1)
	n2 := Normalize(name2)

	globalScore := Similarity(n1, n2)

	tokens1 := strings.Fields(n1)
	tokens2 := strings.Fields(n2)

	tokenScore := 0.0
	if len(tokens1) > 0 {
		sum := 0.0
		for _, t1 := range tokens1 {
			best := 0.0
			for _, t2 := range tokens2 {
				if s := Similarity(t1, t2); s > best {
					best = s
				}
			}
			sum += best
		}
		tokenScore = sum / float64(len(tokens1))
	}

	return globalWeight*globalScore + tokenWeight*tokenScore
}
