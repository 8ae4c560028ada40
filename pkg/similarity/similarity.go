package similarity

import "strings"

// Weights for the combined match score. Company identity carries more
// signal than role phrasing, which varies wildly across emails.
const (
	CompanyWeight = 0.6
	RoleWeight    = 0.4

	// MatchThreshold is the acceptance gate for the combined score.
	// Tunable, but tests pin the boundary behavior at exactly 0.70.
	MatchThreshold = 0.7

	containmentScore = 0.9
)

// Score calculates a lexical similarity between two strings in [0, 1].
// Substring containment (either direction) scores 0.9; otherwise the
// Jaccard index over whitespace-tokenized words. Used to re-score vector
// search candidates, since raw embedding distance alone produces false
// positives on short company/role strings.
func Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == "" || b == "" {
		return 0.0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentScore
	}

	wordsA := tokenSet(a)
	wordsB := tokenSet(b)

	common := 0
	for w := range wordsA {
		if wordsB[w] {
			common++
		}
	}
	union := len(wordsA) + len(wordsB) - common
	if union == 0 {
		return 0.0
	}
	return float64(common) / float64(union)
}

// Combined returns the weighted company/role score used as the match gate.
func Combined(companyA, companyB, roleA, roleB string) float64 {
	return CompanyWeight*Score(companyA, companyB) + RoleWeight*Score(roleA, roleB)
}

func normalize(s string) string {
	s = strings.ToLower(s)
	return strings.Join(strings.Fields(s), " ")
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}
