package scrape

import (
	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// DefaultMatchThreshold is the minimum token-set similarity, in [0,100], for
// a cross-platform candidate to be accepted
const DefaultMatchThreshold = 80

// Match is an accepted candidate annotated with its similarity score
type Match struct {
	Candidate
	Score int
}

// BestMatch scores each candidate's name against the target query with a
// token-set ratio and returns the single best candidate at or above the
// threshold. A wrong cross-platform match is worse than no match, so this
// never returns more than one result. Ties keep the first candidate in
// input order.
func BestMatch(target string, candidates []Candidate, threshold int) (Match, bool) {
	bestScore := -1
	bestIdx := -1

	for i, c := range candidates {
		score := fuzzy.TokenSetRatio(target, c.Name)
		if score > bestScore {
			bestScore = score
			bestIdx = i
		}
	}

	if bestIdx < 0 || bestScore < threshold {
		return Match{}, false
	}

	return Match{Candidate: candidates[bestIdx], Score: bestScore}, true
}
