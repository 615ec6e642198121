// Package match provides the string-similarity capability used for
// fuzzy name matching of biosphere flows across database versions.
package match

import (
	"sort"
	"strings"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// DefaultCutoff is the minimum normalized similarity for a fuzzy match
// to be accepted.
const DefaultCutoff = 0.70

// Scorer computes a normalized similarity score in [0,1] for two strings.
type Scorer interface {
	Score(a, b string) float64
}

// TokenSort scores strings by Levenshtein similarity after lowercasing,
// stripping punctuation, and sorting tokens, so word order and minor
// spelling drift between database versions don't defeat the comparison.
type TokenSort struct{}

func (TokenSort) Score(a, b string) float64 {
	return strutil.Similarity(normalize(a), normalize(b), metrics.NewLevenshtein())
}

func normalize(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	tokens := strings.Fields(b.String())
	sort.Strings(tokens)
	return strings.Join(tokens, " ")
}

// Best returns the index and score of the candidate most similar to
// query, provided the score is at least cutoff. Ties resolve to the
// first-encountered candidate. ok is false when nothing clears the
// cutoff or candidates is empty.
func Best(scorer Scorer, query string, candidates []string, cutoff float64) (index int, score float64, ok bool) {
	index = -1
	for i, candidate := range candidates {
		s := scorer.Score(query, candidate)
		if s < cutoff {
			continue
		}
		if index == -1 || s > score {
			index = i
			score = s
		}
	}
	return index, score, index >= 0
}
