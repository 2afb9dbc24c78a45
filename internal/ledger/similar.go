package ledger

import (
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/cashfolio/cashfolio/internal/model"
)

// similarityThreshold is the maximum normalized edit distance between
// descriptions for two transactions to count as a near-duplicate.
const similarityThreshold = 0.4

// SimilarPair is a cross-batch pair that shares date and amount and has a
// closely matching description, yet did not meet the duplicate predicate.
// These are reported for user review only; the ledger never merges them.
type SimilarPair struct {
	A, B       model.Transaction
	BatchA     string
	BatchB     string
	Similarity float64
}

// SimilarPairs scans all batch pairs for near-duplicates the merge kept.
func (l *Ledger) SimilarPairs() []SimilarPair {
	l.mu.Lock()
	defer l.mu.Unlock()

	var pairs []SimilarPair
	for i := 0; i < len(l.batches); i++ {
		for j := i + 1; j < len(l.batches); j++ {
			for _, a := range l.batches[i].transactions {
				for _, b := range l.batches[j].transactions {
					if !a.Date.Equal(b.Date) || a.Amount != b.Amount {
						continue
					}
					if model.Duplicates(a, b) {
						continue
					}
					sim, ok := descriptionSimilarity(a.Description, b.Description)
					if !ok {
						continue
					}
					pairs = append(pairs, SimilarPair{
						A:          a,
						B:          b,
						BatchA:     l.batches[i].name,
						BatchB:     l.batches[j].name,
						Similarity: sim,
					})
				}
			}
		}
	}
	return pairs
}

func descriptionSimilarity(a, b string) (float64, bool) {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1, true
	}
	dist := levenshtein.ComputeDistance(strings.ToUpper(a), strings.ToUpper(b))
	normalized := float64(dist) / float64(maxLen)
	if normalized >= similarityThreshold {
		return 0, false
	}
	return 1 - normalized, true
}
