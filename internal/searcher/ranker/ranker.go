// Package ranker accumulates TF-IDF scores and orders documents by them.
package ranker

import (
	"sort"
)

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// Scores accumulates per-document relevance.
type Scores map[string]float64

// Add adds termFreq × idf to docID's score.
func (s Scores) Add(docID string, termFreq int, idf float64) {
	s[docID] += float64(termFreq) * idf
}

// Rank returns documents with a positive score, highest first. Equal scores
// are ordered by ascending DocID. A limit <= 0 returns every document.
func Rank(scores Scores, limit int) []ScoredDoc {
	result := make([]ScoredDoc, 0, len(scores))
	for docID, score := range scores {
		if score <= 0 {
			continue
		}
		result = append(result, ScoredDoc{
			DocID: docID,
			Score: score,
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
