// Package parser turns raw query text into a QueryPlan using the same
// normaliser the index was built with.
package parser

import (
	"sort"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
)

// QueryPlan is a normalised query. Terms keeps repetition and order: a term
// that occurs twice in the query contributes to the score twice.
type QueryPlan struct {
	Terms    []string
	RawQuery string
}

// Parse normalises query with n. Stop-word-only or punctuation-only input
// yields a plan with no terms.
func Parse(query string, n *tokenizer.Normalizer) *QueryPlan {
	return &QueryPlan{
		Terms:    n.Normalize(query),
		RawQuery: query,
	}
}

// Empty reports whether the plan has no terms.
func (p *QueryPlan) Empty() bool {
	return len(p.Terms) == 0
}

// Canonical returns the terms sorted with repetition kept. Plans with the
// same canonical form differ only in term order; the executor accumulates
// scores in canonical order so they rank and score identically.
func (p *QueryPlan) Canonical() []string {
	out := make([]string, len(p.Terms))
	copy(out, p.Terms)
	sort.Strings(out)
	return out
}
