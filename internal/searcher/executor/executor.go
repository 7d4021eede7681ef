package executor

import (
	"context"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/parser"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/ranker"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// Result types recorded in search_queries_total.
const (
	resultHit        = "hit"
	resultZero       = "zero_result"
	resultEmptyQuery = "empty_query"
)

type SearchResult struct {
	Query     string             `json:"query"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
	TermStats map[string]int     `json:"term_stats"`
}

// Executor runs queries against a built engine. It holds no mutable state
// and may be shared by any number of goroutines.
type Executor struct {
	engine  *indexer.Engine
	metrics *metrics.Metrics
}

func New(engine *indexer.Engine) *Executor {
	return &Executor{
		engine: engine,
	}
}

// WithMetrics makes the executor record query outcomes in m.
func (e *Executor) WithMetrics(m *metrics.Metrics) *Executor {
	e.metrics = m
	return e
}

// Engine returns the engine queries run against.
func (e *Executor) Engine() *indexer.Engine {
	return e.engine
}

// Parse normalises query with the engine's normaliser.
func (e *Executor) Parse(query string) *parser.QueryPlan {
	return parser.Parse(query, e.engine.Normalizer())
}

// Search parses and executes query.
func (e *Executor) Search(ctx context.Context, query string, limit int) (*SearchResult, error) {
	return e.Execute(ctx, e.Parse(query), limit)
}

// Execute scores every document containing a plan term by the sum of
// term frequency × IDF over the plan's terms, counting repeated query terms
// once per occurrence. Unknown terms contribute nothing. Terms are summed in
// canonical order, so reordering a query never changes a score. TotalHits
// counts every scoring document; Results is truncated to limit when
// limit > 0.
func (e *Executor) Execute(ctx context.Context, plan *parser.QueryPlan, limit int) (*SearchResult, error) {
	if plan.Empty() {
		e.record(resultEmptyQuery, 0)
		return &SearchResult{
			Query:     plan.RawQuery,
			Results:   []ranker.ScoredDoc{},
			TermStats: map[string]int{},
		}, nil
	}

	idx := e.engine.Index()
	scores := make(ranker.Scores)
	termStats := make(map[string]int)
	for _, term := range plan.Canonical() {
		idf, ok := idx.IDF(term)
		if !ok {
			continue
		}
		idx.VisitPostings(term, func(p index.Posting) {
			scores.Add(p.DocID, p.Frequency, idf)
		})
		termStats[term] = idx.DocFreq(term)
	}

	ranked := ranker.Rank(scores, 0)
	totalHits := len(ranked)
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	if totalHits == 0 {
		e.record(resultZero, 0)
	} else {
		e.record(resultHit, totalHits)
	}

	logger.FromContext(ctx).Info("query executed",
		"component", "query-executor",
		"query", plan.RawQuery,
		"terms", plan.Terms,
		"matched_terms", len(termStats),
		"total_hits", totalHits,
		"results", len(ranked),
	)
	return &SearchResult{
		Query:     plan.RawQuery,
		TotalHits: totalHits,
		Results:   ranked,
		TermStats: termStats,
	}, nil
}

func (e *Executor) record(resultType string, hits int) {
	if e.metrics == nil {
		return
	}
	e.metrics.SearchQueriesTotal.WithLabelValues(resultType).Inc()
	e.metrics.SearchResultsCount.Observe(float64(hits))
}
