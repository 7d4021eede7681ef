// Package indexer builds the ready-to-query search engine from a corpus.
// Building happens once; the resulting Engine is read-only and safe for
// concurrent queries.
package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/corpus"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/tracing"
)

// Options configures Build. Zero values are valid.
type Options struct {
	Normalizer *tokenizer.Normalizer
	Metrics    *metrics.Metrics
}

// Stats summarises a built engine.
type Stats struct {
	Docs          int           `json:"docs"`
	Terms         int           `json:"terms"`
	SizeBytes     int64         `json:"size_bytes"`
	Fingerprint   string        `json:"fingerprint"`
	BuiltAt       time.Time     `json:"built_at"`
	BuildDuration time.Duration `json:"build_duration_ns"`
}

// Engine is a built index together with the normaliser that produced it.
type Engine struct {
	index         *index.Index
	normalizer    *tokenizer.Normalizer
	fingerprint   string
	builtAt       time.Time
	buildDuration time.Duration
	logger        *slog.Logger
}

// Build indexes docs and computes the IDF table. It fails only on duplicate
// document IDs.
func Build(ctx context.Context, docs []corpus.Document, opts Options) (*Engine, error) {
	logger := slog.Default().With("component", "indexer")
	n := opts.Normalizer
	if n == nil {
		n = tokenizer.Default()
	}
	start := time.Now()
	ctx, span := tracing.StartSpan(ctx, "index.build")
	defer func() {
		span.End()
		span.Log(logger)
	}()

	builder := index.NewBuilder(n)
	if err := addAll(ctx, builder, docs, logger); err != nil {
		span.SetAttr("error", err.Error())
		return nil, err
	}

	_, freezeSpan := tracing.StartChildSpan(ctx, "index.idf")
	idx, err := builder.Build()
	freezeSpan.End()
	if err != nil {
		span.SetAttr("error", err.Error())
		return nil, fmt.Errorf("freezing index: %w", err)
	}
	freezeSpan.SetAttr("terms", idx.TermCount())

	e := &Engine{
		index:         idx,
		normalizer:    n,
		fingerprint:   fingerprint(docs, n),
		builtAt:       time.Now().UTC(),
		buildDuration: time.Since(start),
		logger:        logger,
	}
	if m := opts.Metrics; m != nil {
		m.DocsIndexedTotal.Add(float64(idx.DocCount()))
		m.IndexTerms.Set(float64(idx.TermCount()))
		m.IndexSizeBytes.Set(float64(idx.Size()))
		m.IndexBuildDuration.Observe(e.buildDuration.Seconds())
	}
	if idx.DocCount() == 0 {
		logger.Warn("index built from an empty corpus, every query will return no results")
	}
	logger.Info("index built",
		"docs", idx.DocCount(),
		"terms", idx.TermCount(),
		"size_bytes", idx.Size(),
		"fingerprint", e.fingerprint,
		"duration", e.buildDuration,
	)
	return e, nil
}

func addAll(ctx context.Context, b *index.Builder, docs []corpus.Document, logger *slog.Logger) error {
	_, span := tracing.StartChildSpan(ctx, "index.add")
	defer span.End()
	for _, doc := range docs {
		if err := b.Add(doc.ID, doc.Text); err != nil {
			return fmt.Errorf("indexing document: %w", err)
		}
		logger.Debug("document indexed", "doc_id", doc.ID)
	}
	span.SetAttr("docs", b.DocCount())
	return nil
}

// BuildFromSource loads every document from src, bounded by cfg.LoadTimeout,
// and builds an engine from them.
func BuildFromSource(ctx context.Context, src corpus.Source, cfg config.CorpusConfig, opts Options) (*Engine, error) {
	docs, err := corpus.LoadWithTimeout(ctx, src, cfg)
	if err != nil {
		return nil, fmt.Errorf("loading corpus: %w", err)
	}
	return Build(ctx, docs, opts)
}

// Index returns the frozen inverted index.
func (e *Engine) Index() *index.Index {
	return e.index
}

// Normalizer returns the normaliser used at build time. Queries must use it.
func (e *Engine) Normalizer() *tokenizer.Normalizer {
	return e.normalizer
}

// Lookup normalises raw and returns the first resulting term's entry.
func (e *Engine) Lookup(raw string) (index.TermEntry, bool) {
	terms := e.normalizer.Normalize(raw)
	if len(terms) == 0 {
		return index.TermEntry{}, false
	}
	term := terms[0]
	idf, ok := e.index.IDF(term)
	if !ok {
		return index.TermEntry{Term: term}, false
	}
	return index.TermEntry{
		Term:     term,
		IDF:      idf,
		Postings: e.index.Postings(term),
	}, true
}

// Document reports the number of kept terms for docID. Documents made only
// of stop words are indexed with length 0.
func (e *Engine) Document(docID string) (index.DocStats, bool) {
	if !e.index.HasDocument(docID) {
		return index.DocStats{}, false
	}
	return index.DocStats{DocID: docID, DocLen: e.index.DocLength(docID)}, true
}

// TotalDocs returns N.
func (e *Engine) TotalDocs() int {
	return e.index.DocCount()
}

// Fingerprint identifies the corpus and stop-word set the engine was built
// from. Two engines with equal fingerprints rank every query identically.
func (e *Engine) Fingerprint() string {
	return e.fingerprint
}

// Stats returns a summary of the engine.
func (e *Engine) Stats() Stats {
	return Stats{
		Docs:          e.index.DocCount(),
		Terms:         e.index.TermCount(),
		SizeBytes:     e.index.Size(),
		Fingerprint:   e.fingerprint,
		BuiltAt:       e.builtAt,
		BuildDuration: e.buildDuration,
	}
}

func fingerprint(docs []corpus.Document, n *tokenizer.Normalizer) string {
	sorted := make([]corpus.Document, len(docs))
	copy(sorted, docs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID < sorted[j].ID
	})
	stop := n.StopWords()
	sort.Strings(stop)

	h := sha256.New()
	for _, w := range stop {
		h.Write([]byte(w))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, d := range sorted {
		h.Write([]byte(d.ID))
		h.Write([]byte{0})
		h.Write([]byte(d.Text))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}
