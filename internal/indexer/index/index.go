// Package index holds the in-memory inverted index and its IDF table.
//
// Construction happens through a Builder, which is consumed by Build to
// produce an immutable Index. An Index has no mutators, so any number of
// goroutines may read it without locking.
package index

import (
	"fmt"
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// IDFTable maps each indexed term to ln(N / DF(term)).
type IDFTable map[string]float64

// Builder accumulates postings for a fixed corpus. It is not safe for
// concurrent use.
type Builder struct {
	normalizer *tokenizer.Normalizer
	postings   map[string]map[string]*Posting
	docLengths map[string]int
	size       int64
	built      bool
}

// NewBuilder returns an empty Builder that normalises text with n.
func NewBuilder(n *tokenizer.Normalizer) *Builder {
	return &Builder{
		normalizer: n,
		postings:   make(map[string]map[string]*Posting),
		docLengths: make(map[string]int),
	}
}

// Add normalises text and records one posting per distinct term. Document
// IDs must be unique.
func (b *Builder) Add(docID string, text string) error {
	if b.built {
		return apperrors.ErrIndexFrozen
	}
	if _, exists := b.docLengths[docID]; exists {
		return fmt.Errorf("adding %q: %w", docID, apperrors.ErrDuplicateDocument)
	}
	terms := b.normalizer.Normalize(text)
	termData := make(map[string]*Posting)
	for _, term := range terms {
		p, exists := termData[term]
		if !exists {
			p = &Posting{DocID: docID}
			termData[term] = p
		}
		p.Frequency++
	}
	for term, posting := range termData {
		if _, exists := b.postings[term]; !exists {
			b.postings[term] = make(map[string]*Posting)
		}
		b.postings[term][docID] = posting
		b.size += int64(len(term) + len(docID) + 64)
	}
	b.docLengths[docID] = len(terms)
	return nil
}

// DocCount returns the number of documents added so far.
func (b *Builder) DocCount() int {
	return len(b.docLengths)
}

// Build freezes the builder and returns the finished Index with its IDF
// table computed. Calling Build twice returns ErrIndexFrozen.
func (b *Builder) Build() (*Index, error) {
	if b.built {
		return nil, apperrors.ErrIndexFrozen
	}
	b.built = true

	postings := make(map[string]PostingList, len(b.postings))
	for term, docs := range b.postings {
		list := make(PostingList, 0, len(docs))
		for _, p := range docs {
			list = append(list, *p)
		}
		sort.Slice(list, func(i, j int) bool {
			return list[i].DocID < list[j].DocID
		})
		postings[term] = list
	}
	idx := &Index{
		postings:   postings,
		idf:        ComputeIDF(postings, len(b.docLengths)),
		docLengths: b.docLengths,
		size:       b.size,
	}
	b.postings = nil
	b.docLengths = nil
	return idx, nil
}

// ComputeIDF returns ln(n / DF(t)) for every term in postings, where DF(t)
// is the length of the term's posting list. An empty corpus yields an empty
// table.
func ComputeIDF(postings map[string]PostingList, n int) IDFTable {
	table := make(IDFTable, len(postings))
	if n <= 0 {
		return table
	}
	for term, list := range postings {
		df := len(list)
		if df == 0 {
			continue
		}
		table[term] = math.Log(float64(n) / float64(df))
	}
	return table
}

// Index is a frozen inverted index plus its IDF table.
type Index struct {
	postings   map[string]PostingList
	idf        IDFTable
	docLengths map[string]int
	size       int64
}

// Postings returns a copy of the postings for term, sorted by DocID, or nil
// if the term is not indexed.
func (idx *Index) Postings(term string) PostingList {
	list, ok := idx.postings[term]
	if !ok {
		return nil
	}
	out := make(PostingList, len(list))
	copy(out, list)
	return out
}

// VisitPostings calls fn for each posting of term in DocID order and
// reports whether the term is indexed. It does not allocate.
func (idx *Index) VisitPostings(term string, fn func(Posting)) bool {
	list, ok := idx.postings[term]
	if !ok {
		return false
	}
	for _, p := range list {
		fn(p)
	}
	return true
}

// IDF returns the precomputed IDF for term.
func (idx *Index) IDF(term string) (float64, bool) {
	v, ok := idx.idf[term]
	return v, ok
}

// DocFreq returns the number of documents containing term.
func (idx *Index) DocFreq(term string) int {
	return len(idx.postings[term])
}

// DocCount returns N, the number of indexed documents.
func (idx *Index) DocCount() int {
	return len(idx.docLengths)
}

// TermCount returns the number of distinct terms.
func (idx *Index) TermCount() int {
	return len(idx.postings)
}

// DocLength returns the number of terms kept for docID after
// normalisation.
func (idx *Index) DocLength(docID string) int {
	return idx.docLengths[docID]
}

// HasDocument reports whether docID was indexed.
func (idx *Index) HasDocument(docID string) bool {
	_, ok := idx.docLengths[docID]
	return ok
}

// Terms returns every indexed term in ascending order.
func (idx *Index) Terms() []string {
	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	return terms
}

// Docs returns per-document stats ordered by DocID.
func (idx *Index) Docs() []DocStats {
	docs := make([]DocStats, 0, len(idx.docLengths))
	for id, n := range idx.docLengths {
		docs = append(docs, DocStats{DocID: id, DocLen: n})
	}
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].DocID < docs[j].DocID
	})
	return docs
}

// Snapshot returns every term with its IDF and postings, ordered by term.
func (idx *Index) Snapshot() []TermEntry {
	entries := make([]TermEntry, 0, len(idx.postings))
	for _, term := range idx.Terms() {
		entries = append(entries, TermEntry{
			Term:     term,
			IDF:      idx.idf[term],
			Postings: idx.Postings(term),
		})
	}
	return entries
}

// Size returns a rough estimate of the index's memory footprint in bytes.
func (idx *Index) Size() int64 {
	return idx.size
}
