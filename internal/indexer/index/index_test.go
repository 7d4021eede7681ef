package index

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/indexer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

type doc struct {
	id   string
	text string
}

var corpus = []doc{
	{"doc1.txt", "Machine learning is great. Machine learning is fun!"},
	{"doc2.txt", "Deep learning"},
	{"doc3.txt", "The history of the printing press"},
}

func build(t testing.TB, docs []doc) *Index {
	t.Helper()
	b := NewBuilder(tokenizer.Default())
	for _, d := range docs {
		if err := b.Add(d.id, d.text); err != nil {
			t.Fatalf("Add(%q): %v", d.id, err)
		}
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestBuildPostings(t *testing.T) {
	idx := build(t, corpus)

	if got := idx.DocCount(); got != 3 {
		t.Fatalf("DocCount = %d, want 3", got)
	}
	want := PostingList{{DocID: "doc1.txt", Frequency: 2}, {DocID: "doc2.txt", Frequency: 1}}
	if got := idx.Postings("learning"); !reflect.DeepEqual(got, want) {
		t.Errorf("Postings(learning) = %+v, want %+v", got, want)
	}
	if got := idx.Postings("the"); got != nil {
		t.Errorf("stop word should not be indexed, got %+v", got)
	}
	if got := idx.Postings("missing"); got != nil {
		t.Errorf("Postings(missing) = %+v, want nil", got)
	}
	if got := idx.DocLength("doc1.txt"); got != 6 {
		t.Errorf("DocLength(doc1.txt) = %d, want 6", got)
	}
}

func TestNoZeroCountPostings(t *testing.T) {
	idx := build(t, corpus)
	for _, entry := range idx.Snapshot() {
		if len(entry.Postings) == 0 {
			t.Errorf("term %q has no postings", entry.Term)
		}
		for _, p := range entry.Postings {
			if p.Frequency < 1 {
				t.Errorf("term %q doc %q has frequency %d", entry.Term, p.DocID, p.Frequency)
			}
		}
	}
}

func TestDocFreqMatchesDistinctDocuments(t *testing.T) {
	n := tokenizer.Default()
	idx := build(t, corpus)
	for _, term := range idx.Terms() {
		want := 0
		for _, d := range corpus {
			for _, got := range n.Normalize(d.text) {
				if got == term {
					want++
					break
				}
			}
		}
		if got := idx.DocFreq(term); got != want {
			t.Errorf("DocFreq(%q) = %d, want %d", term, got, want)
		}
	}
}

func TestIDFProperties(t *testing.T) {
	docs := append([]doc{}, corpus...)
	docs = append(docs, doc{"doc4.txt", "learning press machine history deep printing great fun"})
	idx := build(t, docs)

	n := float64(idx.DocCount())
	for _, term := range idx.Terms() {
		v, ok := idx.IDF(term)
		if !ok {
			t.Fatalf("IDF(%q) missing", term)
		}
		df := idx.DocFreq(term)
		if want := math.Log(n / float64(df)); v != want {
			t.Errorf("IDF(%q) = %v, want %v", term, v, want)
		}
		if v < 0 {
			t.Errorf("IDF(%q) = %v is negative", term, v)
		}
		if (v == 0) != (df == idx.DocCount()) {
			t.Errorf("IDF(%q) = %v with DF %d of N %d", term, v, df, idx.DocCount())
		}
	}
}

func TestComputeIDF(t *testing.T) {
	postings := map[string]PostingList{
		"everywhere": {{DocID: "a"}, {DocID: "b"}},
		"rare":       {{DocID: "a"}},
	}
	table := ComputeIDF(postings, 2)
	if table["everywhere"] != 0 {
		t.Errorf("IDF(everywhere) = %v, want 0", table["everywhere"])
	}
	if want := math.Log(2); table["rare"] != want {
		t.Errorf("IDF(rare) = %v, want %v", table["rare"], want)
	}
	if got := ComputeIDF(postings, 0); len(got) != 0 {
		t.Errorf("ComputeIDF with N=0 = %v, want empty", got)
	}
}

func TestBuildIdempotent(t *testing.T) {
	a := build(t, corpus)
	b := build(t, corpus)
	if !reflect.DeepEqual(a.Snapshot(), b.Snapshot()) {
		t.Error("snapshots differ between builds of the same corpus")
	}
}

func TestEmptyCorpus(t *testing.T) {
	idx := build(t, nil)
	if idx.DocCount() != 0 || idx.TermCount() != 0 {
		t.Errorf("empty corpus: DocCount=%d TermCount=%d", idx.DocCount(), idx.TermCount())
	}
	if len(idx.Snapshot()) != 0 || len(idx.Docs()) != 0 {
		t.Error("empty corpus should have no terms and no documents")
	}
}

func TestDocumentWithNoTerms(t *testing.T) {
	idx := build(t, []doc{{"a.txt", "the of and"}, {"b.txt", "kitten"}})
	if idx.DocCount() != 2 {
		t.Fatalf("DocCount = %d, want 2", idx.DocCount())
	}
	if !idx.HasDocument("a.txt") || idx.DocLength("a.txt") != 0 {
		t.Error("a document with only stop words still counts towards N")
	}
	if idx.HasDocument("c.txt") {
		t.Error("HasDocument(c.txt) = true for an unindexed document")
	}
	if v, _ := idx.IDF("kitten"); v != math.Log(2) {
		t.Errorf("IDF(kitten) = %v, want ln 2", v)
	}
}

func TestDuplicateDocument(t *testing.T) {
	b := NewBuilder(tokenizer.Default())
	if err := b.Add("a.txt", "one"); err != nil {
		t.Fatal(err)
	}
	err := b.Add("a.txt", "two")
	if !errors.Is(err, apperrors.ErrDuplicateDocument) {
		t.Fatalf("Add duplicate = %v, want ErrDuplicateDocument", err)
	}
}

func TestBuilderFrozenAfterBuild(t *testing.T) {
	b := NewBuilder(tokenizer.Default())
	if err := b.Add("a.txt", "one"); err != nil {
		t.Fatal(err)
	}
	idx, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if err := b.Add("b.txt", "two"); !errors.Is(err, apperrors.ErrIndexFrozen) {
		t.Errorf("Add after Build = %v, want ErrIndexFrozen", err)
	}
	if _, err := b.Build(); !errors.Is(err, apperrors.ErrIndexFrozen) {
		t.Errorf("second Build = %v, want ErrIndexFrozen", err)
	}
	if idx.DocCount() != 1 {
		t.Errorf("frozen index changed: DocCount = %d", idx.DocCount())
	}
}

func TestPostingsReturnsCopy(t *testing.T) {
	idx := build(t, corpus)
	list := idx.Postings("learning")
	list[0].Frequency = 99
	if got := idx.Postings("learning")[0].Frequency; got != 2 {
		t.Errorf("mutating a returned posting list changed the index: %d", got)
	}
}

func TestDocsSorted(t *testing.T) {
	idx := build(t, []doc{{"b", "x"}, {"a", "y z"}})
	want := []DocStats{{DocID: "a", DocLen: 2}, {DocID: "b", DocLen: 1}}
	if got := idx.Docs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Docs = %+v, want %+v", got, want)
	}
}

func BenchmarkBuilderAdd(b *testing.B) {
	builder := NewBuilder(tokenizer.Default())
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		docID := fmt.Sprintf("doc-%d", i)
		builder.Add(docID, "this is a benchmark document with several terms for testing the indexing performance of our inverted index")
	}
}

func BenchmarkVisitPostingsParallel(b *testing.B) {
	builder := NewBuilder(tokenizer.Default())
	for i := 0; i < 10000; i++ {
		builder.Add(fmt.Sprintf("doc-%d", i), "search engine with inverted indexing and query processing")
	}
	idx, err := builder.Build()
	if err != nil {
		b.Fatal(err)
	}
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			var total int
			idx.VisitPostings("search", func(p Posting) { total += p.Frequency })
		}
	})
}

func TestSnapshotOrdered(t *testing.T) {
	idx := build(t, corpus)
	snap := idx.Snapshot()
	if len(snap) != idx.TermCount() {
		t.Fatalf("Snapshot has %d entries, want %d", len(snap), idx.TermCount())
	}
	for i, entry := range snap {
		if i > 0 && snap[i-1].Term >= entry.Term {
			t.Errorf("Snapshot not ordered at %d: %q after %q", i, entry.Term, snap[i-1].Term)
		}
		if idf, _ := idx.IDF(entry.Term); entry.IDF != idf {
			t.Errorf("Snapshot IDF(%q) = %v, want %v", entry.Term, entry.IDF, idf)
		}
	}
}
