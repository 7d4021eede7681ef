package corpus

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestDirSourceLoad(t *testing.T) {
	dir := writeFiles(t, map[string]string{
		"doc2.txt":  "deep learning",
		"doc1.txt":  "machine learning is great",
		"notes.md":  "ignored",
		"README":    "ignored",
		"doc10.txt": "",
	})
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	docs, err := NewDirSource(dir, ".txt", 2).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := []Document{
		{ID: "doc1.txt", Text: "machine learning is great"},
		{ID: "doc10.txt", Text: ""},
		{ID: "doc2.txt", Text: "deep learning"},
	}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("Load = %+v, want %+v", docs, want)
	}
}

func TestDirSourceExtension(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.md": "alpha", "b.txt": "beta"})
	docs, err := NewDirSource(dir, ".md", 0).Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 || docs[0].ID != "a.md" {
		t.Errorf("Load = %+v, want only a.md", docs)
	}
}

func TestDirSourceEmptyDir(t *testing.T) {
	docs, err := NewDirSource(t.TempDir(), "", 0).Load(context.Background())
	if err != nil {
		t.Fatalf("empty corpus should not be an error: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("Load = %+v, want none", docs)
	}
}

func TestDirSourceMissingDir(t *testing.T) {
	_, err := NewDirSource(filepath.Join(t.TempDir(), "nope"), "", 0).Load(context.Background())
	if !errors.Is(err, apperrors.ErrCorpusNotFound) {
		t.Fatalf("Load = %v, want ErrCorpusNotFound", err)
	}
}

func TestDirSourceInvalidUTF8(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.txt": string([]byte{0xff, 0xfe, 'a'})})
	_, err := NewDirSource(dir, "", 0).Load(context.Background())
	if !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("Load = %v, want ErrInvalidInput", err)
	}
}

func TestSortByIDRejectsDuplicates(t *testing.T) {
	docs := []Document{{ID: "b"}, {ID: "a"}, {ID: "b"}}
	if err := SortByID(docs); !errors.Is(err, apperrors.ErrDuplicateDocument) {
		t.Fatalf("SortByID = %v, want ErrDuplicateDocument", err)
	}
}

type fakeRows struct {
	rows [][2]any
	i    int
}

func (f *fakeRows) Next() bool { f.i++; return f.i <= len(f.rows) }

func (f *fakeRows) Scan(dest ...any) error {
	row := f.rows[f.i-1]
	*dest[0].(*string) = row[0].(string)
	body := dest[1].(interface{ Scan(any) error })
	return body.Scan(row[1])
}

func (f *fakeRows) Err() error { return nil }

func TestScanDocuments(t *testing.T) {
	rows := &fakeRows{rows: [][2]any{{"a", "alpha text"}, {"b", nil}}}
	docs, err := scanDocuments(rows)
	if err != nil {
		t.Fatal(err)
	}
	want := []Document{{ID: "a", Text: "alpha text"}, {ID: "b", Text: ""}}
	if !reflect.DeepEqual(docs, want) {
		t.Errorf("scanDocuments = %+v, want %+v", docs, want)
	}
}

type slowSource struct{}

func (slowSource) Load(ctx context.Context) ([]Document, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestLoadWithTimeout(t *testing.T) {
	_, err := LoadWithTimeout(context.Background(), slowSource{}, config.CorpusConfig{LoadTimeout: 10 * time.Millisecond})
	if !errors.Is(err, apperrors.ErrTimeout) {
		t.Fatalf("LoadWithTimeout = %v, want ErrTimeout", err)
	}
}

func TestOpenDirSource(t *testing.T) {
	dir := writeFiles(t, map[string]string{"a.txt": "alpha"})
	src, closeFn, err := Open(context.Background(), config.CorpusConfig{Source: config.SourceDir, Dir: dir}, config.PostgresConfig{})
	if err != nil {
		t.Fatal(err)
	}
	defer closeFn()
	docs, err := LoadWithTimeout(context.Background(), src, config.CorpusConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if len(docs) != 1 {
		t.Errorf("docs = %+v", docs)
	}
}
