// Package corpus loads the documents an index is built from. A Source
// yields the whole corpus at once; the corpus is fixed for the lifetime of
// the process.
package corpus

import (
	"context"
	"fmt"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// Document is one unit of the corpus. ID is unique within a corpus.
type Document struct {
	ID   string
	Text string
}

// Source loads a complete corpus.
type Source interface {
	Load(ctx context.Context) ([]Document, error)
}

// SortByID orders docs by ascending ID and rejects duplicate IDs.
func SortByID(docs []Document) error {
	sort.Slice(docs, func(i, j int) bool {
		return docs[i].ID < docs[j].ID
	})
	for i := 1; i < len(docs); i++ {
		if docs[i].ID == docs[i-1].ID {
			return fmt.Errorf("document %q: %w", docs[i].ID, apperrors.ErrDuplicateDocument)
		}
	}
	return nil
}
