package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
)

// DirSource reads every regular file with the given extension from a
// directory, one document per file. The document ID is the file name.
type DirSource struct {
	Dir         string
	Extension   string
	Concurrency int
	logger      *slog.Logger
}

// NewDirSource returns a DirSource. An empty extension defaults to ".txt"
// and a non-positive concurrency to 8 concurrent reads.
func NewDirSource(dir, ext string, concurrency int) *DirSource {
	if ext == "" {
		ext = ".txt"
	}
	if concurrency <= 0 {
		concurrency = 8
	}
	return &DirSource{
		Dir:         dir,
		Extension:   ext,
		Concurrency: concurrency,
		logger:      slog.Default().With("component", "corpus-dir"),
	}
}

// List returns the matching file names in ascending order.
func (s *DirSource) List() ([]string, error) {
	info, err := os.Stat(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apperrors.Newf(apperrors.ErrCorpusNotFound, http.StatusNotFound, "data directory not found: %s", s.Dir)
		}
		return nil, fmt.Errorf("stat data directory: %w", err)
	}
	if !info.IsDir() {
		return nil, apperrors.Newf(apperrors.ErrCorpusNotFound, http.StatusNotFound, "not a directory: %s", s.Dir)
	}
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("reading data directory: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if strings.HasSuffix(entry.Name(), s.Extension) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Load reads all matching files concurrently. Files that are not valid
// UTF-8 fail the load with ErrInvalidInput.
func (s *DirSource) Load(ctx context.Context) ([]Document, error) {
	names, err := s.List()
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.Concurrency)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(filepath.Join(s.Dir, name))
			if err != nil {
				return fmt.Errorf("reading %s: %w", name, err)
			}
			if !utf8.Valid(data) {
				return apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "file %s is not valid utf-8", name)
			}
			docs[i] = Document{ID: name, Text: string(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		s.logger.Warn("no documents found", "dir", s.Dir, "extension", s.Extension)
	}
	s.logger.Info("corpus loaded", "dir", s.Dir, "documents", len(docs))
	return docs, nil
}
