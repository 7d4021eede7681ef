package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
)

// DefaultQuery selects the corpus when none is configured. It must return
// two text columns: the document ID and its body.
const DefaultQuery = "SELECT id, body FROM documents ORDER BY id"

// PostgresSource loads the corpus from a SQL query run inside a read-only
// snapshot.
type PostgresSource struct {
	client *postgres.Client
	query  string
	logger *slog.Logger
}

func NewPostgresSource(client *postgres.Client, query string) *PostgresSource {
	if query == "" {
		query = DefaultQuery
	}
	return &PostgresSource{
		client: client,
		query:  query,
		logger: slog.Default().With("component", "corpus-postgres"),
	}
}

func (s *PostgresSource) Load(ctx context.Context) ([]Document, error) {
	var docs []Document
	err := s.client.Snapshot(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, s.query)
		if err != nil {
			return fmt.Errorf("querying corpus: %w", err)
		}
		defer rows.Close()
		docs, err = scanDocuments(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	if err := SortByID(docs); err != nil {
		return nil, err
	}
	s.logger.Info("corpus loaded", "documents", len(docs))
	return docs, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanDocuments(rows rowScanner) ([]Document, error) {
	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		var body sql.NullString
		if err := rows.Scan(&doc.ID, &body); err != nil {
			return nil, fmt.Errorf("scanning document row: %w", err)
		}
		doc.Text = body.String
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating document rows: %w", err)
	}
	return docs, nil
}
