package corpus

import (
	"context"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/postgres"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/resilience"
)

// Open returns the Source selected by cfg.Source and a function that
// releases its resources. Postgres connections are retried with backoff.
func Open(ctx context.Context, cfg config.CorpusConfig, pg config.PostgresConfig) (Source, func() error, error) {
	switch cfg.Source {
	case config.SourceDir, "":
		return NewDirSource(cfg.Dir, cfg.Extension, cfg.Concurrency), func() error { return nil }, nil
	case config.SourcePostgres:
		client, err := resilience.Retry(ctx, "postgres-connect", resilience.RetryConfig{
			MaxAttempts: pg.ConnectAttempts,
		}, func(ctx context.Context) (*postgres.Client, error) {
			return postgres.New(ctx, pg)
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to corpus database: %w", err)
		}
		return NewPostgresSource(client, cfg.Query), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown corpus source %q", cfg.Source)
	}
}

// LoadWithTimeout loads src, failing with ErrTimeout when it takes longer
// than timeout. A non-positive timeout disables the limit.
func LoadWithTimeout(ctx context.Context, src Source, cfg config.CorpusConfig) ([]Document, error) {
	return resilience.WithTimeout(ctx, cfg.LoadTimeout, "corpus-load", src.Load)
}
