// Command loadtest drives concurrent queries against a running searcher
// and reports throughput and latency percentiles.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"
)

var defaultQueries = []string{
	"machine learning",
	"deep learning",
	"inverted index",
	"term frequency",
	"document ranking",
	"search engine",
	"information retrieval",
	"query processing",
	"stop words",
	"the of and",
}

type Config struct {
	BaseURL     string
	Concurrency int
	Duration    time.Duration
	Limit       int
	Queries     []string
}

func main() {
	var cfg Config
	var queriesFile string
	pflag.StringVar(&cfg.BaseURL, "url", "http://localhost:8080", "base URL of the search service")
	pflag.IntVarP(&cfg.Concurrency, "concurrency", "c", 10, "number of concurrent workers")
	pflag.DurationVarP(&cfg.Duration, "duration", "d", 30*time.Second, "test duration")
	pflag.IntVar(&cfg.Limit, "limit", 10, "limit parameter sent with each query")
	pflag.StringVar(&queriesFile, "queries", "", "file with one query per line (built-in set when empty)")
	pflag.Parse()

	cfg.Queries = defaultQueries
	if queriesFile != "" {
		queries, err := readQueries(queriesFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		cfg.Queries = queries
	}

	fmt.Println("=== Corpus Search Load Test ===")
	fmt.Printf("Target:      %s\n", cfg.BaseURL)
	fmt.Printf("Concurrency: %d\n", cfg.Concurrency)
	fmt.Printf("Duration:    %s\n", cfg.Duration)
	fmt.Printf("Queries:     %d unique\n", len(cfg.Queries))
	fmt.Println()

	stats := run(cfg)
	stats.Report(os.Stdout, cfg.Duration)
	if stats.total.Load() == 0 {
		fmt.Println()
		fmt.Println("WARNING: No requests completed. Is the service running?")
		os.Exit(1)
	}
}

func readQueries(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queries file: %w", err)
	}
	defer f.Close()
	var queries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if q := strings.TrimSpace(scanner.Text()); q != "" {
			queries = append(queries, q)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading queries file: %w", err)
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("queries file %s is empty", path)
	}
	return queries, nil
}

func run(cfg Config) *Stats {
	stats := NewStats()
	client := &http.Client{
		Timeout: 10 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        cfg.Concurrency * 2,
			MaxIdleConnsPerHost: cfg.Concurrency * 2,
			IdleConnTimeout:     90 * time.Second,
		},
	}
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Duration)
	defer cancel()

	var g errgroup.Group
	for w := 0; w < cfg.Concurrency; w++ {
		g.Go(func() error {
			for i := w; ctx.Err() == nil; i++ {
				query := cfg.Queries[i%len(cfg.Queries)]
				searchURL := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", cfg.BaseURL, url.QueryEscape(query), cfg.Limit)
				start := time.Now()
				status, hits, err := search(ctx, client, searchURL)
				if ctx.Err() != nil {
					return nil
				}
				stats.Record(time.Since(start), status, hits, err)
			}
			return nil
		})
	}
	g.Wait()
	return stats
}

func search(ctx context.Context, client *http.Client, searchURL string) (int, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return 0, 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, 0, err
	}
	defer resp.Body.Close()
	var body struct {
		TotalHits int `json:"total_hits"`
	}
	if resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return resp.StatusCode, 0, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, body.TotalHits, nil
}
