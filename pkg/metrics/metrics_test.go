package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWithRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)

	m.DocsIndexedTotal.Add(3)
	m.SearchQueriesTotal.WithLabelValues("hit").Inc()
	m.IndexTerms.Set(42)

	if got := testutil.ToFloat64(m.DocsIndexedTotal); got != 3 {
		t.Errorf("docs_indexed_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.SearchQueriesTotal.WithLabelValues("hit")); got != 1 {
		t.Errorf("search_queries_total{hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.IndexTerms); got != 42 {
		t.Errorf("index_terms = %v, want 42", got)
	}

	// A second set on a fresh registry must not panic on duplicate names.
	NewWithRegisterer(prometheus.NewRegistry())
}

func TestServerScrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegisterer(reg)
	m.IndexTerms.Set(7)

	srv, err := StartServer(0, reg)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Shutdown(context.Background())

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), "index_terms 7") {
		t.Errorf("scrape missing index_terms:\n%s", body)
	}
}
