// Package handler serves the search API over HTTP.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/internal/searcher/executor"
	apperrors "github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/metrics"
)

// EventTracker receives one event per executed search.
type EventTracker interface {
	Track(event analytics.SearchEvent)
}

// Options carries the optional collaborators. Nil fields disable the
// corresponding feature.
type Options struct {
	Cache        *cache.QueryCache
	Tracker      EventTracker
	Metrics      *metrics.Metrics
	DefaultLimit int
	MaxResults   int
}

type Handler struct {
	executor     *executor.Executor
	cache        *cache.QueryCache
	tracker      EventTracker
	metrics      *metrics.Metrics
	defaultLimit int
	maxResults   int
	logger       *slog.Logger
}

func New(exec *executor.Executor, opts Options) *Handler {
	return &Handler{
		executor:     exec,
		cache:        opts.Cache,
		tracker:      opts.Tracker,
		metrics:      opts.Metrics,
		defaultLimit: opts.DefaultLimit,
		maxResults:   opts.MaxResults,
		logger:       slog.Default().With("component", "search-handler"),
	}
}

// Register mounts the API routes on mux.
//
//	GET  /api/v1/search?q=&limit=
//	GET  /api/v1/index/stats
//	GET  /api/v1/index/terms/{term}
//	GET  /api/v1/index/docs
//	GET  /api/v1/index/docs/{id}
//	GET  /api/v1/index/snapshot
//	GET  /api/v1/cache/stats
//	POST /api/v1/cache/invalidate
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/index/terms/{term}", h.Term)
	mux.HandleFunc("GET /api/v1/index/docs", h.Docs)
	mux.HandleFunc("GET /api/v1/index/docs/{id}", h.Doc)
	mux.HandleFunc("GET /api/v1/index/snapshot", h.Snapshot)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, apperrors.New(apperrors.ErrInvalidInput, http.StatusBadRequest, "query parameter 'q' is required"))
		return
	}
	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	plan := h.executor.Parse(query)
	var result *executor.SearchResult
	cacheHit := false
	if h.cache != nil && !plan.Empty() {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, plan, limit, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, plan, limit)
		})
	} else {
		result, err = h.executor.Execute(ctx, plan, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		h.writeError(w, fmt.Errorf("executing search: %w", err))
		return
	}

	elapsed := time.Since(start)
	if h.metrics != nil {
		h.metrics.SearchLatency.WithLabelValues(cacheStatus(h.cache != nil, cacheHit)).Observe(elapsed.Seconds())
	}
	log.Info("search completed",
		"query", query,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache_hit", cacheHit,
		"latency_ms", elapsed.Milliseconds(),
	)
	if h.tracker != nil {
		event := analytics.SearchEvent{
			Type:        analytics.Classify(result.TotalHits, cacheHit, h.cache != nil),
			Query:       query,
			Terms:       plan.Terms,
			TotalHits:   result.TotalHits,
			Returned:    len(result.Results),
			LatencyMs:   elapsed.Milliseconds(),
			CacheHit:    cacheHit,
			Fingerprint: h.executor.Engine().Fingerprint(),
			RequestID:   logger.RequestID(ctx),
		}
		if len(result.Results) > 0 {
			event.TopDocID = result.Results[0].DocID
		}
		h.tracker.Track(event)
	}
	h.writeJSON(w, http.StatusOK, result)
}

// parseLimit applies the default when raw is empty and caps the result at
// maxResults when that is positive.
func (h *Handler) parseLimit(raw string) (int, error) {
	limit := h.defaultLimit
	if raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return 0, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "limit must be a positive integer, got %q", raw)
		}
		limit = parsed
	}
	if h.maxResults > 0 && (limit <= 0 || limit > h.maxResults) {
		limit = h.maxResults
	}
	return limit, nil
}

func cacheStatus(enabled, hit bool) string {
	switch {
	case !enabled:
		return "disabled"
	case hit:
		return "hit"
	default:
		return "miss"
	}
}

// IndexStats reports corpus size, vocabulary size and the fingerprint.
func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.executor.Engine().Stats())
}

type termResponse struct {
	Term     string        `json:"term"`
	DocFreq  int           `json:"doc_freq"`
	IDF      float64       `json:"idf"`
	Postings []postingJSON `json:"postings"`
}

type postingJSON struct {
	DocID     string `json:"doc_id"`
	Frequency int    `json:"frequency"`
}

// Term normalises the path value and returns that term's postings.
func (h *Handler) Term(w http.ResponseWriter, r *http.Request) {
	raw := r.PathValue("term")
	entry, ok := h.executor.Engine().Lookup(raw)
	if !ok {
		h.writeError(w, apperrors.Newf(apperrors.ErrTermNotFound, http.StatusNotFound, "%q is not indexed", raw))
		return
	}
	resp := termResponse{
		Term:     entry.Term,
		DocFreq:  len(entry.Postings),
		IDF:      entry.IDF,
		Postings: make([]postingJSON, 0, len(entry.Postings)),
	}
	for _, p := range entry.Postings {
		resp.Postings = append(resp.Postings, postingJSON{DocID: p.DocID, Frequency: p.Frequency})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// Docs lists every indexed document with its kept-term count, ordered by ID.
func (h *Handler) Docs(w http.ResponseWriter, r *http.Request) {
	docs := h.executor.Engine().Index().Docs()
	h.writeJSON(w, http.StatusOK, map[string]any{"total": len(docs), "docs": docs})
}

func (h *Handler) Doc(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, ok := h.executor.Engine().Document(id)
	if !ok {
		h.writeError(w, apperrors.Newf(apperrors.ErrDocumentNotFound, http.StatusNotFound, "%q is not indexed", id))
		return
	}
	h.writeJSON(w, http.StatusOK, doc)
}

// Snapshot dumps every term with its IDF and postings, ordered by term.
func (h *Handler) Snapshot(w http.ResponseWriter, r *http.Request) {
	entries := h.executor.Engine().Index().Snapshot()
	h.writeJSON(w, http.StatusOK, map[string]any{"terms": len(entries), "entries": entries})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	stats := h.cache.Stats()
	total := stats.Hits + stats.Misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(stats.Hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":          stats.Hits,
		"misses":        stats.Misses,
		"total":         total,
		"hit_rate":      fmt.Sprintf("%.1f%%", hitRate),
		"breaker_state": stats.BreakerState,
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrBackendUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	deleted, err := h.cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, apperrors.New(apperrors.ErrBackendUnavailable, http.StatusServiceUnavailable, "cache invalidation failed"))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		message = "internal error"
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
