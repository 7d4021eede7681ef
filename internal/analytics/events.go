// Package analytics publishes search events to Kafka for offline analysis.
package analytics

import "time"

type EventType string

const (
	EventSearch     EventType = "search"
	EventCacheHit   EventType = "cache_hit"
	EventCacheMiss  EventType = "cache_miss"
	EventZeroResult EventType = "zero_result"
)

// SearchEvent describes one executed query.
type SearchEvent struct {
	Type        EventType `json:"type"`
	Query       string    `json:"query"`
	Terms       []string  `json:"terms"`
	TotalHits   int       `json:"total_hits"`
	Returned    int       `json:"returned"`
	TopDocID    string    `json:"top_doc_id,omitempty"`
	LatencyMs   int64     `json:"latency_ms"`
	CacheHit    bool      `json:"cache_hit"`
	Fingerprint string    `json:"fingerprint"`
	Timestamp   time.Time `json:"timestamp"`
	RequestID   string    `json:"request_id,omitempty"`
}

// Classify picks the event type from the query outcome. Zero results take
// precedence over the cache status.
func Classify(totalHits int, cacheHit, cacheEnabled bool) EventType {
	switch {
	case totalHits == 0:
		return EventZeroResult
	case !cacheEnabled:
		return EventSearch
	case cacheHit:
		return EventCacheHit
	default:
		return EventCacheMiss
	}
}
