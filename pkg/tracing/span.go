// Package tracing records in-process span trees and writes them to the log
// at debug level once the root span finishes.
package tracing

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sync"
	"time"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
)

type spanKey struct{}

type Span struct {
	Name    string
	TraceID string

	start    time.Time
	duration time.Duration

	mu       sync.Mutex
	attrs    []slog.Attr
	children []*Span
}

// StartSpan opens a root span. The trace ID is the request ID carried by
// ctx when there is one, otherwise a random ID.
func StartSpan(ctx context.Context, name string) (context.Context, *Span) {
	traceID := logger.RequestID(ctx)
	if traceID == "" {
		traceID = NewTraceID()
	}
	s := &Span{Name: name, TraceID: traceID, start: time.Now()}
	return context.WithValue(ctx, spanKey{}, s), s
}

// StartChildSpan opens a span under the one in ctx, or a root span when ctx
// carries none.
func StartChildSpan(ctx context.Context, name string) (context.Context, *Span) {
	parent := FromContext(ctx)
	if parent == nil {
		return StartSpan(ctx, name)
	}
	s := &Span{Name: name, TraceID: parent.TraceID, start: time.Now()}
	parent.mu.Lock()
	parent.children = append(parent.children, s)
	parent.mu.Unlock()
	return context.WithValue(ctx, spanKey{}, s), s
}

func FromContext(ctx context.Context) *Span {
	s, _ := ctx.Value(spanKey{}).(*Span)
	return s
}

func (s *Span) End() {
	s.mu.Lock()
	s.duration = time.Since(s.start)
	s.mu.Unlock()
}

// Duration is zero until End is called.
func (s *Span) Duration() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.duration
}

// SetAttr attaches a value that is logged with the span, in call order.
func (s *Span) SetAttr(key string, value any) {
	s.mu.Lock()
	s.attrs = append(s.attrs, slog.Any(key, value))
	s.mu.Unlock()
}

// Log writes one debug record per span, parents first.
func (s *Span) Log(l *slog.Logger) {
	s.log(l, "")
}

func (s *Span) log(l *slog.Logger, parent string) {
	s.mu.Lock()
	attrs := []slog.Attr{
		slog.String("trace_id", s.TraceID),
		slog.String("span", s.Name),
		slog.Float64("duration_ms", float64(s.duration.Microseconds())/1000),
	}
	if parent != "" {
		attrs = append(attrs, slog.String("parent", parent))
	}
	attrs = append(attrs, s.attrs...)
	children := s.children
	s.mu.Unlock()

	l.LogAttrs(context.Background(), slog.LevelDebug, "span", attrs...)
	for _, c := range children {
		c.log(l, s.Name)
	}
}

// NewTraceID returns 16 random bytes, hex-encoded.
func NewTraceID() string {
	var b [16]byte
	rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
