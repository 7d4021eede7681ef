package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/corpus-search/pkg/logger"
)

func TestSpanTree(t *testing.T) {
	ctx, root := StartSpan(context.Background(), "index.build")
	if len(root.TraceID) != 32 {
		t.Fatalf("TraceID = %q, want 32 hex chars", root.TraceID)
	}
	_, child := StartChildSpan(ctx, "index.idf")
	child.SetAttr("terms", 3)
	child.End()
	root.End()

	if child.TraceID != root.TraceID {
		t.Errorf("child trace %q != root trace %q", child.TraceID, root.TraceID)
	}
	if len(root.children) != 1 || root.children[0] != child {
		t.Fatalf("root children = %v", root.children)
	}
	if root.Duration() < child.Duration() {
		t.Errorf("root %v shorter than child %v", root.Duration(), child.Duration())
	}

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	root.Log(l)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d log lines, want 2:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[0], "span=index.build") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "span=index.idf") || !strings.Contains(lines[1], "parent=index.build") || !strings.Contains(lines[1], "terms=3") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestTraceIDFromRequest(t *testing.T) {
	ctx := logger.WithRequestID(context.Background(), "abc123")
	_, span := StartSpan(ctx, "search")
	if span.TraceID != "abc123" {
		t.Errorf("TraceID = %q, want request ID", span.TraceID)
	}
}

func TestStartChildSpanWithoutParent(t *testing.T) {
	ctx, span := StartChildSpan(context.Background(), "orphan")
	if span.TraceID == "" {
		t.Error("orphan span should get a trace ID")
	}
	if FromContext(ctx) != span {
		t.Error("span not stored in context")
	}
}
