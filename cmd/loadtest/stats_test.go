package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestPercentile(t *testing.T) {
	sorted := make([]time.Duration, 100)
	for i := range sorted {
		sorted[i] = time.Duration(i+1) * time.Millisecond
	}
	tests := []struct {
		p    float64
		want time.Duration
	}{
		{0, time.Millisecond},
		{50, 50 * time.Millisecond},
		{99, 99 * time.Millisecond},
		{100, 100 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %s, want %s", tt.p, got, tt.want)
		}
	}
	if percentile(nil, 50) != 0 {
		t.Error("percentile of empty slice should be 0")
	}
}

func TestStatsReport(t *testing.T) {
	s := NewStats()
	s.Record(10*time.Millisecond, 200, 3, nil)
	s.Record(20*time.Millisecond, 200, 0, nil)
	s.Record(5*time.Millisecond, 400, 0, nil)
	s.Record(time.Millisecond, 0, 0, errors.New("refused"))

	var buf bytes.Buffer
	s.Report(&buf, time.Second)
	out := buf.String()
	for _, want := range []string{
		"Total Requests:  4",
		"Successful:      2",
		"Errors:          2",
		"Zero Results:    1",
		"Min:    5ms",
		"Max:    20ms",
		"  200: 2",
		"  400: 1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}
