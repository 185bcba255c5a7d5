package freshness

import (
	"testing"
	"time"

	"NewsAnalyzer/internal/domain"
)

func fixedEvaluator(ref time.Time) *Evaluator {
	e := NewEvaluator(time.UTC, 7)
	e.clock = func() time.Time { return ref }
	return e
}

func strPtr(s string) *string { return &s }

func TestAssessBuckets(t *testing.T) {
	t.Parallel()

	e := fixedEvaluator(time.Date(2025, 11, 10, 9, 30, 0, 0, time.UTC))
	cases := []struct {
		in      string
		status  domain.FreshnessStatus
		ageDays int
	}{
		{in: "2025-11-10T01:00:00Z", status: domain.FreshnessToday, ageDays: 0},
		{in: "2025-11-09 23:59:00", status: domain.FreshnessYesterday, ageDays: 1},
		{in: "2025-11-03", status: domain.FreshnessRecent, ageDays: 7},
		{in: "02.11.2025", status: domain.FreshnessStale, ageDays: 8},
	}
	for _, tc := range cases {
		got := e.Assess(strPtr(tc.in))
		if got.Status != tc.status {
			t.Fatalf("%s: status %s, want %s (%s)", tc.in, got.Status, tc.status, got.Message)
		}
		if got.AgeDays == nil || *got.AgeDays != tc.ageDays {
			t.Fatalf("%s: unexpected age %v", tc.in, got.AgeDays)
		}
		if got.SourceDate == nil || got.Message == "" {
			t.Fatalf("%s: source date and message expected: %+v", tc.in, got)
		}
		if got.ReferenceDate != "2025-11-10T09:30:00Z" {
			t.Fatalf("unexpected reference date: %s", got.ReferenceDate)
		}
	}
}

func TestAssessUnknown(t *testing.T) {
	t.Parallel()

	e := fixedEvaluator(time.Date(2025, 11, 10, 12, 0, 0, 0, time.UTC))
	for _, in := range []*string{nil, strPtr(""), strPtr("когда-то давно"), strPtr("2026-01-01")} {
		got := e.Assess(in)
		if got.Status != domain.FreshnessUnknown {
			t.Fatalf("%v: expected unknown, got %s", in, got.Status)
		}
		if got.AgeDays != nil {
			t.Fatalf("%v: age must be empty for unknown", in)
		}
		if got.Message == "" {
			t.Fatalf("%v: unknown must carry a message", in)
		}
	}
}
