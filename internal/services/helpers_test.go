package services

import (
	"testing"
	"time"
)

func testTime(t *testing.T) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, "2025-03-10T12:00:00Z")
	if err != nil {
		t.Fatalf("parsing fixture time: %v", err)
	}
	return ts
}

func mustParseTime(t *testing.T, value string) time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		t.Fatalf("parsing time %q: %v", value, err)
	}
	return ts
}

func strPtr(s string) *string { return &s }

func int64Ptr(n int64) *int64 { return &n }
