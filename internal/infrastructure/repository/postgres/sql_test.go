package postgres

import (
	"database/sql"
	"fmt"
	"testing"
	"time"
)

func TestIsNotFound(t *testing.T) {
	if !isNotFound(sql.ErrNoRows) {
		t.Fatalf("expected sql.ErrNoRows to be not found")
	}
	if !isNotFound(fmt.Errorf("get game: %w", sql.ErrNoRows)) {
		t.Fatalf("expected wrapped sql.ErrNoRows to be not found")
	}
	if isNotFound(fakeErr("pq: relation games does not exist")) {
		t.Fatalf("expected unrelated error to be found")
	}
}

func TestNullStringRoundTrip(t *testing.T) {
	if got := nullStringPtr(sql.NullString{}); got != nil {
		t.Fatalf("expected nil for NULL, got %q", *got)
	}
	winner := "Chiefs"
	got := nullStringPtr(stringPtrToNull(&winner))
	if got == nil || *got != "Chiefs" {
		t.Fatalf("unexpected winner round trip: %v", got)
	}
	if nullIfEmpty("").Valid {
		t.Fatalf("expected empty string to be NULL")
	}
}

func TestUTCNow(t *testing.T) {
	loc := time.FixedZone("league", -4*3600)
	in := time.Date(2025, time.September, 7, 13, 0, 0, 0, loc)
	if got := utcNow(in); got.Location() != time.UTC || !got.Equal(in) {
		t.Fatalf("expected same instant in UTC, got %s", got)
	}
	if utcNow(time.Time{}).IsZero() {
		t.Fatalf("expected zero time to be replaced")
	}
}

type fakeErr string

func (e fakeErr) Error() string { return string(e) }
