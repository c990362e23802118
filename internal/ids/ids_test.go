package ids

import (
	"strings"
	"testing"
	"time"
)

func TestPrefixedCarriesTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	id := Prefixed("ses", at)
	if !strings.HasPrefix(id, "ses_") {
		t.Fatalf("missing prefix: %s", id)
	}
	got, ok := Time(id)
	if !ok || !got.Equal(at) {
		t.Fatalf("Time(%s)=%v,%v want %v", id, got, ok, at)
	}
}

func TestNewIsSortable(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	a := NewAt(at)
	b := NewAt(at.Add(time.Millisecond))
	if a >= b {
		t.Fatalf("ids not ordered: %s >= %s", a, b)
	}
	if _, ok := Time("not-an-id"); ok {
		t.Fatalf("garbage must not parse")
	}
}
