package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

type row struct {
	id      uuid.UUID
	created time.Time
}

func keyOf(r row) Cursor { return Cursor{CreatedAt: r.created, ID: r.id} }

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{
		SortAt:    time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CreatedAt: time.Date(2024, 5, 1, 9, 30, 0, 123, time.UTC),
		ID:        uuid.New(),
	}
	out, err := ParseCursor(EncodeCursor(in))
	if err != nil {
		t.Fatalf("parse cursor: %v", err)
	}
	if !out.SortAt.Equal(in.SortAt) || !out.CreatedAt.Equal(in.CreatedAt) || out.ID != in.ID {
		t.Fatalf("cursor mismatch: %+v vs %+v", out, in)
	}

	if c, err := ParseCursor(""); err != nil || c != nil {
		t.Fatalf("expected empty cursor to be nil, got %v %v", c, err)
	}
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected malformed cursor to fail")
	}
}

func TestPageWalksAllRows(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	var rows []row
	for i := 0; i < 7; i++ {
		rows = append(rows, row{id: uuid.New(), created: base.Add(time.Duration(i) * time.Minute)})
	}
	SortNewestFirst(rows, keyOf)
	if !rows[0].created.Equal(base.Add(6 * time.Minute)) {
		t.Fatalf("expected newest first, got %v", rows[0].created)
	}

	seen := map[uuid.UUID]bool{}
	params := Params{Limit: 3}
	pages := 0
	for {
		page, next, err := Page(rows, params, keyOf)
		if err != nil {
			t.Fatalf("page: %v", err)
		}
		pages++
		for _, r := range page {
			if seen[r.id] {
				t.Fatalf("row %s returned twice", r.id)
			}
			seen[r.id] = true
		}
		if next == "" {
			break
		}
		params.Cursor = next
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages, got %d", pages)
	}
	if len(seen) != len(rows) {
		t.Fatalf("expected %d rows, saw %d", len(rows), len(seen))
	}
}

func TestNormalizeLimit(t *testing.T) {
	if NormalizeLimit(0) != DefaultLimit {
		t.Fatal("expected default limit")
	}
	if NormalizeLimit(1000) != MaxLimit {
		t.Fatal("expected max limit")
	}
	if NormalizeLimit(10) != 10 {
		t.Fatal("expected passthrough limit")
	}
}
