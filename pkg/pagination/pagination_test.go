package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit + 1, want: MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	original := Cursor{
		CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	parsed, err := ParseCursor(EncodeCursor(original))
	if err != nil {
		t.Fatalf("ParseCursor failed: %v", err)
	}
	if parsed == nil {
		t.Fatal("expected parsed cursor")
	}
	if !parsed.CreatedAt.Equal(original.CreatedAt) || parsed.ID != original.ID {
		t.Fatalf("round trip mismatch: %+v vs %+v", parsed, original)
	}
}

func TestParseCursor_EmptyAndInvalid(t *testing.T) {
	parsed, err := ParseCursor("   ")
	if err != nil || parsed != nil {
		t.Fatalf("expected nil cursor for blank input, got %+v err=%v", parsed, err)
	}

	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
}

func TestNewPage(t *testing.T) {
	type row struct {
		createdAt time.Time
		id        uuid.UUID
	}
	now := time.Now().UTC()
	rows := []row{
		{createdAt: now, id: uuid.New()},
		{createdAt: now.Add(-time.Minute), id: uuid.New()},
		{createdAt: now.Add(-2 * time.Minute), id: uuid.New()},
	}
	cursorOf := func(r row) Cursor { return Cursor{CreatedAt: r.createdAt, ID: r.id} }

	page := NewPage(rows, 2, cursorOf)
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor for over-fetched page")
	}
	parsed, err := ParseCursor(page.NextCursor)
	if err != nil {
		t.Fatalf("cursor did not parse: %v", err)
	}
	if parsed.ID != rows[1].id {
		t.Fatal("next cursor should point at the last retained item")
	}

	page = NewPage(rows[:2], 2, cursorOf)
	if page.NextCursor != "" {
		t.Fatal("expected empty next cursor when page is not full")
	}
}
