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
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 50, want: MaxLimit},
	}
	for _, tc := range cases {
		if got := NormalizeLimit(tc.in); got != tc.want {
			t.Errorf("NormalizeLimit(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestLimitWithBuffer(t *testing.T) {
	cases := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit + 1},
		{in: 10, want: 11},
		{in: MaxLimit + 50, want: MaxLimit + 1},
	}
	for _, tc := range cases {
		if got := LimitWithBuffer(tc.in); got != tc.want {
			t.Errorf("LimitWithBuffer(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{
		CreatedAt: time.Date(2025, 6, 1, 9, 30, 0, 123456789, time.UTC),
		ID:        uuid.New(),
	}

	encoded := EncodeCursor(cursor)
	decoded, err := ParseCursor(encoded)
	if err != nil {
		t.Fatalf("ParseCursor returned error: %v", err)
	}
	if decoded == nil {
		t.Fatal("ParseCursor returned nil for valid cursor")
	}
	if !decoded.CreatedAt.Equal(cursor.CreatedAt) {
		t.Errorf("timestamp mismatch: got %v want %v", decoded.CreatedAt, cursor.CreatedAt)
	}
	if decoded.ID != cursor.ID {
		t.Errorf("id mismatch: got %s want %s", decoded.ID, cursor.ID)
	}
}

func TestParseCursorEmpty(t *testing.T) {
	cursor, err := ParseCursor("   ")
	if err != nil {
		t.Fatalf("empty cursor should not error: %v", err)
	}
	if cursor != nil {
		t.Fatal("empty cursor should decode to nil")
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	for _, value := range []string{"not-base64!", "bm8tcGlwZQ", "YXxi"} {
		if _, err := ParseCursor(value); err == nil {
			t.Errorf("ParseCursor(%q) should have failed", value)
		}
	}
}
