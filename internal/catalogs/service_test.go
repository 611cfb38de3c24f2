package catalogs

import "testing"

func TestSlugBase(t *testing.T) {
	cases := []struct {
		email string
		want  string
	}{
		{"ana@example.com", "ana"},
		{"Ana.Lopez@example.com", "ana-lopez"},
		{"mr_underscore+tag@example.com", "mr-underscore-tag"},
		{"---@example.com", "catalog"},
		{"noatsign", "noatsign"},
		{"UPPER123@x.io", "upper123"},
	}

	for _, tc := range cases {
		if got := slugBase(tc.email); got != tc.want {
			t.Errorf("slugBase(%q) = %q, want %q", tc.email, got, tc.want)
		}
	}
}
