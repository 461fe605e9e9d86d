package domain

import "testing"

func TestValidIMPACode(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"370803", true},
		{"000000", true},
		{"37080", false},
		{"3708031", false},
		{"37080A", false},
		{"37 803", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidIMPACode(tc.code); got != tc.ok {
			t.Fatalf("ValidIMPACode(%q) = %v, want %v", tc.code, got, tc.ok)
		}
	}
}

func TestValidPortLocode(t *testing.T) {
	cases := []struct {
		code string
		ok   bool
	}{
		{"NLRTM", true},
		{"SGSIN", true},
		{"USLA2", true},
		{"nlrtm", false},
		{"NLRT", false},
		{"NLRTMX", false},
		{"NL RT", false},
		{"", false},
	}
	for _, tc := range cases {
		if got := ValidPortLocode(tc.code); got != tc.ok {
			t.Fatalf("ValidPortLocode(%q) = %v, want %v", tc.code, got, tc.ok)
		}
	}
}
