package utils

import "testing"

func TestAtoiDefault(t *testing.T) {
	for _, tc := range []struct {
		in       string
		def, out int
	}{
		{"", 15, 15},
		{"30", 15, 30},
		{"-2", 15, -2},
		{"007", 15, 7},
		{"1e3", 15, 15},
		{" 30", 15, 15},
		{"99999999999999999999", 15, 15},
	} {
		if got := AtoiDefault(tc.in, tc.def); got != tc.out {
			t.Fatalf("AtoiDefault(%q, %d) = %d, want %d", tc.in, tc.def, got, tc.out)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(0, 1, 60); got != 1 {
		t.Fatalf("Clamp low = %d", got)
	}
	if got := Clamp(90, 1, 60); got != 60 {
		t.Fatalf("Clamp high = %d", got)
	}
	if got := Clamp(15, 1, 60); got != 15 {
		t.Fatalf("Clamp mid = %d", got)
	}
}

func TestParseID(t *testing.T) {
	cases := []struct {
		s    string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{" 7 ", 7, true},
		{"0", 0, false},
		{"-3", 0, false},
		{"abc", 0, false},
		{"", 0, false},
		{"9223372036854775808", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseID(tc.s)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ParseID(%q) = %d,%v; want %d,%v", tc.s, got, ok, tc.want, tc.ok)
		}
	}
}
