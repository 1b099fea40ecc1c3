package service

import (
	"strings"
	"testing"
)

func TestGenerateAccessCodeShape(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := GenerateAccessCode()
		if len(code) != accessCodeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), accessCodeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(accessCodeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		// Generated codes are already canonical.
		if NormalizeAccessCode(code) != code {
			t.Fatalf("generated code %q is not normalized", code)
		}
		seen[code] = true
	}
	if len(seen) < 2 {
		t.Fatal("generator returned the same code 100 times")
	}
}

func TestNormalizeAccessCode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"ABCD2345", "ABCD2345"},
		{"abcd2345", "ABCD2345"},
		{" abCD2345 ", "ABCD2345"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeAccessCode(tc.in); got != tc.want {
			t.Errorf("NormalizeAccessCode(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
