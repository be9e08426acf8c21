package phone

import (
	"testing"

	"dentalcare_backend/platform/apperr"
)

func TestNormalizeIndonesianNumbers(t *testing.T) {
	n := NewNormalizer("id")
	if n.Region() != "ID" {
		t.Fatalf("expected uppercased region, got %s", n.Region())
	}

	cases := map[string]string{
		"0812-3456-7890":    "+6281234567890",
		"+62 812 3456 7890": "+6281234567890",
		"  ":                "",
	}
	for input, want := range cases {
		got, err := n.Normalize(input)
		if err != nil {
			t.Fatalf("%q: unexpected error %v", input, err)
		}
		if got != want {
			t.Fatalf("%q: expected %q, got %q", input, want, got)
		}
	}
}

func TestNormalizeRejectsInvalid(t *testing.T) {
	n := NewNormalizer("")
	if _, err := n.Normalize("12"); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Fatalf("expected InvalidInput, got %v", err)
	}
}

func TestNormalizeE164FallsBackToInput(t *testing.T) {
	if got := NormalizeE164(" not a number ", "ID"); got != "not a number" {
		t.Fatalf("expected trimmed input, got %q", got)
	}
	if got := NormalizeE164("020 123 4567", "NL"); got != "+31201234567" {
		t.Fatalf("expected Dutch number, got %q", got)
	}
}
