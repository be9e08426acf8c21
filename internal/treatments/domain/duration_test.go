package domain

import (
	"testing"

	"dentalcare_backend/platform/apperr"

	"golang.org/x/text/language"
)

func TestNewTreatmentDurationBounds(t *testing.T) {
	for _, minutes := range []int{-1, 1441, 5000} {
		if _, err := NewTreatmentDuration(minutes); !apperr.Is(err, apperr.KindInvalidValueObject) {
			t.Fatalf("minutes %d: expected InvalidValueObject, got %v", minutes, err)
		}
	}
	for _, minutes := range []int{0, 1, 1440} {
		if _, err := NewTreatmentDuration(minutes); err != nil {
			t.Fatalf("minutes %d: unexpected error %v", minutes, err)
		}
	}
}

func TestFormattedDuration(t *testing.T) {
	cases := []struct {
		minutes int
		want    string
	}{
		{0, "0 menit"},
		{45, "45 menit"},
		{60, "1 jam"},
		{90, "1 jam 30 menit"},
		{125, "2 jam 5 menit"},
		{1440, "24 jam"},
	}

	for _, tc := range cases {
		d, _ := NewTreatmentDuration(tc.minutes)
		if got := d.FormattedDuration(); got != tc.want {
			t.Fatalf("minutes %d: expected %q, got %q", tc.minutes, tc.want, got)
		}
	}
}

func TestFormattedDurationForLocale(t *testing.T) {
	d, _ := NewTreatmentDuration(90)
	if got := d.FormattedDurationFor(language.English); got != "1 hour 30 minutes" {
		t.Fatalf("unexpected english rendering %q", got)
	}
	if got := d.FormattedDurationFor(language.MustParse("en-GB")); got != "1 hour 30 minutes" {
		t.Fatalf("unexpected en-GB rendering %q", got)
	}
	if got := d.FormattedDurationFor(language.Japanese); got != "1 jam 30 menit" {
		t.Fatalf("expected indonesian fallback, got %q", got)
	}

	zero, _ := NewTreatmentDuration(0)
	if got := zero.FormattedDurationFor(language.English); got != "0 minutes" {
		t.Fatalf("unexpected zero rendering %q", got)
	}
	one, _ := NewTreatmentDuration(61)
	if got := one.FormattedDurationFor(language.English); got != "1 hour 1 minute" {
		t.Fatalf("unexpected singular rendering %q", got)
	}
}

func TestDurationParts(t *testing.T) {
	d, _ := NewTreatmentDuration(135)
	if d.Hours() != 2 || d.RemainingMinutes() != 15 || d.Minutes() != 135 {
		t.Fatalf("unexpected parts %d/%d/%d", d.Hours(), d.RemainingMinutes(), d.Minutes())
	}
}
