// Package domain holds the treatment value objects.
package domain

import (
	"fmt"
	"strings"

	"dentalcare_backend/platform/apperr"

	"golang.org/x/text/language"
)

// MaxDurationMinutes is one full day.
const MaxDurationMinutes = 24 * 60

// TreatmentDuration is the length of a treatment in whole minutes.
type TreatmentDuration struct {
	minutes int
}

func NewTreatmentDuration(minutes int) (TreatmentDuration, error) {
	if minutes < 0 {
		return TreatmentDuration{}, apperr.InvalidValueObject("duration cannot be negative")
	}
	if minutes > MaxDurationMinutes {
		return TreatmentDuration{}, apperr.InvalidValueObject(fmt.Sprintf("duration cannot exceed %d minutes", MaxDurationMinutes))
	}
	return TreatmentDuration{minutes: minutes}, nil
}

// Minutes returns the total length in minutes.
func (d TreatmentDuration) Minutes() int {
	return d.minutes
}

// Hours returns the whole hours part.
func (d TreatmentDuration) Hours() int {
	return d.minutes / 60
}

// RemainingMinutes returns the minutes part after whole hours.
func (d TreatmentDuration) RemainingMinutes() int {
	return d.minutes % 60
}

// FormattedDuration renders the duration in Indonesian, e.g. "1 jam 30 menit".
func (d TreatmentDuration) FormattedDuration() string {
	return d.format(indonesianUnits)
}

// FormattedDurationFor renders the duration with the unit words of the best
// supported match for tag. Unsupported locales fall back to Indonesian.
func (d TreatmentDuration) FormattedDurationFor(tag language.Tag) string {
	_, idx, _ := unitMatcher.Match(tag)
	return d.format(supportedUnits[idx])
}

func (d TreatmentDuration) format(u units) string {
	hours, minutes := d.Hours(), d.RemainingMinutes()
	if hours == 0 && minutes == 0 {
		return "0 " + u.minutes(0)
	}

	parts := make([]string, 0, 2)
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", hours, u.hours(hours)))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d %s", minutes, u.minutes(minutes)))
	}
	return strings.Join(parts, " ")
}

type units struct {
	hourOne, hourMany     string
	minuteOne, minuteMany string
}

func (u units) hours(n int) string {
	if n == 1 {
		return u.hourOne
	}
	return u.hourMany
}

func (u units) minutes(n int) string {
	if n == 1 {
		return u.minuteOne
	}
	return u.minuteMany
}

var (
	indonesianUnits = units{hourOne: "jam", hourMany: "jam", minuteOne: "menit", minuteMany: "menit"}
	englishUnits    = units{hourOne: "hour", hourMany: "hours", minuteOne: "minute", minuteMany: "minutes"}

	// Index order must match supportedUnits; the first entry is the fallback.
	unitMatcher    = language.NewMatcher([]language.Tag{language.Indonesian, language.English})
	supportedUnits = []units{indonesianUnits, englishUnits}
)
