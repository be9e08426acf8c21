package domain

import (
	"strings"
	"time"

	"dentalcare_backend/platform/apperr"
)

const dateOnlyLayout = "2006-01-02"

// PaymentDate is the moment a payment was received. It is never after the
// moment it was constructed.
type PaymentDate struct {
	value time.Time
}

// NewPaymentDate validates t against the current time.
func NewPaymentDate(t time.Time) (PaymentDate, error) {
	return NewPaymentDateAt(t, time.Now())
}

// NewPaymentDateAt validates t against the given reference time.
func NewPaymentDateAt(t, now time.Time) (PaymentDate, error) {
	if t.IsZero() {
		return PaymentDate{}, apperr.InvalidValueObject("payment date is required")
	}
	if t.After(now) {
		return PaymentDate{}, apperr.InvalidValueObject("payment date cannot be in the future")
	}
	return PaymentDate{value: t}, nil
}

// ParsePaymentDate accepts RFC 3339 timestamps and YYYY-MM-DD dates (UTC midnight).
func ParsePaymentDate(s string) (PaymentDate, error) {
	t, err := ParseDate(s)
	if err != nil {
		return PaymentDate{}, apperr.Wrap(apperr.KindInvalidValueObject, "invalid payment date", err)
	}
	return NewPaymentDate(t)
}

// ParseDate parses the date formats accepted by the clinic API.
func ParseDate(s string) (time.Time, error) {
	trimmed := strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, trimmed); err == nil {
		return t, nil
	}
	return time.Parse(dateOnlyLayout, trimmed)
}

// Time returns the underlying instant.
func (d PaymentDate) Time() time.Time {
	return d.value
}

// IsSameDay compares calendar days in the receiver's location.
func (d PaymentDate) IsSameDay(other PaymentDate) bool {
	loc := d.value.Location()
	y1, m1, d1 := d.value.Date()
	y2, m2, d2 := other.value.In(loc).Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// String returns the ISO-8601 representation in UTC.
func (d PaymentDate) String() string {
	return d.value.UTC().Format(time.RFC3339Nano)
}
