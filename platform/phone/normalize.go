// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"strings"

	"dentalcare_backend/platform/apperr"

	"github.com/nyaruka/phonenumbers"
)

// DefaultRegion is used when no region is configured.
const DefaultRegion = "ID"

// Normalizer formats local and international numbers to E.164.
type Normalizer struct {
	region string
}

// NewNormalizer creates a Normalizer that resolves national numbers in region.
func NewNormalizer(region string) *Normalizer {
	region = strings.ToUpper(strings.TrimSpace(region))
	if region == "" {
		region = DefaultRegion
	}
	return &Normalizer{region: region}
}

// Region returns the region used for national numbers.
func (n *Normalizer) Region() string { return n.region }

// Normalize returns input in E.164 form. Empty input is returned as is;
// anything that is not a valid number fails with KindInvalidInput.
func (n *Normalizer) Normalize(input string) (string, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return "", nil
	}

	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return "", apperr.InvalidInput("phone number is not valid").WithField("phone")
	}
	return phonenumbers.Format(number, phonenumbers.E164), nil
}

// NormalizeE164 formats a phone number to E.164. If parsing fails, it returns the trimmed input.
func NormalizeE164(input, region string) string {
	normalized, err := NewNormalizer(region).Normalize(input)
	if err != nil {
		return strings.TrimSpace(input)
	}
	return normalized
}
