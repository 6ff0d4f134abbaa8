package probe

import (
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// PhoneResult holds the outcome of a phone number validity check.
type PhoneResult struct {
	// Input is the raw value that was checked.
	Input string

	// E164 is the canonical international form, populated even for
	// invalid numbers when parsing succeeds.
	E164 string

	// Region is the ISO region inferred from the number (e.g. "PK").
	Region string

	// Valid reports whether the number is valid for its region.
	Valid bool
}

// CheckPhone validates and normalizes a phone number. Numbers without a
// country prefix are parsed against the prober's default region.
//
// A returned error means validation could not run at all; an invalid
// number is reported through the Valid field, not an error.
func (p *Prober) CheckPhone(value string) (*PhoneResult, error) {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return nil, ErrEmptyPhone
	}

	num, err := phonenumbers.Parse(raw, p.phoneRegion)
	if err != nil {
		return nil, fmt.Errorf("failed to parse phone number: %w", err)
	}

	return &PhoneResult{
		Input:  raw,
		E164:   phonenumbers.Format(num, phonenumbers.E164),
		Region: phonenumbers.GetRegionCodeForNumber(num),
		Valid:  phonenumbers.IsValidNumber(num),
	}, nil
}
