package model

import (
	"encoding/json"
	"fmt"
)

// Status represents the risk severity of a signal or of the overall
// assessment. It always expresses severity (High = bad), never confidence.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons, but serialize to the human-readable form
// because signals are stored as JSON and rendered in reports verbatim.
type Status int

const (
	// StatusUnknown indicates that the check could not determine anything.
	// Probes degrade to this status on any failure; it contributes no
	// risk points.
	StatusUnknown Status = iota

	// StatusLow indicates a reassuring observation (valid format, clean
	// public footprint, long-lived domain).
	StatusLow

	// StatusMedium indicates a warning-level observation that raises risk
	// without being conclusive.
	StatusMedium

	// StatusHigh indicates a strong risk observation (scam keywords in
	// public results, approved community reports, advance-payment request).
	StatusHigh
)

// String returns the human-readable representation of the status.
// These exact strings appear in stored signals and reports.
func (s Status) String() string {
	switch s {
	case StatusLow:
		return "Low"
	case StatusMedium:
		return "Medium"
	case StatusHigh:
		return "High"
	default:
		return "Unknown"
	}
}

// RiskPoints returns the risk-point contribution for a signal carrying
// this status. The weights are a fixed policy table; High and Medium are
// the only statuses that accumulate risk.
func (s Status) RiskPoints() int {
	switch s {
	case StatusHigh:
		return 4
	case StatusMedium:
		return 2
	default:
		return 0
	}
}

// Grade returns the human-readable grade label for an overall risk level.
// The mapping is 1:1 and fixed.
func (s Status) Grade() string {
	switch s {
	case StatusHigh:
		return "High Risk"
	case StatusMedium:
		return "Warning"
	case StatusLow:
		return "Good"
	default:
		return "Unverified"
	}
}

// MarshalJSON serializes the status as its display string so that stored
// signals read naturally ("High", "Medium", "Low", "Unknown").
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON parses the display string back into a Status.
// Unrecognized values become StatusUnknown rather than an error because
// stored assessments must always load.
func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse status: %w", err)
	}
	*s = ParseStatus(raw)
	return nil
}

// ParseStatus converts a display string into a Status.
// Unknown strings map to StatusUnknown.
func ParseStatus(s string) Status {
	switch s {
	case "Low":
		return StatusLow
	case "Medium":
		return StatusMedium
	case "High":
		return StatusHigh
	default:
		return StatusUnknown
	}
}
