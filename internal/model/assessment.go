package model

import "time"

// Assessment is the complete result of one risk-assessment run.
// It is created and fully populated within a single call to the decision
// engine; there is no cross-call mutable state.
type Assessment struct {
	// EntityType is the platform key the caller supplied.
	EntityType string `json:"entity_type"`

	// EntityValue is the normalized, displayable form of the identifier.
	EntityValue string `json:"entity_value"`

	// EntityKey is the deduplication key derived from the identifier.
	// Submissions, community reports, and media links correlate on it.
	EntityKey string `json:"entity_key"`

	// AssessedAt is when the assessment was performed.
	AssessedAt time.Time `json:"assessed_at"`

	// RiskLevel is the overall risk verdict.
	RiskLevel Status `json:"risk_level"`

	// Confidence estimates how much verification was possible, as a
	// percentage clamped to [10, 95]. It is independent of RiskLevel:
	// a confident Unknown is possible when probes ran but found nothing.
	Confidence int `json:"confidence"`

	// Grade is the human label mapped 1:1 from RiskLevel
	// (Good / Warning / High Risk / Unverified).
	Grade string `json:"grade"`

	// Signals lists every observation in the order it was recorded.
	Signals []Signal `json:"signals"`

	// Rationale is the advisory text selected for this risk level.
	Rationale string `json:"rationale"`

	// Community echoes the community-report counters used for scoring.
	Community CommunityCounts `json:"community"`
}

// NewAssessment creates an assessment shell for the given entity.
// The engine fills in the verdict fields as it runs.
func NewAssessment(entityType, entityValue, entityKey string) *Assessment {
	return &Assessment{
		EntityType:  entityType,
		EntityValue: entityValue,
		EntityKey:   entityKey,
		AssessedAt:  time.Now(),
		RiskLevel:   StatusUnknown,
		Signals:     make([]Signal, 0),
	}
}

// AddSignal appends a signal to the assessment.
func (a *Assessment) AddSignal(s Signal) {
	a.Signals = append(a.Signals, s)
}

// Signal returns the first signal with the given name, or false when no
// such signal was recorded.
func (a *Assessment) Signal(name string) (Signal, bool) {
	for _, s := range a.Signals {
		if s.Name == name {
			return s, true
		}
	}
	return Signal{}, false
}

// CountByStatus returns how many signals carry the given status.
func (a *Assessment) CountByStatus(status Status) int {
	n := 0
	for _, s := range a.Signals {
		if s.Status == status {
			n++
		}
	}
	return n
}
