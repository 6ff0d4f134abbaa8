package model

// Signal is one discrete risk observation with a severity status and a
// human-readable explanation. Signals accumulate in order during an
// assessment; the order affects report display only, never scoring.
type Signal struct {
	// Name identifies the check that produced the signal
	// (e.g. "Website reachability", "Internet footprint").
	// Names are stable identifiers: the decision engine matches critical
	// signals by name, so renaming one is a behavioral change.
	Name string `json:"name"`

	// Status is the risk severity of this observation.
	Status Status `json:"status"`

	// Note explains the observation in plain language.
	Note string `json:"note"`

	// Meta carries optional structured context (resolved URL, top domains).
	// Nil when the signal needs no extra context.
	Meta map[string]any `json:"meta,omitempty"`
}

// NewSignal creates a signal without metadata.
func NewSignal(name string, status Status, note string) Signal {
	return Signal{Name: name, Status: status, Note: note}
}

// NewSignalMeta creates a signal with structured metadata attached.
func NewSignalMeta(name string, status Status, note string, meta map[string]any) Signal {
	return Signal{Name: name, Status: status, Note: note, Meta: meta}
}
