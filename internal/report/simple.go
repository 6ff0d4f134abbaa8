package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/umerontech/riskcheck/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and per-signal severity indicators.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showUnknown controls whether Unknown-status signals are shown.
	// They carry no risk points but explain what could not be verified.
	showUnknown bool

	// verbose enables signal metadata in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowUnknown configures the writer to include Unknown-status signals.
func WithShowUnknown(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showUnknown = show
	}
}

// WithVerbose enables verbose output with signal metadata.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter:  newBaseWriter(output),
		showUnknown: true,
		verbose:     false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the assessment in human-readable format.
func (w *SimpleWriter) Write(a *model.Assessment) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, a)
	w.writeVerdict(&sb, a)
	w.writeSignals(&sb, a)
	w.writeRationale(&sb, a)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with entity information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, a *model.Assessment) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         RISKCHECK REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Entity:      %s\n", a.EntityValue))
	sb.WriteString(fmt.Sprintf("Platform:    %s\n", a.EntityType))
	sb.WriteString(fmt.Sprintf("Assessed At: %s\n", a.AssessedAt.Format("2006-01-02 15:04:05 MST")))
	if w.verbose {
		sb.WriteString(fmt.Sprintf("Entity Key:  %s\n", a.EntityKey))
	}
	sb.WriteString("\n")
}

// writeVerdict writes the overall verdict section.
func (w *SimpleWriter) writeVerdict(sb *strings.Builder, a *model.Assessment) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VERDICT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  RISK LEVEL: %s (%s)\n", strings.ToUpper(a.RiskLevel.String()), a.Grade))
	sb.WriteString(fmt.Sprintf("  CONFIDENCE: %d%%\n", a.Confidence))
	sb.WriteString(fmt.Sprintf("  SIGNALS:    %d high, %d medium, %d low, %d unverified\n",
		a.CountByStatus(model.StatusHigh),
		a.CountByStatus(model.StatusMedium),
		a.CountByStatus(model.StatusLow),
		a.CountByStatus(model.StatusUnknown)))

	if a.Community.Approved > 0 || a.Community.Pending > 0 {
		sb.WriteString(fmt.Sprintf("  REPORTS:    %d approved, %d pending\n",
			a.Community.Approved, a.Community.Pending))
	}
	sb.WriteString("\n")
}

// writeSignals lists every recorded signal in assessment order.
func (w *SimpleWriter) writeSignals(sb *strings.Builder, a *model.Assessment) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SIGNALS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	shown := 0
	for _, s := range a.Signals {
		if s.Status == model.StatusUnknown && !w.showUnknown {
			continue
		}
		shown++

		indicator := w.getStatusIndicator(s.Status)
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", indicator, s.Name))
		if s.Note != "" {
			sb.WriteString(fmt.Sprintf("      %s\n", s.Note))
		}
		if w.verbose && len(s.Meta) > 0 {
			w.writeMeta(sb, s.Meta)
		}
	}

	if shown == 0 {
		sb.WriteString("  No signals recorded\n")
	}
	sb.WriteString("\n")
}

// writeMeta writes signal metadata as sorted key/value lines.
func (w *SimpleWriter) writeMeta(sb *strings.Builder, meta map[string]any) {
	keys := make([]string, 0, len(meta))
	for k := range meta {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		sb.WriteString(fmt.Sprintf("      %s: %v\n", k, meta[k]))
	}
}

// writeRationale writes the advisory text for the verdict.
func (w *SimpleWriter) writeRationale(sb *strings.Builder, a *model.Assessment) {
	if a.Rationale == "" {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("RATIONALE\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(fmt.Sprintf("  %s\n", a.Rationale))
	sb.WriteString("\n")
}

// getStatusIndicator returns a visual indicator for the signal status.
func (w *SimpleWriter) getStatusIndicator(status model.Status) string {
	switch status {
	case model.StatusHigh:
		return "!!"
	case model.StatusMedium:
		return "!"
	case model.StatusLow:
		return "+"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Risk and uncertainty assessment only; nobody is labeled a scammer.\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
