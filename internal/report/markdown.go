package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/umerontech/riskcheck/internal/model"
)

// MarkdownWriter outputs assessments in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the assessment in Markdown format.
func (w *MarkdownWriter) Write(a *model.Assessment) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, a)
	w.writeVerdict(md, a)
	w.writeSignals(md, a)
	w.writeRationale(md, a)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with entity information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, a *model.Assessment) {
	md.H1("RiskCheck Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Entity", "`" + a.EntityValue + "`"},
			{"Platform", a.EntityType},
			{"Entity Key", "`" + a.EntityKey + "`"},
			{"Assessed At", a.AssessedAt.Format("2006-01-02 15:04:05 MST")},
		},
	})
	md.PlainText("")
}

// writeVerdict writes the verdict section with signal counts.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, a *model.Assessment) {
	md.H2("Verdict")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Field", "Value"},
		Rows: [][]string{
			{"Risk Level", w.getLevelText(a.RiskLevel)},
			{"Grade", "**" + a.Grade + "**"},
			{"Confidence", strconv.Itoa(a.Confidence) + "%"},
			{"Approved Reports", strconv.Itoa(a.Community.Approved)},
			{"Pending Reports", strconv.Itoa(a.Community.Pending)},
		},
	})
	md.PlainText("")

	if len(a.Signals) > 0 {
		w.writePieChart(md, a)
	}

	w.writeAlert(md, a)
}

// getLevelText returns the decorated risk level text.
func (w *MarkdownWriter) getLevelText(level model.Status) string {
	switch level {
	case model.StatusHigh:
		return "🔴 High"
	case model.StatusMedium:
		return "🟡 Medium"
	case model.StatusLow:
		return "🟢 Low"
	default:
		return "⚪ Unknown"
	}
}

// writePieChart writes a mermaid pie chart for signal status distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, a *model.Assessment) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Signal Status Distribution"),
		piechart.WithShowData(true),
	)

	if n := a.CountByStatus(model.StatusHigh); n > 0 {
		chart.LabelAndIntValue("High", uint64(n))
	}
	if n := a.CountByStatus(model.StatusMedium); n > 0 {
		chart.LabelAndIntValue("Medium", uint64(n))
	}
	if n := a.CountByStatus(model.StatusLow); n > 0 {
		chart.LabelAndIntValue("Low", uint64(n))
	}
	if n := a.CountByStatus(model.StatusUnknown); n > 0 {
		chart.LabelAndIntValue("Unknown", uint64(n))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the risk level.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, a *model.Assessment) {
	switch a.RiskLevel {
	case model.StatusHigh:
		md.Cautionf(
			"High risk detected. %d high-severity signal(s) were recorded. Avoid advance payments.",
			a.CountByStatus(model.StatusHigh),
		)
	case model.StatusMedium:
		md.Warningf(
			"Warning signals present. %d medium-severity signal(s) suggest extra verification before paying.",
			a.CountByStatus(model.StatusMedium),
		)
	case model.StatusLow:
		md.Note("No strong risk signals found. Standard online-transaction caution still applies.")
	default:
		md.Important("Unverified. Not enough independent signals were available to confirm or clear this entity.")
	}
	md.PlainText("")
}

// writeSignals writes all signals grouped by status.
func (w *MarkdownWriter) writeSignals(md *markdown.Markdown, a *model.Assessment) {
	md.H2("Signals")
	md.PlainText("")

	if len(a.Signals) == 0 {
		md.PlainText("No signals recorded.")
		md.PlainText("")
		return
	}

	statuses := []struct {
		status model.Status
		header string
	}{
		{model.StatusHigh, "### 🔴 High"},
		{model.StatusMedium, "### 🟡 Medium"},
		{model.StatusLow, "### 🟢 Low"},
		{model.StatusUnknown, "### ⚪ Unknown"},
	}

	for _, s := range statuses {
		signals := signalsByStatus(a, s.status)
		if len(signals) == 0 {
			continue
		}

		md.PlainText(s.header)
		md.PlainText("")
		w.writeSignalsTable(md, signals)
	}
}

// writeSignalsTable writes a table of signals with their notes.
func (w *MarkdownWriter) writeSignalsTable(md *markdown.Markdown, signals []model.Signal) {
	rows := make([][]string, len(signals))
	for i, s := range signals {
		note := s.Note
		if note == "" {
			note = "-"
		}

		rows[i] = []string{
			s.Name,
			truncateString(note, 80),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Signal", "Note"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeRationale writes the advisory text for the verdict.
func (w *MarkdownWriter) writeRationale(md *markdown.Markdown, a *model.Assessment) {
	if a.Rationale == "" {
		return
	}

	md.H2("Rationale")
	md.PlainText("")
	md.PlainText(a.Rationale)
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Risk and uncertainty assessment only; nobody is labeled a scammer.*")
}

// signalsByStatus returns the signals carrying the given status,
// preserving assessment order.
func signalsByStatus(a *model.Assessment, status model.Status) []model.Signal {
	var out []model.Signal
	for _, s := range a.Signals {
		if s.Status == status {
			out = append(out, s)
		}
	}
	return out
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
