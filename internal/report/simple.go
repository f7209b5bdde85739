package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/vegancheck/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs plain text for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints sections that have nothing in them.
	showEmpty bool

	// verbose adds the explanation and the extracted content size.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty prints empty sections too.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose adds details to the output.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write implements Writer.
func (w *SimpleWriter) Write(report *model.PageReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeVerdict(&sb, report)
	w.writeWarnings(&sb, report)
	w.writeCartControls(&sb, report)
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.PageReport) {
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Page:    %s\n", report.URL)
	if report.Title != "" {
		fmt.Fprintf(sb, "Title:   %s\n", report.Title)
	}
	if report.Trigger != "" {
		fmt.Fprintf(sb, "Trigger: %s\n", report.Trigger)
	}
	if report.Error != "" {
		fmt.Fprintf(sb, "Status:  ERROR - %s\n", report.Error)
	} else {
		sb.WriteString("Status:  Complete\n")
	}
	if w.verbose {
		fmt.Fprintf(sb, "Elapsed: %s\n", report.Elapsed)
		fmt.Fprintf(sb, "Steps:   %s\n", strings.Join(report.Steps, ", "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeVerdict(sb *strings.Builder, report *model.PageReport) {
	if report.Result == nil {
		return
	}
	a := report.Result.Analysis

	section(sb, "VERDICT")
	fmt.Fprintf(sb, "  %s\n", verdictOf(report))
	if c := a.Confidence(); c != "" {
		fmt.Fprintf(sb, "  Confidence: %s\n", strings.ToUpper(string(c)))
	}
	if a.Summary != "" {
		fmt.Fprintf(sb, "  Summary: %s\n", a.Summary)
	}
	if w.verbose {
		explanation := a.Explanation
		if explanation == "" {
			explanation = "No explanation available"
		}
		fmt.Fprintf(sb, "  Explanation: %s\n", explanation)
		if report.Content != nil {
			fmt.Fprintf(sb, "  Content: %d characters extracted\n", len([]rune(report.Content.Content)))
		}
	}
	if len(a.UserAvoidedIngredients) > 0 {
		fmt.Fprintf(sb, "  Avoided ingredients found: %s\n", strings.Join(a.UserAvoidedIngredients, ", "))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.PageReport) {
	if len(report.Warnings) == 0 && !w.showEmpty {
		return
	}

	section(sb, "WARNINGS")
	if len(report.Warnings) == 0 {
		sb.WriteString("  None\n\n")
		return
	}
	for _, kind := range report.Warnings {
		fmt.Fprintf(sb, "  [!] %s (badge %s)\n", kind, kind.BadgeColor())
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeCartControls(sb *strings.Builder, report *model.PageReport) {
	if len(report.CartControls) == 0 && !w.showEmpty {
		return
	}

	section(sb, "PURCHASE CONTROLS")
	if len(report.CartControls) == 0 {
		sb.WriteString("  None detected\n\n")
		return
	}
	for _, c := range report.CartControls {
		fmt.Fprintf(sb, "  [+] <%s> %s\n", c.Tag, orDash(c.Text))
		if w.verbose {
			fmt.Fprintf(sb, "      id=%s class=%s\n", orDash(c.ID), orDash(c.Class))
		}
	}
	sb.WriteString("\n")
}

// WriteHistory implements Writer.
func (w *SimpleWriter) WriteHistory(entries []model.HistoryEntry) (int, error) {
	var sb strings.Builder

	section(&sb, fmt.Sprintf("ANALYSIS HISTORY (%d)", len(entries)))
	if len(entries) == 0 {
		sb.WriteString("  No analysis history yet\n")
	}
	for _, e := range entries {
		fmt.Fprintf(&sb, "  %s  %-17s %s\n", e.Date, e.StatusLabel(), e.Title)
		if w.verbose {
			fmt.Fprintf(&sb, "      %s\n", e.URL)
			if e.Summary != "" {
				fmt.Fprintf(&sb, "      %s\n", e.Summary)
			}
		}
	}

	return io.WriteString(w.output, sb.String())
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
}
