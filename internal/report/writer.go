package report

import (
	"io"

	"github.com/nao1215/vegancheck/internal/model"
)

// Writer outputs page reports and history.
type Writer interface {
	// Write outputs one page report.
	Write(report *model.PageReport) (int, error)

	// WriteHistory outputs the analysis history, newest first.
	WriteHistory(entries []model.HistoryEntry) (int, error)
}

// MultiWriter writes to several Writers in order and stops at the first error.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a MultiWriter.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write implements Writer.
func (m *MultiWriter) Write(report *model.PageReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteHistory implements Writer.
func (m *MultiWriter) WriteHistory(entries []model.HistoryEntry) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteHistory(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// verdictOf returns the panel status line for a report, or "" when the
// check produced no result.
func verdictOf(report *model.PageReport) string {
	if report.Verdict != "" {
		return report.Verdict
	}
	if report.Result == nil {
		return ""
	}
	return report.Result.Analysis.StatusText(len(report.Warnings) > 0)
}

// orDash returns s, or "-" when s is empty.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
