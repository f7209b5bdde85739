package report

import (
	"io"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/vegancheck/internal/model"
)

// MarkdownWriter outputs Markdown built with nao1215/markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write implements Writer.
func (w *MarkdownWriter) Write(report *model.PageReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeVerdict(md, report)
	w.writeCartControls(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.PageReport) {
	title := report.Title
	if title == "" {
		title = report.URL
	}
	md.H1(title)
	md.PlainText("")

	status := "✅ Complete"
	if report.Error != "" {
		status = "❌ Error - " + report.Error
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Page", "`" + report.URL + "`"},
			{"Trigger", orDash(report.Trigger)},
			{"Status", status},
			{"Elapsed", report.Elapsed.String()},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, report *model.PageReport) {
	if report.Result == nil {
		return
	}
	a := report.Result.Analysis

	md.H2("Verdict")
	md.PlainText("")

	verdict := verdictOf(report)
	switch {
	case a.IsNonVeganShoppingItem():
		md.Cautionf("%s", verdict)
	case a.HasAvoidedIngredients():
		md.Warningf("%s. Contains avoided ingredients: %s", verdict, strings.Join(a.UserAvoidedIngredients, ", "))
	case a.IsShoppingItem != nil && *a.IsShoppingItem:
		md.Tip(verdict)
	default:
		md.Note(verdict)
	}
	md.PlainText("")

	rows := [][]string{
		{"Confidence", orDash(strings.ToUpper(string(a.Confidence())))},
		{"Summary", orDash(a.Summary)},
	}
	if n := len(report.Warnings); n > 0 {
		kinds := make([]string, n)
		for i, k := range report.Warnings {
			kinds[i] = k.String()
		}
		rows = append(rows, []string{"Warnings", strings.Join(kinds, ", ")}, []string{"Badge", report.Badge})
	}
	md.Table(markdown.TableSet{Header: []string{"Field", "Value"}, Rows: rows})
	md.PlainText("")

	if a.Explanation != "" {
		md.Details("Explanation", a.Explanation)
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeCartControls(md *markdown.Markdown, report *model.PageReport) {
	md.H2("Purchase Controls")
	md.PlainText("")

	if len(report.CartControls) == 0 {
		md.PlainText("No purchase controls detected.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(report.CartControls))
	for i, c := range report.CartControls {
		rows[i] = []string{
			"`" + c.Tag + "`",
			orDash(model.Truncate(c.Text, 40)),
			orDash(c.ID),
			orDash(model.Truncate(c.Class, 40)),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Tag", "Text", "ID", "Class"},
		Rows:   rows,
	})
	md.PlainText("")
}

// WriteHistory implements Writer.
func (w *MarkdownWriter) WriteHistory(entries []model.HistoryEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Analysis History")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No analysis history yet.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	w.writeStatusChart(md, entries)

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{
			e.Date,
			model.Truncate(e.Title, 50),
			e.StatusLabel(),
			"`" + e.URL + "`",
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Date", "Title", "Status", "URL"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeStatusChart writes a mermaid pie chart of history statuses in
// first-seen order.
func (w *MarkdownWriter) writeStatusChart(md *markdown.Markdown, entries []model.HistoryEntry) {
	var labels []string
	counts := make(map[string]uint64)
	for _, e := range entries {
		label := e.StatusLabel()
		if counts[label] == 0 {
			labels = append(labels, label)
		}
		counts[label]++
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Verdicts"),
		piechart.WithShowData(true),
	)
	for _, label := range labels {
		chart.LabelAndIntValue(label, counts[label])
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [vegancheck](https://github.com/nao1215/vegancheck)*")
}
