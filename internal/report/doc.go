// Package report writes page checks and the analysis history.
//
// Three formats are available:
//   - SimpleWriter: plain text for the terminal
//   - MarkdownWriter: Markdown with alerts and tables, for sharing
//   - JSONWriter: JSON for other tools
//
// All of them implement Writer, and MultiWriter fans one report out to
// several writers.
package report
