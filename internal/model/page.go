package model

import "time"

// isoTimestampLayout matches the millisecond ISO-8601 form browsers emit
// (e.g. "2024-05-01T12:30:00.000Z").
const isoTimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// PageContent is the normalized snapshot of a page sent for analysis.
// It is ephemeral: it is never persisted on its own.
type PageContent struct {
	// URL identifies the page and is the cache key.
	URL string `json:"url"`

	// Title is the document title at extraction time.
	Title string `json:"title"`

	// Timestamp is the extraction time in ISO-8601 form.
	Timestamp string `json:"timestamp"`

	// Content is the normalized markdown-like text of the page body.
	Content string `json:"content"`
}

// NewPageContent creates a PageContent stamped with the given time in UTC.
func NewPageContent(url, title, content string, at time.Time) PageContent {
	return PageContent{
		URL:       url,
		Title:     title,
		Timestamp: at.UTC().Format(isoTimestampLayout),
		Content:   content,
	}
}
