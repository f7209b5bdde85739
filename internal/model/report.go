package model

import (
	"time"

	"golang.org/x/net/html"
)

// CartControl describes a purchase-intent element found on a page.
type CartControl struct {
	// Tag is the element name (button, a, input, ...).
	Tag string `json:"tag"`

	// Text is the trimmed visible text or value of the element.
	Text string `json:"text,omitempty"`

	// ID is the element id attribute.
	ID string `json:"id,omitempty"`

	// Class is the element class attribute.
	Class string `json:"class,omitempty"`
}

// PageReport accumulates everything the CLI pipeline learns about one target.
// Steps fill it in order; later steps read what earlier steps produced.
type PageReport struct {
	// Target is the URL or file path given by the user.
	Target string `json:"target"`

	// URL is the resolved page URL used as the cache key.
	URL string `json:"url"`

	// Title is the document title.
	Title string `json:"title,omitempty"`

	// StatusCode is the HTTP status of the fetch (0 for local files).
	StatusCode int `json:"status_code,omitempty"`

	// CartControls lists the purchase-intent elements found on the page.
	CartControls []CartControl `json:"cart_controls"`

	// Trigger records how the analysis was started ("click" or "manual").
	Trigger string `json:"trigger,omitempty"`

	// Content is the normalized page snapshot that was analyzed.
	Content *PageContent `json:"content,omitempty"`

	// Result is the analysis result, nil when the analysis failed.
	Result *AnalysisResult `json:"result,omitempty"`

	// Warnings lists the warning kinds raised for the result.
	Warnings []WarningKind `json:"warnings"`

	// Badge is the badge color left on the toolbar, "" when none.
	Badge string `json:"badge,omitempty"`

	// Verdict is the one-line status the panel showed.
	Verdict string `json:"verdict,omitempty"`

	// Error describes why the pipeline failed, if it did.
	Error string `json:"error,omitempty"`

	// Elapsed is how long the pipeline took.
	Elapsed time.Duration `json:"elapsed"`

	// Steps lists the pipeline steps that ran.
	Steps []string `json:"steps"`

	// Body is the raw page body. It is not part of the report output.
	Body []byte `json:"-"`

	// Root is the parsed document. It is not part of the report output.
	Root *html.Node `json:"-"`
}

// NewPageReport creates an empty report for the target.
func NewPageReport(target string) *PageReport {
	return &PageReport{
		Target:       target,
		URL:          target,
		CartControls: make([]CartControl, 0),
		Warnings:     make([]WarningKind, 0),
		Steps:        make([]string, 0),
	}
}

// Succeeded reports whether an analysis result was obtained.
func (r *PageReport) Succeeded() bool {
	return r.Result != nil
}
