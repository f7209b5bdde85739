package model

import (
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	// MaxSummaryLength is the number of summary characters kept in history.
	MaxSummaryLength = 100

	// MaxExplanationLength is the number of explanation characters kept in history.
	MaxExplanationLength = 150

	// UnknownPageTitle is used when no title can be derived at all.
	UnknownPageTitle = "Unknown Page"

	// displayDateLayout mirrors the en-US locale string of a browser.
	displayDateLayout = "1/2/2006, 3:04:05 PM"
)

// HistoryEntry is one line in the bounded analysis ledger.
// Entries are appended for fresh analyses only, never for cache hits.
type HistoryEntry struct {
	ID                     string      `json:"id"`
	URL                    string      `json:"url"`
	Timestamp              int64       `json:"timestamp"`
	Date                   string      `json:"date"`
	Title                  string      `json:"title"`
	IsVegan                *bool       `json:"is_vegan"`
	IsShoppingItem         *bool       `json:"is_shopping_item"`
	ConfidenceLevel        *Confidence `json:"confidence_level"`
	Summary                string      `json:"summary"`
	Explanation            string      `json:"explanation"`
	UserAvoidedIngredients []string    `json:"user_avoided_ingredients"`
}

// NewHistoryEntry builds the ledger entry for a freshly stored analysis.
//
// The title falls back from the explicit title, to the classifier's
// page_title, to a title derived from the URL, and finally to "Unknown Page".
func NewHistoryEntry(pageURL string, result AnalysisResult, at time.Time, title string) HistoryEntry {
	ms := at.UnixMilli()

	if title == "" {
		title = result.PageTitle
	}
	if title == "" {
		title = TitleFromURL(pageURL)
	}
	if title == "" {
		title = UnknownPageTitle
	}

	avoided := result.Analysis.UserAvoidedIngredients
	if avoided == nil {
		avoided = []string{}
	}

	return HistoryEntry{
		ID:                     fmt.Sprintf("%s_%d", pageURL, ms),
		URL:                    pageURL,
		Timestamp:              ms,
		Date:                   at.Local().Format(displayDateLayout),
		Title:                  title,
		IsVegan:                result.Analysis.IsVegan,
		IsShoppingItem:         result.Analysis.IsShoppingItem,
		ConfidenceLevel:        result.Analysis.ConfidenceLevel,
		Summary:                Truncate(result.Analysis.Summary, MaxSummaryLength),
		Explanation:            Truncate(result.Analysis.Explanation, MaxExplanationLength),
		UserAvoidedIngredients: avoided,
	}
}

// StatusLabel returns the short verdict label used in history listings.
func (h HistoryEntry) StatusLabel() string {
	switch {
	case isFalse(h.IsShoppingItem):
		return "Not Shopping Item"
	case isTrue(h.IsShoppingItem) && isTrue(h.IsVegan):
		return "Vegan"
	case isTrue(h.IsShoppingItem) && isFalse(h.IsVegan):
		return "Not Vegan"
	default:
		return "Unknown"
	}
}

// Truncate shortens s to at most maxLen characters and appends "..." when
// anything was cut. Characters are counted as runes.
func Truncate(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen]) + "..."
}

// TitleFromURL derives a readable title from a page URL.
// The last non-empty path segment wins, with dashes and underscores turned
// into spaces and each word title-cased on the percent-decoded path;
// otherwise the host without a leading "www." is used. It returns "" when the URL cannot be parsed.
func TitleFromURL(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}

	segments := strings.FieldsFunc(u.Path, func(r rune) bool { return r == '/' })
	if len(segments) > 0 {
		last := segments[len(segments)-1]
		last = strings.NewReplacer("-", " ", "_", " ").Replace(last)
		// Casers keep state, so each call gets its own.
		return cases.Title(language.Und, cases.NoLower).String(last)
	}

	return strings.Replace(u.Hostname(), "www.", "", 1)
}
