package cache

import "strings"

// Storage keys shared with the other contexts.
const (
	// HistoryKey holds the analysis history.
	HistoryKey = "analysis_history"

	// IngredientsKey holds the user's avoided ingredients.
	IngredientsKey = "custom_ingredients"

	// WarningKey holds the pending warning signal.
	WarningKey = "warning_analysis"

	analysisSuffix  = "_analysis"
	timestampSuffix = "_cache_timestamp"
)

// AnalysisKey returns the key of the cached result for pageURL.
func AnalysisKey(pageURL string) string {
	return pageURL + analysisSuffix
}

// TimestampKey returns the key of the cache timestamp for pageURL.
func TimestampKey(pageURL string) string {
	return pageURL + timestampSuffix
}

// urlFromTimestampKey returns the URL part of a timestamp key.
func urlFromTimestampKey(key string) (string, bool) {
	if !strings.HasSuffix(key, timestampSuffix) {
		return "", false
	}
	return strings.TrimSuffix(key, timestampSuffix), true
}
