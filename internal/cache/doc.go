// Package cache stores analysis results per URL on top of a storage.KV,
// together with the data that travels with them: the analysis history,
// the user's avoided ingredients and the one-shot warning signal.
//
// Every key lives in one flat namespace:
//
//	{url}_analysis          AnalysisResult JSON
//	{url}_cache_timestamp   Unix milliseconds of the write
//	analysis_history        []HistoryEntry, newest first
//	custom_ingredients      []string
//	warning_analysis        WarningSignal
//
// A cached result is valid while less than the TTL (24 hours) has passed
// since it was written. Expired pairs are removed by Sweep.
package cache
