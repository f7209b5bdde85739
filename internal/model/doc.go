// Package model defines the data structures shared by vegancheck packages.
//
// The main types are:
//   - PageContent: the normalized page snapshot sent for analysis
//   - AnalysisResult: the classifier verdict, cached per URL
//   - HistoryEntry: one line of the bounded analysis ledger
//   - WarningSignal: the one-shot warning read by the panel
//   - PageReport: the per-target record of a CLI run
//
// The types are serialized as JSON both on the wire to the classifier and in
// persisted storage, so their JSON names are part of the storage format.
package model
