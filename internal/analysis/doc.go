// Package analysis runs one page snapshot through the cache and the remote
// classifier, and raises warnings for results the user should look at.
//
// Analyze never caches a failure: when the classifier call fails nothing is
// written and the caller gets the error. Cache hits return the stored result
// without touching the history, so only fresh classifier verdicts appear in
// the ledger. Warnings are evaluated the same way for both paths.
package analysis
