// Package normalize converts a page DOM into the canonical text snapshot
// sent for analysis.
//
// The conversion is deliberately lossy. It aims to keep the product text a
// classifier needs (headings, paragraphs, lists, emphasis) and drop the noise
// around it (scripts, navigation, ads, recommendation carousels). It is not a
// general HTML-to-markdown converter.
//
// Extraction runs in three passes:
//  1. Clone the body and strip non-content regions with CSS selectors.
//  2. Render the clone with the per-element rules in rules.go.
//  3. Clean up blank lines and repeated spaces.
//
// The output is deterministic for a fixed DOM snapshot, and no input makes
// the normalizer fail: a malformed subtree renders as an empty string.
package normalize
