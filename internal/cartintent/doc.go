// Package cartintent finds the controls on a shop page that commit a
// purchase ("Add to Cart", "Buy Now") and fires an analysis trigger when
// one of them is clicked.
//
// Matching is exact on normalized signals. "Add to Cart" matches, while
// "Add to Cart Remove" does not: partial matches produce too many false
// positives on pages that list cart actions next to each other.
//
// Controls added after page load are picked up by Detector.Watch, which
// subscribes to DOM mutations and rescans only when a mutation batch could
// have introduced a candidate control.
package cartintent
