package cartintent

import (
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// MarkerAttr flags controls that already carry a click listener.
const MarkerAttr = "data-vegan-analyzed"

// CandidateSelector matches every clickable control worth inspecting.
const CandidateSelector = `button, input[type="submit"], input[type="button"], a, [role="button"]`

var candidateSelector = cascadia.MustCompile(CandidateSelector)

// IsCandidate reports whether n is a clickable control.
func IsCandidate(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && candidateSelector.Match(n)
}

// ContainsCandidate reports whether n is a candidate or has one among its
// descendants.
func ContainsCandidate(n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	return candidateSelector.MatchFirst(n) != nil
}

// Matches reports whether n is a candidate whose signals indicate a
// purchase control.
func Matches(n *html.Node) bool {
	return IsCandidate(n) && SignalsOf(n).Matches()
}

// Scan returns every purchase control under root in document order,
// including controls already flagged with MarkerAttr.
func Scan(root *html.Node) []*html.Node {
	if root == nil {
		return nil
	}

	var found []*html.Node
	for _, n := range candidateSelector.MatchAll(root) {
		if SignalsOf(n).Matches() {
			found = append(found, n)
		}
	}
	return found
}
