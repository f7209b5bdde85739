package cartintent

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/dom"
)

// intentPhrases are the purchase phrases matched against the text,
// aria-label, title, data-testid and data-action signals.
var intentPhrases = newSet(
	"add to cart",
	"add to bag",
	"add to basket",
	"addtocart",
	"addtobag",
	"addtobasket",
	"add to shopping cart",
	"add to shopping bag",
	"add to wishlist",
	"add to favorites",
	"order now",
	"buy now",
	"purchase now",
)

// intentTokens are matched against the whole class attribute and the id.
var intentTokens = newSet(
	"cart",
	"bag",
	"basket",
	"buy",
	"purchase",
	"order",
	"add-to",
	"addto",
	"shopping",
	"checkout",
)

// exclusions reject a match when the text, aria-label or title equals one
// of them. Class and id never exclude.
var exclusions = newSet(
	"remove",
	"delete",
	"clear",
	"empty",
	"checkout",
	"view cart",
	"remove from cart",
	"delete from cart",
	"clear cart",
)

type set map[string]struct{}

func newSet(values ...string) set {
	s := make(set, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s set) has(v string) bool {
	if v == "" {
		return false
	}
	_, ok := s[v]
	return ok
}

// Signals are the normalized attributes of a candidate control.
// Every field is lowercased with whitespace trimmed and collapsed.
type Signals struct {
	// Text is the text content, or the value attribute when there is no text.
	Text string
	// Class is the full class attribute.
	Class string
	// ID is the id attribute.
	ID string
	// AriaLabel is the aria-label attribute.
	AriaLabel string
	// Title is the title attribute.
	Title string
	// TestID is the data-testid attribute.
	TestID string
	// Action is the data-action attribute.
	Action string
}

// SignalsOf collects the signals of element n.
func SignalsOf(n *html.Node) Signals {
	text := normalizeSignal(dom.TextContent(n))
	if text == "" {
		text = normalizeSignal(dom.Attr(n, "value"))
	}

	return Signals{
		Text:      text,
		Class:     normalizeSignal(dom.Attr(n, "class")),
		ID:        normalizeSignal(dom.Attr(n, "id")),
		AriaLabel: normalizeSignal(dom.Attr(n, "aria-label")),
		Title:     normalizeSignal(dom.Attr(n, "title")),
		TestID:    normalizeSignal(dom.Attr(n, "data-testid")),
		Action:    normalizeSignal(dom.Attr(n, "data-action")),
	}
}

// Matches reports whether the signals indicate a purchase control.
func (s Signals) Matches() bool {
	phrase := intentPhrases.has(s.Text) ||
		intentPhrases.has(s.AriaLabel) ||
		intentPhrases.has(s.Title) ||
		intentPhrases.has(s.TestID) ||
		intentPhrases.has(s.Action)
	token := intentTokens.has(s.Class) || intentTokens.has(s.ID)

	if !phrase && !token {
		return false
	}
	return !s.Excluded()
}

// Excluded reports whether the text, aria-label or title is an exclusion phrase.
func (s Signals) Excluded() bool {
	return exclusions.has(s.Text) || exclusions.has(s.AriaLabel) || exclusions.has(s.Title)
}

// normalizeSignal lowercases s and collapses its whitespace.
func normalizeSignal(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
