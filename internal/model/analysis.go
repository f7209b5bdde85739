package model

import "strings"

// Confidence is the classifier's confidence in its verdict.
type Confidence string

const (
	// ConfidenceLow means the classifier is guessing from weak evidence.
	ConfidenceLow Confidence = "low"

	// ConfidenceMedium means the verdict is likely but not certain.
	ConfidenceMedium Confidence = "medium"

	// ConfidenceHigh means the ingredient list clearly settles the verdict.
	ConfidenceHigh Confidence = "high"
)

// Normalized returns the lowercase form of the confidence level.
// The classifier is not strict about casing, so comparisons go through this.
func (c Confidence) Normalized() Confidence {
	return Confidence(strings.ToLower(string(c)))
}

// Analysis is the verdict produced by the remote classifier.
//
// Tri-state fields are pointers: a nil value means the classifier could not
// decide, and that distinction must survive a JSON round trip through storage.
type Analysis struct {
	// IsShoppingItem reports whether the page describes a purchasable product.
	IsShoppingItem *bool `json:"is_shopping_item"`

	// IsVegan reports whether the product is vegan.
	IsVegan *bool `json:"is_vegan"`

	// ConfidenceLevel is nil when the classifier did not provide one.
	ConfidenceLevel *Confidence `json:"confidence_level"`

	// Summary is a short description of the verdict.
	Summary string `json:"summary"`

	// Explanation details which ingredients drove the verdict.
	Explanation string `json:"explanation"`

	// UserAvoidedIngredients lists the user's avoided ingredients that were found.
	UserAvoidedIngredients []string `json:"user_avoided_ingredients"`
}

// AnalysisResult is the full response body of the classifier.
// It is immutable once received and owned by the cache after storage.
type AnalysisResult struct {
	Analysis  Analysis `json:"analysis"`
	PageTitle string   `json:"page_title,omitempty"`
}

// IsNonVeganShoppingItem reports whether the analysis describes a product
// that is known to be a shopping item and known not to be vegan.
// Unknown (nil) values never count.
func (a Analysis) IsNonVeganShoppingItem() bool {
	return isTrue(a.IsShoppingItem) && isFalse(a.IsVegan)
}

// HasAvoidedIngredients reports whether any user-avoided ingredient was found.
func (a Analysis) HasAvoidedIngredients() bool {
	return len(a.UserAvoidedIngredients) > 0
}

// Confidence returns the normalized confidence level, or "" when absent.
func (a Analysis) Confidence() Confidence {
	if a.ConfidenceLevel == nil {
		return ""
	}
	return a.ConfidenceLevel.Normalized()
}

// StatusText renders the one-line verdict shown at the top of the panel.
// When isWarning is true the analysis came from a warning signal, which is
// always about the item that was just added to a cart.
func (a Analysis) StatusText(isWarning bool) string {
	item := "This item"
	if isWarning {
		item = "The last added item"
	}

	switch {
	case isFalse(a.IsShoppingItem):
		return "📖 Not a Shopping Item"
	case a.IsShoppingItem == nil:
		return "❓ Unable to determine content type"
	case isTrue(a.IsVegan):
		switch a.Confidence() {
		case ConfidenceLow:
			return "🌱 " + item + " MAY be vegan"
		case ConfidenceMedium:
			return "🌱 " + item + " is LIKELY vegan"
		default:
			return "🌱 " + item + " is VEGAN"
		}
	case isFalse(a.IsVegan):
		switch a.Confidence() {
		case ConfidenceLow:
			return "❓ " + item + " MAY NOT be vegan"
		case ConfidenceMedium:
			return "⚠️ " + item + " is LIKELY NOT vegan"
		default:
			return "⚠️ " + item + " is NOT VEGAN"
		}
	default:
		return "❓ Unable to determine vegan status"
	}
}

// Bool returns a pointer to b. It keeps tri-state literals readable.
func Bool(b bool) *bool {
	return &b
}

// ConfidencePtr returns a pointer to c.
func ConfidencePtr(c Confidence) *Confidence {
	return &c
}

func isTrue(b *bool) bool {
	return b != nil && *b
}

func isFalse(b *bool) bool {
	return b != nil && !*b
}
