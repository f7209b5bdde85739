package model

// WarningKind identifies why a warning was raised for an analysis.
type WarningKind string

const (
	// WarningNonVegan is raised for shopping items known not to be vegan.
	WarningNonVegan WarningKind = "non_vegan"

	// WarningAvoidedIngredients is raised when a user-avoided ingredient is found,
	// even for vegan products.
	WarningAvoidedIngredients WarningKind = "avoided_ingredients"
)

// Badge colors used for the attention badge.
const (
	// BadgeColorAlert is red, used for non-vegan items.
	BadgeColorAlert = "#f44336"

	// BadgeColorCaution is orange, used for avoided ingredients.
	BadgeColorCaution = "#ff9800"
)

// BadgeColor returns the badge color for the warning kind.
func (k WarningKind) BadgeColor() string {
	if k == WarningAvoidedIngredients {
		return BadgeColorCaution
	}
	return BadgeColorAlert
}

// String returns the wire name of the warning kind.
func (k WarningKind) String() string {
	return string(k)
}

// WarningSignal is a transient one-shot record read by the panel.
// It is cleared when consumed or when the panel closes.
type WarningSignal struct {
	Analysis Analysis    `json:"analysis"`
	Kind     WarningKind `json:"kind"`
}
