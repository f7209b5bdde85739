package extension

import "errors"

var (
	// ErrAnalysisTimeout is returned when no result appears before the poll timeout.
	ErrAnalysisTimeout = errors.New("analysis timed out, please try again")

	// ErrPageUnreachable is returned when the page context does not answer.
	ErrPageUnreachable = errors.New("could not analyze this page, please refresh and try again")

	// ErrEmptyIngredient is returned when adding a blank ingredient.
	ErrEmptyIngredient = errors.New("ingredient must not be empty")

	// ErrDuplicateIngredient is returned when the ingredient is already listed.
	ErrDuplicateIngredient = errors.New("this ingredient is already in your custom list")

	// ErrIngredientNotFound is returned when removing an ingredient that is not listed.
	ErrIngredientNotFound = errors.New("ingredient is not in your custom list")
)
