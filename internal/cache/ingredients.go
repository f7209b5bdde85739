package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/nao1215/vegancheck/internal/storage"
)

// AvoidedIngredients returns the user's avoided ingredients in insertion order.
func (s *Store) AvoidedIngredients(ctx context.Context) ([]string, error) {
	raw, ok, err := storage.GetOne(ctx, s.kv, IngredientsKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read avoided ingredients: %w", err)
	}
	if !ok {
		return []string{}, nil
	}

	var ingredients []string
	if err := json.Unmarshal(raw, &ingredients); err != nil {
		s.logger.Warn("ignoring undecodable avoided ingredients", "error", err)
		return []string{}, nil
	}
	if ingredients == nil {
		ingredients = []string{}
	}
	return ingredients, nil
}

// AddAvoidedIngredient appends ingredient after trimming it. Blank input
// and exact duplicates are ignored; added reports whether the list changed.
func (s *Store) AddAvoidedIngredient(ctx context.Context, ingredient string) (added bool, err error) {
	ingredient = strings.TrimSpace(ingredient)
	if ingredient == "" {
		return false, nil
	}

	ingredients, err := s.AvoidedIngredients(ctx)
	if err != nil {
		return false, err
	}
	if slices.Contains(ingredients, ingredient) {
		return false, nil
	}

	if err := s.saveIngredients(ctx, append(ingredients, ingredient)); err != nil {
		return false, err
	}
	return true, nil
}

// RemoveAvoidedIngredient removes every entry equal to ingredient and
// reports whether anything was removed.
func (s *Store) RemoveAvoidedIngredient(ctx context.Context, ingredient string) (removed bool, err error) {
	ingredients, err := s.AvoidedIngredients(ctx)
	if err != nil {
		return false, err
	}

	kept := slices.DeleteFunc(slices.Clone(ingredients), func(v string) bool { return v == ingredient })
	if len(kept) == len(ingredients) {
		return false, nil
	}

	if err := s.saveIngredients(ctx, kept); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) saveIngredients(ctx context.Context, ingredients []string) error {
	raw, err := json.Marshal(ingredients)
	if err != nil {
		return fmt.Errorf("failed to encode avoided ingredients: %w", err)
	}
	if err := storage.SetOne(ctx, s.kv, IngredientsKey, raw); err != nil {
		return fmt.Errorf("failed to save avoided ingredients: %w", err)
	}
	return nil
}
