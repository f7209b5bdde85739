package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/storage"
)

// SetWarning stores the pending warning, replacing any previous one.
func (s *Store) SetWarning(ctx context.Context, signal model.WarningSignal) error {
	raw, err := json.Marshal(signal)
	if err != nil {
		return fmt.Errorf("failed to encode warning: %w", err)
	}
	if err := storage.SetOne(ctx, s.kv, WarningKey, raw); err != nil {
		return fmt.Errorf("failed to save warning: %w", err)
	}
	return nil
}

// ConsumeWarning returns the pending warning and removes it, or nil when
// there is none.
func (s *Store) ConsumeWarning(ctx context.Context) (*model.WarningSignal, error) {
	raw, ok, err := storage.GetOne(ctx, s.kv, WarningKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read warning: %w", err)
	}
	if !ok {
		return nil, nil
	}

	if err := s.ClearWarning(ctx); err != nil {
		return nil, err
	}

	var signal model.WarningSignal
	if err := json.Unmarshal(raw, &signal); err != nil {
		s.logger.Warn("ignoring undecodable warning", "error", err)
		return nil, nil
	}
	return &signal, nil
}

// ClearWarning removes the pending warning.
func (s *Store) ClearWarning(ctx context.Context) error {
	if err := s.kv.Remove(ctx, WarningKey); err != nil {
		return fmt.Errorf("failed to clear warning: %w", err)
	}
	return nil
}
