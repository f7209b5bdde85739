package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/storage"
)

// History returns the analysis history, newest first.
// An undecodable history is logged and reported as empty.
func (s *Store) History(ctx context.Context) ([]model.HistoryEntry, error) {
	raw, ok, err := storage.GetOne(ctx, s.kv, HistoryKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if !ok {
		return []model.HistoryEntry{}, nil
	}

	var history []model.HistoryEntry
	if err := json.Unmarshal(raw, &history); err != nil {
		s.logger.Warn("ignoring undecodable history", "error", err)
		return []model.HistoryEntry{}, nil
	}
	if history == nil {
		history = []model.HistoryEntry{}
	}
	return history, nil
}

// ClearHistory removes every history entry.
func (s *Store) ClearHistory(ctx context.Context) error {
	if err := s.kv.Remove(ctx, HistoryKey); err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

// prependHistory adds entry at the front of the history and truncates it
// to the history limit. It returns the resulting number of entries.
func (s *Store) prependHistory(ctx context.Context, entry model.HistoryEntry) (int, error) {
	history, err := s.History(ctx)
	if err != nil {
		return 0, err
	}

	history = append([]model.HistoryEntry{entry}, history...)
	if len(history) > s.historyLimit {
		history = history[:s.historyLimit]
	}

	raw, err := json.Marshal(history)
	if err != nil {
		return 0, fmt.Errorf("failed to encode history: %w", err)
	}
	if err := storage.SetOne(ctx, s.kv, HistoryKey, raw); err != nil {
		return 0, fmt.Errorf("failed to save history: %w", err)
	}
	return len(history), nil
}
