package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/storage"
)

const (
	// DefaultTTL is how long a cached result stays valid.
	DefaultTTL = 24 * time.Hour

	// DefaultHistoryLimit is the maximum number of history entries kept.
	DefaultHistoryLimit = 50
)

// Store is the cache of analysis results.
// There is no lock around read-modify-write sequences: two writers racing
// on the history may lose an entry, as with the underlying KV.
type Store struct {
	kv           storage.KV
	ttl          time.Duration
	historyLimit int
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithTTL sets how long cached results stay valid.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithHistoryLimit sets the maximum number of history entries.
func WithHistoryLimit(limit int) Option {
	return func(s *Store) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

// WithClock sets the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a Store backed by kv.
func NewStore(kv storage.KV, opts ...Option) *Store {
	s := &Store{
		kv:           kv,
		ttl:          DefaultTTL,
		historyLimit: DefaultHistoryLimit,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the validity window of cached results.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Get returns the cached result for pageURL, or nil when there is none or
// it has expired. Undecodable entries are logged and treated as missing.
func (s *Store) Get(ctx context.Context, pageURL string) (*model.AnalysisResult, error) {
	items, err := s.kv.Get(ctx, AnalysisKey(pageURL), TimestampKey(pageURL))
	if err != nil {
		return nil, fmt.Errorf("failed to read cache for %s: %w", pageURL, err)
	}

	rawResult, okResult := items[AnalysisKey(pageURL)]
	rawTS, okTS := items[TimestampKey(pageURL)]
	if !okResult || !okTS {
		s.logger.Debug("cache miss", "url", pageURL)
		return nil, nil
	}

	var ts int64
	if err := json.Unmarshal(rawTS, &ts); err != nil || ts == 0 {
		s.logger.Warn("ignoring invalid cache timestamp", "url", pageURL, "error", err)
		return nil, nil
	}
	if !s.valid(ts) {
		s.logger.Debug("cache expired", "url", pageURL)
		return nil, nil
	}

	var result model.AnalysisResult
	if err := json.Unmarshal(rawResult, &result); err != nil {
		s.logger.Warn("ignoring undecodable cached result", "url", pageURL, "error", err)
		return nil, nil
	}

	s.logger.Debug("cache hit", "url", pageURL)
	return &result, nil
}

// RecordAnalysis caches result for pageURL and prepends a history entry.
// title is the title of the analyzed content and may be empty.
// The cache write happens first; a history failure leaves the result cached.
func (s *Store) RecordAnalysis(ctx context.Context, pageURL string, result model.AnalysisResult, title string) (model.HistoryEntry, error) {
	if pageURL == "" {
		return model.HistoryEntry{}, ErrEmptyURL
	}

	at := s.now()
	rawResult, err := json.Marshal(result)
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("failed to encode analysis result: %w", err)
	}
	rawTS, err := json.Marshal(at.UnixMilli())
	if err != nil {
		return model.HistoryEntry{}, fmt.Errorf("failed to encode cache timestamp: %w", err)
	}

	if err := s.kv.Set(ctx, map[string][]byte{
		AnalysisKey(pageURL):  rawResult,
		TimestampKey(pageURL): rawTS,
	}); err != nil {
		return model.HistoryEntry{}, fmt.Errorf("failed to cache analysis for %s: %w", pageURL, err)
	}
	s.logger.Debug("cached analysis result", "url", pageURL)

	entry := model.NewHistoryEntry(pageURL, result, at, title)
	count, err := s.prependHistory(ctx, entry)
	if err != nil {
		return model.HistoryEntry{}, err
	}
	s.logger.Debug("saved analysis to history", "url", pageURL, "entries", count)

	return entry, nil
}

// Sweep removes every expired result together with its timestamp and
// returns how many cache entries were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	keys, err := s.kv.Keys(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list cache keys: %w", err)
	}

	var tsKeys []string
	for _, k := range keys {
		if _, ok := urlFromTimestampKey(k); ok {
			tsKeys = append(tsKeys, k)
		}
	}
	if len(tsKeys) == 0 {
		return 0, nil
	}

	stamps, err := s.kv.Get(ctx, tsKeys...)
	if err != nil {
		return 0, fmt.Errorf("failed to read cache timestamps: %w", err)
	}

	var remove []string
	for _, k := range tsKeys {
		var ts int64
		if err := json.Unmarshal(stamps[k], &ts); err == nil && s.valid(ts) {
			continue
		}
		pageURL, _ := urlFromTimestampKey(k)
		remove = append(remove, k, AnalysisKey(pageURL))
		s.logger.Debug("removing expired cache", "url", pageURL)
	}

	if len(remove) == 0 {
		return 0, nil
	}
	if err := s.kv.Remove(ctx, remove...); err != nil {
		return 0, fmt.Errorf("failed to remove expired cache entries: %w", err)
	}

	removed := len(remove) / 2
	s.logger.Info("cleaned up expired cache entries", "count", removed)
	return removed, nil
}

// valid reports whether a result written at ts (Unix ms) is still fresh.
func (s *Store) valid(ts int64) bool {
	return s.now().Sub(time.UnixMilli(ts)) < s.ttl
}
