package extension

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/vegancheck/internal/bridge"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/model"
)

const (
	// DefaultPollInterval is the period between two cache reads while waiting
	// for a manual analysis.
	DefaultPollInterval = time.Second

	// DefaultPollTimeout is how long the panel waits for a manual analysis.
	DefaultPollTimeout = 30 * time.Second
)

// View is what the panel shows for one verdict.
type View struct {
	// Analysis is the verdict shown.
	Analysis model.Analysis `json:"analysis"`

	// IsWarning is true when the verdict came from a warning signal.
	IsWarning bool `json:"is_warning"`

	// Kind is the warning kind, "" when IsWarning is false.
	Kind model.WarningKind `json:"kind,omitempty"`

	// Status is the one-line verdict.
	Status string `json:"status"`
}

func newView(a model.Analysis, kind model.WarningKind) *View {
	isWarning := kind != ""
	return &View{
		Analysis:  a,
		IsWarning: isWarning,
		Kind:      kind,
		Status:    a.StatusText(isWarning),
	}
}

// Panel is the short-lived UI context for the active page.
type Panel struct {
	bus          *bridge.Bus
	store        *cache.Store
	activeURL    string
	pollInterval time.Duration
	pollTimeout  time.Duration
	logger       *slog.Logger

	port *bridge.Port
}

// PanelOption configures a Panel.
type PanelOption func(*Panel)

// WithPollInterval sets the period between two cache reads.
func WithPollInterval(d time.Duration) PanelOption {
	return func(p *Panel) {
		if d > 0 {
			p.pollInterval = d
		}
	}
}

// WithPollTimeout sets how long TriggerAnalysis waits for a result.
func WithPollTimeout(d time.Duration) PanelOption {
	return func(p *Panel) {
		if d > 0 {
			p.pollTimeout = d
		}
	}
}

// WithPanelLogger sets the logger.
func WithPanelLogger(logger *slog.Logger) PanelOption {
	return func(p *Panel) {
		p.logger = logger
	}
}

// NewPanel creates a panel for the page at activeURL.
func NewPanel(bus *bridge.Bus, store *cache.Store, activeURL string, opts ...PanelOption) *Panel {
	p := &Panel{
		bus:          bus,
		store:        store,
		activeURL:    activeURL,
		pollInterval: DefaultPollInterval,
		pollTimeout:  DefaultPollTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("context", bridge.EndpointPanel)
	return p
}

// Open connects to the background and returns the verdict to show: the
// pending warning if there is one, otherwise the cached verdict for the
// active page. It returns nil when there is nothing to show.
func (p *Panel) Open(ctx context.Context) (*View, error) {
	if p.port == nil {
		port, err := p.bus.Connect(ctx, bridge.EndpointBackground, bridge.PanelPort)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to background: %w", err)
		}
		p.port = port
	}

	signal, err := p.store.ConsumeWarning(ctx)
	if err != nil {
		p.logger.Warn("failed to read warning", "error", err)
	}
	if signal != nil {
		return newView(signal.Analysis, signal.Kind), nil
	}

	return p.cached(ctx), nil
}

// Close disconnects the panel port.
func (p *Panel) Close() {
	if p.port != nil {
		p.port.Disconnect()
		p.port = nil
	}
}

// TriggerAnalysis asks the page to analyze itself and polls the cache until
// a verdict appears or the poll timeout passes.
func (p *Panel) TriggerAnalysis(ctx context.Context) (*View, error) {
	resp, err := p.bus.Send(ctx, bridge.EndpointPage, bridge.Message{Kind: bridge.KindTriggerAnalysis})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPageUnreachable, err)
	}
	p.logger.Debug("analysis triggered", "status", resp.Status)

	return p.poll(ctx)
}

func (p *Panel) poll(ctx context.Context) (*View, error) {
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	timeout := time.NewTimer(p.pollTimeout)
	defer timeout.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			return nil, ErrAnalysisTimeout
		case <-ticker.C:
			if view := p.cached(ctx); view != nil {
				return view, nil
			}
		}
	}
}

func (p *Panel) cached(ctx context.Context) *View {
	result, err := p.store.Get(ctx, p.activeURL)
	if err != nil {
		p.logger.Warn("failed to read cached analysis", "url", p.activeURL, "error", err)
		return nil
	}
	if result == nil {
		return nil
	}
	return newView(result.Analysis, "")
}

// SetPageLogging turns page logs on or off and returns the new state.
func (p *Panel) SetPageLogging(ctx context.Context, enabled bool) (bool, error) {
	return p.logging(ctx, bridge.Message{Kind: bridge.KindSetLogging, Enabled: model.Bool(enabled)})
}

// TogglePageLogging flips page logs and returns the new state.
func (p *Panel) TogglePageLogging(ctx context.Context) (bool, error) {
	return p.logging(ctx, bridge.Message{Kind: bridge.KindToggleLogging})
}

// PageLogging reports whether page logs are on.
func (p *Panel) PageLogging(ctx context.Context) (bool, error) {
	return p.logging(ctx, bridge.Message{Kind: bridge.KindGetLoggingState})
}

func (p *Panel) logging(ctx context.Context, msg bridge.Message) (bool, error) {
	resp, err := p.bus.Send(ctx, bridge.EndpointPage, msg)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrPageUnreachable, err)
	}
	return resp.Enabled != nil && *resp.Enabled, nil
}

// Ingredients returns the avoided ingredients.
func (p *Panel) Ingredients(ctx context.Context) ([]string, error) {
	return p.store.AvoidedIngredients(ctx)
}

// AddIngredient adds ingredient to the avoided list.
func (p *Panel) AddIngredient(ctx context.Context, ingredient string) error {
	if strings.TrimSpace(ingredient) == "" {
		return ErrEmptyIngredient
	}
	added, err := p.store.AddAvoidedIngredient(ctx, ingredient)
	if err != nil {
		return err
	}
	if !added {
		return ErrDuplicateIngredient
	}
	return nil
}

// RemoveIngredient removes ingredient from the avoided list.
func (p *Panel) RemoveIngredient(ctx context.Context, ingredient string) error {
	removed, err := p.store.RemoveAvoidedIngredient(ctx, ingredient)
	if err != nil {
		return err
	}
	if !removed {
		return ErrIngredientNotFound
	}
	return nil
}

// History returns the analysis history, newest first.
func (p *Panel) History(ctx context.Context) ([]model.HistoryEntry, error) {
	return p.store.History(ctx)
}

// ClearHistory removes the analysis history.
func (p *Panel) ClearHistory(ctx context.Context) error {
	return p.store.ClearHistory(ctx)
}
