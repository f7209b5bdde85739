package extension

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/vegancheck/internal/analysis"
	"github.com/nao1215/vegancheck/internal/bridge"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/dom"
)

// Session runs the page and background contexts for one document and opens
// panels against them.
type Session struct {
	Bus        *bridge.Bus
	Page       *Page
	Background *Background

	store     *cache.Store
	panelOpts []PanelOption
	logger    *slog.Logger

	cancel context.CancelFunc
	group  *errgroup.Group
}

type sessionOptions struct {
	page       []PageOption
	background []BackgroundOption
	panel      []PanelOption
	logger     *slog.Logger
}

// SessionOption configures a Session.
type SessionOption func(*sessionOptions)

// WithPageOptions passes options to the page context.
func WithPageOptions(opts ...PageOption) SessionOption {
	return func(o *sessionOptions) {
		o.page = append(o.page, opts...)
	}
}

// WithBackgroundOptions passes options to the background context.
func WithBackgroundOptions(opts ...BackgroundOption) SessionOption {
	return func(o *sessionOptions) {
		o.background = append(o.background, opts...)
	}
}

// WithPanelOptions passes options to every panel opened by the session.
func WithPanelOptions(opts ...PanelOption) SessionOption {
	return func(o *sessionOptions) {
		o.panel = append(o.panel, opts...)
	}
}

// WithSessionLogger sets the logger shared by the contexts. Page logs are
// additionally gated by the page's log switch.
func WithSessionLogger(logger *slog.Logger) SessionOption {
	return func(o *sessionOptions) {
		o.logger = logger
	}
}

// NewSession wires a page for doc to a background analyzing through
// orchestrator and store.
func NewSession(doc *dom.Document, orchestrator *analysis.Orchestrator, store *cache.Store, opts ...SessionOption) *Session {
	o := &sessionOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}

	bus := bridge.NewBus(o.logger)
	return &Session{
		Bus:        bus,
		Page:       NewPage(bus, doc, append([]PageOption{WithPageLogger(o.logger)}, o.page...)...),
		Background: NewBackground(bus, orchestrator, store, append([]BackgroundOption{WithBackgroundLogger(o.logger)}, o.background...)...),
		store:      store,
		panelOpts:  append([]PanelOption{WithPanelLogger(o.logger)}, o.panel...),
		logger:     o.logger,
	}
}

// Start runs both event loops and arms the page. The session stops when
// ctx is done or Close is called.
func (s *Session) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	group, gctx := errgroup.WithContext(ctx)
	s.cancel = cancel
	s.group = group

	page := s.Bus.Endpoint(bridge.EndpointPage)
	background := s.Bus.Endpoint(bridge.EndpointBackground)
	group.Go(func() error { return page.Run(gctx) })
	group.Go(func() error { return background.Run(gctx) })

	s.Background.Start(gctx)
	if err := s.Page.Start(gctx); err != nil {
		_ = s.Close()
		return fmt.Errorf("failed to start page: %w", err)
	}
	return nil
}

// NewPanel opens a panel for the session's page. The caller must Close it.
func (s *Session) NewPanel() *Panel {
	return NewPanel(s.Bus, s.store, s.Page.Document().URL(), s.panelOpts...)
}

// Settle blocks until every snapshot sent by the page has been analyzed.
func (s *Session) Settle() {
	s.Page.Wait()
	s.Background.Wait()
}

// Close settles the session and stops both loops.
func (s *Session) Close() error {
	if s.cancel == nil {
		return nil
	}
	s.Settle()
	s.cancel()
	err := s.group.Wait()
	s.Background.Stopped()
	s.cancel = nil
	return err
}
