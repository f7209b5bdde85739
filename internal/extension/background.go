package extension

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/nao1215/vegancheck/internal/analysis"
	"github.com/nao1215/vegancheck/internal/bridge"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/model"
)

// DefaultHealthTimeout bounds the startup health probe.
const DefaultHealthTimeout = 10 * time.Second

// HealthChecker probes the classifier.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// AnalyzedFunc observes the outcome of every background analysis.
type AnalyzedFunc func(content model.PageContent, result *model.AnalysisResult, err error)

// Background is the long-lived worker context.
type Background struct {
	endpoint     *bridge.Endpoint
	orchestrator *analysis.Orchestrator
	store        *cache.Store
	health       HealthChecker
	sweeper      *cache.Sweeper
	onAnalyzed   AnalyzedFunc
	logger       *slog.Logger

	inflight sync.WaitGroup
	workers  sync.WaitGroup
}

// BackgroundOption configures a Background.
type BackgroundOption func(*Background)

// WithHealthChecker probes hc once at startup. Failures are only logged.
func WithHealthChecker(hc HealthChecker) BackgroundOption {
	return func(b *Background) {
		b.health = hc
	}
}

// WithSweeper runs s for as long as the background is running.
func WithSweeper(s *cache.Sweeper) BackgroundOption {
	return func(b *Background) {
		b.sweeper = s
	}
}

// WithOnAnalyzed sets a callback run after every analysis.
func WithOnAnalyzed(fn AnalyzedFunc) BackgroundOption {
	return func(b *Background) {
		b.onAnalyzed = fn
	}
}

// WithBackgroundLogger sets the logger.
func WithBackgroundLogger(logger *slog.Logger) BackgroundOption {
	return func(b *Background) {
		b.logger = logger
	}
}

// NewBackground creates the background context on bus.
func NewBackground(bus *bridge.Bus, orchestrator *analysis.Orchestrator, store *cache.Store, opts ...BackgroundOption) *Background {
	b := &Background{
		endpoint:     bus.Endpoint(bridge.EndpointBackground),
		orchestrator: orchestrator,
		store:        store,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("context", bridge.EndpointBackground)
	return b
}

// Start registers the handlers and launches the startup probe and the
// sweeper. Both stop with ctx.
func (b *Background) Start(ctx context.Context) {
	b.endpoint.Handle(bridge.KindContentForAnalysis, b.handleContent)
	b.endpoint.OnConnect(b.handleConnect)

	if b.health != nil {
		b.workers.Add(1)
		go func() {
			defer b.workers.Done()
			b.probe(ctx)
		}()
	}

	if b.sweeper != nil {
		b.workers.Add(1)
		go func() {
			defer b.workers.Done()
			b.sweeper.Start(ctx)
		}()
	}
}

// Wait blocks until every accepted analysis has finished.
func (b *Background) Wait() {
	b.inflight.Wait()
}

// Stopped blocks until the probe and the sweeper have returned. They stop
// when the context given to Start is done.
func (b *Background) Stopped() {
	b.workers.Wait()
}

func (b *Background) probe(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, DefaultHealthTimeout)
	defer cancel()

	if err := b.health.Health(ctx); err != nil {
		b.logger.Warn("classifier health check failed", "error", err)
		return
	}
	b.logger.Debug("classifier is healthy")
}

// handleContent acknowledges the snapshot and analyzes it off the loop.
// The analysis outlives the message: it is not canceled with the loop.
func (b *Background) handleContent(ctx context.Context, msg bridge.Message) bridge.Response {
	if msg.Content == nil {
		b.logger.Warn("content message without content")
		return bridge.Response{Status: bridge.StatusError}
	}
	content := *msg.Content
	runCtx := context.WithoutCancel(ctx)

	b.inflight.Add(1)
	go func() {
		defer b.inflight.Done()

		result, err := b.orchestrator.Analyze(runCtx, content)
		if err != nil {
			b.logger.Error("error analyzing content", "url", content.URL, "error", err)
		}
		if b.onAnalyzed != nil {
			b.onAnalyzed(content, result, err)
		}
	}()

	return bridge.Response{Status: bridge.StatusReceived}
}

// handleConnect watches the panel port. Closing the panel dismisses the
// warning it was opened for.
func (b *Background) handleConnect(port *bridge.Port) {
	if port.Name() != bridge.PanelPort {
		return
	}
	b.logger.Debug("panel opened")
	port.OnDisconnect(b.clearWarningState)
}

func (b *Background) clearWarningState() {
	b.logger.Debug("panel closed, clearing warning state")
	b.orchestrator.Notifier().ClearBadge()
	if err := b.store.ClearWarning(context.Background()); err != nil {
		b.logger.Warn("failed to clear warning", "error", err)
	}
}
