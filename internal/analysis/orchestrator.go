package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/classifier"
	"github.com/nao1215/vegancheck/internal/metrics"
	"github.com/nao1215/vegancheck/internal/model"
)

// Classifier produces a verdict for a page snapshot.
type Classifier interface {
	Analyze(ctx context.Context, req classifier.Request) (*model.AnalysisResult, error)
}

// Orchestrator coordinates the cache, the classifier and the notifier.
type Orchestrator struct {
	store      *cache.Store
	classifier Classifier
	notifier   Notifier
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithNotifier sets the notifier used for warnings.
func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithMetrics sets the metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) {
		o.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// New creates an Orchestrator.
func New(store *cache.Store, c Classifier, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:      store,
		classifier: c,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.notifier == nil {
		o.notifier = NewBadgeNotifier(o.logger)
	}
	return o
}

// Notifier returns the notifier warnings are sent to.
func (o *Orchestrator) Notifier() Notifier {
	return o.notifier
}

// Analyze returns the verdict for content, from the cache when a fresh
// entry exists and from the classifier otherwise.
//
// A classifier failure returns the error and writes nothing. Storage
// failures are logged and treated as a missing value.
func (o *Orchestrator) Analyze(ctx context.Context, content model.PageContent) (*model.AnalysisResult, error) {
	o.logger.Debug("analyzing page", "url", content.URL)

	cached, err := o.store.Get(ctx, content.URL)
	if err != nil {
		o.logger.Warn("cache lookup failed, treating as miss", "url", content.URL, "error", err)
	}
	o.metrics.RecordCacheLookup(cached != nil)

	if cached != nil {
		o.logger.Info("using cached analysis result", "url", content.URL)
		o.raiseWarnings(ctx, cached.Analysis)
		return cached, nil
	}

	avoided, err := o.store.AvoidedIngredients(ctx)
	if err != nil {
		o.logger.Warn("failed to read avoided ingredients", "error", err)
		avoided = nil
	}

	start := time.Now()
	result, err := o.classifier.Analyze(ctx, classifier.NewRequest(content, avoided))
	o.metrics.RecordClassifierCall(err, time.Since(start))
	if err != nil {
		o.logger.Error("analysis failed", "url", content.URL, "error", err)
		return nil, err
	}
	o.logger.Info("analysis completed", "url", content.URL, "elapsed", time.Since(start))

	if _, err := o.store.RecordAnalysis(ctx, content.URL, *result, content.Title); err != nil {
		o.logger.Warn("failed to record analysis", "url", content.URL, "error", err)
	} else {
		o.metrics.RecordHistoryWrite()
	}

	o.raiseWarnings(ctx, result.Analysis)
	return result, nil
}

// Warnings returns the warnings an analysis raises, in evaluation order.
// A non-vegan shopping item raises non_vegan; any avoided ingredient raises
// avoided_ingredients, even for vegan products.
func Warnings(a model.Analysis) []model.WarningKind {
	var kinds []model.WarningKind
	if a.IsNonVeganShoppingItem() {
		kinds = append(kinds, model.WarningNonVegan)
	}
	if a.HasAvoidedIngredients() {
		kinds = append(kinds, model.WarningAvoidedIngredients)
	}
	return kinds
}

func (o *Orchestrator) raiseWarnings(ctx context.Context, a model.Analysis) {
	for _, kind := range Warnings(a) {
		o.raise(ctx, a, kind)
	}
}

// raise persists the warning for the panel and asks for the user's attention.
func (o *Orchestrator) raise(ctx context.Context, a model.Analysis, kind model.WarningKind) {
	o.logger.Info("raising warning", "kind", kind)
	o.metrics.RecordWarning(kind.String())

	if err := o.store.SetWarning(ctx, model.WarningSignal{Analysis: a, Kind: kind}); err != nil {
		o.logger.Warn("failed to store warning", "kind", kind, "error", err)
	}

	o.notifier.Notify(NotificationTitle, NotificationMessage)
	o.notifier.SetBadge(BadgeText, kind.BadgeColor())
	o.notifier.OpenPanel()
}
