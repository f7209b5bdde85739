package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/nao1215/vegancheck/internal/analysis"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/cartintent"
	"github.com/nao1215/vegancheck/internal/dom"
	"github.com/nao1215/vegancheck/internal/extension"
	"github.com/nao1215/vegancheck/internal/fetch"
	"github.com/nao1215/vegancheck/internal/metrics"
	"github.com/nao1215/vegancheck/internal/model"
)

// Trigger modes of the analyze step.
const (
	// TriggerAuto clicks the first purchase control, or uses the manual
	// trigger when the page has none.
	TriggerAuto = "auto"

	// TriggerClick always clicks. Pages without a purchase control fail.
	TriggerClick = "click"

	// TriggerManual always uses the panel's manual trigger.
	TriggerManual = "manual"
)

// ErrNoCartControl is returned when a click is required but the page has
// no purchase control.
var ErrNoCartControl = errors.New("page has no purchase control to click")

// ErrPageNotParsed is returned when a step needs the document before the
// parse step has run.
var ErrPageNotParsed = errors.New("page has not been parsed")

// FetchStep loads the target.
type FetchStep struct {
	fetcher *fetch.Fetcher
}

// NewFetchStep creates a FetchStep.
func NewFetchStep(fetcher *fetch.Fetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do implements Step.
func (s *FetchStep) Do(ctx context.Context, report *model.PageReport) error {
	page, err := s.fetcher.Fetch(ctx, report.Target)
	if err != nil {
		return err
	}
	report.URL = page.URL
	report.StatusCode = page.StatusCode
	report.Body = page.Body
	return nil
}

// ParseStep parses the fetched body.
type ParseStep struct{}

// NewParseStep creates a ParseStep.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do implements Step. The raw body is released once parsed.
func (s *ParseStep) Do(_ context.Context, report *model.PageReport) error {
	doc, err := dom.ParseBytes(report.Body, report.URL)
	if err != nil {
		return err
	}
	report.Root = doc.Root()
	report.Title = doc.Title()
	report.Body = nil
	return nil
}

// CartScanStep lists the purchase controls on the page.
type CartScanStep struct{}

// NewCartScanStep creates a CartScanStep.
func NewCartScanStep() *CartScanStep {
	return &CartScanStep{}
}

// Name returns the step name.
func (s *CartScanStep) Name() string {
	return "cart_scan"
}

// Do implements Step.
func (s *CartScanStep) Do(_ context.Context, report *model.PageReport) error {
	if report.Root == nil {
		return ErrPageNotParsed
	}
	for _, n := range cartintent.Scan(report.Root) {
		text := strings.TrimSpace(dom.TextContent(n))
		if text == "" {
			text = strings.TrimSpace(dom.Attr(n, "value"))
		}
		report.CartControls = append(report.CartControls, model.CartControl{
			Tag:   n.Data,
			Text:  text,
			ID:    dom.Attr(n, "id"),
			Class: dom.Attr(n, "class"),
		})
	}
	return nil
}

// AnalyzeStep runs the page through an extension session.
type AnalyzeStep struct {
	orchestrator *analysis.Orchestrator
	store        *cache.Store
	trigger      string
	sessionOpts  []extension.SessionOption
	metrics      *metrics.Metrics
	logger       *slog.Logger
}

// AnalyzeStepOption configures an AnalyzeStep.
type AnalyzeStepOption func(*AnalyzeStep)

// WithTrigger sets the trigger mode. Unknown modes behave like TriggerAuto.
func WithTrigger(mode string) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.trigger = mode
	}
}

// WithSessionOptions passes options to every session.
func WithSessionOptions(opts ...extension.SessionOption) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.sessionOpts = append(s.sessionOpts, opts...)
	}
}

// WithAnalyzeMetrics records purchase-control clicks.
func WithAnalyzeMetrics(m *metrics.Metrics) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.metrics = m
	}
}

// WithAnalyzeLogger sets the logger.
func WithAnalyzeLogger(logger *slog.Logger) AnalyzeStepOption {
	return func(s *AnalyzeStep) {
		s.logger = logger
	}
}

// NewAnalyzeStep creates an AnalyzeStep.
func NewAnalyzeStep(orchestrator *analysis.Orchestrator, store *cache.Store, opts ...AnalyzeStepOption) *AnalyzeStep {
	s := &AnalyzeStep{
		orchestrator: orchestrator,
		store:        store,
		trigger:      TriggerAuto,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the step name.
func (s *AnalyzeStep) Name() string {
	return "analyze"
}

// Do implements Step.
func (s *AnalyzeStep) Do(ctx context.Context, report *model.PageReport) (err error) {
	if report.Root == nil {
		return ErrPageNotParsed
	}

	// waitCtx is canceled with the classifier error so the panel stops
	// polling for a result that will never come.
	waitCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	var (
		content *model.PageContent
		result  *model.AnalysisResult
	)
	onAnalyzed := func(c model.PageContent, r *model.AnalysisResult, analyzeErr error) {
		content, result = &c, r
		if analyzeErr != nil {
			cancel(analyzeErr)
		}
	}

	doc := dom.NewDocument(report.Root, report.URL)
	opts := append([]extension.SessionOption{
		extension.WithSessionLogger(s.logger),
		extension.WithBackgroundOptions(extension.WithOnAnalyzed(onAnalyzed)),
	}, s.sessionOpts...)
	session := extension.NewSession(doc, s.orchestrator, s.store, opts...)

	if err := session.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if closeErr := session.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close session: %w", closeErr)
		}
	}()

	mode := s.mode(report)
	report.Trigger = mode

	var view *extension.View
	switch mode {
	case TriggerClick:
		view, err = s.click(waitCtx, session)
	default:
		view, err = s.manual(waitCtx, session)
	}

	// Settle before reading what the background stored in the callbacks.
	session.Settle()
	if cause := context.Cause(waitCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		err = cause
	}
	if err != nil {
		return err
	}

	report.Content = content
	report.Result = result
	if result != nil {
		report.Warnings = append(report.Warnings, analysis.Warnings(result.Analysis)...)
		if n := len(report.Warnings); n > 0 {
			report.Badge = report.Warnings[n-1].BadgeColor()
		}
	}
	if view != nil {
		report.Verdict = view.Status
	}
	return nil
}

func (s *AnalyzeStep) mode(report *model.PageReport) string {
	switch s.trigger {
	case TriggerClick, TriggerManual:
		return s.trigger
	default:
		if len(report.CartControls) > 0 {
			return TriggerClick
		}
		return TriggerManual
	}
}

// click presses the first armed purchase control, then opens the panel
// the way the warning notification asks the user to.
func (s *AnalyzeStep) click(ctx context.Context, session *extension.Session) (*extension.View, error) {
	controls := cartintent.Scan(session.Page.Document().Root())
	if len(controls) == 0 {
		return nil, ErrNoCartControl
	}

	s.logger.Debug("clicking purchase control", "control", dom.Describe(controls[0]))
	sent := session.Page.Sent()
	if _, err := session.Page.Click(ctx, controls[0]); err != nil {
		return nil, err
	}
	// A click dropped by a held gate sends nothing.
	if session.Page.Sent() > sent {
		s.metrics.RecordCartClick()
	} else {
		s.logger.Debug("purchase click ignored while an analysis is in flight")
	}
	session.Settle()

	panel := session.NewPanel()
	defer panel.Close()
	return panel.Open(ctx)
}

func (s *AnalyzeStep) manual(ctx context.Context, session *extension.Session) (*extension.View, error) {
	panel := session.NewPanel()
	defer panel.Close()
	return panel.TriggerAnalysis(ctx)
}

// DefaultPipeline builds the fetch, parse, cart_scan and analyze pipeline.
func DefaultPipeline(fetcher *fetch.Fetcher, orchestrator *analysis.Orchestrator, store *cache.Store, pipelineOpts []Option, analyzeOpts ...AnalyzeStepOption) *Pipeline {
	p := New(pipelineOpts...)
	p.AddSteps(
		NewFetchStep(fetcher),
		NewParseStep(),
		NewCartScanStep(),
		NewAnalyzeStep(orchestrator, store, analyzeOpts...),
	)
	return p
}
