package extension

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/analysis"
	"github.com/nao1215/vegancheck/internal/bridge"
	"github.com/nao1215/vegancheck/internal/cache"
	"github.com/nao1215/vegancheck/internal/cartintent"
	"github.com/nao1215/vegancheck/internal/classifier"
	"github.com/nao1215/vegancheck/internal/dom"
	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/storage"
)

const (
	productURL  = "https://shop.example/milk-chocolate"
	productPage = `<html><head><title>Milk Chocolate Bar</title></head><body>
<main id="main">
  <h1>Milk Chocolate Bar</h1>
  <p>Ingredients: sugar, cocoa butter, whole milk powder.</p>
  <button id="add">Add to Cart</button>
  <a id="help" href="/help">Help</a>
</main>
</body></html>`
)

// stubClassifier returns a fixed verdict and records requests.
type stubClassifier struct {
	mu       sync.Mutex
	result   *model.AnalysisResult
	err      error
	requests []classifier.Request
}

func (s *stubClassifier) Analyze(_ context.Context, req classifier.Request) (*model.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	r := *s.result
	return &r, nil
}

func (s *stubClassifier) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

func (s *stubClassifier) lastRequest() classifier.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

// countingHealth counts health checks.
type countingHealth struct {
	calls atomic.Int32
}

func (h *countingHealth) Health(context.Context) error {
	h.calls.Add(1)
	return errors.New("unreachable")
}

func nonVeganResult() *model.AnalysisResult {
	return &model.AnalysisResult{
		Analysis: model.Analysis{
			IsShoppingItem:  model.Bool(true),
			IsVegan:         model.Bool(false),
			ConfidenceLevel: model.ConfidencePtr(model.ConfidenceHigh),
			Summary:         "Contains milk",
			Explanation:     "Whole milk powder is an animal product.",
		},
	}
}

type harness struct {
	session    *Session
	store      *cache.Store
	classifier *stubClassifier
	notifier   *analysis.BadgeNotifier
}

func newHarness(t *testing.T, result *model.AnalysisResult, err error, opts ...SessionOption) *harness {
	t.Helper()

	doc, parseErr := dom.Parse(strings.NewReader(productPage), productURL)
	if parseErr != nil {
		t.Fatalf("failed to parse page: %v", parseErr)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := &harness{
		store:      cache.NewStore(storage.NewMemory(), cache.WithLogger(logger)),
		classifier: &stubClassifier{result: result, err: err},
		notifier:   analysis.NewBadgeNotifier(logger),
	}
	orch := analysis.New(h.store, h.classifier,
		analysis.WithNotifier(h.notifier),
		analysis.WithLogger(logger),
	)

	opts = append([]SessionOption{
		WithSessionLogger(logger),
		WithPanelOptions(WithPollInterval(5*time.Millisecond), WithPollTimeout(time.Second)),
	}, opts...)
	h.session = NewSession(doc, orch, h.store, opts...)

	if err := h.session.Start(t.Context()); err != nil {
		t.Fatalf("failed to start session: %v", err)
	}
	t.Cleanup(func() {
		if err := h.session.Close(); err != nil {
			t.Errorf("failed to close session: %v", err)
		}
	})
	return h
}

func (h *harness) element(t *testing.T, id string) *html.Node {
	t.Helper()

	var found *html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found != nil {
			return
		}
		if n.Type == html.ElementNode && dom.Attr(n, "id") == id {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(h.session.Page.Document().Root())
	if found == nil {
		t.Fatalf("element #%s not found", id)
	}
	return found
}

// sync waits for everything already queued on the background loop.
func (h *harness) sync(t *testing.T) {
	t.Helper()

	if _, err := h.session.Bus.Send(t.Context(), bridge.EndpointBackground, bridge.Message{Kind: "PING"}); err != nil {
		t.Fatalf("failed to sync background: %v", err)
	}
}

// TestSession_CartClick tests the click to warning to panel flow.
func TestSession_CartClick(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nonVeganResult(), nil)
	ctx := t.Context()

	add := h.element(t, "add")
	if !dom.HasAttr(add, cartintent.MarkerAttr) {
		t.Fatal("cart button should be armed at start")
	}
	if dom.HasAttr(h.element(t, "help"), cartintent.MarkerAttr) {
		t.Error("help link must not be armed")
	}

	if _, err := h.session.Page.Click(ctx, add); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	h.session.Settle()

	if h.classifier.calls() != 1 {
		t.Fatalf("expected 1 classifier call, got %d", h.classifier.calls())
	}
	req := h.classifier.lastRequest()
	if req.URL != productURL || req.Title != "Milk Chocolate Bar" {
		t.Errorf("unexpected request page %q %q", req.URL, req.Title)
	}

	if got := h.notifier.Badge(); got.Color != model.BadgeColorAlert || got.Text != analysis.BadgeText {
		t.Errorf("unexpected badge %+v", got)
	}
	history, err := h.store.History(ctx)
	if err != nil {
		t.Fatalf("History failed: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(history))
	}

	panel := h.session.NewPanel()
	view, err := panel.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if view == nil || !view.IsWarning || view.Kind != model.WarningNonVegan {
		t.Fatalf("expected a non_vegan warning view, got %+v", view)
	}
	if view.Status != "⚠️ The last added item is NOT VEGAN" {
		t.Errorf("unexpected status %q", view.Status)
	}

	panel.Close()
	h.sync(t)

	if got := h.notifier.Badge(); got != (analysis.Badge{}) {
		t.Errorf("closing the panel should clear the badge, got %+v", got)
	}

	reopened := h.session.NewPanel()
	defer reopened.Close()
	view, err = reopened.Open(ctx)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if view == nil || view.IsWarning {
		t.Errorf("reopening should show the cached verdict, got %+v", view)
	}
}

// TestSession_GateDropsRepeatedClicks tests that rapid clicks start one analysis.
func TestSession_GateDropsRepeatedClicks(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nonVeganResult(), nil)
	ctx := t.Context()
	add := h.element(t, "add")

	for range 3 {
		if _, err := h.session.Page.Click(ctx, add); err != nil {
			t.Fatalf("click failed: %v", err)
		}
	}
	h.session.Settle()

	if got := h.session.Page.Sent(); got != 1 {
		t.Errorf("expected 1 snapshot sent, got %d", got)
	}
	if got := h.classifier.calls(); got != 1 {
		t.Errorf("expected 1 classifier call, got %d", got)
	}
}

// TestSession_DynamicControls tests that controls rendered later are armed.
func TestSession_DynamicControls(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nonVeganResult(), nil)
	ctx := t.Context()
	main := h.element(t, "main")

	if err := h.session.Page.AppendHTML(ctx, main, `<p>Reviews</p>`); err != nil {
		t.Fatalf("AppendHTML failed: %v", err)
	}
	if got := h.session.Page.Detector().Rescans(); got != 0 {
		t.Errorf("text-only mutation should not rescan, got %d", got)
	}

	if err := h.session.Page.AppendHTML(ctx, main, `<div><button id="late">Buy Now</button></div>`); err != nil {
		t.Fatalf("AppendHTML failed: %v", err)
	}
	if got := h.session.Page.Detector().Rescans(); got != 1 {
		t.Errorf("expected 1 rescan, got %d", got)
	}

	late := h.element(t, "late")
	if !dom.HasAttr(late, cartintent.MarkerAttr) {
		t.Fatal("dynamically added button should be armed")
	}
	if _, err := h.session.Page.Click(ctx, late); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	h.session.Settle()

	if got := h.classifier.calls(); got != 1 {
		t.Errorf("expected 1 classifier call, got %d", got)
	}
}

// TestPanel_TriggerAnalysis tests the manual path.
func TestPanel_TriggerAnalysis(t *testing.T) {
	t.Parallel()

	t.Run("returns the verdict once it is cached", func(t *testing.T) {
		t.Parallel()

		vegan := &model.AnalysisResult{Analysis: model.Analysis{
			IsShoppingItem:  model.Bool(true),
			IsVegan:         model.Bool(true),
			ConfidenceLevel: model.ConfidencePtr(model.ConfidenceMedium),
		}}
		h := newHarness(t, vegan, nil)
		panel := h.session.NewPanel()
		defer panel.Close()

		view, err := panel.TriggerAnalysis(t.Context())
		if err != nil {
			t.Fatalf("TriggerAnalysis failed: %v", err)
		}
		if view.IsWarning {
			t.Error("manual verdicts are not warnings")
		}
		if view.Status != "🌱 This item is LIKELY vegan" {
			t.Errorf("unexpected status %q", view.Status)
		}
		if h.notifier.Badge() != (analysis.Badge{}) {
			t.Error("a vegan verdict must not set the badge")
		}
	})

	t.Run("manual trigger bypasses the click gate", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nonVeganResult(), nil)
		h.session.Page.Detector().Gate().TryAcquire()

		panel := h.session.NewPanel()
		defer panel.Close()

		if _, err := panel.TriggerAnalysis(t.Context()); err != nil {
			t.Fatalf("TriggerAnalysis failed: %v", err)
		}
		if got := h.session.Page.Sent(); got != 1 {
			t.Errorf("expected 1 snapshot sent, got %d", got)
		}
	})

	t.Run("times out when the classifier fails", func(t *testing.T) {
		t.Parallel()

		h := newHarness(t, nil, errors.New("boom"),
			WithPanelOptions(WithPollTimeout(50*time.Millisecond)),
		)
		panel := h.session.NewPanel()
		defer panel.Close()

		_, err := panel.TriggerAnalysis(t.Context())
		if !errors.Is(err, ErrAnalysisTimeout) {
			t.Errorf("expected ErrAnalysisTimeout, got %v", err)
		}
		h.session.Settle()

		history, _ := h.store.History(t.Context())
		if len(history) != 0 {
			t.Error("a failed analysis must not be recorded")
		}
	})
}

// TestPanel_PageLogging tests the logging messages.
func TestPanel_PageLogging(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nonVeganResult(), nil)
	ctx := t.Context()
	panel := h.session.NewPanel()

	enabled, err := panel.PageLogging(ctx)
	if err != nil || enabled {
		t.Fatalf("page logging should start off, got %v %v", enabled, err)
	}
	if enabled, _ = panel.TogglePageLogging(ctx); !enabled {
		t.Error("toggle should enable page logging")
	}
	if !h.session.Page.LogSwitch().Enabled() {
		t.Error("the page switch should follow the toggle")
	}
	if enabled, _ = panel.SetPageLogging(ctx, false); enabled {
		t.Error("set false should disable page logging")
	}
}

// TestPanel_Ingredients tests the avoided ingredients list.
func TestPanel_Ingredients(t *testing.T) {
	t.Parallel()

	h := newHarness(t, nonVeganResult(), nil)
	ctx := t.Context()
	panel := h.session.NewPanel()

	if err := panel.AddIngredient(ctx, " gelatin "); err != nil {
		t.Fatalf("AddIngredient failed: %v", err)
	}
	if err := panel.AddIngredient(ctx, "gelatin"); !errors.Is(err, ErrDuplicateIngredient) {
		t.Errorf("expected ErrDuplicateIngredient, got %v", err)
	}
	if err := panel.AddIngredient(ctx, "   "); !errors.Is(err, ErrEmptyIngredient) {
		t.Errorf("expected ErrEmptyIngredient, got %v", err)
	}
	if err := panel.RemoveIngredient(ctx, "honey"); !errors.Is(err, ErrIngredientNotFound) {
		t.Errorf("expected ErrIngredientNotFound, got %v", err)
	}

	if _, err := h.session.Page.Click(ctx, h.element(t, "add")); err != nil {
		t.Fatalf("click failed: %v", err)
	}
	h.session.Settle()

	if got := h.classifier.lastRequest().UserAvoidedIngredients; !slices.Equal(got, []string{"gelatin"}) {
		t.Errorf("request should carry avoided ingredients, got %v", got)
	}

	if err := panel.RemoveIngredient(ctx, "gelatin"); err != nil {
		t.Fatalf("RemoveIngredient failed: %v", err)
	}
	got, err := panel.Ingredients(ctx)
	if err != nil || len(got) != 0 {
		t.Errorf("expected no ingredients, got %v %v", got, err)
	}
}

// TestBackground tests message acknowledgement and startup work.
func TestBackground(t *testing.T) {
	t.Parallel()

	health := &countingHealth{}
	var analyzed atomic.Int32
	h := newHarness(t, nonVeganResult(), nil, WithBackgroundOptions(
		WithHealthChecker(health),
		WithOnAnalyzed(func(model.PageContent, *model.AnalysisResult, error) { analyzed.Add(1) }),
	))
	ctx := t.Context()

	resp, err := h.session.Bus.Send(ctx, bridge.EndpointBackground, bridge.Message{Kind: bridge.KindContentForAnalysis})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Status != bridge.StatusError {
		t.Errorf("content without a snapshot should be rejected, got %q", resp.Status)
	}

	content := model.NewPageContent(productURL, "Milk Chocolate Bar", "# Milk", time.Now())
	resp, err = h.session.Bus.Send(ctx, bridge.EndpointBackground, bridge.Message{
		Kind:    bridge.KindContentForAnalysis,
		Content: &content,
	})
	if err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	if resp.Status != bridge.StatusReceived {
		t.Errorf("expected received, got %q", resp.Status)
	}
	h.session.Settle()

	if analyzed.Load() != 1 {
		t.Errorf("expected 1 analysis callback, got %d", analyzed.Load())
	}

	if err := h.session.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if health.calls.Load() != 1 {
		t.Errorf("expected 1 health check, got %d", health.calls.Load())
	}
}

// TestNewPage_GateOptions tests how the page picks its gate.
func TestNewPage_GateOptions(t *testing.T) {
	t.Parallel()

	doc, err := dom.Parse(strings.NewReader(productPage), productURL)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	bus := bridge.NewBus(slog.New(slog.NewTextHandler(io.Discard, nil)))

	tests := []struct {
		name string
		opts []PageOption
		want time.Duration
	}{
		{"default", nil, cartintent.DefaultGateTimeout},
		{"gate timeout", []PageOption{WithGateTimeout(time.Minute)}, time.Minute},
		{"explicit gate wins", []PageOption{WithGateTimeout(time.Minute), WithGate(cartintent.NewGate(time.Second))}, time.Second},
	}
	for _, tt := range tests {
		page := NewPage(bus, doc, tt.opts...)
		if got := page.Detector().Gate().Timeout(); got != tt.want {
			t.Errorf("%s: gate timeout = %v, want %v", tt.name, got, tt.want)
		}
	}
}
