package extension

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/bridge"
	"github.com/nao1215/vegancheck/internal/cartintent"
	"github.com/nao1215/vegancheck/internal/dom"
	vlog "github.com/nao1215/vegancheck/internal/log"
	"github.com/nao1215/vegancheck/internal/model"
	"github.com/nao1215/vegancheck/internal/normalize"
)

// DefaultSendTimeout bounds how long the page waits for the background to
// acknowledge content.
const DefaultSendTimeout = 5 * time.Second

// Page is the content-script context of one document.
type Page struct {
	bus       *bridge.Bus
	endpoint  *bridge.Endpoint
	doc       *dom.Document
	extractor *normalize.Extractor
	detector  *cartintent.Detector
	logSwitch *vlog.Switch

	// logger is gated by logSwitch.
	logger      *slog.Logger
	sendTimeout time.Duration

	stopWatch func()
	pending   sync.WaitGroup
	sent      atomic.Int64
}

type pageOptions struct {
	extractorOpts []normalize.Option
	gate          *cartintent.Gate
	gateTimeout   time.Duration
	logSwitch     *vlog.Switch
	logger        *slog.Logger
	sendTimeout   time.Duration
}

// PageOption configures a Page.
type PageOption func(*pageOptions)

// WithExtractorOptions passes options to the page's content extractor.
func WithExtractorOptions(opts ...normalize.Option) PageOption {
	return func(o *pageOptions) {
		o.extractorOpts = append(o.extractorOpts, opts...)
	}
}

// WithGate sets the in-flight gate for cart clicks.
func WithGate(gate *cartintent.Gate) PageOption {
	return func(o *pageOptions) {
		o.gate = gate
	}
}

// WithGateTimeout gives the page its own gate with timeout d. It is
// ignored when WithGate is also given.
func WithGateTimeout(d time.Duration) PageOption {
	return func(o *pageOptions) {
		o.gateTimeout = d
	}
}

// WithLogSwitch sets the switch that gates page logs. The default switch is off.
func WithLogSwitch(sw *vlog.Switch) PageOption {
	return func(o *pageOptions) {
		o.logSwitch = sw
	}
}

// WithPageLogger sets the logger page logs are written to when enabled.
func WithPageLogger(logger *slog.Logger) PageOption {
	return func(o *pageOptions) {
		o.logger = logger
	}
}

// WithSendTimeout bounds the wait for the background's acknowledgement.
func WithSendTimeout(d time.Duration) PageOption {
	return func(o *pageOptions) {
		o.sendTimeout = d
	}
}

// NewPage creates the page context for doc on bus.
func NewPage(bus *bridge.Bus, doc *dom.Document, opts ...PageOption) *Page {
	o := &pageOptions{
		logger:      slog.Default(),
		gateTimeout: cartintent.DefaultGateTimeout,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.logSwitch == nil {
		o.logSwitch = vlog.NewSwitch(false)
	}
	if o.gate == nil {
		o.gate = cartintent.NewGate(o.gateTimeout)
	}

	logger := slog.New(vlog.NewSwitchHandler(o.logger.Handler(), o.logSwitch)).
		With("context", bridge.EndpointPage)

	p := &Page{
		bus:         bus,
		endpoint:    bus.Endpoint(bridge.EndpointPage),
		doc:         doc,
		logSwitch:   o.logSwitch,
		logger:      logger,
		sendTimeout: o.sendTimeout,
	}
	p.extractor = normalize.NewExtractor(append([]normalize.Option{normalize.WithLogger(logger)}, o.extractorOpts...)...)
	p.detector = cartintent.NewDetector(doc, p.onCartClick,
		cartintent.WithGate(o.gate),
		cartintent.WithLogger(logger),
	)
	return p
}

// Start registers the message handlers and arms cart detection on the
// page's loop. The page endpoint must be running.
func (p *Page) Start(ctx context.Context) error {
	p.endpoint.Handle(bridge.KindTriggerAnalysis, p.handleTrigger)
	p.endpoint.Handle(bridge.KindToggleLogging, p.handleToggleLogging)
	p.endpoint.Handle(bridge.KindSetLogging, p.handleSetLogging)
	p.endpoint.Handle(bridge.KindGetLoggingState, p.handleGetLoggingState)

	return p.endpoint.Call(ctx, func(context.Context) error {
		p.logger.Info("content script loaded, setting up cart detection", "url", p.doc.URL())
		armed := p.detector.Arm()
		p.stopWatch = p.detector.Watch()
		p.logger.Info("cart detection setup complete", "armed", armed)
		return nil
	})
}

// Stop stops watching the document for new controls.
func (p *Page) Stop(ctx context.Context) error {
	return p.endpoint.Call(ctx, func(context.Context) error {
		if p.stopWatch != nil {
			p.stopWatch()
			p.stopWatch = nil
		}
		return nil
	})
}

// Click dispatches a user click on target on the page's loop and returns
// the number of listeners that ran.
func (p *Page) Click(ctx context.Context, target *html.Node) (int, error) {
	var n int
	err := p.endpoint.Call(ctx, func(context.Context) error {
		n = p.doc.Click(target)
		return nil
	})
	return n, err
}

// AppendHTML inserts fragment under parent on the page's loop, as a script
// rendering new content would.
func (p *Page) AppendHTML(ctx context.Context, parent *html.Node, fragment string) error {
	return p.endpoint.Call(ctx, func(context.Context) error {
		return p.doc.AppendHTML(parent, fragment)
	})
}

// Document returns the page's document.
func (p *Page) Document() *dom.Document {
	return p.doc
}

// Detector returns the page's cart detector.
func (p *Page) Detector() *cartintent.Detector {
	return p.detector
}

// LogSwitch returns the switch gating page logs.
func (p *Page) LogSwitch() *vlog.Switch {
	return p.logSwitch
}

// Sent returns how many snapshots were sent for analysis.
func (p *Page) Sent() int64 {
	return p.sent.Load()
}

// Wait blocks until every snapshot sent so far has been acknowledged or
// has failed.
func (p *Page) Wait() {
	p.pending.Wait()
}

// onCartClick runs on the loop when an armed control is clicked and the gate
// is free.
func (p *Page) onCartClick(*html.Node) {
	p.sendSnapshot()
}

// sendSnapshot extracts the page on the loop and sends it without waiting
// for the acknowledgement.
func (p *Page) sendSnapshot() {
	content := p.extractor.Extract(p.doc)
	p.sent.Add(1)

	p.pending.Add(1)
	go func() {
		defer p.pending.Done()

		ctx, cancel := context.WithTimeout(context.Background(), p.sendTimeout)
		defer cancel()

		resp, err := p.bus.Send(ctx, bridge.EndpointBackground, bridge.Message{
			Kind:    bridge.KindContentForAnalysis,
			Content: &content,
		})
		if err != nil {
			p.logger.Error("failed to send content for analysis", "url", content.URL, "error", err)
			return
		}
		p.logger.Debug("content sent for analysis", "url", content.URL, "status", resp.Status)
	}()
}

func (p *Page) handleTrigger(context.Context, bridge.Message) bridge.Response {
	p.logger.Info("manual analysis triggered")
	p.sendSnapshot()
	return bridge.Response{Status: bridge.StatusAnalysisTriggered}
}

func (p *Page) handleToggleLogging(context.Context, bridge.Message) bridge.Response {
	enabled := p.logSwitch.Toggle()
	return bridge.Response{Status: bridge.StatusLoggingToggled, Enabled: model.Bool(enabled)}
}

// handleSetLogging treats a missing flag as false.
func (p *Page) handleSetLogging(_ context.Context, msg bridge.Message) bridge.Response {
	enabled := p.logSwitch.Set(msg.Enabled != nil && *msg.Enabled)
	return bridge.Response{Status: bridge.StatusLoggingSet, Enabled: model.Bool(enabled)}
}

func (p *Page) handleGetLoggingState(context.Context, bridge.Message) bridge.Response {
	return bridge.Response{Status: bridge.StatusLoggingState, Enabled: model.Bool(p.logSwitch.Enabled())}
}
