package cartintent

import (
	"log/slog"
	"sync/atomic"

	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/dom"
)

// Trigger starts an analysis for the clicked control.
type Trigger func(target *html.Node)

// Detector arms purchase controls on one document.
type Detector struct {
	// doc is the page being watched.
	doc *dom.Document

	// trigger runs when an armed control is clicked and the gate is free.
	trigger Trigger

	// gate drops clicks while a previous analysis is starting.
	gate *Gate

	logger *slog.Logger

	// rescans counts full scans caused by mutations.
	rescans atomic.Int64
}

// DetectorOption configures a Detector.
type DetectorOption func(*Detector)

// WithGate sets the in-flight gate. Pages sharing a gate share its window.
func WithGate(gate *Gate) DetectorOption {
	return func(d *Detector) {
		d.gate = gate
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) DetectorOption {
	return func(d *Detector) {
		d.logger = logger
	}
}

// NewDetector creates a Detector for doc.
func NewDetector(doc *dom.Document, trigger Trigger, opts ...DetectorOption) *Detector {
	d := &Detector{
		doc:     doc,
		trigger: trigger,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.gate == nil {
		d.gate = NewGate(DefaultGateTimeout)
	}
	return d
}

// Gate returns the detector's in-flight gate.
func (d *Detector) Gate() *Gate {
	return d.gate
}

// Arm scans the document and attaches the click handler to every purchase
// control not yet flagged with MarkerAttr. It returns the number of
// controls armed by this call.
func (d *Detector) Arm() int {
	matches := Scan(d.doc.Root())
	d.logger.Debug("detected cart controls", "url", d.doc.URL(), "count", len(matches))

	armed := 0
	for _, n := range matches {
		if dom.HasAttr(n, MarkerAttr) {
			continue
		}
		dom.SetAttr(n, MarkerAttr, "true")
		d.doc.AddClickListener(n, d.handleClick)
		armed++

		d.logger.Debug("armed cart control", "control", dom.Describe(n))
	}
	return armed
}

// Watch rescans whenever a mutation batch adds a candidate control, either
// directly or inside an added subtree. It returns a function that stops
// watching.
func (d *Detector) Watch() (stop func()) {
	return d.doc.OnSubtreeChanged(func(added []*html.Node) {
		if !anyCandidate(added) {
			return
		}
		d.rescans.Add(1)
		if n := d.Arm(); n > 0 {
			d.logger.Debug("armed dynamically added cart controls", "count", n)
		}
	})
}

// Rescans returns how many mutation batches triggered a full rescan.
func (d *Detector) Rescans() int64 {
	return d.rescans.Load()
}

// handleClick starts an analysis unless one started within the gate window.
func (d *Detector) handleClick(target *html.Node) {
	if !d.gate.TryAcquire() {
		d.logger.Debug("analysis already in progress, skipping click")
		return
	}

	signals := SignalsOf(target)
	d.logger.Info("cart control clicked",
		"tag", target.Data,
		"text", signals.Text,
		"class", signals.Class,
		"id", signals.ID,
		"aria_label", signals.AriaLabel,
	)

	d.trigger(target)
}

func anyCandidate(nodes []*html.Node) bool {
	for _, n := range nodes {
		if ContainsCandidate(n) {
			return true
		}
	}
	return false
}
