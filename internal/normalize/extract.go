package normalize

import (
	"log/slog"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/dom"
	"github.com/nao1215/vegancheck/internal/model"
)

// Selectors removed from the cloned body before rendering.
const (
	// EmbeddedSelector matches executable and embedded content.
	EmbeddedSelector = "script, style, noscript, iframe, embed, object"

	// NonContentSelector matches page chrome common to most shops.
	NonContentSelector = "nav, footer, header, .sidebar, .navigation, .menu, .ad, .advertisement, .banner, #navFooter"
)

// PlatformSelectors lists store-specific noise: side columns, review
// widgets, and recommendation carousels that mention other products.
var PlatformSelectors = []string{
	// Amazon
	"#rightCol",
	"#leftCol",
	"#averageCustomerReviews",
	"#apex_desktop",
	".offersConsistencyEnabled",
	`[data-feature-name="sims-productBundle"]`,
	`[data-feature-name="sims-simsContainer"]`,
}

// Extractor turns a Document into a PageContent.
type Extractor struct {
	// strip holds the compiled selectors removed before rendering.
	strip []cascadia.Selector

	// now returns the extraction time.
	now func() time.Time

	// logger is used for skipped selectors.
	logger *slog.Logger
}

// Option configures an Extractor.
type Option func(*extractorOptions)

type extractorOptions struct {
	extra  []string
	now    func() time.Time
	logger *slog.Logger
}

// WithExtraSelectors adds user-configured selectors to the strip list.
// Selectors that do not compile are logged and skipped.
func WithExtraSelectors(selectors []string) Option {
	return func(o *extractorOptions) {
		o.extra = append(o.extra, selectors...)
	}
}

// WithClock sets the time source used for the PageContent timestamp.
func WithClock(now func() time.Time) Option {
	return func(o *extractorOptions) {
		o.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *extractorOptions) {
		o.logger = logger
	}
}

// NewExtractor creates an Extractor with the built-in strip list.
func NewExtractor(opts ...Option) *Extractor {
	o := extractorOptions{
		now:    time.Now,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	e := &Extractor{
		strip: []cascadia.Selector{
			cascadia.MustCompile(EmbeddedSelector),
			cascadia.MustCompile(NonContentSelector),
			cascadia.MustCompile(strings.Join(PlatformSelectors, ", ")),
		},
		now:    o.now,
		logger: o.logger,
	}

	for _, sel := range o.extra {
		compiled, err := cascadia.Compile(sel)
		if err != nil {
			e.logger.Warn("skipping invalid strip selector", "selector", sel, "error", err)
			continue
		}
		e.strip = append(e.strip, compiled)
	}

	return e
}

// Extract snapshots the document body. The live tree is not modified.
func (e *Extractor) Extract(doc *dom.Document) model.PageContent {
	return model.NewPageContent(doc.URL(), doc.Title(), e.Text(doc), e.now())
}

// Text returns the cleaned text of the document body, or "" when the
// document has no body.
func (e *Extractor) Text(doc *dom.Document) string {
	body := doc.Body()
	if body == nil {
		return ""
	}

	clone := dom.Clone(body)
	e.stripNoise(clone)

	return Clean(strings.TrimSpace(Normalize(clone)))
}

// stripNoise removes every descendant of root matched by a strip selector.
func (e *Extractor) stripNoise(root *html.Node) {
	for _, sel := range e.strip {
		for _, n := range sel.MatchAll(root) {
			if n == root {
				continue
			}
			dom.Remove(n)
		}
	}
}
