package cartintent

import (
	"io"
	"log/slog"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/net/html"

	"github.com/nao1215/vegancheck/internal/dom"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// parseDoc parses body into a document or fails the test.
func parseDoc(t *testing.T, body string) *dom.Document {
	t.Helper()

	doc, err := dom.Parse(strings.NewReader("<html><body>"+body+"</body></html>"), "https://shop.example/p/1")
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	return doc
}

// byID returns the element with the given id or fails the test.
func byID(t *testing.T, doc *dom.Document, id string) *html.Node {
	t.Helper()

	var find func(*html.Node) *html.Node
	find = func(n *html.Node) *html.Node {
		if n.Type == html.ElementNode && dom.Attr(n, "id") == id {
			return n
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if found := find(c); found != nil {
				return found
			}
		}
		return nil
	}

	n := find(doc.Root())
	if n == nil {
		t.Fatalf("element #%s not found", id)
	}
	return n
}

func TestMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		html string
		want bool
	}{
		{name: "add to cart text", html: `<button>Add to Cart</button>`, want: true},
		{name: "text with surrounding whitespace", html: "<button>\n  Add to Cart \n</button>", want: true},
		{name: "inner whitespace is collapsed", html: "<button>Add  to\n\tcart</button>", want: true},
		{name: "partial text does not match", html: `<button>Add to Cart Remove</button>`, want: false},
		{name: "buy now link", html: `<a href="/buy">Buy Now</a>`, want: true},
		{name: "submit input value", html: `<input type="submit" value="Add to Basket">`, want: true},
		{name: "button input value", html: `<input type="button" value="Order now">`, want: true},
		{name: "text input is not a candidate", html: `<input type="text" value="add to cart">`, want: false},
		{name: "role button aria label", html: `<div role="button" aria-label="Add to Bag">+</div>`, want: true},
		{name: "title attribute", html: `<button title="Purchase now">$</button>`, want: true},
		{name: "data-testid", html: `<button data-testid="addtocart">+</button>`, want: true},
		{name: "data-action", html: `<button data-action="add to wishlist">♥</button>`, want: true},
		{name: "class token", html: `<button class="cart">+</button>`, want: true},
		{name: "id token", html: `<button id="Checkout">Go</button>`, want: true},
		{name: "class must match whole attribute", html: `<button class="cart primary">+</button>`, want: false},
		{name: "remove text excludes class match", html: `<button class="cart">remove</button>`, want: false},
		{name: "view cart excluded", html: `<a class="cart" href="/cart">View Cart</a>`, want: false},
		{name: "checkout text excluded", html: `<button id="buy">Checkout</button>`, want: false},
		{name: "exclusion applies to aria label", html: `<button class="basket" aria-label="Clear cart">x</button>`, want: false},
		{name: "class does not exclude", html: `<button class="remove">Add to cart</button>`, want: true},
		{name: "unrelated button", html: `<button>Sign in</button>`, want: false},
		{name: "non candidate element", html: `<span class="cart">Add to cart</span>`, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parseDoc(t, tt.html)
			n := doc.Body().FirstChild
			if got := Matches(n); got != tt.want {
				t.Errorf("Matches(%s) = %v, want %v (signals %+v)", tt.html, got, tt.want, SignalsOf(n))
			}
		})
	}
}

func TestScan(t *testing.T) {
	t.Parallel()

	doc := parseDoc(t, `<div>`+
		`<button id="add">Add to Cart</button>`+
		`<a href="/account">Account</a>`+
		`<form><input type="submit" id="buy-now" value="Buy now"></form>`+
		`<button id="rm">Remove</button>`+
		`</div>`)

	found := Scan(doc.Root())
	if len(found) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(found))
	}
	if dom.Attr(found[0], "id") != "add" || dom.Attr(found[1], "id") != "buy-now" {
		t.Errorf("unexpected match order: %q, %q", dom.Attr(found[0], "id"), dom.Attr(found[1], "id"))
	}

	if got := Scan(nil); got != nil {
		t.Errorf("expected nil for nil root, got %v", got)
	}
}

func TestDetector(t *testing.T) {
	t.Parallel()

	t.Run("arms matches once and marks them", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<button id="add">Add to Cart</button><button id="other">Details</button>`)
		d := NewDetector(doc, func(*html.Node) {}, WithLogger(discardLogger()))

		if n := d.Arm(); n != 1 {
			t.Fatalf("expected 1 armed control, got %d", n)
		}
		if dom.Attr(byID(t, doc, "add"), MarkerAttr) != "true" {
			t.Error("expected marker attribute on armed control")
		}
		if dom.HasAttr(byID(t, doc, "other"), MarkerAttr) {
			t.Error("unexpected marker on unrelated control")
		}
		if n := d.Arm(); n != 0 {
			t.Errorf("expected flagged controls to be skipped, got %d", n)
		}
	})

	t.Run("click triggers once per gate window", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<button id="add"><span id="label">Add to Cart</span></button>`)
		var triggered atomic.Int32
		d := NewDetector(doc, func(*html.Node) { triggered.Add(1) },
			WithGate(NewGate(time.Hour)), WithLogger(discardLogger()))
		d.Arm()

		doc.Click(byID(t, doc, "label"))
		doc.Click(byID(t, doc, "add"))

		if got := triggered.Load(); got != 1 {
			t.Errorf("expected 1 trigger while gate held, got %d", got)
		}
		if !d.Gate().Held() {
			t.Error("expected gate to be held")
		}

		d.Gate().Release()
		doc.Click(byID(t, doc, "add"))
		if got := triggered.Load(); got != 2 {
			t.Errorf("expected trigger after release, got %d", got)
		}
	})

	t.Run("watch arms dynamically added controls", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<div id="root"></div>`)
		d := NewDetector(doc, func(*html.Node) {}, WithLogger(discardLogger()))
		d.Arm()
		stop := d.Watch()
		defer stop()

		if err := doc.AppendHTML(byID(t, doc, "root"), `<div><button id="late">Buy Now</button></div>`); err != nil {
			t.Fatalf("failed to append: %v", err)
		}

		if d.Rescans() != 1 {
			t.Errorf("expected 1 rescan, got %d", d.Rescans())
		}
		if !dom.HasAttr(byID(t, doc, "late"), MarkerAttr) {
			t.Error("expected dynamically added control to be armed")
		}
	})

	t.Run("pre-check skips batches without candidates", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<div id="root"></div>`)
		d := NewDetector(doc, func(*html.Node) {}, WithLogger(discardLogger()))
		stop := d.Watch()
		defer stop()

		if err := doc.AppendHTML(byID(t, doc, "root"), `<p>Free shipping</p><img src="x.png">`); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		doc.AppendChild(byID(t, doc, "root"), &html.Node{Type: html.TextNode, Data: "text"})

		if d.Rescans() != 0 {
			t.Errorf("expected no rescan, got %d", d.Rescans())
		}
	})

	t.Run("stop ends watching", func(t *testing.T) {
		t.Parallel()

		doc := parseDoc(t, `<div id="root"></div>`)
		d := NewDetector(doc, func(*html.Node) {}, WithLogger(discardLogger()))
		stop := d.Watch()
		stop()

		if err := doc.AppendHTML(byID(t, doc, "root"), `<button>Add to cart</button>`); err != nil {
			t.Fatalf("failed to append: %v", err)
		}
		if d.Rescans() != 0 {
			t.Errorf("expected no rescan after stop, got %d", d.Rescans())
		}
	})
}

func TestGate(t *testing.T) {
	t.Parallel()

	t.Run("auto releases after timeout", func(t *testing.T) {
		t.Parallel()

		g := NewGate(20 * time.Millisecond)
		if !g.TryAcquire() {
			t.Fatal("expected first acquire to succeed")
		}
		if g.TryAcquire() {
			t.Fatal("expected second acquire to fail")
		}

		deadline := time.Now().Add(2 * time.Second)
		for g.Held() && time.Now().Before(deadline) {
			time.Sleep(5 * time.Millisecond)
		}
		if g.Held() {
			t.Fatal("expected gate to auto release")
		}
		if !g.TryAcquire() {
			t.Error("expected acquire after release")
		}
		g.Release()
	})

	t.Run("non-positive timeout uses default", func(t *testing.T) {
		t.Parallel()

		if got := NewGate(0).Timeout(); got != DefaultGateTimeout {
			t.Errorf("expected %v, got %v", DefaultGateTimeout, got)
		}
	})
}
