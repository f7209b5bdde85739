package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ClickListener handles a click. target is the element that was clicked,
// which may be a descendant of the element the listener is attached to.
type ClickListener func(target *html.Node)

// MutationListener receives the nodes added by one mutation batch.
type MutationListener func(added []*html.Node)

// Document is a parsed HTML page with mutation and click events.
type Document struct {
	// root is the document node returned by the parser.
	root *html.Node

	// url is the address the page was loaded from.
	url string

	mu        sync.Mutex
	observers map[int]MutationListener
	nextID    int
	listeners map[*html.Node][]ClickListener
}

// Parse parses HTML content into a Document loaded from pageURL.
func Parse(content io.Reader, pageURL string) (*Document, error) {
	root, err := html.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return NewDocument(root, pageURL), nil
}

// ParseBytes is a convenience wrapper around Parse.
func ParseBytes(content []byte, pageURL string) (*Document, error) {
	return Parse(bytes.NewReader(content), pageURL)
}

// NewDocument wraps an already parsed tree.
func NewDocument(root *html.Node, pageURL string) *Document {
	return &Document{
		root:      root,
		url:       pageURL,
		observers: make(map[int]MutationListener),
		listeners: make(map[*html.Node][]ClickListener),
	}
}

// Root returns the document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// URL returns the address the page was loaded from.
func (d *Document) URL() string {
	return d.url
}

// Body returns the body element. The HTML parser always synthesizes one,
// so this is only nil for documents built by hand without a body.
func (d *Document) Body() *html.Node {
	return FindElement(d.root, "body")
}

// Title returns the trimmed text of the first <title> element.
func (d *Document) Title() string {
	title := FindElement(d.root, "title")
	if title == nil {
		return ""
	}
	return strings.TrimSpace(TextContent(title))
}

// OnSubtreeChanged subscribes fn to child-list mutations anywhere in the
// document. The returned function removes the subscription.
func (d *Document) OnSubtreeChanged(fn MutationListener) (unsubscribe func()) {
	d.mu.Lock()
	id := d.nextID
	d.nextID++
	d.observers[id] = fn
	d.mu.Unlock()

	return func() {
		d.mu.Lock()
		delete(d.observers, id)
		d.mu.Unlock()
	}
}

// AppendChild appends child to parent and notifies observers with a
// single-node batch.
func (d *Document) AppendChild(parent, child *html.Node) {
	parent.AppendChild(child)
	d.notify([]*html.Node{child})
}

// AppendHTML parses fragment in the context of parent, appends every
// resulting node, and notifies observers once with the whole batch.
func (d *Document) AppendHTML(parent *html.Node, fragment string) error {
	ctxNode := parent
	if ctxNode.Type != html.ElementNode {
		ctxNode = &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	}

	nodes, err := html.ParseFragment(strings.NewReader(fragment), ctxNode)
	if err != nil {
		return fmt.Errorf("failed to parse fragment: %w", err)
	}

	for _, n := range nodes {
		parent.AppendChild(n)
	}
	d.notify(nodes)

	return nil
}

// notify delivers one mutation batch to a snapshot of the observers.
func (d *Document) notify(added []*html.Node) {
	if len(added) == 0 {
		return
	}

	d.mu.Lock()
	observers := make([]MutationListener, 0, len(d.observers))
	for _, fn := range d.observers {
		observers = append(observers, fn)
	}
	d.mu.Unlock()

	for _, fn := range observers {
		fn(added)
	}
}

// AddClickListener attaches fn to element n.
func (d *Document) AddClickListener(n *html.Node, fn ClickListener) {
	d.mu.Lock()
	d.listeners[n] = append(d.listeners[n], fn)
	d.mu.Unlock()
}

// Click dispatches a click on target. The event bubbles from target up to
// the document root, invoking listeners on every ancestor.
// It returns the number of listeners invoked.
func (d *Document) Click(target *html.Node) int {
	var toCall []ClickListener

	d.mu.Lock()
	for n := target; n != nil; n = n.Parent {
		toCall = append(toCall, d.listeners[n]...)
	}
	d.mu.Unlock()

	for _, fn := range toCall {
		fn(target)
	}

	return len(toCall)
}
