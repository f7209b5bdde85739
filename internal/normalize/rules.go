package normalize

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/nao1215/vegancheck/internal/dom"
)

// rule renders an element whose trimmed text content is text (never empty).
type rule func(n *html.Node, text string) Fragment

// rules maps element atoms to their rendering. Elements not listed here fall
// back to renderContainer, which recurses when the element has children.
var rules map[atom.Atom]rule

func init() {
	rules = map[atom.Atom]rule{
		atom.H1: heading(1),
		atom.H2: heading(2),
		atom.H3: heading(3),
		atom.H4: heading(4),
		atom.H5: heading(5),
		atom.H6: heading(6),

		atom.P:          block("", "\n\n"),
		atom.Blockquote: block("> ", "\n\n"),
		atom.Li:         block("", "\n"),
		atom.Pre:        block("```\n", "\n```\n\n"),

		atom.Strong: inline("**"),
		atom.B:      inline("**"),
		atom.Em:     inline("*"),
		atom.I:      inline("*"),
		atom.Code:   inline("`"),
		atom.A:      inline(""),

		atom.Ul: list(false),
		atom.Ol: list(true),

		atom.Img: func(*html.Node, string) Fragment { return empty },
		atom.Br:  func(*html.Node, string) Fragment { return Fragment{Kind: KindBreak, Text: "\n"} },
		atom.Hr:  func(*html.Node, string) Fragment { return Fragment{Kind: KindRule, Text: "---\n\n"} },

		atom.Div:     renderContainer,
		atom.Section: renderContainer,
		atom.Article: renderContainer,
		atom.Main:    renderContainer,
		atom.Span:    renderContainer,
	}
}

// Render maps a node to its fragment.
//
// Text nodes pass through verbatim. Elements whose trimmed text content is
// empty render as empty without looking at their children. Other node types
// (comments, doctypes) render as empty.
func Render(n *html.Node) Fragment {
	if n == nil {
		return empty
	}

	switch n.Type {
	case html.TextNode:
		return Fragment{Kind: KindText, Text: n.Data}
	case html.ElementNode:
	default:
		return empty
	}

	text := strings.TrimSpace(dom.TextContent(n))
	if text == "" {
		return empty
	}

	if r, ok := rules[n.DataAtom]; ok && n.DataAtom != 0 {
		return r(n, text)
	}
	return renderContainer(n, text)
}

// Normalize renders root and returns its text.
func Normalize(root *html.Node) string {
	return Render(root).Text
}

func heading(level int) rule {
	prefix := strings.Repeat("#", level) + " "
	return func(_ *html.Node, text string) Fragment {
		return Fragment{Kind: KindHeading, Text: prefix + text + "\n\n"}
	}
}

func block(prefix, suffix string) rule {
	return func(_ *html.Node, text string) Fragment {
		return Fragment{Kind: KindBlock, Text: prefix + text + suffix}
	}
}

func inline(marker string) rule {
	return func(_ *html.Node, text string) Fragment {
		return Fragment{Kind: KindInline, Text: marker + text + marker}
	}
}

// list renders every descendant li of n, not only direct children, so
// nested lists are flattened into the outermost one and their items also
// appear inside the text of their parent item. The summary text the
// classifier sees depends on this layout, so it is kept as is.
func list(ordered bool) rule {
	return func(n *html.Node, _ string) Fragment {
		var items []string
		var walk func(*html.Node)
		walk = func(c *html.Node) {
			for child := c.FirstChild; child != nil; child = child.NextSibling {
				if child.Type == html.ElementNode && child.DataAtom == atom.Li {
					itemText := strings.TrimSpace(dom.TextContent(child))
					if ordered {
						items = append(items, strconv.Itoa(len(items)+1)+". "+itemText)
					} else {
						items = append(items, "- "+itemText)
					}
				}
				walk(child)
			}
		}
		walk(n)

		return Fragment{Kind: KindList, Text: strings.Join(items, "\n") + "\n\n"}
	}
}

// renderContainer joins the non-empty renderings of n's children, each
// followed by a newline. A childless element yields its trimmed text.
func renderContainer(n *html.Node, text string) Fragment {
	if n.FirstChild == nil {
		return Fragment{Kind: KindLeaf, Text: text}
	}

	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := Render(c); child.Text != "" {
			sb.WriteString(child.Text)
			sb.WriteString("\n")
		}
	}

	return Fragment{Kind: KindContainer, Text: sb.String()}
}
