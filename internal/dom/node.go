package dom

import (
	"strings"

	"golang.org/x/net/html"
)

// Attr retrieves an attribute value from an element node.
func Attr(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

// HasAttr reports whether the element carries the attribute.
func HasAttr(n *html.Node, key string) bool {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return true
		}
	}
	return false
}

// SetAttr sets an attribute, replacing any previous value.
func SetAttr(n *html.Node, key, val string) {
	for i, attr := range n.Attr {
		if attr.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// TextContent returns the concatenated text of all descendant text nodes,
// like the DOM textContent property.
func TextContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}

	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)

	return sb.String()
}

// Clone returns a deep copy of n that is detached from any parent.
// The live tree is never shared with the copy.
func Clone(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
	}
	if len(n.Attr) > 0 {
		c.Attr = make([]html.Attribute, len(n.Attr))
		copy(c.Attr, n.Attr)
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		c.AppendChild(Clone(child))
	}
	return c
}

// Remove detaches n from its parent. Detached nodes are left alone.
func Remove(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// FindElement returns the first element with the given tag name in
// depth-first order, or nil.
func FindElement(root *html.Node, tag string) *html.Node {
	if root.Type == html.ElementNode && root.Data == tag {
		return root
	}
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		if found := FindElement(c, tag); found != nil {
			return found
		}
	}
	return nil
}

// describeMaxRunes caps the text part of a Describe label.
const describeMaxRunes = 50

// Describe returns a short human-readable label for an element, used in logs.
func Describe(n *html.Node) string {
	text := strings.TrimSpace(TextContent(n))
	if text == "" {
		text = strings.TrimSpace(Attr(n, "value"))
	}
	if runes := []rune(text); len(runes) > describeMaxRunes {
		text = string(runes[:describeMaxRunes])
	}
	if text != "" {
		return text
	}
	if class := Attr(n, "class"); class != "" {
		return class
	}
	return Attr(n, "id")
}
