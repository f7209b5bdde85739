package normalize

// Kind tags what an element rendered as.
type Kind int

const (
	// KindEmpty is produced for elements without text and for dropped elements.
	KindEmpty Kind = iota
	// KindText is a text node passed through verbatim.
	KindText
	// KindHeading is an h1-h6 element.
	KindHeading
	// KindBlock is a paragraph, blockquote, preformatted block or list item.
	KindBlock
	// KindInline is emphasis, code or link text.
	KindInline
	// KindList is an ordered or unordered list.
	KindList
	// KindRule is a horizontal rule.
	KindRule
	// KindBreak is a line break.
	KindBreak
	// KindContainer is an element whose children were rendered recursively.
	KindContainer
	// KindLeaf is an unknown element without children.
	KindLeaf
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindText:
		return "text"
	case KindHeading:
		return "heading"
	case KindBlock:
		return "block"
	case KindInline:
		return "inline"
	case KindList:
		return "list"
	case KindRule:
		return "rule"
	case KindBreak:
		return "break"
	case KindContainer:
		return "container"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Fragment is the rendered form of one node.
type Fragment struct {
	Kind Kind
	Text string
}

// empty is the zero fragment.
var empty = Fragment{Kind: KindEmpty}
