// Package xmlserial implements the XML/HTML5 Serializer (C1): it emits
// XHTML-compatible bytes from a DOM, optionally recording per-element byte
// offsets, in the style of a depth-first node-type switch over
// golang.org/x/net/html's tree, the same DOM library the teacher's
// model.ToDOM target already depends on.
package xmlserial

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/store"
)

// Options configures Serialize.
type Options struct {
	// SmartQuote picks the attribute-value quote character that minimizes
	// escaping. DefaultOptions turns it on; the zero Options leaves it off.
	SmartQuote bool
	// InnerXML serializes node's children only, never a wrapping doctype.
	InnerXML bool
	// CaptureOffsets records, for every body child with an `id` attribute
	// (and any about-sibling following it), the byte range it occupies
	// relative to the end of <body>'s opening tag, keyed by node ID.
	CaptureOffsets bool
	// Store resolves node IDs for offset capture. Required when
	// CaptureOffsets is true.
	Store *store.Store
}

// DefaultOptions returns the serializer's default options (SmartQuote on,
// everything else off).
func DefaultOptions() Options {
	return Options{SmartQuote: true}
}

// Result is what Serialize returns.
type Result struct {
	HTML    string
	Offsets map[int64][2]int // nodeID -> [start,end), only when CaptureOffsets
}

var voidElements = map[string]bool{
	"area": true, "base": true, "basefont": true, "bgsound": true, "br": true,
	"col": true, "command": true, "embed": true, "frame": true, "hr": true,
	"img": true, "input": true, "keygen": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

var rawContentElements = map[string]bool{
	"style": true, "script": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true, "plaintext": true, "noscript": true,
}

var newlineStrippingElements = map[string]bool{
	"pre": true, "textarea": true, "listing": true,
}

// IsVoidElement reports whether tag is in the fixed void-element set.
func IsVoidElement(tag string) bool { return voidElements[tag] }

// IsRawContentElement reports whether tag's single text child is emitted
// verbatim (no entity escaping).
func IsRawContentElement(tag string) bool { return rawContentElements[tag] }

// IsNewlineStrippingElement reports whether tag re-adds a leading newline
// lost by HTML re-parsing.
func IsNewlineStrippingElement(tag string) bool { return newlineStrippingElements[tag] }

type writer struct {
	opts    Options
	sb      strings.Builder
	offsets map[int64][2]int
	// bodyBase is the byte position (in sb) right after <body>'s opening
	// tag; offsets are reported relative to it.
	bodyBase   int
	inBody     bool
	sawBody    bool
	aboutFirst map[string]int64 // about id -> the node ID of the group's first member
}

// Serialize emits node (and its subtree) as XHTML-compatible bytes.
func Serialize(node *html.Node, opts Options) Result {
	w := &writer{opts: opts}
	if opts.CaptureOffsets {
		w.offsets = make(map[int64][2]int)
		w.aboutFirst = make(map[string]int64)
	}
	if !opts.InnerXML && node.Type == html.ElementNode && node.Data == "html" {
		w.sb.WriteString("<!DOCTYPE html>\n")
	}
	if opts.InnerXML {
		w.writeChildren(node)
	} else {
		w.writeNode(node)
	}
	return Result{HTML: w.sb.String(), Offsets: w.offsets}
}

func (w *writer) writeChildren(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.writeNode(c)
	}
}

func (w *writer) writeNode(n *html.Node) {
	switch n.Type {
	case html.DocumentNode:
		w.writeChildren(n)
	case html.DoctypeNode:
		w.sb.WriteString("<!DOCTYPE ")
		w.sb.WriteString(n.Data)
		w.sb.WriteByte('>')
	case html.TextNode:
		w.sb.WriteString(EscapeText(n.Data))
	case html.CommentNode:
		w.sb.WriteString("<!--")
		w.sb.WriteString(n.Data)
		w.sb.WriteString("-->")
	case html.ElementNode:
		w.writeElement(n)
	}
}

func (w *writer) writeElement(n *html.Node) {
	isBody := n.Data == "body"
	start := w.sb.Len()
	var recordOffset bool
	var nodeID int64
	if w.opts.CaptureOffsets && w.inBody {
		if id, ok := w.offsetNodeID(n); ok {
			nodeID = id
			recordOffset = true
		}
	}

	w.sb.WriteByte('<')
	w.sb.WriteString(n.Data)
	for _, a := range n.Attr {
		w.sb.WriteByte(' ')
		w.sb.WriteString(a.Key)
		w.sb.WriteByte('=')
		w.writeAttrValue(a.Val)
	}

	openEnd := w.sb.Len()
	if IsVoidElement(n.Data) && n.FirstChild == nil {
		w.sb.WriteString("/>")
		if isBody {
			w.inBody = true
			w.sawBody = true
			w.bodyBase = w.sb.Len()
		}
		if recordOffset {
			w.recordOffset(nodeID, start, w.sb.Len())
		}
		return
	}
	w.sb.WriteByte('>')

	if isBody {
		w.inBody = true
		w.sawBody = true
		w.bodyBase = w.sb.Len()
	}
	bodyOffsetStart := w.sb.Len()
	_ = openEnd

	if IsRawContentElement(n.Data) {
		if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
			w.sb.WriteString(n.FirstChild.Data)
		}
	} else {
		if IsNewlineStrippingElement(n.Data) {
			if c := n.FirstChild; c != nil && c.Type == html.TextNode && strings.HasPrefix(c.Data, "\n") {
				w.sb.WriteByte('\n')
			}
		}
		w.writeChildren(n)
	}
	_ = bodyOffsetStart

	w.sb.WriteString("</")
	w.sb.WriteString(n.Data)
	w.sb.WriteByte('>')

	if isBody {
		w.inBody = false
	}
	if recordOffset {
		w.recordOffset(nodeID, start, w.sb.Len())
	}
}

// offsetNodeID returns the node ID to use for offset capture, and whether n
// is eligible at all: per §4.1 "Offsets", only a direct child of <body>
// that itself carries an `id` attribute is recorded, except that an
// about-sibling with no `id` of its own inherits its first member's
// recorded ID.
func (w *writer) offsetNodeID(n *html.Node) (int64, bool) {
	if n.Parent == nil || n.Parent.Data != "body" {
		return 0, false
	}
	_, hasID := store.GetAttr(n, "id")
	about, hasAbout := store.GetAttr(n, "about")

	if hasAbout && about != "" {
		if hasID {
			id := w.opts.Store.NodeID(n)
			w.aboutFirst[about] = id
			return id, true
		}
		if first, ok := w.aboutFirst[about]; ok {
			return first, true
		}
		return 0, false
	}

	if !hasID {
		return 0, false
	}
	return w.opts.Store.NodeID(n), true
}

func (w *writer) recordOffset(nodeID int64, start, end int) {
	base := w.bodyBase
	rel := [2]int{start - base, end - base}
	if existing, ok := w.offsets[nodeID]; ok {
		// about-group: extend the recorded range to cover this sibling too.
		if rel[0] < existing[0] {
			existing[0] = rel[0]
		}
		if rel[1] > existing[1] {
			existing[1] = rel[1]
		}
		w.offsets[nodeID] = existing
		return
	}
	w.offsets[nodeID] = rel
}

// writeAttrValue writes a quoted, escaped attribute value, choosing the
// quote character per the smart-quote law (§8 "Smart-quote optimality"):
// use single quotes only if the value contains strictly more double quotes
// than single quotes.
func (w *writer) writeAttrValue(val string) {
	quote := byte('"')
	if w.opts.SmartQuote {
		doubles := strings.Count(val, "\"")
		singles := strings.Count(val, "'")
		if doubles > singles {
			quote = '\''
		}
	}
	w.sb.WriteByte(quote)
	w.sb.WriteString(EscapeAttrValue(val, quote))
	w.sb.WriteByte(quote)
}

// EscapeText escapes '<' and '&' in text-node content.
func EscapeText(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch r {
		case '<':
			sb.WriteString("&lt;")
		case '&':
			sb.WriteString("&amp;")
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// EscapeAttrValue escapes '<', '&', and the delimiting quote character in
// an attribute value.
func EscapeAttrValue(s string, quote byte) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '<':
			sb.WriteString("&lt;")
		case r == '&':
			sb.WriteString("&amp;")
		case byte(r) == quote && r < 128:
			if quote == '"' {
				sb.WriteString("&quot;")
			} else {
				sb.WriteString("&#39;")
			}
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
