// Package token implements the token stream data model produced by the
// wikitext tokenizer and consumed by the attribute expander. Tokens are
// persistent value objects: code that wants a modified token builds a new
// one rather than mutating in place, mirroring the document-model style of
// the node/mark/fragment types this package was adapted from.
package token

// Kind discriminates the token variants of the stream.
type Kind int

const (
	KindText Kind = iota
	KindTag
	KindEndTag
	KindSelfClosingTag
	KindNewline
	KindComment
	KindEOF
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindTag:
		return "tag"
	case KindEndTag:
		return "end-tag"
	case KindSelfClosingTag:
		return "self-closing-tag"
	case KindNewline:
		return "newline"
	case KindComment:
		return "comment"
	case KindEOF:
		return "eof"
	default:
		return "unknown"
	}
}

// SrcOffsets locates an attribute's key and value within the frame's source.
type SrcOffsets struct {
	Key   [2]int
	Value [2]int
}

// Tmp carries scratch bookkeeping that never round-trips through wikitext;
// it exists only for communication between passes in the same pipeline run.
type Tmp struct {
	// TemplatedAttribs is stashed by the attribute expander on "template"
	// tokens (§4.4 "After all attributes processed") for the template
	// handler to consume later in the pipeline.
	TemplatedAttribs []TemplatedAttrib
}

// TemplatedAttrib is one {k,v} entry of a token's resolved data-mw.attribs,
// kept as a token-stream-local record before it is flattened to JSON.
type TemplatedAttrib struct {
	K TemplatedField
	V TemplatedField
}

// TemplatedField is either a plain string or a token list carrying original
// provenance, matching §4.4 step 8 ("html carries the original token list").
type TemplatedField struct {
	Txt        string
	HTML       []Token
	SrcOffsets *[2]int
}

// DataAttribs is the source-range bookkeeping a tag-ish token carries
// (§3.1 "dataAttribs").
type DataAttribs struct {
	TSR               *[2]int
	Stx               string
	Src               string
	AutoInsertedStart bool
	AutoInsertedEnd   bool
	UnwrappedWT       string
	MagicSrc          string
	Tmp               *Tmp

	// FirstWikitextNode records the upper-cased tag name (plus "_"+stx when
	// set) of the element a hoisted encapsulation meta was pulled out of
	// (§4.4 step 4 "Scenario 1").
	FirstWikitextNode string
}

// Token is a single element of the stream: text, a start/end/void tag, a
// newline, a comment, or the end-of-input sentinel.
type Token struct {
	Kind        Kind
	Name        string // element name, for tag-ish kinds
	Text        string // literal text, for KindText/KindComment
	Attribs     []KV
	DataAttribs *DataAttribs
}

// NewText builds a text token.
func NewText(s string) Token { return Token{Kind: KindText, Text: s} }

// NewComment builds a comment token.
func NewComment(s string) Token { return Token{Kind: KindComment, Text: s} }

// NewNewline builds a newline token.
func NewNewline() Token { return Token{Kind: KindNewline} }

// NewEOF builds the end-of-stream sentinel.
func NewEOF() Token { return Token{Kind: KindEOF} }

// NewTag builds a start-tag token.
func NewTag(name string, attribs []KV, da *DataAttribs) Token {
	return Token{Kind: KindTag, Name: name, Attribs: attribs, DataAttribs: da}
}

// NewEndTag builds an end-tag token.
func NewEndTag(name string, da *DataAttribs) Token {
	return Token{Kind: KindEndTag, Name: name, DataAttribs: da}
}

// NewSelfClosingTag builds a void-element marker token.
func NewSelfClosingTag(name string, attribs []KV, da *DataAttribs) Token {
	return Token{Kind: KindSelfClosingTag, Name: name, Attribs: attribs, DataAttribs: da}
}

// IsTagLike reports whether the token carries attributes at all (§4.4
// onAny's "passes through tokens without attributes").
func (t Token) IsTagLike() bool {
	return t.Kind == KindTag || t.Kind == KindSelfClosingTag
}

// IsMeta reports whether this is a <meta>-ish token by name.
func (t Token) IsMeta() bool {
	return t.IsTagLike() && t.Name == "meta"
}

// GetAttrib returns the KV for k, and whether it was found.
func (t Token) GetAttrib(k string) (KV, bool) {
	for _, kv := range t.Attribs {
		if s, ok := kv.KStr(); ok && s == k {
			return kv, true
		}
	}
	return KV{}, false
}

// SetAttrib returns a copy of t with k=v set (replacing an existing entry
// or appending a new one), preserving the rest of the attribute order.
func (t Token) SetAttrib(k, v string) Token {
	out := make([]KV, len(t.Attribs))
	copy(out, t.Attribs)
	for i, kv := range out {
		if s, ok := kv.KStr(); ok && s == k {
			out[i].V = v
			t.Attribs = out
			return t
		}
	}
	out = append(out, KV{K: k, V: v})
	t.Attribs = out
	return t
}

// AddSpaceSeparatedAttrib appends value to the space-separated attribute k
// (creating it if absent), e.g. adding a typeof token.
func (t Token) AddSpaceSeparatedAttrib(k, v string) Token {
	if kv, ok := t.GetAttrib(k); ok {
		if s, ok := kv.VStr(); ok && s != "" {
			return t.SetAttrib(k, s+" "+v)
		}
	}
	return t.SetAttrib(k, v)
}
