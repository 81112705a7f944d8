// Package expander implements the Attribute Expander (C4): it resolves
// residual tokens left in a tag's attributes by template expansion, hoists
// encapsulation markers out of attribute position, and records
// template-provenance on data-mw so the markers can be restored on the
// round trip (§4.4).
//
// The reparse-KV step is grounded on dpotapov-go-pages/chtml's
// scanAttributeSpans, generalized from a single-tag-local span scan to the
// frame-relative offsets this pass requires.
package expander

import (
	"encoding/json"
	"strings"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/token"
)

// reservedMetaPrefixes are the typeof prefixes onAny leaves untouched, and
// that mark a token as an "encapsulation start meta" eligible for hoisting.
var reservedMetaPrefixes = []string{
	"mw:TSRMarker",
	"mw:Placeholder",
	"mw:Transclusion",
	"mw:Param",
	"mw:Includes",
}

// tableSyntaxTags are the element names for which an embedded newline ends
// the attribute run when the token came from wikitext table syntax.
var tableSyntaxTags = map[string]bool{
	"table": true, "tbody": true, "thead": true, "tfoot": true,
	"tr": true, "td": true, "th": true, "caption": true,
}

// Result is onAny's return value.
type Result struct {
	Tokens []token.Token
	Retry  bool
}

// IDSource is the narrow collaborator the expander needs for minting the
// about id of a newly-wrapped mw:ExpandedAttrs token.
type IDSource interface {
	NewAboutID() string
}

// Expander implements onAny against an injected Frame (for source-text
// slicing), Tokenizer (for the reparse-KV scenario), and about-id source.
type Expander struct {
	Frame     env.Frame
	Tokenizer env.Tokenizer
	IDs       IDSource
}

// New builds an Expander. Tokenizer and IDs may be nil; the reparse and
// mw:ExpandedAttrs-wrapping steps are then skipped/degraded gracefully.
func New(frame env.Frame, tokenizer env.Tokenizer, ids IDSource) *Expander {
	return &Expander{Frame: frame, Tokenizer: tokenizer, IDs: ids}
}

// OnAny is the public operation of §4.4.
func (e *Expander) OnAny(t token.Token) Result {
	if !t.IsTagLike() || len(t.Attribs) == 0 {
		return Result{Tokens: []token.Token{t}}
	}
	if t.IsMeta() {
		if typeofKV, ok := t.GetAttrib("typeof"); ok {
			if s, isStr := typeofKV.VStr(); isStr && hasReservedPrefix(s) {
				return Result{Tokens: []token.Token{t}}
			}
		}
	}

	elemTSRStart := 0
	if t.DataAttribs != nil && t.DataAttribs.TSR != nil {
		elemTSRStart = t.DataAttribs.TSR[0]
	}
	elemSrc := ""
	if e.Frame != nil {
		elemSrc = e.Frame.GetSrcText()
	}
	stx := ""
	if t.DataAttribs != nil {
		stx = t.DataAttribs.Stx
	}

	var hoisted, trailing []token.Token
	var newAttribs []token.KV
	var entries []token.TemplatedAttrib

	for _, kv := range t.Attribs {
		kvs, h, tr, entry := e.processAttrib(kv, t.Name, stx, elemTSRStart, elemSrc)
		newAttribs = append(newAttribs, kvs...)
		hoisted = append(hoisted, h...)
		trailing = append(trailing, tr...)
		if entry != nil {
			entries = append(entries, *entry)
		}
	}
	t.Attribs = newAttribs

	if _, hasAbout := t.GetAttrib("about"); !hasAbout && len(entries) > 0 {
		cloned := cloneTemplatedAttribs(entries)
		if t.Name == "template" {
			if t.DataAttribs == nil {
				t.DataAttribs = &token.DataAttribs{}
			}
			if t.DataAttribs.Tmp == nil {
				t.DataAttribs.Tmp = &token.Tmp{}
			}
			t.DataAttribs.Tmp.TemplatedAttribs = append(t.DataAttribs.Tmp.TemplatedAttribs, cloned...)
		} else {
			aboutID := ""
			if e.IDs != nil {
				aboutID = e.IDs.NewAboutID()
			}
			t = t.SetAttrib("about", aboutID)
			t = t.AddSpaceSeparatedAttrib("typeof", "mw:ExpandedAttrs")
			dm := store.DataMw{Attribs: toAttribPairs(cloned)}
			if b, err := json.Marshal(dm); err == nil {
				t = t.SetAttrib("data-mw", string(b))
			}
		}
	}

	out := make([]token.Token, 0, len(hoisted)+1+len(trailing))
	out = append(out, hoisted...)
	out = append(out, t)
	out = append(out, trailing...)
	return Result{Tokens: out, Retry: len(hoisted) > 0}
}

// processAttrib runs steps 1-8 of §4.4 for one KV, returning the KV(s) that
// replace it (more than one only when reparse-KV fires), any metas hoisted
// before the element, any tokens trailing after it, and a templated-attrib
// record when stripping or reparsing touched this attribute.
func (e *Expander) processAttrib(kv token.KV, tokName, stx string, elemTSRStart int, elemSrc string) ([]token.KV, []token.Token, []token.Token, *token.TemplatedAttrib) {
	newKV := kv
	var hoisted, trailing []token.Token
	var kStripped, vStripped bool
	var origKHTML, origVHTML []token.Token

	if kToks, isToks := kv.KTokens(); isToks {
		origKHTML = kToks
		r := e.processSide(kToks, tokName, stx, elemTSRStart, elemSrc)
		hoisted = append(hoisted, r.hoisted...)
		trailing = append(trailing, r.trailing...)
		kStripped = r.strippedAny
		newKV.K = r.value
	}
	if vToks, isToks := kv.VTokens(); isToks {
		origVHTML = vToks
		r := e.processSide(vToks, tokName, stx, elemTSRStart, elemSrc)
		hoisted = append(hoisted, r.hoisted...)
		trailing = append(trailing, r.trailing...)
		vStripped = r.strippedAny
		newKV.V = r.value
	}

	// Step 6: reparse-KV.
	if isEmptyField(newKV.V) {
		kStr := strings.TrimSpace(serializeField(newKV.K))
		if strings.Contains(kStr, "=") && e.Tokenizer != nil {
			rule := "generic_newline_attributes"
			if tableSyntaxTags[tokName] && stx != "html" {
				rule = "table_attributes"
			}
			if out, err := e.Tokenizer.TokenizeAs(kStr, rule, false); err == nil {
				if reKVs := tokensToKVs(out); len(reKVs) > 0 {
					for i := range reKVs {
						reKVs[i].SrcOffsets = kv.SrcOffsets
					}
					return reKVs, hoisted, trailing, buildEntry(newKV, origKHTML, origVHTML)
				}
			}
		}
	}

	var entry *token.TemplatedAttrib
	if kStripped || vStripped {
		entry = buildEntry(newKV, origKHTML, origVHTML)
	}
	return []token.KV{newKV}, hoisted, trailing, entry
}

func buildEntry(kv token.KV, origKHTML, origVHTML []token.Token) *token.TemplatedAttrib {
	return &token.TemplatedAttrib{
		K: token.TemplatedField{Txt: serializeField(kv.K), HTML: origKHTML, SrcOffsets: fieldOffsets(kv.SrcOffsets, true)},
		V: token.TemplatedField{Txt: serializeField(kv.V), HTML: origVHTML, SrcOffsets: fieldOffsets(kv.SrcOffsets, false)},
	}
}

func fieldOffsets(so *token.SrcOffsets, key bool) *[2]int {
	if so == nil {
		return nil
	}
	if key {
		v := so.Key
		return &v
	}
	v := so.Value
	return &v
}

// sideResult is the outcome of running steps 3-5 on one side (k or v) of a
// KV.
type sideResult struct {
	value       interface{}
	hoisted     []token.Token
	trailing    []token.Token
	strippedAny bool
}

func (e *Expander) processSide(toks []token.Token, tokName, stx string, elemTSRStart int, elemSrc string) sideResult {
	nlPos := newlineSplitPos(tokName, stx, toks)
	if nlPos >= 0 {
		preNL := append([]token.Token(nil), toks[:nlPos]...)
		postNL := append([]token.Token(nil), toks[nlPos+1:]...)
		var hoisted []token.Token
		for i, tk := range preNL {
			if isEncapMeta(tk) {
				hoisted = append(hoisted, hoistMeta(tk, tokName, stx, elemSrc, elemTSRStart))
				preNL = append(preNL[:i], preNL[i+1:]...)
				break
			}
		}
		// The expanded key is preNL with *all* encap metas stripped, not
		// just the one hoisted above (§4.4 step 4).
		preNL, strippedRest := stripEncapMetas(preNL)
		return sideResult{value: preNL, hoisted: hoisted, trailing: postNL, strippedAny: len(hoisted) > 0 || strippedRest}
	}
	stripped, any := stripEncapMetas(toks)
	return sideResult{value: stripped, strippedAny: any}
}

// newlineSplitPos is step 3: the index of the first newline token, or -1
// when newlines are permitted in this position.
func newlineSplitPos(tokName, stx string, toks []token.Token) int {
	if stx == "html" || !tableSyntaxTags[tokName] {
		return -1
	}
	for i, t := range toks {
		if t.Kind == token.KindNewline {
			return i
		}
	}
	return -1
}

// hoistMeta lifts an encapsulation start-meta to the element's tsr.start and
// records its unwrapped source and originating element (step 4).
func hoistMeta(meta token.Token, tokName, stx, elemSrc string, elemTSRStart int) token.Token {
	origStart := elemTSRStart
	if meta.DataAttribs != nil && meta.DataAttribs.TSR != nil {
		origStart = meta.DataAttribs.TSR[0]
	}
	da := cloneDataAttribs(meta.DataAttribs)
	end := origStart
	if da.TSR != nil {
		end = da.TSR[1]
	}
	da.TSR = &[2]int{elemTSRStart, end}
	da.UnwrappedWT = sliceSrc(elemSrc, elemTSRStart, origStart)
	fw := strings.ToUpper(tokName)
	if stx != "" {
		fw += "_" + stx
	}
	da.FirstWikitextNode = fw
	meta.DataAttribs = da
	return meta
}

func cloneDataAttribs(da *token.DataAttribs) *token.DataAttribs {
	if da == nil {
		return &token.DataAttribs{}
	}
	cp := *da
	if da.TSR != nil {
		t := *da.TSR
		cp.TSR = &t
	}
	return &cp
}

func sliceSrc(src string, start, end int) string {
	if src == "" || start < 0 || end < start || end > len(src) {
		return ""
	}
	return src[start:end]
}

func stripEncapMetas(toks []token.Token) ([]token.Token, bool) {
	out := make([]token.Token, 0, len(toks))
	stripped := false
	for _, t := range toks {
		if isEncapMeta(t) {
			stripped = true
			continue
		}
		out = append(out, t)
	}
	return out, stripped
}

func isEncapMeta(t token.Token) bool {
	if !t.IsMeta() {
		return false
	}
	kv, ok := t.GetAttrib("typeof")
	if !ok {
		return false
	}
	s, isStr := kv.VStr()
	return isStr && hasReservedPrefix(s)
}

func hasReservedPrefix(typeof string) bool {
	for _, part := range strings.Fields(typeof) {
		for _, p := range reservedMetaPrefixes {
			if part == p || strings.HasPrefix(part, p+"/") {
				return true
			}
		}
	}
	return false
}

func tokensToKVs(toks []token.Token) []token.KV {
	var out []token.KV
	for _, t := range toks {
		out = append(out, t.Attribs...)
	}
	return out
}

func isEmptyField(v interface{}) bool {
	switch val := v.(type) {
	case string:
		return val == ""
	case []token.Token:
		if len(val) == 0 {
			return true
		}
		for _, t := range val {
			if t.Kind != token.KindText || t.Text != "" {
				return false
			}
		}
		return true
	default:
		return true
	}
}

func serializeField(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case []token.Token:
		var b strings.Builder
		for _, t := range val {
			if t.Kind == token.KindText {
				b.WriteString(t.Text)
			}
		}
		return b.String()
	default:
		return ""
	}
}

func cloneTemplatedAttribs(entries []token.TemplatedAttrib) []token.TemplatedAttrib {
	out := make([]token.TemplatedAttrib, len(entries))
	for i, te := range entries {
		cp := te
		cp.K.HTML = cloneTokenSlice(te.K.HTML)
		cp.V.HTML = cloneTokenSlice(te.V.HTML)
		out[i] = cp
	}
	return out
}

func cloneTokenSlice(toks []token.Token) []token.Token {
	if toks == nil {
		return nil
	}
	out := make([]token.Token, len(toks))
	copy(out, toks)
	return out
}

func toAttribPairs(entries []token.TemplatedAttrib) []store.AttribPair {
	out := make([]store.AttribPair, len(entries))
	for i, te := range entries {
		out[i] = store.AttribPair{K: attribValueFromField(te.K), V: attribValueFromField(te.V)}
	}
	return out
}

// attribValueFromField renders a TemplatedField into the data-mw.attribs
// wire shape. An empty html provenance is the literal JSON empty array, per
// the "no independent provenance" reading of the reparse-KV open question.
func attribValueFromField(f token.TemplatedField) store.AttribValue {
	av := store.AttribValue{Txt: f.Txt, SrcOffsets: f.SrcOffsets}
	if len(f.HTML) == 0 {
		av.HTML = json.RawMessage("[]")
		return av
	}
	if b, err := json.Marshal(fragmentDescriptors(f.HTML)); err == nil {
		av.HTML = json.RawMessage(b)
	} else {
		av.HTML = json.RawMessage("[]")
	}
	return av
}

// fragmentDescriptor is the minimal serialized shape of a provenance token,
// standing in for the real DOM-fragment expansion an external pipeline
// would perform on tok.HTML (§4.4 step 8 "expand each entry's html").
type fragmentDescriptor struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
}

func fragmentDescriptors(toks []token.Token) []fragmentDescriptor {
	out := make([]fragmentDescriptor, 0, len(toks))
	for _, t := range toks {
		switch t.Kind {
		case token.KindText:
			out = append(out, fragmentDescriptor{Type: "text", Text: t.Text})
		case token.KindTag, token.KindSelfClosingTag, token.KindEndTag:
			out = append(out, fragmentDescriptor{Type: "tag", Name: t.Name})
		}
	}
	return out
}
