package wts

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/xmlserial"
)

var includesKinds = []string{"IncludeOnly", "NoInclude", "OnlyInclude"}

// MetaHandler implements the Meta Serializer Handler (C5a): the decision
// tree of §4.5 over a <meta> element's typeof/property, data-parsoid and
// data-mw.
type MetaHandler struct {
	Store *store.Store
	Site  *env.SiteConfig
	Env   env.Env
}

// NewMetaHandler builds a MetaHandler. Site and e may be nil; the
// magic-word table lookup and warning log are then skipped.
func NewMetaHandler(s *store.Store, site *env.SiteConfig, e env.Env) *MetaHandler {
	return &MetaHandler{Store: s, Site: site, Env: e}
}

// Before implements the "before" half of §4.5's margin contract: a
// categorydefaultsort page-prop requests min=2 newlines when the preceding
// sibling is a non-HTML <p>, else min=1; any other newly-inserted
// non-placeholder meta requests min=1.
func (h *MetaHandler) Before(n *html.Node) int {
	if key, ok := h.pagePropKeyOf(n); ok && key == "categorydefaultsort" {
		if prev := prevElementSibling(n); prev != nil && prev.Data == "p" {
			pdp := h.Store.GetDataParsoid(prev)
			if pdp == nil || pdp.Stx != "html" {
				return 2
			}
		}
		return 1
	}
	if h.isNewlyInsertedNonPlaceholder(n) {
		return 1
	}
	return 0
}

// After implements the "after" half of §4.5's margin contract: any
// newly-inserted non-placeholder meta requests min=1 on both sides.
func (h *MetaHandler) After(n *html.Node) int {
	if h.isNewlyInsertedNonPlaceholder(n) {
		return 1
	}
	return 0
}

func (h *MetaHandler) pagePropKeyOf(n *html.Node) (string, bool) {
	property, _ := store.GetAttr(n, "property")
	return pagePropKey(property)
}

// isNewlyInsertedNonPlaceholder reports whether n carries no source
// provenance (no dp.Src, no dsr) and is not a placeholder, i.e. it was
// fabricated by a handler rather than round-tripped from wikitext.
func (h *MetaHandler) isNewlyInsertedNonPlaceholder(n *html.Node) bool {
	typeof, _ := store.GetAttr(n, "typeof")
	if hasTypeofPrefix(typeof, "mw:Placeholder") {
		return false
	}
	dp := h.Store.GetDataParsoid(n)
	return dp == nil || (!dp.HasSrc() && dp.Dsr == nil)
}

// prevElementSibling returns n's nearest preceding element sibling, or nil
// if a non-blank text node intervenes first.
func prevElementSibling(n *html.Node) *html.Node {
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return s
		}
		if s.Type == html.TextNode && strings.TrimSpace(s.Data) != "" {
			return nil
		}
	}
	return nil
}

// Handle serializes one <meta> element.
func (h *MetaHandler) Handle(st *State, n *html.Node) {
	dp := h.Store.GetDataParsoid(n)
	if dp == nil {
		dp = &store.DataParsoid{}
	}
	dmw := h.Store.GetDataMw(n)
	typeof, _ := store.GetAttr(n, "typeof")
	property, _ := store.GetAttr(n, "property")

	// step 1.
	if dp.HasSrc() && hasTypeofPrefix(typeof, "mw:Placeholder") {
		st.Emit(dp.Src)
		return
	}

	// step 2.
	if key, ok := pagePropKey(property); ok {
		h.handlePageProp(st, n, dp, key, typeof)
		return
	}

	// step 3.
	if kind, isEnd, ok := includesKind(typeof); ok {
		if kind == "IncludeOnly" && isEnd {
			return
		}
		switch {
		case dmw != nil && dmw.Body != nil && dmw.Body.ExtSrc != "":
			st.Emit(dmw.Body.ExtSrc)
		case dp.HasSrc():
			st.Emit(dp.Src)
		default:
			st.Emit(defaultIncludesLiteral(kind, isEnd))
		}
		return
	}

	// step 4.
	if hasTypeofPrefix(typeof, "mw:DiffMarker") || hasTypeofPrefix(typeof, "mw:Separator") {
		return
	}

	// step 5.
	h.fallback(st, n)
}

func (h *MetaHandler) handlePageProp(st *State, n *html.Node, dp *store.DataParsoid, key, typeof string) {
	if h.Site != nil && h.Site.MagicMasqSet[key] {
		content, _ := store.GetAttr(n, "content")
		switch {
		case hasTypeofPrefix(typeof, "mw:ExpandedAttrs"):
			st.Emit("{{" + content + "}}")
		case dp.HasSrc():
			if idx := strings.IndexByte(dp.Src, ':'); idx >= 0 {
				st.Emit(dp.Src[:idx+1] + content + "}}")
			} else {
				st.Emit(dp.Src)
			}
		default:
			st.Emit("{{" + strings.ToUpper(key) + ":" + content + "}}")
			if h.Env != nil {
				h.Env.Log(env.LevelWarn, "page-prop magic word has no provenance", "key", key)
			}
		}
		return
	}

	if h.Site != nil {
		if mw, ok := h.Site.MagicWords[key]; ok {
			if dp.MagicSrc != "" {
				st.Emit(dp.MagicSrc)
				return
			}
			if len(mw.Aliases) > 0 {
				st.Emit(mw.Aliases[0])
				return
			}
		}
	}
	st.Emit(dp.MagicSrc)
}

func (h *MetaHandler) fallback(st *State, n *html.Node) {
	res := xmlserial.Serialize(n, xmlserial.Options{Store: h.Store})
	st.Emit(res.HTML)
}

func pagePropKey(property string) (string, bool) {
	const prefix = "mw:PageProp/"
	if strings.HasPrefix(property, prefix) {
		return property[len(prefix):], true
	}
	return "", false
}

// includesKind reports the matched mw:Includes/* kind and whether it is the
// /End sibling.
func includesKind(typeof string) (kind string, isEnd bool, ok bool) {
	for _, part := range strings.Fields(typeof) {
		const prefix = "mw:Includes/"
		if !strings.HasPrefix(part, prefix) {
			continue
		}
		rest := part[len(prefix):]
		end := strings.HasSuffix(rest, "/End")
		base := strings.TrimSuffix(rest, "/End")
		for _, k := range includesKinds {
			if base == k {
				return k, end, true
			}
		}
	}
	return "", false, false
}

func defaultIncludesLiteral(kind string, isEnd bool) string {
	tag := strings.ToLower(kind)
	if isEnd {
		return "</" + tag + ">"
	}
	return "<" + tag + ">"
}

// hasTypeofPrefix reports whether typeof contains a space-separated token
// equal to prefix, or prefixed by "prefix/".
func hasTypeofPrefix(typeof, prefix string) bool {
	for _, part := range strings.Fields(typeof) {
		if part == prefix || strings.HasPrefix(part, prefix+"/") {
			return true
		}
	}
	return false
}
