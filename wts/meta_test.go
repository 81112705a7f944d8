package wts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/wts"
)

func metaNode(attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "meta", Attr: attrs}
}

// Scenario 5: meta placeholder.
func TestMetaPlaceholderEmitsSrcVerbatim(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:Placeholder"})
	s.SetDataParsoid(n, &store.DataParsoid{Src: "[[X"})

	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "[[X", st.Out())
}

func TestMetaDiffMarkerEmitsNothing(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:DiffMarker/deleted"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "", st.Out())
}

func TestMetaIncludeOnlyEndEmitsNothing(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:Includes/IncludeOnly/End"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "", st.Out())
}

func TestMetaNoIncludeEmitsDefaultLiteralWhenNoProvenance(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:Includes/NoInclude"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "<noinclude>", st.Out())
}

func TestMetaPagePropMasqWithExpandedAttrs(t *testing.T) {
	s := store.New()
	n := metaNode(
		html.Attribute{Key: "property", Val: "mw:PageProp/defaultsort"},
		html.Attribute{Key: "typeof", Val: "mw:ExpandedAttrs"},
		html.Attribute{Key: "content", Val: "Sort Key"},
	)
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "{{Sort Key}}", st.Out())
}

func TestMetaPagePropMasqWithSrcPrefix(t *testing.T) {
	s := store.New()
	n := metaNode(
		html.Attribute{Key: "property", Val: "mw:PageProp/defaultsort"},
		html.Attribute{Key: "content", Val: "Sort Key"},
	)
	s.SetDataParsoid(n, &store.DataParsoid{Src: "{{DEFAULTSORT:old}}"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "{{DEFAULTSORT:Sort Key}}", st.Out())
}

func TestMetaPagePropMagicWordUsesCanonicalForm(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "property", Val: "mw:PageProp/notoc"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "__NOTOC__", st.Out())
}

func TestMetaFallsThroughToGenericHandler(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "property", Val: "unrecognized"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	h.Handle(st, n)
	require.Contains(t, st.Out(), "<meta")
}

// §4.5 "Before/after spacing".

func TestMetaCategoryDefaultSortRequestsTwoNewlinesAfterWikitextParagraph(t *testing.T) {
	s := store.New()
	parent := &html.Node{Type: html.ElementNode, Data: "body"}
	p := &html.Node{Type: html.ElementNode, Data: "p"}
	parent.AppendChild(p)
	n := metaNode(html.Attribute{Key: "property", Val: "mw:PageProp/categorydefaultsort"})
	parent.AppendChild(n)

	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	assert.Equal(t, 2, h.Before(n))
}

func TestMetaCategoryDefaultSortRequestsOneNewlineAfterHTMLParagraph(t *testing.T) {
	s := store.New()
	parent := &html.Node{Type: html.ElementNode, Data: "body"}
	p := &html.Node{Type: html.ElementNode, Data: "p"}
	parent.AppendChild(p)
	n := metaNode(html.Attribute{Key: "property", Val: "mw:PageProp/categorydefaultsort"})
	parent.AppendChild(n)
	s.SetDataParsoid(p, &store.DataParsoid{Stx: "html"})

	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	assert.Equal(t, 1, h.Before(n))
}

func TestMetaNewlyInsertedNonPlaceholderRequestsMarginOnBothSides(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:Separator"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	assert.Equal(t, 1, h.Before(n))
	assert.Equal(t, 1, h.After(n))
}

func TestMetaWithProvenanceRequestsNoMargin(t *testing.T) {
	s := store.New()
	n := metaNode(html.Attribute{Key: "typeof", Val: "mw:DiffMarker/deleted"})
	s.SetDataParsoid(n, &store.DataParsoid{Src: "existing"})
	h := wts.NewMetaHandler(s, env.DefaultSiteConfig(), nil)
	assert.Equal(t, 0, h.Before(n))
	assert.Equal(t, 0, h.After(n))
}

func TestDispatchAppliesCategoryDefaultSortBeforeMargin(t *testing.T) {
	s := store.New()
	d := wts.NewDispatcher(s, env.DefaultSiteConfig(), nil)
	st := wts.NewState()
	st.Emit("some paragraph text")

	parent := &html.Node{Type: html.ElementNode, Data: "body"}
	p := &html.Node{Type: html.ElementNode, Data: "p"}
	parent.AppendChild(p)
	n := metaNode(
		html.Attribute{Key: "property", Val: "mw:PageProp/categorydefaultsort"},
		html.Attribute{Key: "content", Val: "Key"},
	)
	parent.AppendChild(n)

	d.Dispatch(st, n)
	assert.Equal(t, "some paragraph text\n\n{{CATEGORYDEFAULTSORT:Key}}", st.Out())
}
