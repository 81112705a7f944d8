package wts_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/wts"
)

func variantNode(dataMwVariant string) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "span", Attr: []html.Attribute{
		{Key: "typeof", Val: "mw:LanguageVariant"},
		{Key: "data-mw-variant", Val: dataMwVariant},
	}}
}

// Scenario 6: language variant twoway.
func TestVariantTwowaySerializesToFlagsLessForm(t *testing.T) {
	s := store.New()
	n := variantNode(`{"twoway":[{"l":"zh-hans","t":"X"},{"l":"zh-hant","t":"Y"}]}`)
	s.SetDataParsoid(n, &store.DataParsoid{Fl: map[string]int{}, FlSp: nil, TSp: nil})

	h := wts.NewVariantHandler(s, env.DefaultSiteConfig())
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "-{zh-hans:X;zh-hant:Y}-", st.Out())
}

func TestVariantOnewaySerializesWithArrow(t *testing.T) {
	s := store.New()
	n := variantNode(`{"oneway":[{"l":"zh-hans","f":"A","t":"B"}]}`)
	s.SetDataParsoid(n, &store.DataParsoid{})

	h := wts.NewVariantHandler(s, env.DefaultSiteConfig())
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "-{zh-hans:A=>B}-", st.Out())
}

func TestVariantLegacyUnidirNormalizesToOneway(t *testing.T) {
	s := store.New()
	n := variantNode(`{"unidir":[{"l":"zh-hans","t":"B"}]}`)
	s.SetDataParsoid(n, &store.DataParsoid{})

	h := wts.NewVariantHandler(s, env.DefaultSiteConfig())
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "-{zh-hans:B=>B}-", st.Out())
}

func TestVariantFlagsSurviveWhenExplicitlyGiven(t *testing.T) {
	s := store.New()
	n := variantNode(`{"flags":["describe"],"twoway":[{"l":"zh-hans","t":"X"}]}`)
	s.SetDataParsoid(n, &store.DataParsoid{Fl: map[string]int{"D": 0}})

	h := wts.NewVariantHandler(s, env.DefaultSiteConfig())
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "-{D$S|zh-hans:X}-", st.Out())
}

func TestVariantNameShapeEmitsRawBody(t *testing.T) {
	s := store.New()
	n := variantNode(`{"name":{"t":"raw text"}}`)
	s.SetDataParsoid(n, &store.DataParsoid{})

	h := wts.NewVariantHandler(s, env.DefaultSiteConfig())
	st := wts.NewState()
	h.Handle(st, n)
	assert.Equal(t, "-{raw text}-", st.Out())
}
