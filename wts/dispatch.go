package wts

import (
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
	"github.com/wikimedia/parsoid-core-go/xmlserial"
)

// Handler is the capability record a dispatch entry returns (§9 "Dynamic
// dispatch across handlers"): handle, before/after margin requests, and
// whether the handler requires start-of-line.
type Handler struct {
	Handle   func(st *State, n *html.Node)
	Before   func(n *html.Node) int
	After    func(n *html.Node) int
	ForceSOL bool
}

// Dispatcher routes an element to its structural handler by name (and, for
// <meta>, further by typeof), falling through to the generic HTML handler
// for anything unregistered.
type Dispatcher struct {
	Meta    *MetaHandler
	Variant *VariantHandler
	Store   *store.Store
}

// NewDispatcher builds a Dispatcher wired to the given store and site
// configuration.
func NewDispatcher(s *store.Store, site *env.SiteConfig, e env.Env) *Dispatcher {
	return &Dispatcher{
		Meta:    NewMetaHandler(s, site, e),
		Variant: NewVariantHandler(s, site),
		Store:   s,
	}
}

// Dispatch serializes n using the handler selected for its name/typeof,
// consulting the handler's Before/After margin requests around the call
// (§4.5 "Before/after spacing", §9 "Dynamic dispatch across handlers").
func (d *Dispatcher) Dispatch(st *State, n *html.Node) {
	h := d.selectHandler(n)
	if h.Before != nil {
		st.RequestMinNewlines(h.Before(n))
	}
	h.Handle(st, n)
	if h.After != nil {
		st.RequestMinNewlines(h.After(n))
	}
}

func (d *Dispatcher) selectHandler(n *html.Node) Handler {
	if n.Type != html.ElementNode {
		return Handler{Handle: d.genericFallback}
	}
	typeof, _ := store.GetAttr(n, "typeof")
	switch {
	case n.Data == "meta":
		return Handler{Handle: d.Meta.Handle, Before: d.Meta.Before, After: d.Meta.After}
	case hasTypeofPrefix(typeof, "mw:LanguageVariant"):
		return Handler{Handle: d.Variant.Handle}
	default:
		return Handler{Handle: d.genericFallback}
	}
}

func (d *Dispatcher) genericFallback(st *State, n *html.Node) {
	res := xmlserial.Serialize(n, xmlserial.Options{Store: d.Store})
	st.Emit(res.HTML)
}
