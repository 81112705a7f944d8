package wts

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/env"
	"github.com/wikimedia/parsoid-core-go/store"
)

// Rule is one {l, f, t} entry of a twoway/oneway rule list. f is only
// meaningful for oneway rules.
type Rule struct {
	L string `json:"l,omitempty"`
	F string `json:"f,omitempty"`
	T string `json:"t,omitempty"`
}

// Filter restricts conversion to a fixed language set (§4.6 "filter").
type Filter struct {
	L []string `json:"l,omitempty"`
	T string   `json:"t,omitempty"`
}

// Variant is the data-mw-variant JSON payload of a language-variant span.
type Variant struct {
	Flags    []string `json:"flags,omitempty"`
	Filter   *Filter  `json:"filter,omitempty"`
	Disabled *Rule    `json:"disabled,omitempty"`
	Name     *Rule    `json:"name,omitempty"`
	Twoway   []Rule   `json:"twoway,omitempty"`
	Oneway   []Rule   `json:"oneway,omitempty"`

	// Bidir/Unidir/Undir are legacy shapes normalized onto Twoway/Oneway
	// before any other processing (§4.6 step 2). Undir is the garbled
	// field name the source's own serializer reads; both are accepted.
	Bidir  []Rule `json:"bidir,omitempty"`
	Unidir []Rule `json:"unidir,omitempty"`
	Undir  []Rule `json:"undir,omitempty"`
}

// normalizeLegacy implements step 2: bidir->twoway, and the non-typo
// reading of unidir/undir->oneway, where f and t are both sourced from
// whichever single side the legacy rule actually set (§9 Open Question 1).
func normalizeLegacy(v *Variant) {
	if len(v.Twoway) == 0 && len(v.Bidir) > 0 {
		v.Twoway = v.Bidir
	}
	legacy := v.Unidir
	if len(legacy) == 0 {
		legacy = v.Undir
	}
	if len(v.Oneway) == 0 && len(legacy) > 0 {
		out := make([]Rule, len(legacy))
		for i, r := range legacy {
			if r.F == "" {
				r.F = r.T
			}
			if r.T == "" {
				r.T = r.F
			}
			out[i] = r
		}
		v.Oneway = out
	}
}

var langRe = regexp.MustCompile(`^[a-z][-a-z]+$`)

func protectLang(l string) string {
	if langRe.MatchString(l) {
		return l
	}
	return "<nowiki>" + l + "</nowiki>"
}

func protectBody(t string) string {
	return strings.ReplaceAll(t, "}-", "<nowiki>}-</nowiki>")
}

// VariantHandler implements the Language-Variant Serializer Handler (C5b).
type VariantHandler struct {
	Store *store.Store
	Site  *env.SiteConfig
}

// NewVariantHandler builds a VariantHandler. Site may be nil, in which case
// flag names are assumed to already be LCNameMap abbreviations.
func NewVariantHandler(s *store.Store, site *env.SiteConfig) *VariantHandler {
	return &VariantHandler{Store: s, Site: site}
}

// Handle serializes one language-variant element.
func (h *VariantHandler) Handle(st *State, n *html.Node) {
	raw, _ := store.GetAttr(n, "data-mw-variant")
	var v Variant
	if raw != "" {
		_ = json.Unmarshal([]byte(raw), &v)
	}
	normalizeLegacy(&v)

	dp := h.Store.GetDataParsoid(n)
	if dp == nil {
		dp = &store.DataParsoid{}
	}

	flags := h.buildFlags(n, &v, dp)
	flagStr := flagStringWithSpacing(flags, dp.FlSp)

	body := h.serializeBody(&v)

	var combined string
	if flagStr == "" {
		combined = body
	} else {
		combined = flagStr + "|" + body
	}
	if hasTrailingSemi(dp) {
		combined += ";"
	}
	st.EmitConstrained("-{" + combined + "}-")
}

// buildFlags runs steps 3-5: build the working flag set from the fixed
// LCNameMap, add implicit flags, then canonicalize, returning flags sorted
// by their recorded original position (step 6).
func (h *VariantHandler) buildFlags(n *html.Node, v *Variant, dp *store.DataParsoid) []string {
	working := map[string]bool{}
	for _, f := range v.Flags {
		if h.Site != nil {
			if abbr, ok := h.Site.LCNameMap[f]; ok {
				working[abbr] = true
				continue
			}
		}
		working[f] = true
	}
	original := make(map[string]bool, len(working))
	for f := range working {
		original[f] = true
	}

	// step 4: implicit flags.
	if n.Data != "meta" {
		working["$S"] = true
	}
	if !working["$S"] && !working["T"] && v.Filter == nil {
		working["H"] = true
	}

	maybeDelete := func(f string) {
		if !original[f] {
			delete(working, f)
		}
	}

	// step 5: canonicalize, per the fixed table (§4.6).
	if len(working) == 1 && working["$S"] {
		maybeDelete("$S")
	}
	if working["D"] && working["$S"] && working["A"] {
		working["H"] = true
		delete(working, "A")
	}
	if working["D"] && !working["$S"] {
		working["A"] = true
		delete(working, "H")
	}
	if working["T"] && working["A"] && !working["$S"] {
		delete(working, "A")
		working["H"] = true
	}
	if working["A"] && working["$S"] {
		maybeDelete("$S")
	}
	if working["A"] && working["H"] {
		maybeDelete("A")
	}
	if working["R"] {
		maybeDelete("$S")
	}
	if working["-"] {
		maybeDelete("H")
	}

	flags := make([]string, 0, len(working))
	for f := range working {
		flags = append(flags, f)
	}
	sort.Slice(flags, func(i, j int) bool {
		pi, oki := dp.Fl[flags[i]]
		pj, okj := dp.Fl[flags[j]]
		if !oki {
			pi = len(dp.Fl) + 1
		}
		if !okj {
			pj = len(dp.Fl) + 1
		}
		if pi != pj {
			return pi < pj
		}
		return flags[i] < flags[j]
	})
	return flags
}

func flagStringWithSpacing(flags []string, flSp []int) string {
	var b strings.Builder
	for i, f := range flags {
		b.WriteString(f)
		if i < len(flSp) && flSp[i] > 0 {
			b.WriteString(strings.Repeat(" ", flSp[i]))
		}
	}
	return b.String()
}

// serializeBody implements step 7, dispatching on the variant's shape.
func (h *VariantHandler) serializeBody(v *Variant) string {
	switch {
	case v.Filter != nil:
		langs := make([]string, len(v.Filter.L))
		for i, l := range v.Filter.L {
			langs[i] = protectLang(l)
		}
		return strings.Join(langs, ",") + ":" + protectBody(v.Filter.T)
	case v.Disabled != nil:
		return protectBody(v.Disabled.T)
	case v.Name != nil:
		return protectBody(v.Name.T)
	case len(v.Oneway) > 0:
		parts := make([]string, len(v.Oneway))
		for i, r := range v.Oneway {
			parts[i] = protectLang(r.L) + ":" + protectBody(r.F) + "=>" + protectBody(r.T)
		}
		return strings.Join(parts, ";")
	case len(v.Twoway) > 0:
		parts := make([]string, len(v.Twoway))
		for i, r := range v.Twoway {
			parts[i] = protectLang(r.L) + ":" + protectBody(r.T)
		}
		return strings.Join(parts, ";")
	default:
		return ""
	}
}

// hasTrailingSemi reads the reparse-scratch slot recording whether the
// source body had a trailing ";" before its closing "}-" (step 8).
func hasTrailingSemi(dp *store.DataParsoid) bool {
	if dp == nil || dp.Tmp == nil {
		return false
	}
	raw, ok := dp.Tmp["trailingSemi"]
	if !ok {
		return false
	}
	var b bool
	_ = json.Unmarshal(raw, &b)
	return b
}
