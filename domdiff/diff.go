// Package domdiff implements the DOM Diff (C3): it pairs elements between a
// pre-edit and a post-edit tree and attaches diff marks (§3.4) to the
// post-edit tree, driving selective serialization in html2wt.
//
// The child-list alignment is a generalization of the common-prefix /
// common-suffix scan this package was adapted from (model.FindDiffStart /
// model.FindDiffEnd in the document-model package this repo started from)
// into a full LCS over (tag, identity) signatures, per §4.3 step 3.
package domdiff

import (
	"sort"
	"strconv"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/store"
)

// Diff compares oldRoot against newRoot and attaches diff marks (§3.4) to
// newRoot in place. It reports whether newRoot was modified relative to
// oldRoot.
func Diff(s *store.Store, oldRoot, newRoot *html.Node) bool {
	diffChildren(s, newRoot, children(oldRoot), children(newRoot))
	var marked func(n *html.Node) bool
	marked = func(n *html.Node) bool {
		if len(s.DiffMarks(n)) > 0 {
			return true
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if marked(c) {
				return true
			}
		}
		return false
	}
	return marked(newRoot)
}

func children(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, c)
	}
	return out
}

// isEncapWrapper reports whether n is the first element of an
// about-sharing encapsulation group: it carries both an about id and a
// typeof matching mw:Transclusion or mw:Extension/... (§3.3, glossary
// "Encapsulation wrapper").
func isEncapWrapper(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	about, ok := store.GetAttr(n, "about")
	if !ok || about == "" {
		return false
	}
	typeof, _ := store.GetAttr(n, "typeof")
	return hasTypeofPrefix(typeof, "mw:Transclusion") || hasTypeofPrefix(typeof, "mw:Extension/")
}

func hasTypeofPrefix(typeof, prefix string) bool {
	for _, t := range splitSpace(typeof) {
		if t == prefix || (len(prefix) > 0 && prefix[len(prefix)-1] == '/' && len(t) > len(prefix) && t[:len(prefix)] == prefix) {
			return true
		}
	}
	return false
}

func splitSpace(s string) []string {
	var out []string
	start := -1
	for i, r := range s {
		if r == ' ' {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// identity is the designated identity key of §4.3 step 1: the
// data-parsoid.dpi assigned at load, or the encapsulation about id, or
// (falling back) the node's own position among its siblings.
func identity(s *store.Store, n *html.Node, pos int) string {
	if dp := s.GetDataParsoid(n); dp != nil && dp.DPI != nil {
		return "dpi:" + strconv.Itoa(*dp.DPI)
	}
	if about, ok := store.GetAttr(n, "about"); ok && about != "" {
		return "about:" + about
	}
	return "pos:" + strconv.Itoa(pos)
}

// signature is the (tag, identity) tuple the LCS alignment matches on,
// collapsed to a single comparable string. Text and comment nodes match
// only on exact content, which makes "unmatched" the correct outcome for a
// text/comment mismatch without any special-casing in the alignment step
// itself (§4.3 step 4: "a mismatch is modeled as delete-old + insert-new").
func signature(s *store.Store, n *html.Node, pos int) string {
	switch n.Type {
	case html.TextNode:
		return "#text:" + n.Data
	case html.CommentNode:
		return "#comment:" + n.Data
	case html.ElementNode:
		return n.Data + "|" + identity(s, n, pos)
	default:
		return "#other:" + strconv.Itoa(pos)
	}
}

type pair struct{ oi, ni int }

// lcsAlign returns the maximal list of index pairs (oi, ni), oi and ni both
// strictly increasing, such that oldSigs[oi] == newSigs[ni].
func lcsAlign(oldSigs, newSigs []string) []pair {
	n, m := len(oldSigs), len(newSigs)
	dp := make([][]int16, n+1)
	for i := range dp {
		dp[i] = make([]int16, m+1)
	}
	for i := n - 1; i >= 0; i-- {
		for j := m - 1; j >= 0; j-- {
			if oldSigs[i] == newSigs[j] {
				dp[i][j] = dp[i+1][j+1] + 1
			} else if dp[i+1][j] >= dp[i][j+1] {
				dp[i][j] = dp[i+1][j]
			} else {
				dp[i][j] = dp[i][j+1]
			}
		}
	}
	var pairs []pair
	i, j := 0, 0
	for i < n && j < m {
		if oldSigs[i] == newSigs[j] {
			pairs = append(pairs, pair{i, j})
			i++
			j++
		} else if dp[i+1][j] >= dp[i][j+1] {
			i++
		} else {
			j++
		}
	}
	return pairs
}

// diffChildren diffs oldChildren against newChildren, attaching marks to
// parentNew and its new children, and returns whether parentNew ends up
// carrying subtree-changed (so the caller can propagate it further up).
func diffChildren(s *store.Store, parentNew *html.Node, oldChildren, newChildren []*html.Node) bool {
	oldSigs := make([]string, len(oldChildren))
	for i, c := range oldChildren {
		oldSigs[i] = signature(s, c, i)
	}
	newSigs := make([]string, len(newChildren))
	for i, c := range newChildren {
		newSigs[i] = signature(s, c, i)
	}
	matched := lcsAlign(oldSigs, newSigs)

	var childrenChanged, textualMismatch, anyDescendantSubtreeChanged bool

	referenceAt := func(ni int) *html.Node {
		if ni < len(newChildren) {
			return newChildren[ni]
		}
		return nil
	}
	markDeletedRun := func(lo, hi, ni int) {
		for k := lo; k < hi; k++ {
			childrenChanged = true
			if oldChildren[k].Type != html.ElementNode {
				textualMismatch = true
			}
			marker := deletedMarker()
			ref := referenceAt(ni)
			if ref != nil {
				parentNew.InsertBefore(marker, ref)
			} else {
				parentNew.AppendChild(marker)
			}
		}
	}
	markInsertedRun := func(lo, hi int) {
		for k := lo; k < hi; k++ {
			childrenChanged = true
			c := newChildren[k]
			if c.Type != html.ElementNode {
				textualMismatch = true
			} else {
				s.AddDiffMark(c, store.DiffInserted)
			}
		}
	}

	oi, ni := 0, 0
	for _, p := range matched {
		markDeletedRun(oi, p.oi, ni)
		markInsertedRun(ni, p.ni)

		oldC, newC := oldChildren[p.oi], newChildren[p.ni]
		if oldC.Type == html.ElementNode {
			attrsDiffer := !attrsEqual(oldC, newC)
			if attrsDiffer {
				s.AddDiffMark(newC, store.DiffModifiedWrapper)
			}
			// An element with differing attributes, an encapsulation
			// wrapper, or an about-sibling carried through as part of its
			// wrapper's unit is opaque: no descendant of it is ever
			// visited, let alone marked (§8 "for any element carrying
			// modified-wrapper, no descendant carries any diff mark").
			opaque := attrsDiffer || isEncapWrapper(newC) || aboutSibling(s, newC)
			if !opaque {
				if diffChildren(s, newC, children(oldC), children(newC)) {
					anyDescendantSubtreeChanged = true
				}
			}
		}
		// text/comment: signature equality already implies identical content

		oi, ni = p.oi+1, p.ni+1
	}
	markDeletedRun(oi, len(oldChildren), ni)
	markInsertedRun(ni, len(newChildren))

	if childrenChanged {
		s.AddDiffMark(parentNew, store.DiffChildrenChanged)
	}
	if textualMismatch || anyDescendantSubtreeChanged {
		s.AddDiffMark(parentNew, store.DiffSubtreeChanged)
	}
	return s.HasDiffMark(parentNew, store.DiffSubtreeChanged)
}

// aboutSibling reports whether n shares an about id with a preceding
// sibling that is an encapsulation wrapper — i.e. n is an about-sibling,
// not the wrapper itself (§4.3 step 5).
func aboutSibling(s *store.Store, n *html.Node) bool {
	about, ok := store.GetAttr(n, "about")
	if !ok || about == "" {
		return false
	}
	if isEncapWrapper(n) {
		return false
	}
	for prev := n.PrevSibling; prev != nil; prev = prev.PrevSibling {
		if prevAbout, ok := store.GetAttr(prev, "about"); ok && prevAbout == about && isEncapWrapper(prev) {
			return true
		}
	}
	return false
}

// attrsEqual compares two elements' attribute sets order-independently. The
// leaf comparison is delegated to go-cmp (the deep-equal library the
// reference corpus uses for exactly this kind of structural comparison)
// rather than hand-rolled per-field checks.
func attrsEqual(a, b *html.Node) bool {
	return cmp.Equal(sortedAttrs(a.Attr), sortedAttrs(b.Attr))
}

func sortedAttrs(attrs []html.Attribute) []html.Attribute {
	out := append([]html.Attribute(nil), attrs...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func deletedMarker() *html.Node {
	return &html.Node{
		Type: html.ElementNode,
		Data: "meta",
		Attr: []html.Attribute{{Key: "typeof", Val: "mw:DiffMarker/deleted"}},
	}
}

