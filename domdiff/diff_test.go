package domdiff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/domdiff"
	"github.com/wikimedia/parsoid-core-go/store"
)

func elem(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{Type: html.ElementNode, Data: tag, Attr: attrs}
	for _, c := range children {
		n.AppendChild(c)
	}
	return n
}

func text(s string) *html.Node { return &html.Node{Type: html.TextNode, Data: s} }

func body(children ...*html.Node) *html.Node { return elem("body", nil, children...) }

func deletedMarkers(n *html.Node) int {
	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "meta" {
			for _, a := range c.Attr {
				if a.Key == "typeof" && a.Val == "mw:DiffMarker/deleted" {
					count++
				}
			}
		}
	}
	return count
}

// Scenario 1: text change in first of two paragraphs.
func TestTextChangeInFirstParagraph(t *testing.T) {
	s := store.New()
	oldP1, oldP2 := elem("p", nil, text("a")), elem("p", nil, text("b"))
	oldBody := body(oldP1, oldP2)

	newP1, newP2 := elem("p", nil, text("A")), elem("p", nil, text("b"))
	newBody := body(newP1, newP2)

	modified := domdiff.Diff(s, oldBody, newBody)
	assert.True(t, modified)

	assert.True(t, s.HasDiffMark(newP1, store.DiffChildrenChanged))
	assert.True(t, s.HasDiffMark(newP1, store.DiffSubtreeChanged))
	assert.Equal(t, 1, deletedMarkers(newP1))

	assert.False(t, s.HasDiffMark(newP2, store.DiffChildrenChanged))
	assert.False(t, s.HasDiffMark(newP2, store.DiffSubtreeChanged))
	assert.False(t, s.HasDiffMark(newP2, store.DiffModifiedWrapper))
}

// Scenario 2: delete trailing paragraph.
func TestDeleteTrailingParagraph(t *testing.T) {
	s := store.New()
	oldP1, oldP2 := elem("p", nil, text("a")), elem("p", nil, text("b"))
	oldBody := body(oldP1, oldP2)

	newP1 := elem("p", nil, text("a"))
	newBody := body(newP1)

	domdiff.Diff(s, oldBody, newBody)

	assert.True(t, s.HasDiffMark(newBody, store.DiffChildrenChanged))
	assert.False(t, s.HasDiffMark(newBody, store.DiffSubtreeChanged))
	assert.Equal(t, 1, deletedMarkers(newBody))

	// the synthetic marker is a sibling after the surviving <p>.
	assert.Equal(t, newP1, newBody.FirstChild)
	assert.Equal(t, "meta", newP1.NextSibling.Data)
}

// Scenario 3: attribute change only.
func TestAttributeChangeOnly(t *testing.T) {
	s := store.New()
	oldP1 := elem("p", []html.Attribute{{Key: "class", Val: "a"}}, text("a"))
	oldP2 := elem("p", []html.Attribute{{Key: "class", Val: "b"}}, text("b"))
	oldBody := body(oldP1, oldP2)

	newP1 := elem("p", []html.Attribute{{Key: "class", Val: "X"}}, text("a"))
	newP2 := elem("p", []html.Attribute{{Key: "class", Val: "b"}}, text("b"))
	newBody := body(newP1, newP2)

	domdiff.Diff(s, oldBody, newBody)

	assert.True(t, s.HasDiffMark(newP1, store.DiffModifiedWrapper))
	assert.False(t, s.HasDiffMark(newP1, store.DiffChildrenChanged))
	assert.False(t, s.HasDiffMark(newP1, store.DiffSubtreeChanged))

	assert.False(t, s.HasDiffMark(newP2, store.DiffModifiedWrapper))
	assert.False(t, s.HasDiffMark(newP2, store.DiffChildrenChanged))
}

func TestIdenticalTreesProduceNoMarks(t *testing.T) {
	s := store.New()
	oldBody := body(elem("p", nil, text("a")), elem("p", nil, text("b")))
	newP1, newP2 := elem("p", nil, text("a")), elem("p", nil, text("b"))
	newBody := body(newP1, newP2)

	modified := domdiff.Diff(s, oldBody, newBody)
	assert.False(t, modified)
	assert.Empty(t, s.DiffMarks(newBody))
	assert.Empty(t, s.DiffMarks(newP1))
	assert.Empty(t, s.DiffMarks(newP2))
}

func TestModifiedWrapperIsOpaque(t *testing.T) {
	s := store.New()
	oldWrap := elem("p", []html.Attribute{{Key: "class", Val: "a"}}, elem("b", nil, text("x")))
	oldBody := body(oldWrap)

	newInner := elem("b", nil, text("y")) // descendant also changed
	newWrap := elem("p", []html.Attribute{{Key: "class", Val: "X"}}, newInner)
	newBody := body(newWrap)

	domdiff.Diff(s, oldBody, newBody)

	assert.True(t, s.HasDiffMark(newWrap, store.DiffModifiedWrapper))
	assert.Empty(t, s.DiffMarks(newInner))
}

func TestEncapsulationWrapperContentIsOpaque(t *testing.T) {
	s := store.New()
	oldWrap := elem("div", []html.Attribute{{Key: "typeof", Val: "mw:Transclusion"}, {Key: "about", Val: "#mwt1"}}, text("old"))
	oldBody := body(oldWrap)

	newInner := text("new")
	newWrap := elem("div", []html.Attribute{{Key: "typeof", Val: "mw:Transclusion"}, {Key: "about", Val: "#mwt1"}}, newInner)
	newBody := body(newWrap)

	domdiff.Diff(s, oldBody, newBody)

	assert.Empty(t, s.DiffMarks(newWrap))
	assert.Empty(t, s.DiffMarks(newInner))
}
