// Package domtest provides helpers for building golang.org/x/net/html DOM
// trees in tests, adapted from the teacher's ProseMirror node-builder DSL
// (test/builder/builder.go): a builder function takes an optional
// attributes map first, followed by zero or more children, and returns the
// constructed node.
package domtest

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Attrs is the optional leading attributes argument to El.
type Attrs map[string]string

// Child is anything El accepts as a child argument: a string (becomes a
// text node), or an already-built *html.Node.
type Child interface{}

// El builds an element node named tag. args may start with an Attrs map,
// followed by any number of Child values.
func El(tag string, args ...interface{}) *html.Node {
	attrs, rest := takeAttrs(args)
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	for k, v := range attrs {
		n.Attr = append(n.Attr, html.Attribute{Key: k, Val: v})
	}
	for _, c := range rest {
		appendChild(n, c)
	}
	return n
}

// Text builds a text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

func takeAttrs(args []interface{}) (Attrs, []interface{}) {
	if len(args) == 0 {
		return nil, args
	}
	if a, ok := args[0].(Attrs); ok {
		return a, args[1:]
	}
	return nil, args
}

func appendChild(parent *html.Node, c interface{}) {
	switch v := c.(type) {
	case string:
		parent.AppendChild(Text(v))
	case *html.Node:
		parent.AppendChild(v)
	}
}

// Doc wraps children in a minimal <html><body>...</body></html> document
// node, for tests that need a full tree rather than a bare fragment.
func Doc(children ...interface{}) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	htmlNode := El("html")
	body := El("body")
	for _, c := range children {
		appendChild(body, c)
	}
	htmlNode.AppendChild(body)
	root.AppendChild(htmlNode)
	return root
}
