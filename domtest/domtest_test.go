package domtest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/domtest"
)

func TestElBuildsElementWithAttrsAndChildren(t *testing.T) {
	n := domtest.El("p", domtest.Attrs{"class": "a"}, "hello")
	assert.Equal(t, html.ElementNode, n.Type)
	assert.Equal(t, "p", n.Data)
	require.Len(t, n.Attr, 1)
	assert.Equal(t, "class", n.Attr[0].Key)
	assert.Equal(t, "a", n.Attr[0].Val)
	require.NotNil(t, n.FirstChild)
	assert.Equal(t, html.TextNode, n.FirstChild.Type)
	assert.Equal(t, "hello", n.FirstChild.Data)
}

func TestElNestsChildNodes(t *testing.T) {
	n := domtest.El("div", domtest.El("p", "a"), domtest.El("p", "b"))
	require.NotNil(t, n.FirstChild)
	assert.Equal(t, "p", n.FirstChild.Data)
	assert.Equal(t, "p", n.LastChild.Data)
	assert.NotEqual(t, n.FirstChild, n.LastChild)
}

func TestDocWrapsChildrenInHTMLBody(t *testing.T) {
	d := domtest.Doc(domtest.El("p", "x"))
	htmlNode := d.FirstChild
	require.Equal(t, "html", htmlNode.Data)
	body := htmlNode.FirstChild
	require.Equal(t, "body", body.Data)
	require.NotNil(t, body.FirstChild)
	assert.Equal(t, "p", body.FirstChild.Data)
}
