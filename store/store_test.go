package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/wikimedia/parsoid-core-go/store"
)

func TestNodeIDIsLazyAndStable(t *testing.T) {
	s := store.New()
	n := &html.Node{Type: html.ElementNode, Data: "p"}
	id1 := s.NodeID(n)
	id2 := s.NodeID(n)
	assert.Equal(t, id1, id2)

	other := &html.Node{Type: html.ElementNode, Data: "p"}
	idOther := s.NodeID(other)
	assert.NotEqual(t, id1, idOther)
}

func TestLoadAndStoreDataAttribsRoundTrip(t *testing.T) {
	s := store.New()
	n := &html.Node{
		Type: html.ElementNode,
		Data: "p",
		Attr: []html.Attribute{
			{Key: "data-parsoid", Val: `{"dsr":[0,5,0,0]}`},
			{Key: "data-mw", Val: `{"name":"x"}`},
		},
	}
	require.NoError(t, s.LoadDataAttribs(n))
	_, hasParsoidAttr := store.GetAttr(n, "data-parsoid")
	assert.False(t, hasParsoidAttr)

	dp := s.GetDataParsoid(n)
	require.NotNil(t, dp)
	require.NotNil(t, dp.Dsr)
	assert.Equal(t, [4]int{0, 5, 0, 0}, *dp.Dsr)

	dm := s.GetDataMw(n)
	require.NotNil(t, dm)
	assert.Equal(t, "x", dm.Name)

	require.NoError(t, s.StoreDataAttribs(n))
	v, ok := store.GetAttr(n, "data-parsoid")
	assert.True(t, ok)
	assert.Contains(t, v, `"dsr":[0,5,0,0]`)
}

func TestDiffMarks(t *testing.T) {
	s := store.New()
	n := &html.Node{Type: html.ElementNode, Data: "p"}
	assert.False(t, s.HasDiffMark(n, store.DiffInserted))
	s.AddDiffMark(n, store.DiffInserted)
	s.AddDiffMark(n, store.DiffChildrenChanged)
	assert.True(t, s.HasDiffMark(n, store.DiffInserted))
	assert.True(t, s.HasDiffMark(n, store.DiffChildrenChanged))
	assert.False(t, s.HasDiffMark(n, store.DiffDeleted))
}
