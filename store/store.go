// Package store implements the DOM Data Store (C2): it associates
// side-band JSON (data-parsoid, data-mw, diff marks) with DOM nodes, keyed
// by node pointer identity with node IDs allocated lazily, the way the document model this was adapted from keeps
// persistent side-tables instead of mutating node structs in place.
package store

import (
	"encoding/json"
	"sync"

	"golang.org/x/net/html"
)

// DiffMark is one of the marks the DOM diff (C3) attaches to a post-edit
// node (§3.4).
type DiffMark string

const (
	DiffInserted        DiffMark = "inserted"
	DiffDeleted         DiffMark = "deleted"
	DiffChildrenChanged DiffMark = "children-changed"
	DiffSubtreeChanged  DiffMark = "subtree-changed"
	DiffModifiedWrapper DiffMark = "modified-wrapper"
)

// NodeData is the container a store entry holds for a single node: parsed
// data-parsoid, parsed data-mw, and any diff marks accumulated for it.
type NodeData struct {
	Parsoid     *DataParsoid
	Mw          *DataMw
	DiffMarks   map[DiffMark]bool
	nodeID      int64
	hasNodeID   bool
}

// HasDiffMark reports whether m is present on this node's data.
func (nd *NodeData) HasDiffMark(m DiffMark) bool {
	return nd != nil && nd.DiffMarks[m]
}

// Store is the DOM Data Store: one instance per in-flight document, owning
// every node's side-band data until the document is dropped (§3.5, §5
// "Resource scoping").
type Store struct {
	mu     sync.Mutex
	data   map[*html.Node]*NodeData
	nextID int64
}

// New creates an empty store.
func New() *Store {
	return &Store{data: make(map[*html.Node]*NodeData)}
}

// GetNodeData returns the node's data container, allocating an empty one on
// first access.
func (s *Store) GetNodeData(n *html.Node) *NodeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(n)
}

func (s *Store) getOrCreate(n *html.Node) *NodeData {
	nd, ok := s.data[n]
	if !ok {
		nd = &NodeData{DiffMarks: make(map[DiffMark]bool)}
		s.data[n] = nd
	}
	return nd
}

// NodeID returns the node's process-unique (store-unique) ID, allocating
// one lazily on first access (§3.5 "Node IDs are allocated when a DOM is
// created or re-loaded").
func (s *Store) NodeID(n *html.Node) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd := s.getOrCreate(n)
	if !nd.hasNodeID {
		s.nextID++
		nd.nodeID = s.nextID
		nd.hasNodeID = true
	}
	return nd.nodeID
}

// GetDataParsoid returns the node's data-parsoid record, or nil if none has
// been loaded or set.
func (s *Store) GetDataParsoid(n *html.Node) *DataParsoid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(n).Parsoid
}

// SetDataParsoid replaces the node's data-parsoid record.
func (s *Store) SetDataParsoid(n *html.Node, dp *DataParsoid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(n).Parsoid = dp
}

// GetDataMw returns the node's data-mw record, or nil.
func (s *Store) GetDataMw(n *html.Node) *DataMw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreate(n).Mw
}

// SetDataMw replaces the node's data-mw record.
func (s *Store) SetDataMw(n *html.Node, dm *DataMw) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(n).Mw = dm
}

// AddDiffMark attaches a diff mark to a node's data (§3.4).
func (s *Store) AddDiffMark(n *html.Node, m DiffMark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getOrCreate(n).DiffMarks[m] = true
}

// DiffMarks returns the set of diff marks attached to n, or nil.
func (s *Store) DiffMarks(n *html.Node) map[DiffMark]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd, ok := s.data[n]
	if !ok {
		return nil
	}
	return nd.DiffMarks
}

// HasDiffMark reports whether n carries m.
func (s *Store) HasDiffMark(n *html.Node, m DiffMark) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	nd, ok := s.data[n]
	return ok && nd.DiffMarks[m]
}

// Release drops the store's entry for n, e.g. when a synthetic node is
// discarded. It does not recurse into children.
func (s *Store) Release(n *html.Node) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, n)
}

// getAttr returns the attribute value for key, and whether it was present.
func getAttr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// setAttr sets (or replaces) the attribute key=val on n.
func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

// removeAttr deletes the attribute key from n, if present.
func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

// GetAttr exposes attribute lookup on the underlying DOM node to callers
// outside this package that already hold an *html.Node (handlers, diff).
func GetAttr(n *html.Node, key string) (string, bool) { return getAttr(n, key) }

// SetAttr exposes attribute assignment on the underlying DOM node.
func SetAttr(n *html.Node, key, val string) { setAttr(n, key, val) }

// LoadDataAttribs reads the data-parsoid / data-mw JSON attributes (if
// present) into the store and removes them from the element's attribute
// list, the reverse of StoreDataAttribs (§4.2).
func (s *Store) LoadDataAttribs(n *html.Node) error {
	if n.Type != html.ElementNode {
		return nil
	}
	if raw, ok := getAttr(n, "data-parsoid"); ok {
		var dp DataParsoid
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &dp); err != nil {
				return err
			}
		}
		s.SetDataParsoid(n, &dp)
		removeAttr(n, "data-parsoid")
	}
	if raw, ok := getAttr(n, "data-mw"); ok {
		var dm DataMw
		if raw != "" {
			if err := json.Unmarshal([]byte(raw), &dm); err != nil {
				return err
			}
		}
		s.SetDataMw(n, &dm)
		removeAttr(n, "data-mw")
	}
	return nil
}

// StoreDataAttribs flushes the node's data-parsoid / data-mw records back
// to attributes, prior to serialization (§3.5).
func (s *Store) StoreDataAttribs(n *html.Node) error {
	if n.Type != html.ElementNode {
		return nil
	}
	nd := s.GetNodeData(n)
	if nd.Parsoid != nil {
		b, err := json.Marshal(nd.Parsoid)
		if err != nil {
			return err
		}
		setAttr(n, "data-parsoid", string(b))
	}
	if nd.Mw != nil {
		b, err := json.Marshal(nd.Mw)
		if err != nil {
			return err
		}
		setAttr(n, "data-mw", string(b))
	}
	return nil
}
