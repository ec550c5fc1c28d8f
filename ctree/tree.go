// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package ctree holds the clock tree, the critical paths through it, and
// the decoration (DCC, headers, gating, inserted buffers) an optimization
// run places on it.
//
// Nodes live in an arena owned by the Tree and are addressed by ID.  A
// node's Parent is a lookup reference only; the tree owns every node and
// Children lists define the shape.
package ctree

import (
	"github.com/go-air/dccopt/internal/errs"
)

// Tree is a clock tree together with the timing paths through it.
type Tree struct {
	nodes    []*Node
	byName   map[string]ID
	Root     ID
	MaxDepth int
	Paths    []*Path
	Period   float64 // nominal clock period
}

// New creates an empty tree.
func New() *Tree {
	return &Tree{
		byName: make(map[string]ID),
		Root:   NoID}
}

// Len returns the number of nodes.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// MaxVar returns the largest boolean variable used by the nodes of t.
func (t *Tree) MaxVar() int {
	return 3 * len(t.nodes)
}

// Node returns the node with ID id, or nil.
func (t *Tree) Node(id ID) *Node {
	if id < 0 || int(id) >= len(t.nodes) {
		return nil
	}
	return t.nodes[id]
}

// Nodes returns all nodes in ID order.
func (t *Tree) Nodes() []*Node {
	return t.nodes
}

// Lookup finds a node by name.
func (t *Tree) Lookup(name string) (*Node, bool) {
	id, ok := t.byName[name]
	if !ok {
		return nil, false
	}
	return t.nodes[id], true
}

func (t *Tree) add(name string, k Kind, wire, gate float64, parent ID) (ID, error) {
	if _, dup := t.byName[name]; dup {
		return NoID, errs.Ef(errs.Invariant, "ctree", "duplicate node %q", name)
	}
	id := ID(len(t.nodes))
	n := &Node{
		Name:   name,
		ID:     id,
		Kind:   k,
		Wire:   wire,
		Gate:   gate,
		Parent: parent,
		Masked: true,
		Lib:    -1}
	if parent != NoID {
		p := t.nodes[parent]
		n.Depth = p.Depth + 1
		p.Children = append(p.Children, id)
	}
	if n.Depth > t.MaxDepth {
		t.MaxDepth = n.Depth
	}
	t.nodes = append(t.nodes, n)
	t.byName[name] = id
	return id, nil
}

// AddRoot adds the clock source.
func (t *Tree) AddRoot(name string, wire, gate float64) (ID, error) {
	if t.Root != NoID {
		return NoID, errs.Ef(errs.Invariant, "ctree", "second root %q", name)
	}
	id, e := t.add(name, Buffer, wire, gate, NoID)
	if e != nil {
		return NoID, e
	}
	t.Root = id
	return id, nil
}

// AddChild adds a node under parent.
func (t *Tree) AddChild(parent ID, name string, k Kind, wire, gate float64) (ID, error) {
	p := t.Node(parent)
	if p == nil {
		return NoID, errs.Ef(errs.Invariant, "ctree", "parent %d of %q does not resolve", parent, name)
	}
	if p.Kind != Buffer {
		return NoID, errs.Ef(errs.Invariant, "ctree", "%s %q cannot drive %q", p.Kind, p.Name, name)
	}
	return t.add(name, k, wire, gate, parent)
}

// Seq returns the IDs from the root down to id.
func (t *Tree) Seq(id ID) []ID {
	n := t.Node(id)
	if n == nil {
		return nil
	}
	res := make([]ID, n.Depth+1)
	for i := n.Depth; i >= 0; i-- {
		res[i] = id
		id = t.nodes[id].Parent
	}
	return res
}

// Walk calls f on every node below and including id, children before
// parents.
func (t *Tree) Walk(id ID, f func(n *Node)) {
	n := t.Node(id)
	if n == nil {
		return
	}
	for _, c := range n.Children {
		t.Walk(c, f)
	}
	f(n)
}

// Sinks returns the sinks of t in ID order.
func (t *Tree) Sinks() []*Node {
	var res []*Node
	for _, n := range t.nodes {
		if n.Sink() && n.ID != t.Root {
			res = append(res, n)
		}
	}
	return res
}

// Interior reports whether id may carry a DCC or header: it is neither the
// root nor a sink.
func (t *Tree) Interior(id ID) bool {
	n := t.Node(id)
	return n != nil && id != t.Root && !n.Sink()
}
