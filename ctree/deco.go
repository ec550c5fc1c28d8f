// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ctree

// Decoration is a copy of the mutable annotations of every node.
type Decoration struct {
	nodes []deco
}

type deco struct {
	dcc         DCC
	lib         int
	gated       bool
	gateProb    float64
	inserted    bool
	insertDelay float64
}

// Save copies the decoration of t.
func (t *Tree) Save() *Decoration {
	d := &Decoration{nodes: make([]deco, len(t.nodes))}
	for i, n := range t.nodes {
		d.nodes[i] = deco{
			dcc:         n.DCC,
			lib:         n.Lib,
			gated:       n.Gated,
			gateProb:    n.GateProb,
			inserted:    n.Inserted,
			insertDelay: n.InsertDelay}
	}
	return d
}

// Restore sets the decoration of t to d, which must come from Save on t.
func (t *Tree) Restore(d *Decoration) {
	for i, n := range t.nodes {
		if i >= len(d.nodes) {
			break
		}
		x := &d.nodes[i]
		n.DCC, n.Lib = x.dcc, x.lib
		n.Gated, n.GateProb = x.gated, x.gateProb
		n.Inserted, n.InsertDelay = x.inserted, x.insertDelay
	}
}

// ClearPlacement removes every DCC and header.  Gating and inserted buffers
// are kept.
func (t *Tree) ClearPlacement() {
	for _, n := range t.nodes {
		n.DCC = DCCNone
		n.Lib = -1
	}
}

// Placed returns the IDs of nodes with a DCC and of nodes with a header.
func (t *Tree) Placed() (dccs, heads []ID) {
	for _, n := range t.nodes {
		if n.DCC != DCCNone {
			dccs = append(dccs, n.ID)
		}
		if n.Leader() {
			heads = append(heads, n.ID)
		}
	}
	return
}

// Buffers returns the IDs of nodes with an inserted buffer.
func (t *Tree) Buffers() []ID {
	var res []ID
	for _, n := range t.nodes {
		if n.Inserted {
			res = append(res, n.ID)
		}
	}
	return res
}
