// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package mask decides which clock buffers may host a DCC and enumerates
// the DCC placements each path may use.
package mask

import (
	"github.com/go-air/dccopt/ctree"
)

// Apply recomputes the Used and Masked flags of every node of t.
//
// Every node starts masked.  For each optimizable path, the clock path of
// each relevant side is walked from the sink upward, stopping before the
// last common ancestor of a FF-FF path or at the root otherwise.  The first
// floor(length*n) of the n walked nodes are dropped, and of the rest every
// interior node with depth at least MaxDepth-level is unmasked.
func Apply(t *ctree.Tree, length float64, level int) {
	if length < 0 {
		length = 0
	}
	if length > 1 {
		length = 1
	}
	for _, n := range t.Nodes() {
		n.Masked = true
		n.Used = false
	}
	minDepth := t.MaxDepth - level
	for _, p := range t.Paths {
		if !p.Optimizable() {
			continue
		}
		for _, w := range walks(p) {
			drop := int(length * float64(len(w)))
			for _, id := range w[drop:] {
				n := t.Node(id)
				if n.Depth >= minDepth && t.Interior(id) {
					n.Masked = false
				}
			}
		}
		for _, seq := range p.Seqs() {
			for _, id := range seq {
				t.Node(id).Used = true
			}
		}
	}
}

// walks returns the sink-first node sequences considered for unmasking.
func walks(p *ctree.Path) [][]ctree.ID {
	switch p.Kind {
	case ctree.FFFF:
		return [][]ctree.ID{reverse(p.StartBranch()), reverse(p.EndBranch())}
	case ctree.PIFF:
		return [][]ctree.ID{reverse(p.EndSeq)}
	case ctree.FFPO:
		return [][]ctree.ID{reverse(p.StartSeq)}
	}
	return nil
}

func reverse(ids []ctree.ID) []ctree.ID {
	res := make([]ctree.ID, len(ids))
	for i, id := range ids {
		res[len(ids)-1-i] = id
	}
	return res
}

// Free returns the unmasked nodes of ids in order.
func Free(t *ctree.Tree, ids []ctree.ID) []ctree.ID {
	var res []ctree.ID
	for _, id := range ids {
		if !t.Node(id).Masked {
			res = append(res, id)
		}
	}
	return res
}
