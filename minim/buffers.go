// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package minim

import (
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/lat"
)

// Buffers removes inserted buffers from the tree of c at clock period tc,
// then merges the buffers of sibling nodes into their parent where every
// path still passes.  It returns the reduction in the number of inserted
// buffers.
func Buffers(c *lat.Calc, tc float64, log logrus.FieldLogger) (int, error) {
	r := newReducer(c, tc, bufKind, log)
	removed, err := r.run()
	if err != nil {
		return 0, err
	}
	merged, err := r.merge()
	if err != nil {
		return removed, err
	}
	return removed + merged, nil
}

// merge replaces the buffers of all children of a node by one buffer at
// the node with the largest child delay, bottom up, keeping a merge only
// if every checked path still passes.
func (r *reducer) merge() (int, error) {
	t := r.tree
	if t.Root == ctree.NoID {
		return 0, nil
	}
	res := 0
	var err error
	t.Walk(t.Root, func(n *ctree.Node) {
		if err != nil || n.Sink() || n.Inserted {
			return
		}
		delay := 0.0
		for _, c := range n.Children {
			ch := t.Node(c)
			if !ch.Inserted {
				return
			}
			if ch.InsertDelay > delay {
				delay = ch.InsertDelay
			}
		}
		snap := t.Save()
		for _, c := range n.Children {
			r.kind.take(t.Node(c))
		}
		n.Inserted, n.InsertDelay = true, delay
		ok, e := r.passes()
		if e != nil {
			err = e
			t.Restore(snap)
			return
		}
		if !ok {
			t.Restore(snap)
			return
		}
		res += len(n.Children) - 1
		r.log.Debugf("merged %d buffers into %s", len(n.Children), n)
	})
	return res, err
}
