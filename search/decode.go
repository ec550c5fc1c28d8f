// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package search

import (
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/internal/errs"
	"github.com/go-air/dccopt/solve"
)

// Decode sets the DCCs and headers of t from the model r, replacing any
// placement t had.  A true variable which names no node of t is an
// invariant error and leaves t unchanged.
func Decode(t *ctree.Tree, r *solve.Result) error {
	if r == nil || r.Status != solve.Sat {
		return errs.Ef(errs.Invariant, "decode", "no model")
	}
	for _, v := range r.True() {
		if id, _ := ctree.VarNode(v); t.Node(id) == nil {
			return errs.Ef(errs.Invariant, "decode", "variable %d names no node", v)
		}
	}
	t.ClearPlacement()
	for _, n := range t.Nodes() {
		n.DCC = ctree.DCCFromBits(r.Value(n.Var(0)), r.Value(n.Var(1)))
		if r.Value(n.Var(2)) {
			n.Lib = 0
		}
	}
	return nil
}
