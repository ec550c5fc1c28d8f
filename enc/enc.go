// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package enc encodes DCC and header placement on a clock tree as cnf.
//
// Node n owns three variables, see ctree.Var: b0 and b1 code its DCC type
// (none 00, 20% 01, 40% 10, 80% 11) and b2 is true iff n is a header
// leader of library 0.
//
// The encoding consists of structural clauses, which depend only on the
// masking, and timing clauses, which depend on the clock period.  Timing
// clauses each forbid one exact assignment to the free variables of a path
// under which the path violates its setup check.
package enc

import (
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/lat"
	"github.com/go-air/dccopt/mask"
)

// Encoder generates the clauses of a tree whose masking and candidates
// are up to date.
type Encoder struct {
	tree *ctree.Tree
	calc *lat.Calc
	opts *config.Options
	log  logrus.FieldLogger
}

// New creates an Encoder for the tree of c.
func New(c *lat.Calc, log logrus.FieldLogger) *Encoder {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Encoder{
		tree: c.Tree,
		calc: c,
		opts: c.Opts,
		log:  log.WithField("component", "enc")}
}

// DCC returns the DCC structural clauses: units forcing no DCC at masked
// nodes, the root and the sinks, and, for every used sink, pairwise
// exclusion of DCCs among the unmasked nodes of its clock path.
func (e *Encoder) DCC() *cnf.Set {
	s := cnf.NewSet("dcc")
	t := e.tree
	for _, n := range t.Nodes() {
		if !e.opts.DCC || n.Masked || !t.Interior(n.ID) {
			s.Add(-n.Var(0))
			s.Add(-n.Var(1))
		}
	}
	if !e.opts.DCC {
		return s
	}
	for _, sink := range t.Sinks() {
		if !sink.Used {
			continue
		}
		free := mask.Free(t, t.Seq(sink.ID))
		for _, pr := range cnf.Combos(len(free), 2) {
			a, b := free[pr[0]], free[pr[1]]
			for i := 0; i < 2; i++ {
				for j := 0; j < 2; j++ {
					s.Add(-ctree.Var(a, i), -ctree.Var(b, j))
				}
			}
		}
	}
	return s
}

// VTA returns the header structural clauses: units forcing no leader at
// masked nodes, the root and the sinks, and for every optimizable path
// pairwise exclusion of leaders along each of its clock paths.  If the
// leader order policy applies, it also forbids a DCC at or below a leader
// of the same clock path.
func (e *Encoder) VTA() *cnf.Set {
	s := cnf.NewSet("vta")
	t := e.tree
	for _, n := range t.Nodes() {
		if !e.opts.VTA || n.Masked || !t.Interior(n.ID) {
			s.Add(-n.Var(2))
		}
	}
	if !e.opts.VTA {
		return s
	}
	seen := make(map[[2]ctree.ID]bool)
	pair := func(a, b ctree.ID) {
		if a == b {
			return
		}
		if a > b {
			a, b = b, a
		}
		k := [2]ctree.ID{a, b}
		if seen[k] {
			return
		}
		seen[k] = true
		s.Add(-ctree.Var(a, 2), -ctree.Var(b, 2))
	}
	cross := func(xs, ys []ctree.ID) {
		for _, x := range xs {
			for _, y := range ys {
				pair(x, y)
			}
		}
	}
	for _, p := range t.Paths {
		if !p.Optimizable() {
			continue
		}
		switch p.Kind {
		case ctree.FFFF:
			c := mask.Free(t, p.CommonPrefix())
			sb := mask.Free(t, p.StartBranch())
			eb := mask.Free(t, p.EndBranch())
			cross(c, c)
			cross(c, sb)
			cross(c, eb)
			cross(sb, sb)
			cross(eb, eb)
		default:
			free := mask.Free(t, p.Seqs()[0])
			cross(free, free)
		}
	}
	if e.opts.DCC && e.opts.LeaderOrder {
		e.order(s)
	}
	return s
}

// order adds to s, for every leader candidate at position i and DCC
// candidate at position j >= i of a clock path, clauses forbidding both.
func (e *Encoder) order(s *cnf.Set) {
	t := e.tree
	for _, p := range t.Paths {
		if !p.Optimizable() {
			continue
		}
		for _, seq := range p.Seqs() {
			free := mask.Free(t, seq)
			for i, l := range free {
				for _, d := range free[i:] {
					s.Add(-ctree.Var(d, 1), -ctree.Var(l, 2))
					s.Add(-ctree.Var(d, 0), -ctree.Var(l, 2))
				}
			}
		}
	}
}
