// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package minim reduces the number of DCCs, headers and inserted buffers
// of a decorated tree without breaking a path which meets its setup check.
//
// The reducers are greedy.  Annotations on the clock paths of the paths up
// to and including the most critical one are kept; all others are set
// aside and then reinstated one at a time, for each path which fails,
// until every path which passed before passes again.
package minim

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/lat"
)

// kind selects the annotation a reducer works on.
type kind int

const (
	dccKind kind = iota
	vtaKind
	bufKind
)

func (k kind) String() string {
	switch k {
	case dccKind:
		return "dcc"
	case vtaKind:
		return "header"
	}
	return "buffer"
}

// value is the annotation of one node.
type value struct {
	dcc   ctree.DCC
	lib   int
	delay float64
}

func (k kind) has(n *ctree.Node) bool {
	switch k {
	case dccKind:
		return n.DCC != ctree.DCCNone
	case vtaKind:
		return n.Leader()
	}
	return n.Inserted
}

func (k kind) take(n *ctree.Node) value {
	v := value{dcc: n.DCC, lib: n.Lib, delay: n.InsertDelay}
	switch k {
	case dccKind:
		n.DCC = ctree.DCCNone
	case vtaKind:
		n.Lib = -1
	default:
		n.Inserted, n.InsertDelay = false, 0
	}
	return v
}

func (k kind) put(n *ctree.Node, v value) {
	switch k {
	case dccKind:
		n.DCC = v.dcc
	case vtaKind:
		n.Lib = v.lib
	default:
		n.Inserted, n.InsertDelay = true, v.delay
	}
}

// reducer holds the state of one reduction.
type reducer struct {
	calc    *lat.Calc
	tree    *ctree.Tree
	tc      float64
	kind    kind
	log     logrus.FieldLogger
	checked []int // indices of the paths which pass before reduction
	reserve map[ctree.ID]value
}

func newReducer(c *lat.Calc, tc float64, k kind, log logrus.FieldLogger) *reducer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &reducer{
		calc:    c,
		tree:    c.Tree,
		tc:      tc,
		kind:    k,
		log:     log.WithFields(logrus.Fields{"component": "minim", "kind": k.String()}),
		reserve: make(map[ctree.ID]value)}
}

// DCC removes DCCs from the tree of c at clock period tc and returns how
// many were removed.
func DCC(c *lat.Calc, tc float64, log logrus.FieldLogger) (int, error) {
	return newReducer(c, tc, dccKind, log).run()
}

// VTA removes headers from the tree of c at clock period tc and returns
// how many were removed.
func VTA(c *lat.Calc, tc float64, log logrus.FieldLogger) (int, error) {
	return newReducer(c, tc, vtaKind, log).run()
}

func (r *reducer) run() (int, error) {
	crit := -1
	slack := math.Inf(1)
	d := lat.TreeDeco{T: r.tree}
	for i, p := range r.tree.Paths {
		if !p.Timed() {
			continue
		}
		tm, err := r.calc.Worst(p, r.tc, d)
		if err != nil {
			return 0, err
		}
		if !tm.Violated() {
			r.checked = append(r.checked, i)
		}
		if tm.Slack < slack {
			crit, slack = i, tm.Slack
		}
	}
	keep := make(map[ctree.ID]bool)
	for i := 0; i <= crit; i++ {
		for _, seq := range r.tree.Paths[i].Seqs() {
			for _, id := range seq {
				keep[id] = true
			}
		}
	}
	total := 0
	for _, n := range r.tree.Nodes() {
		if !r.kind.has(n) {
			continue
		}
		total++
		if !keep[n.ID] {
			r.reserve[n.ID] = r.kind.take(n)
		}
	}
	if len(r.reserve) == 0 {
		return 0, nil
	}
	ok, err := r.repair()
	if err != nil {
		r.restore()
		return 0, err
	}
	if !ok {
		r.log.Debugf("cannot repair, restoring %d", len(r.reserve))
		r.restore()
		return 0, nil
	}
	r.log.Infof("removed %d of %d", len(r.reserve), total)
	return len(r.reserve), nil
}

// repair reinstates reserved annotations until every checked path passes.
// It returns false if some failing path has no reserved annotation left.
func (r *reducer) repair() (bool, error) {
	d := lat.TreeDeco{T: r.tree}
	for {
		clean := true
		for _, i := range r.checked {
			p := r.tree.Paths[i]
			tm, err := r.calc.Worst(p, r.tc, d)
			if err != nil {
				return false, err
			}
			if !tm.Violated() {
				continue
			}
			clean = false
			if !r.reinstate(p) {
				return false, nil
			}
		}
		if clean {
			return true, nil
		}
	}
}

// reinstate puts back one reserved annotation of p, searching the capture
// side from the sink upward first.
func (r *reducer) reinstate(p *ctree.Path) bool {
	for _, seq := range [][]ctree.ID{p.EndSeq, p.StartSeq} {
		for i := len(seq) - 1; i >= 0; i-- {
			id := seq[i]
			v, ok := r.reserve[id]
			if !ok {
				continue
			}
			r.kind.put(r.tree.Node(id), v)
			delete(r.reserve, id)
			return true
		}
	}
	return false
}

func (r *reducer) restore() {
	for id, v := range r.reserve {
		r.kind.put(r.tree.Node(id), v)
	}
	r.reserve = make(map[ctree.ID]value)
}

// passes reports whether every checked path passes.
func (r *reducer) passes() (bool, error) {
	d := lat.TreeDeco{T: r.tree}
	for _, i := range r.checked {
		tm, err := r.calc.Worst(r.tree.Paths[i], r.tc, d)
		if err != nil {
			return false, err
		}
		if tm.Violated() {
			return false, nil
		}
	}
	return true, nil
}
