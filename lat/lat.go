// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package lat computes clock latencies and path slack under a decoration
// of the clock tree.
package lat

import (
	"math"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
)

// Eps is the slack tolerance: a path violates its setup check iff its slack
// is below -Eps.
const Eps = 1e-9

// Deco gives the DCC type and header library of nodes.  Gating and
// inserted buffers are always read from the tree.
type Deco interface {
	DCCAt(id ctree.ID) ctree.DCC
	LibAt(id ctree.ID) int
}

// TreeDeco reads the decoration stored in a tree.
type TreeDeco struct {
	T *ctree.Tree
}

func (d TreeDeco) DCCAt(id ctree.ID) ctree.DCC { return d.T.Node(id).DCC }
func (d TreeDeco) LibAt(id ctree.ID) int       { return d.T.Node(id).Lib }

// Calc computes latencies.
type Calc struct {
	Tree  *ctree.Tree
	Model *aging.Model
	Opts  *config.Options
}

// New creates a Calc.
func New(t *ctree.Tree, m *aging.Model, o *config.Options) *Calc {
	return &Calc{Tree: t, Model: m, Opts: o}
}

// Latency returns the clock latency along seq, a root to sink sequence,
// under decoration d.  If aging, delays are scaled by the aging rate of the
// duty cycle and library in effect at each node.  An empty seq has latency
// 0.
func (c *Calc) Latency(seq []ctree.ID, d Deco, aging bool) (float64, error) {
	if len(seq) == 0 {
		return 0, nil
	}
	tech := c.Model.Tech()
	var (
		res     float64
		dc      = 0.5
		gate    = 1.0
		lib     = -1
		leader  = false
		dcc     = ctree.DCCNone
		dccLib  = -1
		minBuf  = math.Inf(1)
		lastIdx = len(seq) - 1
	)
	for i, id := range seq {
		n := c.Tree.Node(id)
		if l := d.LibAt(id); l >= 0 {
			lib, leader = l, true
		}
		if t := d.DCCAt(id); t != ctree.DCCNone {
			v, e := tech.DutyCycle(t.Percent(), c.Opts.AgedDCC && leader)
			if e != nil {
				return 0, e
			}
			dc, dcc, dccLib = v, t, lib
		}
		if n.Gated {
			gate *= n.GateProb
		}
		r, e := c.Model.Rate(dc*gate, lib, aging)
		if e != nil {
			return 0, e
		}
		if i == lastIdx {
			res += n.Wire * r
		} else {
			res += (n.Wire + n.Gate) * r
			if i > 0 && n.Wire+n.Gate < minBuf {
				minBuf = n.Wire + n.Gate
			}
		}
		if n.Inserted {
			res += n.InsertDelay * r
		}
	}
	if dcc != ctree.DCCNone {
		if math.IsInf(minBuf, 1) {
			minBuf = 0
		}
		r, e := c.Model.Rate(0.5, dccLib, aging)
		if e != nil {
			return 0, e
		}
		f, e := c.Opts.Factor(dcc.Percent())
		if e != nil {
			return 0, e
		}
		res += minBuf * r * f
	}
	return res, nil
}

// Timing is the setup check of a path.
type Timing struct {
	Ci, Cj            float64
	Arrival, Required float64
	Slack             float64
}

// Violated reports whether the setup check fails.
func (t *Timing) Violated() bool {
	return t.Slack < -Eps
}

// Eval computes the setup check of p at clock period tc.
func (c *Calc) Eval(p *ctree.Path, tc float64, d Deco, aging bool) (Timing, error) {
	var t Timing
	var e error
	if t.Ci, e = c.Latency(p.StartSeq, d, aging); e != nil {
		return t, e
	}
	if t.Cj, e = c.Latency(p.EndSeq, d, aging); e != nil {
		return t, e
	}
	switch p.Kind {
	case ctree.PIFF, ctree.PIPO:
		t.Arrival = p.Tin + p.Dij
	default:
		t.Arrival = t.Ci + p.Tcq + p.Dij
	}
	t.Required = tc + t.Cj - p.Tsu - p.Unc
	t.Slack = t.Required - t.Arrival
	return t, nil
}

// Worst returns the fresh setup check of p, or the aged one if aging is
// enabled and its slack is lower.
func (c *Calc) Worst(p *ctree.Path, tc float64, d Deco) (Timing, error) {
	t, e := c.Eval(p, tc, d, false)
	if e != nil || !c.Opts.Aging {
		return t, e
	}
	a, e := c.Eval(p, tc, d, true)
	if e != nil {
		return t, e
	}
	if a.Slack < t.Slack {
		return a, nil
	}
	return t, nil
}

// Annotate recomputes the timing fields of every timed path of the tree
// under its own decoration and returns the path with minimum slack, nil if
// no path is timed.
func (c *Calc) Annotate(tc float64) (*ctree.Path, error) {
	var crit *ctree.Path
	d := TreeDeco{c.Tree}
	for _, p := range c.Tree.Paths {
		if !p.Timed() {
			continue
		}
		t, e := c.Worst(p, tc, d)
		if e != nil {
			return nil, e
		}
		p.Ci, p.Cj = t.Ci, t.Cj
		p.Arrival, p.Required, p.Slack = t.Arrival, t.Required, t.Slack
		if crit == nil || p.Slack < crit.Slack {
			crit = p
		}
	}
	return crit, nil
}

// MinSlack returns the minimum slack over the timed paths of the tree
// under its own decoration, +Inf if none is timed.
func (c *Calc) MinSlack(tc float64) (float64, error) {
	res := math.Inf(1)
	d := TreeDeco{c.Tree}
	for _, p := range c.Tree.Paths {
		if !p.Timed() {
			continue
		}
		t, e := c.Worst(p, tc, d)
		if e != nil {
			return 0, e
		}
		if t.Slack < res {
			res = t.Slack
		}
	}
	return res, nil
}

// Violations returns the indices of the timed paths in c.Tree.Paths which
// violate their setup check at tc under the tree's decoration.
func (c *Calc) Violations(tc float64) ([]int, error) {
	var res []int
	d := TreeDeco{c.Tree}
	for i, p := range c.Tree.Paths {
		if !p.Timed() {
			continue
		}
		t, e := c.Worst(p, tc, d)
		if e != nil {
			return nil, e
		}
		if t.Violated() {
			res = append(res, i)
		}
	}
	return res, nil
}
