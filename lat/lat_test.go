// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package lat

import (
	"math"
	"testing"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/internal/gen"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func chainCalc(agingOn bool) *Calc {
	tr := gen.Chain(2, 0.05, 1.0, 0.1, 0.2, 0.1)
	o := config.Default()
	o.Aging = agingOn
	tech := aging.DefaultTech()
	tech.Libs = []float64{0.1}
	return New(tr, aging.New(tech, aging.Fin), &o)
}

func TestChainSlack(t *testing.T) {
	c := chainCalc(false)
	p := c.Tree.Paths[0]
	tm, e := c.Worst(p, 1.0, TreeDeco{c.Tree})
	if e != nil {
		t.Fatal(e)
	}
	if !near(tm.Slack, 0.6) {
		t.Errorf("slack %g want 0.6", tm.Slack)
	}
	if !near(tm.Ci, 0.175) || tm.Ci != tm.Cj {
		t.Errorf("ci %g cj %g", tm.Ci, tm.Cj)
	}
	tm, _ = c.Worst(p, 0.4, TreeDeco{c.Tree})
	if tm.Violated() {
		t.Errorf("violated at 0.4: %g", tm.Slack)
	}
	tm, _ = c.Worst(p, 0.399, TreeDeco{c.Tree})
	if !tm.Violated() {
		t.Errorf("not violated at 0.399: %g", tm.Slack)
	}
}

func TestLatencyEmpty(t *testing.T) {
	c := chainCalc(true)
	l, e := c.Latency(nil, TreeDeco{c.Tree}, true)
	if e != nil || l != 0 {
		t.Errorf("empty latency %g %v", l, e)
	}
}

func TestLatencyDCC(t *testing.T) {
	c := chainCalc(false)
	seq := c.Tree.Paths[0].EndSeq
	b1, _ := c.Tree.Lookup("b1")
	var a Assign
	a.AddDCC(b1.ID, ctree.DCC20)
	l, e := c.Latency(seq, &a, false)
	if e != nil {
		t.Fatal(e)
	}
	if !near(l, 0.175+0.05*1.2) {
		t.Errorf("dcc latency %g", l)
	}
}

func TestLatencyAging(t *testing.T) {
	c := chainCalc(true)
	seq := c.Tree.Paths[0].EndSeq
	none := &Assign{}
	fresh, _ := c.Latency(seq, none, false)
	aged, e := c.Latency(seq, none, true)
	if e != nil {
		t.Fatal(e)
	}
	if aged <= fresh {
		t.Errorf("aged %g <= fresh %g", aged, fresh)
	}
	b1, _ := c.Tree.Lookup("b1")
	var lo, hi Assign
	lo.AddDCC(b1.ID, ctree.DCC20)
	hi.AddDCC(b1.ID, ctree.DCC80)
	l20, _ := c.Latency(seq, &lo, true)
	l80, _ := c.Latency(seq, &hi, true)
	if l80 <= l20 {
		t.Errorf("80%% latency %g <= 20%% latency %g", l80, l20)
	}
	var hd Assign
	hd.AddLeader(b1.ID, 0)
	lh, e := c.Latency(seq, &hd, true)
	if e != nil {
		t.Fatal(e)
	}
	if lh == aged {
		t.Errorf("header had no effect")
	}
	var bad Assign
	bad.AddLeader(b1.ID, 3)
	if _, e := c.Latency(seq, &bad, true); e == nil {
		t.Errorf("unknown library accepted")
	}
}

// a DCC at or below a header takes the aged duty cycle when AgedDCC is set.
func TestLatencyAgedDCC(t *testing.T) {
	c := chainCalc(true)
	seq := c.Tree.Paths[0].EndSeq
	b1, _ := c.Tree.Lookup("b1")
	b2, _ := c.Tree.Lookup("b2")
	var below, above Assign
	below.AddLeader(b1.ID, 0)
	below.AddDCC(b2.ID, ctree.DCC20)
	above.AddDCC(b1.ID, ctree.DCC20)
	above.AddLeader(b2.ID, 0)
	tech := c.Model.Tech()
	rate := func(dc float64, lib int) float64 {
		r, e := c.Model.Rate(dc, lib, true)
		if e != nil {
			t.Fatal(e)
		}
		return r
	}
	got := map[bool]float64{}
	for _, aged := range []bool{false, true} {
		c.Opts.AgedDCC = aged
		dc := tech.Fresh[0]
		if aged {
			dc = tech.Aged[0]
		}
		// clk nominal, b1 header at 50%, b2 and ff at the DCC duty cycle,
		// plus the DCC itself sized by the smallest buffer.
		want := 0.05*rate(0.5, aging.Nominal) + 0.05*rate(0.5, 0) +
			0.075*rate(dc, 0) + 0.05*rate(0.5, 0)*c.Opts.Factors.D20
		l, e := c.Latency(seq, &below, true)
		if e != nil {
			t.Fatal(e)
		}
		if !near(l, want) {
			t.Errorf("aged dcc %t: latency %g want %g", aged, l, want)
		}
		got[aged] = l
	}
	if near(got[false], got[true]) {
		t.Errorf("aged duty cycle had no effect: %g", got[true])
	}
	c.Opts.AgedDCC = false
	fresh, _ := c.Latency(seq, &above, true)
	c.Opts.AgedDCC = true
	aged, _ := c.Latency(seq, &above, true)
	if fresh != aged {
		t.Errorf("dcc above header: %g != %g", fresh, aged)
	}
}

func TestGatingAndInserted(t *testing.T) {
	c := chainCalc(true)
	seq := c.Tree.Paths[0].EndSeq
	d := TreeDeco{c.Tree}
	base, _ := c.Latency(seq, d, true)
	b1, _ := c.Tree.Lookup("b1")
	b1.Gated, b1.GateProb = true, 0.5
	gated, _ := c.Latency(seq, d, true)
	if gated >= base {
		t.Errorf("gated %g >= base %g", gated, base)
	}
	b1.Gated = false
	ff, _ := c.Tree.Lookup("ff")
	ff.Inserted, ff.InsertDelay = true, 0.1
	ins, _ := c.Latency(seq, d, false)
	if !near(ins, 0.175+0.1) {
		t.Errorf("inserted latency %g", ins)
	}
}

func TestAnnotate(t *testing.T) {
	tr := gen.Fork(1, 2, 0.01, 0.04, 1.5)
	for _, p := range []*ctree.Path{
		{Kind: ctree.FFFF, Start: "ffa", End: "ffb", Tcq: 0.1, Dij: 0.5, Tsu: 0.05},
		{Kind: ctree.FFFF, Start: "ffb", End: "ffa", Tcq: 0.1, Dij: 0.5, Tsu: 0.05},
		{Kind: ctree.PIPO, Start: "in", End: "out", Dij: 5},
	} {
		if e := tr.AddPath(p); e != nil {
			t.Fatal(e)
		}
	}
	o := config.Default()
	c := New(tr, aging.New(aging.DefaultTech(), aging.Fin), &o)
	crit, e := c.Annotate(1.0)
	if e != nil {
		t.Fatal(e)
	}
	// ffb's branch is slower so launching from it is critical.
	if crit != tr.Paths[1] {
		t.Errorf("critical %s", crit)
	}
	if tr.Paths[0].Slack <= tr.Paths[1].Slack {
		t.Errorf("slacks %g %g", tr.Paths[0].Slack, tr.Paths[1].Slack)
	}
	ms, _ := c.MinSlack(1.0)
	if ms != crit.Slack {
		t.Errorf("min slack %g != %g", ms, crit.Slack)
	}
	vs, _ := c.Violations(0.5)
	if len(vs) != 2 {
		t.Errorf("violations at 0.5: %v", vs)
	}
}
