// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package enc

import (
	"context"
	"fmt"
	"testing"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/internal/gen"
	"github.com/go-air/dccopt/lat"
	"github.com/go-air/dccopt/mask"
	"github.com/go-air/dccopt/solve"
)

func encoder(tr *ctree.Tree, o config.Options) *Encoder {
	tech := aging.DefaultTech()
	tech.Libs = []float64{0.1}
	mask.Apply(tr, o.MaskLength, tr.MaxDepth)
	mask.Candidates(tr)
	return New(lat.New(tr, aging.New(tech, aging.Fin), &o), nil)
}

func forkTree(t *testing.T, dij float64) *ctree.Tree {
	tr := gen.Fork(1, 3, 0.01, 0.04, 1.2)
	p := &ctree.Path{Kind: ctree.FFFF, Start: "ffb", End: "ffa", Tcq: 0.1, Dij: dij, Tsu: 0.05}
	if e := tr.AddPath(p); e != nil {
		t.Fatal(e)
	}
	return tr
}

// modelDeco reads a decoration from a solver model.
type modelDeco struct {
	r *solve.Result
}

func (d modelDeco) DCCAt(id ctree.ID) ctree.DCC {
	return ctree.DCCFromBits(d.r.Value(ctree.Var(id, 0)), d.r.Value(ctree.Var(id, 1)))
}

func (d modelDeco) LibAt(id ctree.ID) int {
	if d.r.Value(ctree.Var(id, 2)) {
		return leaderLib
	}
	return -1
}

func solveSets(t *testing.T, vars int, sets ...*cnf.Set) *solve.Result {
	r, e := (&solve.Gini{}).Solve(context.Background(), cnf.NewProblem("test", vars, sets...))
	if e != nil {
		t.Fatal(e)
	}
	return r
}

func TestMaskedUnits(t *testing.T) {
	tr := forkTree(t, 0.3)
	o := config.Default()
	o.MaskLength = 0.5
	enc := encoder(tr, o)
	dcc, vta := enc.DCC(), enc.VTA()
	for _, n := range tr.Nodes() {
		if !n.Masked && tr.Interior(n.ID) {
			if dcc.Has(-n.Var(0)) || vta.Has(-n.Var(2)) {
				t.Errorf("%s free but forced", n)
			}
			continue
		}
		if !dcc.Has(-n.Var(0)) || !dcc.Has(-n.Var(1)) {
			t.Errorf("%s: no dcc units", n)
		}
		if !vta.Has(-n.Var(2)) {
			t.Errorf("%s: no leader unit", n)
		}
	}
}

func TestDisabled(t *testing.T) {
	tr := forkTree(t, 0.3)
	o := config.Default()
	o.DCC, o.VTA = false, false
	enc := encoder(tr, o)
	dcc, vta := enc.DCC(), enc.VTA()
	if dcc.Len() != 2*tr.Len() || vta.Len() != tr.Len() {
		t.Errorf("got %d dcc %d vta clauses for %d nodes", dcc.Len(), vta.Len(), tr.Len())
	}
}

func TestAtMostOneDCC(t *testing.T) {
	tr := gen.Chain(4, 0.05, 1, 0.1, 0.2, 0.1)
	// the chain path is degenerate, so unmask by hand.
	for _, n := range tr.Nodes() {
		n.Masked = !tr.Interior(n.ID)
		n.Used = true
	}
	o := config.Default()
	tech := aging.DefaultTech()
	enc := New(lat.New(tr, aging.New(tech, aging.Fin), &o), nil)
	dcc := enc.DCC()
	var bufs []ctree.ID
	for _, n := range tr.Nodes() {
		if tr.Interior(n.ID) {
			bufs = append(bufs, n.ID)
		}
	}
	if len(bufs) != 4 {
		t.Fatalf("%d buffers", len(bufs))
	}
	for _, pr := range cnf.Combos(len(bufs), 2) {
		for ia := 0; ia < 2; ia++ {
			for ib := 0; ib < 2; ib++ {
				as := cnf.NewSet("assume")
				as.Add(ctree.Var(bufs[pr[0]], ia))
				as.Add(ctree.Var(bufs[pr[1]], ib))
				if r := solveSets(t, tr.MaxVar(), dcc, as); r.Status != solve.Unsat {
					t.Errorf("two dccs at %v", pr)
				}
			}
		}
	}
	as := cnf.NewSet("assume")
	as.Add(ctree.Var(bufs[2], 0))
	as.Add(ctree.Var(bufs[2], 1))
	if r := solveSets(t, tr.MaxVar(), dcc, as); r.Status != solve.Sat {
		t.Errorf("single 80%% dcc refused")
	}
}

func TestLeaderUniqueness(t *testing.T) {
	tr := forkTree(t, 0.3)
	enc := encoder(tr, config.Default())
	vta := enc.VTA()
	a0, _ := tr.Lookup("a0")
	a2, _ := tr.Lookup("a2")
	b1, _ := tr.Lookup("b1")
	as := cnf.NewSet("assume")
	as.Add(a0.Var(2))
	as.Add(a2.Var(2))
	if r := solveSets(t, tr.MaxVar(), vta, as); r.Status != solve.Unsat {
		t.Errorf("two leaders on one branch")
	}
	as = cnf.NewSet("assume")
	as.Add(a0.Var(2))
	as.Add(b1.Var(2))
	if r := solveSets(t, tr.MaxVar(), vta, as); r.Status != solve.Sat {
		t.Errorf("leaders on both branches refused")
	}
}

func TestLeaderOrder(t *testing.T) {
	tr := forkTree(t, 0.3)
	enc := encoder(tr, config.Default())
	vta := enc.VTA()
	a0, _ := tr.Lookup("a0")
	a1, _ := tr.Lookup("a1")
	for _, c := range []struct {
		lead, dcc *ctree.Node
		sat       bool
	}{{a0, a1, false}, {a1, a1, false}, {a1, a0, true}} {
		as := cnf.NewSet("assume")
		as.Add(c.lead.Var(2))
		as.Add(c.dcc.Var(1))
		r := solveSets(t, tr.MaxVar(), vta, as)
		if (r.Status == solve.Sat) != c.sat {
			t.Errorf("leader %s dcc %s: got %d", c.lead, c.dcc, r.Status)
		}
	}
}

func TestTimingDegenerate(t *testing.T) {
	tr := gen.Chain(2, 0.05, 1, 0.1, 0.2, 0.1)
	o := config.Default()
	o.Aging = false
	enc := encoder(tr, o)
	if s, inf := enc.Timing(0.4); inf || s.Len() != 0 {
		t.Errorf("0.4: infeasible=%t %d clauses", inf, s.Len())
	}
	if _, inf := enc.Timing(0.399); !inf {
		t.Errorf("0.399 feasible")
	}
}

func TestTimingFree(t *testing.T) {
	tr := forkTree(t, 0.3)
	o := config.Default()
	enc := encoder(tr, o)
	s, inf := enc.Timing(10)
	if inf || s.Len() != 0 {
		t.Errorf("loose tc: infeasible=%t %d clauses", inf, s.Len())
	}
	s, inf = enc.Timing(0)
	if !inf && s.Len() == 0 {
		t.Errorf("tc 0 unconstrained")
	}
}

// every model of the full encoding meets timing on every path.
func TestTimingSound(t *testing.T) {
	for _, c := range []struct {
		name string
		opt  func(*config.Options)
	}{
		{"default", func(*config.Options) {}},
		{"aged dcc unordered", func(o *config.Options) {
			o.LeaderOrder = false
			o.AgedDCC = true
		}},
	} {
		for seed := int64(1); seed <= 6; seed++ {
			gen.Seed(seed)
			tr := gen.Rand(5, 2, 6)
			o := config.Default()
			o.Workers = 3
			c.opt(&o)
			enc := encoder(tr, o)
			dcc, vta := enc.DCC(), enc.VTA()
			for _, tc := range []float64{0.3, 0.45, 0.6, 0.8} {
				tim, inf := enc.Timing(tc)
				if inf {
					continue
				}
				r := solveSets(t, tr.MaxVar(), dcc, vta, tim)
				if r.Status != solve.Sat {
					continue
				}
				for _, p := range tr.Paths {
					if !p.Timed() {
						continue
					}
					tm, e := enc.calc.Worst(p, tc, modelDeco{r})
					if e != nil {
						t.Fatal(e)
					}
					if tm.Violated() {
						t.Errorf("%s seed %d tc %g: %s slack %g under model", c.name, seed, tc, p, tm.Slack)
					}
				}
			}
		}
	}
}

func TestTimingWorkers(t *testing.T) {
	gen.Seed(11)
	tr := gen.Rand(5, 3, 10)
	o := config.Default()
	one := encoder(tr, o)
	o.Workers = 4
	four := encoder(tr, o)
	for _, tc := range []float64{0.3, 0.5} {
		a, ia := one.Timing(tc)
		b, ib := four.Timing(tc)
		if ia != ib || a.Len() != b.Len() {
			t.Fatalf("tc %g: %t/%d vs %t/%d", tc, ia, a.Len(), ib, b.Len())
		}
		for i, l := range a.Lines() {
			if b.Lines()[i] != l {
				t.Errorf("tc %g line %d differs", tc, i)
			}
		}
	}
}

func ExampleEncoder_Timing() {
	tr := gen.Chain(2, 0.05, 1, 0.1, 0.2, 0.1)
	o := config.Default()
	o.Aging = false
	enc := encoder(tr, o)
	_, inf := enc.Timing(0.399)
	fmt.Println(inf)
	// Output: true
}
