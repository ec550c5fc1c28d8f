// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package minim

import (
	"context"
	"testing"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/internal/gen"
	"github.com/go-air/dccopt/lat"
	"github.com/go-air/dccopt/search"
	"github.com/go-air/dccopt/solve"
)

func forkCalc(t *testing.T, ps ...*ctree.Path) *lat.Calc {
	tr := gen.Fork(1, 2, 0.01, 0.04, 1)
	for _, p := range ps {
		if e := tr.AddPath(p); e != nil {
			t.Fatal(e)
		}
	}
	o := config.Default()
	o.Aging = false
	return lat.New(tr, aging.New(aging.DefaultTech(), aging.Fin), &o)
}

func passing(t *testing.T, c *lat.Calc, tc float64) map[int]bool {
	res := make(map[int]bool)
	viol, err := c.Violations(tc)
	if err != nil {
		t.Fatal(err)
	}
	bad := make(map[int]bool)
	for _, i := range viol {
		bad[i] = true
	}
	for i, p := range c.Tree.Paths {
		if p.Timed() && !bad[i] {
			res[i] = true
		}
	}
	return res
}

func TestDCCKeepsCritical(t *testing.T) {
	c := forkCalc(t,
		&ctree.Path{Kind: ctree.PIFF, Start: "in", End: "ffa", Dij: 0.9},
		&ctree.Path{Kind: ctree.FFPO, Start: "ffb", End: "out", Dij: 0.1})
	a1, _ := c.Tree.Lookup("a1")
	b1, _ := c.Tree.Lookup("b1")
	a1.DCC, b1.DCC = ctree.DCC40, ctree.DCC20
	n, err := DCC(c, 10, nil)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 || a1.DCC != ctree.DCC40 || b1.DCC != ctree.DCCNone {
		t.Errorf("removed %d, a1 %s b1 %s", n, a1.DCC, b1.DCC)
	}
}

func TestBuffersReinstateAndMerge(t *testing.T) {
	c := forkCalc(t,
		&ctree.Path{Kind: ctree.PIFF, Start: "in", End: "ffa", Dij: 0.75, Tsu: 0.05},
		&ctree.Path{Kind: ctree.FFFF, Start: "ffa", End: "ffb", Tcq: 0.1, Dij: 0.5, Tsu: 0.05})
	ffb, _ := c.Tree.Lookup("ffb")
	ffb.Inserted, ffb.InsertDelay = true, 0.1
	before := passing(t, c, 0.6)
	if len(before) != 2 {
		t.Fatalf("%d paths pass before", len(before))
	}
	if _, err := Buffers(c, 0.6, nil); err != nil {
		t.Fatal(err)
	}
	after := passing(t, c, 0.6)
	for i := range before {
		if !after[i] {
			t.Errorf("%s broken", c.Tree.Paths[i])
		}
	}
	bs := c.Tree.Buffers()
	if len(bs) != 1 || c.Tree.Node(bs[0]).Name != "b0" {
		t.Errorf("buffers %v", bs)
	}
}

func TestBuffersMergeSiblings(t *testing.T) {
	c := forkCalc(t,
		&ctree.Path{Kind: ctree.FFFF, Start: "ffa", End: "ffb", Tcq: 0.1, Dij: 0.2, Tsu: 0.05})
	for _, name := range []string{"ffa", "ffb"} {
		n, _ := c.Tree.Lookup(name)
		n.Inserted, n.InsertDelay = true, 0.02
	}
	// both buffers lie on the critical path, so only merging removes one.
	n, err := Buffers(c, 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	bs := c.Tree.Buffers()
	if len(bs) != 1 || n != 1 {
		t.Errorf("reduced by %d, buffers %v", n, bs)
	}
}

// no reducer breaks a path which passed before.
func TestPreserveFeasibility(t *testing.T) {
	for seed := int64(1); seed <= 4; seed++ {
		gen.Seed(seed)
		tr := gen.Rand(5, 2, 6)
		o := config.Default()
		o.Precision = 2
		tech := aging.DefaultTech()
		tech.Libs = []float64{0.1}
		e := search.New(tr, aging.New(tech, aging.Fin), o, &solve.Gini{}, nil)
		if _, err := e.Run(context.Background()); err != nil {
			t.Fatalf("seed %d: %s", seed, err)
		}
		tc := e.BestTc()
		before := passing(t, e.Calc, tc)
		if _, err := DCC(e.Calc, tc, nil); err != nil {
			t.Fatal(err)
		}
		if _, err := VTA(e.Calc, tc, nil); err != nil {
			t.Fatal(err)
		}
		after := passing(t, e.Calc, tc)
		for i := range before {
			if !after[i] {
				t.Errorf("seed %d: %s broken", seed, tr.Paths[i])
			}
		}
	}
}
