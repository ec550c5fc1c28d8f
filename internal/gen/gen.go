// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package gen generates clock trees and path sets for tests.
package gen

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/go-air/dccopt/ctree"
)

// make the rng seedable
var rng = rand.New(rand.NewSource(33))
var mu sync.Mutex

func Seed(s int64) {
	mu.Lock()
	defer mu.Unlock()
	rng = rand.New(rand.NewSource(s))
}

func must(id ctree.ID, e error) ctree.ID {
	if e != nil {
		panic(e)
	}
	return id
}

// Chain generates root -> b1 -> ... -> bn -> ff with every buffer having
// wire+gate delay d, split evenly, and a FF-FF path from ff to itself.
func Chain(n int, d float64, period, tcq, dij, tsu float64) *ctree.Tree {
	t := ctree.New()
	t.Period = period
	p := must(t.AddRoot("clk", d/2, d/2))
	for i := 1; i <= n; i++ {
		p = must(t.AddChild(p, fmt.Sprintf("b%d", i), ctree.Buffer, d/2, d/2))
	}
	must(t.AddChild(p, "ff", ctree.FF, d/2, 0))
	if e := t.AddPath(&ctree.Path{Kind: ctree.FFFF, Start: "ff", End: "ff", Tcq: tcq, Dij: dij, Tsu: tsu}); e != nil {
		panic(e)
	}
	return t
}

// Fork generates a root with a common trunk of c buffers splitting into two
// branches of b buffers each, ending in flip-flops "ffa" and "ffb".  Every
// buffer has wire delay w and gate delay g; the branch to ffb has its gate
// delays scaled by skew.  No paths are added.
func Fork(c, b int, w, g, skew float64) *ctree.Tree {
	t := ctree.New()
	t.Period = 1
	p := must(t.AddRoot("clk", 0, g))
	for i := 0; i < c; i++ {
		p = must(t.AddChild(p, fmt.Sprintf("t%d", i), ctree.Buffer, w, g))
	}
	for _, br := range []struct {
		name string
		k    float64
	}{{"a", 1}, {"b", skew}} {
		q := p
		for i := 0; i < b; i++ {
			q = must(t.AddChild(q, fmt.Sprintf("%s%d", br.name, i), ctree.Buffer, w, g*br.k))
		}
		must(t.AddChild(q, "ff"+br.name, ctree.FF, w, 0))
	}
	return t
}

// Rand generates a random clock tree of depth at most depth, with fanout in
// [1,fanout] at each buffer, sinks at the leaves, and npaths random paths
// between its sinks and ports.  Delays are drawn from [0.01, 0.05).
func Rand(depth, fanout, npaths int) *ctree.Tree {
	mu.Lock() // for package rng
	defer mu.Unlock()
	t := ctree.New()
	t.Period = 1
	delay := func() float64 { return 0.01 + 0.04*rng.Float64() }
	root := must(t.AddRoot("clk", 0, delay()))
	var grow func(p ctree.ID, d int)
	grow = func(p ctree.ID, d int) {
		k := 1 + rng.Intn(fanout)
		for i := 0; i < k; i++ {
			name := fmt.Sprintf("%s.%d", t.Node(p).Name, i)
			if d+1 >= depth || (d > 1 && rng.Intn(4) == 0) {
				must(t.AddChild(p, name, ctree.FF, delay(), 0))
				continue
			}
			grow(must(t.AddChild(p, name, ctree.Buffer, delay(), delay())), d+1)
		}
	}
	grow(root, 0)
	sinks := t.Sinks()
	for i := 0; i < npaths; i++ {
		s := sinks[rng.Intn(len(sinks))].Name
		e := sinks[rng.Intn(len(sinks))].Name
		p := &ctree.Path{
			Start: s,
			End:   e,
			Tcq:   0.05,
			Dij:   0.2 + 0.4*rng.Float64(),
			Tsu:   0.03,
			Tin:   0.1}
		switch rng.Intn(6) {
		case 0:
			p.Kind, p.Start = ctree.PIFF, fmt.Sprintf("in%d", i)
		case 1:
			p.Kind, p.End = ctree.FFPO, fmt.Sprintf("out%d", i)
		default:
			p.Kind = ctree.FFFF
		}
		if e := t.AddPath(p); e != nil {
			panic(e)
		}
	}
	return t
}
