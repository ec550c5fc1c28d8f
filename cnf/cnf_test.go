// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cnf

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestSetDedup(t *testing.T) {
	s := NewSet("t")
	if !s.Add(3, -1, 2) {
		t.Errorf("first add not new")
	}
	if s.Add(-1, 2, 3) {
		t.Errorf("permuted clause added twice")
	}
	if s.Add(2, 3, -1, 3) {
		t.Errorf("clause with duplicate literal added")
	}
	if !s.Add(1, 2, 3) {
		t.Errorf("different sign not added")
	}
	if s.Add() {
		t.Errorf("empty clause added")
	}
	if s.Len() != 2 || s.MaxVar() != 3 {
		t.Errorf("len %d max %d", s.Len(), s.MaxVar())
	}
	if s.Lines()[0] != "-1 2 3 0" {
		t.Errorf("line %q", s.Lines()[0])
	}
	if !s.Has(3, 2, -1) || s.Has(-3) {
		t.Errorf("has")
	}
}

func TestParse(t *testing.T) {
	ms, e := Parse(" -4 7 0 ")
	if e != nil || len(ms) != 2 || ms[0] != -4 || ms[1] != 7 {
		t.Errorf("parse %v %v", ms, e)
	}
	for _, bad := range []string{"", "1 2", "1 x 0", "1 0 0"} {
		if _, e := Parse(bad); e == nil {
			t.Errorf("%q parsed", bad)
		}
	}
}

func TestCombos(t *testing.T) {
	cs := Combos(4, 2)
	if len(cs) != 6 {
		t.Fatalf("%d pairs of 4", len(cs))
	}
	want := [][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}
	for i, c := range cs {
		if c[0] != want[i][0] || c[1] != want[i][1] {
			t.Errorf("pair %d: %v", i, c)
		}
	}
	binom := func(n, k int) int {
		r := 1
		for i := 0; i < k; i++ {
			r = r * (n - i) / (i + 1)
		}
		return r
	}
	for n := 0; n < 8; n++ {
		for k := 1; k <= n; k++ {
			if got := len(Combos(n, k)); got != binom(n, k) {
				t.Errorf("C(%d,%d) = %d", n, k, got)
			}
		}
	}
	if Combos(3, 0) != nil || Combos(2, 3) != nil {
		t.Errorf("degenerate arity")
	}
}

func TestWriteProblem(t *testing.T) {
	a := NewSet("a")
	a.Add(-1)
	a.Add(1, 2)
	b := NewSet("b")
	b.Add(-2, 5)
	p := NewProblem("t", 9, a, b)
	var buf bytes.Buffer
	n, e := p.WriteTo(&buf)
	if e != nil {
		t.Fatal(e)
	}
	if int(n) != buf.Len() {
		t.Errorf("wrote %d reported %d", buf.Len(), n)
	}
	sc := bufio.NewScanner(&buf)
	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	want := []string{"p cnf 9 3", "-1 0", "1 2 0", "-2 5 0"}
	if strings.Join(lines, "|") != strings.Join(want, "|") {
		t.Errorf("got %v", lines)
	}
}
