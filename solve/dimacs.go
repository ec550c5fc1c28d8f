// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"io"

	"github.com/go-air/gini/dimacs"
	"github.com/go-air/gini/z"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/internal/errs"
)

// problemVis collects dimacs clauses into a cnf.Set.
type problemVis struct {
	set  *cnf.Set
	vars int
	cur  []int
	err  error
}

func (v *problemVis) Init(nv, nc int) {
	v.vars = nv
}

func (v *problemVis) Add(m z.Lit) {
	if m != z.LitNull {
		v.cur = append(v.cur, m.Dimacs())
		return
	}
	if len(v.cur) == 0 {
		if v.err == nil {
			v.err = errs.Ef(errs.Protocol, "dimacs", "empty clause")
		}
		return
	}
	v.set.Add(v.cur...)
	v.cur = v.cur[:0]
}

func (v *problemVis) Eof() {}

// ReadProblem reads a dimacs cnf problem named name.  Duplicate clauses
// are dropped; an empty clause is an error.
func ReadProblem(r io.Reader, name string) (*cnf.Problem, error) {
	vis := &problemVis{set: cnf.NewSet(name)}
	if e := dimacs.ReadCnf(r, vis); e != nil {
		return nil, errs.E(errs.Protocol, "dimacs", e)
	}
	if vis.err != nil {
		return nil, vis.err
	}
	return cnf.NewProblem(name, vis.vars, vis.set), nil
}
