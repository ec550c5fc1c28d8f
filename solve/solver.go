// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package solve connects the optimizer to a SAT solver.
//
// A Solver is an opaque oracle: it is handed a whole problem and returns
// either UNSAT or SAT with a model.  Results use the gini convention
//
//   1  SAT
//   0  undetermined
//  -1  UNSAT
//
// An undetermined result is reported as an error, since the period search
// cannot narrow its bounds on it.
package solve

import (
	"context"

	"github.com/go-air/dccopt/cnf"
)

const (
	Sat     = 1
	Unknown = 0
	Unsat   = -1
)

// Solver decides a cnf problem.
type Solver interface {
	// Solve returns a Result with Status Sat or Unsat, or an error.  It
	// blocks until the solver answers or ctx is done.
	Solve(ctx context.Context, p *cnf.Problem) (*Result, error)
}

// Result is the answer of a Solver.
type Result struct {
	Status int
	// Model holds, if Status is Sat, one dimacs literal per variable in
	// increasing variable order.
	Model []int
}

// Value returns the value of variable v in the model of r; variables
// beyond the model are false.
func (r *Result) Value(v int) bool {
	if v < 1 || v > len(r.Model) {
		return false
	}
	return r.Model[v-1] > 0
}

// True returns the variables set true in the model of r.
func (r *Result) True() []int {
	var res []int
	for _, m := range r.Model {
		if m > 0 {
			res = append(res, m)
		}
	}
	return res
}

// Func adapts a function to a Solver.
type Func func(ctx context.Context, p *cnf.Problem) (*Result, error)

func (f Func) Solve(ctx context.Context, p *cnf.Problem) (*Result, error) {
	return f(ctx, p)
}
