// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/internal/errs"
)

// poll is how often a background solve is checked for completion.
const poll = 2 * time.Millisecond

// Gini solves problems in process with a fresh gini solver per problem.
type Gini struct {
	// Timeout bounds each Solve, 0 for none.
	Timeout time.Duration
}

// Solve implements Solver.
func (g *Gini) Solve(ctx context.Context, p *cnf.Problem) (*Result, error) {
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}
	nv := p.MaxVar()
	s := gini.NewVc(nv, p.Len())
	e := p.Each(func(line string) error {
		ms, e := cnf.Parse(line)
		if e != nil {
			return e
		}
		for _, m := range ms {
			s.Add(z.Dimacs2Lit(m))
		}
		s.Add(z.LitNull)
		return nil
	})
	if e != nil {
		return nil, e
	}
	res, e := wait(ctx, s.GoSolve())
	if e != nil {
		return nil, e
	}
	switch res {
	case Unsat:
		return &Result{Status: Unsat}, nil
	case Sat:
	default:
		return nil, errs.Ef(errs.Protocol, "gini", "%s: undetermined", p.Name)
	}
	r := &Result{Status: Sat, Model: make([]int, nv)}
	mv := int(s.MaxVar())
	for v := 1; v <= nv; v++ {
		r.Model[v-1] = -v
		if v <= mv && s.Value(z.Var(v).Pos()) {
			r.Model[v-1] = v
		}
	}
	return r, nil
}

// background is the part of a gini solve connection used here.
type background interface {
	Test() (int, bool)
	Stop() int
}

func wait(ctx context.Context, c background) (int, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		if r, done := c.Test(); done {
			return r, nil
		}
		select {
		case <-ctx.Done():
			c.Stop()
			return Unknown, errs.E(errs.Canceled, "gini", ctx.Err())
		case <-ticker.C:
		}
	}
}
