// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"context"
	"time"

	"github.com/go-air/gini/crisp"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/internal/errs"
)

// Crisp solves problems on a remote gini crisp server, one connection per
// problem.
type Crisp struct {
	Addr    string
	Timeout time.Duration
	Log     logrus.FieldLogger
}

// netBackground is the part of a crisp solve connection used here.
type netBackground interface {
	Test() (int, bool, error)
	Stop() (int, error)
}

// Solve implements Solver.
func (c *Crisp) Solve(ctx context.Context, p *cnf.Problem) (*Result, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}
	cl, e := crisp.Dial(c.Addr)
	if e != nil {
		return nil, errs.E(errs.Protocol, "crisp", errors.Wrapf(e, "dialing %s", c.Addr))
	}
	defer func() {
		if e := cl.Quit(); e != nil && c.Log != nil {
			c.Log.Warnf("crisp quit: %s", e)
		}
		cl.Close()
	}()
	e = p.Each(func(line string) error {
		ms, e := cnf.Parse(line)
		if e != nil {
			return e
		}
		for _, m := range ms {
			if e := cl.Add(z.Dimacs2Lit(m)); e != nil {
				return errs.E(errs.Protocol, "crisp", e)
			}
		}
		if e := cl.Add(z.LitNull); e != nil {
			return errs.E(errs.Protocol, "crisp", e)
		}
		return nil
	})
	if e != nil {
		return nil, e
	}
	res, e := waitNet(ctx, cl.GoSolve())
	if e != nil {
		return nil, e
	}
	switch res {
	case Unsat:
		return &Result{Status: Unsat}, nil
	case Sat:
	default:
		return nil, errs.Ef(errs.Protocol, "crisp", "%s: undetermined", p.Name)
	}
	vals, e := cl.Model(nil)
	if e != nil {
		return nil, errs.E(errs.Protocol, "crisp", errors.Wrap(e, "fetching model"))
	}
	nv := p.MaxVar()
	r := &Result{Status: Sat, Model: make([]int, nv)}
	for v := 1; v <= nv; v++ {
		r.Model[v-1] = -v
		if v < len(vals) && vals[v] {
			r.Model[v-1] = v
		}
	}
	return r, nil
}

func waitNet(ctx context.Context, c netBackground) (int, error) {
	ticker := time.NewTicker(poll)
	defer ticker.Stop()
	for {
		r, done, e := c.Test()
		if e != nil {
			return Unknown, errs.E(errs.Protocol, "crisp", e)
		}
		if done {
			return r, nil
		}
		select {
		case <-ctx.Done():
			c.Stop()
			return Unknown, errs.E(errs.Canceled, "crisp", ctx.Err())
		case <-ticker.C:
		}
	}
}
