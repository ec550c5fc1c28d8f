// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package search finds the smallest clock period for which some placement
// of DCCs and headers meets every setup check.
//
// Clock periods are handled as integer ticks of 10^-precision.  The search
// bisects between an infeasible lower and a feasible upper bound, asking a
// solve.Solver about the clauses of each candidate period.
package search

import (
	"context"
	"fmt"
	"math"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/enc"
	"github.com/go-air/dccopt/internal/errs"
	"github.com/go-air/dccopt/lat"
	"github.com/go-air/dccopt/mask"
	"github.com/go-air/dccopt/solve"
)

// State is the state of an Engine.
type State int

const (
	Idle State = iota
	Searching
	Converged
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Searching:
		return "searching"
	case Converged:
		return "converged"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// inflationNoAging widens the window when aging is off.
const inflationNoAging = 1.4

// maxWiden bounds how often an infeasible upper bound is raised.
const maxWiden = 32

// Engine runs a period search on one tree.  It owns the tree for the
// duration of the run.
type Engine struct {
	Tree    *ctree.Tree
	Calc    *lat.Calc
	Solver  solve.Solver
	Metrics *Metrics

	// Lower is infeasible (or 0), Upper feasible, both in ticks.
	Lower, Upper int64
	Cur          int64
	// Best is the smallest feasible tick count seen, -1 if none.
	Best       int64
	State      State
	Iterations int

	DCC, VTA, Timing *cnf.Set

	opts  config.Options
	log   logrus.FieldLogger
	enc   *enc.Encoder
	model *solve.Result
}

// New creates an engine.  The options are copied; VTA is disabled if m has
// no header library.
func New(t *ctree.Tree, m *aging.Model, o config.Options, s solve.Solver, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{
		Tree:   t,
		Solver: s,
		Best:   -1,
		opts:   o,
		log:    log.WithField("component", "search")}
	if e.opts.VTA && m.NumLibs() == 0 {
		e.log.Warnf("%s", errs.Ef(errs.Config, "search", "no header library, VTA disabled"))
		e.opts.VTA = false
	}
	e.Calc = lat.New(t, m, &e.opts)
	return e
}

// Options returns the options in effect.
func (e *Engine) Options() *config.Options {
	return &e.opts
}

// Tc converts ticks to a clock period.
func (e *Engine) Tc(ticks int64) float64 {
	return float64(ticks) * e.opts.Step()
}

// Ticks rounds a clock period to ticks.
func (e *Engine) Ticks(tc float64) int64 {
	return int64(math.Round(tc / e.opts.Step()))
}

// BestTc returns the best clock period, or NaN if none was found.
func (e *Engine) BestTc() float64 {
	if e.Best < 0 {
		return math.NaN()
	}
	return e.Tc(e.Best)
}

// Model returns the solver model of the best period, nil if the search ran
// without the solver.
func (e *Engine) Model() *solve.Result {
	return e.model
}

// optimizing reports whether placements are searched for.
func (e *Engine) optimizing() bool {
	return e.opts.DCC || e.opts.VTA
}

// Init masks the tree, generates the structural clauses and establishes
// the search window.
func (e *Engine) Init(ctx context.Context) error {
	t := e.Tree
	if t.Root == ctree.NoID {
		return errs.Ef(errs.Invariant, "search", "tree has no root")
	}
	if t.Period <= 0 {
		return errs.Ef(errs.Config, "search", "nominal period %g", t.Period)
	}
	level := e.opts.MaskLevel
	if level < 0 {
		level = t.MaxDepth
	}
	mask.Apply(t, e.opts.MaskLength, level)
	if e.opts.DCC {
		mask.Candidates(t)
	} else {
		mask.Clear(t)
	}
	t.ClearPlacement()
	e.enc = enc.New(e.Calc, e.log)
	e.DCC = e.enc.DCC()
	e.VTA = e.enc.VTA()
	e.Timing = cnf.NewSet("timing")
	e.Metrics.set("dcc", e.DCC.Len())
	e.Metrics.set("vta", e.VTA.Len())

	infl := inflationNoAging
	if e.opts.Aging {
		infl = e.Calc.Model.Inflation()
	}
	e.Upper = e.Ticks(t.Period * infl)
	e.Lower = 2*e.Ticks(t.Period) - e.Upper
	if e.Lower < 0 {
		e.Lower = 0
	}
	e.log.Infof("window [%g, %g]", e.Tc(e.Lower), e.Tc(e.Upper))
	e.State = Searching
	if err := e.validate(ctx); err != nil {
		return err
	}
	if e.State == Searching {
		e.next(e.Upper + e.Lower)
	}
	e.bounds()
	return nil
}

// validate makes Upper feasible and Lower infeasible (or 0), widening
// the window as needed.
func (e *Engine) validate(ctx context.Context) error {
	width := e.Upper - e.Lower
	if width < 1 {
		width = 1
	}
	raised := false
	for i := 0; ; i++ {
		ok, err := e.check(ctx, e.Upper)
		if err != nil {
			return err
		}
		if ok {
			break
		}
		if i == maxWiden {
			return errs.Ef(errs.Infeasible, "search", "no feasible period up to %g", e.Tc(e.Upper))
		}
		e.log.Infof("upper bound %g infeasible, raising", e.Tc(e.Upper))
		e.Lower = e.Upper
		e.Upper += width
		raised = true
	}
	if raised {
		return nil
	}
	for e.Lower > 0 {
		ok, err := e.check(ctx, e.Lower)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		e.log.Infof("lower bound %g feasible, lowering", e.Tc(e.Lower))
		e.Upper = e.Lower
		e.Lower -= width
		if e.Lower < 0 {
			e.Lower = 0
		}
	}
	ok, err := e.check(ctx, 0)
	if err != nil {
		return err
	}
	if ok {
		e.Upper = 0
		e.State = Converged
	}
	return nil
}

// check decides whether ticks is feasible, recording it as Best if so.
func (e *Engine) check(ctx context.Context, ticks int64) (bool, error) {
	ok, r, err := e.Feasible(ctx, ticks)
	if err != nil {
		return false, err
	}
	if ok && (e.Best < 0 || ticks <= e.Best) {
		e.Best = ticks
		e.model = r
		if e.Metrics != nil {
			e.Metrics.Best.Set(e.Tc(ticks))
		}
	}
	return ok, nil
}

// Feasible decides whether the period of ticks admits a placement meeting
// every setup check, and returns the solver's model if one was used.
// Without DCC and VTA the tree's current decoration is checked directly.
func (e *Engine) Feasible(ctx context.Context, ticks int64) (bool, *solve.Result, error) {
	tc := e.Tc(ticks)
	if !e.optimizing() {
		ms, err := e.Calc.MinSlack(tc)
		if err != nil {
			return false, nil, err
		}
		e.Metrics.call("trivial")
		return ms >= -lat.Eps, nil, nil
	}
	if e.enc == nil {
		return false, nil, errs.Ef(errs.Invariant, "search", "engine not initialised")
	}
	tim, infeasible := e.enc.Timing(tc)
	e.Timing = tim
	e.Metrics.set("timing", tim.Len())
	if infeasible {
		e.log.Debugf("tc %g: infeasible without solver", tc)
		e.Metrics.call("trivial")
		return false, nil, nil
	}
	p := cnf.NewProblem(fmt.Sprintf("tc-%d", ticks), e.Tree.MaxVar(), e.DCC, e.VTA, tim)
	r, err := e.Solver.Solve(ctx, p)
	if err != nil {
		e.Metrics.call("error")
		if errs.KindOf(err) == errs.Other {
			err = errs.E(errs.Protocol, "search", err)
		}
		return false, nil, errors.Wrapf(err, "tc %g", tc)
	}
	switch r.Status {
	case solve.Sat:
		e.Metrics.call("sat")
		e.log.Debugf("tc %g: sat (%d clauses)", tc, p.Len())
		return true, r, nil
	case solve.Unsat:
		e.Metrics.call("unsat")
		e.log.Debugf("tc %g: unsat (%d clauses)", tc, p.Len())
		return false, nil, nil
	}
	e.Metrics.call("error")
	return false, nil, errs.Ef(errs.Protocol, "search", "tc %g: solver status %d", tc, r.Status)
}

// Step checks the current period and narrows the window.
func (e *Engine) Step(ctx context.Context) error {
	if e.State != Searching {
		return nil
	}
	ok, err := e.check(ctx, e.Cur)
	if err != nil {
		return err
	}
	e.Iterations++
	if e.Metrics != nil {
		e.Metrics.Iterations.Inc()
	}
	if ok {
		e.log.Infof("tc %g feasible", e.Tc(e.Cur))
		e.Upper = e.Cur
		e.next(e.Upper + e.Lower)
	} else {
		e.log.Infof("tc %g infeasible", e.Tc(e.Cur))
		e.Lower = e.Cur
		e.next(e.Upper + e.Lower + 1)
	}
	e.bounds()
	return nil
}

// next advances Cur to sum/2, or converges if that is a decided value.
func (e *Engine) next(sum int64) {
	n := sum / 2
	if n == e.Cur || n <= e.Lower || n >= e.Upper {
		e.State = Converged
		return
	}
	e.Cur = n
}

func (e *Engine) bounds() {
	if e.Metrics == nil {
		return
	}
	e.Metrics.Bounds.WithLabelValues("lower").Set(e.Tc(e.Lower))
	e.Metrics.Bounds.WithLabelValues("upper").Set(e.Tc(e.Upper))
}

// Run initialises the engine, steps until convergence and applies the
// best placement to the tree.  It returns the most critical path at the
// best period.
func (e *Engine) Run(ctx context.Context) (*ctree.Path, error) {
	if err := e.Init(ctx); err != nil {
		return nil, err
	}
	for e.State == Searching {
		if err := ctx.Err(); err != nil {
			return nil, errs.E(errs.Canceled, "search", err)
		}
		if err := e.Step(ctx); err != nil {
			return nil, err
		}
	}
	e.log.Infof("converged at %g after %d steps", e.BestTc(), e.Iterations)
	return e.Apply()
}

// Apply decodes the best model into the tree and annotates every path at
// the best period.
func (e *Engine) Apply() (*ctree.Path, error) {
	if e.Best < 0 {
		return nil, errs.Ef(errs.Infeasible, "search", "no feasible period")
	}
	if e.model != nil {
		if err := Decode(e.Tree, e.model); err != nil {
			return nil, err
		}
	}
	return e.Calc.Annotate(e.BestTc())
}

func (m *Metrics) call(result string) {
	if m != nil {
		m.Calls.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) set(set string, n int) {
	if m != nil {
		m.Clauses.WithLabelValues(set).Set(float64(n))
	}
}
