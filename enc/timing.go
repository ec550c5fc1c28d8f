// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package enc

import (
	"sync"

	"github.com/go-air/dccopt/cnf"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/lat"
	"github.com/go-air/dccopt/mask"
)

// leaderLib is the only header library the clauses can express.
const leaderLib = 0

var dccTypes = [...]ctree.DCC{ctree.DCC20, ctree.DCC40, ctree.DCC80}

// pathClauses is what one path contributes to a timing set.
type pathClauses struct {
	lines      []string
	maxVars    []int
	infeasible bool
}

// Timing returns the timing clauses at clock period tc.  If some path
// violates its setup check under every assignment the clauses can
// express, infeasible is true and tc needs no solver call.
//
// Paths are distributed over the configured number of workers; the
// result does not depend on it.
func (e *Encoder) Timing(tc float64) (set *cnf.Set, infeasible bool) {
	paths := e.tree.Paths
	res := make([]pathClauses, len(paths))
	workers := e.opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) {
		workers = len(paths)
	}
	next := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range next {
				res[i] = e.path(paths[i], tc)
			}
		}()
	}
	for i := range paths {
		next <- i
	}
	close(next)
	wg.Wait()

	set = cnf.NewSet("timing")
	for i := range res {
		pc := &res[i]
		if pc.infeasible {
			e.log.Debugf("tc %g: %s cannot be fixed", tc, paths[i])
			infeasible = true
		}
		for j, line := range pc.lines {
			set.AddText(line, pc.maxVars[j])
		}
	}
	return set, infeasible
}

func (e *Encoder) path(p *ctree.Path, tc float64) pathClauses {
	var res pathClauses
	if !p.Timed() {
		return res
	}
	if p.Degenerate() {
		tm, err := e.calc.Worst(p, tc, lat.TreeDeco{T: e.tree})
		if err != nil {
			e.log.Warnf("%s: %s", p, err)
			return res
		}
		res.infeasible = tm.Violated()
		return res
	}
	free := e.free(p)
	for _, ds := range e.dccOptions(p) {
		for _, ls := range e.leaderOptions(p) {
			var a lat.Assign
			for _, d := range ds {
				a.AddDCC(d.ID, d.Type)
			}
			for _, l := range ls {
				a.AddLeader(l.ID, l.Lib)
			}
			if e.forbidden(p, &a) {
				continue
			}
			tm, err := e.calc.Worst(p, tc, &a)
			if err != nil {
				e.log.Warnf("%s: skipping assignment: %s", p, err)
				continue
			}
			if !tm.Violated() {
				continue
			}
			ms, err := e.negate(free, &a)
			if err != nil {
				e.log.Warnf("%s: skipping clause: %s", p, err)
				continue
			}
			if len(ms) == 0 {
				res.infeasible = true
				continue
			}
			line, mv := cnf.Text(ms)
			res.lines = append(res.lines, line)
			res.maxVars = append(res.maxVars, mv)
		}
	}
	return res
}

// free returns the unmasked nodes of the clock paths of p, each once.
func (e *Encoder) free(p *ctree.Path) []ctree.ID {
	var res []ctree.ID
	seen := make(map[ctree.ID]bool)
	for _, seq := range p.Seqs() {
		for _, id := range mask.Free(e.tree, seq) {
			if !seen[id] {
				seen[id] = true
				res = append(res, id)
			}
		}
	}
	return res
}

// negate returns the clause excluding assignment a on the variables of
// free.
func (e *Encoder) negate(free []ctree.ID, a *lat.Assign) ([]int, error) {
	ms := make([]int, 0, 3*len(free))
	for _, id := range free {
		if e.opts.DCC {
			b0, b1, err := a.DCCAt(id).Bits()
			if err != nil {
				return nil, err
			}
			ms = append(ms, not(ctree.Var(id, 0), b0), not(ctree.Var(id, 1), b1))
		}
		if e.opts.VTA {
			ms = append(ms, not(ctree.Var(id, 2), a.LibAt(id) >= 0))
		}
	}
	return ms, nil
}

// not returns the literal of v which is false when v has value val.
func not(v int, val bool) int {
	if val {
		return -v
	}
	return v
}

func (e *Encoder) dccOptions(p *ctree.Path) [][]lat.DCCAt {
	res := [][]lat.DCCAt{nil}
	if !e.opts.DCC {
		return res
	}
	for _, c := range p.Cands {
		if c.Single() {
			for _, t := range dccTypes {
				res = append(res, []lat.DCCAt{{ID: c.A, Type: t}})
			}
			continue
		}
		for _, ta := range dccTypes {
			for _, tb := range dccTypes {
				res = append(res, []lat.DCCAt{{ID: c.A, Type: ta}, {ID: c.B, Type: tb}})
			}
		}
	}
	return res
}

// leaderOptions enumerates the leader placements the structural clauses
// allow on p: at most one leader per clock path.
func (e *Encoder) leaderOptions(p *ctree.Path) [][]lat.LeaderAt {
	res := [][]lat.LeaderAt{nil}
	if !e.opts.VTA {
		return res
	}
	one := func(id ctree.ID) lat.LeaderAt {
		return lat.LeaderAt{ID: id, Lib: leaderLib}
	}
	if p.Kind != ctree.FFFF {
		for _, id := range mask.Free(e.tree, p.Seqs()[0]) {
			res = append(res, []lat.LeaderAt{one(id)})
		}
		return res
	}
	for _, id := range mask.Free(e.tree, p.CommonPrefix()) {
		res = append(res, []lat.LeaderAt{one(id)})
	}
	sb := append([]ctree.ID{ctree.NoID}, mask.Free(e.tree, p.StartBranch())...)
	eb := append([]ctree.ID{ctree.NoID}, mask.Free(e.tree, p.EndBranch())...)
	for _, s := range sb {
		for _, t := range eb {
			var ls []lat.LeaderAt
			if s != ctree.NoID {
				ls = append(ls, one(s))
			}
			if t != ctree.NoID {
				ls = append(ls, one(t))
			}
			if len(ls) > 0 {
				res = append(res, ls)
			}
		}
	}
	return res
}

// forbidden reports whether a puts a leader at or above a DCC on one of
// the clock paths of p while the leader order policy applies.
func (e *Encoder) forbidden(p *ctree.Path, a *lat.Assign) bool {
	if !e.opts.LeaderOrder || !e.opts.DCC || !e.opts.VTA {
		return false
	}
	for _, seq := range p.Seqs() {
		lead, dcc := -1, -1
		for i, id := range seq {
			if lead < 0 && a.LibAt(id) >= 0 {
				lead = i
			}
			if a.DCCAt(id) != ctree.DCCNone {
				dcc = i
			}
		}
		if lead >= 0 && dcc >= 0 && lead <= dcc {
			return true
		}
	}
	return false
}
