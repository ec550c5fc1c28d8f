// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package balance inserts clock buffer delay at capturing sinks to fix
// setup violations left after placement.
package balance

import (
	"math"

	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/lat"
)

// Insert adds delay at the capturing sink of every violated FF-FF and
// PI-FF path equal to its deficit, and repeats for up to rounds rounds
// while violations remain.  It returns whether every timed path passes
// at tc afterwards.
func Insert(c *lat.Calc, tc float64, rounds int, log logrus.FieldLogger) (bool, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("component", "balance")
	t := c.Tree
	d := lat.TreeDeco{T: t}
	for round := 0; round < rounds; round++ {
		viol, err := c.Violations(tc)
		if err != nil {
			return false, err
		}
		if len(viol) == 0 {
			return true, nil
		}
		fixed := 0
		for _, i := range viol {
			p := t.Paths[i]
			if p.Degenerate() || (p.Kind != ctree.FFFF && p.Kind != ctree.PIFF) {
				continue
			}
			tm, err := c.Worst(p, tc, d)
			if err != nil {
				return false, err
			}
			if !tm.Violated() {
				continue
			}
			n := t.Node(p.EndSeq[len(p.EndSeq)-1])
			n.Inserted = true
			n.InsertDelay += -tm.Slack
			fixed++
			log.Debugf("tc %g: %s +%g at %s", tc, p, -tm.Slack, n)
		}
		if fixed == 0 {
			return false, nil
		}
	}
	viol, err := c.Violations(tc)
	if err != nil {
		return false, err
	}
	return len(viol) == 0, nil
}

// Refine tries to lower the feasible clock period best one step at a time,
// at most iterations times, inserting buffers for each trial period.  A
// trial which cannot be made feasible in rounds rounds is undone and ends
// the refinement.  Refine returns the smallest period reached.
func Refine(c *lat.Calc, best, step float64, iterations, rounds int, log logrus.FieldLogger) (float64, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	t := c.Tree
	cur := best
	for i := 0; i < iterations; i++ {
		try := math.Round((cur-step)/step) * step
		if try <= 0 {
			break
		}
		snap := t.Save()
		ok, err := Insert(c, try, rounds, log)
		if err != nil {
			t.Restore(snap)
			return cur, err
		}
		if !ok {
			t.Restore(snap)
			break
		}
		cur = try
	}
	if cur < best {
		log.WithField("component", "balance").Infof("refined %g to %g", best, cur)
	}
	return cur, nil
}
