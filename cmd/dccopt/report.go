// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/search"
)

type report struct {
	Run        string  `yaml:"run"`
	Best       float64 `yaml:"best_tc"`
	Final      float64 `yaml:"final_tc"`
	Lower      float64 `yaml:"lower"`
	Upper      float64 `yaml:"upper"`
	Iterations int     `yaml:"iterations"`
	Elapsed    string  `yaml:"elapsed"`
	Clauses    struct {
		DCC    int `yaml:"dcc"`
		VTA    int `yaml:"vta"`
		Timing int `yaml:"timing"`
	} `yaml:"clauses"`
	Placed struct {
		DCCs    int `yaml:"dccs"`
		Headers int `yaml:"headers"`
		Buffers int `yaml:"buffers"`
	} `yaml:"placed"`
	Removed struct {
		DCCs    int `yaml:"dccs"`
		Headers int `yaml:"headers"`
		Buffers int `yaml:"buffers"`
	} `yaml:"removed"`
	Aging struct {
		Inflation float64   `yaml:"inflation"`
		Conv      []float64 `yaml:"conv"` // nominal first, then each header library
	} `yaml:"aging"`
	Critical *critical `yaml:"critical,omitempty"`
}

type critical struct {
	Kind     string  `yaml:"kind"`
	Start    string  `yaml:"start"`
	End      string  `yaml:"end"`
	Ci       float64 `yaml:"ci"`
	Cj       float64 `yaml:"cj"`
	Arrival  float64 `yaml:"arrival"`
	Required float64 `yaml:"required"`
	Slack    float64 `yaml:"slack"`
}

func newReport(e *search.Engine, elapsed time.Duration) *report {
	r := &report{
		Run:        uuid.New().String(),
		Best:       e.BestTc(),
		Lower:      e.Tc(e.Lower),
		Upper:      e.Tc(e.Upper),
		Iterations: e.Iterations,
		Elapsed:    elapsed.String()}
	if e.DCC != nil {
		r.Clauses.DCC = e.DCC.Len()
		r.Clauses.VTA = e.VTA.Len()
		r.Clauses.Timing = e.Timing.Len()
	}
	m := e.Calc.Model
	r.Aging.Inflation = m.Inflation()
	for lib := aging.Nominal; lib < m.NumLibs(); lib++ {
		v, err := m.Conv(lib)
		if err != nil {
			break
		}
		r.Aging.Conv = append(r.Aging.Conv, v)
	}
	return r
}

func (r *report) finish(t *ctree.Tree, tc float64, crit *ctree.Path) {
	r.Final = tc
	dccs, heads := t.Placed()
	r.Placed.DCCs = len(dccs)
	r.Placed.Headers = len(heads)
	r.Placed.Buffers = len(t.Buffers())
	if crit == nil {
		return
	}
	r.Critical = &critical{
		Kind:     crit.Kind.String(),
		Start:    crit.Start,
		End:      crit.End,
		Ci:       crit.Ci,
		Cj:       crit.Cj,
		Arrival:  crit.Arrival,
		Required: crit.Required,
		Slack:    crit.Slack}
}

func (r *report) write(p string) error {
	d, e := yaml.Marshal(r)
	if e != nil {
		return errors.Wrap(e, "report")
	}
	w, e := create(p)
	if e != nil {
		return e
	}
	if _, e := w.Write(d); e != nil {
		w.Close()
		return e
	}
	return w.Close()
}
