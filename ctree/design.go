// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ctree

import (
	"io"
	"io/ioutil"

	"github.com/pkg/errors"
	yaml "gopkg.in/yaml.v2"

	"github.com/go-air/dccopt/internal/errs"
)

// Design is the YAML form of an already extracted clock tree and path list.
//
//  period: 1.0
//  nodes:
//    - {name: clk, gate: 0.02}
//    - {name: b1, parent: clk, wire: 0.01, gate: 0.04}
//    - {name: ff1, parent: b1, kind: ff, wire: 0.01}
//  paths:
//    - {type: FF-FF, start: ff1, end: ff1, tcq: 0.1, dij: 0.2, tsu: 0.1}
//
// Nodes must be listed parents first; the first node is the root.
type Design struct {
	Period float64      `yaml:"period"`
	Nodes  []DesignNode `yaml:"nodes"`
	Paths  []DesignPath `yaml:"paths"`
}

type DesignNode struct {
	Name   string  `yaml:"name"`
	Parent string  `yaml:"parent,omitempty"`
	Kind   string  `yaml:"kind,omitempty"`
	Wire   float64 `yaml:"wire"`
	Gate   float64 `yaml:"gate"`
}

type DesignPath struct {
	Type  string  `yaml:"type"`
	Start string  `yaml:"start"`
	End   string  `yaml:"end"`
	Dij   float64 `yaml:"dij"`
	Tcq   float64 `yaml:"tcq"`
	Tsu   float64 `yaml:"tsu"`
	Tin   float64 `yaml:"tin"`
	Unc   float64 `yaml:"uncertainty"`
	Slack float64 `yaml:"slack"`
}

func parseKind(s string) (Kind, error) {
	switch s {
	case "", "buffer", "buf":
		return Buffer, nil
	case "ff", "flop":
		return FF, nil
	case "port", "po":
		return Port, nil
	}
	return Buffer, errs.Ef(errs.Invariant, "design", "unknown node kind %q", s)
}

// Build creates a tree from d.
func (d *Design) Build() (*Tree, error) {
	t := New()
	t.Period = d.Period
	for i := range d.Nodes {
		dn := &d.Nodes[i]
		k, e := parseKind(dn.Kind)
		if e != nil {
			return nil, e
		}
		if i == 0 {
			if dn.Parent != "" {
				return nil, errs.Ef(errs.Invariant, "design", "root %q has parent %q", dn.Name, dn.Parent)
			}
			if _, e := t.AddRoot(dn.Name, dn.Wire, dn.Gate); e != nil {
				return nil, e
			}
			continue
		}
		p, ok := t.Lookup(dn.Parent)
		if !ok {
			return nil, errs.Ef(errs.Invariant, "design", "parent %q of %q not yet defined", dn.Parent, dn.Name)
		}
		if _, e := t.AddChild(p.ID, dn.Name, k, dn.Wire, dn.Gate); e != nil {
			return nil, e
		}
	}
	for i := range d.Paths {
		dp := &d.Paths[i]
		k, e := ParsePathKind(dp.Type)
		if e != nil {
			return nil, e
		}
		p := &Path{
			Kind:        k,
			Start:       dp.Start,
			End:         dp.End,
			Dij:         dp.Dij,
			Tcq:         dp.Tcq,
			Tsu:         dp.Tsu,
			Tin:         dp.Tin,
			Unc:         dp.Unc,
			ReportSlack: dp.Slack}
		if e := t.AddPath(p); e != nil {
			return nil, e
		}
	}
	return t, nil
}

// LoadDesign reads a YAML design and builds its tree.
func LoadDesign(r io.Reader) (*Tree, error) {
	buf, e := ioutil.ReadAll(r)
	if e != nil {
		return nil, errors.Wrap(e, "reading design")
	}
	d := &Design{}
	if e := yaml.UnmarshalStrict(buf, d); e != nil {
		return nil, errs.E(errs.Invariant, "design", e)
	}
	return d.Build()
}
