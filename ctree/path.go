// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ctree

import (
	"fmt"
	"strings"

	"github.com/go-air/dccopt/internal/errs"
)

// PathKind tags a timing path with the kind of its end points.
type PathKind uint8

const (
	PIPO PathKind = iota
	PIFF
	FFPO
	FFFF
	Disabled
)

var pathKindNames = [...]string{"PI-PO", "PI-FF", "FF-PO", "FF-FF", "disabled"}

func (k PathKind) String() string {
	if int(k) < len(pathKindNames) {
		return pathKindNames[k]
	}
	return fmt.Sprintf("pathkind(%d)", k)
}

// ParsePathKind parses the names produced by String, ignoring case and
// accepting '>' or '_' for '-'.
func ParsePathKind(s string) (PathKind, error) {
	s = strings.ToUpper(strings.NewReplacer(">", "-", "_", "-").Replace(s))
	for i, n := range pathKindNames {
		if strings.ToUpper(n) == s {
			return PathKind(i), nil
		}
	}
	return Disabled, errs.Ef(errs.Invariant, "ctree", "unknown path type %q", s)
}

// Cand is a DCC placement candidate of a path: a single node (B == NoID) or
// a pair, one node on each branch of a FF-FF path.
type Cand struct {
	A, B ID
}

// Single reports whether c names one node.
func (c Cand) Single() bool {
	return c.B == NoID
}

// Path is a timing path.
type Path struct {
	Kind       PathKind
	Start, End string

	// root to sink clock paths of the launching and capturing sides.
	StartSeq, EndSeq []ID
	// length of the shared prefix of StartSeq and EndSeq.
	Common int

	Dij, Tcq, Tsu, Tin, Unc float64
	ReportSlack             float64

	Ci, Cj            float64
	Arrival, Required float64
	Slack             float64

	Cands []Cand
}

// Degenerate reports whether p is a FF-FF path launched and captured by the
// same sink.
func (p *Path) Degenerate() bool {
	return p.Kind == FFFF && len(p.StartSeq) == len(p.EndSeq) && p.Common == len(p.StartSeq)
}

// Timed reports whether p is subject to the setup check.
func (p *Path) Timed() bool {
	return p.Kind != PIPO && p.Kind != Disabled
}

// Optimizable reports whether p's slack depends on the decoration of the
// clock tree.
func (p *Path) Optimizable() bool {
	return p.Timed() && !p.Degenerate()
}

// LCA returns the last common ancestor of a FF-FF path, NoID otherwise.
func (p *Path) LCA() ID {
	if p.Kind != FFFF || p.Common == 0 {
		return NoID
	}
	return p.StartSeq[p.Common-1]
}

// CommonPrefix returns the shared part of both clock paths of a FF-FF path.
func (p *Path) CommonPrefix() []ID {
	if p.Kind != FFFF {
		return nil
	}
	return p.StartSeq[:p.Common]
}

// StartBranch returns the launching clock path below the LCA.
func (p *Path) StartBranch() []ID {
	if p.Kind != FFFF {
		return nil
	}
	return p.StartSeq[p.Common:]
}

// EndBranch returns the capturing clock path below the LCA.
func (p *Path) EndBranch() []ID {
	if p.Kind != FFFF {
		return nil
	}
	return p.EndSeq[p.Common:]
}

// Seqs returns the clock paths whose latency determines p's slack.
func (p *Path) Seqs() [][]ID {
	switch p.Kind {
	case FFFF:
		return [][]ID{p.StartSeq, p.EndSeq}
	case PIFF:
		return [][]ID{p.EndSeq}
	case FFPO:
		return [][]ID{p.StartSeq}
	}
	return nil
}

func (p *Path) String() string {
	return fmt.Sprintf("%s %s->%s", p.Kind, p.Start, p.End)
}

// AddPath resolves the clock paths of p from its end point names and
// appends it to t.Paths.  Clock-pin sides are looked up by name: the Start
// of FF-FF and FF-PO paths and the End of FF-FF and PI-FF paths must name
// sinks of t.
func (t *Tree) AddPath(p *Path) error {
	sink := func(name string) ([]ID, error) {
		n, ok := t.Lookup(name)
		if !ok {
			return nil, errs.Ef(errs.Invariant, "ctree", "%s: end point %q does not resolve", p, name)
		}
		if !n.Sink() {
			return nil, errs.Ef(errs.Invariant, "ctree", "%s: end point %q is not a sink", p, name)
		}
		return t.Seq(n.ID), nil
	}
	var e error
	p.StartSeq, p.EndSeq, p.Common = nil, nil, 0
	switch p.Kind {
	case FFFF:
		if p.StartSeq, e = sink(p.Start); e != nil {
			return e
		}
		if p.EndSeq, e = sink(p.End); e != nil {
			return e
		}
		for p.Common < len(p.StartSeq) && p.Common < len(p.EndSeq) &&
			p.StartSeq[p.Common] == p.EndSeq[p.Common] {
			p.Common++
		}
		if p.Common == 0 {
			return errs.Ef(errs.Invariant, "ctree", "%s: clock paths share no ancestor", p)
		}
	case FFPO:
		if p.StartSeq, e = sink(p.Start); e != nil {
			return e
		}
	case PIFF:
		if p.EndSeq, e = sink(p.End); e != nil {
			return e
		}
	}
	t.Paths = append(t.Paths, p)
	return nil
}
