// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package ctree

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/go-air/dccopt/internal/errs"
)

// WriteRecord writes the deployment record of t, one line
//
//  nodeId vtaLibraryIndex dccPercent gatingProbability
//
// per node carrying a DCC, a header or clock gating.  Inserted buffers are
// written as "+ nodeId delay" lines.
func (t *Tree) WriteRecord(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, n := range t.nodes {
		if n.DCC == DCCNone && !n.Leader() && !n.Gated {
			continue
		}
		gp := 1.0
		if n.Gated {
			gp = n.GateProb
		}
		fmt.Fprintf(bw, "%d %d %d %g\n", n.ID, n.Lib, n.DCC.Percent(), gp)
	}
	for _, n := range t.nodes {
		if n.Inserted {
			fmt.Fprintf(bw, "+ %d %g\n", n.ID, n.InsertDelay)
		}
	}
	return errors.Wrap(bw.Flush(), "writing record")
}

// ReadRecord applies a deployment record written by WriteRecord to t.  A
// gating probability below 1 marks the node gated.  Node ids which do not
// resolve are invariant errors.
func (t *Tree) ReadRecord(r io.Reader) error {
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fs := strings.Fields(sc.Text())
		if len(fs) == 0 {
			continue
		}
		if fs[0] == "+" {
			if e := t.readBuffer(fs[1:], line); e != nil {
				return e
			}
			continue
		}
		if len(fs) != 4 {
			return errs.Ef(errs.Invariant, "record", "line %d: expected 4 fields, got %d", line, len(fs))
		}
		n, e := t.recordNode(fs[0], line)
		if e != nil {
			return e
		}
		lib, e := strconv.Atoi(fs[1])
		if e != nil {
			return errs.E(errs.Invariant, "record", errors.Wrapf(e, "line %d", line))
		}
		pct, e := strconv.Atoi(fs[2])
		if e != nil {
			return errs.E(errs.Invariant, "record", errors.Wrapf(e, "line %d", line))
		}
		d, e := DCCFromPercent(pct)
		if e != nil {
			return errors.Wrapf(e, "record line %d", line)
		}
		gp, e := strconv.ParseFloat(fs[3], 64)
		if e != nil {
			return errs.E(errs.Invariant, "record", errors.Wrapf(e, "line %d", line))
		}
		n.Lib, n.DCC = lib, d
		n.Gated = gp < 1
		n.GateProb = gp
	}
	return errors.Wrap(sc.Err(), "reading record")
}

func (t *Tree) recordNode(s string, line int) (*Node, error) {
	id, e := strconv.Atoi(s)
	if e != nil {
		return nil, errs.E(errs.Invariant, "record", errors.Wrapf(e, "line %d", line))
	}
	n := t.Node(ID(id))
	if n == nil {
		return nil, errs.Ef(errs.Invariant, "record", "line %d: node %d does not resolve", line, id)
	}
	return n, nil
}

func (t *Tree) readBuffer(fs []string, line int) error {
	if len(fs) != 2 {
		return errs.Ef(errs.Invariant, "record", "line %d: expected + id delay", line)
	}
	n, e := t.recordNode(fs[0], line)
	if e != nil {
		return e
	}
	d, e := strconv.ParseFloat(fs[1], 64)
	if e != nil {
		return errs.E(errs.Invariant, "record", errors.Wrapf(e, "line %d", line))
	}
	n.Inserted, n.InsertDelay = true, d
	return nil
}
