// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package solve

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-air/dccopt/internal/errs"
)

// ReadResult reads a solver result file: a first line "SAT" or "UNSAT",
// and for SAT the model as signed literals terminated by 0, possibly
// continued over further lines.  The model is completed to vars variables
// with negative literals and must list variables in increasing order.
func ReadResult(r io.Reader, vars int) (*Result, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<30)
	if !sc.Scan() {
		if e := sc.Err(); e != nil {
			return nil, errs.E(errs.Protocol, "result", e)
		}
		return nil, errs.Ef(errs.Protocol, "result", "empty result")
	}
	switch strings.TrimSpace(sc.Text()) {
	case "UNSAT", "UNSATISFIABLE":
		return &Result{Status: Unsat}, nil
	case "SAT", "SATISFIABLE":
	default:
		return nil, errs.Ef(errs.Protocol, "result", "unexpected first line %q", sc.Text())
	}
	res := &Result{Status: Sat, Model: make([]int, 0, vars)}
	done := false
	for !done && sc.Scan() {
		for _, f := range strings.Fields(sc.Text()) {
			m, e := strconv.Atoi(f)
			if e != nil {
				return nil, errs.Ef(errs.Protocol, "result", "bad literal %q", f)
			}
			if m == 0 {
				done = true
				break
			}
			v := m
			if v < 0 {
				v = -v
			}
			if v != len(res.Model)+1 {
				return nil, errs.Ef(errs.Protocol, "result", "literal %d out of order", m)
			}
			res.Model = append(res.Model, m)
		}
	}
	if e := sc.Err(); e != nil {
		return nil, errs.E(errs.Protocol, "result", e)
	}
	if !done {
		return nil, errs.Ef(errs.Protocol, "result", "model not zero terminated")
	}
	for v := len(res.Model) + 1; v <= vars; v++ {
		res.Model = append(res.Model, -v)
	}
	return res, nil
}

// WriteResult writes r in the format read by ReadResult.
func WriteResult(w io.Writer, r *Result) error {
	bw := bufio.NewWriter(w)
	if r.Status != Sat {
		fmt.Fprintln(bw, "UNSAT")
		return bw.Flush()
	}
	fmt.Fprintln(bw, "SAT")
	for _, m := range r.Model {
		fmt.Fprintf(bw, "%d ", m)
	}
	fmt.Fprintln(bw, "0")
	return bw.Flush()
}
