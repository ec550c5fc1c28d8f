// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package cnf

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// Problem is the conjunction of some clause sets, as handed to a solver.
type Problem struct {
	// Name identifies the problem in file names and logs, e.g. "tc-400".
	Name string
	Sets []*Set
	// Vars is a lower bound on the number of variables, so that variables
	// occurring in no clause still get a value.
	Vars int
}

// NewProblem creates a problem over at least vars variables.
func NewProblem(name string, vars int, sets ...*Set) *Problem {
	return &Problem{Name: name, Sets: sets, Vars: vars}
}

// MaxVar returns the number of variables of p.
func (p *Problem) MaxVar() int {
	mv := p.Vars
	for _, s := range p.Sets {
		if s.MaxVar() > mv {
			mv = s.MaxVar()
		}
	}
	return mv
}

// Len returns the number of clauses of p.
func (p *Problem) Len() int {
	n := 0
	for _, s := range p.Sets {
		n += s.Len()
	}
	return n
}

// Each calls f on each clause line of p in order, stopping at the first
// error.
func (p *Problem) Each(f func(line string) error) error {
	for _, s := range p.Sets {
		for _, line := range s.Lines() {
			if e := f(line); e != nil {
				return e
			}
		}
	}
	return nil
}

// WriteTo writes p in dimacs format, a "p cnf" header followed by one
// clause per line, sets in order.
func (p *Problem) WriteTo(w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	var n int64
	k, e := fmt.Fprintf(bw, "p cnf %d %d\n", p.MaxVar(), p.Len())
	n += int64(k)
	if e != nil {
		return n, errors.Wrap(e, "writing cnf header")
	}
	e = p.Each(func(line string) error {
		k, e := bw.WriteString(line)
		n += int64(k)
		if e != nil {
			return e
		}
		e = bw.WriteByte('\n')
		n++
		return e
	})
	if e != nil {
		return n, errors.Wrap(e, "writing cnf")
	}
	return n, errors.Wrap(bw.Flush(), "writing cnf")
}
