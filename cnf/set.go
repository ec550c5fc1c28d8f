// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package cnf holds clause sets in the dimacs text form exchanged with a
// SAT solver.
//
// A clause is a slice of non-zero dimacs literals: v for a positive and -v
// for a negative occurrence of variable v.
package cnf

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-air/dccopt/internal/errs"
)

// Set is an ordered set of clauses, deduplicated by text.  Clauses are
// normalised (sorted by variable, duplicate literals removed) before
// insertion, so clauses which differ only in literal order are equal.
type Set struct {
	Name   string
	lines  []string
	seen   map[string]struct{}
	maxVar int
}

// NewSet creates an empty set.
func NewSet(name string) *Set {
	return &Set{Name: name, seen: make(map[string]struct{})}
}

// Add adds the clause ms, returning whether it was new.  An empty clause is
// never added.
func (s *Set) Add(ms ...int) bool {
	line, mv := Text(ms)
	if line == "" {
		return false
	}
	return s.AddText(line, mv)
}

// AddText adds a normalised clause line, as produced by Text, whose maximum
// variable is mv.
func (s *Set) AddText(line string, mv int) bool {
	if _, ok := s.seen[line]; ok {
		return false
	}
	s.seen[line] = struct{}{}
	s.lines = append(s.lines, line)
	if mv > s.maxVar {
		s.maxVar = mv
	}
	return true
}

// Len returns the number of clauses.
func (s *Set) Len() int {
	return len(s.lines)
}

// Lines returns the clause lines, each terminated by " 0".
func (s *Set) Lines() []string {
	return s.lines
}

// MaxVar returns the largest variable in s.
func (s *Set) MaxVar() int {
	return s.maxVar
}

// Has reports whether s contains the clause ms.
func (s *Set) Has(ms ...int) bool {
	line, _ := Text(ms)
	_, ok := s.seen[line]
	return ok
}

// Text normalises ms and returns its line and maximum variable.  The line
// is "" if ms is empty.
func Text(ms []int) (string, int) {
	if len(ms) == 0 {
		return "", 0
	}
	cs := make([]int, len(ms))
	copy(cs, ms)
	sort.Slice(cs, func(i, j int) bool {
		vi, vj := abs(cs[i]), abs(cs[j])
		if vi != vj {
			return vi < vj
		}
		return cs[i] < cs[j]
	})
	var sb strings.Builder
	mv := 0
	for i, m := range cs {
		if i > 0 && m == cs[i-1] {
			continue
		}
		sb.WriteString(strconv.Itoa(m))
		sb.WriteByte(' ')
		if v := abs(m); v > mv {
			mv = v
		}
	}
	sb.WriteByte('0')
	return sb.String(), mv
}

// Parse parses one zero terminated clause line.
func Parse(line string) ([]int, error) {
	fs := strings.Fields(line)
	if len(fs) == 0 || fs[len(fs)-1] != "0" {
		return nil, errs.Ef(errs.Protocol, "cnf", "clause %q not zero terminated", line)
	}
	res := make([]int, 0, len(fs)-1)
	for _, f := range fs[:len(fs)-1] {
		m, e := strconv.Atoi(f)
		if e != nil || m == 0 {
			return nil, errs.Ef(errs.Protocol, "cnf", "bad literal %q in %q", f, line)
		}
		res = append(res, m)
	}
	return res, nil
}

func abs(m int) int {
	if m < 0 {
		return -m
	}
	return m
}
