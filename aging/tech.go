// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aging

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/go-air/dccopt/internal/errs"
)

// Tech holds the technology constants read from a library settings file.
type Tech struct {
	Iterations int        // refinement iterations
	Years      float64    // fin convergence year
	BaseVth    float64    // base threshold voltage offset
	Fresh      [3]float64 // duty cycles produced by DCC 20/40/80
	Aged       [3]float64 // the same after aging under a header
	Exponent   float64
	Libs       []float64 // per header library threshold offset
}

// DefaultTech returns constants for a 10 year lifetime without header
// libraries.
func DefaultTech() *Tech {
	return &Tech{
		Iterations: 8,
		Years:      10,
		BaseVth:    0.3,
		Fresh:      [3]float64{0.2, 0.4, 0.8},
		Aged:       [3]float64{0.25, 0.45, 0.75},
		Exponent:   1.0 / 6.0}
}

// ParseTech reads a library settings file.
//
// The file is a sequence of whitespace separated numbers, '#' starting a
// comment which runs to end of line:
//
//  iterations
//  year
//  baseVth
//  fresh20 fresh40 fresh80
//  aged20 aged40 aged80
//  exponent
//  count
//  offset_0
//  ...
//  offset_{count-1}
//
// Numbers are converted permissively: the longest numeric prefix of a token
// is used and a token without one reads as 0, with a warning on log.  A
// file which ends before the library count is an error.
func ParseTech(r io.Reader, log logrus.FieldLogger) (*Tech, error) {
	toks, e := tokens(r)
	if e != nil {
		return nil, errs.E(errs.Config, "tech", e)
	}
	if len(toks) < 10 {
		return nil, errs.Ef(errs.Config, "tech", "expected at least 10 values, got %d", len(toks))
	}
	num := func(i int) float64 {
		v, ok := atof(toks[i])
		if !ok && log != nil {
			log.Warnf("tech: value %d %q is not numeric, using %g", i, toks[i], v)
		}
		return v
	}
	t := &Tech{}
	t.Iterations = int(num(0))
	t.Years = num(1)
	t.BaseVth = num(2)
	for i := 0; i < 3; i++ {
		t.Fresh[i] = num(3 + i)
		t.Aged[i] = num(6 + i)
	}
	t.Exponent = num(9)
	if len(toks) == 10 {
		return t, nil
	}
	n := int(num(10))
	if n < 0 {
		n = 0
	}
	if len(toks)-11 < n {
		if log != nil {
			log.Warnf("tech: %d libraries announced, %d present", n, len(toks)-11)
		}
		n = len(toks) - 11
	}
	t.Libs = make([]float64, n)
	for i := range t.Libs {
		t.Libs[i] = num(11 + i)
	}
	return t, nil
}

// Validate checks the constants the aging formulas depend on.
func (t *Tech) Validate() error {
	if t.Years <= 0 {
		return errs.Ef(errs.Config, "tech", "non-positive year %g", t.Years)
	}
	if t.Exponent <= 0 {
		return errs.Ef(errs.Config, "tech", "non-positive exponent %g", t.Exponent)
	}
	for i := 0; i < 3; i++ {
		if t.Fresh[i] <= 0 || t.Fresh[i] > 1 || t.Aged[i] <= 0 || t.Aged[i] > 1 {
			return errs.Ef(errs.Config, "tech", "duty cycle point %d out of (0,1]", i)
		}
	}
	for i, off := range t.Libs {
		if off < 0 {
			return errs.Ef(errs.Config, "tech", "negative offset %g of library %d", off, i+1)
		}
	}
	return nil
}

func tokens(r io.Reader) ([]string, error) {
	var res []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := sc.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		res = append(res, strings.Fields(line)...)
	}
	if e := sc.Err(); e != nil {
		return nil, errors.Wrap(e, "reading tech")
	}
	return res, nil
}

// atof converts the longest numeric prefix of s.
func atof(s string) (float64, bool) {
	if v, e := strconv.ParseFloat(s, 64); e == nil {
		return v, true
	}
	for n := len(s) - 1; n > 0; n-- {
		if v, e := strconv.ParseFloat(s[:n], 64); e == nil {
			return v, false
		}
	}
	return 0, false
}
