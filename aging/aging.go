// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package aging converts the stress duty cycle of a clock buffer into the
// multiplier by which NBTI aging inflates its delay.
//
// A Model is built once from technology constants (see Tech) and is then
// immutable, so it may be shared freely.  Library index -1 denotes nominal
// threshold buffers; indices 0..NumLibs()-1 denote header libraries with a
// raised threshold voltage.
package aging

import (
	"math"

	"github.com/go-air/dccopt/internal/errs"
)

const (
	SecondsPerYear = 31536000.0

	// supply voltage against which threshold offsets are measured.
	vdd = 0.9
	// NBTI prefactor, chosen so nominal buffers at 50% stress age by ~15%
	// over 10 years.
	nbtiScale = 0.00215
	// fresh delay penalty per volt of header threshold offset.
	headerPenalty = 0.1

	// senior (legacy quadratic) coefficients
	seniorA = 0.0439
	seniorB = 0.0755
	seniorC = 0.0088
)

// Nominal is the library index of buffers without a header.
const Nominal = -1

// Mode selects the aging formula.
type Mode int

const (
	// Fin is the long-term NBTI power law.
	Fin Mode = iota
	// Senior is the legacy closed-form quadratic in duty cycle.
	Senior
)

type lib struct {
	off   float64 // threshold voltage offset
	sv    float64 // offset sensitivity
	conv  float64 // Vnbti at full stress, at convergence
	extra float64
}

// Model computes aging rates.
type Model struct {
	tech *Tech
	mode Mode
	nom  lib
	libs []lib
}

// New creates a model from technology constants t.
func New(t *Tech, mode Mode) *Model {
	m := &Model{tech: t, mode: mode}
	m.nom = m.precompute(0, false)
	m.libs = make([]lib, len(t.Libs))
	for i, off := range t.Libs {
		m.libs[i] = m.precompute(off, true)
	}
	return m
}

func (m *Model) precompute(off float64, header bool) lib {
	l := lib{off: off}
	d := vdd - (m.tech.BaseVth + off)
	if d <= 0 {
		d = math.SmallestNonzeroFloat64
	}
	l.sv = 1 / d
	if header {
		l.extra = headerPenalty * off
	}
	l.conv = m.vnbti(&l, 1.0)
	return l
}

func (m *Model) vnbti(l *lib, dc float64) float64 {
	f := 1 - l.sv*l.off
	if f < 0 {
		f = 0
	}
	return f * nbtiScale * math.Pow(dc*SecondsPerYear*m.tech.Years, m.tech.Exponent)
}

// Tech returns the technology constants of m.
func (m *Model) Tech() *Tech {
	return m.tech
}

// Mode returns the formula used by m.
func (m *Model) Mode() Mode {
	return m.mode
}

// NumLibs returns the number of header libraries.
func (m *Model) NumLibs() int {
	return len(m.libs)
}

func (m *Model) lib(i int) (*lib, error) {
	if i == Nominal {
		return &m.nom, nil
	}
	if i < 0 || i >= len(m.libs) {
		return nil, errs.Ef(errs.Encoding, "aging", "unknown library index %d", i)
	}
	return &m.libs[i], nil
}

// Rate returns the delay multiplier of a buffer of library lib stressed at
// duty cycle dc.  It returns 1 whenever aging is false.  A duty cycle outside
// [0,1] or an unknown library index is an error.
func (m *Model) Rate(dc float64, lib int, aging bool) (float64, error) {
	if !aging {
		return 1, nil
	}
	if math.IsNaN(dc) || dc < 0 || dc > 1 {
		return 0, errs.Ef(errs.Encoding, "aging", "undefined duty cycle %g", dc)
	}
	l, e := m.lib(lib)
	if e != nil {
		return 0, e
	}
	switch m.mode {
	case Senior:
		return 1 + seniorA*dc*dc + seniorB*dc + seniorC + l.extra, nil
	default:
		return 1 + 2*m.vnbti(l, dc) + l.extra, nil
	}
}

// Conv returns the converged threshold shift of library lib under full
// stress.
func (m *Model) Conv(lib int) (float64, error) {
	l, e := m.lib(lib)
	if e != nil {
		return 0, e
	}
	return l.conv, nil
}

// Inflation returns the worst case aging multiplier of nominal buffers, the
// factor by which the nominal period may need to grow.
func (m *Model) Inflation() float64 {
	r, _ := m.Rate(1.0, Nominal, true)
	return r
}
