// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package aging

import (
	"math"
	"strings"
	"testing"

	"github.com/go-air/dccopt/internal/errs"
)

func testTech() *Tech {
	t := DefaultTech()
	t.Libs = []float64{0.05, 0.1}
	return t
}

func TestRateNoAging(t *testing.T) {
	for _, mode := range []Mode{Fin, Senior} {
		m := New(testTech(), mode)
		for lib := Nominal; lib < m.NumLibs(); lib++ {
			for dc := 0.0; dc <= 1.0; dc += 0.05 {
				r, e := m.Rate(dc, lib, false)
				if e != nil {
					t.Fatal(e)
				}
				if r != 1 {
					t.Errorf("mode %d lib %d dc %g: no-aging rate %g", mode, lib, dc, r)
				}
			}
		}
		// even undefined duty cycles are fine without aging.
		if r, e := m.Rate(7, 99, false); e != nil || r != 1 {
			t.Errorf("no-aging with junk args: %g %v", r, e)
		}
	}
}

func TestRateMonotone(t *testing.T) {
	for _, mode := range []Mode{Fin, Senior} {
		m := New(testTech(), mode)
		for lib := Nominal; lib < m.NumLibs(); lib++ {
			last := 0.0
			for i := 0; i <= 100; i++ {
				dc := float64(i) / 100
				r, e := m.Rate(dc, lib, true)
				if e != nil {
					t.Fatal(e)
				}
				if r < 1 {
					t.Errorf("mode %d lib %d dc %g: rate %g < 1", mode, lib, dc, r)
				}
				if r < last {
					t.Errorf("mode %d lib %d dc %g: rate %g decreased from %g", mode, lib, dc, r, last)
				}
				last = r
			}
		}
	}
}

func TestRateErrors(t *testing.T) {
	m := New(testTech(), Fin)
	for _, dc := range []float64{-0.1, 1.5, math.NaN()} {
		if _, e := m.Rate(dc, Nominal, true); !errs.Is(e, errs.Encoding) {
			t.Errorf("dc %g: expected encoding error, got %v", dc, e)
		}
	}
	if _, e := m.Rate(0.5, 2, true); !errs.Is(e, errs.Encoding) {
		t.Errorf("lib 2: expected encoding error, got %v", e)
	}
	if _, e := m.Rate(0.5, -2, true); e == nil {
		t.Errorf("lib -2 accepted")
	}
}

func TestHeaderSlowsAging(t *testing.T) {
	m := New(testTech(), Fin)
	nom, _ := m.Conv(Nominal)
	hdr, _ := m.Conv(1)
	if hdr >= nom {
		t.Errorf("header conv %g not below nominal %g", hdr, nom)
	}
	if m.Inflation() <= 1 {
		t.Errorf("inflation %g", m.Inflation())
	}
	r, _ := m.Rate(1, Nominal, true)
	if r != m.Inflation() {
		t.Errorf("inflation %g != full stress rate %g", m.Inflation(), r)
	}
}

func TestParseTech(t *testing.T) {
	src := `# lifetime settings
4          # iterations
10
0.3
0.2 0.4 0.8
0.25 0.45 0.75
0.1666667
2
0.05
0.1x
`
	tech, e := ParseTech(strings.NewReader(src), nil)
	if e != nil {
		t.Fatal(e)
	}
	if tech.Iterations != 4 || tech.Years != 10 || tech.BaseVth != 0.3 {
		t.Errorf("header %+v", tech)
	}
	if tech.Fresh != [3]float64{0.2, 0.4, 0.8} || tech.Aged != [3]float64{0.25, 0.45, 0.75} {
		t.Errorf("duty cycle points %v %v", tech.Fresh, tech.Aged)
	}
	if len(tech.Libs) != 2 || tech.Libs[0] != 0.05 || tech.Libs[1] != 0.1 {
		t.Errorf("libs %v", tech.Libs)
	}
	if e := tech.Validate(); e != nil {
		t.Error(e)
	}
}

func TestParseTechShort(t *testing.T) {
	_, e := ParseTech(strings.NewReader("1 2 3"), nil)
	if !errs.Is(e, errs.Config) {
		t.Errorf("expected config error, got %v", e)
	}
	tech, e := ParseTech(strings.NewReader("1 10 0.3 .2 .4 .8 .2 .4 .8 0.2 0"), nil)
	if e != nil {
		t.Fatal(e)
	}
	if len(tech.Libs) != 0 {
		t.Errorf("zero count gave libs %v", tech.Libs)
	}
}

func TestValidate(t *testing.T) {
	if e := testTech().Validate(); e != nil {
		t.Fatal(e)
	}
	for i, mod := range []func(*Tech){
		func(t *Tech) { t.Years = 0 },
		func(t *Tech) { t.Exponent = -1 },
		func(t *Tech) { t.Fresh[1] = 0 },
		func(t *Tech) { t.Aged[2] = 1.5 },
		func(t *Tech) { t.Libs[1] = -0.1 },
	} {
		tech := testTech()
		mod(tech)
		if e := tech.Validate(); !errs.Is(e, errs.Config) {
			t.Errorf("case %d: expected config error, got %v", i, e)
		}
	}
}

func TestDutyCycle(t *testing.T) {
	tech := DefaultTech()
	for _, tc := range []struct {
		pct  int
		aged bool
		want float64
	}{
		{0, false, 0.5}, {0, true, 0.5},
		{20, false, 0.2}, {40, false, 0.4}, {80, false, 0.8},
		{20, true, 0.25}, {40, true, 0.45}, {80, true, 0.75},
	} {
		got, e := tech.DutyCycle(tc.pct, tc.aged)
		if e != nil || got != tc.want {
			t.Errorf("%d%% aged=%t: got %g %v want %g", tc.pct, tc.aged, got, e, tc.want)
		}
	}
	if _, e := tech.DutyCycle(50, false); e == nil {
		t.Errorf("50%% accepted")
	}
}
