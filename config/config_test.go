// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"

	"github.com/go-air/dccopt/internal/errs"
)

func TestLoadDefaults(t *testing.T) {
	o, e := Load("", nil)
	if e != nil {
		t.Fatal(e)
	}
	d := Default()
	if o.DCC != d.DCC || o.Precision != d.Precision || o.Factors != d.Factors || o.Solver.Kind != "gini" {
		t.Errorf("got %+v want %+v", o, d)
	}
	if s := o.Step(); s < 0.00099 || s > 0.00101 {
		t.Errorf("step %g", s)
	}
}

func TestLoadFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "dccopt.yaml")
	src := `
vta: false
mask_length: 0.25
precision: 2
factors:
  d40: 1.5
solver:
  kind: exec
  command: minisat
`
	if e := ioutil.WriteFile(p, []byte(src), 0644); e != nil {
		t.Fatal(e)
	}
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	Flags(fs)
	fs.Bool("verbose", false, "not an option")
	if e := fs.Parse([]string{"--precision", "4", "--mask-level", "2"}); e != nil {
		t.Fatal(e)
	}
	o, e := Load(p, fs)
	if e != nil {
		t.Fatal(e)
	}
	if o.VTA || !o.DCC {
		t.Errorf("dcc %t vta %t", o.DCC, o.VTA)
	}
	if o.MaskLength != 0.25 || o.MaskLevel != 2 || o.Precision != 4 {
		t.Errorf("mask %g/%d precision %d", o.MaskLength, o.MaskLevel, o.Precision)
	}
	if o.Factors.D40 != 1.5 || o.Factors.D20 != 1.2 {
		t.Errorf("factors %+v", o.Factors)
	}
	if o.Solver.Kind != "exec" || o.Solver.Command != "minisat" {
		t.Errorf("solver %+v", o.Solver)
	}
}

func TestValidate(t *testing.T) {
	for _, f := range []func(o *Options){
		func(o *Options) { o.MaskLength = 1.5 },
		func(o *Options) { o.Precision = -1 },
		func(o *Options) { o.Workers = 0 },
		func(o *Options) { o.Solver.Kind = "exec" },
		func(o *Options) { o.Solver.Kind = "crisp" },
		func(o *Options) { o.Solver.Kind = "z3" },
	} {
		o := Default()
		f(&o)
		if e := o.Validate(); !errs.Is(e, errs.Config) {
			t.Errorf("%+v: expected config error, got %v", o, e)
		}
	}
	if _, e := Load("/does/not/exist.yaml", nil); !errs.Is(e, errs.Config) {
		t.Errorf("missing file: %v", e)
	}
}

func TestFactor(t *testing.T) {
	o := Default()
	for pct, want := range map[int]float64{20: 1.2, 40: 1.1, 80: 1.3} {
		if f, e := o.Factor(pct); e != nil || f != want {
			t.Errorf("%d%%: %g %v", pct, f, e)
		}
	}
	if _, e := o.Factor(50); e == nil {
		t.Errorf("50%% factor")
	}
}
