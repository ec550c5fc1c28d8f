// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Package config gathers the options of an optimization run from a config
// file, the environment and command line flags.
//
// The resulting Options value is passed down to every component; nothing
// reads configuration from globals.
package config

import (
	"math"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/go-air/dccopt/internal/errs"
)

// DCCFactors are the logic effort factors applied to the extra delay of a
// deployed DCC, by duty cycle.
type DCCFactors struct {
	D20 float64 `mapstructure:"d20" yaml:"d20"`
	D40 float64 `mapstructure:"d40" yaml:"d40"`
	D80 float64 `mapstructure:"d80" yaml:"d80"`
}

// Solver selects and parameterises the SAT oracle.
type Solver struct {
	// Kind is one of "gini", "exec", "crisp".
	Kind string `mapstructure:"kind" yaml:"kind"`
	// Command is the external solver command line for "exec"; it is run
	// with the cnf file and the result file appended.
	Command string `mapstructure:"command" yaml:"command"`
	// Addr is the crisp server address for "crisp".
	Addr string `mapstructure:"addr" yaml:"addr"`
	// Dir holds the cnf and result files of "exec".
	Dir string `mapstructure:"dir" yaml:"dir"`
	// Keep keeps the exchanged files.
	Keep bool `mapstructure:"keep" yaml:"keep"`
	// Timeout bounds one solver call in seconds, 0 for none.
	Timeout float64 `mapstructure:"timeout" yaml:"timeout"`
}

// Options are the options of a run.
type Options struct {
	DCC   bool `mapstructure:"dcc" yaml:"dcc"`
	VTA   bool `mapstructure:"vta" yaml:"vta"`
	Aging bool `mapstructure:"aging" yaml:"aging"`
	// Senior selects the legacy quadratic aging formula.
	Senior bool `mapstructure:"senior" yaml:"senior"`
	// AgedDCC maps DCC duty cycles to their aged constants when the DCC is
	// at or below a header.
	AgedDCC bool `mapstructure:"aged_dcc" yaml:"aged_dcc"`
	// LeaderOrder forbids a DCC at or below a header on any path.
	LeaderOrder bool `mapstructure:"leader_order" yaml:"leader_order"`

	MaskLength float64 `mapstructure:"mask_length" yaml:"mask_length"`
	// MaskLevel < 0 means the whole tree depth.
	MaskLevel int `mapstructure:"mask_level" yaml:"mask_level"`

	// Precision is the number of decimal digits of Tc.
	Precision int `mapstructure:"precision" yaml:"precision"`

	Factors DCCFactors `mapstructure:"factors" yaml:"factors"`

	// Lib is the technology library settings file, "" for built in
	// constants without header libraries.
	Lib string `mapstructure:"lib" yaml:"lib"`

	Workers  int  `mapstructure:"workers" yaml:"workers"`
	Balance  bool `mapstructure:"balance" yaml:"balance"`
	Minimize bool `mapstructure:"minimize" yaml:"minimize"`

	Solver Solver `mapstructure:"solver" yaml:"solver"`
}

// Default returns the default options.
func Default() Options {
	return Options{
		DCC:         true,
		VTA:         true,
		Aging:       true,
		LeaderOrder: true,
		MaskLength:  0,
		MaskLevel:   -1,
		Precision:   3,
		Factors:     DCCFactors{D20: 1.2, D40: 1.1, D80: 1.3},
		Workers:     1,
		Balance:     true,
		Minimize:    true,
		Solver:      Solver{Kind: "gini", Dir: "."}}
}

// Step returns the Tc resolution 10^-Precision.
func (o *Options) Step() float64 {
	return math.Pow(10, -float64(o.Precision))
}

// Factor returns the logic effort factor of a DCC of the given percentage.
func (o *Options) Factor(percent int) (float64, error) {
	switch percent {
	case 20:
		return o.Factors.D20, nil
	case 40:
		return o.Factors.D40, nil
	case 80:
		return o.Factors.D80, nil
	}
	return 0, errs.Ef(errs.Encoding, "config", "no DCC factor for %d%%", percent)
}

// Validate checks o.
func (o *Options) Validate() error {
	if o.MaskLength < 0 || o.MaskLength > 1 {
		return errs.Ef(errs.Config, "config", "mask_length %g outside [0,1]", o.MaskLength)
	}
	if o.Precision < 0 || o.Precision > 9 {
		return errs.Ef(errs.Config, "config", "precision %d outside [0,9]", o.Precision)
	}
	if o.Workers < 1 {
		return errs.Ef(errs.Config, "config", "workers %d < 1", o.Workers)
	}
	switch o.Solver.Kind {
	case "gini":
	case "exec":
		if o.Solver.Command == "" {
			return errs.Ef(errs.Config, "config", "solver kind exec needs solver.command")
		}
	case "crisp":
		if o.Solver.Addr == "" {
			return errs.Ef(errs.Config, "config", "solver kind crisp needs solver.addr")
		}
	default:
		return errs.Ef(errs.Config, "config", "unknown solver kind %q", o.Solver.Kind)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("dcc", d.DCC)
	v.SetDefault("vta", d.VTA)
	v.SetDefault("aging", d.Aging)
	v.SetDefault("senior", d.Senior)
	v.SetDefault("aged_dcc", d.AgedDCC)
	v.SetDefault("leader_order", d.LeaderOrder)
	v.SetDefault("mask_length", d.MaskLength)
	v.SetDefault("mask_level", d.MaskLevel)
	v.SetDefault("precision", d.Precision)
	v.SetDefault("factors.d20", d.Factors.D20)
	v.SetDefault("factors.d40", d.Factors.D40)
	v.SetDefault("factors.d80", d.Factors.D80)
	v.SetDefault("lib", d.Lib)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("balance", d.Balance)
	v.SetDefault("minimize", d.Minimize)
	v.SetDefault("solver.kind", d.Solver.Kind)
	v.SetDefault("solver.command", d.Solver.Command)
	v.SetDefault("solver.addr", d.Solver.Addr)
	v.SetDefault("solver.dir", d.Solver.Dir)
	v.SetDefault("solver.keep", d.Solver.Keep)
	v.SetDefault("solver.timeout", d.Solver.Timeout)
}

// Flags adds the command line flags understood by Load to fs.
func Flags(fs *pflag.FlagSet) {
	d := Default()
	fs.Bool("dcc", d.DCC, "place duty cycle correctors")
	fs.Bool("vta", d.VTA, "place threshold voltage headers")
	fs.Bool("aging", d.Aging, "check timing after aging as well as fresh")
	fs.Bool("senior", d.Senior, "use the legacy quadratic aging formula")
	fs.Bool("aged-dcc", d.AgedDCC, "age DCC duty cycles below a header")
	fs.Bool("leader-order", d.LeaderOrder, "forbid a DCC at or below a header")
	fs.Float64("mask-length", d.MaskLength, "fraction of each clock path next to the sink barred from DCCs")
	fs.Int("mask-level", d.MaskLevel, "only levels within this many of the deepest may host a DCC (-1: all)")
	fs.Int("precision", d.Precision, "decimal digits of the clock period")
	fs.String("lib", d.Lib, "technology library settings file")
	fs.Int("workers", d.Workers, "goroutines generating timing clauses")
	fs.Bool("balance", d.Balance, "insert buffers to shave the period further")
	fs.Bool("minimize", d.Minimize, "minimize DCC, header and buffer counts")
	fs.String("solver", d.Solver.Kind, "solver: gini, exec or crisp")
	fs.String("solver-cmd", d.Solver.Command, "external solver command line (solver exec)")
	fs.String("solver-addr", d.Solver.Addr, "crisp server address (solver crisp)")
	fs.String("solver-dir", d.Solver.Dir, "directory for solver exchange files")
	fs.Bool("solver-keep", d.Solver.Keep, "keep solver exchange files")
	fs.Float64("solver-timeout", d.Solver.Timeout, "seconds per solver call, 0 for no limit")
}

var flagKeys = map[string]string{
	"aged-dcc":       "aged_dcc",
	"leader-order":   "leader_order",
	"mask-length":    "mask_length",
	"mask-level":     "mask_level",
	"solver":         "solver.kind",
	"solver-cmd":     "solver.command",
	"solver-addr":    "solver.addr",
	"solver-dir":     "solver.dir",
	"solver-keep":    "solver.keep",
	"solver-timeout": "solver.timeout",
}

// Load reads options from the YAML file path (if not empty), the DCCOPT_*
// environment, and the flags of fs (if not nil) which were set, in
// increasing order of precedence.
func Load(path string, fs *pflag.FlagSet) (Options, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("dccopt")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if path != "" {
		p, e := homedir.Expand(path)
		if e != nil {
			return Options{}, errs.E(errs.Config, "config", e)
		}
		v.SetConfigFile(p)
		v.SetConfigType("yaml")
		if e := v.ReadInConfig(); e != nil {
			return Options{}, errs.E(errs.Config, "config", errors.Wrapf(e, "reading %s", p))
		}
	}
	if fs != nil {
		var e error
		fs.VisitAll(func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = f.Name
			}
			if _, known := v.AllSettings()[strings.Split(key, ".")[0]]; !known {
				return
			}
			if err := v.BindPFlag(key, f); err != nil && e == nil {
				e = err
			}
		})
		if e != nil {
			return Options{}, errs.E(errs.Config, "config", e)
		}
	}
	var o Options
	if e := v.Unmarshal(&o); e != nil {
		return Options{}, errs.E(errs.Config, "config", e)
	}
	if o.Lib != "" {
		p, e := homedir.Expand(o.Lib)
		if e != nil {
			return Options{}, errs.E(errs.Config, "config", e)
		}
		o.Lib = p
	}
	if e := o.Validate(); e != nil {
		return Options{}, e
	}
	return o, nil
}
