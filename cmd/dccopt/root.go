// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"compress/bzip2"
	"compress/gzip"
	"io"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/go-air/dccopt/aging"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/ctree"
	"github.com/go-air/dccopt/internal/errs"
)

var log = logrus.New()

var (
	verbose bool
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "dccopt",
	Short: "Aging aware clock period optimisation",
	Long: `dccopt searches the smallest clock period at which every setup check of a
design holds, fresh and after NBTI aging, by placing duty cycle correctors
and threshold voltage headers on the clock tree with the help of a SAT
solver.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print debug output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
}

func setup(cmd *cobra.Command, args []string) error {
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return nil
}

// options loads the configuration with the flags of cmd on top.
func options(cmd *cobra.Command) (config.Options, error) {
	return config.Load(cfgFile, cmd.Flags())
}

type readCloser struct {
	io.Reader
	io.Closer
}

// open opens p for reading, "-" being stdin, decompressing ".gz" and
// ".bz2" files.
func open(p string) (io.ReadCloser, error) {
	if p == "-" {
		return os.Stdin, nil
	}
	p, e := homedir.Expand(p)
	if e != nil {
		return nil, e
	}
	f, e := os.Open(p)
	if e != nil {
		return nil, e
	}
	if strings.HasSuffix(p, ".gz") {
		r, e := gzip.NewReader(f)
		if e != nil {
			f.Close()
			return nil, e
		}
		return readCloser{r, f}, nil
	}
	if strings.HasSuffix(p, ".bz2") {
		return readCloser{bzip2.NewReader(f), f}, nil
	}
	return f, nil
}

// create opens p for writing, "-" being stdout.
func create(p string) (io.WriteCloser, error) {
	if p == "-" {
		return nopCloser{os.Stdout}, nil
	}
	p, e := homedir.Expand(p)
	if e != nil {
		return nil, e
	}
	return os.Create(p)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func loadDesign(p string) (*ctree.Tree, error) {
	r, e := open(p)
	if e != nil {
		return nil, errs.E(errs.Config, "design", e)
	}
	defer r.Close()
	t, e := ctree.LoadDesign(r)
	if e != nil {
		return nil, errors.Wrapf(e, "%s", p)
	}
	return t, nil
}

// loadModel reads the technology library of o.  An unreadable or invalid
// library is reported and replaced by the built in constants, which have no
// header library.
func loadModel(o *config.Options) *aging.Model {
	mode := aging.Fin
	if o.Senior {
		mode = aging.Senior
	}
	tech := aging.DefaultTech()
	if o.Lib != "" {
		t, e := readTech(o.Lib)
		if e == nil {
			e = t.Validate()
		}
		if e != nil {
			log.Warnf("%s, using built in technology", e)
		} else {
			tech = t
		}
	}
	return aging.New(tech, mode)
}

func readTech(p string) (*aging.Tech, error) {
	r, e := open(p)
	if e != nil {
		return nil, errs.E(errs.Config, "lib", e)
	}
	defer r.Close()
	t, e := aging.ParseTech(r, log)
	if e != nil {
		return nil, errs.E(errs.Config, "lib", errors.Wrapf(e, "%s", p))
	}
	return t, nil
}
