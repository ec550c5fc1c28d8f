// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-air/dccopt/solve"
)

var (
	satTimeout time.Duration
	satcomp    bool
)

var satCmd = &cobra.Command{
	Use:   "sat in.cnf out",
	Args:  cobra.ExactArgs(2),
	Short: "Solve a dimacs file, for use as an external solver",
	Long: `Solve a dimacs cnf file with gini and write SAT and a model, or UNSAT, to
out, the format dccopt reads back from an external solver.  Thus

  dccopt optimize --solver exec --solver-cmd "dccopt sat" design.yaml

runs every period check in a separate process.`,
	RunE: runSat,
}

func init() {
	satCmd.Flags().DurationVar(&satTimeout, "timeout", 0, "timeout, 0 for none")
	satCmd.Flags().BoolVar(&satcomp, "satcomp", false, "if true, exit 10 sat, 20 unsat")
	rootCmd.AddCommand(satCmd)
}

func runSat(cmd *cobra.Command, args []string) error {
	r, e := open(args[0])
	if e != nil {
		return e
	}
	defer r.Close()
	name := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	p, e := solve.ReadProblem(r, name)
	if e != nil {
		return e
	}
	res, e := (&solve.Gini{Timeout: satTimeout}).Solve(context.Background(), p)
	if e != nil {
		return e
	}
	w, e := create(args[1])
	if e != nil {
		return e
	}
	if e := solve.WriteResult(w, res); e != nil {
		w.Close()
		return e
	}
	if e := w.Close(); e != nil {
		return e
	}
	log.Debugf("%s: %d vars %d clauses: %d", name, p.MaxVar(), p.Len(), res.Status)
	if satcomp {
		switch res.Status {
		case solve.Sat:
			os.Exit(10)
		case solve.Unsat:
			os.Exit(20)
		}
	}
	return nil
}
