// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/internal/errs"
	"github.com/go-air/dccopt/lat"
)

var verifyTc float64

var verifyCmd = &cobra.Command{
	Use:   "verify design.yaml record",
	Args:  cobra.ExactArgs(2),
	Short: "Check a deployment record against a design",
	Long: `Apply a deployment record to a design and recompute the setup check of
every path at --tc (default: the design's nominal period).  Exits with status 3
if some path fails.`,
	RunE: runVerify,
}

func init() {
	config.Flags(verifyCmd.Flags())
	verifyCmd.Flags().Float64Var(&verifyTc, "tc", 0, "clock period to check, 0 for the nominal period")
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	opts, e := options(cmd)
	if e != nil {
		return e
	}
	tree, e := loadDesign(args[0])
	if e != nil {
		return e
	}
	r, e := open(args[1])
	if e != nil {
		return errs.E(errs.Config, "record", e)
	}
	defer r.Close()
	if e := tree.ReadRecord(r); e != nil {
		return errors.Wrapf(e, "%s", args[1])
	}
	tc := verifyTc
	if tc == 0 {
		tc = tree.Period
	}
	calc := lat.New(tree, loadModel(&opts), &opts)
	crit, e := calc.Annotate(tc)
	if e != nil {
		return e
	}
	tw := tabwriter.NewWriter(os.Stdout, 2, 8, 1, ' ', 0)
	fmt.Fprintf(tw, "path\tci\tcj\tarrival\trequired\tslack\n")
	failed := 0
	for _, p := range tree.Paths {
		if !p.Timed() {
			continue
		}
		mark := ""
		if p.Slack < -lat.Eps {
			mark = " !"
			failed++
		}
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f%s\n", p, p.Ci, p.Cj, p.Arrival, p.Required, p.Slack, mark)
	}
	if e := tw.Flush(); e != nil {
		return e
	}
	if crit != nil {
		log.Infof("critical %s slack %g at %g", crit, crit.Slack, tc)
	}
	if failed > 0 {
		return errs.Ef(errs.Infeasible, "verify", "%d paths fail at %g", failed, tc)
	}
	return nil
}
