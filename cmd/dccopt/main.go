// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

// Command dccopt places duty cycle correctors and threshold voltage headers
// on a clock tree to minimise the aged clock period.
//
// Usage:
//
//  dccopt optimize [flags] design.yaml
//  dccopt verify [flags] design.yaml record
//  dccopt sat [flags] in.cnf out
//  dccopt version
//
// The exit status classifies failures: 2 configuration, 3 no feasible
// period, 4 solver protocol, 5 model invariant, 130 interrupted or timed
// out, 1 anything else.
package main

import (
	"os"

	"github.com/go-air/dccopt/internal/errs"
)

func main() {
	if e := rootCmd.Execute(); e != nil {
		log.Error(e)
		os.Exit(exitCode(e))
	}
}

func exitCode(e error) int {
	switch errs.KindOf(e) {
	case errs.Config:
		return 2
	case errs.Infeasible:
		return 3
	case errs.Protocol:
		return 4
	case errs.Invariant:
		return 5
	case errs.Canceled:
		return 130
	}
	return 1
}
