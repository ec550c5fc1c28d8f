// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/briandowns/spinner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/go-air/dccopt/balance"
	"github.com/go-air/dccopt/config"
	"github.com/go-air/dccopt/minim"
	"github.com/go-air/dccopt/search"
	"github.com/go-air/dccopt/solve"
)

// balanceRounds bounds the insertion rounds per trial period.
const balanceRounds = 4

var (
	recordOut   string
	reportOut   string
	metricsAddr string
)

var optimizeCmd = &cobra.Command{
	Use:   "optimize design.yaml",
	Args:  cobra.ExactArgs(1),
	Short: "Search the minimum clock period of a design",
	Long: `Search the minimum clock period of a design, placing DCCs and headers,
then optionally insert buffers and minimise the placement.  The deployment
record is written to --out and a YAML report to --report.`,
	RunE: runOptimize,
}

func init() {
	config.Flags(optimizeCmd.Flags())
	optimizeCmd.Flags().StringVarP(&recordOut, "out", "o", "-", "deployment record output")
	optimizeCmd.Flags().StringVar(&reportOut, "report", "", "YAML report output")
	optimizeCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "address to serve prometheus metrics (eg :9090)")
	rootCmd.AddCommand(optimizeCmd)
}

func runOptimize(cmd *cobra.Command, args []string) error {
	opts, e := options(cmd)
	if e != nil {
		return e
	}
	tree, e := loadDesign(args[0])
	if e != nil {
		return e
	}
	model := loadModel(&opts)
	slv, done, e := solve.New(opts.Solver, log)
	if e != nil {
		return e
	}
	defer func() {
		if e := done(); e != nil {
			log.Warnf("solver cleanup: %s", e)
		}
	}()

	var reg prometheus.Registerer = prometheus.NewRegistry()
	if metricsAddr != "" {
		reg = prometheus.DefaultRegisterer
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		go func() {
			if e := http.ListenAndServe(metricsAddr, mux); e != nil {
				log.Warnf("metrics: %s", e)
			}
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	eng := search.New(tree, model, opts, slv, log)
	eng.Metrics = search.NewMetrics(reg)
	var spin *spinner.Spinner
	if !verbose {
		spin = spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = " searching clock period"
		spin.Start()
	}
	start := time.Now()
	_, e = eng.Run(ctx)
	if spin != nil {
		spin.Stop()
	}
	if e != nil {
		return e
	}
	rep := newReport(eng, time.Since(start))
	tc := eng.BestTc()

	eo := eng.Options()
	if eo.Balance {
		tc, e = balance.Refine(eng.Calc, tc, eo.Step(), model.Tech().Iterations, balanceRounds, log)
		if e != nil {
			return e
		}
	}
	if eo.Minimize {
		if eo.DCC {
			if rep.Removed.DCCs, e = minim.DCC(eng.Calc, tc, log); e != nil {
				return e
			}
		}
		if eo.VTA {
			if rep.Removed.Headers, e = minim.VTA(eng.Calc, tc, log); e != nil {
				return e
			}
		}
		if rep.Removed.Buffers, e = minim.Buffers(eng.Calc, tc, log); e != nil {
			return e
		}
	}
	crit, e := eng.Calc.Annotate(tc)
	if e != nil {
		return e
	}
	rep.finish(tree, tc, crit)
	log.Infof("clock period %g (searched %g)", tc, rep.Best)

	w, e := create(recordOut)
	if e != nil {
		return e
	}
	if e := tree.WriteRecord(w); e != nil {
		w.Close()
		return e
	}
	if e := w.Close(); e != nil {
		return e
	}
	if reportOut == "" {
		return nil
	}
	return rep.write(reportOut)
}
