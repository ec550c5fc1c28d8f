// Copyright 2016 The Gini Authors. All rights reserved.  Use of this source
// code is governed by a license that can be found in the License file.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// version is set with -ldflags "-X main.version=...".
var version = "devel"

var versionCmd = &cobra.Command{
	Use:   "version",
	Args:  cobra.NoArgs,
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("dccopt", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
