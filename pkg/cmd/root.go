// Copyright the eqlog-go authors.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with
// the License. You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on
// an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the License for the
// specific language governing permissions and limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package cmd is the eqlog command-line tool: check, build and run a theory.
package cmd

import (
	"os"
	"runtime/debug"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// Version is filled in when building with make, left blank under "go run".
var Version string

var rootCmd = &cobra.Command{
	Use:   "eqlog",
	Short: "A compiler and saturation engine for eqlog theories.",
	Long:  "A compiler and saturation engine for theories combining Datalog, uninterpreted functions and equality.",
	Run: func(cmd *cobra.Command, args []string) {
		if getFlag(cmd, "version") {
			if Version != "" {
				println("eqlog " + Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				println("eqlog " + info.Main.Version)
			} else {
				println("eqlog (unknown version)")
			}
		} else {
			_ = cmd.Usage()
		}
	},
}

// Execute runs the command tree; called once from cmd/eqlog/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().Bool("version", false, "report the version of this executable")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "increase logging verbosity")
	rootCmd.PersistentFlags().Bool("strict", false, "accepted and passed to the engine config; has no effect on checking or saturation")
	rootCmd.PersistentFlags().Uint("max-rounds", 0, "cap the number of saturation rounds (0 = unbounded)")
	rootCmd.PersistentFlags().Bool("dump-plan", false, "print the compiled query plan for every rule before running")
}

func configureLogging(cmd *cobra.Command) {
	if getFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}
}
