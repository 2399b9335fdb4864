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
package cmd

import (
	"encoding/gob"
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	ebuild "github.com/eqlog-lang/eqlog-go/pkg/build"
	"github.com/eqlog-lang/eqlog-go/pkg/plan"
)

var buildCmd = &cobra.Command{
	Use:   "build [flags] dir",
	Short: "Compile every theory file under a directory into a binary artifact.",
	Long: `Walk a directory for *.eqlog files, compile each one, and write a gob-encoded
	compiled program alongside its source (replacing the .eqlog extension with .eqlogc).`,
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) != 1 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		files, err := ebuild.DirWalker{}.Walk(args[0])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		//
		if len(files) == 0 {
			log.Warnf("no %s files found under %s", ebuild.Ext, args[0])
		}
		//
		dumpPlan := getFlag(cmd, "dump-plan")
		//
		for _, filename := range files {
			program := loadProgram(filename)
			//
			if dumpPlan {
				printPlan(os.Stdout, plan.Compile(program))
			}
			//
			out := strings.TrimSuffix(filename, ebuild.Ext) + ".eqlogc"
			//
			f, err := os.Create(out)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			//
			if err := gob.NewEncoder(f).Encode(program); err != nil {
				fmt.Fprintln(os.Stderr, err)
				f.Close()
				os.Exit(2)
			}
			//
			f.Close()
			log.WithFields(log.Fields{"source": filename, "artifact": out}).Info("compiled")
		}
	},
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
