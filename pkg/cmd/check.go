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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/eqlog-lang/eqlog-go/pkg/ast"
	"github.com/eqlog-lang/eqlog-go/pkg/elab"
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] theory_file(s)",
	Short: "Parse and elaborate theory files, reporting diagnostics only.",
	Long:  "Parse and elaborate the given theory files without compiling a plan or running the engine.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) == 0 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		failed := false
		//
		for _, filename := range args {
			files, err := source.ReadFiles(filename)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				failed = true
				continue
			}
			//
			srcfile := files[0]
			//
			mod, errs := ast.Parse(srcfile)
			if len(errs) > 0 {
				printErrors(errs)
				failed = true
				continue
			}
			//
			if _, errs := elab.Elaborate(mod, srcfile); len(errs) > 0 {
				printErrors(errs)
				failed = true
				continue
			}
			//
			fmt.Printf("%s: ok\n", filename)
		}
		//
		if failed {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
}
