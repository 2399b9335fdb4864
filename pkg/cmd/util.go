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
	"github.com/eqlog-lang/eqlog-go/pkg/diagnostic"
	"github.com/eqlog-lang/eqlog-go/pkg/elab"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// getFlag fetches a bool flag, panicking (via os.Exit) on a programming
// error rather than a user-facing one: every flag fetched this way is
// declared in this package's own init().
func getFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

func getUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}
	//
	return r
}

// printErrors reports every elaboration/parse error against its source
// span, falling back to a bare message for anything that isn't a
// source.SyntaxError.
func printErrors(errs []error) {
	for _, err := range errs {
		if se, ok := err.(*source.SyntaxError); ok {
			diagnostic.Print(os.Stderr, int(os.Stderr.Fd()), se)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}

// loadProgram reads, parses and elaborates a single theory source file,
// exiting the process with diagnostics on any error.
func loadProgram(filename string) *ir.Program {
	files, err := source.ReadFiles(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	//
	srcfile := files[0]
	//
	mod, errs := ast.Parse(srcfile)
	if len(errs) > 0 {
		printErrors(errs)
		os.Exit(1)
	}
	//
	program, errs := elab.Elaborate(mod, srcfile)
	if len(errs) > 0 {
		printErrors(errs)
		os.Exit(1)
	}
	//
	return program
}
