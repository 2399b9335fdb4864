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
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/eqlog-lang/eqlog-go/pkg/engine"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/plan"
	"github.com/eqlog-lang/eqlog-go/pkg/store"
)

// seed is the JSON format `eqlog run` loads initial elements and rows from.
// Elements are named so that Rows/Functions can refer back to them; the
// names only exist for the seed file's own bookkeeping and have no meaning
// to the model once loaded.
type seed struct {
	// Elements maps a sort name to the names of the fresh elements to mint.
	Elements map[string][]string `json:"elements"`
	// Rows maps a predicate name to a list of rows, each a list of element
	// names (one per column).
	Rows map[string][][]string `json:"rows"`
	// Functions maps a function name to a list of (domain, result) pairs.
	Functions map[string][]functionRow `json:"functions"`
}

type functionRow struct {
	Args   []string `json:"args"`
	Result string   `json:"result"`
}

var runCmd = &cobra.Command{
	Use:   "run [flags] theory_file seed_file",
	Short: "Compile a theory, load a JSON seed, saturate, and print the result.",
	Run: func(cmd *cobra.Command, args []string) {
		configureLogging(cmd)
		//
		if len(args) != 2 {
			fmt.Println(cmd.UsageString())
			os.Exit(1)
		}
		//
		program := loadProgram(args[0])
		//
		if getFlag(cmd, "dump-plan") {
			printPlan(os.Stdout, plan.Compile(program))
		}
		//
		sd := readSeed(args[1])
		//
		cfg := engine.Config{
			MaxRounds: getUint(cmd, "max-rounds"),
			Strict:    getFlag(cmd, "strict"),
			Verbose:   getFlag(cmd, "verbose"),
		}
		//
		m := engine.New(program, cfg)
		named := loadSeed(m, sd)
		//
		status := m.Close()
		log.Infof("saturation finished: %s", status)
		//
		printRelations(program, m, named)
	},
}

func readSeed(filename string) seed {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	//
	var sd seed
	if err := json.Unmarshal(bytes, &sd); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	//
	return sd
}

// loadSeed mints every named element, asserts every seeded row, and returns
// the name->element map for later pretty-printing.
func loadSeed(m *engine.Model, sd seed) map[store.Elem]string {
	named := make(map[store.Elem]string)
	elems := make(map[string]store.Elem)
	//
	for sortName, names := range sd.Elements {
		for _, name := range names {
			e, err := m.NewElement(sortName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
			//
			elems[name] = e
			named[e] = name
		}
	}
	//
	resolve := func(name string) store.Elem {
		e, ok := elems[name]
		if !ok {
			fmt.Fprintf(os.Stderr, "seed file refers to unknown element %q\n", name)
			os.Exit(2)
		}
		//
		return e
	}
	//
	for predName, rows := range sd.Rows {
		for _, row := range rows {
			args := make([]store.Elem, len(row))
			for i, name := range row {
				args[i] = resolve(name)
			}
			//
			if err := m.InsertRow(predName, args...); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		}
	}
	//
	for funcName, rows := range sd.Functions {
		for _, row := range rows {
			args := make([]store.Elem, len(row.Args))
			for i, name := range row.Args {
				args[i] = resolve(name)
			}
			//
			if err := m.DefineRow(funcName, args, resolve(row.Result)); err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(2)
			}
		}
	}
	//
	return named
}

func elemLabel(named map[store.Elem]string, e store.Elem) string {
	if n, ok := named[e]; ok {
		return n
	}
	//
	return fmt.Sprintf("#%d", e)
}

// printRelations prints the canonical rows of every relation, named
// arguments where the seed file gave them a name and a bare index otherwise.
func printRelations(program *ir.Program, m *engine.Model, named map[store.Elem]string) {
	names := make([]string, len(program.Relations))
	for i, rel := range program.Relations {
		names[i] = rel.Name
	}
	//
	sort.Strings(names)
	//
	for _, name := range names {
		rows := m.IterRelation(name)
		if len(rows) == 0 {
			continue
		}
		//
		for _, row := range rows {
			labels := make([]string, len(row))
			for i, e := range row {
				labels[i] = elemLabel(named, e)
			}
			//
			fmt.Printf("%s(%s)\n", name, strings.Join(labels, ", "))
		}
	}
}

func init() {
	rootCmd.AddCommand(runCmd)
}
