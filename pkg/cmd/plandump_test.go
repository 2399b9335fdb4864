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
	"bytes"
	"strings"
	"testing"

	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/plan"
)

func TestPartitionNameCoversAllValues(t *testing.T) {
	cases := map[plan.Partition]string{
		plan.Old: "Old",
		plan.New: "New",
		plan.All: "All",
	}
	//
	for p, want := range cases {
		if got := partitionName(p); got != want {
			t.Fatalf("partitionName(%v) = %q, want %q", p, got, want)
		}
	}
}

func TestPrintPlanRendersRuleAndStages(t *testing.T) {
	program := &ir.Program{
		SortNames: []string{"E"},
		Relations: []ir.Relation{{Name: "Le", Sorts: []ir.Sort{0, 0}, HasFD: false}},
		Rules: []ir.Rule{{
			Name:     "trans",
			NumVars:  3,
			VarSorts: []ir.Sort{0, 0, 0},
			Premise: []ir.QueryAtom{
				{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{0, 1}},
				{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{1, 2}},
			},
			Conclusion: []ir.ActionAtom{
				{Kind: ir.AssertAction, Relation: 0, Vars: []ir.Var{0, 2}},
			},
		}},
	}
	//
	var buf bytes.Buffer
	printPlan(&buf, plan.Compile(program))
	out := buf.String()
	//
	if !strings.Contains(out, "rule trans") {
		t.Fatalf("expected rule name in output, got %q", out)
	}
	//
	if !strings.Contains(out, "variant 0") {
		t.Fatalf("expected at least one variant rendered, got %q", out)
	}
	//
	if !strings.Contains(out, "partition=") {
		t.Fatalf("expected partition names rendered, got %q", out)
	}
}
