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
package plan

import (
	"testing"

	"github.com/eqlog-lang/eqlog-go/pkg/ir"
)

// transitivity mirrors "Le(x,y) & Le(y,z) => Le(x,z)": one relation, two
// premise atoms sharing variable y.
func transitivityProgram() *ir.Program {
	return &ir.Program{
		SortNames: []string{"E"},
		Relations: []ir.Relation{{Name: "Le", Sorts: []ir.Sort{0, 0}, HasFD: false}},
		Rules: []ir.Rule{{
			Name:     "trans",
			NumVars:  3,
			VarSorts: []ir.Sort{0, 0, 0},
			Premise: []ir.QueryAtom{
				{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{0, 1}}, // Le(x, y)
				{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{1, 2}}, // Le(y, z)
			},
			Conclusion: []ir.ActionAtom{
				{Kind: ir.AssertAction, Relation: 0, Vars: []ir.Var{0, 2}}, // Le(x, z)
			},
		}},
	}
}

func TestOrderAtomsPicksSharedVariableOrder(t *testing.T) {
	rule := transitivityProgram().Rules[0]
	order := orderAtoms(rule.Premise, rule.NumVars)
	//
	if len(order) != 2 {
		t.Fatalf("expected 2 scheduled atoms, got %d", len(order))
	}
	//
	// Both atoms have two free variables at the start; ties break by
	// original atom order, so atom 0 (Le(x,y)) is scheduled first.
	if order[0] != 0 || order[1] != 1 {
		t.Fatalf("expected order [0 1], got %v", order)
	}
}

func TestOrderAtomsEqAtomWaitsUntilReady(t *testing.T) {
	// P(x) & x = y & Q(y): Eq can't be scheduled before x is bound, even
	// though it has fewer "vars" than a two-column Rel atom.
	premise := []ir.QueryAtom{
		{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{0}},           // P(x)
		{Kind: ir.EqAtom, Lhs: 0, Rhs: 1},                            // x = y
		{Kind: ir.RelAtom, Relation: 1, Vars: []ir.Var{1}},           // Q(y)
	}
	order := orderAtoms(premise, 2)
	//
	if order[0] != 0 {
		t.Fatalf("expected P(x) scheduled first since x = y isn't ready yet, got order %v", order)
	}
	//
	if order[1] != 1 {
		t.Fatalf("expected x = y scheduled as soon as x is bound, got order %v", order)
	}
}

func TestOrderAtomsDeterministicTieBreak(t *testing.T) {
	// Three independent unary atoms over disjoint variables: all tied at
	// one free variable each, every time, so the order must equal the
	// original atom order exactly.
	premise := []ir.QueryAtom{
		{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{0}},
		{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{1}},
		{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{2}},
	}
	order := orderAtoms(premise, 3)
	//
	for i, idx := range order {
		if idx != i {
			t.Fatalf("expected order [0 1 2], got %v", order)
		}
	}
}

func TestOrderAtomsUnresolvableEqTerminates(t *testing.T) {
	// x = y with neither side ever bound by anything else: orderAtoms must
	// still terminate (scheduling it as a last resort) rather than loop.
	premise := []ir.QueryAtom{{Kind: ir.EqAtom, Lhs: 0, Rhs: 1}}
	order := orderAtoms(premise, 2)
	//
	if len(order) != 1 || order[0] != 0 {
		t.Fatalf("expected the lone Eq atom scheduled, got %v", order)
	}
}

func TestBoundPositionsDetectsDiagonal(t *testing.T) {
	// Rel(x, x): the same variable in two columns is a diagonal constraint,
	// not a binding requirement on two distinct positions.
	atom := ir.QueryAtom{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{5, 5}}
	bound, diagonals := boundPositions(atom, make([]bool, 10))
	//
	if len(bound) != 0 {
		t.Fatalf("expected no bound columns (var 5 not yet bound), got %v", bound)
	}
	//
	if len(diagonals) != 1 || diagonals[0] != [2]int{0, 1} {
		t.Fatalf("expected a single diagonal (0,1), got %v", diagonals)
	}
}

func TestBoundPositionsReportsBoundColumns(t *testing.T) {
	boundVars := make([]bool, 4)
	boundVars[1] = true
	//
	atom := ir.QueryAtom{Kind: ir.RelAtom, Relation: 0, Vars: []ir.Var{0, 1, 2}}
	bound, diagonals := boundPositions(atom, boundVars)
	//
	if len(diagonals) != 0 {
		t.Fatalf("expected no diagonals, got %v", diagonals)
	}
	//
	if len(bound) != 1 || bound[0] != 1 {
		t.Fatalf("expected only column 1 bound, got %v", bound)
	}
}

func TestDeltaVariantsOneVariantPerRelationalAtom(t *testing.T) {
	compiled := Compile(transitivityProgram())
	rule := compiled.Rules[0]
	//
	if len(rule.Variants) != 2 {
		t.Fatalf("expected 2 delta variants (one per Le premise atom), got %d", len(rule.Variants))
	}
	//
	for _, variant := range rule.Variants {
		var sawNew int
		var sawOld int
		//
		for _, s := range variant.Stages {
			switch s.Partition {
			case New:
				sawNew++
			case Old:
				sawOld++
			}
		}
		//
		if sawNew != 1 {
			t.Fatalf("expected exactly one New-partitioned stage per variant, got %d in %+v", sawNew, variant)
		}
	}
	//
	// The variant pinning the first-scheduled atom to New has no earlier
	// stage, so it has zero Old-partitioned stages; the variant pinning the
	// second has exactly one.
	oldCounts := make(map[int]int)
	for _, variant := range rule.Variants {
		count := 0
		for _, s := range variant.Stages {
			if s.Partition == Old {
				count++
			}
		}
		oldCounts[count]++
	}
	//
	if oldCounts[0] != 1 || oldCounts[1] != 1 {
		t.Fatalf("expected one variant with 0 Old stages and one with 1, got distribution %v", oldCounts)
	}
}

func TestDeltaVariantsNoRelationalAtomGetsOneUnrestrictedVariant(t *testing.T) {
	// A rule whose only premise atom is SortOf has nothing to pin.
	program := &ir.Program{
		SortNames: []string{"E"},
		Relations: []ir.Relation{{Name: "P", Sorts: []ir.Sort{0}, HasFD: false}},
		Rules: []ir.Rule{{
			Name:     "total",
			NumVars:  1,
			VarSorts: []ir.Sort{0},
			Premise:  []ir.QueryAtom{{Kind: ir.SortOfAtom, Sort: 0, Var: 0}},
			Conclusion: []ir.ActionAtom{
				{Kind: ir.AssertAction, Relation: 0, Vars: []ir.Var{0}},
			},
		}},
	}
	//
	compiled := Compile(program)
	rule := compiled.Rules[0]
	//
	if len(rule.Variants) != 1 {
		t.Fatalf("expected exactly 1 unrestricted variant, got %d", len(rule.Variants))
	}
	//
	for _, s := range rule.Variants[0].Stages {
		if s.Partition != All {
			t.Fatalf("expected every stage All-partitioned, got %+v", rule.Variants[0].Stages)
		}
	}
}

func TestCompileSelectsIndexCoveringBothQueries(t *testing.T) {
	compiled := Compile(transitivityProgram())
	//
	indices := compiled.Indices[0] // Le
	if len(indices) == 0 {
		t.Fatal("expected at least one index for Le")
	}
	//
	// Le(x,y) probes with no bound columns; Le(y,z) probes with column 0
	// bound. An index built for the more restrictive query (bound=[0]) can
	// also serve the unrestricted one, so querySpecChains should collapse
	// the two all-rows queries onto a single chain (a second, separate
	// chain covers the dirty-only variants deltaVariants also registers).
	var allRows *IndexSpec
	//
	for i := range indices {
		if !indices[i].OnlyDirty {
			allRows = &indices[i]
		}
	}
	//
	if allRows == nil {
		t.Fatalf("expected an all-rows index among %+v", indices)
	}
	//
	if !allRows.CanServe(QuerySpec{Relation: 0, Bound: nil}) {
		t.Fatalf("expected the chosen index to also serve an unbound scan, got %+v", allRows)
	}
	//
	if !allRows.CanServe(QuerySpec{Relation: 0, Bound: []int{0}}) {
		t.Fatalf("expected the chosen index to serve a bound-column-0 scan, got %+v", allRows)
	}
}

func TestLeRestrictiveRequiresSameRelationAndDirtiness(t *testing.T) {
	a := QuerySpec{Relation: 0, Bound: []int{0}}
	b := QuerySpec{Relation: 1, Bound: []int{0}}
	//
	if leRestrictive(a, b) {
		t.Fatal("expected specs over different relations to never compare as restrictive")
	}
	//
	c := QuerySpec{Relation: 0, Bound: []int{0}, OnlyDirty: true}
	if leRestrictive(a, c) || leRestrictive(c, a) {
		t.Fatal("expected dirty-only and all-rows specs to never compare as restrictive")
	}
}

func TestIndexSpecCanServeRequiresBoundSubsetOfPrefix(t *testing.T) {
	idx := IndexSpec{Relation: 0, Order: []int{1, 0, 2}}
	//
	if !idx.CanServe(QuerySpec{Relation: 0, Bound: []int{1}}) {
		t.Fatal("expected the index to serve a query bound on its leading column")
	}
	//
	if idx.CanServe(QuerySpec{Relation: 0, Bound: []int{0}}) {
		t.Fatal("expected the index to reject a query bound on a column outside its prefix")
	}
	//
	if idx.CanServe(QuerySpec{Relation: 0, Bound: []int{0, 1, 2, 3}}) {
		t.Fatal("expected the index to reject a query with more bound columns than it has")
	}
}
