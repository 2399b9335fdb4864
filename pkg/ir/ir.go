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

// Package ir defines the Rule IR: the flat, variable-indexed representation
// of an axiom that the planner (pkg/plan) and driver (pkg/engine) consume.
// A Rule no longer has any notion of surface syntax; variables are dense
// integer slots local to the rule.
package ir

// Var is a rule-local variable slot, a dense index into the rule's variable
// array.
type Var uint32

// Sort identifies a carrier set by its declaration order.
type Sort uint32

// Symbol identifies a predicate or function by its declaration order,
// shared across both kinds since the store treats them uniformly (see
// pkg/store); Relation.HasFD distinguishes a function from a predicate.
type Symbol uint32

// QueryAtomKind enumerates the four kinds of premise atom from spec.md §4.C.
type QueryAtomKind int

const (
	// RelAtom matches a row of a predicate or function relation.
	RelAtom QueryAtomKind = iota
	// DefinedAtom matches a function row, capturing its result column.
	DefinedAtom
	// SortOfAtom iterates every element of a sort; used only to bind a
	// variable that no other premise atom binds.
	SortOfAtom
	// EqAtom relates two variables at match time: a check when both are
	// bound, a copy from the bound side when only one is.
	EqAtom
)

// QueryAtom is one premise atom of a rule.
type QueryAtom struct {
	Kind QueryAtomKind
	// Rel/Defined: the relation and its column variables (for Defined, the
	// final entry is the captured result variable).
	Relation Symbol
	Vars     []Var
	// SortOf: the sort being iterated and the variable it binds.
	Sort Sort
	Var  Var
	// Eq: the two variables being unified.
	Lhs, Rhs Var
}

// ActionAtomKind enumerates the three kinds of conclusion atom from
// spec.md §4.C.
type ActionAtomKind int

const (
	// AssertAction inserts a row, unioning an existing function result if
	// the domain columns already have a differing one.
	AssertAction ActionAtomKind = iota
	// NewAction mints a fresh element of a sort.
	NewAction
	// UnionAction equates two elements.
	UnionAction
)

// ActionAtom is one conclusion atom of a rule.
type ActionAtom struct {
	Kind ActionAtomKind
	// Assert: relation and its column variables.
	Relation Symbol
	Vars     []Var
	// New: the sort to allocate from and the variable it binds.
	Sort Sort
	Var  Var
	// Union: the two variables being equated.
	Lhs, Rhs Var
	// MemoKey is a stable index the elaborator assigns to every NewAction,
	// counting up across all rules of a program in left-to-right order. The
	// driver does not read it: a NewAction reuses an existing element by
	// looking up the function's own table.
	MemoKey int
}

// Rule is the flat, compiled form of one axiom: an ordered premise followed
// by an ordered set of actions. Actions execute left to right; a variable
// bound by an earlier action (e.g. New) is visible to later actions in the
// same rule.
type Rule struct {
	Name    string
	NumVars int
	// VarSorts gives the sort of every variable slot, indexed by Var.
	// Elaboration uses this to synthesize a SortOf premise atom for any
	// variable that would otherwise end up unbound by the rule's own
	// Rel/Defined/Eq atoms, so every Premise entry the planner sees is
	// already one the rule can actually bind at match time.
	VarSorts   []Sort
	Premise    []QueryAtom
	Conclusion []ActionAtom
}

// Relation describes one predicate or function symbol: its arity (including,
// for a function, the trailing result column) and whether it carries a
// functional dependency on all but the last column.
type Relation struct {
	Name  string
	Sorts []Sort // length == arity; last entry is the codomain for a function
	HasFD bool
}

// Program is the fully compiled theory: its sort count, its relation table
// and the rules to saturate with.
type Program struct {
	SortNames []string
	Relations []Relation
	Rules     []Rule
}

// SortByName returns the index of a sort by name, or false if undeclared.
func (p *Program) SortByName(name string) (Sort, bool) {
	for i, n := range p.SortNames {
		if n == name {
			return Sort(i), true
		}
	}
	//
	return 0, false
}

// RelationByName returns the index of a relation (predicate or function) by
// name, or false if undeclared.
func (p *Program) RelationByName(name string) (Symbol, bool) {
	for i, r := range p.Relations {
		if r.Name == name {
			return Symbol(i), true
		}
	}
	//
	return 0, false
}
