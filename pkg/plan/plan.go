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

// Package plan turns a compiled ir.Program into execution plans: a variable
// ordering and chosen index per premise atom, and the set of semi-naive delta
// variants each rule must be evaluated under (spec.md §4.D). Index selection
// follows original_source/eqlog/src/index_selection.rs: every rule's
// bound-column requirement on a relation becomes a QuerySpec, and QuerySpecs
// are grouped into chains sharing one physical IndexSpec, so a relation ends
// up with a handful of indices rather than one per rule.
package plan

import (
	"sort"

	"github.com/eqlog-lang/eqlog-go/pkg/ir"
)

// QuerySpec is one relation access demanded by a rule: a set of column
// positions that are already bound when the atom is reached, the pairs of
// positions constrained to be equal (a "diagonal", e.g. Rel(x, x)), and
// whether the atom is restricted to the new (dirty) partition.
type QuerySpec struct {
	Relation  ir.Symbol
	Bound     []int
	Diagonals [][2]int
	OnlyDirty bool
}

func (q QuerySpec) boundSet() map[int]bool {
	s := make(map[int]bool, len(q.Bound))
	for _, c := range q.Bound {
		s[c] = true
	}
	//
	return s
}

// leRestrictive reports whether a's requirements are a subset of b's (same
// relation, same dirty-ness, and a's bound columns all present in b's). An
// index built for b serves a through CanServe only when a's bound columns
// also come first in that index's order.
func leRestrictive(a, b QuerySpec) bool {
	if a.Relation != b.Relation || a.OnlyDirty != b.OnlyDirty {
		return false
	}
	//
	if len(a.Bound) > len(b.Bound) {
		return false
	}
	//
	bs := b.boundSet()
	//
	for _, c := range a.Bound {
		if !bs[c] {
			return false
		}
	}
	//
	return true
}

// IndexSpec is one physical index: a full column order, the diagonal
// constraints it was built to satisfy, and whether it only ever needs to
// serve dirty-partition scans.
type IndexSpec struct {
	Relation  ir.Symbol
	Order     []int
	Diagonals [][2]int
	OnlyDirty bool
}

// CanServe reports whether this physical index can answer q: q's bound
// columns must be a subset of the columns this index places first.
func (idx IndexSpec) CanServe(q QuerySpec) bool {
	if idx.Relation != q.Relation || idx.OnlyDirty != q.OnlyDirty {
		return false
	}
	//
	if len(q.Bound) > len(idx.Order) {
		return false
	}
	//
	prefix := make(map[int]bool, len(q.Bound))
	for _, c := range idx.Order[:len(q.Bound)] {
		prefix[c] = true
	}
	//
	for _, c := range q.Bound {
		if !prefix[c] {
			return false
		}
	}
	//
	return true
}

// querySpecChains groups specs for one relation into chains ordered from
// most to least restrictive, and derives one IndexSpec per chain: the
// chain's order is the most restrictive spec's bound columns (in the order
// first demanded), followed by the relation's remaining columns ascending.
func querySpecChains(relation ir.Symbol, arity int, specs []QuerySpec) []IndexSpec {
	// Dedup.
	seen := make(map[string]QuerySpec)
	//
	for _, s := range specs {
		seen[specKey(s)] = s
	}
	//
	unique := make([]QuerySpec, 0, len(seen))
	for _, s := range seen {
		unique = append(unique, s)
	}
	//
	sort.Slice(unique, func(i, j int) bool {
		return len(unique[i].Bound) > len(unique[j].Bound)
	})
	//
	var chainHeads []QuerySpec
	placed := make([]bool, len(unique))
	//
	for i, s := range unique {
		for _, h := range chainHeads {
			if leRestrictive(s, h) {
				placed[i] = true
				break
			}
		}
		//
		if !placed[i] {
			chainHeads = append(chainHeads, s)
		}
	}
	//
	indices := make([]IndexSpec, 0, len(chainHeads))
	//
	for _, h := range chainHeads {
		order := append([]int{}, h.Bound...)
		have := h.boundSet()
		//
		for c := 0; c < arity; c++ {
			if !have[c] {
				order = append(order, c)
			}
		}
		//
		indices = append(indices, IndexSpec{Relation: relation, Order: order, Diagonals: h.Diagonals, OnlyDirty: h.OnlyDirty})
	}
	//
	return indices
}

func specKey(q QuerySpec) string {
	k := ""
	//
	for _, c := range q.Bound {
		k += string(rune('a' + c))
	}
	//
	if q.OnlyDirty {
		k += "!"
	}
	//
	return k
}

// Partition selects which subset of a relation's rows a stage scans.
type Partition int

const (
	// All scans every row.
	All Partition = iota
	// Old scans only rows present before the current round.
	Old
	// New scans only rows added during the current round.
	New
)

// Stage is one loop nest level of a compiled plan: evaluate premise atom
// AtomIndex, under Partition, using the columns already bound by earlier
// stages as the probe prefix.
type Stage struct {
	AtomIndex int
	Partition Partition
	Bound     []int // argument positions of this atom already bound
}

// Plan is one semi-naive delta variant of a rule: an ordered sequence of
// stages covering every premise atom exactly once.
type Plan struct {
	RuleName string
	Stages   []Stage
}

// atomVars returns the variables an atom reads, for computing how many of
// them are still free when choosing the next atom to schedule.
func atomVars(a ir.QueryAtom) []ir.Var {
	switch a.Kind {
	case ir.RelAtom, ir.DefinedAtom:
		return a.Vars
	case ir.SortOfAtom:
		return []ir.Var{a.Var}
	case ir.EqAtom:
		return []ir.Var{a.Lhs, a.Rhs}
	}
	//
	return nil
}

// eqReady reports whether an Eq atom can be scheduled: at least one operand
// must already be bound, since Eq never enumerates, only checks or
// copy-propagates.
func eqReady(a ir.QueryAtom, bound []bool) bool {
	return bound[a.Lhs] || bound[a.Rhs]
}

// orderAtoms implements spec.md §4.D.1: greedily extend a prefix of bound
// variables, at each step choosing the atom with fewest remaining free
// variables, ties broken by original atom order.
func orderAtoms(premise []ir.QueryAtom, numVars int) []int {
	n := len(premise)
	scheduled := make([]bool, n)
	bound := make([]bool, numVars)
	order := make([]int, 0, n)
	//
	freeVars := func(a ir.QueryAtom) int {
		count := 0
		//
		for _, v := range atomVars(a) {
			if !bound[v] {
				count++
			}
		}
		//
		return count
	}
	//
	for len(order) < n {
		best, bestFree := -1, -1
		//
		for i, a := range premise {
			if scheduled[i] {
				continue
			}
			//
			f := freeVars(a)
			//
			// Eq can resolve as soon as one side is bound (it then either
			// checks or copy-propagates), so it is never stuck waiting for
			// both; but it must not be picked while both sides are still
			// free, since it has nothing to enumerate against.
			if a.Kind == ir.EqAtom {
				if !eqReady(a, bound) {
					continue
				}
				//
				f = 0
			}
			//
			if best == -1 || f < bestFree {
				best, bestFree = i, f
			}
		}
		//
		if best == -1 {
			// Every remaining atom is an Eq whose operands never get bound
			// by anything else; schedule the first one anyway so planning
			// terminates. It will simply never match at runtime.
			for i := range premise {
				if !scheduled[i] {
					best = i
					break
				}
			}
		}
		//
		order = append(order, best)
		scheduled[best] = true
		//
		for _, v := range atomVars(premise[best]) {
			bound[v] = true
		}
	}
	//
	return order
}

// boundPositions returns the argument positions of a Rel/Defined atom that
// are already bound given the set of variables bound by earlier stages, and
// the diagonal pairs among the atom's own columns.
func boundPositions(a ir.QueryAtom, boundVars []bool) (bound []int, diagonals [][2]int) {
	seenAt := make(map[ir.Var]int)
	//
	for i, v := range a.Vars {
		if boundVars[v] {
			bound = append(bound, i)
		}
		//
		if j, ok := seenAt[v]; ok {
			diagonals = append(diagonals, [2]int{j, i})
		} else {
			seenAt[v] = i
		}
	}
	//
	return bound, diagonals
}

// CompiledRule is one rule's execution order plus its semi-naive delta
// variants.
type CompiledRule struct {
	Rule     ir.Rule
	Order    []int
	Variants []Plan
}

// CompiledProgram is the output of Compile: per-relation physical indices and
// per-rule compiled plans.
type CompiledProgram struct {
	Indices map[ir.Symbol][]IndexSpec
	Rules   []CompiledRule
}

// Compile plans every rule of a program and selects the physical indices
// every relation needs to serve the resulting queries.
func Compile(program *ir.Program) *CompiledProgram {
	specsByRelation := make(map[ir.Symbol][]QuerySpec)
	var rules []CompiledRule
	//
	for _, rule := range program.Rules {
		order := orderAtoms(rule.Premise, rule.NumVars)
		boundVars := make([]bool, rule.NumVars)
		stages := make([]Stage, 0, len(order))
		//
		for _, atomIdx := range order {
			a := rule.Premise[atomIdx]
			//
			if a.Kind == ir.RelAtom || a.Kind == ir.DefinedAtom {
				bound, diagonals := boundPositions(a, boundVars)
				specsByRelation[a.Relation] = append(specsByRelation[a.Relation], QuerySpec{
					Relation: a.Relation, Bound: bound, Diagonals: diagonals, OnlyDirty: false,
				})
				stages = append(stages, Stage{AtomIndex: atomIdx, Partition: All, Bound: bound})
			} else {
				stages = append(stages, Stage{AtomIndex: atomIdx, Partition: All})
			}
			//
			for _, v := range atomVars(a) {
				boundVars[v] = true
			}
		}
		//
		variants := deltaVariants(rule.Name, rule.Premise, order, stages, specsByRelation)
		rules = append(rules, CompiledRule{Rule: rule, Order: order, Variants: variants})
	}
	//
	indices := make(map[ir.Symbol][]IndexSpec)
	//
	for _, rel := range relationsOf(program) {
		indices[rel.sym] = querySpecChains(rel.sym, rel.arity, specsByRelation[rel.sym])
	}
	//
	return &CompiledProgram{Indices: indices, Rules: rules}
}

type relRef struct {
	sym   ir.Symbol
	arity int
}

func relationsOf(program *ir.Program) []relRef {
	out := make([]relRef, len(program.Relations))
	//
	for i, r := range program.Relations {
		out[i] = relRef{sym: ir.Symbol(i), arity: len(r.Sorts)}
	}
	//
	return out
}

// deltaVariants implements spec.md §4.D.3: one variant per relational
// premise atom, pinning that atom to the new partition, every atom earlier
// in execution order to old, and every atom later to all (old ∪ new). A rule
// with no relational premise atom (e.g. a bare SortOf) gets a single
// unrestricted variant, since there is no delta to specialize on.
func deltaVariants(name string, premise []ir.QueryAtom, order []int, baseStages []Stage, specsByRelation map[ir.Symbol][]QuerySpec) []Plan {
	var pinnable []int
	//
	for pos, atomIdx := range order {
		if premise[atomIdx].Kind == ir.RelAtom || premise[atomIdx].Kind == ir.DefinedAtom {
			pinnable = append(pinnable, pos)
		}
	}
	//
	if len(pinnable) == 0 {
		return []Plan{{RuleName: name, Stages: append([]Stage{}, baseStages...)}}
	}
	//
	plans := make([]Plan, 0, len(pinnable))
	//
	for _, pinnedPos := range pinnable {
		stages := make([]Stage, len(baseStages))
		copy(stages, baseStages)
		//
		for pos := range stages {
			switch {
			case pos == pinnedPos:
				stages[pos].Partition = New
			case pos < pinnedPos:
				stages[pos].Partition = Old
			default:
				stages[pos].Partition = All
			}
		}
		//
		a := premise[order[pinnedPos]]
		specsByRelation[a.Relation] = append(specsByRelation[a.Relation], QuerySpec{
			Relation: a.Relation, Bound: stages[pinnedPos].Bound, OnlyDirty: true,
		})
		//
		plans = append(plans, Plan{RuleName: name, Stages: stages})
	}
	//
	return plans
}
