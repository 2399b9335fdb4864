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
package elab

import (
	"github.com/eqlog-lang/eqlog-go/pkg/ast"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
)

// flattener lowers one axiom's premise/conclusion atoms (already sort-checked)
// into the flat, variable-indexed Rule IR, following the term-flattening
// discipline of original_source/eqlog/src/flat_ast.rs: every compound
// subterm is assigned its own variable slot the first time it is seen, and
// later occurrences of the structurally identical subterm reuse that slot
// instead of re-deriving it.
type flattener struct {
	e        *elaborator
	sort     map[any]ir.Sort
	varSlot  map[any]ir.Var
	termVar  map[string]ir.Var
	numVars  int
	varSorts []ir.Sort

	premise    []ir.QueryAtom
	conclusion []ir.ActionAtom
	errs       []error
}

func newFlattener(e *elaborator, sort map[any]ir.Sort) *flattener {
	return &flattener{
		e:       e,
		sort:    sort,
		varSlot: make(map[any]ir.Var),
		termVar: make(map[string]ir.Var),
	}
}

func (fl *flattener) newVarWithSort(s ir.Sort) ir.Var {
	v := ir.Var(fl.numVars)
	fl.numVars++
	fl.varSorts = append(fl.varSorts, s)
	//
	return v
}

// varSlotFor returns the variable slot for a VarTerm, allocating one (with
// its sort-checked sort) the first time it is seen.
func (fl *flattener) varSlotFor(t *ast.VarTerm) ir.Var {
	key := varKey(t)
	//
	if v, ok := fl.varSlot[key]; ok {
		return v
	}
	//
	s := fl.sort[key]
	v := fl.newVarWithSort(s)
	fl.varSlot[key] = v
	//
	return v
}

// flattenPremiseTerm returns the variable slot denoting t, emitting a
// Defined query atom the first time a compound subterm is encountered.
func (fl *flattener) flattenPremiseTerm(t ast.Term) ir.Var {
	switch t := t.(type) {
	case *ast.VarTerm:
		return fl.varSlotFor(t)
	case *ast.AppTerm:
		key := termKey(t)
		//
		if v, ok := fl.termVar[key]; ok {
			return v
		}
		//
		info, ok := fl.e.rels[t.Func]
		if !ok || !info.isFunc {
			fl.errs = append(fl.errs, fl.e.srcfile.SyntaxError("UndeclaredSymbol", t.Loc, "undeclared function %q", t.Func))
			return fl.newVarWithSort(0)
		}
		//
		args := make([]ir.Var, len(t.Args))
		for i, a := range t.Args {
			args[i] = fl.flattenPremiseTerm(a)
		}
		//
		result := fl.newVarWithSort(info.codomain)
		fl.premise = append(fl.premise, ir.QueryAtom{
			Kind:     ir.DefinedAtom,
			Relation: info.symbol,
			Vars:     append(args, result),
		})
		fl.termVar[key] = result
		//
		return result
	}
	//
	return fl.newVarWithSort(0)
}

// flattenPremiseAtom compiles one premise atom into zero or more query
// atoms. Ascriptions and bare-variable definedness atoms contribute nothing
// directly: they only affect sort-checking (already done) and the set of
// variables the planner must ensure get bound.
func (fl *flattener) flattenPremiseAtom(a ast.Atom) {
	switch a := a.(type) {
	case *ast.PredAtom:
		info, ok := fl.e.rels[a.Pred]
		if !ok {
			fl.errs = append(fl.errs, fl.e.srcfile.SyntaxError("UndeclaredSymbol", a.Loc, "undeclared symbol %q", a.Pred))
			return
		}
		//
		vars := make([]ir.Var, len(a.Args))
		for i, t := range a.Args {
			vars[i] = fl.flattenPremiseTerm(t)
		}
		//
		fl.premise = append(fl.premise, ir.QueryAtom{Kind: ir.RelAtom, Relation: info.symbol, Vars: vars})
	case *ast.DefinedAtom:
		if _, isApp := a.Term.(*ast.AppTerm); isApp {
			fl.flattenPremiseTerm(a.Term)
		}
		// A bare variable's definedness is vacuous: a bound variable
		// always denotes an existing element.
	case *ast.EqAtom:
		lv, lok := a.Lhs.(*ast.VarTerm)
		rv, rok := a.Rhs.(*ast.VarTerm)
		//
		if lok && rok {
			fl.premise = append(fl.premise, ir.QueryAtom{Kind: ir.EqAtom, Lhs: fl.varSlotFor(lv), Rhs: fl.varSlotFor(rv)})
			return
		}
		// At least one side is compound: flattening it emits the Defined
		// atom that witnesses it, and its result variable is then unified
		// with the other side.
		lhsVar := fl.flattenPremiseTerm(a.Lhs)
		rhsVar := fl.flattenPremiseTerm(a.Rhs)
		//
		if lhsVar != rhsVar {
			fl.premise = append(fl.premise, ir.QueryAtom{Kind: ir.EqAtom, Lhs: lhsVar, Rhs: rhsVar})
		}
	case *ast.AscribeAtom:
		// Contributes no query atom of its own, but its variable must get
		// its slot allocated here rather than lazily at first conclusion
		// use, so that a later pass can tell a premise-bound variable
		// apart from one a conclusion term introduces fresh (e.g. a New
		// action's result) and knows which ones to synthesize a SortOf
		// atom for.
		fl.varSlotFor(&ast.VarTerm{Name: a.Var, Loc: a.Loc})
	}
}

// flattenConclusionTerm returns the variable slot denoting t in a conclusion
// position, emitting a New+Assert action pair ("look before leap") the
// first time a compound subterm is introduced.
func (fl *flattener) flattenConclusionTerm(t ast.Term) ir.Var {
	switch t := t.(type) {
	case *ast.VarTerm:
		return fl.varSlotFor(t)
	case *ast.AppTerm:
		key := termKey(t)
		//
		if v, ok := fl.termVar[key]; ok {
			return v
		}
		//
		info, ok := fl.e.rels[t.Func]
		if !ok || !info.isFunc {
			fl.errs = append(fl.errs, fl.e.srcfile.SyntaxError("UndeclaredSymbol", t.Loc, "undeclared function %q", t.Func))
			return fl.newVarWithSort(0)
		}
		//
		args := make([]ir.Var, len(t.Args))
		for i, a := range t.Args {
			args[i] = fl.flattenConclusionTerm(a)
		}
		//
		result := fl.newVarWithSort(info.codomain)
		fl.e.memoSeq++
		//
		fl.conclusion = append(fl.conclusion, ir.ActionAtom{
			Kind:     ir.NewAction,
			Relation: info.symbol, // probed first: reuse the row's result if one exists for these args
			Vars:     args,
			Sort:     info.codomain,
			Var:      result,
			MemoKey:  fl.e.memoSeq,
		})
		fl.conclusion = append(fl.conclusion, ir.ActionAtom{
			Kind:     ir.AssertAction,
			Relation: info.symbol,
			Vars:     append(append([]ir.Var{}, args...), result),
		})
		fl.termVar[key] = result
		//
		return result
	}
	//
	return fl.newVarWithSort(0)
}

func (fl *flattener) flattenConclusionAtom(a ast.Atom) {
	switch a := a.(type) {
	case *ast.PredAtom:
		info, ok := fl.e.rels[a.Pred]
		if !ok {
			fl.errs = append(fl.errs, fl.e.srcfile.SyntaxError("UndeclaredSymbol", a.Loc, "undeclared symbol %q", a.Pred))
			return
		}
		//
		vars := make([]ir.Var, len(a.Args))
		for i, t := range a.Args {
			vars[i] = fl.flattenConclusionTerm(t)
		}
		//
		fl.conclusion = append(fl.conclusion, ir.ActionAtom{Kind: ir.AssertAction, Relation: info.symbol, Vars: vars})
	case *ast.DefinedAtom:
		fl.flattenConclusionTerm(a.Term)
	case *ast.EqAtom:
		lv := fl.flattenConclusionTerm(a.Lhs)
		rv := fl.flattenConclusionTerm(a.Rhs)
		//
		if lv != rv {
			fl.conclusion = append(fl.conclusion, ir.ActionAtom{Kind: ir.UnionAction, Lhs: lv, Rhs: rv})
		}
	case *ast.AscribeAtom:
		// No runtime effect; sort-checking already validated it.
	}
}
