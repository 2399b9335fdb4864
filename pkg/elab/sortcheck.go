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

// sortCtx assigns a concrete sort to every variable occurrence in one axiom
// by propagating the sorts fixed by predicate/function declarations and
// ascriptions across plain variable-to-variable equalities, to a fixed
// point. Real axioms have only a handful of atoms, so a bounded number of
// passes over the atom list always converges.
type sortCtx struct {
	e    *elaborator
	sort map[any]ir.Sort
	errs []error
}

// staticSort returns the sort a term has independent of the variable
// environment (an application's codomain), or false for a variable.
func (e *elaborator) staticSort(t ast.Term) (ir.Sort, bool) {
	app, ok := t.(*ast.AppTerm)
	if !ok {
		return 0, false
	}
	//
	info, known := e.rels[app.Func]
	if !known || !info.isFunc {
		return 0, false
	}
	//
	return info.codomain, true
}

func (sc *sortCtx) setVar(v *ast.VarTerm, s ir.Sort) {
	key := varKey(v)
	//
	if existing, ok := sc.sort[key]; ok {
		if existing != s {
			name := v.Name
			if v.IsWildcard() {
				name = "_"
			}
			//
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("SortMismatch", v.Loc,
				"variable %q used at incompatible sorts %q and %q", name, sc.e.sortNames[existing], sc.e.sortNames[s]))
		}
		//
		return
	}
	//
	sc.sort[key] = s
}

// checkTerm validates t against an expected sort (if known; ok=false means
// "unconstrained") and propagates sort information into the variable
// environment for any variables it directly mentions.
func (sc *sortCtx) checkTerm(t ast.Term, expected ir.Sort, hasExpected bool) {
	switch t := t.(type) {
	case *ast.VarTerm:
		if hasExpected {
			sc.setVar(t, expected)
		}
	case *ast.AppTerm:
		info, known := sc.e.rels[t.Func]
		if !known {
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("UndeclaredSymbol", t.Loc, "undeclared symbol %q", t.Func))
			return
		}
		//
		if !info.isFunc {
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("SortMismatch", t.Loc,
				"%q is a predicate, not a function, and cannot be used as a term", t.Func))
			return
		}
		//
		if hasExpected && info.codomain != expected {
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("SortMismatch", t.Loc,
				"expected sort %q, found %q which has sort %q", sc.e.sortNames[expected], t.Func, sc.e.sortNames[info.codomain]))
		}
		//
		if len(t.Args) != len(info.domain) {
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("ArityMismatch", t.Loc,
				"%q expects %d argument(s), found %d", t.Func, len(info.domain), len(t.Args)))
			return
		}
		//
		for i, arg := range t.Args {
			sc.checkTerm(arg, info.domain[i], true)
		}
	}
}

func (sc *sortCtx) checkAtom(a ast.Atom, inPremise bool) {
	switch a := a.(type) {
	case *ast.PredAtom:
		info, known := sc.e.rels[a.Pred]
		if !known {
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("UndeclaredSymbol", a.Loc, "undeclared symbol %q", a.Pred))
			return
		}
		//
		arity := info.domain
		if info.isFunc {
			arity = append(append([]ir.Sort{}, info.domain...), info.codomain)
		}
		//
		if len(a.Args) != len(arity) {
			kind := "predicate"
			if info.isFunc {
				kind = "function relation (include the result column)"
			}
			//
			sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("ArityMismatch", a.Loc,
				"%s %q expects %d argument(s), found %d", kind, a.Pred, len(arity), len(a.Args)))
			return
		}
		//
		for i, t := range a.Args {
			sc.checkTerm(t, arity[i], true)
		}
	case *ast.DefinedAtom:
		sc.checkTerm(a.Term, 0, false)
	case *ast.EqAtom:
		lhsSort, lhsKnown := sc.e.staticSort(a.Lhs)
		rhsSort, rhsKnown := sc.e.staticSort(a.Rhs)
		//
		switch {
		case lhsKnown:
			sc.checkTerm(a.Lhs, lhsSort, true)
			sc.checkTerm(a.Rhs, lhsSort, true)
		case rhsKnown:
			sc.checkTerm(a.Rhs, rhsSort, true)
			sc.checkTerm(a.Lhs, rhsSort, true)
		default:
			// Both sides are bare variables: try to propagate from
			// whichever side is already resolved in this pass; if
			// neither is, a later pass (or the final unresolved check)
			// will catch it.
			sc.checkTerm(a.Lhs, 0, false)
			sc.checkTerm(a.Rhs, 0, false)
			//
			lv, lok := a.Lhs.(*ast.VarTerm)
			rv, rok := a.Rhs.(*ast.VarTerm)
			//
			if lok && rok {
				if s, ok := sc.sort[varKey(lv)]; ok {
					sc.setVar(rv, s)
				} else if s, ok := sc.sort[varKey(rv)]; ok {
					sc.setVar(lv, s)
				}
			}
		}
	case *ast.AscribeAtom:
		s, ok := sc.e.resolveSort(a.Sort, a.Loc)
		if ok {
			sc.setVar(&ast.VarTerm{Name: a.Var, Loc: a.Loc}, s)
		}
	}
}

// run performs repeated passes over premise then conclusion atoms until no
// new variable sort is learned.
func (sc *sortCtx) run(premise, conclusion []ast.Atom) {
	const maxPasses = 16
	//
	for pass := 0; pass < maxPasses; pass++ {
		before := len(sc.sort)
		sc.errs = nil
		//
		for _, a := range premise {
			sc.checkAtom(a, true)
		}
		//
		for _, a := range conclusion {
			sc.checkAtom(a, false)
		}
		//
		if len(sc.sort) == before {
			break
		}
	}
	//
	sc.reportUnresolved(premise)
	sc.reportUnresolved(conclusion)
}

func (sc *sortCtx) reportUnresolved(atoms []ast.Atom) {
	var walk func(t ast.Term)
	walk = func(t ast.Term) {
		switch t := t.(type) {
		case *ast.VarTerm:
			if t.IsWildcard() {
				return
			}
			//
			if _, ok := sc.sort[varKey(t)]; !ok {
				sc.errs = append(sc.errs, sc.e.srcfile.SyntaxError("UnsortedTerm", t.Loc,
					"cannot infer the sort of %q", t.Name))
				//
				sc.sort[varKey(t)] = ir.Sort(0) // avoid cascading reports
			}
		case *ast.AppTerm:
			for _, a := range t.Args {
				walk(a)
			}
		}
	}
	//
	for _, a := range atoms {
		switch a := a.(type) {
		case *ast.PredAtom:
			for _, t := range a.Args {
				walk(t)
			}
		case *ast.DefinedAtom:
			walk(a.Term)
		case *ast.EqAtom:
			walk(a.Lhs)
			walk(a.Rhs)
		}
	}
}
