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
	"fmt"

	"github.com/eqlog-lang/eqlog-go/pkg/ast"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// varKey identifies a variable occurrence for sort-tracking and flattening
// purposes. Ordinary variables are keyed by name (every occurrence of "x"
// within one axiom is the same variable); the wildcard "_" is keyed by its
// AST node's identity, since each occurrence is a distinct fresh variable.
func varKey(v *ast.VarTerm) any {
	if v.IsWildcard() {
		return v
	}
	//
	return v.Name
}

// elaborateAxiom compiles one axiom declaration into one or more Rules
// (symmetric reductions produce two).
func (e *elaborator) elaborateAxiom(axiom *ast.AxiomDecl) []ir.Rule {
	switch axiom.Kind {
	case ast.Implication:
		return e.elaborateOne(axiom.Name, axiom.Premise, axiom.Conclusion, true)
	case ast.Reduction:
		premise, conclusion := e.desugarReduction(axiom.Premise, axiom.From, axiom.To)
		return e.elaborateOne(axiom.Name, premise, conclusion, false)
	case ast.SymmetricReduction:
		fwdPremise, fwdConclusion := e.desugarReduction(axiom.Premise, axiom.From, axiom.To)
		bwdPremise, bwdConclusion := e.desugarReduction(axiom.Premise, axiom.To, axiom.From)
		rules := e.elaborateOne(axiom.Name+"$fwd", fwdPremise, fwdConclusion, false)
		rules = append(rules, e.elaborateOne(axiom.Name+"$bwd", bwdPremise, bwdConclusion, false)...)
		return rules
	}
	//
	return nil
}

// desugarReduction implements spec.md §4.B: "from ~> to" becomes
// "a1! & ... & an! & to! => from = to" when from = F(a1,...,an); it is
// generalised here to tolerate a bare-variable left-hand side (which simply
// contributes no extra definedness premises, since a bound variable is
// always defined), which is what lets a symmetric reduction's reverse
// direction desugar through the same code path.
func (e *elaborator) desugarReduction(userPremise []ast.Atom, from, to ast.Term) ([]ast.Atom, []ast.Atom) {
	premise := append([]ast.Atom{}, userPremise...)
	//
	if app, ok := from.(*ast.AppTerm); ok {
		for _, arg := range app.Args {
			premise = append(premise, &ast.DefinedAtom{Term: arg, Loc: arg.Span()})
		}
	}
	//
	premise = append(premise, &ast.DefinedAtom{Term: to, Loc: to.Span()})
	conclusion := []ast.Atom{&ast.EqAtom{Lhs: from, Rhs: to, Loc: from.Span()}}
	//
	return premise, conclusion
}

// elaborateOne sort-checks, (optionally) surjectivity-checks, and flattens a
// single premise/conclusion pair into one Rule IR. checkSurjective is false
// for compiler-generated reduction rules, which are correct by construction
// (see DESIGN.md).
func (e *elaborator) elaborateOne(name string, premise, conclusion []ast.Atom, checkSurjective bool) []ir.Rule {
	sc := &sortCtx{e: e, sort: make(map[any]ir.Sort)}
	sc.run(premise, conclusion)
	//
	if len(sc.errs) > 0 {
		e.errs = append(e.errs, sc.errs...)
		return nil
	}
	//
	bound := collectPremiseVars(premise)
	//
	if err := checkUnboundVariables(e.srcfile, premise, conclusion, bound); err != nil {
		e.errs = append(e.errs, err...)
		return nil
	}
	//
	if checkSurjective {
		if errs := checkSurjectivity(e.srcfile, premise, conclusion); len(errs) > 0 {
			e.errs = append(e.errs, errs...)
			return nil
		}
	}
	//
	fl := newFlattener(e, sc.sort)
	//
	for _, a := range premise {
		fl.flattenPremiseAtom(a)
	}
	//
	premiseVars := fl.numVars
	//
	for _, a := range conclusion {
		fl.flattenConclusionAtom(a)
	}
	//
	if len(fl.errs) > 0 {
		e.errs = append(e.errs, fl.errs...)
		return nil
	}
	//
	return []ir.Rule{{
		Name:       name,
		NumVars:    fl.numVars,
		VarSorts:   fl.varSorts,
		Premise:    synthesizeSortOf(fl.premise, fl.varSorts, premiseVars),
		Conclusion: fl.conclusion,
	}}
}

// synthesizeSortOf appends a SortOf query atom for every premise-introduced
// variable (index < premiseVars; a conclusion-only variable, such as a New
// action's result, is never a candidate) that no Rel/Defined atom ever
// binds and no Eq atom can copy-propagate into -- the case of a variable
// bound only by an ascription such as "x : E" (spec.md §9 open question,
// resolved in SPEC_FULL.md: ascription alone never iterates an empty sort,
// only an already-populated one).
func synthesizeSortOf(premise []ir.QueryAtom, varSorts []ir.Sort, premiseVars int) []ir.QueryAtom {
	bound := make([]bool, len(varSorts))
	//
	for _, a := range premise {
		switch a.Kind {
		case ir.RelAtom, ir.DefinedAtom:
			for _, v := range a.Vars {
				bound[v] = true
			}
		}
	}
	//
	// An Eq atom with one side already bound copy-propagates into the
	// other; iterate to a fixpoint since a chain of Eq atoms can propagate
	// transitively.
	for changed := true; changed; {
		changed = false
		//
		for _, a := range premise {
			if a.Kind != ir.EqAtom {
				continue
			}
			//
			if bound[a.Lhs] && !bound[a.Rhs] {
				bound[a.Rhs] = true
				changed = true
			}
			//
			if bound[a.Rhs] && !bound[a.Lhs] {
				bound[a.Lhs] = true
				changed = true
			}
		}
	}
	//
	out := append([]ir.QueryAtom{}, premise...)
	//
	for v := 0; v < premiseVars; v++ {
		if !bound[v] {
			out = append(out, ir.QueryAtom{Kind: ir.SortOfAtom, Sort: varSorts[v], Var: ir.Var(v)})
		}
	}
	//
	return out
}

// collectPremiseVars returns the set of variable names (wildcards excluded,
// since a wildcard can never satisfy "appears in the premise" for a later
// occurrence; each wildcard is its own variable) that occur anywhere in the
// premise.
func collectPremiseVars(premise []ast.Atom) map[string]bool {
	bound := make(map[string]bool)
	//
	var walkTerm func(t ast.Term)
	walkTerm = func(t ast.Term) {
		switch t := t.(type) {
		case *ast.VarTerm:
			if !t.IsWildcard() {
				bound[t.Name] = true
			}
		case *ast.AppTerm:
			for _, a := range t.Args {
				walkTerm(a)
			}
		}
	}
	//
	for _, a := range premise {
		switch a := a.(type) {
		case *ast.PredAtom:
			for _, t := range a.Args {
				walkTerm(t)
			}
		case *ast.DefinedAtom:
			walkTerm(a.Term)
		case *ast.EqAtom:
			walkTerm(a.Lhs)
			walkTerm(a.Rhs)
		case *ast.AscribeAtom:
			bound[a.Var] = true
		}
	}
	//
	return bound
}

// checkUnboundVariables enforces spec.md §4.B: every variable appearing
// anywhere in the axiom must appear in the premise, and a wildcard may never
// appear in the conclusion (spec.md §9 Open Question, resolved in
// SPEC_FULL.md).
func checkUnboundVariables(srcfile *source.File, premise, conclusion []ast.Atom, bound map[string]bool) []error {
	var errs []error
	//
	var walkTerm func(t ast.Term, inConclusion bool)
	walkTerm = func(t ast.Term, inConclusion bool) {
		switch t := t.(type) {
		case *ast.VarTerm:
			if t.IsWildcard() {
				if inConclusion {
					errs = append(errs, srcfile.SyntaxError("UnboundVariable", t.Loc,
						"wildcard \"_\" may not appear in a conclusion"))
				}
				return
			}
			//
			if !bound[t.Name] {
				errs = append(errs, srcfile.SyntaxError("UnboundVariable", t.Loc,
					fmt.Sprintf("variable %q does not appear in the premise", t.Name)))
			}
		case *ast.AppTerm:
			for _, a := range t.Args {
				walkTerm(a, inConclusion)
			}
		}
	}
	//
	walkAtoms := func(atoms []ast.Atom, inConclusion bool) {
		for _, a := range atoms {
			switch a := a.(type) {
			case *ast.PredAtom:
				for _, t := range a.Args {
					walkTerm(t, inConclusion)
				}
			case *ast.DefinedAtom:
				walkTerm(a.Term, inConclusion)
			case *ast.EqAtom:
				walkTerm(a.Lhs, inConclusion)
				walkTerm(a.Rhs, inConclusion)
			case *ast.AscribeAtom:
				if !bound[a.Var] && !inConclusion {
					// An ascription is itself a binding occurrence in the
					// premise; nothing to check here. In a conclusion it
					// must refer to an already-bound variable.
				} else if inConclusion && !bound[a.Var] {
					errs = append(errs, srcfile.SyntaxError("UnboundVariable", a.Loc,
						fmt.Sprintf("variable %q does not appear in the premise", a.Var)))
				}
			}
		}
	}
	//
	walkAtoms(premise, false)
	walkAtoms(conclusion, true)
	//
	return errs
}
