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
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// termKey returns a canonical string identifying a term up to its literal
// structure: two terms have the same key iff they are the same variable, or
// applications of the same function to pairwise-equal argument terms. Every
// wildcard occurrence gets a key nothing else can ever match, since each is
// its own fresh variable.
func termKey(t ast.Term) string {
	switch t := t.(type) {
	case *ast.VarTerm:
		if t.IsWildcard() {
			return fmt.Sprintf("_#%p", t)
		}
		//
		return "$" + t.Name
	case *ast.AppTerm:
		key := t.Func + "("
		//
		for i, a := range t.Args {
			if i > 0 {
				key += ","
			}
			//
			key += termKey(a)
		}
		//
		return key + ")"
	}
	//
	return ""
}

// collectSubterms adds the key of every subterm (at every depth) reachable
// from atoms to seen.
func collectSubterms(atoms []ast.Atom, seen map[string]bool) {
	var walk func(t ast.Term)
	walk = func(t ast.Term) {
		seen[termKey(t)] = true
		//
		if app, ok := t.(*ast.AppTerm); ok {
			for _, a := range app.Args {
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

// checkSurjectivity implements spec.md §4.B's surjectivity check on a
// user-written (i.e. not compiler-desugared) axiom: every compound subterm
// used in the conclusion must already be "visible" - present somewhere in
// the premise, introduced earlier in the conclusion, or the direct subject
// of an earlier conclusion definedness atom.
func checkSurjectivity(srcfile *source.File, premise, conclusion []ast.Atom) []error {
	var errs []error
	//
	seen := make(map[string]bool)
	collectSubterms(premise, seen)
	//
	// requireSeen checks a non-top-level (i.e. nested argument) occurrence
	// of a compound term.
	var requireSeen func(t ast.Term)
	requireSeen = func(t ast.Term) {
		app, ok := t.(*ast.AppTerm)
		if !ok {
			return // bare variables are covered by checkUnboundVariables
		}
		//
		if !seen[termKey(t)] {
			errs = append(errs, srcfile.SyntaxError("NonSurjective", t.Span(),
				fmt.Sprintf("%q must appear in the premise or be introduced earlier in the conclusion", termKey(t))))
		}
		//
		for _, a := range app.Args {
			requireSeen(a)
		}
	}
	//
	introduce := func(t ast.Term) {
		if app, ok := t.(*ast.AppTerm); ok {
			for _, a := range app.Args {
				requireSeen(a)
			}
		}
		//
		seen[termKey(t)] = true
	}
	//
	for _, a := range conclusion {
		switch a := a.(type) {
		case *ast.DefinedAtom:
			introduce(a.Term)
		case *ast.PredAtom:
			for _, t := range a.Args {
				requireSeen(t)
			}
		case *ast.EqAtom:
			requireSeen(a.Lhs)
			requireSeen(a.Rhs)
			seen[termKey(a.Lhs)] = true
			seen[termKey(a.Rhs)] = true
		}
	}
	//
	return errs
}
