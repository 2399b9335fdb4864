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

// Package elab turns a parsed ast.Module into a compiled ir.Program: it
// sort-checks terms, desugars reductions into implications, rejects
// non-surjective and unbound-variable axioms, and flattens every axiom into
// the Rule IR (pkg/ir) that the planner and engine consume.
package elab

import (
	"github.com/eqlog-lang/eqlog-go/pkg/ast"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

// relInfo is the elaborator's working symbol-table entry for one predicate or
// function declaration.
type relInfo struct {
	symbol   ir.Symbol
	isFunc   bool
	domain   []ir.Sort
	codomain ir.Sort // only meaningful when isFunc
}

// elaborator holds the symbol tables and accumulated program shared across
// every axiom in a module.
type elaborator struct {
	srcfile   *source.File
	sortNames []string
	sorts     map[string]ir.Sort
	rels      map[string]relInfo
	relTable  []ir.Relation
	errs      []error
	memoSeq   int
}

// Elaborate compiles a parsed module into a Program. All errors found across
// every declaration and axiom are returned together (no early exit on the
// first error), in keeping with spec.md §6's diagnostic model.
func Elaborate(mod *ast.Module, srcfile *source.File) (*ir.Program, []error) {
	e := &elaborator{
		srcfile: srcfile,
		sorts:   make(map[string]ir.Sort),
		rels:    make(map[string]relInfo),
	}
	//
	e.declareSorts(mod)
	e.declareRelations(mod)
	//
	if len(e.errs) > 0 {
		return nil, e.errs
	}
	//
	var rules []ir.Rule
	//
	for _, decl := range mod.Decls {
		axiom, ok := decl.(*ast.AxiomDecl)
		if !ok {
			continue
		}
		//
		rules = append(rules, e.elaborateAxiom(axiom)...)
	}
	//
	if len(e.errs) > 0 {
		return nil, e.errs
	}
	//
	return &ir.Program{SortNames: e.sortNames, Relations: e.relTable, Rules: rules}, nil
}

func (e *elaborator) fail(kind string, span source.Span, format string, args ...any) {
	e.errs = append(e.errs, e.srcfile.SyntaxError(kind, span, format, args...))
}

func (e *elaborator) declareSorts(mod *ast.Module) {
	for _, decl := range mod.Decls {
		d, ok := decl.(*ast.SortDecl)
		if !ok {
			continue
		}
		//
		if _, exists := e.sorts[d.Name]; exists {
			e.fail("DuplicateDeclaration", d.Loc, "sort %q already declared", d.Name)
			continue
		}
		//
		e.sorts[d.Name] = ir.Sort(len(e.sortNames))
		e.sortNames = append(e.sortNames, d.Name)
	}
}

func (e *elaborator) resolveSort(name string, span source.Span) (ir.Sort, bool) {
	s, ok := e.sorts[name]
	if !ok {
		e.fail("UndeclaredSymbol", span, "undeclared sort %q", name)
	}
	//
	return s, ok
}

func (e *elaborator) declareRelations(mod *ast.Module) {
	for _, decl := range mod.Decls {
		switch d := decl.(type) {
		case *ast.PredDecl:
			if _, exists := e.rels[d.Name]; exists {
				e.fail("DuplicateDeclaration", d.Loc, "symbol %q already declared", d.Name)
				continue
			}
			//
			domain := make([]ir.Sort, 0, len(d.Params))
			ok := true
			//
			for _, p := range d.Params {
				s, sok := e.resolveSort(p, d.Loc)
				ok = ok && sok
				domain = append(domain, s)
			}
			//
			if !ok {
				continue
			}
			//
			sym := ir.Symbol(len(e.relTable))
			e.relTable = append(e.relTable, ir.Relation{Name: d.Name, Sorts: domain, HasFD: false})
			e.rels[d.Name] = relInfo{symbol: sym, isFunc: false, domain: domain}
		case *ast.FuncDecl:
			if _, exists := e.rels[d.Name]; exists {
				e.fail("DuplicateDeclaration", d.Loc, "symbol %q already declared", d.Name)
				continue
			}
			//
			domain := make([]ir.Sort, 0, len(d.Domain))
			ok := true
			//
			for _, p := range d.Domain {
				s, sok := e.resolveSort(p, d.Loc)
				ok = ok && sok
				domain = append(domain, s)
			}
			//
			codomain, cok := e.resolveSort(d.Codomain, d.Loc)
			ok = ok && cok
			//
			if !ok {
				continue
			}
			//
			sym := ir.Symbol(len(e.relTable))
			e.relTable = append(e.relTable, ir.Relation{Name: d.Name, Sorts: append(append([]ir.Sort{}, domain...), codomain), HasFD: true})
			e.rels[d.Name] = relInfo{symbol: sym, isFunc: true, domain: domain, codomain: codomain}
		}
	}
}
