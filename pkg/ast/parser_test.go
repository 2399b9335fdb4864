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
package ast

import (
	"testing"

	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

func parse(t *testing.T, src string) *Module {
	mod, errs := Parse(source.NewFile("t.eqlog", []byte(src)))
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	//
	return mod
}

func TestParseDeclarations(t *testing.T) {
	mod := parse(t, `
		sort E;
		pred Le(E, E);
		func Meet : (E, E) -> E;
		func Zero : () -> E;
	`)
	//
	if len(mod.Decls) != 4 {
		t.Fatalf("expected 4 declarations, got %d", len(mod.Decls))
	}
	//
	sort, ok := mod.Decls[0].(*SortDecl)
	if !ok || sort.Name != "E" {
		t.Fatalf("expected sort E, got %#v", mod.Decls[0])
	}
	//
	pred, ok := mod.Decls[1].(*PredDecl)
	if !ok || pred.Name != "Le" || len(pred.Params) != 2 {
		t.Fatalf("expected pred Le(E,E), got %#v", mod.Decls[1])
	}
	//
	fn, ok := mod.Decls[2].(*FuncDecl)
	if !ok || fn.Name != "Meet" || len(fn.Domain) != 2 || fn.Codomain != "E" {
		t.Fatalf("expected func Meet : (E,E) -> E, got %#v", mod.Decls[2])
	}
	//
	zero, ok := mod.Decls[3].(*FuncDecl)
	if !ok || len(zero.Domain) != 0 {
		t.Fatalf("expected constant func with empty domain, got %#v", mod.Decls[3])
	}
}

func TestParseImplicationAxiom(t *testing.T) {
	mod := parse(t, `
		sort E;
		pred Le(E, E);
		axiom trans: Le(x, y) & Le(y, z) => Le(x, z);
	`)
	//
	axiom, ok := mod.Decls[2].(*AxiomDecl)
	if !ok {
		t.Fatalf("expected an axiom decl, got %#v", mod.Decls[2])
	}
	//
	if axiom.Kind != Implication || len(axiom.Premise) != 2 || len(axiom.Conclusion) != 1 {
		t.Fatalf("unexpected axiom shape: %#v", axiom)
	}
}

func TestParseReductionAxiom(t *testing.T) {
	mod := parse(t, `
		sort N;
		func S : N -> N;
		axiom cancel: S(S(x)) ~> x;
	`)
	//
	axiom := mod.Decls[2].(*AxiomDecl)
	if axiom.Kind != Reduction {
		t.Fatalf("expected a reduction, got kind %v", axiom.Kind)
	}
	//
	if _, ok := axiom.From.(*AppTerm); !ok {
		t.Fatalf("expected From to be an application, got %#v", axiom.From)
	}
}

func TestParseSymmetricReductionAxiom(t *testing.T) {
	mod := parse(t, `
		sort N;
		func Plus : (N, N) -> N;
		axiom comm: Plus(x, y) <~> Plus(y, x);
	`)
	//
	axiom := mod.Decls[2].(*AxiomDecl)
	if axiom.Kind != SymmetricReduction {
		t.Fatalf("expected a symmetric reduction, got kind %v", axiom.Kind)
	}
}

func TestParseWildcardAndAscription(t *testing.T) {
	mod := parse(t, `
		sort E;
		pred P(E);
		axiom a: x : E & P(_) => P(x);
	`)
	//
	axiom := mod.Decls[2].(*AxiomDecl)
	//
	ascribe, ok := axiom.Premise[0].(*AscribeAtom)
	if !ok || ascribe.Var != "x" || ascribe.Sort != "E" {
		t.Fatalf("expected ascription x:E, got %#v", axiom.Premise[0])
	}
	//
	pa, ok := axiom.Premise[1].(*PredAtom)
	if !ok || len(pa.Args) != 1 {
		t.Fatalf("expected P(_), got %#v", axiom.Premise[1])
	}
	//
	v, ok := pa.Args[0].(*VarTerm)
	if !ok || !v.IsWildcard() {
		t.Fatalf("expected wildcard argument, got %#v", pa.Args[0])
	}
}

func TestParseDefinedAndEqualityAtoms(t *testing.T) {
	mod := parse(t, `
		sort N;
		func S : N -> N;
		axiom a: S(x)! & S(x) = y => S(y)!;
	`)
	//
	axiom := mod.Decls[2].(*AxiomDecl)
	//
	if _, ok := axiom.Premise[0].(*DefinedAtom); !ok {
		t.Fatalf("expected a definedness atom, got %#v", axiom.Premise[0])
	}
	//
	eq, ok := axiom.Premise[1].(*EqAtom)
	if !ok {
		t.Fatalf("expected an equality atom, got %#v", axiom.Premise[1])
	}
	//
	if _, ok := eq.Lhs.(*AppTerm); !ok {
		t.Fatalf("expected S(x) on the left, got %#v", eq.Lhs)
	}
}

func TestParseRejectsMalformedDeclaration(t *testing.T) {
	_, errs := Parse(source.NewFile("t.eqlog", []byte("sort;")))
	if len(errs) == 0 {
		t.Fatal("expected a parse error for a missing sort name")
	}
}

func TestParseRejectsUnrecognisedCharacter(t *testing.T) {
	_, errs := Parse(source.NewFile("t.eqlog", []byte("sort E$;")))
	if len(errs) == 0 {
		t.Fatal("expected a lex error for an unrecognised character")
	}
}
