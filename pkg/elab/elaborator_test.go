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
	"testing"

	"github.com/eqlog-lang/eqlog-go/pkg/ast"
	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/source"
)

func elaborate(t *testing.T, src string) (*ir.Program, []error) {
	srcfile := source.NewFile("t.eqlog", []byte(src))
	//
	mod, errs := ast.Parse(srcfile)
	if len(errs) > 0 {
		t.Fatalf("unexpected parse errors: %v", errs)
	}
	//
	return Elaborate(mod, srcfile)
}

func elaborateOK(t *testing.T, src string) *ir.Program {
	program, errs := elaborate(t, src)
	if len(errs) > 0 {
		t.Fatalf("unexpected elaboration errors: %v", errs)
	}
	//
	return program
}

func TestElaborateSimpleTransitivity(t *testing.T) {
	program := elaborateOK(t, `
		sort E;
		pred Le(E, E);
		axiom trans: Le(x, y) & Le(y, z) => Le(x, z);
	`)
	//
	if len(program.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(program.Rules))
	}
	//
	rule := program.Rules[0]
	if len(rule.Premise) != 2 || len(rule.Conclusion) != 1 {
		t.Fatalf("unexpected rule shape: %+v", rule)
	}
	//
	if rule.Conclusion[0].Kind != ir.AssertAction {
		t.Fatalf("expected an Assert conclusion, got kind %v", rule.Conclusion[0].Kind)
	}
}

func TestElaborateFunctionConclusionAllocates(t *testing.T) {
	program := elaborateOK(t, `
		sort E;
		pred Le(E, E);
		func Meet : (E, E) -> E;
		axiom meetLB: Le(z, x) & Le(z, y) => Meet(x, y)! & Le(z, Meet(x, y));
	`)
	//
	rule := program.Rules[0]
	//
	var sawNew, sawAssert bool
	//
	for _, a := range rule.Conclusion {
		if a.Kind == ir.NewAction {
			sawNew = true
		}
		//
		if a.Kind == ir.AssertAction {
			sawAssert = true
		}
	}
	//
	if !sawNew || !sawAssert {
		t.Fatalf("expected both a New and an Assert action, got %+v", rule.Conclusion)
	}
}

func TestElaborateRejectsNonSurjectiveAxiom(t *testing.T) {
	_, errs := elaborate(t, `
		sort E;
		pred Le(E, E);
		func Meet : (E, E) -> E;
		axiom meetLB: Le(z, x) & Le(z, y) => Le(z, Meet(x, y));
	`)
	//
	// Meet(x, y) is not the subject of a premise or earlier-conclusion
	// definedness atom before it's used as an argument to Le, so this is
	// rejected.
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 error, got %d: %v", len(errs), errs)
	}
	//
	se, ok := errs[0].(*source.SyntaxError)
	if !ok || se.Kind() != "NonSurjective" {
		t.Fatalf("expected a NonSurjective error, got %#v", errs[0])
	}
}

func TestElaborateAcceptsSurjectiveViaDefinedness(t *testing.T) {
	program := elaborateOK(t, `
		sort E;
		pred Le(E, E);
		func Meet : (E, E) -> E;
		axiom meetLB: Le(z, x) & Le(z, y) & Meet(x, y)! => Le(z, Meet(x, y));
	`)
	//
	if len(program.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(program.Rules))
	}
}

func TestElaborateRejectsUnboundConclusionVariable(t *testing.T) {
	_, errs := elaborate(t, `
		sort E;
		pred P(E);
		pred Q(E);
		axiom bad: P(x) => Q(y);
	`)
	//
	if len(errs) == 0 {
		t.Fatal("expected an UnboundVariable error")
	}
}

func TestElaborateRejectsWildcardInConclusion(t *testing.T) {
	_, errs := elaborate(t, `
		sort E;
		pred P(E);
		axiom bad: P(x) => P(_);
	`)
	//
	if len(errs) == 0 {
		t.Fatal("expected a wildcard-in-conclusion error")
	}
}

func TestElaborateRejectsUndeclaredSort(t *testing.T) {
	_, errs := elaborate(t, `
		pred P(E);
	`)
	//
	if len(errs) == 0 {
		t.Fatal("expected an UndeclaredSymbol error for sort E")
	}
}

func TestElaborateRejectsSortMismatch(t *testing.T) {
	_, errs := elaborate(t, `
		sort A;
		sort B;
		pred P(A);
		pred Q(B);
		axiom bad: P(x) & Q(x) => P(x);
	`)
	//
	if len(errs) == 0 {
		t.Fatal("expected a SortMismatch error for x used at two sorts")
	}
}

func TestElaborateReductionDesugarsToImplicationWithDefinedness(t *testing.T) {
	program := elaborateOK(t, `
		sort N;
		func S : N -> N;
		axiom cancel: S(S(x)) ~> x;
	`)
	//
	if len(program.Rules) != 1 {
		t.Fatalf("expected 1 rule, got %d", len(program.Rules))
	}
	//
	rule := program.Rules[0]
	//
	// The desugared conclusion is "S(S(x)) = x": S(S(x)) was never witnessed
	// in the premise (only its argument S(x) was, via the definedness
	// premise desugarReduction generates), so flattening it emits a fresh
	// New+Assert pair before the final Union ties it to x.
	if len(rule.Premise) != 1 || rule.Premise[0].Kind != ir.DefinedAtom {
		t.Fatalf("expected a single Defined premise atom for S(x), got %+v", rule.Premise)
	}
	//
	var sawNew, sawAssert, sawUnion bool
	//
	for _, a := range rule.Conclusion {
		switch a.Kind {
		case ir.NewAction:
			sawNew = true
		case ir.AssertAction:
			sawAssert = true
		case ir.UnionAction:
			sawUnion = true
		}
	}
	//
	if !sawNew || !sawAssert || !sawUnion {
		t.Fatalf("expected New, Assert and Union actions in the reduction's conclusion, got %+v", rule.Conclusion)
	}
}

func TestElaborateSymmetricReductionProducesTwoRules(t *testing.T) {
	program := elaborateOK(t, `
		sort N;
		func Plus : (N, N) -> N;
		axiom comm: Plus(x, y) <~> Plus(y, x);
	`)
	//
	if len(program.Rules) != 2 {
		t.Fatalf("expected 2 rules (forward and backward), got %d", len(program.Rules))
	}
}

func TestElaborateDuplicateSortRejected(t *testing.T) {
	_, errs := elaborate(t, `
		sort E;
		sort E;
	`)
	//
	if len(errs) == 0 {
		t.Fatal("expected a DuplicateDeclaration error")
	}
}

func TestElaborateConstantFunction(t *testing.T) {
	program := elaborateOK(t, `
		sort E;
		pred P(E);
		func Zero : () -> E;
		axiom z: Zero()! => P(Zero());
	`)
	//
	rel := program.Relations[1]
	//
	if rel.Name != "Zero" || len(rel.Sorts) != 1 || !rel.HasFD {
		t.Fatalf("expected Zero to be a 1-column (result-only) function relation, got %+v", rel)
	}
}
