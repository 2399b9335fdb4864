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

// Package ast defines the syntactic representation of a theory source file:
// sort, predicate and function declarations, and axioms in their surface
// forms (implication, reduction, symmetric reduction). No semantic checking
// is performed here; that is the elaborator's job (see pkg/elab).
package ast

import "github.com/eqlog-lang/eqlog-go/pkg/source"

// Module is the top-level result of parsing a single theory source file.
type Module struct {
	Decls []Decl
}

// Decl is any top-level declaration.
type Decl interface {
	Span() source.Span
}

// SortDecl declares a carrier set.
type SortDecl struct {
	Name string
	Loc  source.Span
}

// Span implements Decl.
func (d *SortDecl) Span() source.Span { return d.Loc }

// PredDecl declares a predicate and the sorts of its arguments.
type PredDecl struct {
	Name   string
	Params []string
	Loc    source.Span
}

// Span implements Decl.
func (d *PredDecl) Span() source.Span { return d.Loc }

// FuncDecl declares a partial function. An empty Domain denotes a constant.
type FuncDecl struct {
	Name     string
	Domain   []string
	Codomain string
	Loc      source.Span
}

// Span implements Decl.
func (d *FuncDecl) Span() source.Span { return d.Loc }

// AxiomKind distinguishes the three surface forms an axiom may take.
type AxiomKind int

const (
	// Implication is "premise => conclusion".
	Implication AxiomKind = iota
	// Reduction is "from ~> to", optionally premised.
	Reduction
	// SymmetricReduction is "from <~> to", optionally premised; desugars to
	// both directions.
	SymmetricReduction
)

// AxiomDecl declares a Horn-style implication or a (possibly symmetric,
// possibly premised) reduction.
type AxiomDecl struct {
	Name string
	Kind AxiomKind
	// Premise atoms, shared by all three kinds (empty for a bare reduction).
	Premise []Atom
	// Conclusion atoms, populated only when Kind == Implication.
	Conclusion []Atom
	// From/To, populated only when Kind == Reduction or SymmetricReduction.
	From, To Term
	Loc      source.Span
}

// Span implements Decl.
func (d *AxiomDecl) Span() source.Span { return d.Loc }

// Atom is one of: predicate application, definedness, equality, or sort
// ascription.
type Atom interface {
	Span() source.Span
}

// PredAtom asserts that a tuple of terms belongs to a predicate (or, when Pred
// names a function, that the underlying function relation holds of this
// tuple including its result column - the elaborator tells the two apart).
type PredAtom struct {
	Pred string
	Args []Term
	Loc  source.Span
}

// Span implements Atom.
func (a *PredAtom) Span() source.Span { return a.Loc }

// DefinedAtom asserts that a term is defined ("t!").
type DefinedAtom struct {
	Term Term
	Loc  source.Span
}

// Span implements Atom.
func (a *DefinedAtom) Span() source.Span { return a.Loc }

// EqAtom asserts that two terms denote equal elements.
type EqAtom struct {
	Lhs, Rhs Term
	Loc      source.Span
}

// Span implements Atom.
func (a *EqAtom) Span() source.Span { return a.Loc }

// AscribeAtom asserts that a variable has a given sort ("x : S").
type AscribeAtom struct {
	Var  string
	Sort string
	Loc  source.Span
}

// Span implements Atom.
func (a *AscribeAtom) Span() source.Span { return a.Loc }

// Term is either a variable (possibly the wildcard "_") or a function
// application.
type Term interface {
	Span() source.Span
}

// VarTerm is a variable reference. Name == "_" marks a wildcard, which is
// fresh at every occurrence (the parser assigns no identity to wildcards;
// the elaborator does, per occurrence).
type VarTerm struct {
	Name string
	Loc  source.Span
}

// Span implements Term.
func (t *VarTerm) Span() source.Span { return t.Loc }

// IsWildcard reports whether this variable is the anonymous "_".
func (t *VarTerm) IsWildcard() bool { return t.Name == "_" }

// AppTerm is an application of a function (or, in an atom position, a
// predicate) symbol to a tuple of argument terms.
type AppTerm struct {
	Func string
	Args []Term
	Loc  source.Span
}

// Span implements Term.
func (t *AppTerm) Span() source.Span { return t.Loc }
