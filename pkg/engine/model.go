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

// Package engine is the runtime: a Model owns one store, one union-find
// forest per sort, and the compiled plans it saturates against. Close/
// CloseWith drive the semi-naive loop (driver.go) and congruence repair
// (repair.go) of spec.md §4.G/§4.H.
package engine

import (
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/plan"
	"github.com/eqlog-lang/eqlog-go/pkg/store"
	"github.com/eqlog-lang/eqlog-go/pkg/uf"
)

// Config mirrors the teacher's CompilationConfig: a small struct of
// host-tunable knobs bound to CLI flags in pkg/cmd.
type Config struct {
	// MaxRounds caps the number of saturation rounds; 0 means unbounded.
	MaxRounds uint
	// Strict is carried over from the --strict flag. Neither the elaborator
	// nor the engine reads it; duplicate declarations are rejected whether
	// or not it is set.
	Strict bool
	// Verbose raises this model's own logger to debug level.
	Verbose bool
}

// Status is the result of a saturation run.
type Status int

const (
	// StatusSaturated reports that the model reached a fixpoint.
	StatusSaturated Status = iota
	// StatusBudgetExhausted reports that MaxRounds was reached first; the
	// model's invariants still hold, but it may not yet be saturated.
	StatusBudgetExhausted
)

func (s Status) String() string {
	if s == StatusSaturated {
		return "Saturated"
	}
	//
	return "BudgetExhausted"
}

// Model is one instance of the relational structure a theory describes. Each
// Model owns its own union-find, store and scratch buffers; nothing is
// shared across instances (spec.md §9 "Global mutable state").
type Model struct {
	program  *ir.Program
	compiled *plan.CompiledProgram
	cfg      Config
	forests  []*uf.Forest
	tables   []*store.Table
	round    uint64
	log      *log.Logger
}

// New builds an empty model for a compiled program.
func New(program *ir.Program, cfg Config) *Model {
	compiled := plan.Compile(program)
	m := &Model{program: program, compiled: compiled, cfg: cfg, log: log.New()}
	//
	if cfg.Verbose {
		m.log.SetLevel(log.DebugLevel)
	}
	//
	m.forests = make([]*uf.Forest, len(program.SortNames))
	for i := range m.forests {
		m.forests[i] = uf.New()
	}
	//
	m.tables = make([]*store.Table, len(program.Relations))
	//
	for i, rel := range program.Relations {
		var orders [][]int
		for _, spec := range compiled.Indices[ir.Symbol(i)] {
			orders = append(orders, spec.Order)
		}
		//
		m.tables[i] = store.NewTable(len(rel.Sorts), rel.HasFD, orders)
	}
	//
	return m
}

func (m *Model) sortByName(name string) (ir.Sort, error) {
	s, ok := m.program.SortByName(name)
	if !ok {
		return 0, fmt.Errorf("undeclared sort %q", name)
	}
	//
	return s, nil
}

func (m *Model) relationByName(name string) (ir.Symbol, ir.Relation, error) {
	sym, ok := m.program.RelationByName(name)
	if !ok {
		return 0, ir.Relation{}, fmt.Errorf("undeclared symbol %q", name)
	}
	//
	return sym, m.program.Relations[sym], nil
}

// NewElement mints a fresh element of the named sort.
func (m *Model) NewElement(sortName string) (store.Elem, error) {
	s, err := m.sortByName(sortName)
	if err != nil {
		return 0, err
	}
	//
	return store.Elem(m.forests[s].Alloc()), nil
}

// root returns the canonical representative of an element of the given sort.
func (m *Model) root(sort ir.Sort, e store.Elem) store.Elem {
	return store.Elem(m.forests[sort].Root(uf.Elem(e)))
}

// InsertRow asserts a row of a predicate, canonicalizing its arguments first.
func (m *Model) InsertRow(predName string, args ...store.Elem) error {
	sym, rel, err := m.relationByName(predName)
	if err != nil {
		return err
	}
	//
	if rel.HasFD {
		return fmt.Errorf("%q is a function; use DefineRow", predName)
	}
	//
	if len(args) != len(rel.Sorts) {
		return fmt.Errorf("%q expects %d argument(s), got %d", predName, len(rel.Sorts), len(args))
	}
	//
	cols := m.canonicalCols(rel, args)
	m.tables[sym].Insert(cols)
	//
	return nil
}

// DefineRow asserts a row of a function relation, unioning an existing
// result if the domain columns already map to a different one (spec.md
// §4.C Assert).
func (m *Model) DefineRow(funcName string, args []store.Elem, result store.Elem) error {
	sym, rel, err := m.relationByName(funcName)
	if err != nil {
		return err
	}
	//
	if !rel.HasFD {
		return fmt.Errorf("%q is a predicate; use InsertRow", funcName)
	}
	//
	if len(args) != len(rel.Sorts)-1 {
		return fmt.Errorf("%q expects %d argument(s), got %d", funcName, len(rel.Sorts)-1, len(args))
	}
	//
	cols := m.canonicalCols(rel, append(append([]store.Elem{}, args...), result))
	m.assertFD(sym, rel, cols)
	//
	return nil
}

// assertFD inserts a row into a function relation, unioning the results of
// any functional-dependency conflict. The second return reports whether the
// store or union-find actually changed (a fresh row, or a genuine conflict).
func (m *Model) assertFD(sym ir.Symbol, rel ir.Relation, cols []store.Elem) (store.Elem, bool) {
	res, existing := m.tables[sym].Insert(cols)
	//
	if res == store.Conflict {
		resultSort := rel.Sorts[len(rel.Sorts)-1]
		m.forests[resultSort].Union(uf.Elem(existing.Cols[len(cols)-1]), uf.Elem(cols[len(cols)-1]))
		//
		return existing.Cols[len(cols)-1], true
	}
	//
	return cols[len(cols)-1], res == store.Fresh
}

func (m *Model) canonicalCols(rel ir.Relation, args []store.Elem) []store.Elem {
	cols := make([]store.Elem, len(args))
	//
	for i, a := range args {
		cols[i] = m.root(rel.Sorts[i], a)
	}
	//
	return cols
}

// Lookup returns the canonical result of a function applied to args, if any
// row is defined for them.
func (m *Model) Lookup(funcName string, args ...store.Elem) (store.Elem, bool) {
	sym, rel, err := m.relationByName(funcName)
	if err != nil || !rel.HasFD {
		return 0, false
	}
	//
	cols := m.canonicalCols(rel, args)
	row, ok := m.tables[sym].Lookup(cols)
	//
	if !ok {
		return 0, false
	}
	//
	return row.Cols[len(row.Cols)-1], true
}

// Equate unions two elements of the same sort.
func (m *Model) Equate(sortName string, a, b store.Elem) error {
	s, err := m.sortByName(sortName)
	if err != nil {
		return err
	}
	//
	m.forests[s].Union(uf.Elem(a), uf.Elem(b))
	//
	return nil
}

// AreEqual reports whether a and b are currently in the same class.
func (m *Model) AreEqual(sortName string, a, b store.Elem) bool {
	s, err := m.sortByName(sortName)
	if err != nil {
		return false
	}
	//
	return m.forests[s].AreEqual(uf.Elem(a), uf.Elem(b))
}

// IterSort enumerates the canonical (root) elements of a sort.
func (m *Model) IterSort(sortName string) []store.Elem {
	s, err := m.sortByName(sortName)
	if err != nil {
		return nil
	}
	//
	return m.iterSortIdx(s)
}

// iterSortIdx is IterSort's implementation, taking an already-resolved sort
// index; the matcher uses this directly for SortOf premise atoms.
func (m *Model) iterSortIdx(s ir.Sort) []store.Elem {
	f := m.forests[s]
	seen := make(map[uf.Elem]bool)
	var out []store.Elem
	//
	for e := uf.Elem(0); int(e) < f.Len(); e++ {
		r := f.Root(e)
		//
		if !seen[r] {
			seen[r] = true
			out = append(out, store.Elem(r))
		}
	}
	//
	return out
}

// IterRelation enumerates the canonical rows of a predicate or function.
func (m *Model) IterRelation(name string) [][]store.Elem {
	sym, _, err := m.relationByName(name)
	if err != nil {
		return nil
	}
	//
	rows := m.tables[sym].All()
	out := make([][]store.Elem, len(rows))
	//
	for i, r := range rows {
		out[i] = append([]store.Elem{}, r.Cols...)
	}
	//
	return out
}
