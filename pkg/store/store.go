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

// Package store is the relational store of spec.md §4.E: per-symbol row sets,
// each backed by one or more ordered indices so that any bound prefix of a
// chosen column permutation can be range-scanned. Rows are ordinary structs;
// indices own only references into a table's canonical row map and can be
// rebuilt from it at will.
package store

import (
	"fmt"
	"strings"

	"github.com/google/btree"
)

// Elem is an opaque element handle: a dense index into some sort's element
// array. The store itself is sort-agnostic; callers (pkg/engine) are
// responsible for only ever placing same-sort elements in the same column.
type Elem uint32

// Row is one stored tuple, plus the iteration at which it was last
// (re)canonicalized.
type Row struct {
	Cols      []Elem
	Timestamp uint64
}

func rowKey(cols []Elem) string {
	var b strings.Builder
	for _, c := range cols {
		fmt.Fprintf(&b, "%d,", c)
	}
	//
	return b.String()
}

// Index is one physical ordered index over a table's rows, keyed by a column
// permutation: Order[0] varies slowest, so any prefix of Order can be
// range-scanned as a bound-prefix probe.
type Index struct {
	Order []int
	less  btree.LessFunc[*Row]
	tree  *btree.BTreeG[*Row]
}

func newIndex(order []int) *Index {
	less := func(a, b *Row) bool {
		for _, c := range order {
			if a.Cols[c] != b.Cols[c] {
				return a.Cols[c] < b.Cols[c]
			}
		}
		//
		return false
	}
	//
	return &Index{Order: order, less: less, tree: btree.NewG[*Row](32, less)}
}

// Scan visits, in index order, every row whose columns match bound (a
// prefix, in Order's terms) exactly, stopping as soon as the prefix
// diverges.
func (idx *Index) Scan(bound []Elem, visit func(*Row) bool) {
	seek := &Row{Cols: make([]Elem, len(idx.Order))}
	for i, v := range bound {
		seek.Cols[idx.Order[i]] = v
	}
	//
	idx.tree.AscendGreaterOrEqual(seek, func(r *Row) bool {
		for i, v := range bound {
			if r.Cols[idx.Order[i]] != v {
				return false
			}
		}
		//
		return visit(r)
	})
}

// InsertResult reports what Insert did.
type InsertResult int

const (
	// Fresh reports a brand new row.
	Fresh InsertResult = iota
	// Duplicate reports that an identical row already existed.
	Duplicate
	// Conflict reports, for a function relation, that the domain columns
	// already map to a different result; Table.Insert returns the
	// conflicting row so the caller can union the two results.
	Conflict
)

// Table holds every row of one predicate or function symbol.
type Table struct {
	Arity int
	// HasFD marks a function relation: the last column is functionally
	// dependent on every other column.
	HasFD bool
	//
	rows    map[string]*Row
	domain  map[string]*Row // HasFD only: keyed by the domain columns alone
	indices []*Index
	round   uint64
}

// NewTable creates an empty table for a relation of the given arity, backed
// by the given column-permutation indices (as chosen by pkg/plan).
func NewTable(arity int, hasFD bool, orders [][]int) *Table {
	t := &Table{Arity: arity, HasFD: hasFD, rows: make(map[string]*Row)}
	//
	if hasFD {
		t.domain = make(map[string]*Row)
	}
	//
	for _, o := range orders {
		t.indices = append(t.indices, newIndex(o))
	}
	//
	if len(t.indices) == 0 {
		// Always have at least the identity order, so Iter always has an
		// index to fall back to.
		order := make([]int, arity)
		for i := range order {
			order[i] = i
		}
		//
		t.indices = append(t.indices, newIndex(order))
	}
	//
	return t
}

// SetRound tells the table which iteration is "now"; rows inserted from this
// point carry this timestamp and are considered New until the next round.
func (t *Table) SetRound(round uint64) { t.round = round }

// Insert adds a row, detecting duplicates and (for function relations)
// functional-dependency conflicts.
func (t *Table) Insert(cols []Elem) (InsertResult, *Row) {
	key := rowKey(cols)
	if existing, ok := t.rows[key]; ok {
		return Duplicate, existing
	}
	//
	var dkey string
	//
	if t.HasFD {
		dkey = rowKey(cols[:len(cols)-1])
		//
		if existing, ok := t.domain[dkey]; ok && existing.Cols[len(cols)-1] != cols[len(cols)-1] {
			return Conflict, existing
		}
	}
	//
	row := &Row{Cols: append([]Elem{}, cols...), Timestamp: t.round}
	t.rows[key] = row
	//
	if t.HasFD {
		t.domain[dkey] = row
	}
	//
	for _, idx := range t.indices {
		idx.tree.ReplaceOrInsert(row)
	}
	//
	return Fresh, row
}

// Lookup returns the row (if any) whose domain columns exactly equal domain,
// for a function relation.
func (t *Table) Lookup(domain []Elem) (*Row, bool) {
	if !t.HasFD {
		return nil, false
	}
	//
	row, ok := t.domain[rowKey(domain)]
	//
	return row, ok
}

// Partition selects which subset of a table's rows Iter should visit.
type Partition int

const (
	// All visits every row.
	All Partition = iota
	// Old visits rows with Timestamp strictly before the current round.
	Old
	// New visits rows with Timestamp equal to the current round.
	New
)

func (t *Table) matches(r *Row, p Partition) bool {
	switch p {
	case Old:
		return r.Timestamp < t.round
	case New:
		return r.Timestamp == t.round
	default:
		return true
	}
}

// Iter visits every row whose columns (named by the parallel columns/values
// arrays, in any order) match the given values, restricted to partition p.
// It scans through whichever index's leading columns cover the requested
// set, falling back to a full scan of the default index, and double-checks
// every binding per row regardless (so a partial-prefix index never causes
// an incorrect result, only a less efficient one).
func (t *Table) Iter(columns []int, values []Elem, p Partition, visit func(*Row) bool) {
	idx := t.bestIndex(columns)
	//
	colVal := make(map[int]Elem, len(columns))
	for i, c := range columns {
		colVal[c] = values[i]
	}
	//
	bound := make([]Elem, 0, len(columns))
	for _, c := range idx.Order {
		v, ok := colVal[c]
		if !ok {
			break
		}
		//
		bound = append(bound, v)
	}
	//
	idx.Scan(bound, func(r *Row) bool {
		for c, v := range colVal {
			if r.Cols[c] != v {
				return true
			}
		}
		//
		if !t.matches(r, p) {
			return true
		}
		//
		return visit(r)
	})
}

// bestIndex returns the index whose leading columns are exactly the
// requested column set (in any order), or the default index otherwise.
func (t *Table) bestIndex(columns []int) *Index {
	want := make(map[int]bool, len(columns))
	for _, c := range columns {
		want[c] = true
	}
	//
	for _, idx := range t.indices {
		if len(idx.Order) < len(columns) {
			continue
		}
		//
		ok := true
		//
		for _, c := range idx.Order[:len(columns)] {
			if !want[c] {
				ok = false
				break
			}
		}
		//
		if ok {
			return idx
		}
	}
	//
	return t.indices[0]
}

// All returns every row, unfiltered, in no particular order.
func (t *Table) All() []*Row {
	out := make([]*Row, 0, len(t.rows))
	for _, r := range t.rows {
		out = append(out, r)
	}
	//
	return out
}

// Len returns the number of distinct rows currently stored.
func (t *Table) Len() int { return len(t.rows) }

// Canonicalize rewrites every stored row's columns through root (called with
// the column index, since each column may belong to a different sort),
// dropping the rows that become duplicates and returning the conflicts
// discovered (pairs of result columns that must now be unioned), per
// spec.md §4.E/§4.G.
func (t *Table) Canonicalize(round uint64, root func(col int, e Elem) Elem) (changed bool, conflicts [][2]Elem) {
	old := t.rows
	t.rows = make(map[string]*Row)
	//
	if t.HasFD {
		t.domain = make(map[string]*Row)
	}
	//
	for _, idx := range t.indices {
		idx.tree = btree.NewG[*Row](32, idx.less)
	}
	//
	for _, row := range old {
		cols := make([]Elem, len(row.Cols))
		rewritten := false
		//
		for i, c := range row.Cols {
			rc := root(i, c)
			cols[i] = rc
			//
			if rc != c {
				rewritten = true
			}
		}
		//
		ts := row.Timestamp
		if rewritten {
			ts = round
			changed = true
		}
		//
		key := rowKey(cols)
		//
		if existing, ok := t.rows[key]; ok {
			if existing.Timestamp < ts {
				existing.Timestamp = ts
			}
			//
			continue
		}
		//
		newRow := &Row{Cols: cols, Timestamp: ts}
		//
		if t.HasFD {
			dkey := rowKey(cols[:len(cols)-1])
			//
			if existing, ok := t.domain[dkey]; ok {
				if existing.Cols[len(cols)-1] != cols[len(cols)-1] {
					conflicts = append(conflicts, [2]Elem{existing.Cols[len(cols)-1], cols[len(cols)-1]})
				}
				// Keep the existing row; the conflict will be resolved by a
				// union, and the next canonicalization pass dedups them.
				t.rows[key] = existing
				//
				continue
			}
			//
			t.domain[dkey] = newRow
		}
		//
		t.rows[key] = newRow
	}
	//
	for _, row := range t.rows {
		for _, idx := range t.indices {
			idx.tree.ReplaceOrInsert(row)
		}
	}
	//
	if len(conflicts) > 0 {
		changed = true
	}
	//
	return changed, conflicts
}
