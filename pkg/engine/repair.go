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
package engine

import (
	"github.com/eqlog-lang/eqlog-go/pkg/store"
	"github.com/eqlog-lang/eqlog-go/pkg/uf"
)

// repair implements spec.md §4.G: drain every sort's dirty set, canonicalize
// every relation that touches a dirty sort, union any functional-dependency
// conflicts the canonicalization pass surfaces, and loop until nothing is
// dirty. Termination follows the same argument as in the spec: every union
// strictly shrinks the number of equivalence classes of some sort, which is
// bounded below by one class per allocated element.
//
// Rows that canonicalization rewrites (or that a conflict forces a union
// over) are stamped with round, so the next semi-naive round sees them as
// new input. repair reports whether it rewrote or unioned anything at all,
// which the driver folds into its own "did this round make progress" check.
func (m *Model) repair(round uint64) bool {
	changed := false
	//
	for {
		dirtySort := make([]bool, len(m.forests))
		anyDirty := false
		//
		for s, f := range m.forests {
			if f.Dirty() {
				f.DrainDirty()
				dirtySort[s] = true
				anyDirty = true
			}
		}
		//
		if !anyDirty {
			return changed
		}
		//
		for i, rel := range m.program.Relations {
			touches := false
			//
			for _, s := range rel.Sorts {
				if dirtySort[s] {
					touches = true
					break
				}
			}
			//
			if !touches {
				continue
			}
			//
			rewrote, conflicts := m.tables[i].Canonicalize(round, func(col int, e store.Elem) store.Elem {
				return m.root(rel.Sorts[col], e)
			})
			//
			if rewrote {
				changed = true
			}
			//
			if len(conflicts) == 0 {
				continue
			}
			//
			resultSort := rel.Sorts[len(rel.Sorts)-1]
			//
			for _, c := range conflicts {
				m.forests[resultSort].Union(uf.Elem(c[0]), uf.Elem(c[1]))
			}
		}
	}
}
