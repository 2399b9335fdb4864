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
	log "github.com/sirupsen/logrus"

	"github.com/eqlog-lang/eqlog-go/pkg/ir"
	"github.com/eqlog-lang/eqlog-go/pkg/plan"
	"github.com/eqlog-lang/eqlog-go/pkg/store"
	"github.com/eqlog-lang/eqlog-go/pkg/uf"
)

// firing is one matched instantiation of a rule's premise, ready to have its
// conclusion executed.
type firing struct {
	rule *ir.Rule
	env  []store.Elem
}

func toStorePartition(p plan.Partition) store.Partition {
	switch p {
	case plan.Old:
		return store.Old
	case plan.New:
		return store.New
	default:
		return store.All
	}
}

// Close saturates the model under its configured round budget.
func (m *Model) Close() Status {
	return m.CloseWith(m.cfg.MaxRounds)
}

// CloseWith runs the semi-naive loop of spec.md §4.H: find every match of
// every rule's delta variants against the current store, buffer and commit
// the resulting actions, repair congruence, and repeat until a round adds no
// row and unions no pair, or budget rounds have run (0 means unbounded).
func (m *Model) CloseWith(budget uint) Status {
	if m.repair(m.round) {
		m.log.Debug("host-asserted facts required an initial congruence repair")
	}
	//
	var rounds uint
	//
	for {
		if budget > 0 && rounds >= budget {
			return StatusBudgetExhausted
		}
		//
		firings := m.matchRound()
		//
		m.round++
		for _, tbl := range m.tables {
			tbl.SetRound(m.round)
		}
		//
		changed := m.commit(firings)
		if m.repair(m.round) {
			changed = true
		}
		//
		rounds++
		//
		m.log.WithFields(log.Fields{
			"round":   m.round,
			"firings": len(firings),
			"changed": changed,
		}).Debug("saturation round complete")
		//
		if !changed {
			return StatusSaturated
		}
	}
}

// matchRound finds every match of every rule's every delta variant against
// the store as it currently stands, without mutating anything. Matches are
// collected rather than acted on immediately, so that a variant evaluated
// later in the same round still sees the round's starting state rather than
// another variant's just-committed output (spec.md §4.D.3).
func (m *Model) matchRound() []firing {
	var firings []firing
	//
	for i := range m.compiled.Rules {
		cr := &m.compiled.Rules[i]
		//
		for _, p := range cr.Variants {
			env := make([]store.Elem, cr.Rule.NumVars)
			bound := make([]bool, cr.Rule.NumVars)
			//
			m.matchStage(&cr.Rule, p.Stages, 0, env, bound, func(e []store.Elem) {
				firings = append(firings, firing{rule: &cr.Rule, env: append([]store.Elem{}, e...)})
			})
		}
	}
	//
	return firings
}

// matchStage recursively extends env/bound through the stages of one plan,
// invoking found once per complete match.
func (m *Model) matchStage(rule *ir.Rule, stages []plan.Stage, i int, env []store.Elem, bound []bool, found func([]store.Elem)) {
	if i == len(stages) {
		found(env)
		return
	}
	//
	stage := stages[i]
	atom := rule.Premise[stage.AtomIndex]
	//
	switch atom.Kind {
	case ir.RelAtom, ir.DefinedAtom:
		m.matchRelAtom(rule, atom, stage, stages, i, env, bound, found)
	case ir.SortOfAtom:
		if bound[atom.Var] {
			m.matchStage(rule, stages, i+1, env, bound, found)
			return
		}
		//
		for _, e := range m.iterSortIdx(atom.Sort) {
			env[atom.Var] = e
			bound[atom.Var] = true
			m.matchStage(rule, stages, i+1, env, bound, found)
		}
		//
		bound[atom.Var] = false
	case ir.EqAtom:
		// The planner only ever schedules an Eq atom once at least one side
		// is bound. If both are, it is a check; if only one is, the other
		// is copy-propagated from it (e.g. "x = f(y)" binds x directly to
		// f(y)'s already-computed value, rather than enumerating x).
		sort := rule.VarSorts[atom.Lhs]
		//
		switch {
		case bound[atom.Lhs] && bound[atom.Rhs]:
			if m.root(sort, env[atom.Lhs]) == m.root(sort, env[atom.Rhs]) {
				m.matchStage(rule, stages, i+1, env, bound, found)
			}
		case bound[atom.Lhs]:
			env[atom.Rhs] = m.root(sort, env[atom.Lhs])
			bound[atom.Rhs] = true
			m.matchStage(rule, stages, i+1, env, bound, found)
			bound[atom.Rhs] = false
		case bound[atom.Rhs]:
			env[atom.Lhs] = m.root(sort, env[atom.Rhs])
			bound[atom.Lhs] = true
			m.matchStage(rule, stages, i+1, env, bound, found)
			bound[atom.Lhs] = false
		}
	}
}

// matchRelAtom probes the store for one relational premise atom, binding
// every column not already bound and re-checking every column that is
// (covering both cross-atom repeats and within-atom diagonals such as
// Rel(x, x), since both show up as "already bound" by the time the second
// occurrence of the variable is visited).
func (m *Model) matchRelAtom(rule *ir.Rule, atom ir.QueryAtom, stage plan.Stage, stages []plan.Stage, i int, env []store.Elem, bound []bool, found func([]store.Elem)) {
	tbl := m.tables[atom.Relation]
	//
	values := make([]store.Elem, len(stage.Bound))
	for k, pos := range stage.Bound {
		values[k] = env[atom.Vars[pos]]
	}
	//
	part := toStorePartition(stage.Partition)
	//
	tbl.Iter(stage.Bound, values, part, func(r *store.Row) bool {
		var assigned []ir.Var
		ok := true
		//
		for pos, v := range atom.Vars {
			if bound[v] {
				if env[v] != r.Cols[pos] {
					ok = false
					break
				}
			} else {
				env[v] = r.Cols[pos]
				bound[v] = true
				assigned = append(assigned, v)
			}
		}
		//
		if ok {
			m.matchStage(rule, stages, i+1, env, bound, found)
		}
		//
		for _, v := range assigned {
			bound[v] = false
		}
		//
		return true
	})
}

// commit executes the conclusion of every collected firing, in the order
// found, mutating the store and union-find as it goes. A NewAction is always
// immediately followed by the AssertAction that records its result, so by
// the time a later firing wants the same fresh element, Table.Lookup already
// finds the row a prior firing committed; no separate allocation memo is
// needed (spec.md §9, "look before you leap").
func (m *Model) commit(firings []firing) bool {
	changed := false
	//
	for _, fr := range firings {
		env := fr.env
		//
		for _, a := range fr.rule.Conclusion {
			switch a.Kind {
			case ir.AssertAction:
				rel := m.program.Relations[a.Relation]
				cols := make([]store.Elem, len(a.Vars))
				//
				for i, v := range a.Vars {
					cols[i] = env[v]
				}
				//
				cols = m.canonicalCols(rel, cols)
				//
				if rel.HasFD {
					if _, ch := m.assertFD(a.Relation, rel, cols); ch {
						changed = true
					}
				} else if res, _ := m.tables[a.Relation].Insert(cols); res == store.Fresh {
					changed = true
				}
			case ir.NewAction:
				rel := m.program.Relations[a.Relation]
				domain := make([]store.Elem, len(a.Vars))
				//
				for i, v := range a.Vars {
					domain[i] = env[v]
				}
				//
				domain = m.canonicalCols(rel, domain)
				//
				var result store.Elem
				if row, ok := m.tables[a.Relation].Lookup(domain); ok {
					result = row.Cols[len(row.Cols)-1]
				} else {
					result = store.Elem(m.forests[a.Sort].Alloc())
					changed = true
				}
				//
				env[a.Var] = result
			case ir.UnionAction:
				sort := fr.rule.VarSorts[a.Lhs]
				//
				if !m.forests[sort].AreEqual(uf.Elem(env[a.Lhs]), uf.Elem(env[a.Rhs])) {
					m.forests[sort].Union(uf.Elem(env[a.Lhs]), uf.Elem(env[a.Rhs]))
					changed = true
				}
			}
		}
	}
	//
	return changed
}
