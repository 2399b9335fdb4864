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
package cmd

import (
	"fmt"
	"io"

	"github.com/eqlog-lang/eqlog-go/pkg/plan"
)

// printPlan renders every rule's compiled delta variants, for the
// --dump-plan debug flag: one line per stage, naming the atom index,
// partition (Old/New/All) and which columns the stage probes bound.
func printPlan(w io.Writer, cp *plan.CompiledProgram) {
	for _, cr := range cp.Rules {
		fmt.Fprintf(w, "rule %s (order %v):\n", cr.Rule.Name, cr.Order)
		//
		for vi, p := range cr.Variants {
			fmt.Fprintf(w, "  variant %d:\n", vi)
			//
			for _, s := range p.Stages {
				fmt.Fprintf(w, "    atom %d partition=%s bound=%v\n", s.AtomIndex, partitionName(s.Partition), s.Bound)
			}
		}
	}
}

func partitionName(p plan.Partition) string {
	switch p {
	case plan.Old:
		return "Old"
	case plan.New:
		return "New"
	default:
		return "All"
	}
}
