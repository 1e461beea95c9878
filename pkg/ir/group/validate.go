// Copyright Consensys Software Inc.
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
package group

import (
	"fmt"

	"github.com/plonkir/ferrite/pkg/ir/failure"
)

// Callsite is the arity-relevant view of one ConstraintCall, as extracted
// by IR generation for validation against the callee.
type Callsite struct {
	CallNo     uint
	CalleeID   int
	Inputs     int
	Outputs    int
	OutputVars int
}

// ValidateCallsites checks every callsite of the group at index idx against
// its callee's declared arity: input count, output count, and one output
// variable per output. Mismatches are collected per callsite and reported
// as one aggregated failure for the group.
func ValidateCallsites(t *Tree, idx int, sites []Callsite) error {
	g := &t.Groups[idx]

	var failures []failure.Failure

	for _, site := range sites {
		if site.CalleeID < 0 || site.CalleeID >= len(t.Groups) {
			failures = append(failures, failure.Structuralf(
				"group %q callsite #%d: callee id %d out of range", g.Name, site.CallNo, site.CalleeID))
			continue
		}

		callee := &t.Groups[site.CalleeID]

		if callee.InputCount() != site.Inputs {
			failures = append(failures, &failure.ArityMismatch{
				Group: g.Name, CallNo: site.CallNo, Callee: callee.Name,
				Aspect: "inputs", Want: callee.InputCount(), Got: site.Inputs,
			})
		}

		if callee.OutputCount() != site.Outputs {
			failures = append(failures, &failure.ArityMismatch{
				Group: g.Name, CallNo: site.CallNo, Callee: callee.Name,
				Aspect: "outputs", Want: callee.OutputCount(), Got: site.Outputs,
			})
		}

		if site.Outputs != site.OutputVars {
			failures = append(failures, &failure.ArityMismatch{
				Group: g.Name, CallNo: site.CallNo, Callee: callee.Name,
				Aspect: "output variables", Want: site.Outputs, Got: site.OutputVars,
			})
		}
	}

	if len(failures) == 0 {
		return nil
	}

	return &failure.Aggregate{
		Context:  fmt.Sprintf("group %q failed callsite validation", g.Name),
		Failures: failures,
	}
}
