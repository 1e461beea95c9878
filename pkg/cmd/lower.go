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
package cmd

import (
	"fmt"
	"os"

	"github.com/plonkir/ferrite/pkg/compile"
	"github.com/plonkir/ferrite/pkg/examples"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var lowerCmd = &cobra.Command{
	Use:   "lower [circuit]",
	Short: "compile a circuit into the LLZK structural IR.",
	Long: "Compile one of the built-in example circuits through the full middle-end " +
		"(synthesis, IR generation, dedup, folding) and emit the LLZK-shaped output.",
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		opts := getOptions(cmd)

		circ, err := examples.Lookup(args[0])
		if err != nil {
			fail(err)
		}

		art, err := compile.Run(circ, opts)
		if err != nil {
			fail(err)
		}

		mod, err := compile.ToLLZK(art, opts.Config)
		if err != nil {
			fail(err)
		}

		if _, err := mod.WriteTo(os.Stdout); err != nil {
			fail(err)
		}

		if opts.Config.Coverage {
			for i := range art.Result.Groups {
				g := &art.Result.Groups[i]
				if g.Coverage == nil {
					continue
				}

				fmt.Printf("// coverage %s: %d row(s)\n", g.Group.Name, g.Coverage.Count())
			}
		}

		log.WithField("groups", len(art.Result.Groups)).Debug("lowering complete")
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(lowerCmd)
}
