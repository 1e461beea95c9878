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
	"golang.org/x/term"
)

var genPicusCmd = &cobra.Command{
	Use:   "picus [circuit]",
	Short: "compile a circuit into Picus' constraint language.",
	Long: "Compile one of the built-in example circuits into a single program in PCL " +
		"(Picus Constraint Language) for Picus to check determinism.",
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

		prog, err := compile.ToPicus(art, opts)
		if err != nil {
			fail(err)
		}

		if GetFlag(cmd, "verbose") && term.IsTerminal(int(os.Stdout.Fd())) {
			if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
				log.WithFields(log.Fields{"modules": len(prog.Modules), "width": width}).
					Debug("emitting PCL program")
				fmt.Printf("; %d module(s), terminal width %d\n", len(prog.Modules), width)
			}
		}

		if _, err := prog.WriteTo(os.Stdout); err != nil {
			fail(err)
		}
	},
}

//nolint:errcheck
func init() {
	rootCmd.AddCommand(genPicusCmd)
}
