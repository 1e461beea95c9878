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
	"runtime/debug"

	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/spf13/cobra"
)

// Version is filled when building with make, but *not* when installing via
// "go install".
var Version string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "ferrite",
	Short: "A middle-end compiler from PLONK-style circuits to LLZK and Picus.",
	Long: "Ferrite lowers PLONK-style constraint circuits into the LLZK structural IR " +
		"and into PCL programs for Picus determinism analysis.",
	Run: func(cmd *cobra.Command, args []string) {
		if GetFlag(cmd, "version") {
			fmt.Print("ferrite ")
			if Version != "" {
				// Built via "make"
				fmt.Printf("%s", Version)
			} else if info, ok := debug.ReadBuildInfo(); ok {
				// Built via "go install"
				fmt.Printf("%s", info.Main.Version)
			} else {
				// Unknown, perhaps "go run"
				fmt.Printf("(unknown version)")
			}
			fmt.Println()
		}
	},
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

//nolint:errcheck
func init() {
	rootCmd.Flags().Bool("version", false, "print version information")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().String("field", felt.BLS12377, "name of the prime field to compile over")
	rootCmd.PersistentFlags().Bool("debug-comments", false, "prepend context comments to lowered groups")
	rootCmd.PersistentFlags().Bool("ignore-disabled-gates", false,
		"suppress gate polynomials whose selectors are all disabled on a row")
	rootCmd.PersistentFlags().Bool("optimize", false, "enable back-end optimisation passes")
	rootCmd.PersistentFlags().String("top-level", "Main", "name for the main group in the lowered output")
	rootCmd.PersistentFlags().Uint("expr-cutoff", 0,
		"maximum expression size before extraction to a temporary (0 disables)")
	rootCmd.PersistentFlags().Bool("coverage", false, "report which rows the default gate pattern covered")
}
