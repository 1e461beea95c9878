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

	"github.com/plonkir/ferrite/pkg/config"
	"github.com/plonkir/ferrite/pkg/felt"
	"github.com/plonkir/ferrite/pkg/gen"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// GetFlag gets an expected flag, or exit if an error arises.
func GetFlag(cmd *cobra.Command, flag string) bool {
	r, err := cmd.Flags().GetBool(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(2)
	}

	return r
}

// GetUint gets an expected unsigned integer, or exit if an error arises.
func GetUint(cmd *cobra.Command, flag string) uint {
	r, err := cmd.Flags().GetUint(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(3)
	}

	return r
}

// GetString gets an expected string, or exit if an error arises.
func GetString(cmd *cobra.Command, flag string) string {
	r, err := cmd.Flags().GetString(flag)
	if err != nil {
		fmt.Println(err)
		os.Exit(4)
	}

	return r
}

// getOptions assembles the generation options shared by every subcommand
// from the persistent flag set.
func getOptions(cmd *cobra.Command) gen.Options {
	if GetFlag(cmd, "verbose") {
		log.SetLevel(log.DebugLevel)
	}

	field := GetString(cmd, "field")

	prime := felt.ModulusOf(field)
	if prime == nil {
		fmt.Printf("unknown prime field \"%s\"\n", field)
		os.Exit(3)
	}

	cfg := config.CompilationConfig{
		DebugComments:       GetFlag(cmd, "debug-comments"),
		IgnoreDisabledGates: GetFlag(cmd, "ignore-disabled-gates"),
		Optimize:            GetFlag(cmd, "optimize"),
		TopLevel:            GetString(cmd, "top-level"),
		ExprCutoff:          GetUint(cmd, "expr-cutoff"),
		Coverage:            GetFlag(cmd, "coverage"),
	}

	return gen.Options{Config: cfg, Prime: prime}
}

// fail prints a single aggregated error message and exits non-zero.
func fail(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
