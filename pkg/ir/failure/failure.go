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

// Package failure defines the structured error types used across the
// middle-end. Each carries enough context (group name, region name,
// callsite number) that a single user-visible message can concatenate the
// originating message with where it happened.
package failure

import (
	"fmt"
	"strings"
)

// Failure embodies structured information about a failing compilation step.
type Failure interface {
	error
	// Message provides a suitable error message.
	Message() string
}

// Structural reports a malformed invariant: exiting a region when none is
// open, a callsite's callee out of range, more than one top-level group.
type Structural struct {
	Msg string
}

// Structuralf constructs a Structural failure from a format string.
func Structuralf(format string, args ...any) *Structural {
	return &Structural{Msg: fmt.Sprintf(format, args...)}
}

// Message implementation for Failure interface.
func (e *Structural) Message() string { return e.Msg }

func (e *Structural) Error() string { return e.Msg }

// ArityMismatch reports a callsite whose input or output count disagrees
// with its callee.
type ArityMismatch struct {
	Group   string
	CallNo  uint
	Callee  string
	Aspect  string
	Want    int
	Got     int
}

// Message implementation for Failure interface.
func (e *ArityMismatch) Message() string {
	return fmt.Sprintf("group %q callsite #%d: callee %q expects %d %s, callsite provides %d",
		e.Group, e.CallNo, e.Callee, e.Want, e.Aspect, e.Got)
}

func (e *ArityMismatch) Error() string { return e.Message() }

// Pattern reports that either zero patterns matched a gate, or that one or
// more patterns returned hard errors while attempting to match it. Pattern
// errors are accumulated within one gate; they are fatal only if no pattern
// succeeded.
type Pattern struct {
	Gate   string
	Region string
	// Errs holds any hard errors returned by individual patterns, one per
	// pattern; empty means simply that no pattern matched.
	Errs []error
}

// Message implementation for Failure interface.
func (e *Pattern) Message() string {
	if len(e.Errs) == 0 {
		return fmt.Sprintf("gate %q in region %q did not match any pattern", e.Gate, e.Region)
	}

	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}

	return fmt.Sprintf("gate %q in region %q: %s", e.Gate, e.Region, strings.Join(msgs, "; "))
}

func (e *Pattern) Error() string { return e.Message() }

// Relativisation reports that an absolute advice reference could not be
// rewritten relative to a region: either no region contains it, or the
// containing region has no start.
type Relativisation struct {
	Cell string
	Msg  string
}

// Message implementation for Failure interface.
func (e *Relativisation) Message() string {
	return fmt.Sprintf("cannot relativise advice cell %s: %s", e.Cell, e.Msg)
}

func (e *Relativisation) Error() string { return e.Message() }

// VariableConsistency reports that a back-end observed two different
// variable names keyed by the same location handle.
type VariableConsistency struct {
	Key      string
	Existing string
	Fresh    string
}

// Message implementation for Failure interface.
func (e *VariableConsistency) Message() string {
	return fmt.Sprintf("location %s was named %q but is now being named %q", e.Key, e.Existing, e.Fresh)
}

func (e *VariableConsistency) Error() string { return e.Message() }

// BackendVerification reports that a back-end's native verifier rejected the
// lowered module. Diagnostics carries the verifier's own output verbatim;
// Fragment names the IR fragment being lowered when verification failed.
type BackendVerification struct {
	Backend     string
	Diagnostics string
	Fragment    string
}

// Message implementation for Failure interface.
func (e *BackendVerification) Message() string {
	return fmt.Sprintf("%s verifier rejected lowered module (%s): %s", e.Backend, e.Fragment, e.Diagnostics)
}

func (e *BackendVerification) Error() string { return e.Message() }

// Aggregate collects several failures into one error whose message lists
// each of them, one per line. Validation reports one Aggregate per group.
type Aggregate struct {
	Context  string
	Failures []Failure
}

// Message implementation for Failure interface.
func (e *Aggregate) Message() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message()
	}

	return fmt.Sprintf("%s:\n\t%s", e.Context, strings.Join(msgs, "\n\t"))
}

func (e *Aggregate) Error() string { return e.Message() }
