/*
Package core provides the central logic for srvdomains: the analysis result record,
the analyzer that turns server names into a per-domain snapshot, the console report,
and the error classification the command line maps to exit codes.
*/
package core

/*
srvdomains — server domain distribution tracker in Go
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of an analysis run.
type Kind int

const (
	// KindUnexpected is anything that is neither a missing input nor an I/O failure.
	KindUnexpected Kind = iota
	// KindInputNotFound means the server list does not exist. Nothing was written.
	KindInputNotFound
	// KindIO covers read and write failures on the server list or the history log.
	KindIO
)

// String returns a short label, also used as a metrics label value.
func (k Kind) String() string {
	switch k {
	case KindInputNotFound:
		return "input_not_found"
	case KindIO:
		return "io"
	default:
		return "unexpected"
	}
}

// ErrInputNotFound is wrapped by every KindInputNotFound RunError.
var ErrInputNotFound = errors.New("input file not found")

// RunError carries the Kind of a failed run along with the operation and path involved.
// None of these errors are retryable; a run is single-shot.
type RunError struct {
	Kind Kind
	Op   string // e.g. "reading server names"
	Path string
	Err  error
}

// Error implements the error interface.
func (e *RunError) Error() string {
	switch {
	case e.Kind == KindInputNotFound:
		return fmt.Sprintf("%v: %s", ErrInputNotFound, e.Path)
	case e.Path == "":
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *RunError) Unwrap() error {
	return e.Err
}

// NewInputNotFound builds the error returned when the server list is missing.
func NewInputNotFound(path string) error {
	return &RunError{Kind: KindInputNotFound, Op: "opening server list", Path: path, Err: ErrInputNotFound}
}

// WrapIO tags err as an I/O failure of op on path. A nil err stays nil.
func WrapIO(op, path string, err error) error {
	if err == nil {
		return nil
	}
	return &RunError{Kind: KindIO, Op: op, Path: path, Err: err}
}

// KindOf reports the Kind of err. Errors that are not a *RunError are KindUnexpected.
func KindOf(err error) Kind {
	var re *RunError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnexpected
}

// ExitCode maps err to the process exit status: 0 for nil, 2 for a missing input,
// 1 for I/O failures and 3 for everything else.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindInputNotFound:
		return 2
	case KindIO:
		return 1
	default:
		return 3
	}
}
