// SPDX-License-Identifier: MPL-2.0

package types

import (
	"errors"
	"fmt"
	"strconv"
)

// ExitCode is the process exit status reported by nswrap.
type ExitCode int

const (
	// ExitSuccess means every selected file was processed.
	ExitSuccess ExitCode = 0
	// ExitFailure means a file failed, a check found pending changes, or
	// the command could not start.
	ExitFailure ExitCode = 1

	maxExitCode ExitCode = 255
)

// ErrInvalidExitCode is the sentinel error wrapped by InvalidExitCodeError.
var ErrInvalidExitCode = errors.New("invalid exit code")

// InvalidExitCodeError reports a code the operating system cannot carry.
type InvalidExitCodeError struct {
	Value ExitCode
}

func (e *InvalidExitCodeError) Error() string {
	return fmt.Sprintf("exit code %d outside 0..%d", e.Value, maxExitCode)
}

func (e *InvalidExitCodeError) Unwrap() error { return ErrInvalidExitCode }

// Validate rejects codes outside 0..255.
func (c ExitCode) Validate() error {
	if c < ExitSuccess || c > maxExitCode {
		return &InvalidExitCodeError{Value: c}
	}
	return nil
}

// IsSuccess reports whether c is ExitSuccess.
func (c ExitCode) IsSuccess() bool { return c == ExitSuccess }

func (c ExitCode) String() string { return strconv.Itoa(int(c)) }
