// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"github.com/rtxplore/nswrap/pkg/types"
)

// ExitError carries the process exit code out of a RunE handler. Err is nil
// when the failure was already printed.
type ExitError struct {
	Code types.ExitCode
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("nswrap exited with code %s", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }
