// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/discovery"
	"github.com/rtxplore/nswrap/internal/issue"
	"github.com/rtxplore/nswrap/internal/nsfmt"
	"github.com/rtxplore/nswrap/internal/runner"
)

// issueStyle is the glamour style used for catalog entries.
const issueStyle = "dark"

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// issueFor maps a domain error to its catalog entry. It returns 0 for
// errors without one.
func issueFor(err error) issue.Id {
	var fileErr *runner.FileError
	switch {
	case errors.Is(err, config.ErrNoTargets):
		return issue.NoTargetsId
	case errors.Is(err, config.ErrTargetNotFound):
		return issue.TargetNotFoundId
	case errors.Is(err, nsfmt.ErrInvalidNamespace):
		return issue.InvalidNamespaceId
	case errors.Is(err, discovery.ErrDirNotFound):
		return issue.DirNotFoundId
	case errors.Is(err, nsfmt.ErrInvalidEncoding):
		return issue.InvalidEncodingId
	case errors.As(err, &fileErr) && fileErr.Op == "write":
		return issue.WriteFailedId
	case errors.Is(err, config.ErrInvalidConfig):
		return issue.ConfigLoadFailedId
	}
	return 0
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render(issueStyle)
		if renderErr != nil {
			fmt.Fprintln(stderr, WarningStyle.Render(fmt.Sprintf("failed to render issue %d: %v", svcErr.IssueID, renderErr)))
			return
		}
		fmt.Fprint(stderr, rendered)
	}
}
