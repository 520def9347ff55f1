// SPDX-License-Identifier: MPL-2.0

package runner

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/zeebo/blake3"
)

const (
	// OutcomeCanceled means the file was not processed because the run was
	// canceled before its turn.
	OutcomeCanceled Outcome = iota
	// OutcomeWritten means the transformed text was written back.
	OutcomeWritten
	// OutcomeUnchanged means the output equals the input. The file is still
	// rewritten unless the run is a dry run or SkipUnchanged is set.
	OutcomeUnchanged
	// OutcomeSkippedWrapped means the policy left an already wrapped file alone.
	OutcomeSkippedWrapped
	// OutcomeWouldChange means a dry run found that the file would change.
	OutcomeWouldChange
	// OutcomeFailed means reading, decoding or writing the file failed.
	OutcomeFailed
)

type (
	// Outcome is the per-file result classification.
	Outcome int

	// Digest is a BLAKE3-256 content digest.
	Digest [32]byte

	// FileResult records what happened to one file.
	FileResult struct {
		Path    string
		Outcome Outcome
		// Changed is true when the transformed bytes differ from the input.
		Changed bool
		Before  Digest
		After   Digest
		HadBOM  bool
		HadCRLF bool
		// Err is set for OutcomeFailed and OutcomeCanceled.
		Err error
	}

	// FileError is the typed failure of a single file.
	FileError struct {
		// Op is the failing step: "read", "transform" or "write".
		Op   string
		Path string
		Err  error
	}

	// Report holds the results of a run in input order.
	Report struct {
		Results []FileResult
	}
)

// String returns a short lower-case label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeUnchanged:
		return "unchanged"
	case OutcomeSkippedWrapped:
		return "skipped"
	case OutcomeWouldChange:
		return "would change"
	case OutcomeFailed:
		return "failed"
	default:
		return "canceled"
	}
}

func digestOf(data []byte) Digest {
	return Digest(blake3.Sum256(data))
}

// String returns the first 16 hex digits of the digest.
func (d Digest) String() string {
	return hex.EncodeToString(d[:8])
}

// IsZero reports whether no digest was computed.
func (d Digest) IsZero() bool {
	return d == Digest{}
}

// Error implements the error interface for FileError.
func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error { return e.Err }

// Count returns the number of results with outcome o.
func (r *Report) Count(o Outcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == o {
			n++
		}
	}
	return n
}

// Filter returns the results with outcome o, in input order.
func (r *Report) Filter(o Outcome) []FileResult {
	var out []FileResult
	for _, res := range r.Results {
		if res.Outcome == o {
			out = append(out, res)
		}
	}
	return out
}

// Failed returns the failed results.
func (r *Report) Failed() []FileResult {
	return r.Filter(OutcomeFailed)
}

// Err joins the errors of all failed files, or returns nil.
func (r *Report) Err() error {
	var errs []error
	for _, res := range r.Failed() {
		errs = append(errs, res.Err)
	}
	return errors.Join(errs...)
}
