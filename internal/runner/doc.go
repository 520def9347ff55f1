// SPDX-License-Identifier: MPL-2.0

// Package runner applies a namespace transform policy to a set of files.
//
// Files are processed by a bounded pool of workers. Each file is read,
// transformed in memory and replaced atomically, independently of every
// other file; the outcome of each file is collected in a Report. Failures
// are isolated per file unless FailFast is set.
package runner
