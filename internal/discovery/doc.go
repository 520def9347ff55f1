// SPDX-License-Identifier: MPL-2.0

// Package discovery selects the source files a run operates on.
//
// A Target names a root directory, a header file set and a source file set.
// Each set is a directory relative to the root plus doublestar glob patterns
// matched inside it; files whose base name is on the skip list are left out.
package discovery
