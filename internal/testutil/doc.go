// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helper functions for tests that handle errors
// appropriately, reducing boilerplate and ensuring consistent error handling.
//
// The helpers build source trees on disk (WriteTree, SourceTree) and read
// them back (ReadFile) so that CLI, runner and benchmark tests share fixtures.
package testutil
