// SPDX-License-Identifier: MPL-2.0

// Package nsfmt is the namespace transform engine.
//
// A C-family source file is split into a prelude (include/pragma directives,
// blank lines and, for some policies, leading comments) and a body. The body
// is wrapped in a single canonical namespace block:
//
//	#include "Object.hpp"
//
//	namespace engine::gfx
//	{
//
//	...body...
//
//	}  // namespace engine::gfx
//
// Lines are classified by shallow textual prefixes only; no C-family syntax
// is parsed. Three policies share the engine: PolicyWrap adds the block to
// files that lack it, PolicyNormalize collapses existing markers at the
// edges of the body and re-wraps, and PolicyReset removes every marker and
// rebuilds the block from scratch.
package nsfmt
