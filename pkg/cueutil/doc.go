// SPDX-License-Identifier: MPL-2.0

// Package cueutil parses CUE documents against an embedded schema.
//
// ParseAndDecode compiles the schema, unifies the user document with one of
// its definitions, validates the result and decodes it:
//
//	//go:embed config_schema.cue
//	var schema []byte
//
//	res, err := cueutil.ParseAndDecode[map[string]any](schema, data, "#Config",
//		cueutil.WithFilename("nswrap.cue"))
//
// Errors name the file and the JSON path of the offending field, e.g.
// "nswrap.cue: targets[0].namespace: invalid value". Checks that run after
// decoding report ValidationError with the same shape.
package cueutil
