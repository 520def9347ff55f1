// SPDX-License-Identifier: MPL-2.0

// Package issue turns nswrap failures into guidance for the user.
//
// ActionableError carries the failed operation, the resource and remediation
// hints for terminal output. The catalog (Get, Values) holds one Markdown
// page per failure class, rendered with glamour below the error message.
package issue
