// SPDX-License-Identifier: MPL-2.0

// Package config handles nswrap configuration using Viper with CUE as the file format.
//
// Configuration is read from nswrap.cue in the working directory, or from the
// file named by --config. It lists the targets to process (a namespace plus
// the header and source directories that belong to it) and run settings such
// as the worker count. Files are validated against an embedded CUE schema
// (config_schema.cue); environment variables prefixed with NSWRAP_ override
// scalar settings.
package config
