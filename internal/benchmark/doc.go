// SPDX-License-Identifier: MPL-2.0

// Package benchmark provides benchmarks for PGO profile generation.
// These benchmarks cover the hot paths of a policy run:
//   - CUE configuration loading and validation
//   - File set discovery
//   - Line classification and the three transform policies
//   - The concurrent runner over a generated source tree
//
// To generate a profile, run:
//
//	go test ./internal/benchmark -bench=. -run=^$ -cpuprofile=default.pgo
package benchmark
