// SPDX-License-Identifier: MPL-2.0

package config

import "context"

type (
	// LoadOptions selects where configuration is read from.
	LoadOptions struct {
		// ConfigFilePath is the file given with --config. When set, it must
		// exist and no other location is searched.
		ConfigFilePath string
		// Dir is searched for nswrap.cue when ConfigFilePath is empty.
		// Defaults to the working directory.
		Dir string
	}

	// Provider loads configuration. The CLI depends on this interface so
	// tests can substitute a fixed configuration.
	Provider interface {
		Load(ctx context.Context, opts LoadOptions) (*Config, error)
	}

	// ProviderFunc adapts a function to Provider.
	ProviderFunc func(ctx context.Context, opts LoadOptions) (*Config, error)
)

// Load calls f.
func (f ProviderFunc) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	return f(ctx, opts)
}

// NewProvider returns the Provider that merges defaults, the CUE file and
// NSWRAP_ environment variables.
func NewProvider() Provider {
	return ProviderFunc(func(ctx context.Context, opts LoadOptions) (*Config, error) {
		cfg, _, err := loadWithOptions(ctx, opts)
		return cfg, err
	})
}
