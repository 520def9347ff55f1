// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rtxplore/nswrap/internal/config"
	"github.com/rtxplore/nswrap/internal/nsfmt"
)

// adhocTargetName names the target built from command-line flags.
const adhocTargetName config.TargetName = "adhoc"

var (
	errNamespaceRequired = errors.New("--namespace is required with --root, --headers, --sources or --skip")
	errTargetWithAdhoc   = errors.New("--target cannot be combined with --namespace")
)

// targetFlags selects configured targets or describes an ad-hoc one.
type targetFlags struct {
	names     []string
	namespace string
	root      string
	headers   string
	sources   string
	skip      []string
}

func (f *targetFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringSliceVarP(&f.names, "target", "t", nil, "configured target to process (repeatable, default all)")
	fs.StringVar(&f.namespace, "namespace", "", "namespace for an ad-hoc target (e.g. engine::gfx)")
	fs.StringVar(&f.root, "root", "", "root directory of the ad-hoc target")
	fs.StringVar(&f.headers, "headers", "", "header directory of the ad-hoc target, relative to --root")
	fs.StringVar(&f.sources, "sources", "", "source directory of the ad-hoc target, relative to --root")
	fs.StringSliceVar(&f.skip, "skip", nil, "file name never processed (repeatable)")
}

func (f *targetFlags) adhoc() bool {
	return f.namespace != ""
}

// resolveTargets returns the targets a command operates on and the directory their
// relative roots are resolved against. Ad-hoc targets resolve against the
// working directory, configured ones against the config file's directory.
func (a *app) resolveTargets(f *targetFlags) ([]config.TargetConfig, string, error) {
	if !f.adhoc() {
		if f.root != "" || f.headers != "" || f.sources != "" || len(f.skip) > 0 {
			return nil, "", errNamespaceRequired
		}
		targets, err := a.cfg.Select(f.names)
		if err != nil {
			return nil, "", newServiceError(err, issueFor(err), "")
		}
		return targets, a.cfg.BaseDir, nil
	}

	if len(f.names) > 0 {
		return nil, "", errTargetWithAdhoc
	}
	t := config.TargetConfig{
		Name:      adhocTargetName,
		Namespace: nsfmt.Namespace(f.namespace),
		Root:      f.root,
		Skip:      f.skip,
	}
	if f.headers != "" {
		t.Headers = &config.FileSetConfig{Dir: f.headers}
	}
	if f.sources != "" {
		t.Sources = &config.FileSetConfig{Dir: f.sources}
	}
	if valid, errs := t.IsValid(); !valid {
		err := errors.Join(errs...)
		return nil, "", newServiceError(fmt.Errorf("ad-hoc target: %w", err), issueFor(err), "")
	}
	return []config.TargetConfig{t}, "", nil
}
