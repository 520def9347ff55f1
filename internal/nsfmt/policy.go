// SPDX-License-Identifier: MPL-2.0

package nsfmt

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// StripNone keeps existing markers as body content.
	StripNone StripMode = iota
	// StripAnchored collapses marker runs at the start and end of the body.
	StripAnchored
	// StripEverywhere removes every marker line in the file.
	StripEverywhere
)

var (
	// ErrUnknownPolicy is the sentinel error wrapped by UnknownPolicyError.
	ErrUnknownPolicy = errors.New("unknown policy")
	// ErrInvalidNamespace is the sentinel error wrapped by InvalidNamespaceError.
	ErrInvalidNamespace = errors.New("invalid namespace")

	// PolicyWrap wraps files that have no namespace block yet. Leading
	// comments stay above the block and wrapped files are left alone.
	PolicyWrap = Policy{Name: "wrap", SkipWrapped: true, PreludeComments: true}
	// PolicyNormalize collapses existing markers at the edges of the file
	// and re-wraps it. It always produces output. An open marker is
	// recognized in its one-line form or as "namespace N" with "{" on a
	// later line; blank lines between the two are tolerated and removed.
	PolicyNormalize = Policy{Name: "normalize", Strip: StripAnchored}
	// PolicyReset removes all markers and rebuilds the block. Any
	// preprocessor line in the leading run belongs to the prelude.
	PolicyReset = Policy{Name: "reset", AnyDirective: true, Strip: StripEverywhere}

	qualifiedIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(::[A-Za-z_][A-Za-z0-9_]*)*$`)
)

type (
	// StripMode selects how pre-existing namespace markers are removed.
	StripMode int

	// Policy is the configuration record that distinguishes the transforms.
	Policy struct {
		Name string
		// SkipWrapped leaves files that already contain an open marker unchanged.
		SkipWrapped bool
		// PreludeComments keeps leading comments outside the namespace block.
		PreludeComments bool
		// AnyDirective treats every # line as a prelude directive.
		AnyDirective bool
		// Strip selects how existing markers are removed.
		Strip StripMode
	}

	// UnknownPolicyError is returned by ParsePolicy for unrecognized names.
	// It wraps ErrUnknownPolicy for errors.Is() compatibility.
	UnknownPolicyError struct {
		Value string
	}

	// Namespace is a qualified C++ namespace name such as "engine::gfx".
	Namespace string

	// InvalidNamespaceError is returned when a Namespace is not a qualified
	// identifier. It wraps ErrInvalidNamespace for errors.Is() compatibility.
	InvalidNamespaceError struct {
		Value Namespace
	}
)

// Policies returns the built-in policies in display order.
func Policies() []Policy {
	return []Policy{PolicyWrap, PolicyNormalize, PolicyReset}
}

// PolicyNames returns the names accepted by ParsePolicy.
func PolicyNames() []string {
	names := make([]string, 0, 3)
	for _, p := range Policies() {
		names = append(names, p.Name)
	}
	return names
}

// ParsePolicy resolves a policy by name, ignoring case and surrounding space.
func ParsePolicy(name string) (Policy, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for _, p := range Policies() {
		if p.Name == normalized {
			return p, nil
		}
	}
	return Policy{}, &UnknownPolicyError{Value: name}
}

// String returns the policy name.
func (p Policy) String() string { return p.Name }

// Error implements the error interface for UnknownPolicyError.
func (e *UnknownPolicyError) Error() string {
	return fmt.Sprintf("unknown policy %q (valid: %s)", e.Value, strings.Join(PolicyNames(), ", "))
}

// Unwrap returns ErrUnknownPolicy for errors.Is() compatibility.
func (e *UnknownPolicyError) Unwrap() error { return ErrUnknownPolicy }

// String returns the namespace as written in source.
func (n Namespace) String() string { return string(n) }

// IsValid returns whether the Namespace is a qualified identifier
// (identifiers joined by "::", no surrounding whitespace).
func (n Namespace) IsValid() (bool, []error) {
	if !qualifiedIdent.MatchString(string(n)) {
		return false, []error{&InvalidNamespaceError{Value: n}}
	}
	return true, nil
}

// Error implements the error interface for InvalidNamespaceError.
func (e *InvalidNamespaceError) Error() string {
	return fmt.Sprintf("invalid namespace %q: want identifiers joined by \"::\"", e.Value)
}

// Unwrap returns ErrInvalidNamespace for errors.Is() compatibility.
func (e *InvalidNamespaceError) Unwrap() error { return ErrInvalidNamespace }
