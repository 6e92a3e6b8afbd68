// Package service defines the small interfaces the validation engine
// depends on. Implementations are injected by the caller; every oracle is
// optional, and checks that need an absent oracle are skipped.
package service

import "context"

// ValueSetOracle answers membership questions against externally defined
// value sets, identified by canonical URL. A version suffix on the URL
// ("|1.2.0") is honored when the implementation tracks versions.
type ValueSetOracle interface {
	// ContainsCoding reports whether the (system, code) pair is a member
	// of the value set.
	ContainsCoding(ctx context.Context, valueSetURL, system, code string) (bool, error)

	// ContainsString reports whether a bare string value matches any code
	// or display in the value set.
	ContainsString(ctx context.Context, valueSetURL, value string) (bool, error)
}
