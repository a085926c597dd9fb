package rigvalidator

import "errors"

// Extraction failures are distinct from validation results. A missing or
// malformed source never produces mismatch issues; it surfaces as an
// error wrapping one of these sentinels so callers can match with
// errors.Is regardless of which backend produced it.
var (
	// ErrNotFound reports that a requested skeleton, mesh, or node does
	// not exist in the source.
	ErrNotFound = errors.New("not found")

	// ErrBadSource reports that the source exists but its schema data is
	// absent, inconsistent, or otherwise unusable.
	ErrBadSource = errors.New("malformed source")
)
