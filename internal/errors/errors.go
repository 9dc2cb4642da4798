// Package errors provides error handling for pedigree.
//
// It re-exports github.com/cockroachdb/errors so callers get stack traces,
// wrapping, hints and markers from one import, and defines the sentinels
// that cross package boundaries.
//
// Usage:
//
//	if err := load(); err != nil {
//	    return errors.Wrapf(err, "load person %s", id)
//	}
//
//	if errors.Is(err, errors.ErrNotFound) {
//	    // focal person does not exist
//	}
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is           = crdb.Is
	IsAny        = crdb.IsAny
	As           = crdb.As
	Unwrap       = crdb.Unwrap
	UnwrapAll    = crdb.UnwrapAll
	Mark         = crdb.Mark
	GetAllHints  = crdb.GetAllHints
	FlattenHints = crdb.FlattenHints
)

// Sentinels. Wrap them to add context; errors.Is still matches.
var (
	// ErrNotFound means the requested person does not exist in the source.
	ErrNotFound = New("not found")

	// ErrLinkUnresolved means a referenced person or family could not be
	// fetched. Resolution code recovers from it by dropping the link.
	ErrLinkUnresolved = New("link unresolved")

	// ErrInvalidRequest means caller input was malformed.
	ErrInvalidRequest = New("invalid request")
)

// IsNotFound reports whether err is or wraps ErrNotFound.
func IsNotFound(err error) bool {
	return err != nil && Is(err, ErrNotFound)
}

// IsLinkUnresolved reports whether err is or wraps ErrLinkUnresolved.
func IsLinkUnresolved(err error) bool {
	return err != nil && Is(err, ErrLinkUnresolved)
}
