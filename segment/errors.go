package segment

import "errors"

var (
	// ErrInvalidArgument is returned when a precondition on an operation's
	// inputs fails: a zero offset, negative labels, an empty field, or
	// malformed map construction data.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrDimensionMismatch is returned when two fields that must share a
	// shape do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrInvalidState is returned for lookups on a map whose domain has
	// become empty through update compaction.
	ErrInvalidState = errors.New("invalid state")

	// ErrTypeConstraint is returned when a non-integer element type is given
	// where labels are required.
	ErrTypeConstraint = errors.New("type constraint violation")
)
