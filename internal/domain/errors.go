package domain

import "errors"

var (
	// ErrNotFound is returned when an operation references an operator or link id that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicateIdentifier is returned when creating an operator or link whose id is already taken.
	ErrDuplicateIdentifier = errors.New("duplicate identifier")
	// ErrInvalidEndpoint is returned when a link references a missing operator or port.
	ErrInvalidEndpoint = errors.New("invalid endpoint")
	// ErrUnknownOperatorType is returned when the metadata catalog has no schema for an operator type.
	ErrUnknownOperatorType = errors.New("unknown operator type")
	// ErrMissingIdentifier is returned when an operator or link is created without an id.
	ErrMissingIdentifier = errors.New("missing identifier")
)
