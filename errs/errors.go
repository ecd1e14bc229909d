// Package errs defines the sentinel errors shared across the fold packages.
//
// Callers should match these with errors.Is; most are wrapped with additional
// context via fmt.Errorf("%w: ...") at the point of failure.
package errs

import "errors"

var (
	// ErrMissingColumn indicates a table lacks a structurally required column
	// (VARIABLE, META or VALUE for normal-form tables).
	ErrMissingColumn = errors.New("missing required column")

	// ErrReservedName indicates a key or data column uses one of the reserved
	// normal-form column names.
	ErrReservedName = errors.New("reserved column name")

	// ErrCyclicMetadata indicates the metadata-description graph contains a
	// cycle (a variable reachable as its own metadata attribute).
	ErrCyclicMetadata = errors.New("cyclic metadata reference")

	// ErrNotEncoded indicates a value was expected to be an encoded
	// code/label mapping but is not.
	ErrNotEncoded = errors.New("value is not an encoding")

	// ErrMismatchedLengths indicates code and label sequences of different
	// lengths were supplied to the encoder.
	ErrMismatchedLengths = errors.New("codes and decodes have different lengths")

	// ErrNoDelimiter indicates no candidate delimiter character is absent
	// from every code and label, so the mapping cannot be serialized.
	ErrNoDelimiter = errors.New("no usable encoding delimiter")

	// ErrDuplicateCode indicates the code sequence passed to the encoder is
	// not injective.
	ErrDuplicateCode = errors.New("duplicate code in encoding")

	// ErrEmptyComponent indicates an empty code or label was passed to the
	// encoder. Empty components are ambiguous in the serialized form.
	ErrEmptyComponent = errors.New("empty code or label in encoding")

	// ErrUnknownCompression indicates an unrecognized compression type or
	// file extension.
	ErrUnknownCompression = errors.New("unknown compression type")
)
