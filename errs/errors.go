// Package errs defines the sentinel errors returned by sss.
//
// Call sites wrap these values with additional context (type names, field
// names, element counts), so callers should compare with errors.Is rather
// than equality.
package errs

import "errors"

// Classification errors.
var (
	// ErrUnsupportedType is returned when no strategy applies to a type.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrNilTarget is returned when a decode target is not a non-nil pointer.
	ErrNilTarget = errors.New("decode target must be a non-nil pointer")
	// ErrInvalidCodec is returned when a custom strategy is incomplete.
	ErrInvalidCodec = errors.New("invalid codec")
	// ErrInvalidOption is returned when a configuration option rejects its value.
	ErrInvalidOption = errors.New("invalid option")
)

// Cursor errors.
var (
	// ErrTruncatedInput is returned when fewer bytes remain than a read requires.
	ErrTruncatedInput = errors.New("truncated input")
	// ErrShortBuffer is returned when an encode region is smaller than the encoded value.
	ErrShortBuffer = errors.New("buffer too short for encoded value")
	// ErrTrailingBytes is returned by exact loads when input remains after decoding.
	ErrTrailingBytes = errors.New("trailing bytes after decoded value")
	// ErrLengthOverflow is returned when a container count exceeds the configured limit.
	ErrLengthOverflow = errors.New("container length exceeds limit")
	// ErrValueOverflow is returned when a value does not fit its wire
	// representation, or a decoded integer does not fit the target type.
	ErrValueOverflow = errors.New("value overflows its representation")
)

// Sum type errors.
var (
	// ErrInvalidDiscriminant is returned when a union index or optional tag is out of range.
	ErrInvalidDiscriminant = errors.New("invalid discriminant")
	// ErrNilUnion is returned when encoding a union interface holding no value.
	ErrNilUnion = errors.New("union has no active alternative")
	// ErrUnknownAlternative is returned when a union holds a type outside its alternatives.
	ErrUnknownAlternative = errors.New("value is not a registered union alternative")
	// ErrTooManyAlternatives is returned when a union registers more than 256 alternatives.
	ErrTooManyAlternatives = errors.New("too many union alternatives")
	// ErrDuplicateAlternative is returned when a union lists the same type twice.
	ErrDuplicateAlternative = errors.New("duplicate union alternative")
	// ErrInvalidAlternative is returned when an alternative does not implement the union interface.
	ErrInvalidAlternative = errors.New("invalid union alternative")
)

// Frame errors.
var (
	ErrInvalidFrameHeader = errors.New("invalid frame header")
	ErrInvalidFrameMagic  = errors.New("invalid frame magic number")
	ErrChecksumMismatch   = errors.New("frame checksum mismatch")
	ErrInvalidCompression = errors.New("invalid compression type")
	ErrFrameTooLarge      = errors.New("frame payload too large")
)
