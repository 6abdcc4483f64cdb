// Package codec implements the sss type-dispatch and encoding engine.
//
// A Registry resolves every Go type to exactly one encoding strategy the
// first time the type is used, compiles a codec for it and caches the
// result. Each compiled codec upholds one contract: the size it reports is
// exactly the number of bytes it writes, and decoding consumes exactly the
// bytes encoding produced. Records and arrays rely on this, because sibling
// values are laid out back to back with no delimiters.
//
// # Wire Format
//
// The format carries no type information. The decoder must know the static
// type that was encoded.
//
//	Type                         | Encoding
//	-----------------------------+----------------------------------------------
//	bool                         | 1 byte, 0 or 1
//	int8, uint8                  | 1 byte
//	int16, uint16                | 2 bytes
//	int32, uint32, float32       | 4 bytes
//	int, uint, int64, uint64     | 8 bytes
//	float64, complex64           | 8 bytes (complex: real then imaginary)
//	complex128                   | 16 bytes
//	string, []byte               | uint64 length, raw bytes
//	[]T                          | uint64 count, elements in index order
//	[N]T                         | N elements, no count
//	[]bool                       | uint64 count, ceil(count/8) bytes, LSB first
//	[N]bool                      | ceil(N/8) bytes, LSB first
//	map[K]V, Set[K]              | uint64 count, (key, value) pairs
//	*T, Optional[T]              | 1 tag byte (0 absent, 1 present), payload
//	registered interface         | 1 tag byte (alternative index), payload
//	struct                       | exported fields in declaration order
//	time.Duration                | int64 nanoseconds
//	time.Time                    | int64 nanoseconds since the Unix epoch
//	Path                         | slash-separated text, as string
//	encoding.BinaryMarshaler     | MarshalBinary output, as []byte
//	encoding.TextMarshaler       | MarshalText output, as []byte
//
// Fixed-width values use the registry's byte order, little-endian unless
// WithBigEndian is given. Struct fields tagged `sss:"-"` and unexported
// fields are not encoded.
//
// # Extension
//
// Register installs a TypedCodec for a type and takes precedence over every
// built-in strategy. RegisterUnion declares an interface type as a closed
// tagged union over an ordered list of concrete alternatives; the position in
// that list is the wire tag, so the list must never be reordered.
//
// # Errors
//
// Malformed input never panics. Reads past the end fail with
// errs.ErrTruncatedInput, out-of-range union and optional tags fail with
// errs.ErrInvalidDiscriminant and types without a strategy fail with
// errs.ErrUnsupportedType before any byte is produced.
package codec
