// Package sss provides a compact, schema-less binary serialization format for
// Go values.
//
// Every supported type has a size, encode and decode contract chosen from
// its shape: scalars are stored as fixed-width little-endian bytes, structs
// as their exported fields in declaration order, slices and strings with an
// 8-byte length prefix, bool containers as packed bits, pointers and
// Optional values with a presence byte, and registered interfaces as tagged
// unions. The encoding carries no field names or type information, so both
// sides must agree on the Go types.
//
// # Basic Usage
//
//	type Reading struct {
//	    Sensor string
//	    Value  float64
//	    At     time.Time
//	    Alarm  sss.Optional[uint16]
//	}
//
//	data, err := sss.Save(Reading{Sensor: "t1", Value: 21.5, At: time.Now()})
//	if err != nil {
//	    return err
//	}
//
//	r, err := sss.Load[Reading](data)
//
// # Registries
//
// The package-level functions use codec.Default(). Applications that need a
// different byte order, a tighter container length limit, or their own
// custom strategies create a separate registry:
//
//	reg, err := sss.NewRegistry(codec.WithBigEndian(), codec.WithMaxLength(1<<16))
//	err = codec.RegisterUnion[Shape](reg, Circle{}, Square{})
//	data, err := codec.Save(reg, shapes)
//
// # Package Structure
//
// This package wraps the codec package for the common cases. Frames with
// compression and checksums live in the frame package.
package sss

import (
	"github.com/arloliu/sss/codec"
	"github.com/arloliu/sss/frame"
)

type (
	// Registry holds strategies and compiled codecs; see codec.Registry.
	Registry = codec.Registry
	// Writer is the encode cursor passed to custom strategies.
	Writer = codec.Writer
	// Reader is the decode cursor passed to custom strategies.
	Reader = codec.Reader
	// Path is a filesystem path stored with forward slashes.
	Path = codec.Path
)

// Optional holds a value of type T or nothing.
type Optional[T any] = codec.Optional[T]

// Pair is a two-field record.
type Pair[A, B any] = codec.Pair[A, B]

// Set is an unordered collection of unique keys.
type Set[K comparable] = codec.Set[K]

// NewRegistry creates a registry with the builtin strategies installed.
func NewRegistry(opts ...codec.Option) (*Registry, error) {
	return codec.NewRegistry(opts...)
}

// Save encodes v with the default registry.
func Save[T any](v T) ([]byte, error) {
	return codec.Save(codec.Default(), v)
}

// SaveTo encodes v into dst with the default registry and returns the
// number of bytes written. dst must hold at least Size(v) bytes.
func SaveTo[T any](v T, dst []byte) (int, error) {
	return codec.SaveTo(codec.Default(), v, dst)
}

// Size returns the exact encoded size of v.
func Size[T any](v T) (int, error) {
	return codec.Size(codec.Default(), v)
}

// Load decodes a T from the start of data. Bytes after the value are ignored;
// use LoadExact to reject them.
func Load[T any](data []byte) (T, error) {
	return codec.Load[T](codec.Default(), data)
}

// LoadExact decodes a T that must span all of data.
func LoadExact[T any](data []byte) (T, error) {
	return codec.LoadExact[T](codec.Default(), data)
}

// Register installs a custom strategy for T in the default registry.
func Register[T any](c codec.TypedCodec[T]) error {
	return codec.Register(codec.Default(), c)
}

// RegisterFuncs installs a function-based strategy for T in the default registry.
func RegisterFuncs[T any](f codec.Funcs[T]) error {
	return codec.RegisterFuncs(codec.Default(), f)
}

// RegisterUnion declares the interface I as a tagged union over the concrete
// types of alts in the default registry. The position of each alternative is
// its wire tag.
func RegisterUnion[I any](alts ...I) error {
	return codec.RegisterUnion(codec.Default(), alts...)
}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return codec.Some(v)
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return codec.None[T]()
}

// Seal encodes v with the default registry and wraps it in a frame.
func Seal[T any](v T, opts ...frame.Option) ([]byte, error) {
	return frame.Save(codec.Default(), v, opts...)
}

// Open decodes a T from a frame produced by Seal. Frames larger than
// frame.DefaultMaxSize need frame.WithMaxSize.
func Open[T any](data []byte, opts ...frame.Option) (T, error) {
	return frame.Load[T](codec.Default(), data, opts...)
}
