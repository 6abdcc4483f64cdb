package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

// valueCodec is the compiled strategy for one Go type.
//
// size must return exactly the number of bytes encode writes for the same
// value, and decode must consume exactly that many bytes.
type valueCodec interface {
	strategy() format.Strategy
	// width returns the fixed encoded width, or -1 when the size depends on the value.
	width() int
	// minSize returns a lower bound on the encoded size of any value.
	minSize() int
	size(v reflect.Value) (int, error)
	encode(w *Writer, v reflect.Value) error
	// decode stores the decoded value into v, which must be settable.
	decode(r *Reader, v reflect.Value) error
}

// TypedCodec is a user-supplied strategy for values of type T.
//
// Size must report exactly the number of bytes Encode writes, and Decode
// must consume exactly the bytes Encode produced. Implementations may encode
// nested values through Write, Read and Size with the registry they are given.
type TypedCodec[T any] interface {
	Size(reg *Registry, v T) (int, error)
	Encode(w *Writer, v T) error
	Decode(r *Reader) (T, error)
}

// Funcs adapts three functions into a TypedCodec. MinSize is the smallest
// number of bytes any value encodes to.
type Funcs[T any] struct {
	Size    func(v T) (int, error)
	Encode  func(w *Writer, v T) error
	Decode  func(r *Reader) (T, error)
	MinSize int
}

type funcsCodec[T any] struct {
	f Funcs[T]
}

func (c funcsCodec[T]) Size(_ *Registry, v T) (int, error) { return c.f.Size(v) }
func (c funcsCodec[T]) Encode(w *Writer, v T) error       { return c.f.Encode(w, v) }
func (c funcsCodec[T]) Decode(r *Reader) (T, error)       { return c.f.Decode(r) }
func (c funcsCodec[T]) MinSize() int                      { return c.f.MinSize }

// Save encodes v with reg into a newly allocated buffer of exactly Size(v) bytes.
func Save[T any](reg *Registry, v T) ([]byte, error) {
	c, rv, err := prepare(reg, &v)
	if err != nil {
		return nil, err
	}

	n, err := c.size(rv)
	if err != nil {
		return nil, err
	}

	w := NewWriter(reg, make([]byte, n))
	if err := c.encode(w, rv); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// SaveTo encodes v into the front of dst and returns the number of bytes written.
// It fails with errs.ErrShortBuffer when dst is smaller than the encoding.
func SaveTo[T any](reg *Registry, v T, dst []byte) (int, error) {
	c, rv, err := prepare(reg, &v)
	if err != nil {
		return 0, err
	}

	w := NewWriter(reg, dst)
	if err := c.encode(w, rv); err != nil {
		return w.Len(), err
	}

	return w.Len(), nil
}

// Size returns the number of bytes Save would produce for v.
func Size[T any](reg *Registry, v T) (int, error) {
	c, rv, err := prepare(reg, &v)
	if err != nil {
		return 0, err
	}

	return c.size(rv)
}

// Load decodes a T from the front of data. Bytes after the decoded value are ignored.
func Load[T any](reg *Registry, data []byte) (T, error) {
	r := NewReader(reg, data)

	return Read[T](r)
}

// LoadExact decodes a T from data and fails with errs.ErrTrailingBytes when
// the encoding does not span all of data.
func LoadExact[T any](reg *Registry, data []byte) (T, error) {
	r := NewReader(reg, data)

	v, err := Read[T](r)
	if err != nil {
		return v, err
	}

	if r.Remaining() != 0 {
		var zero T
		return zero, fmt.Errorf("%w: %d of %d bytes unread", errs.ErrTrailingBytes, r.Remaining(), len(data))
	}

	return v, nil
}

// Write encodes v at the writer's position using the writer's registry.
func Write[T any](w *Writer, v T) error {
	c, rv, err := prepare(w.reg, &v)
	if err != nil {
		return err
	}

	return c.encode(w, rv)
}

// Read decodes a T at the reader's position using the reader's registry.
func Read[T any](r *Reader) (T, error) {
	var out T

	c, err := r.reg.lookup(reflect.TypeFor[T]())
	if err != nil {
		return out, err
	}

	if err := c.decode(r, reflect.ValueOf(&out).Elem()); err != nil {
		var zero T
		return zero, err
	}

	return out, nil
}

// prepare resolves the codec for the static type T and returns an
// addressable value holding *v.
func prepare[T any](reg *Registry, v *T) (valueCodec, reflect.Value, error) {
	if reg == nil {
		reg = Default()
	}

	c, err := reg.lookup(reflect.TypeFor[T]())
	if err != nil {
		return nil, reflect.Value{}, err
	}

	return c, reflect.ValueOf(v).Elem(), nil
}
