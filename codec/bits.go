package codec

import (
	"reflect"

	"github.com/arloliu/sss/format"
)

// Bit-packed sequences store bit i of the value at bit (i % 8) of byte
// (i / 8), least significant bit first. Unused trailing bits are zero.

func packedLen(n int) int {
	if n%8 == 0 {
		return n / 8
	}

	return n/8 + 1
}

func packBits(dst []byte, v reflect.Value, n int) {
	for i := range n {
		if v.Index(i).Bool() {
			dst[i/8] |= 1 << (i % 8)
		}
	}
}

func unpackBits(src []byte, v reflect.Value, n int) {
	for i := range n {
		v.Index(i).SetBool(src[i/8]&(1<<(i%8)) != 0)
	}
}

// bitVectorCodec encodes []bool as a bit count followed by the packed bytes.
type bitVectorCodec struct{}

var _ valueCodec = bitVectorCodec{}

func (bitVectorCodec) strategy() format.Strategy { return format.StrategyBits }
func (bitVectorCodec) width() int                { return -1 }
func (bitVectorCodec) minSize() int              { return lengthPrefixSize }

func (bitVectorCodec) size(v reflect.Value) (int, error) {
	return lengthPrefixSize + packedLen(v.Len()), nil
}

func (bitVectorCodec) encode(w *Writer, v reflect.Value) error {
	n := v.Len()
	if err := w.PutLength(n); err != nil {
		return err
	}

	dst, err := w.zeroed(packedLen(n))
	if err != nil {
		return err
	}
	packBits(dst, v, n)

	return nil
}

func (bitVectorCodec) decode(r *Reader, v reflect.Value) error {
	n, err := r.ReadLength()
	if err != nil {
		return err
	}

	src, err := r.Next(packedLen(n))
	if err != nil {
		r.pos -= lengthPrefixSize
		return err
	}

	if n == 0 {
		v.SetZero()
		return nil
	}

	s := reflect.MakeSlice(v.Type(), n, n)
	unpackBits(src, s, n)
	v.Set(s)

	return nil
}

// bitSetCodec encodes [N]bool as ceil(N/8) packed bytes with no count.
type bitSetCodec struct {
	n int
}

var _ valueCodec = bitSetCodec{}

func (c bitSetCodec) strategy() format.Strategy { return format.StrategyBits }
func (c bitSetCodec) width() int                { return packedLen(c.n) }
func (c bitSetCodec) minSize() int              { return packedLen(c.n) }

func (c bitSetCodec) size(reflect.Value) (int, error) {
	return packedLen(c.n), nil
}

func (c bitSetCodec) encode(w *Writer, v reflect.Value) error {
	dst, err := w.zeroed(packedLen(c.n))
	if err != nil {
		return err
	}
	packBits(dst, v, c.n)

	return nil
}

func (c bitSetCodec) decode(r *Reader, v reflect.Value) error {
	src, err := r.Next(packedLen(c.n))
	if err != nil {
		return err
	}
	unpackBits(src, v, c.n)

	return nil
}
