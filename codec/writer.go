package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/sss/endian"
	"github.com/arloliu/sss/errs"
)

// Writer is a write cursor over a caller-owned byte region.
//
// Every put is bounds-checked against the region; a put that does not fit
// fails with errs.ErrShortBuffer and leaves the cursor unchanged. A Writer is
// owned by a single encode call and is not safe for concurrent use.
type Writer struct {
	buf    []byte
	pos    int
	engine endian.EndianEngine
	reg    *Registry
}

// NewWriter creates a writer over dst using the byte order of reg.
// A nil reg selects the default registry.
func NewWriter(reg *Registry, dst []byte) *Writer {
	if reg == nil {
		reg = Default()
	}

	return &Writer{buf: dst, engine: reg.engine, reg: reg}
}

// Registry returns the registry the writer dispatches nested values through.
func (w *Writer) Registry() *Registry {
	return w.reg
}

// Len returns the number of bytes written so far.
func (w *Writer) Len() int {
	return w.pos
}

// Available returns the number of bytes left in the region.
func (w *Writer) Available() int {
	return len(w.buf) - w.pos
}

// Bytes returns the written prefix of the region.
func (w *Writer) Bytes() []byte {
	return w.buf[:w.pos]
}

func (w *Writer) reserve(n int) ([]byte, error) {
	if n > len(w.buf)-w.pos {
		return nil, fmt.Errorf("%w: need %d bytes, %d available", errs.ErrShortBuffer, n, len(w.buf)-w.pos)
	}

	b := w.buf[w.pos : w.pos+n : w.pos+n]
	w.pos += n

	return b, nil
}

// PutUint8 writes a single byte.
func (w *Writer) PutUint8(v uint8) error {
	b, err := w.reserve(1)
	if err != nil {
		return err
	}
	b[0] = v

	return nil
}

// PutBool writes 1 for true and 0 for false.
func (w *Writer) PutBool(v bool) error {
	if v {
		return w.PutUint8(1)
	}

	return w.PutUint8(0)
}

func (w *Writer) PutUint16(v uint16) error {
	b, err := w.reserve(2)
	if err != nil {
		return err
	}
	w.engine.PutUint16(b, v)

	return nil
}

func (w *Writer) PutUint32(v uint32) error {
	b, err := w.reserve(4)
	if err != nil {
		return err
	}
	w.engine.PutUint32(b, v)

	return nil
}

func (w *Writer) PutUint64(v uint64) error {
	b, err := w.reserve(8)
	if err != nil {
		return err
	}
	w.engine.PutUint64(b, v)

	return nil
}

func (w *Writer) PutInt64(v int64) error {
	return w.PutUint64(uint64(v)) //nolint:gosec
}

func (w *Writer) PutFloat32(v float32) error {
	return w.PutUint32(math.Float32bits(v))
}

func (w *Writer) PutFloat64(v float64) error {
	return w.PutUint64(math.Float64bits(v))
}

// PutLength writes a container count or byte length as a uint64 prefix.
func (w *Writer) PutLength(n int) error {
	return w.PutUint64(uint64(n)) //nolint:gosec
}

// PutRaw copies data into the region without a length prefix.
func (w *Writer) PutRaw(data []byte) error {
	b, err := w.reserve(len(data))
	if err != nil {
		return err
	}
	copy(b, data)

	return nil
}

// PutString writes a length-prefixed string.
func (w *Writer) PutString(s string) error {
	b, err := w.reserve(lengthPrefixSize + len(s))
	if err != nil {
		return err
	}
	w.engine.PutUint64(b, uint64(len(s)))
	copy(b[lengthPrefixSize:], s)

	return nil
}

// PutBytes writes a length-prefixed byte slice.
func (w *Writer) PutBytes(data []byte) error {
	b, err := w.reserve(lengthPrefixSize + len(data))
	if err != nil {
		return err
	}
	w.engine.PutUint64(b, uint64(len(data)))
	copy(b[lengthPrefixSize:], data)

	return nil
}

// zeroed reserves n bytes and clears them.
func (w *Writer) zeroed(n int) ([]byte, error) {
	b, err := w.reserve(n)
	if err != nil {
		return nil, err
	}
	clear(b)

	return b, nil
}
