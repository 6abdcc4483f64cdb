package codec

import (
	"fmt"
	"math"

	"github.com/arloliu/sss/endian"
	"github.com/arloliu/sss/errs"
)

// Reader is a read cursor over an immutable byte region.
//
// Each read removes its bytes from the front of the remaining input. Reads
// that need more bytes than remain fail with errs.ErrTruncatedInput and leave
// the cursor unchanged.
type Reader struct {
	buf       []byte
	pos       int
	engine    endian.EndianEngine
	reg       *Registry
	maxLength int
}

// NewReader creates a reader over data using the byte order and limits of reg.
// A nil reg selects the default registry.
func NewReader(reg *Registry, data []byte) *Reader {
	if reg == nil {
		reg = Default()
	}

	return &Reader{buf: data, engine: reg.engine, reg: reg, maxLength: reg.maxLength}
}

// Registry returns the registry the reader dispatches nested values through.
func (r *Reader) Registry() *Registry {
	return r.reg
}

// Consumed returns the number of bytes read so far.
func (r *Reader) Consumed() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// Next returns the next n bytes without copying and advances past them.
// The returned slice aliases the input.
func (r *Reader) Next(n int) ([]byte, error) {
	if n < 0 || n > len(r.buf)-r.pos {
		return nil, fmt.Errorf("%w: need %d bytes, %d remaining", errs.ErrTruncatedInput, n, len(r.buf)-r.pos)
	}

	b := r.buf[r.pos : r.pos+n : r.pos+n]
	r.pos += n

	return b, nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.Next(1)
	if err != nil {
		return 0, err
	}

	return b[0], nil
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUint8()

	return b != 0, err
}

func (r *Reader) ReadUint16() (uint16, error) {
	b, err := r.Next(2)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint16(b), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.Next(4)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint32(b), nil
}

func (r *Reader) ReadUint64() (uint64, error) {
	b, err := r.Next(8)
	if err != nil {
		return 0, err
	}

	return r.engine.Uint64(b), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	v, err := r.ReadUint64()

	return int64(v), err //nolint:gosec
}

func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()

	return math.Float32frombits(v), err
}

func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()

	return math.Float64frombits(v), err
}

// ReadLength reads a uint64 count prefix and validates it against the
// configured maximum length.
func (r *Reader) ReadLength() (int, error) {
	return r.readCount(0)
}

// readCount reads a count prefix for elements that each occupy at least
// minElem bytes. Counts that cannot fit in the remaining input are rejected
// before the caller allocates anything.
func (r *Reader) readCount(minElem int) (int, error) {
	raw, err := r.ReadUint64()
	if err != nil {
		return 0, err
	}

	if raw > uint64(r.maxLength) { //nolint:gosec
		r.pos -= 8
		return 0, fmt.Errorf("%w: count %d, limit %d", errs.ErrLengthOverflow, raw, r.maxLength)
	}

	n := int(raw) //nolint:gosec
	if minElem > 0 && n > r.Remaining()/minElem {
		r.pos -= 8
		return 0, fmt.Errorf("%w: %d elements of at least %d bytes, %d remaining",
			errs.ErrTruncatedInput, n, minElem, r.Remaining())
	}

	return n, nil
}

// ReadString reads a length-prefixed string.
func (r *Reader) ReadString() (string, error) {
	n, err := r.readCount(1)
	if err != nil {
		return "", err
	}

	b, err := r.Next(n)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// ReadBytes reads a length-prefixed byte slice into newly allocated memory.
// A zero length yields nil.
func (r *Reader) ReadBytes() ([]byte, error) {
	n, err := r.readCount(1)
	if err != nil {
		return nil, err
	}

	b, err := r.Next(n)
	if err != nil || n == 0 {
		return nil, err
	}

	out := make([]byte, n)
	copy(out, b)

	return out, nil
}
