package codec

import (
	"reflect"

	"github.com/arloliu/sss/format"
)

// stringCodec encodes strings as a byte count followed by the raw bytes.
// The bytes are written as-is; no encoding validation is performed.
type stringCodec struct{}

var _ valueCodec = stringCodec{}

func (stringCodec) strategy() format.Strategy { return format.StrategyText }
func (stringCodec) width() int                { return -1 }
func (stringCodec) minSize() int              { return lengthPrefixSize }

func (stringCodec) size(v reflect.Value) (int, error) {
	return lengthPrefixSize + v.Len(), nil
}

func (stringCodec) encode(w *Writer, v reflect.Value) error {
	return w.PutString(v.String())
}

func (stringCodec) decode(r *Reader, v reflect.Value) error {
	s, err := r.ReadString()
	if err != nil {
		return err
	}
	v.SetString(s)

	return nil
}

// bytesCodec is the bulk form of a byte sequence: same layout as a slice of
// uint8, copied in one step.
type bytesCodec struct{}

var _ valueCodec = bytesCodec{}

func (bytesCodec) strategy() format.Strategy { return format.StrategySequence }
func (bytesCodec) width() int                { return -1 }
func (bytesCodec) minSize() int              { return lengthPrefixSize }

func (bytesCodec) size(v reflect.Value) (int, error) {
	return lengthPrefixSize + v.Len(), nil
}

func (bytesCodec) encode(w *Writer, v reflect.Value) error {
	return w.PutBytes(v.Bytes())
}

func (bytesCodec) decode(r *Reader, v reflect.Value) error {
	b, err := r.ReadBytes()
	if err != nil {
		return err
	}

	if b == nil {
		v.SetZero()
		return nil
	}

	v.SetBytes(b)

	return nil
}
