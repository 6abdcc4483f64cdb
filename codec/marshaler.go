package codec

import (
	"encoding"
	"fmt"
	"reflect"

	"github.com/arloliu/sss/format"
)

// marshalerCodec adapts types implementing encoding.BinaryMarshaler or
// encoding.TextMarshaler. The marshaled form is stored as a length-prefixed
// byte string.
type marshalerCodec struct {
	typ   reflect.Type
	strat format.Strategy
}

var _ valueCodec = (*marshalerCodec)(nil)

func newMarshalerCodec(t reflect.Type, strat format.Strategy) *marshalerCodec {
	return &marshalerCodec{typ: t, strat: strat}
}

func (c *marshalerCodec) strategy() format.Strategy { return c.strat }
func (c *marshalerCodec) width() int                { return -1 }
func (c *marshalerCodec) minSize() int              { return lengthPrefixSize }

// receiver returns a value whose method set includes the marshal method,
// taking the address of v or of a copy when the method has a pointer receiver.
func (c *marshalerCodec) receiver(v reflect.Value) any {
	if v.CanAddr() {
		return v.Addr().Interface()
	}

	p := reflect.New(c.typ)
	p.Elem().Set(v)

	return p.Interface()
}

func (c *marshalerCodec) marshal(v reflect.Value) ([]byte, error) {
	recv := c.receiver(v)

	var (
		data []byte
		err  error
	)
	if c.strat == format.StrategyBinary {
		data, err = recv.(encoding.BinaryMarshaler).MarshalBinary() //nolint:forcetypeassert
	} else {
		data, err = recv.(encoding.TextMarshaler).MarshalText() //nolint:forcetypeassert
	}
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", c.typ, err)
	}

	return data, nil
}

func (c *marshalerCodec) size(v reflect.Value) (int, error) {
	data, err := c.marshal(v)
	if err != nil {
		return 0, err
	}

	return lengthPrefixSize + len(data), nil
}

func (c *marshalerCodec) encode(w *Writer, v reflect.Value) error {
	data, err := c.marshal(v)
	if err != nil {
		return err
	}

	return w.PutBytes(data)
}

func (c *marshalerCodec) decode(r *Reader, v reflect.Value) error {
	data, err := r.ReadBytes()
	if err != nil {
		return err
	}

	p := reflect.New(c.typ)
	if c.strat == format.StrategyBinary {
		err = p.Interface().(encoding.BinaryUnmarshaler).UnmarshalBinary(data) //nolint:forcetypeassert
	} else {
		err = p.Interface().(encoding.TextUnmarshaler).UnmarshalText(data) //nolint:forcetypeassert
	}
	if err != nil {
		return fmt.Errorf("unmarshal %s: %w", c.typ, err)
	}
	v.Set(p.Elem())

	return nil
}
