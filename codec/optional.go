package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

const (
	tagAbsent  = 0
	tagPresent = 1
)

// optionalMarker is implemented by Optional[T]; the struct layout is
// {Value T; Valid bool}.
type optionalMarker interface {
	isOptional()
}

func readPresence(r *Reader) (bool, error) {
	tag, err := r.ReadUint8()
	if err != nil {
		return false, err
	}

	switch tag {
	case tagAbsent:
		return false, nil
	case tagPresent:
		return true, nil
	default:
		r.pos--
		return false, fmt.Errorf("%w: optional tag %d", errs.ErrInvalidDiscriminant, tag)
	}
}

// pointerCodec encodes *T as a presence byte followed by the pointee when
// the pointer is non-nil.
type pointerCodec struct {
	typ  reflect.Type
	elem valueCodec
}

var _ valueCodec = (*pointerCodec)(nil)

func (c *pointerCodec) strategy() format.Strategy { return format.StrategyOptional }
func (c *pointerCodec) width() int                { return -1 }
func (c *pointerCodec) minSize() int              { return 1 }

func (c *pointerCodec) size(v reflect.Value) (int, error) {
	if v.IsNil() {
		return 1, nil
	}

	n, err := c.elem.size(v.Elem())
	if err != nil {
		return 0, err
	}

	return 1 + n, nil
}

func (c *pointerCodec) encode(w *Writer, v reflect.Value) error {
	if v.IsNil() {
		return w.PutUint8(tagAbsent)
	}

	if err := w.PutUint8(tagPresent); err != nil {
		return err
	}

	return c.elem.encode(w, v.Elem())
}

func (c *pointerCodec) decode(r *Reader, v reflect.Value) error {
	present, err := readPresence(r)
	if err != nil {
		return err
	}

	if !present {
		v.SetZero()
		return nil
	}

	p := reflect.New(c.typ.Elem())
	if err := c.elem.decode(r, p.Elem()); err != nil {
		return err
	}
	v.Set(p)

	return nil
}

// optionalValueCodec encodes Optional[T] with the same layout as *T.
type optionalValueCodec struct {
	elem valueCodec
}

var _ valueCodec = (*optionalValueCodec)(nil)

func (b *builder) optionalValueCodec(t reflect.Type) (valueCodec, error) {
	if t.NumField() != 2 || t.Field(1).Type.Kind() != reflect.Bool {
		return nil, fmt.Errorf("%w: %s is not an optional layout", errs.ErrUnsupportedType, t)
	}

	elem, err := b.compile(t.Field(0).Type)
	if err != nil {
		return nil, fmt.Errorf("value of %s: %w", t, err)
	}

	return &optionalValueCodec{elem: elem}, nil
}

func (c *optionalValueCodec) strategy() format.Strategy { return format.StrategyOptional }
func (c *optionalValueCodec) width() int                { return -1 }
func (c *optionalValueCodec) minSize() int              { return 1 }

func (c *optionalValueCodec) size(v reflect.Value) (int, error) {
	if !v.Field(1).Bool() {
		return 1, nil
	}

	n, err := c.elem.size(v.Field(0))
	if err != nil {
		return 0, err
	}

	return 1 + n, nil
}

func (c *optionalValueCodec) encode(w *Writer, v reflect.Value) error {
	if !v.Field(1).Bool() {
		return w.PutUint8(tagAbsent)
	}

	if err := w.PutUint8(tagPresent); err != nil {
		return err
	}

	return c.elem.encode(w, v.Field(0))
}

func (c *optionalValueCodec) decode(r *Reader, v reflect.Value) error {
	present, err := readPresence(r)
	if err != nil {
		return err
	}

	v.SetZero()
	if !present {
		return nil
	}

	if err := c.elem.decode(r, v.Field(0)); err != nil {
		return err
	}
	v.Field(1).SetBool(true)

	return nil
}
