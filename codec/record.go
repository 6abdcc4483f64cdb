package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/sss/format"
)

// TagName is the struct tag key read by the record strategy.
// A field tagged `sss:"-"` is not encoded.
const TagName = "sss"

// Field describes one encoded field of a record, in wire order.
type Field struct {
	Name  string
	Index int
	Type  reflect.Type
}

// Fields returns the fields the record strategy encodes for the struct type
// t, in the order they appear on the wire: exported fields in declaration
// order, excluding fields tagged `sss:"-"`. Reordering the fields of a type
// changes its encoding.
func Fields(t reflect.Type) []Field {
	if t.Kind() != reflect.Struct {
		return nil
	}

	fields := make([]Field, 0, t.NumField())
	for i := range t.NumField() {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Tag.Get(TagName) == "-" {
			continue
		}
		fields = append(fields, Field{Name: sf.Name, Index: i, Type: sf.Type})
	}

	return fields
}

type recordField struct {
	name  string
	index int
	codec valueCodec
}

// recordCodec encodes a struct as the concatenation of its fields.
type recordCodec struct {
	typ    reflect.Type
	fields []recordField
	fixed  int
	min    int
}

var _ valueCodec = (*recordCodec)(nil)

func (b *builder) recordCodec(t reflect.Type) (valueCodec, error) {
	rc := &recordCodec{typ: t, fixed: 0}

	for _, f := range Fields(t) {
		c, err := b.compile(f.Type)
		if err != nil {
			return nil, fmt.Errorf("field %s.%s: %w", t, f.Name, err)
		}

		rc.fields = append(rc.fields, recordField{name: f.Name, index: f.Index, codec: c})
		rc.min += c.minSize()
		if w := c.width(); w < 0 || rc.fixed < 0 {
			rc.fixed = -1
		} else {
			rc.fixed += w
		}
	}

	return rc, nil
}

func (c *recordCodec) strategy() format.Strategy { return format.StrategyRecord }
func (c *recordCodec) width() int                { return c.fixed }
func (c *recordCodec) minSize() int              { return c.min }

func (c *recordCodec) size(v reflect.Value) (int, error) {
	if c.fixed >= 0 {
		return c.fixed, nil
	}

	total := 0
	for _, f := range c.fields {
		n, err := f.codec.size(v.Field(f.index))
		if err != nil {
			return 0, fmt.Errorf("field %s.%s: %w", c.typ, f.name, err)
		}
		total += n
	}

	return total, nil
}

func (c *recordCodec) encode(w *Writer, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.encode(w, v.Field(f.index)); err != nil {
			return fmt.Errorf("field %s.%s: %w", c.typ, f.name, err)
		}
	}

	return nil
}

func (c *recordCodec) decode(r *Reader, v reflect.Value) error {
	for _, f := range c.fields {
		if err := f.codec.decode(r, v.Field(f.index)); err != nil {
			return fmt.Errorf("field %s.%s: %w", c.typ, f.name, err)
		}
	}

	return nil
}
