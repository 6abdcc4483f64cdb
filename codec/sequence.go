package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/sss/format"
)

// lengthPrefixSize is the width of every container count on the wire.
const lengthPrefixSize = 8

// maxPrealloc bounds the initial capacity of decoded slices and maps whose
// elements may encode to zero bytes, where the count cannot be checked
// against the remaining input.
const maxPrealloc = 1 << 12

// sliceCodec encodes []T as a count followed by the elements in index order.
type sliceCodec struct {
	typ  reflect.Type
	elem valueCodec
}

var _ valueCodec = (*sliceCodec)(nil)

func (c *sliceCodec) strategy() format.Strategy { return format.StrategySequence }
func (c *sliceCodec) width() int                { return -1 }
func (c *sliceCodec) minSize() int              { return lengthPrefixSize }

func (c *sliceCodec) size(v reflect.Value) (int, error) {
	n := v.Len()
	if w := c.elem.width(); w >= 0 {
		return lengthPrefixSize + n*w, nil
	}

	total := lengthPrefixSize
	for i := range n {
		s, err := c.elem.size(v.Index(i))
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		total += s
	}

	return total, nil
}

func (c *sliceCodec) encode(w *Writer, v reflect.Value) error {
	n := v.Len()
	if err := w.PutLength(n); err != nil {
		return err
	}

	for i := range n {
		if err := c.elem.encode(w, v.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func (c *sliceCodec) decode(r *Reader, v reflect.Value) error {
	minElem := c.elem.minSize()

	n, err := r.readCount(minElem)
	if err != nil {
		return err
	}

	if n == 0 {
		v.SetZero()
		return nil
	}

	capacity := n
	if minElem == 0 {
		capacity = min(n, maxPrealloc)
	}

	s := reflect.MakeSlice(c.typ, 0, capacity)
	zero := reflect.Zero(c.typ.Elem())
	for i := range n {
		s = reflect.Append(s, zero)
		if err := c.elem.decode(r, s.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	v.Set(s)

	return nil
}

// arrayCodec encodes [N]T as N elements with no count; N is part of the type.
type arrayCodec struct {
	n    int
	elem valueCodec
}

var _ valueCodec = (*arrayCodec)(nil)

func (c *arrayCodec) strategy() format.Strategy { return format.StrategySequence }

func (c *arrayCodec) width() int {
	if w := c.elem.width(); w >= 0 {
		return c.n * w
	}

	return -1
}

func (c *arrayCodec) minSize() int { return c.n * c.elem.minSize() }

func (c *arrayCodec) size(v reflect.Value) (int, error) {
	if w := c.width(); w >= 0 {
		return w, nil
	}

	total := 0
	for i := range c.n {
		s, err := c.elem.size(v.Index(i))
		if err != nil {
			return 0, fmt.Errorf("element %d: %w", i, err)
		}
		total += s
	}

	return total, nil
}

func (c *arrayCodec) encode(w *Writer, v reflect.Value) error {
	for i := range c.n {
		if err := c.elem.encode(w, v.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}

func (c *arrayCodec) decode(r *Reader, v reflect.Value) error {
	for i := range c.n {
		if err := c.elem.decode(r, v.Index(i)); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}

	return nil
}
