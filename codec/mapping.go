package codec

import (
	"bytes"
	"fmt"
	"reflect"
	"slices"

	"github.com/arloliu/sss/format"
)

// mapCodec encodes maps and sets as an entry count followed by key/value
// pairs. Sets are maps with struct{} values, which encode to zero bytes.
type mapCodec struct {
	typ           reflect.Type
	key           valueCodec
	val           valueCodec
	deterministic bool
}

var _ valueCodec = (*mapCodec)(nil)

func (c *mapCodec) strategy() format.Strategy { return format.StrategyMap }
func (c *mapCodec) width() int                { return -1 }
func (c *mapCodec) minSize() int              { return lengthPrefixSize }

func (c *mapCodec) size(v reflect.Value) (int, error) {
	n := v.Len()
	kw, vw := c.key.width(), c.val.width()
	if kw >= 0 && vw >= 0 {
		return lengthPrefixSize + n*(kw+vw), nil
	}

	total := lengthPrefixSize
	iter := v.MapRange()
	for iter.Next() {
		ks, err := c.key.size(iter.Key())
		if err != nil {
			return 0, fmt.Errorf("map key: %w", err)
		}

		vs, err := c.val.size(iter.Value())
		if err != nil {
			return 0, fmt.Errorf("map value: %w", err)
		}
		total += ks + vs
	}

	return total, nil
}

func (c *mapCodec) encode(w *Writer, v reflect.Value) error {
	if err := w.PutLength(v.Len()); err != nil {
		return err
	}

	if c.deterministic {
		return c.encodeSorted(w, v)
	}

	iter := v.MapRange()
	for iter.Next() {
		if err := c.key.encode(w, iter.Key()); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		if err := c.val.encode(w, iter.Value()); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
	}

	return nil
}

type mapEntry struct {
	key []byte
	val reflect.Value
}

// encodeSorted writes entries in ascending order of their encoded keys, so
// equal maps always produce identical bytes.
func (c *mapCodec) encodeSorted(w *Writer, v reflect.Value) error {
	entries := make([]mapEntry, 0, v.Len())

	iter := v.MapRange()
	for iter.Next() {
		k := iter.Key()
		n, err := c.key.size(k)
		if err != nil {
			return fmt.Errorf("map key: %w", err)
		}

		scratch := NewWriter(w.reg, make([]byte, n))
		if err := c.key.encode(scratch, k); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		entries = append(entries, mapEntry{key: scratch.Bytes(), val: iter.Value()})
	}

	slices.SortFunc(entries, func(a, b mapEntry) int {
		return bytes.Compare(a.key, b.key)
	})

	for _, e := range entries {
		if err := w.PutRaw(e.key); err != nil {
			return err
		}
		if err := c.val.encode(w, e.val); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
	}

	return nil
}

// decode always produces a non-nil map. When a key repeats, the last entry wins.
func (c *mapCodec) decode(r *Reader, v reflect.Value) error {
	minEntry := c.key.minSize() + c.val.minSize()

	n, err := r.readCount(minEntry)
	if err != nil {
		return err
	}

	capacity := n
	if minEntry == 0 {
		capacity = min(n, maxPrealloc)
	}

	m := reflect.MakeMapWithSize(c.typ, capacity)
	kt, vt := c.typ.Key(), c.typ.Elem()
	for i := range n {
		k := reflect.New(kt).Elem()
		if err := c.key.decode(r, k); err != nil {
			return fmt.Errorf("map entry %d key: %w", i, err)
		}

		e := reflect.New(vt).Elem()
		if err := c.val.decode(r, e); err != nil {
			return fmt.Errorf("map entry %d value: %w", i, err)
		}
		m.SetMapIndex(k, e)
	}
	v.Set(m)

	return nil
}
