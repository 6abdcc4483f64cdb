package codec

import (
	"fmt"
	"reflect"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

// unionSpec is the declared alternative list of a union interface.
type unionSpec struct {
	iface reflect.Type
	alts  []reflect.Type
	index map[reflect.Type]int
}

func newUnionSpec(iface reflect.Type, alts []reflect.Type) (*unionSpec, error) {
	if iface == nil || iface.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: union type %v is not an interface", errs.ErrUnsupportedType, iface)
	}

	if len(alts) == 0 {
		return nil, fmt.Errorf("%w: union %s declares no alternatives", errs.ErrInvalidAlternative, iface)
	}

	if len(alts) > MaxAlternatives {
		return nil, fmt.Errorf("%w: union %s declares %d alternatives, limit %d",
			errs.ErrTooManyAlternatives, iface, len(alts), MaxAlternatives)
	}

	spec := &unionSpec{
		iface: iface,
		alts:  make([]reflect.Type, len(alts)),
		index: make(map[reflect.Type]int, len(alts)),
	}

	for i, alt := range alts {
		if alt == nil || alt.Kind() == reflect.Interface {
			return nil, fmt.Errorf("%w: alternative %d of %s must be a concrete type", errs.ErrInvalidAlternative, i, iface)
		}
		if !alt.Implements(iface) {
			return nil, fmt.Errorf("%w: %s does not implement %s", errs.ErrInvalidAlternative, alt, iface)
		}
		if prev, dup := spec.index[alt]; dup {
			return nil, fmt.Errorf("%w: %s appears at %d and %d in %s", errs.ErrDuplicateAlternative, alt, prev, i, iface)
		}

		spec.alts[i] = alt
		spec.index[alt] = i
	}

	return spec, nil
}

// unionCodec encodes an interface value as a one-byte alternative index
// followed by the encoding of the held value.
type unionCodec struct {
	spec   *unionSpec
	codecs []valueCodec
	min    int
}

var _ valueCodec = (*unionCodec)(nil)

func (b *builder) unionCodec(spec *unionSpec) (valueCodec, error) {
	uc := &unionCodec{spec: spec, codecs: make([]valueCodec, len(spec.alts))}

	for i, alt := range spec.alts {
		c, err := b.compile(alt)
		if err != nil {
			return nil, fmt.Errorf("alternative %s of %s: %w", alt, spec.iface, err)
		}
		uc.codecs[i] = c

		if m := c.minSize(); i == 0 || m < uc.min {
			uc.min = m
		}
	}
	uc.min++

	return uc, nil
}

func (c *unionCodec) strategy() format.Strategy { return format.StrategyUnion }
func (c *unionCodec) width() int                { return -1 }
func (c *unionCodec) minSize() int              { return c.min }

// active returns the alternative index and concrete value held by v.
func (c *unionCodec) active(v reflect.Value) (int, reflect.Value, error) {
	if v.IsNil() {
		return 0, reflect.Value{}, fmt.Errorf("%w: %s", errs.ErrNilUnion, c.spec.iface)
	}

	inner := v.Elem()
	idx, ok := c.spec.index[inner.Type()]
	if !ok {
		return 0, reflect.Value{}, fmt.Errorf("%w: %s is not an alternative of %s",
			errs.ErrUnknownAlternative, inner.Type(), c.spec.iface)
	}

	return idx, inner, nil
}

func (c *unionCodec) size(v reflect.Value) (int, error) {
	idx, inner, err := c.active(v)
	if err != nil {
		return 0, err
	}

	n, err := c.codecs[idx].size(inner)
	if err != nil {
		return 0, err
	}

	return 1 + n, nil
}

func (c *unionCodec) encode(w *Writer, v reflect.Value) error {
	idx, inner, err := c.active(v)
	if err != nil {
		return err
	}

	if err := w.PutUint8(uint8(idx)); err != nil { //nolint:gosec
		return err
	}

	return c.codecs[idx].encode(w, inner)
}

func (c *unionCodec) decode(r *Reader, v reflect.Value) error {
	tag, err := r.ReadUint8()
	if err != nil {
		return err
	}

	idx := int(tag)
	if idx >= len(c.codecs) {
		r.pos--
		return fmt.Errorf("%w: tag %d, %s has %d alternatives",
			errs.ErrInvalidDiscriminant, tag, c.spec.iface, len(c.codecs))
	}

	inner := reflect.New(c.spec.alts[idx]).Elem()
	if err := c.codecs[idx].decode(r, inner); err != nil {
		return fmt.Errorf("alternative %s: %w", c.spec.alts[idx], err)
	}
	v.Set(inner)

	return nil
}
