package codec

import (
	"encoding"
	"fmt"
	"reflect"
	"sync"

	"go.uber.org/zap"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

var (
	binaryMarshalerType   = reflect.TypeFor[encoding.BinaryMarshaler]()
	binaryUnmarshalerType = reflect.TypeFor[encoding.BinaryUnmarshaler]()
	textMarshalerType     = reflect.TypeFor[encoding.TextMarshaler]()
	textUnmarshalerType   = reflect.TypeFor[encoding.TextUnmarshaler]()
	optionalMarkerType    = reflect.TypeFor[optionalMarker]()
)

// builder compiles the codec for one type and every type reachable from it.
// It runs with the registry mutex held.
type builder struct {
	reg     *Registry
	cache   *sync.Map
	built   map[reflect.Type]valueCodec
	pending map[reflect.Type]*lazyCodec
}

func newBuilder(reg *Registry, cache *sync.Map) *builder {
	return &builder{
		reg:     reg,
		cache:   cache,
		built:   make(map[reflect.Type]valueCodec),
		pending: make(map[reflect.Type]*lazyCodec),
	}
}

// compile returns the codec for t. Types already under construction yield a
// lazy handle, which lets recursive types such as linked lists terminate.
func (b *builder) compile(t reflect.Type) (valueCodec, error) {
	if c, ok := b.cache.Load(t); ok {
		return c.(valueCodec), nil //nolint:forcetypeassert
	}
	if c, ok := b.built[t]; ok {
		return c, nil
	}
	if l, ok := b.pending[t]; ok {
		return l, nil
	}

	l := &lazyCodec{}
	b.pending[t] = l

	c, err := b.selectStrategy(t)
	delete(b.pending, t)
	if err != nil {
		return nil, err
	}

	l.target = c
	b.built[t] = c
	b.reg.logger.Debug("compiled codec",
		zap.Stringer("type", t),
		zap.Stringer("strategy", c.strategy()),
	)

	return c, nil
}

// selectStrategy applies the selection policy: registered codecs first, then
// sum types and marshaler adapters, then classification by kind.
func (b *builder) selectStrategy(t reflect.Type) (valueCodec, error) {
	if entry, ok := b.reg.custom[t]; ok {
		return &customCodec{reg: b.reg, entry: entry}, nil
	}

	if spec, ok := b.reg.unions[t]; ok {
		return b.unionCodec(spec)
	}

	if t.Kind() == reflect.Struct && t.Implements(optionalMarkerType) {
		return b.optionalValueCodec(t)
	}

	if t.Kind() != reflect.Pointer && t.Kind() != reflect.Interface {
		if implementsPair(t, binaryMarshalerType, binaryUnmarshalerType) {
			return newMarshalerCodec(t, format.StrategyBinary), nil
		}
		if implementsPair(t, textMarshalerType, textUnmarshalerType) {
			return newMarshalerCodec(t, format.StrategyTextual), nil
		}
	}

	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return newScalarCodec(t.Kind()), nil

	case reflect.String:
		return stringCodec{}, nil

	case reflect.Slice:
		if b.plain(t.Elem()) {
			switch t.Elem().Kind() { //nolint:exhaustive
			case reflect.Bool:
				return bitVectorCodec{}, nil
			case reflect.Uint8:
				return bytesCodec{}, nil
			}
		}

		elem, err := b.compile(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("element of %s: %w", t, err)
		}

		return &sliceCodec{typ: t, elem: elem}, nil

	case reflect.Array:
		if t.Elem().Kind() == reflect.Bool && b.plain(t.Elem()) {
			return bitSetCodec{n: t.Len()}, nil
		}

		elem, err := b.compile(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("element of %s: %w", t, err)
		}

		return &arrayCodec{n: t.Len(), elem: elem}, nil

	case reflect.Map:
		key, err := b.compile(t.Key())
		if err != nil {
			return nil, fmt.Errorf("key of %s: %w", t, err)
		}

		val, err := b.compile(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("value of %s: %w", t, err)
		}

		return &mapCodec{typ: t, key: key, val: val, deterministic: b.reg.deterministic}, nil

	case reflect.Pointer:
		elem, err := b.compile(t.Elem())
		if err != nil {
			return nil, fmt.Errorf("target of %s: %w", t, err)
		}

		return &pointerCodec{typ: t, elem: elem}, nil

	case reflect.Struct:
		return b.recordCodec(t)

	case reflect.Interface:
		return nil, fmt.Errorf("%w: %s (interface is not a registered union)", errs.ErrUnsupportedType, t)

	default:
		return nil, fmt.Errorf("%w: %s", errs.ErrUnsupportedType, t)
	}
}

// plain reports whether values of t are handled by the kind-based strategy,
// so containers of t may use a packed representation.
func (b *builder) plain(t reflect.Type) bool {
	if _, ok := b.reg.custom[t]; ok {
		return false
	}

	return !implementsPair(t, binaryMarshalerType, binaryUnmarshalerType) &&
		!implementsPair(t, textMarshalerType, textUnmarshalerType)
}

// implementsPair reports whether t, or a pointer to t, implements both the
// marshal and unmarshal halves of an encoding interface pair.
func implementsPair(t, marshaler, unmarshaler reflect.Type) bool {
	pt := reflect.PointerTo(t)
	if !t.Implements(marshaler) && !pt.Implements(marshaler) {
		return false
	}

	return pt.Implements(unmarshaler)
}

// lazyCodec stands in for a codec that is still being compiled.
type lazyCodec struct {
	target valueCodec
}

var _ valueCodec = (*lazyCodec)(nil)

func (l *lazyCodec) strategy() format.Strategy {
	if l.target == nil {
		return format.StrategyInvalid
	}

	return l.target.strategy()
}

func (l *lazyCodec) width() int {
	if l.target == nil {
		return -1
	}

	return l.target.width()
}

func (l *lazyCodec) minSize() int {
	if l.target == nil {
		return 0
	}

	return l.target.minSize()
}

func (l *lazyCodec) size(v reflect.Value) (int, error) {
	return l.target.size(v)
}

func (l *lazyCodec) encode(w *Writer, v reflect.Value) error {
	return l.target.encode(w, v)
}

func (l *lazyCodec) decode(r *Reader, v reflect.Value) error {
	return l.target.decode(r, v)
}
