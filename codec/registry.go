package codec

import (
	"fmt"
	"math"
	"reflect"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/arloliu/sss/endian"
	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
	"github.com/arloliu/sss/internal/options"
)

// DefaultMaxLength is the largest container count accepted when decoding.
const DefaultMaxLength = math.MaxInt32

// MaxAlternatives is the largest number of alternatives a union may declare,
// bounded by the one-byte wire tag.
const MaxAlternatives = 256

// Option configures a Registry.
type Option = options.Option[*Registry]

// Registry maps Go types to compiled codecs.
//
// A Registry is safe for concurrent use. Registration and compilation are
// serialized; encoding and decoding with already compiled types take no locks.
// Registering a codec or union discards previously compiled codecs so that
// types referring to the new registration are recompiled on next use.
type Registry struct {
	engine        endian.EndianEngine
	maxLength     int
	deterministic bool
	logger        *zap.Logger

	mu     sync.Mutex
	custom map[reflect.Type]customEntry
	unions map[reflect.Type]*unionSpec
	codecs atomic.Pointer[sync.Map] // reflect.Type -> valueCodec
}

// WithLittleEndian selects little-endian byte order (the default).
func WithLittleEndian() Option {
	return options.NoError(func(r *Registry) {
		r.engine = endian.GetLittleEndianEngine()
	})
}

// WithBigEndian selects big-endian byte order.
func WithBigEndian() Option {
	return options.NoError(func(r *Registry) {
		r.engine = endian.GetBigEndianEngine()
	})
}

// WithMaxLength sets the largest container count accepted when decoding.
func WithMaxLength(n int) Option {
	return options.New(func(r *Registry) error {
		if n < 0 {
			return fmt.Errorf("invalid max length: %d", n)
		}
		r.maxLength = n

		return nil
	})
}

// WithDeterministicMaps controls whether map entries are written in ascending
// order of their encoded keys. Enabled by default; when disabled, Go's map
// iteration order is used and equal maps may encode differently.
func WithDeterministicMaps(enabled bool) Option {
	return options.NoError(func(r *Registry) {
		r.deterministic = enabled
	})
}

// WithLogger sets the logger used for registration and compilation events.
func WithLogger(logger *zap.Logger) Option {
	return options.NoError(func(r *Registry) {
		if logger == nil {
			logger = zap.NewNop()
		}
		r.logger = logger
	})
}

// NewRegistry creates a registry with the built-in strategies for
// time.Time, time.Duration and Path installed.
func NewRegistry(opts ...Option) (*Registry, error) {
	r := &Registry{
		engine:        endian.GetLittleEndianEngine(),
		maxLength:     DefaultMaxLength,
		deterministic: true,
		logger:        zap.NewNop(),
		custom:        make(map[reflect.Type]customEntry),
		unions:        make(map[reflect.Type]*unionSpec),
	}
	r.codecs.Store(&sync.Map{})

	if err := options.Apply(r, opts...); err != nil {
		return nil, err
	}

	registerBuiltins(r)

	return r, nil
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// Default returns the process-wide registry used when no registry is given.
func Default() *Registry {
	defaultRegistryOnce.Do(func() {
		reg, err := NewRegistry()
		if err != nil {
			panic(fmt.Sprintf("codec: default registry initialization failed: %v", err))
		}
		defaultRegistry = reg
	})

	return defaultRegistry
}

// Register installs c as the strategy for T, overriding any built-in strategy.
// Codecs whose values never encode to zero bytes should implement MinSizer.
func Register[T any](reg *Registry, c TypedCodec[T]) error {
	if c == nil {
		return fmt.Errorf("%w: nil codec for %s", errs.ErrInvalidCodec, reflect.TypeFor[T]())
	}

	entry, err := newCustomEntry(c, format.StrategyCustom, -1)
	if err != nil {
		return err
	}
	reg.install(reflect.TypeFor[T](), entry)

	return nil
}

// RegisterFuncs installs a strategy for T built from three functions.
func RegisterFuncs[T any](reg *Registry, f Funcs[T]) error {
	if f.Size == nil || f.Encode == nil || f.Decode == nil {
		return fmt.Errorf("%w: incomplete funcs for %s", errs.ErrInvalidCodec, reflect.TypeFor[T]())
	}

	return Register[T](reg, funcsCodec[T]{f: f})
}

// RegisterUnion declares the interface type I as a tagged union whose
// alternatives are the dynamic types of alts, in order. The index of each
// alternative is its wire tag.
//
//	type Shape interface{ Area() float64 }
//	err := codec.RegisterUnion[Shape](reg, Circle{}, Square{})
func RegisterUnion[I any](reg *Registry, alts ...I) error {
	types := make([]reflect.Type, len(alts))
	for i := range alts {
		dyn := reflect.ValueOf(&alts[i]).Elem()
		if dyn.Kind() == reflect.Interface {
			if dyn.IsNil() {
				return fmt.Errorf("%w: alternative %d of %s is nil", errs.ErrInvalidAlternative, i, reflect.TypeFor[I]())
			}
			dyn = dyn.Elem()
		}
		types[i] = dyn.Type()
	}

	return reg.RegisterUnionTypes(reflect.TypeFor[I](), types...)
}

// RegisterUnionTypes is the reflect.Type form of RegisterUnion.
func (r *Registry) RegisterUnionTypes(iface reflect.Type, alts ...reflect.Type) error {
	spec, err := newUnionSpec(iface, alts)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.unions[iface] = spec
	r.codecs.Store(&sync.Map{})
	r.logger.Debug("registered union",
		zap.Stringer("type", iface),
		zap.Int("alternatives", len(alts)),
	)

	return nil
}

// StrategyOf returns the strategy selected for t.
func (r *Registry) StrategyOf(t reflect.Type) (format.Strategy, error) {
	c, err := r.lookup(t)
	if err != nil {
		return format.StrategyInvalid, err
	}

	return c.strategy(), nil
}

// Check resolves t and every type reachable from it, reporting the first
// type without a strategy.
func (r *Registry) Check(t reflect.Type) error {
	_, err := r.lookup(t)
	return err
}

// SizeOf returns the encoded size of v using its dynamic type.
func (r *Registry) SizeOf(v any) (int, error) {
	c, rv, err := r.dynamic(v)
	if err != nil {
		return 0, err
	}

	return c.size(rv)
}

// Marshal encodes v using its dynamic type. Interface-typed unions must be
// encoded through Save with the interface as type parameter.
func (r *Registry) Marshal(v any) ([]byte, error) {
	c, rv, err := r.dynamic(v)
	if err != nil {
		return nil, err
	}

	n, err := c.size(rv)
	if err != nil {
		return nil, err
	}

	w := NewWriter(r, make([]byte, n))
	if err := c.encode(w, rv); err != nil {
		return nil, err
	}

	return w.Bytes(), nil
}

// Unmarshal decodes data into the value ptr points to and returns the
// number of bytes consumed.
func (r *Registry) Unmarshal(data []byte, ptr any) (int, error) {
	rv := reflect.ValueOf(ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return 0, fmt.Errorf("%w: got %T", errs.ErrNilTarget, ptr)
	}

	c, err := r.lookup(rv.Type().Elem())
	if err != nil {
		return 0, err
	}

	rd := NewReader(r, data)
	if err := c.decode(rd, rv.Elem()); err != nil {
		return rd.Consumed(), err
	}

	return rd.Consumed(), nil
}

func (r *Registry) dynamic(v any) (valueCodec, reflect.Value, error) {
	if v == nil {
		return nil, reflect.Value{}, fmt.Errorf("%w: nil interface value", errs.ErrUnsupportedType)
	}

	rv := reflect.ValueOf(v)
	c, err := r.lookup(rv.Type())
	if err != nil {
		return nil, reflect.Value{}, err
	}

	return c, rv, nil
}

func (r *Registry) install(t reflect.Type, entry customEntry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.custom[t] = entry
	r.codecs.Store(&sync.Map{})
	r.logger.Debug("registered codec",
		zap.Stringer("type", t),
		zap.Stringer("strategy", entry.strat),
	)
}

// lookup returns the compiled codec for t, compiling it on first use.
func (r *Registry) lookup(t reflect.Type) (valueCodec, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", errs.ErrUnsupportedType)
	}

	if c, ok := r.codecs.Load().Load(t); ok {
		return c.(valueCodec), nil //nolint:forcetypeassert
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	cache := r.codecs.Load()
	if c, ok := cache.Load(t); ok {
		return c.(valueCodec), nil //nolint:forcetypeassert
	}

	b := newBuilder(r, cache)
	c, err := b.compile(t)
	if err != nil {
		return nil, err
	}

	for typ, built := range b.built {
		cache.Store(typ, built)
	}

	return c, nil
}
