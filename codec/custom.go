package codec

import (
	"fmt"
	"reflect"
	"time"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

// erased is a registered strategy with its static type removed.
type erased interface {
	size(reg *Registry, v reflect.Value) (int, error)
	encode(w *Writer, v reflect.Value) error
	decode(r *Reader, v reflect.Value) error
}

// MinSizer is implemented by a TypedCodec that knows a lower bound on the
// encoded size of every value. Decoders check sequence counts against it, so
// codecs without a fixed width should implement it when the bound is not zero.
type MinSizer interface {
	MinSize() int
}

type customEntry struct {
	impl  erased
	strat format.Strategy
	fixed int // encoded width when known up front, otherwise -1
	min   int
}

func newCustomEntry[T any](c TypedCodec[T], strat format.Strategy, fixed int) (customEntry, error) {
	entry := customEntry{impl: typedAdapter[T]{c: c}, strat: strat, fixed: fixed, min: max(fixed, 0)}

	if ms, ok := c.(MinSizer); ok && fixed < 0 {
		entry.min = ms.MinSize()
		if entry.min < 0 {
			return customEntry{}, fmt.Errorf("%w: negative minimum size %d for %s",
				errs.ErrInvalidCodec, entry.min, reflect.TypeFor[T]())
		}
	}

	return entry, nil
}

// typedAdapter bridges a TypedCodec[T] to reflect values of type T.
type typedAdapter[T any] struct {
	c TypedCodec[T]
}

func valueAs[T any](v reflect.Value) T {
	var x T
	reflect.ValueOf(&x).Elem().Set(v)

	return x
}

func (a typedAdapter[T]) size(reg *Registry, v reflect.Value) (int, error) {
	return a.c.Size(reg, valueAs[T](v))
}

func (a typedAdapter[T]) encode(w *Writer, v reflect.Value) error {
	return a.c.Encode(w, valueAs[T](v))
}

func (a typedAdapter[T]) decode(r *Reader, v reflect.Value) error {
	x, err := a.c.Decode(r)
	if err != nil {
		return err
	}
	v.Set(reflect.ValueOf(&x).Elem())

	return nil
}

// customCodec dispatches to a registered strategy.
type customCodec struct {
	reg   *Registry
	entry customEntry
}

var _ valueCodec = (*customCodec)(nil)

func (c *customCodec) strategy() format.Strategy { return c.entry.strat }
func (c *customCodec) width() int                { return c.entry.fixed }
func (c *customCodec) minSize() int              { return c.entry.min }

func (c *customCodec) size(v reflect.Value) (int, error) {
	if c.entry.fixed >= 0 {
		return c.entry.fixed, nil
	}

	return c.entry.impl.size(c.reg, v)
}

func (c *customCodec) encode(w *Writer, v reflect.Value) error {
	return c.entry.impl.encode(w, v)
}

func (c *customCodec) decode(r *Reader, v reflect.Value) error {
	return c.entry.impl.decode(r, v)
}

// installBuiltin registers a library-provided strategy for T.
func installBuiltin[T any](reg *Registry, c TypedCodec[T], strat format.Strategy, fixed int) {
	entry, err := newCustomEntry(c, strat, fixed)
	if err != nil {
		panic(fmt.Sprintf("codec: builtin %s: %v", reflect.TypeFor[T](), err))
	}

	reg.install(reflect.TypeFor[T](), entry)
}

func registerBuiltins(reg *Registry) {
	installBuiltin[time.Time](reg, timeCodec{}, format.StrategyTemporal, 8)
	installBuiltin[time.Duration](reg, durationCodec{}, format.StrategyTemporal, 8)
	installBuiltin[Path](reg, pathCodec{}, format.StrategyPath, -1)
}
