package codec

import (
	"fmt"
	"math"
	"reflect"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

// scalarCodec encodes fixed-width scalars. int, uint and uintptr are always
// widened to 64 bits so the encoding does not depend on the platform.
type scalarCodec struct {
	kind reflect.Kind
	n    int
}

var _ valueCodec = scalarCodec{}

func newScalarCodec(kind reflect.Kind) scalarCodec {
	return scalarCodec{kind: kind, n: scalarWidth(kind)}
}

func scalarWidth(kind reflect.Kind) int {
	switch kind { //nolint:exhaustive
	case reflect.Bool, reflect.Int8, reflect.Uint8:
		return 1
	case reflect.Int16, reflect.Uint16:
		return 2
	case reflect.Int32, reflect.Uint32, reflect.Float32:
		return 4
	case reflect.Complex128:
		return 16
	default:
		return 8
	}
}

func (c scalarCodec) strategy() format.Strategy { return format.StrategyTrivial }
func (c scalarCodec) width() int                { return c.n }
func (c scalarCodec) minSize() int              { return c.n }

func (c scalarCodec) size(reflect.Value) (int, error) {
	return c.n, nil
}

func (c scalarCodec) encode(w *Writer, v reflect.Value) error {
	switch c.kind { //nolint:exhaustive
	case reflect.Bool:
		return w.PutBool(v.Bool())
	case reflect.Int8:
		return w.PutUint8(uint8(v.Int())) //nolint:gosec
	case reflect.Int16:
		return w.PutUint16(uint16(v.Int())) //nolint:gosec
	case reflect.Int32:
		return w.PutUint32(uint32(v.Int())) //nolint:gosec
	case reflect.Int, reflect.Int64:
		return w.PutInt64(v.Int())
	case reflect.Uint8:
		return w.PutUint8(uint8(v.Uint())) //nolint:gosec
	case reflect.Uint16:
		return w.PutUint16(uint16(v.Uint())) //nolint:gosec
	case reflect.Uint32:
		return w.PutUint32(uint32(v.Uint())) //nolint:gosec
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		return w.PutUint64(v.Uint())
	case reflect.Float32:
		return w.PutFloat32(float32(v.Float()))
	case reflect.Float64:
		return w.PutFloat64(v.Float())
	case reflect.Complex64:
		z := v.Complex()
		if err := w.PutFloat32(float32(real(z))); err != nil {
			return err
		}

		return w.PutFloat32(float32(imag(z)))
	case reflect.Complex128:
		z := v.Complex()
		if err := w.PutFloat64(real(z)); err != nil {
			return err
		}

		return w.PutFloat64(imag(z))
	default:
		return fmt.Errorf("%w: scalar kind %s", errs.ErrUnsupportedType, c.kind)
	}
}

func (c scalarCodec) decode(r *Reader, v reflect.Value) error {
	b, err := r.Next(c.n)
	if err != nil {
		return err
	}

	e := r.engine

	switch c.kind { //nolint:exhaustive
	case reflect.Bool:
		v.SetBool(b[0] != 0)
	case reflect.Int8:
		v.SetInt(int64(int8(b[0]))) //nolint:gosec
	case reflect.Int16:
		v.SetInt(int64(int16(e.Uint16(b)))) //nolint:gosec
	case reflect.Int32:
		v.SetInt(int64(int32(e.Uint32(b)))) //nolint:gosec
	case reflect.Int, reflect.Int64:
		x := int64(e.Uint64(b)) //nolint:gosec
		if v.OverflowInt(x) {
			return fmt.Errorf("%w: %d does not fit in %s", errs.ErrValueOverflow, x, v.Type())
		}
		v.SetInt(x)
	case reflect.Uint8:
		v.SetUint(uint64(b[0]))
	case reflect.Uint16:
		v.SetUint(uint64(e.Uint16(b)))
	case reflect.Uint32:
		v.SetUint(uint64(e.Uint32(b)))
	case reflect.Uint, reflect.Uint64, reflect.Uintptr:
		x := e.Uint64(b)
		if v.OverflowUint(x) {
			return fmt.Errorf("%w: %d does not fit in %s", errs.ErrValueOverflow, x, v.Type())
		}
		v.SetUint(x)
	case reflect.Float32:
		v.SetFloat(float64(math.Float32frombits(e.Uint32(b))))
	case reflect.Float64:
		v.SetFloat(math.Float64frombits(e.Uint64(b)))
	case reflect.Complex64:
		re := math.Float32frombits(e.Uint32(b[:4]))
		im := math.Float32frombits(e.Uint32(b[4:]))
		v.SetComplex(complex(float64(re), float64(im)))
	case reflect.Complex128:
		re := math.Float64frombits(e.Uint64(b[:8]))
		im := math.Float64frombits(e.Uint64(b[8:]))
		v.SetComplex(complex(re, im))
	default:
		return fmt.Errorf("%w: scalar kind %s", errs.ErrUnsupportedType, c.kind)
	}

	return nil
}
