package codec

import (
	"math"
	"math/big"
	"net/netip"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/sss/errs"
)

// Scalar is a union over int and string; its method set is empty so builtin
// types can be alternatives.
type Scalar interface{}

type Shape interface {
	Area() float64
}

type Circle struct {
	R float64
}

func (c Circle) Area() float64 { return math.Pi * c.R * c.R }

type Square struct {
	Side float64
}

func (s Square) Area() float64 { return s.Side * s.Side }

type Polygon struct {
	Name   string
	Points []Pair[int32, int32]
}

func (p Polygon) Area() float64 { return 0 }

type Sample struct {
	ID       uint16
	Name     string
	Values   []int32
	Tags     map[string]uint8
	Flags    []bool
	Parent   *Sample
	Note     Optional[string]
	internal int
	Skipped  string `sss:"-"`
}

type Node struct {
	Value int64
	Next  *Node
}

type Tree struct {
	Label    string
	Children []Tree
}

type Blob []byte

func newTestRegistry(t *testing.T, opts ...Option) *Registry {
	t.Helper()

	reg, err := NewRegistry(opts...)
	require.NoError(t, err)

	return reg
}

// roundTrip saves v, checks that the predicted size matches the output and
// that exactly the written bytes are consumed, then returns the decoded value.
func roundTrip[T any](t *testing.T, reg *Registry, v T) T {
	t.Helper()

	data, err := Save(reg, v)
	require.NoError(t, err)

	n, err := Size(reg, v)
	require.NoError(t, err)
	require.Equal(t, len(data), n, "Size must equal the encoded length")

	got, err := LoadExact[T](reg, data)
	require.NoError(t, err)

	return got
}

// requireTruncationFails checks that every strict prefix of data fails to
// decode with ErrTruncatedInput.
func requireTruncationFails[T any](t *testing.T, reg *Registry, data []byte) {
	t.Helper()

	for i := range len(data) {
		_, err := Load[T](reg, data[:i])
		require.ErrorIs(t, err, errs.ErrTruncatedInput, "prefix of %d bytes", i)
	}
}

func TestSave_WireLayout(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("int is eight little-endian bytes", func(t *testing.T) {
		data, err := Save(reg, 42)
		require.NoError(t, err)
		require.Equal(t, []byte{42, 0, 0, 0, 0, 0, 0, 0}, data)
	})

	t.Run("empty string is a zero length prefix", func(t *testing.T) {
		data, err := Save(reg, "")
		require.NoError(t, err)
		require.Equal(t, make([]byte, 8), data)
	})

	t.Run("string is length then bytes", func(t *testing.T) {
		data, err := Save(reg, "hi")
		require.NoError(t, err)
		require.Equal(t, []byte{2, 0, 0, 0, 0, 0, 0, 0, 'h', 'i'}, data)
	})

	t.Run("nil pointer is a single absent tag", func(t *testing.T) {
		var p *int
		data, err := Save(reg, p)
		require.NoError(t, err)
		require.Equal(t, []byte{0}, data)
	})

	t.Run("present optional is tag then value", func(t *testing.T) {
		data, err := Save(reg, Some(7))
		require.NoError(t, err)
		require.Equal(t, []byte{1, 7, 0, 0, 0, 0, 0, 0, 0}, data)
	})

	t.Run("empty optional is a single absent tag", func(t *testing.T) {
		data, err := Save(reg, None[int]())
		require.NoError(t, err)
		require.Equal(t, []byte{0}, data)
	})

	t.Run("bools pack least significant bit first", func(t *testing.T) {
		bits := []bool{true, false, true, true, false, false, false, true, true}
		data, err := Save(reg, bits)
		require.NoError(t, err)
		require.Equal(t, []byte{9, 0, 0, 0, 0, 0, 0, 0, 0b10001101, 0b00000001}, data)
	})

	t.Run("fixed bool array has no count", func(t *testing.T) {
		data, err := Save(reg, [10]bool{0: true, 9: true})
		require.NoError(t, err)
		require.Equal(t, []byte{0b00000001, 0b00000010}, data)
	})

	t.Run("array has no count", func(t *testing.T) {
		data, err := Save(reg, [3]uint16{1, 2, 3})
		require.NoError(t, err)
		require.Equal(t, []byte{1, 0, 2, 0, 3, 0}, data)
	})

	t.Run("record is fields in declaration order", func(t *testing.T) {
		data, err := Save(reg, MakePair(uint8(1), int32(-2)))
		require.NoError(t, err)
		require.Equal(t, []byte{1, 0xFE, 0xFF, 0xFF, 0xFF}, data)
	})

	t.Run("complex is real then imaginary", func(t *testing.T) {
		data, err := Save(reg, complex64(complex(1, 2)))
		require.NoError(t, err)
		require.Equal(t, []byte{0, 0, 0x80, 0x3F, 0, 0, 0, 0x40}, data)
	})
}

func TestSave_BigEndian(t *testing.T) {
	reg := newTestRegistry(t, WithBigEndian())

	data, err := Save(reg, uint32(1))
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 1}, data)

	data, err = Save(reg, []uint16{0x0102})
	require.NoError(t, err)
	require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 1, 0x01, 0x02}, data)

	got := roundTrip(t, reg, []float64{1.5, -2.25})
	require.Equal(t, []float64{1.5, -2.25}, got)
}

func TestUnion_WireLayout(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, RegisterUnion[Scalar](reg, 0, ""))

	data, err := Save[Scalar](reg, "x")
	require.NoError(t, err)
	require.Equal(t, []byte{1, 1, 0, 0, 0, 0, 0, 0, 0, 'x'}, data)

	got, err := LoadExact[Scalar](reg, data)
	require.NoError(t, err)
	require.Equal(t, "x", got)

	data, err = Save[Scalar](reg, 5)
	require.NoError(t, err)
	require.Equal(t, []byte{0, 5, 0, 0, 0, 0, 0, 0, 0}, data)
}

func TestRoundTrip_Trivial(t *testing.T) {
	reg := newTestRegistry(t)

	require.True(t, roundTrip(t, reg, true))
	require.Equal(t, int8(-5), roundTrip(t, reg, int8(-5)))
	require.Equal(t, int16(math.MinInt16), roundTrip(t, reg, int16(math.MinInt16)))
	require.Equal(t, int32(math.MaxInt32), roundTrip(t, reg, int32(math.MaxInt32)))
	require.Equal(t, int64(math.MinInt64), roundTrip(t, reg, int64(math.MinInt64)))
	require.Equal(t, -1, roundTrip(t, reg, -1))
	require.Equal(t, uint(math.MaxUint), roundTrip(t, reg, uint(math.MaxUint)))
	require.Equal(t, uintptr(0xdead), roundTrip(t, reg, uintptr(0xdead)))
	require.Equal(t, uint64(math.MaxUint64), roundTrip(t, reg, uint64(math.MaxUint64)))
	require.Equal(t, float32(3.25), roundTrip(t, reg, float32(3.25)))
	require.Equal(t, math.Inf(-1), roundTrip(t, reg, math.Inf(-1)))
	require.Equal(t, complex(1.5, -3), roundTrip(t, reg, complex(1.5, -3)))
	require.True(t, math.IsNaN(roundTrip(t, reg, math.NaN())))
}

func TestRoundTrip_Containers(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("slices", func(t *testing.T) {
		require.Equal(t, []string{"a", "", "ccc"}, roundTrip(t, reg, []string{"a", "", "ccc"}))
		require.Equal(t, [][]int{{1}, nil, {2, 3}}, roundTrip(t, reg, [][]int{{1}, {}, {2, 3}}))
	})

	t.Run("empty slice decodes to nil", func(t *testing.T) {
		require.Nil(t, roundTrip(t, reg, []int{}))
		require.Nil(t, roundTrip(t, reg, []byte(nil)))
		require.Nil(t, roundTrip(t, reg, []bool{}))
	})

	t.Run("bit collections across byte boundaries", func(t *testing.T) {
		bits := make([]bool, 65)
		bits[0], bits[63], bits[64] = true, true, true

		data, err := Save(reg, bits)
		require.NoError(t, err)
		require.Len(t, data, 8+9)
		require.Equal(t, byte(0x80), data[8+7])
		require.Equal(t, byte(0x01), data[8+8])
		require.Equal(t, bits, roundTrip(t, reg, bits))

		var set [65]bool
		set[64] = true
		require.Equal(t, set, roundTrip(t, reg, set))

		empty, err := Save(reg, [0]bool{})
		require.NoError(t, err)
		require.Empty(t, empty)
		require.Equal(t, [0]bool{}, roundTrip(t, reg, [0]bool{}))
	})

	t.Run("bytes", func(t *testing.T) {
		require.Equal(t, []byte{0, 1, 255}, roundTrip(t, reg, []byte{0, 1, 255}))
		require.Equal(t, Blob("payload"), roundTrip(t, reg, Blob("payload")))
	})

	t.Run("arrays", func(t *testing.T) {
		in := [2][3]int8{{1, 2, 3}, {-1, -2, -3}}
		require.Equal(t, in, roundTrip(t, reg, in))
		require.Equal(t, [2]string{"x", "yz"}, roundTrip(t, reg, [2]string{"x", "yz"}))
		require.Equal(t, [0]int{}, roundTrip(t, reg, [0]int{}))
	})

	t.Run("bit vectors", func(t *testing.T) {
		for _, n := range []int{1, 7, 8, 9, 16, 17, 100} {
			in := make([]bool, n)
			for i := range in {
				in[i] = i%3 == 0
			}
			require.Equal(t, in, roundTrip(t, reg, in), "length %d", n)
		}

		in := [13]bool{0: true, 5: true, 12: true}
		require.Equal(t, in, roundTrip(t, reg, in))
	})

	t.Run("maps", func(t *testing.T) {
		in := map[string][]int{"a": {1}, "b": nil, "c": {2, 3}}
		got := roundTrip(t, reg, in)
		require.Len(t, got, 3)
		require.Equal(t, []int{1}, got["a"])
		require.Nil(t, got["b"])
		require.Equal(t, []int{2, 3}, got["c"])
	})

	t.Run("empty map decodes to non-nil", func(t *testing.T) {
		var m map[int]string
		got := roundTrip(t, reg, m)
		require.NotNil(t, got)
		require.Empty(t, got)
	})

	t.Run("sets", func(t *testing.T) {
		in := NewSet(3, 1, 2)
		data, err := Save(reg, in)
		require.NoError(t, err)
		require.Len(t, data, 8+3*8)
		require.Equal(t, []byte{1, 0, 0, 0, 0, 0, 0, 0}, data[8:16], "keys are sorted by encoding")

		got, err := LoadExact[Set[int]](reg, data)
		require.NoError(t, err)
		require.Equal(t, in, got)
		require.True(t, got.Has(2))
	})
}

func TestRoundTrip_Records(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("nested record", func(t *testing.T) {
		in := Sample{
			ID:     7,
			Name:   "root",
			Values: []int32{-1, 0, 1},
			Tags:   map[string]uint8{"x": 1, "y": 2},
			Flags:  []bool{true, false, true},
			Parent: &Sample{ID: 1, Name: "parent", Tags: map[string]uint8{}},
			Note:   Some("note"),
		}

		got := roundTrip(t, reg, in)
		require.Equal(t, in, got)
	})

	t.Run("unexported and skipped fields are not encoded", func(t *testing.T) {
		in := Sample{ID: 1, Tags: map[string]uint8{}, internal: 5, Skipped: "gone"}
		got := roundTrip(t, reg, in)
		require.Zero(t, got.internal)
		require.Empty(t, got.Skipped)
		require.Equal(t, uint16(1), got.ID)
	})

	t.Run("recursive through pointer", func(t *testing.T) {
		in := &Node{Value: 1, Next: &Node{Value: 2, Next: &Node{Value: 3}}}
		got := roundTrip(t, reg, in)
		require.Equal(t, in, got)
	})

	t.Run("recursive through slice", func(t *testing.T) {
		in := Tree{Label: "a", Children: []Tree{{Label: "b"}, {Label: "c", Children: []Tree{{Label: "d"}}}}}
		require.Equal(t, in, roundTrip(t, reg, in))
	})

	t.Run("empty record encodes to nothing", func(t *testing.T) {
		data, err := Save(reg, struct{}{})
		require.NoError(t, err)
		require.Empty(t, data)
	})

	t.Run("fixed width records have a constant size", func(t *testing.T) {
		n, err := Size(reg, Pair[int32, [4]uint8]{})
		require.NoError(t, err)
		require.Equal(t, 8, n)
	})
}

func TestRoundTrip_Optional(t *testing.T) {
	reg := newTestRegistry(t)

	x := 99
	require.Equal(t, &x, roundTrip(t, reg, &x))
	require.Nil(t, roundTrip[*int](t, reg, nil))

	require.Equal(t, Some("v"), roundTrip(t, reg, Some("v")))
	require.Equal(t, None[[]int](), roundTrip(t, reg, None[[]int]()))

	v, ok := roundTrip(t, reg, Some(3.5)).Get()
	require.True(t, ok)
	require.Equal(t, 3.5, v)
	require.Equal(t, 1, roundTrip(t, reg, None[int]()).OrElse(1))

	nested := Some(Some(int8(1)))
	require.Equal(t, nested, roundTrip(t, reg, nested))
}

func TestRoundTrip_Union(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, RegisterUnion[Shape](reg, Circle{}, Square{}, Polygon{}))

	in := []Shape{
		Circle{R: 1},
		Square{Side: 2},
		Polygon{Name: "tri", Points: []Pair[int32, int32]{{0, 0}, {1, 0}, {0, 1}}},
	}
	got := roundTrip(t, reg, in)
	require.Equal(t, in, got)

	type Scene struct {
		Main  Shape
		Extra map[string]Shape
	}
	scene := Scene{Main: Square{Side: 3}, Extra: map[string]Shape{"c": Circle{R: 2}}}
	require.Equal(t, scene, roundTrip(t, reg, scene))
}

func TestRoundTrip_Temporal(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("duration is int64 nanoseconds", func(t *testing.T) {
		data, err := Save(reg, 1500*time.Millisecond)
		require.NoError(t, err)
		require.Equal(t, []byte{0x00, 0x2F, 0x68, 0x59, 0, 0, 0, 0}, data)
		require.Equal(t, -time.Hour, roundTrip(t, reg, -time.Hour))
	})

	t.Run("time decodes as UTC", func(t *testing.T) {
		loc := time.FixedZone("UTC+8", 8*3600)
		in := time.Date(2024, 3, 1, 12, 30, 0, 123456789, loc)

		got := roundTrip(t, reg, in)
		require.True(t, in.Equal(got))
		require.Equal(t, time.UTC, got.Location())
	})

	t.Run("zero time is preserved", func(t *testing.T) {
		data, err := Save(reg, time.Time{})
		require.NoError(t, err)
		require.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 0x80}, data)
		require.True(t, roundTrip(t, reg, time.Time{}).IsZero())
	})

	t.Run("range edges round trip", func(t *testing.T) {
		for _, in := range []time.Time{
			time.Unix(0, math.MinInt64+1),
			time.Unix(0, math.MaxInt64),
		} {
			got := roundTrip(t, reg, in)
			require.True(t, in.Equal(got), "%s decoded as %s", in, got)
			require.False(t, got.IsZero())
		}
	})

	t.Run("instants outside the nanosecond range are rejected", func(t *testing.T) {
		for _, in := range []time.Time{
			time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
			time.Date(1600, 1, 1, 0, 0, 0, 0, time.UTC),
			time.Unix(0, math.MinInt64),
			time.Unix(0, math.MaxInt64).Add(time.Nanosecond),
		} {
			_, err := Save(reg, in)
			require.ErrorIs(t, err, errs.ErrValueOverflow, "%s", in)

			_, err = SaveTo(reg, in, make([]byte, 8))
			require.ErrorIs(t, err, errs.ErrValueOverflow, "%s", in)
		}

		type event struct{ At time.Time }
		_, err := Save(reg, []event{{At: time.Now()}, {At: time.Date(2300, 1, 1, 0, 0, 0, 0, time.UTC)}})
		require.ErrorIs(t, err, errs.ErrValueOverflow)
	})
}

func TestRoundTrip_Path(t *testing.T) {
	reg := newTestRegistry(t)

	data, err := Save(reg, Path("dir/file.txt"))
	require.NoError(t, err)
	require.Equal(t, "dir/file.txt", string(data[8:]))
	require.Equal(t, Path("dir/file.txt"), roundTrip(t, reg, Path("dir/file.txt")))
}

func TestRoundTrip_Marshalers(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("binary marshaler", func(t *testing.T) {
		addr := netip.MustParseAddr("192.168.0.1")
		data, err := Save(reg, addr)
		require.NoError(t, err)
		require.Equal(t, []byte{4, 0, 0, 0, 0, 0, 0, 0, 192, 168, 0, 1}, data)
		require.Equal(t, addr, roundTrip(t, reg, addr))

		v6 := []netip.Addr{netip.MustParseAddr("::1"), addr}
		require.Equal(t, v6, roundTrip(t, reg, v6))
	})

	t.Run("text marshaler with pointer receivers", func(t *testing.T) {
		n, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
		require.True(t, ok)

		got := roundTrip(t, reg, n)
		require.Zero(t, n.Cmp(got))

		vals := []big.Int{*big.NewInt(-5), *big.NewInt(1 << 40)}
		decoded := roundTrip(t, reg, vals)
		require.Len(t, decoded, 2)
		require.Equal(t, "-5", decoded[0].String())
		require.Equal(t, "1099511627776", decoded[1].String())
	})
}

func TestSaveTo(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("writes into the front of dst", func(t *testing.T) {
		dst := make([]byte, 32)
		n, err := SaveTo(reg, "abc", dst)
		require.NoError(t, err)
		require.Equal(t, 11, n)
		require.Equal(t, []byte{3, 0, 0, 0, 0, 0, 0, 0, 'a', 'b', 'c'}, dst[:n])
	})

	t.Run("short buffer", func(t *testing.T) {
		_, err := SaveTo(reg, int64(1), make([]byte, 7))
		require.ErrorIs(t, err, errs.ErrShortBuffer)

		_, err = SaveTo(reg, []string{"long string"}, make([]byte, 12))
		require.ErrorIs(t, err, errs.ErrShortBuffer)
	})
}

func TestLoad(t *testing.T) {
	reg := newTestRegistry(t)

	t.Run("trailing bytes are ignored by Load", func(t *testing.T) {
		data := []byte{1, 0, 0xAA}
		v, err := Load[uint16](reg, data)
		require.NoError(t, err)
		require.Equal(t, uint16(1), v)
	})

	t.Run("trailing bytes are rejected by LoadExact", func(t *testing.T) {
		_, err := LoadExact[uint16](reg, []byte{1, 0, 0xAA})
		require.ErrorIs(t, err, errs.ErrTrailingBytes)
	})

	t.Run("sequential reads share a cursor", func(t *testing.T) {
		buf := make([]byte, 64)
		w := NewWriter(reg, buf)
		require.NoError(t, Write(w, "first"))
		require.NoError(t, Write(w, uint32(2)))
		require.NoError(t, Write(w, []int8{3}))

		r := NewReader(reg, w.Bytes())
		s, err := Read[string](r)
		require.NoError(t, err)
		require.Equal(t, "first", s)

		u, err := Read[uint32](r)
		require.NoError(t, err)
		require.Equal(t, uint32(2), u)

		sl, err := Read[[]int8](r)
		require.NoError(t, err)
		require.Equal(t, []int8{3}, sl)
		require.Zero(t, r.Remaining())
	})
}

func TestLoad_Truncated(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, RegisterUnion[Shape](reg, Circle{}, Square{}, Polygon{}))

	t.Run("scalar", func(t *testing.T) {
		data, err := Save(reg, uint64(1))
		require.NoError(t, err)
		requireTruncationFails[uint64](t, reg, data)
	})

	t.Run("record", func(t *testing.T) {
		in := Sample{
			ID: 3, Name: "abc", Values: []int32{1, 2},
			Tags: map[string]uint8{"k": 9}, Flags: []bool{true},
			Parent: &Sample{Tags: map[string]uint8{}}, Note: Some("n"),
		}
		data, err := Save(reg, in)
		require.NoError(t, err)
		requireTruncationFails[Sample](t, reg, data)
	})

	t.Run("union", func(t *testing.T) {
		in := []Shape{Circle{R: 1}, Polygon{Name: "p", Points: []Pair[int32, int32]{{1, 2}}}}
		data, err := Save(reg, in)
		require.NoError(t, err)
		requireTruncationFails[[]Shape](t, reg, data)
	})

	t.Run("bit vector", func(t *testing.T) {
		data, err := Save(reg, make([]bool, 20))
		require.NoError(t, err)
		requireTruncationFails[[]bool](t, reg, data)
	})

	t.Run("temporal and marshaler", func(t *testing.T) {
		data, err := Save(reg, Pair[time.Time, netip.Addr]{time.Unix(5, 0), netip.MustParseAddr("10.0.0.1")})
		require.NoError(t, err)
		requireTruncationFails[Pair[time.Time, netip.Addr]](t, reg, data)
	})

	t.Run("count larger than input", func(t *testing.T) {
		data := []byte{0xE8, 0x03, 0, 0, 0, 0, 0, 0, 1, 2, 3}
		_, err := Load[[]uint32](reg, data)
		require.ErrorIs(t, err, errs.ErrTruncatedInput)

		_, err = Load[map[uint16]uint16](reg, data)
		require.ErrorIs(t, err, errs.ErrTruncatedInput)

		_, err = Load[string](reg, data)
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
	})
}

func TestLoad_Malformed(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, RegisterUnion[Scalar](reg, 0, ""))

	t.Run("optional tag out of range", func(t *testing.T) {
		_, err := Load[*int](reg, []byte{2, 0, 0, 0, 0, 0, 0, 0, 0})
		require.ErrorIs(t, err, errs.ErrInvalidDiscriminant)

		_, err = Load[Optional[int]](reg, []byte{0xFF})
		require.ErrorIs(t, err, errs.ErrInvalidDiscriminant)
	})

	t.Run("union tag out of range", func(t *testing.T) {
		_, err := Load[Scalar](reg, []byte{2, 0, 0, 0, 0, 0, 0, 0, 0})
		require.ErrorIs(t, err, errs.ErrInvalidDiscriminant)
	})

	t.Run("count above the default limit", func(t *testing.T) {
		data := []byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}
		_, err := Load[[]byte](reg, data)
		require.ErrorIs(t, err, errs.ErrLengthOverflow)

		_, err = Load[[]bool](reg, data)
		require.ErrorIs(t, err, errs.ErrLengthOverflow)
	})

	t.Run("count above a configured limit", func(t *testing.T) {
		limited := newTestRegistry(t, WithMaxLength(4))
		data, err := Save(limited, []uint8{1, 2, 3, 4, 5})
		require.NoError(t, err)

		_, err = Load[[]uint8](limited, data)
		require.ErrorIs(t, err, errs.ErrLengthOverflow)

		_, err = Load[[]uint8](reg, data)
		require.NoError(t, err)
	})

	t.Run("duplicate map keys keep the last value", func(t *testing.T) {
		data := []byte{
			2, 0, 0, 0, 0, 0, 0, 0,
			1, 10,
			1, 20,
		}
		got, err := LoadExact[map[uint8]uint8](reg, data)
		require.NoError(t, err)
		require.Equal(t, map[uint8]uint8{1: 20}, got)
	})

	t.Run("failed decode returns the zero value", func(t *testing.T) {
		got, err := Load[Pair[string, string]](reg, []byte{1, 0, 0, 0, 0, 0, 0, 0, 'a', 5})
		require.Error(t, err)
		require.Equal(t, Pair[string, string]{}, got)
	})
}

// allocatedBytes reports the heap bytes allocated while fn runs.
func allocatedBytes(fn func()) uint64 {
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	fn()
	runtime.ReadMemStats(&after)

	return after.TotalAlloc - before.TotalAlloc
}

func TestLoad_HugeCount(t *testing.T) {
	// count 1<<24 with no elements behind it
	data := []byte{0, 0, 0, 1, 0, 0, 0, 0}
	const budget = 1 << 20

	t.Run("path elements are checked against the remaining input", func(t *testing.T) {
		reg := newTestRegistry(t)

		var err error
		n := allocatedBytes(func() { _, err = Load[[]Path](reg, data) })
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Less(t, n, uint64(budget))
	})

	t.Run("custom codec with a declared minimum size", func(t *testing.T) {
		reg := newTestRegistry(t)
		funcs := celsiusFuncs
		funcs.MinSize = 2
		require.NoError(t, RegisterFuncs(reg, funcs))

		var err error
		n := allocatedBytes(func() { _, err = Load[[]Celsius](reg, data) })
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Less(t, n, uint64(budget))
	})

	t.Run("custom codec without a minimum size grows as it decodes", func(t *testing.T) {
		reg := newTestRegistry(t)
		require.NoError(t, RegisterFuncs(reg, celsiusFuncs))

		var err error
		n := allocatedBytes(func() { _, err = Load[[]Celsius](reg, data) })
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Less(t, n, uint64(budget))

		in := make([]Celsius, maxPrealloc+3)
		for i := range in {
			in[i] = Celsius(i % 100)
		}
		require.Equal(t, in, roundTrip(t, reg, in))
	})

	t.Run("optional and empty record elements", func(t *testing.T) {
		reg := newTestRegistry(t)

		var err error
		n := allocatedBytes(func() { _, err = Load[[]Optional[Path]](reg, data) })
		require.ErrorIs(t, err, errs.ErrTruncatedInput)
		require.Less(t, n, uint64(budget))

		got, err := LoadExact[[]struct{}](reg, []byte{3, 0, 0, 0, 0, 0, 0, 0})
		require.NoError(t, err)
		require.Len(t, got, 3)
	})

	t.Run("negative minimum size is rejected", func(t *testing.T) {
		reg := newTestRegistry(t)
		funcs := celsiusFuncs
		funcs.MinSize = -1
		require.ErrorIs(t, RegisterFuncs(reg, funcs), errs.ErrInvalidCodec)
	})
}

func TestSave_Errors(t *testing.T) {
	reg := newTestRegistry(t)
	require.NoError(t, RegisterUnion[Scalar](reg, 0, ""))

	t.Run("unsupported types", func(t *testing.T) {
		_, err := Save(reg, make(chan int))
		require.ErrorIs(t, err, errs.ErrUnsupportedType)

		_, err = Save(reg, func() {})
		require.ErrorIs(t, err, errs.ErrUnsupportedType)

		_, err = Save[any](reg, 1)
		require.ErrorIs(t, err, errs.ErrUnsupportedType)

		type withChan struct {
			C chan int
		}
		_, err = Save(reg, withChan{})
		require.ErrorIs(t, err, errs.ErrUnsupportedType)
		require.Contains(t, err.Error(), "withChan.C")
	})

	t.Run("nil union", func(t *testing.T) {
		_, err := Save[Scalar](reg, nil)
		require.ErrorIs(t, err, errs.ErrNilUnion)
	})

	t.Run("value that is not an alternative", func(t *testing.T) {
		_, err := Save[Scalar](reg, 1.5)
		require.ErrorIs(t, err, errs.ErrUnknownAlternative)

		_, err = Size[Scalar](reg, int8(1))
		require.ErrorIs(t, err, errs.ErrUnknownAlternative)
	})
}

func TestSave_DeterministicMaps(t *testing.T) {
	in := map[string]int{}
	for i := range 64 {
		in[string(rune('a'+i%26))+string(rune('A'+i/26))] = i
	}

	reg := newTestRegistry(t)
	first, err := Save(reg, in)
	require.NoError(t, err)

	for range 10 {
		again, err := Save(reg, in)
		require.NoError(t, err)
		require.Equal(t, first, again)
	}

	unordered := newTestRegistry(t, WithDeterministicMaps(false))
	require.Equal(t, in, roundTrip(t, unordered, in))

	other, err := Save(unordered, in)
	require.NoError(t, err)
	require.Len(t, other, len(first))
}

func TestSaveLoad_NilRegistry(t *testing.T) {
	data, err := Save[uint16](nil, 258)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 1}, data)

	n, err := SaveTo[uint16](nil, 258, make([]byte, 2))
	require.NoError(t, err)
	require.Equal(t, 2, n)

	got, err := Load[uint16](nil, data)
	require.NoError(t, err)
	require.Equal(t, uint16(258), got)
}
