package codec

// Optional holds a value of type T or nothing. It encodes like *T: a
// presence byte, then the value when present.
type Optional[T any] struct {
	Value T
	Valid bool
}

func (Optional[T]) isOptional() {}

// Some returns an Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Valid: true}
}

// None returns an empty Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Valid
}

// OrElse returns the held value, or def when empty.
func (o Optional[T]) OrElse(def T) T {
	if o.Valid {
		return o.Value
	}

	return def
}

func (o Optional[T]) IsSome() bool {
	return o.Valid
}

// Pair is a two-field record encoded as First followed by Second.
type Pair[A, B any] struct {
	First  A
	Second B
}

func MakePair[A, B any](a A, b B) Pair[A, B] {
	return Pair[A, B]{First: a, Second: b}
}

// Set is an unordered collection of unique keys. It encodes as a count
// followed by the keys; with deterministic maps enabled the keys are sorted
// by their encoded bytes.
type Set[K comparable] map[K]struct{}

// NewSet returns a set holding keys.
func NewSet[K comparable](keys ...K) Set[K] {
	s := make(Set[K], len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}

	return s
}

func (s Set[K]) Add(k K) {
	s[k] = struct{}{}
}

func (s Set[K]) Has(k K) bool {
	_, ok := s[k]
	return ok
}

func (s Set[K]) Delete(k K) {
	delete(s, k)
}

func (s Set[K]) Len() int {
	return len(s)
}
