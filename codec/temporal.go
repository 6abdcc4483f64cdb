package codec

import (
	"fmt"
	"math"
	"time"

	"github.com/arloliu/sss/errs"
)

// zeroTimeNanos marks the zero time.Time, which has no UnixNano representation.
const zeroTimeNanos = math.MinInt64

// Encodable instants. The smallest nanosecond count is reserved for the zero time.
var (
	minEncodableTime = time.Unix(0, zeroTimeNanos+1)
	maxEncodableTime = time.Unix(0, math.MaxInt64)
)

// timeCodec encodes time.Time as signed nanoseconds since the Unix epoch.
// The location is not preserved; decoded times are in UTC. Instants outside
// the years 1678 to 2262 cannot be represented and fail with
// errs.ErrValueOverflow.
type timeCodec struct{}

func (timeCodec) Size(*Registry, time.Time) (int, error) { return 8, nil }

func (timeCodec) Encode(w *Writer, t time.Time) error {
	if t.IsZero() {
		return w.PutInt64(zeroTimeNanos)
	}

	if t.Before(minEncodableTime) || t.After(maxEncodableTime) {
		return fmt.Errorf("%w: %s is outside the nanosecond range of time.Time encoding",
			errs.ErrValueOverflow, t.UTC().Format(time.RFC3339Nano))
	}

	return w.PutInt64(t.UnixNano())
}

func (timeCodec) Decode(r *Reader) (time.Time, error) {
	ns, err := r.ReadInt64()
	if err != nil {
		return time.Time{}, err
	}

	if ns == zeroTimeNanos {
		return time.Time{}, nil
	}

	return time.Unix(0, ns).UTC(), nil
}

// durationCodec encodes time.Duration as signed nanoseconds.
type durationCodec struct{}

func (durationCodec) Size(*Registry, time.Duration) (int, error) { return 8, nil }

func (durationCodec) Encode(w *Writer, d time.Duration) error {
	return w.PutInt64(int64(d))
}

func (durationCodec) Decode(r *Reader) (time.Duration, error) {
	ns, err := r.ReadInt64()

	return time.Duration(ns), err
}
