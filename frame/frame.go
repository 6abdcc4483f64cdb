// Package frame wraps encoded payloads in a small self-describing envelope
// with optional compression and an xxHash64 checksum.
//
// A frame carries no schema or version information: the payload is opaque
// bytes, usually produced by codec.Save. Frames are always little-endian.
//
//	data, err := frame.Save(reg, record, frame.WithCompression(format.CompressionZstd))
//	...
//	record, err := frame.Load[Record](reg, data)
package frame

import (
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/arloliu/sss/codec"
	"github.com/arloliu/sss/compress"
	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
	"github.com/arloliu/sss/internal/hash"
	"github.com/arloliu/sss/internal/options"
	"github.com/arloliu/sss/internal/pool"
)

// MaxPayloadSize is the largest payload a frame can describe.
const MaxPayloadSize = math.MaxUint32

// DefaultMaxSize is the largest original or compressed payload Open and
// OpenNext accept unless WithMaxSize raises it.
const DefaultMaxSize = 256 << 20

type config struct {
	compression format.CompressionType
	checksum    bool
	maxSize     int64
}

// Option configures how a frame is sealed or opened.
type Option = options.Option[*config]

// WithCompression selects the payload compression. The default is none.
func WithCompression(ct format.CompressionType) Option {
	return options.New(func(c *config) error {
		if _, err := compress.GetCodec(ct); err != nil {
			return err
		}
		c.compression = ct

		return nil
	})
}

// WithChecksum controls whether an xxHash64 checksum of the original payload
// is stored and verified. Enabled by default.
func WithChecksum(enabled bool) Option {
	return options.NoError(func(c *config) {
		c.checksum = enabled
	})
}

// WithMaxSize sets the largest payload, before or after decompression, that
// Open, OpenNext and Load accept. Larger frames fail with errs.ErrFrameTooLarge
// before any payload memory is allocated.
func WithMaxSize(n int) Option {
	return options.New(func(c *config) error {
		if n < 0 || uint64(n) > MaxPayloadSize {
			return fmt.Errorf("max size %d out of range [0, %d]", n, uint64(MaxPayloadSize))
		}
		c.maxSize = int64(n)

		return nil
	})
}

func newConfig(opts []Option) (*config, error) {
	c := &config{compression: format.CompressionNone, checksum: true, maxSize: DefaultMaxSize}
	if err := options.Apply(c, opts...); err != nil {
		return nil, err
	}

	return c, nil
}

// Seal wraps payload in a frame. The returned slice does not alias payload.
func Seal(payload []byte, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	return seal(make([]byte, HeaderSize, HeaderSize+len(payload)), payload, cfg)
}

// seal compresses payload into dst, which holds HeaderSize reserved bytes,
// and fills in the header.
func seal(dst, payload []byte, cfg *config) ([]byte, error) {
	if uint64(len(payload)) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d bytes", errs.ErrFrameTooLarge, len(payload))
	}

	c, err := compress.GetCodec(cfg.compression)
	if err != nil {
		return nil, err
	}

	out, err := c.Compress(dst, payload)
	if err != nil {
		return nil, err
	}

	size := len(out) - HeaderSize
	if uint64(size) > MaxPayloadSize {
		return nil, fmt.Errorf("%w: %d compressed bytes", errs.ErrFrameTooLarge, size)
	}

	h := Header{
		Compression:  cfg.compression,
		HasChecksum:  cfg.checksum,
		PayloadSize:  uint32(size),         //nolint:gosec
		OriginalSize: uint32(len(payload)), //nolint:gosec
	}
	if cfg.checksum {
		h.Checksum = hash.Checksum(payload)
	}
	h.put(out[:HeaderSize])

	return out, nil
}

// Open returns the payload of the frame that spans all of data.
func Open(data []byte, opts ...Option) ([]byte, error) {
	payload, rest, err := OpenNext(data, opts...)
	if err != nil {
		return nil, err
	}

	if len(rest) != 0 {
		return nil, fmt.Errorf("%w: %d bytes after frame", errs.ErrTrailingBytes, len(rest))
	}

	return payload, nil
}

// OpenNext returns the payload of the frame at the start of data and the
// bytes that follow it, so concatenated frames can be read in sequence.
func OpenNext(data []byte, opts ...Option) ([]byte, []byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, nil, err
	}

	h, err := ParseHeader(data)
	if err != nil {
		return nil, nil, err
	}

	if err := checkLimit(h, cfg.maxSize); err != nil {
		return nil, nil, err
	}

	body := data[HeaderSize:]
	if uint64(len(body)) < uint64(h.PayloadSize) {
		return nil, nil, fmt.Errorf("%w: frame payload needs %d bytes, %d present",
			errs.ErrTruncatedInput, h.PayloadSize, len(body))
	}

	payload, err := open(h, body[:h.PayloadSize])
	if err != nil {
		return nil, nil, err
	}

	return payload, body[h.PayloadSize:], nil
}

func checkLimit(h Header, maxSize int64) error {
	if int64(h.PayloadSize) > maxSize || int64(h.OriginalSize) > maxSize {
		return fmt.Errorf("%w: %d bytes (%d compressed), limit %d",
			errs.ErrFrameTooLarge, h.OriginalSize, h.PayloadSize, maxSize)
	}

	return nil
}

func open(h Header, body []byte) ([]byte, error) {
	c, err := compress.GetCodec(h.Compression)
	if err != nil {
		return nil, err
	}

	payload, err := c.Decompress(nil, body, int(h.OriginalSize))
	if err != nil {
		return nil, fmt.Errorf("frame payload: %w", err)
	}

	if h.HasChecksum && !hash.Verify(payload, h.Checksum) {
		return nil, fmt.Errorf("%w: want %#016x", errs.ErrChecksumMismatch, h.Checksum)
	}

	return payload, nil
}

// Write seals payload and writes the frame to w.
func Write(w io.Writer, payload []byte, opts ...Option) (int, error) {
	data, err := Seal(payload, opts...)
	if err != nil {
		return 0, err
	}

	return w.Write(data)
}

// Read reads one frame from r and returns its payload. Frames whose
// compressed or original size exceeds maxSize are rejected before their
// payload is read.
func Read(r io.Reader, maxSize int) ([]byte, error) {
	var hdr [HeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, err
	}

	h, err := ParseHeader(hdr[:])
	if err != nil {
		return nil, err
	}

	if err := checkLimit(h, int64(maxSize)); err != nil {
		return nil, err
	}

	body := make([]byte, h.PayloadSize)
	if _, err := io.ReadFull(r, body); err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}

		return nil, fmt.Errorf("frame payload: %w", err)
	}

	return open(h, body)
}

// Save encodes v with reg and seals the encoding in a frame.
func Save[T any](reg *codec.Registry, v T, opts ...Option) ([]byte, error) {
	cfg, err := newConfig(opts)
	if err != nil {
		return nil, err
	}

	n, err := codec.Size(reg, v)
	if err != nil {
		return nil, err
	}

	buf := pool.GetScratch()
	defer pool.PutScratch(buf)

	payload := buf.Resize(n)
	if _, err := codec.SaveTo(reg, v, payload); err != nil {
		return nil, err
	}

	return seal(make([]byte, HeaderSize, HeaderSize+n), payload, cfg)
}

// Load opens a frame and decodes its payload as a T. The payload must be
// consumed exactly.
func Load[T any](reg *codec.Registry, data []byte, opts ...Option) (T, error) {
	payload, err := Open(data, opts...)
	if err != nil {
		var zero T
		return zero, err
	}

	return codec.LoadExact[T](reg, payload)
}
