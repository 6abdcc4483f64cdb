package compress

import (
	"fmt"
	"slices"

	"github.com/klauspost/compress/s2"

	"github.com/arloliu/sss/format"
)

type S2Compressor struct{}

var _ Codec = (*S2Compressor)(nil)

func NewS2Compressor() S2Compressor {
	return S2Compressor{}
}

func (c S2Compressor) Type() format.CompressionType {
	return format.CompressionS2
}

// Compress encodes src as an S2 block directly into the tail of dst.
func (c S2Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	bound := s2.MaxEncodedLen(len(src))
	if bound < 0 {
		return nil, fmt.Errorf("s2: block of %d bytes is too large", len(src))
	}

	base := len(dst)
	dst = slices.Grow(dst, bound)
	enc := s2.Encode(dst[base:base+bound], src)

	return dst[:base+len(enc)], nil
}

func (c S2Compressor) Decompress(dst, src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return checkSize("s2", dst, len(dst), size)
	}

	n, err := s2.DecodedLen(src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}
	if n != size {
		return nil, fmt.Errorf("s2: block decodes to %d bytes, expected %d", n, size)
	}

	base := len(dst)
	dst = slices.Grow(dst, size)
	dec, err := s2.Decode(dst[base:base+size], src)
	if err != nil {
		return nil, fmt.Errorf("s2 decompression failed: %w", err)
	}

	return checkSize("s2", dst[:base+len(dec)], base, size)
}
