package compress

import (
	"fmt"
	"slices"
	"sync"

	"github.com/pierrec/lz4/v4"

	"github.com/arloliu/sss/format"
)

// lz4MaxExpansion bounds how many bytes one byte of an LZ4 block can decode
// to; a match length byte of 255 is the densest encoding.
const lz4MaxExpansion = 255

// lz4CompressorPool pools lz4.Compressor instances, which keep a hash table
// between calls.
var lz4CompressorPool = sync.Pool{
	New: func() any {
		return &lz4.Compressor{}
	},
}

type LZ4Compressor struct{}

var _ Codec = (*LZ4Compressor)(nil)

func NewLZ4Compressor() LZ4Compressor {
	return LZ4Compressor{}
}

func (c LZ4Compressor) Type() format.CompressionType {
	return format.CompressionLZ4
}

// Compress writes src as a raw LZ4 block into the tail of dst.
func (c LZ4Compressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	bound := lz4.CompressBlockBound(len(src))
	base := len(dst)
	dst = slices.Grow(dst, bound)

	lc, _ := lz4CompressorPool.Get().(*lz4.Compressor)
	defer lz4CompressorPool.Put(lc)

	n, err := lc.CompressBlock(src, dst[base:base+bound])
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	return dst[:base+n], nil
}

// Decompress decodes a raw LZ4 block. The block format does not record its
// decoded length, so size bounds the output buffer.
func (c LZ4Compressor) Decompress(dst, src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return checkSize("lz4", dst, len(dst), size)
	}

	if size > lz4MaxExpansion*len(src)+lz4MaxExpansion {
		return nil, fmt.Errorf("lz4: %d byte block cannot decode to %d bytes", len(src), size)
	}

	base := len(dst)
	dst = slices.Grow(dst, size)

	n, err := lz4.UncompressBlock(src, dst[base:base+size])
	if err != nil {
		return nil, fmt.Errorf("lz4 decompression failed: %w", err)
	}

	return checkSize("lz4", dst[:base+n], base, size)
}
