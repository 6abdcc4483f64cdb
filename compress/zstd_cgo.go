//go:build cgo && gozstd

package compress

import (
	"fmt"

	"github.com/valyala/gozstd"
)

const zstdLevel = 3

// Compress appends the Zstandard frame for src to dst using libzstd.
func (c ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	return gozstd.CompressLevel(dst, src, zstdLevel), nil
}

func (c ZstdCompressor) Decompress(dst, src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return checkSize("zstd", dst, len(dst), size)
	}

	base := len(dst)
	out, err := gozstd.Decompress(dst, src)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return checkSize("zstd", out, base, size)
}
