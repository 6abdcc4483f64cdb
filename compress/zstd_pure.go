//go:build !cgo || !gozstd

package compress

import (
	"fmt"
	"slices"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// zstdPreallocRatio caps the output preallocated per input byte.
const zstdPreallocRatio = 16

// Decoders and encoders run without allocations after warmup, so they are
// pooled. DecodeAll and EncodeAll do not keep per-call state.
var zstdDecoderPool = sync.Pool{
	New: func() any {
		decoder, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(false),
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd decoder for pool: %v", err))
		}

		return decoder
	},
}

var zstdEncoderPool = sync.Pool{
	New: func() any {
		encoder, err := zstd.NewWriter(nil,
			zstd.WithEncoderLevel(zstd.SpeedDefault),
			zstd.WithEncoderCRC(false), // frames carry their own checksum
		)
		if err != nil {
			panic(fmt.Sprintf("failed to create zstd encoder for pool: %v", err))
		}

		return encoder
	},
}

// Compress appends the Zstandard frame for src to dst.
func (c ZstdCompressor) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst, nil
	}

	encoder, _ := zstdEncoderPool.Get().(*zstd.Encoder)
	defer zstdEncoderPool.Put(encoder)

	return encoder.EncodeAll(src, dst), nil
}

func (c ZstdCompressor) Decompress(dst, src []byte, size int) ([]byte, error) {
	if len(src) == 0 {
		return checkSize("zstd", dst, len(dst), size)
	}

	decoder, _ := zstdDecoderPool.Get().(*zstd.Decoder)
	defer zstdDecoderPool.Put(decoder)

	// The declared size is only trusted as far as the input could plausibly
	// expand; beyond that the decoder grows dst as it produces output.
	base := len(dst)
	if want := min(size, zstdPreallocRatio*len(src)); cap(dst)-base < want {
		dst = slices.Grow(dst, want)
	}

	out, err := decoder.DecodeAll(src, dst)
	if err != nil {
		return nil, fmt.Errorf("zstd decompression failed: %w", err)
	}

	return checkSize("zstd", out, base, size)
}
