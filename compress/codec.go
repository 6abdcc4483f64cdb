// Package compress provides the block compressors used by sealed frames.
//
// Every Codec appends its output to a caller-supplied destination, so a frame
// can be compressed directly behind its header without an extra copy. The
// decompressed size is always known from the frame header and is passed to
// Decompress as the exact expected length.
//
// Supported algorithms:
//   - None: payload stored as-is
//   - Zstd: best ratio; pure Go by default, cgo (valyala/gozstd) with the gozstd build tag
//   - S2: balanced ratio and speed
//   - LZ4: fastest decompression
package compress

import (
	"fmt"

	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

// Codec compresses and decompresses whole blocks.
//
// Implementations are safe for concurrent use.
type Codec interface {
	// Type returns the algorithm identifier stored in frame headers.
	Type() format.CompressionType

	// Compress appends the compressed form of src to dst and returns the
	// extended slice. src is not modified.
	Compress(dst, src []byte) ([]byte, error)

	// Decompress appends the decompressed form of src to dst. size is the
	// exact decompressed length; a block that decodes to any other length
	// is rejected.
	Decompress(dst, src []byte, size int) ([]byte, error)
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCompressor(),
	format.CompressionZstd: NewZstdCompressor(),
	format.CompressionS2:   NewS2Compressor(),
	format.CompressionLZ4:  NewLZ4Compressor(),
}

// GetCodec returns the built-in codec for the compression type.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("%w: %s", errs.ErrInvalidCompression, compressionType)
}

// checkSize verifies that a decompressor appended exactly size bytes to a
// destination that was base bytes long.
func checkSize(algo string, out []byte, base, size int) ([]byte, error) {
	if got := len(out) - base; got != size {
		return nil, fmt.Errorf("%s: decompressed %d bytes, expected %d", algo, got, size)
	}

	return out, nil
}
