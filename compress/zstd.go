package compress

import "github.com/arloliu/sss/format"

// ZstdCompressor compresses blocks as Zstandard frames. The implementation
// is klauspost/compress by default and libzstd through valyala/gozstd when
// built with cgo and the gozstd tag; both produce interchangeable frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

func (c ZstdCompressor) Type() format.CompressionType {
	return format.CompressionZstd
}
