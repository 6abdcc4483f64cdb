package compress

import "github.com/arloliu/sss/format"

// NoOpCompressor stores blocks uncompressed.
type NoOpCompressor struct{}

var _ Codec = (*NoOpCompressor)(nil)

func NewNoOpCompressor() NoOpCompressor {
	return NoOpCompressor{}
}

func (c NoOpCompressor) Type() format.CompressionType {
	return format.CompressionNone
}

// Compress appends src to dst unchanged.
func (c NoOpCompressor) Compress(dst, src []byte) ([]byte, error) {
	return append(dst, src...), nil
}

// Decompress appends src to dst unchanged after checking its length.
func (c NoOpCompressor) Decompress(dst, src []byte, size int) ([]byte, error) {
	if len(src) != size {
		return checkSize("none", src, 0, size)
	}

	return append(dst, src...), nil
}
