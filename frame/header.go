package frame

import (
	"fmt"

	"github.com/arloliu/sss/compress"
	"github.com/arloliu/sss/endian"
	"github.com/arloliu/sss/errs"
	"github.com/arloliu/sss/format"
)

const (
	// HeaderSize is the fixed size of a frame header in bytes.
	HeaderSize = 20

	// Magic identifies a frame; stored little-endian it reads "SS".
	Magic uint16 = 0x5353

	CompressionMask = 0x0F // bits 0-3 of the flags byte
	ChecksumMask    = 0x10 // bit 4 of the flags byte
	ReservedMask    = 0xE0 // bits 5-7 of the flags byte, must be zero
)

// Header is the decoded form of the 20-byte frame header. All fields are
// little-endian on the wire:
//
//	offset 0  magic         uint16
//	offset 2  flags         uint8
//	offset 3  reserved      uint8, zero
//	offset 4  payload size  uint32, after compression
//	offset 8  original size uint32, before compression
//	offset 12 checksum      uint64, xxHash64 of the original payload or zero
type Header struct {
	Compression  format.CompressionType
	HasChecksum  bool
	PayloadSize  uint32
	OriginalSize uint32
	Checksum     uint64
}

// Size returns the total frame length described by the header.
func (h Header) Size() int {
	return HeaderSize + int(h.PayloadSize)
}

func (h Header) flags() uint8 {
	flags := uint8(h.Compression) & CompressionMask
	if h.HasChecksum {
		flags |= ChecksumMask
	}

	return flags
}

// Bytes serializes the header into a new HeaderSize byte slice.
func (h Header) Bytes() []byte {
	b := make([]byte, HeaderSize)
	h.put(b)

	return b
}

func (h Header) put(b []byte) {
	engine := endian.GetLittleEndianEngine()

	engine.PutUint16(b[0:2], Magic)
	b[2] = h.flags()
	b[3] = 0
	engine.PutUint32(b[4:8], h.PayloadSize)
	engine.PutUint32(b[8:12], h.OriginalSize)
	engine.PutUint64(b[12:20], h.Checksum)
}

// Validate checks the header fields for consistency.
func (h Header) Validate() error {
	if _, err := compress.GetCodec(h.Compression); err != nil {
		return err
	}

	if !h.HasChecksum && h.Checksum != 0 {
		return fmt.Errorf("%w: checksum %#x present without checksum flag", errs.ErrInvalidFrameHeader, h.Checksum)
	}

	if h.Compression == format.CompressionNone && h.PayloadSize != h.OriginalSize {
		return fmt.Errorf("%w: uncompressed payload of %d bytes declares original size %d",
			errs.ErrInvalidFrameHeader, h.PayloadSize, h.OriginalSize)
	}

	return nil
}

// ParseHeader parses and validates the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, fmt.Errorf("%w: need %d bytes, got %d", errs.ErrInvalidFrameHeader, HeaderSize, len(data))
	}

	engine := endian.GetLittleEndianEngine()

	if magic := engine.Uint16(data[0:2]); magic != Magic {
		return Header{}, fmt.Errorf("%w: %#04x", errs.ErrInvalidFrameMagic, magic)
	}

	flags := data[2]
	if flags&ReservedMask != 0 || data[3] != 0 {
		return Header{}, fmt.Errorf("%w: reserved bits set", errs.ErrInvalidFrameHeader)
	}

	h := Header{
		Compression:  format.CompressionType(flags & CompressionMask),
		HasChecksum:  flags&ChecksumMask != 0,
		PayloadSize:  engine.Uint32(data[4:8]),
		OriginalSize: engine.Uint32(data[8:12]),
		Checksum:     engine.Uint64(data[12:20]),
	}

	if err := h.Validate(); err != nil {
		return Header{}, err
	}

	return h, nil
}
