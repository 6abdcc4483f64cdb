// Package pool recycles the scratch buffers used while sealing frames.
package pool

import "sync"

const (
	// ScratchBufferDefaultSize is the capacity of a newly allocated scratch buffer.
	ScratchBufferDefaultSize = 1024 * 16 // 16KiB
	// ScratchBufferMaxThreshold is the largest capacity returned to the default pool.
	ScratchBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a reusable byte slice.
type ByteBuffer struct {
	B []byte
}

func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{B: make([]byte, 0, defaultSize)}
}

func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer and keeps its memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures at least n more bytes fit without reallocating. Small buffers
// grow by ScratchBufferDefaultSize; larger ones by a quarter of their capacity.
func (bb *ByteBuffer) Grow(n int) {
	if cap(bb.B)-len(bb.B) >= n {
		return
	}

	growBy := ScratchBufferDefaultSize
	if cap(bb.B) > 4*ScratchBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}
	growBy = max(growBy, n)

	grown := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(grown, bb.B)
	bb.B = grown
}

// Resize sets the length to n, growing the buffer when needed. Bytes past the
// previous length are not cleared.
func (bb *ByteBuffer) Resize(n int) []byte {
	if n > cap(bb.B) {
		bb.Grow(n - len(bb.B))
	}
	bb.B = bb.B[:n]

	return bb.B
}

// Write appends data, growing the buffer as needed.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// ByteBufferPool is a sync.Pool of ByteBuffers. Buffers whose capacity exceeds
// maxThreshold are dropped on Put instead of being retained.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var scratchPool = NewByteBufferPool(ScratchBufferDefaultSize, ScratchBufferMaxThreshold)

// GetScratch returns an empty buffer from the default pool.
func GetScratch() *ByteBuffer {
	return scratchPool.Get()
}

// PutScratch returns a buffer obtained from GetScratch.
func PutScratch(bb *ByteBuffer) {
	scratchPool.Put(bb)
}
