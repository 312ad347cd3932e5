package pools

import "sync"

// Read-path buffer sizes. ChunkBufferSize matches the per-read chunk the
// connection handler uses; RequestBufferSize matches the total read cap.
const (
	ChunkBufferSize   = 512
	RequestBufferSize = 8 * 1024
)

// BytePool is a tiered byte slice pool. Buffers come back with zero length
// and their tier's capacity.
type BytePool struct {
	pools []*sync.Pool
	sizes []int
}

var defaultSizes = []int{ChunkBufferSize, 2048, RequestBufferSize}

// NewBytePool creates a byte pool with the standard read-path tiers.
func NewBytePool() *BytePool {
	return NewBytePoolWithSizes(defaultSizes)
}

// NewBytePoolWithSizes creates a byte pool with custom size tiers. Sizes must
// be in ascending order.
func NewBytePoolWithSizes(sizes []int) *BytePool {
	bp := &BytePool{
		pools: make([]*sync.Pool, len(sizes)),
		sizes: sizes,
	}

	for i, size := range sizes {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, 0, sz)
				return &buf
			},
		}
	}

	return bp
}

// Get returns an empty buffer with capacity of at least size. Oversized
// requests are allocated directly and will not be pooled on Put.
func (bp *BytePool) Get(size int) []byte {
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			bufPtr := bp.pools[i].Get().(*[]byte)
			return (*bufPtr)[:0]
		}
	}

	return make([]byte, 0, size)
}

// Put returns a buffer to its tier. Buffers whose capacity matches no tier
// are left to the GC.
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)

	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			buf = buf[:0]
			bp.pools[i].Put(&buf)
			return
		}
	}
}
