package pool

import "sync"

// BufferSize copy buffer size used when streaming photos (64KB)
const BufferSize = 64 * 1024

// SharedBufferPool holds *[]byte to avoid an allocation per Put (SA6002)
var SharedBufferPool = sync.Pool{
	New: func() interface{} {
		buf := make([]byte, BufferSize)
		return &buf
	},
}

// Get borrows a copy buffer
func Get() *[]byte {
	return SharedBufferPool.Get().(*[]byte)
}

// Put returns a buffer to the pool
func Put(buf *[]byte) {
	SharedBufferPool.Put(buf)
}
