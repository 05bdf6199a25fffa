// Package bufpool provides pooled byte buffers for response buffering and
// other short-lived byte accumulation, backed by bytebufferpool instead of
// a hand-rolled sync.Pool so buffer growth uses its calibrated size
// tracking (it shrinks pooled buffers that were one-off oversized instead
// of pinning the pool's high-water mark forever).
package bufpool

import "github.com/valyala/bytebufferpool"

// Buffer is a pooled, growable byte buffer.
type Buffer = bytebufferpool.ByteBuffer

// Get returns a buffer from the pool, reset and ready to use.
func Get() *Buffer {
	return bytebufferpool.Get()
}

// Put returns buf to the pool for reuse. buf must not be used afterward.
func Put(buf *Buffer) {
	bytebufferpool.Put(buf)
}
