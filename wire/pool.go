package wire

import "sync"

// The original single-threaded decoder free list (a capped global slice)
// is expressed as a sync.Pool here so reuse stays correct when callers
// decode from multiple goroutines.
var readerPool = sync.Pool{
	New: func() any { return new(Reader) },
}

// GetReader returns a pooled reader seated over buf.
func GetReader(buf []byte) *Reader {
	r := readerPool.Get().(*Reader)
	r.SetBlock(buf, 0, len(buf))
	return r
}

// PutReader clears r and returns it to the pool. The caller must not use
// r afterwards.
func PutReader(r *Reader) {
	r.Clear()
	readerPool.Put(r)
}
