package accel

import (
	"sync"

	"github.com/arjvik/go-dsa/internal/constants"
)

// The bucket pools below hand out pooled byte slices for the scratch buffers the
// coalescing stage needs when it merges adjacent small writes into one
// larger offload. Bucket ceilings are multiples of the offload threshold,
// since a merged run's whole point is to cross that threshold; the pool
// balances memory use against allocation churn with a *[]byte pattern to
// avoid the interface-boxing allocation sync.Pool.Put(any) would cost.
var bucketSizes = []int{
	constants.OffloadThreshold,
	2 * constants.OffloadThreshold,
	4 * constants.OffloadThreshold,
	8 * constants.OffloadThreshold,
}

var buckets = newBuckets(bucketSizes)

type bucket struct {
	size int
	pool sync.Pool
}

func newBuckets(sizes []int) []*bucket {
	bs := make([]*bucket, len(sizes))
	for i, size := range sizes {
		size := size
		bs[i] = &bucket{
			size: size,
			pool: sync.Pool{New: func() any { b := make([]byte, size); return &b }},
		}
	}
	return bs
}

// getBuffer returns a pooled buffer of at least the requested size. Sizes
// above the largest bucket get a fresh, unpooled allocation.
func getBuffer(size int) []byte {
	for _, b := range buckets {
		if size <= b.size {
			return (*b.pool.Get().(*[]byte))[:size]
		}
	}
	return make([]byte, size)
}

// putBuffer returns a buffer to the pool it came from. Buffers whose
// capacity doesn't match a bucket exactly (the oversize case) are dropped.
func putBuffer(buf []byte) {
	c := cap(buf)
	buf = buf[:c]
	for _, b := range buckets {
		if b.size == c {
			b.pool.Put(&buf)
			return
		}
	}
}
