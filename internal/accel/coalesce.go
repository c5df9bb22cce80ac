package accel

import (
	"sort"
	"sync"
	"unsafe"
)

// pendingWrite is one staged small write waiting to be merged with its
// neighbors at Flush time.
type pendingWrite struct {
	dstAddr uintptr
	dst     []byte
	src     []byte
}

// coalescer merges adjacent small writes staged under the same tag into a
// single larger offload, the way the reference implementation's
// memcpy_task_map batches sub-threshold requests before submitting to the
// device. issue performs the actual (possibly merged) transfer; Container
// wires this to issueCoalesced, which goes through Copy so a flush still
// lands the write via the CPU fallback when no device is usable.
type coalescer struct {
	mu    sync.Mutex
	pend  map[string][]pendingWrite
	issue func(dst, src []byte) error
}

func newCoalescer(issue func(dst, src []byte) error) *coalescer {
	return &coalescer{pend: make(map[string][]pendingWrite), issue: issue}
}

func (c *coalescer) stage(tag string, dst, src []byte) {
	if len(dst) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pend[tag] = append(c.pend[tag], pendingWrite{
		dstAddr: uintptr(unsafe.Pointer(&dst[0])),
		dst:     dst,
		src:     src,
	})
}

// flush groups tag's staged writes into maximal contiguous-destination
// runs, then issues one transfer per run: a pooled scratch buffer holds
// the merged source bytes, which are copied out to the merged destination
// byte-for-byte via a single issue call per run.
func (c *coalescer) flush(tag string) error {
	c.mu.Lock()
	writes := c.pend[tag]
	delete(c.pend, tag)
	c.mu.Unlock()

	if len(writes) == 0 {
		return nil
	}

	sort.Slice(writes, func(i, j int) bool { return writes[i].dstAddr < writes[j].dstAddr })

	var firstErr error
	i := 0
	for i < len(writes) {
		j := i + 1
		total := len(writes[i].dst)
		for j < len(writes) {
			prevEnd := writes[j-1].dstAddr + uintptr(len(writes[j-1].dst))
			if writes[j].dstAddr != prevEnd {
				break
			}
			total += len(writes[j].dst)
			j++
		}

		if err := c.issueRun(writes[i:j], total); err != nil && firstErr == nil {
			firstErr = err
		}
		i = j
	}
	return firstErr
}

func (c *coalescer) issueRun(run []pendingWrite, total int) error {
	if len(run) == 1 {
		return c.issue(run[0].dst, run[0].src)
	}

	merged := getBuffer(total)
	defer putBuffer(merged)

	off := 0
	for _, w := range run {
		off += copy(merged[off:], w.src)
	}

	dstPtr := unsafe.Pointer(run[0].dstAddr)
	dstSlice := unsafe.Slice((*byte)(dstPtr), total)
	return c.issue(dstSlice, merged[:total])
}
