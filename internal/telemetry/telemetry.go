// Package telemetry records per-call-site offload counters, mirroring the
// reference shims' static call_counts map: one counter per (call site,
// transfer size) pair, dumpable as CSV text.
package telemetry

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// Sink accumulates call-site counters for one primitive kind (copy, move,
// set, compare). The zero value is ready to use.
type Sink struct {
	counters sync.Map // key string -> *atomic.Uint64
}

func key(site string, size int) string {
	var b strings.Builder
	b.WriteString(site)
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(size))
	return b.String()
}

// Record increments the counter for the given call site and transfer size.
func (s *Sink) Record(site string, size int) {
	k := key(site, size)
	v, _ := s.counters.LoadOrStore(k, new(atomic.Uint64))
	v.(*atomic.Uint64).Add(1)
}

// Snapshot returns every recorded key with its current count. The map is
// unordered; Dump sorts the keys before writing.
func (s *Sink) Snapshot() map[string]uint64 {
	out := make(map[string]uint64)
	s.counters.Range(func(k, v any) bool {
		out[k.(string)] = v.(*atomic.Uint64).Load()
		return true
	})
	return out
}

// Dump writes every recorded counter to path as "<site>,<size>,<count>"
// lines, one per call site/size pair, the same shape print_counts writes
// in the reference implementation.
func (s *Sink) Dump(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	snap := s.Snapshot()
	keys := make([]string, 0, len(snap))
	for k := range snap {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w := bufio.NewWriter(f)
	for _, k := range keys {
		if _, err := fmt.Fprintf(w, "%s,%d\n", k, snap[k]); err != nil {
			return err
		}
	}
	return w.Flush()
}

// Reset clears every recorded counter. Used by tests and by long-running
// processes that periodically dump and restart accounting.
func (s *Sink) Reset() {
	s.counters.Range(func(k, _ any) bool {
		s.counters.Delete(k)
		return true
	})
}
