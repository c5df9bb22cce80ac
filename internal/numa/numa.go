// Package numa provides the host NUMA topology queries the accelerator
// container needs to route a destination buffer to a NUMA-local device.
// It has no pure-Go syscall wrapper in the ecosystem this module pulls
// from, so it talks to the kernel directly via raw syscalls and sysfs,
// the same style the teacher uses throughout internal/queue and
// internal/ctrl for operations golang.org/x/sys/unix doesn't expose.
package numa

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Topology answers the questions Container.Initialize and the container's
// device routing need about host NUMA layout. The real implementation backs onto sysfs
// and move_pages(2); tests substitute a fake.
type Topology interface {
	// MaxNode returns the highest NUMA node id the kernel reports.
	MaxNode() (int, error)
	// ConfiguredNodes returns the number of NUMA nodes the kernel
	// considers configured (have CPUs or memory assigned).
	ConfiguredNodes() (int, error)
	// NodeHasMemory reports whether the given node has nonzero memory.
	NodeHasMemory(node int) (bool, error)
	// PageNode returns the NUMA node currently backing the page at addr.
	PageNode(addr uintptr) (int, error)
}

const sysNodePath = "/sys/devices/system/node"

// SysfsTopology implements Topology against /sys/devices/system/node and
// the move_pages(2) syscall.
type SysfsTopology struct {
	// Root overrides sysNodePath; used by tests to point at a fixture
	// directory instead of the real sysfs tree.
	Root string
}

func (t *SysfsTopology) root() string {
	if t.Root != "" {
		return t.Root
	}
	return sysNodePath
}

func (t *SysfsTopology) nodeDirs() ([]string, error) {
	entries, err := os.ReadDir(t.root())
	if err != nil {
		return nil, err
	}
	var nodes []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "node") {
			nodes = append(nodes, e.Name())
		}
	}
	return nodes, nil
}

// MaxNode implements Topology.
func (t *SysfsTopology) MaxNode() (int, error) {
	nodes, err := t.nodeDirs()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, n := range nodes {
		id, err := strconv.Atoi(strings.TrimPrefix(n, "node"))
		if err != nil {
			continue
		}
		if id > max {
			max = id
		}
	}
	return max, nil
}

// ConfiguredNodes implements Topology.
func (t *SysfsTopology) ConfiguredNodes() (int, error) {
	nodes, err := t.nodeDirs()
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

// NodeHasMemory implements Topology, reading <node>/meminfo's MemTotal line
// the way numa_node_size64() does in the reference implementation.
func (t *SysfsTopology) NodeHasMemory(node int) (bool, error) {
	data, err := os.ReadFile(filepath.Join(t.root(), "node"+strconv.Itoa(node), "meminfo"))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 4 && fields[2] == "MemTotal:" {
			kb, err := strconv.ParseInt(fields[3], 10, 64)
			if err != nil {
				return false, nil
			}
			return kb > 0, nil
		}
	}
	return false, nil
}

// movePagesSyscallNoopCount is the number of pages PageNode asks
// move_pages(2) about per call: one, queried without migrating it. PageNode
// itself is implemented per-OS in pagenode_linux.go / pagenode_other.go,
// since only Linux has the syscall; other platforms always fall back to
// round-robin routing.
const movePagesSyscallNoopCount = 1
