// Package accelcfg enumerates accelerator devices and their work queues
// the way libaccfg walks an accfg_ctx: by reading the "dsa" bus tree under
// /sys/bus/dsa/devices. It has no cgo dependency on libaccfg itself, since
// the teacher's style throughout favors raw sysfs/syscall access over cgo
// bindings to a system library.
package accelcfg

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/arjvik/go-dsa/internal/constants"
)

const busPath = "/sys/bus/dsa/devices"

// WorkQueue describes one enumerated work queue: the char device node to
// open for portal access and the mode the device exposes it in.
type WorkQueue struct {
	DeviceName string // e.g. "dsa0"
	Name       string // e.g. "wq0.0"
	CharDev    string // e.g. "/dev/dsa/wq0.0"
	Shared     bool
}

// DeviceInfo describes one enumerated accelerator device.
type DeviceInfo struct {
	Name      string // e.g. "dsa0"
	NumaNode  int
	WorkQueues []WorkQueue
}

// Context enumerates accelerator devices, standing in for an accfg_ctx.
type Context struct {
	// Root overrides busPath; used by tests to point at a fixture tree.
	Root string
}

// OpenContext returns a new Context. It exists (rather than a bare
// function) to mirror accfg_new's acquire/release pairing and to leave
// room for holding a handle in the future, the way accfg_ctx does.
func OpenContext() (*Context, error) {
	return &Context{}, nil
}

// Close releases the context. A no-op today; present for symmetry with
// accfg_unref and so callers can defer it unconditionally.
func (c *Context) Close() error { return nil }

func (c *Context) root() string {
	if c.Root != "" {
		return c.Root
	}
	return busPath
}

// Devices walks the bus tree and returns every dsa-prefixed device it
// finds, each populated with its work queues and NUMA node. Devices whose
// tree is malformed are skipped rather than aborting the whole walk, the
// same tolerance accfg_device_foreach effectively gets from the kernel
// (a device that fails to enumerate just doesn't show up).
func (c *Context) Devices() ([]DeviceInfo, error) {
	entries, err := os.ReadDir(c.root())
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), constants.DeviceNamePrefix) {
			if _, err := strconv.Atoi(strings.TrimPrefix(e.Name(), constants.DeviceNamePrefix)); err == nil {
				names = append(names, e.Name())
			}
		}
	}
	sort.Strings(names)

	var devices []DeviceInfo
	for _, name := range names {
		devDir := filepath.Join(c.root(), name)
		info := DeviceInfo{Name: name, NumaNode: readNumaNode(devDir)}

		wqEntries, err := os.ReadDir(devDir)
		if err != nil {
			continue
		}
		var wqNames []string
		for _, e := range wqEntries {
			if e.IsDir() && strings.HasPrefix(e.Name(), "wq") {
				wqNames = append(wqNames, e.Name())
			}
		}
		sort.Strings(wqNames)

		for _, wqName := range wqNames {
			wqDir := filepath.Join(devDir, wqName)
			mode := strings.TrimSpace(readFile(filepath.Join(wqDir, "mode")))
			info.WorkQueues = append(info.WorkQueues, WorkQueue{
				DeviceName: name,
				Name:       wqName,
				CharDev:    filepath.Join("/dev/dsa", wqName),
				Shared:     mode == "shared",
			})
		}

		devices = append(devices, info)
	}

	return devices, nil
}

func readNumaNode(devDir string) int {
	s := strings.TrimSpace(readFile(filepath.Join(devDir, "numa_node")))
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func readFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}
