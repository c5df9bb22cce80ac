// Package accel drives individual accelerator devices and the container
// that fans work out across all of them. A Device owns one accelerator's
// work-queue portals; Container (container.go) owns the set of Devices and
// the routing/coalescing policy spec describes.
package accel

import (
	"sync"
	"sync/atomic"
	"syscall"
	"time"
	"unsafe"

	"github.com/arjvik/go-dsa/internal/accelcfg"
	"github.com/arjvik/go-dsa/internal/constants"
	"github.com/arjvik/go-dsa/internal/logging"
	"github.com/arjvik/go-dsa/internal/uapi"
)

// handle abstracts the raw hardware path a Device drives, so tests can
// substitute a fake that never touches /dev/dsa or real memory. The real
// implementation is *mmapHandle; tests use a fakeHandle (see device_test.go).
type handle interface {
	// numSlots reports how many work-queue portals the handle can submit to.
	numSlots() int
	// submit stores desc to work-queue portal slot and busy-waits for the
	// device to populate comp, honoring the wall-clock completion budget.
	submit(slot int, desc *uapi.HWDescriptor, comp *uapi.CompletionRecord) error
	close() error
}

// Device drives a single accelerator's work queues. It has no public
// constructor; Container.Initialize builds and owns every Device.
type Device struct {
	name        string
	numaNode    int
	h           handle
	taskCounter atomic.Uint64
	mu          sync.Mutex
	closed      bool
}

func newDevice(info accelcfg.DeviceInfo) (*Device, error) {
	h, err := newMmapHandle(info)
	if err != nil {
		return nil, err
	}
	return newDeviceWithHandle(info, h), nil
}

// newDeviceWithHandle builds a Device around an arbitrary handle. It is the
// injection seam tests use to drive Device.run against a fakeHandle instead
// of real mmap'd hardware.
func newDeviceWithHandle(info accelcfg.DeviceInfo, h handle) *Device {
	return &Device{name: info.Name, numaNode: info.NumaNode, h: h}
}

// NumaNode reports the NUMA node this device's memory is local to.
func (d *Device) NumaNode() int { return d.numaNode }

// Name returns the device's sysfs name, e.g. "dsa0".
func (d *Device) Name() string { return d.name }

// Close releases the device's work-queue portals. A Device must not be
// used after Close returns.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	d.closed = true
	return d.h.close()
}

// Copy offloads a memmove-semantics copy of n bytes from src to dst,
// resubmitting on partial-completion page faults the way the reference
// driver does, until the whole transfer lands or the device reports a
// hard failure.
func (d *Device) Copy(dst, src unsafe.Pointer, n uint32) error {
	return d.run(uapi.OpMemMove, dst, src, n)
}

// Fill offloads a zero-fill of n bytes at dst.
func (d *Device) Fill(dst unsafe.Pointer, n uint32) error {
	return d.run(uapi.OpMemFill, dst, nil, n)
}

func (d *Device) run(op uapi.Opcode, dst, src unsafe.Pointer, n uint32) error {
	var desc uapi.HWDescriptor
	var comp uapi.CompletionRecord

	desc.Opcode = op
	desc.Flags = uapi.FlagCompletionRecordAddrValid | uapi.FlagRequestCompletionRecord
	desc.DstAddr = uint64(uintptr(dst))
	if src != nil {
		desc.SrcAddr = uint64(uintptr(src))
	}
	desc.XferSize = n

	// The portal slot is chosen once per logical operation, from the count
	// of operations this device has completed so far, and held fixed across
	// any page-fault retries below: task_counter mod wq_count, incremented
	// only when the whole operation succeeds.
	slot := int(d.taskCounter.Load() % uint64(d.h.numSlots()))

	for {
		comp = uapi.CompletionRecord{}
		desc.CompletionAddr = uint64(uintptr(unsafe.Pointer(&comp)))

		if err := d.h.submit(slot, &desc, &comp); err != nil {
			return err
		}

		status := uapi.MaskStatus(comp.Status)
		switch status {
		case uapi.StatusSuccess:
			d.taskCounter.Add(1)
			return nil
		case uapi.StatusPageFaultNoBOF:
			done := uint32(comp.BytesCompleted)
			if done >= desc.XferSize {
				d.taskCounter.Add(1)
				return nil
			}
			if op == uapi.OpMemFill {
				// A fault partway through a fill is resolved on the CPU
				// rather than resubmitted: the remainder is a handful of
				// zero bytes, not worth a second device round trip.
				remainder := unsafe.Slice((*byte)(unsafe.Pointer(uintptr(desc.DstAddr)+uintptr(done))), desc.XferSize-done)
				clear(remainder)
				d.taskCounter.Add(1)
				return nil
			}
			resolvePageFault(uintptr(comp.FaultAddr))
			desc.XferSize -= done
			desc.DstAddr += uint64(done)
			if src != nil {
				desc.SrcAddr += uint64(done)
			}
			continue
		default:
			logging.Debug("accel: device reported non-success completion", "device", d.name, "status", status)
			return &DeviceError{Device: d.name, Status: status}
		}
	}
}

// resolvePageFault touches the faulting page so the kernel resolves it
// before the descriptor is resubmitted, mirroring the flip-flip trick the
// reference implementation uses to force a fault-in without altering the
// byte's value.
func resolvePageFault(addr uintptr) {
	if addr == 0 {
		return
	}
	p := (*byte)(unsafe.Pointer(addr))
	*p = ^(*p)
	*p = ^(*p)
}

// DeviceError reports a non-retryable completion status from a device.
type DeviceError struct {
	Device string
	Status uint8
}

func (e *DeviceError) Error() string {
	return "accel: device " + e.Device + " completion status " + statusName(e.Status)
}

func statusName(status uint8) string {
	switch status {
	case uapi.StatusNone:
		return "none (timed out)"
	default:
		return "unknown"
	}
}

// mmapHandle is the real handle implementation: one or more mmap'd,
// write-only work-queue portal pages backed by /dev/dsa/wqN.M.
type mmapHandle struct {
	fds     []int
	portals []unsafe.Pointer
}

func newMmapHandle(info accelcfg.DeviceInfo) (*mmapHandle, error) {
	if !haveMovdir64b {
		return nil, errNoMovdir64b
	}
	h := &mmapHandle{}
	for _, wq := range info.WorkQueues {
		if len(h.portals) >= constants.MaxWorkQueuesPerDevice {
			break
		}
		fd, err := syscall.Open(wq.CharDev, syscall.O_RDWR, 0)
		if err != nil {
			h.close()
			return nil, err
		}
		portal, err := mmapPortal(fd)
		if err != nil {
			syscall.Close(fd)
			h.close()
			return nil, err
		}
		h.fds = append(h.fds, fd)
		h.portals = append(h.portals, portal)
	}
	if len(h.portals) == 0 {
		return nil, errNoWorkQueues
	}
	return h, nil
}

var errNoWorkQueues = &simpleError{"accel: device has no usable work queues"}

var errNoMovdir64b = &simpleError{"accel: platform lacks the MOVDIR64B instruction"}

type simpleError struct{ msg string }

func (e *simpleError) Error() string { return e.msg }

func mmapPortal(fd int) (unsafe.Pointer, error) {
	addr, _, errno := syscall.Syscall6(
		syscall.SYS_MMAP,
		0,
		uintptr(constants.PortalSize),
		syscall.PROT_WRITE,
		syscall.MAP_SHARED|syscall.MAP_POPULATE,
		uintptr(fd),
		0,
	)
	if errno != 0 {
		return nil, errno
	}
	return unsafe.Pointer(addr), nil
}

func (h *mmapHandle) numSlots() int { return len(h.portals) }

func (h *mmapHandle) submit(slot int, desc *uapi.HWDescriptor, comp *uapi.CompletionRecord) error {
	portal := h.portals[slot]

	var wire [constants.DescriptorSize]byte
	raw := uapi.MarshalDescriptor(desc)
	copy(wire[:], raw)

	movdir64b(portal, &wire)

	deadline := time.Now().Add(constants.CompletionWaitBudget)
	for {
		if uapi.MaskStatus(comp.Status) != uapi.StatusNone {
			return nil
		}
		if time.Now().After(deadline) {
			return errCompletionTimeout
		}
	}
}

var errCompletionTimeout = &simpleError{"accel: completion wait budget exceeded"}

func (h *mmapHandle) close() error {
	for i := len(h.portals) - 1; i >= 0; i-- {
		syscall.Syscall(syscall.SYS_MUNMAP, uintptr(h.portals[i]), uintptr(constants.PortalSize), 0)
	}
	for i := len(h.fds) - 1; i >= 0; i-- {
		syscall.Close(h.fds[i])
	}
	h.portals = nil
	h.fds = nil
	return nil
}
