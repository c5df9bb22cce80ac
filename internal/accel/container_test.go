package accel

import (
	"testing"
	"unsafe"

	"github.com/arjvik/go-dsa/internal/accelcfg"
	"github.com/arjvik/go-dsa/internal/constants"
	"github.com/arjvik/go-dsa/internal/uapi"
	"github.com/stretchr/testify/require"
)

// fakeTopology answers Topology queries from fixed, in-memory data instead
// of sysfs/move_pages(2).
type fakeTopology struct {
	maxNode    int
	configured int
	err        error
	noMemNode  int // node reported empty by NodeHasMemory; -1 to disable
	pageNode   int
}

func (f *fakeTopology) MaxNode() (int, error)        { return f.maxNode, f.err }
func (f *fakeTopology) ConfiguredNodes() (int, error) { return f.configured, f.err }
func (f *fakeTopology) NodeHasMemory(node int) (bool, error) {
	if node == f.noMemNode {
		return false, nil
	}
	return true, nil
}
func (f *fakeTopology) PageNode(addr uintptr) (int, error) { return f.pageNode, f.err }

func newTestContainer(t *testing.T) *Container {
	t.Helper()
	cfg := &accelcfg.Context{Root: t.TempDir()} // no devices present
	c := NewContainer(&fakeTopology{maxNode: 1, configured: 2, noMemNode: -1}, cfg)
	require.NoError(t, c.Initialize())
	return c
}

func TestInitializeWithNoDevicesSucceeds(t *testing.T) {
	c := newTestContainer(t)
	require.Equal(t, StatusOK, c.Status())
	require.Empty(t, c.devices)
}

func TestInitializeIsIdempotent(t *testing.T) {
	c := newTestContainer(t)
	require.ErrorIs(t, c.Initialize(), StatusAlreadyInitialized)
}

func TestInitializeRejectsBadTopology(t *testing.T) {
	cfg := &accelcfg.Context{Root: t.TempDir()}
	c := NewContainer(&fakeTopology{err: errSentinel("boom")}, cfg)
	require.ErrorIs(t, c.Initialize(), StatusInvalidNumaNodes)
}

func TestCopyFallsBackBelowThreshold(t *testing.T) {
	c := newTestContainer(t)
	dst := make([]byte, 8)
	src := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	c.Copy(dst, src, len(src))
	require.Equal(t, src, dst)
}

func TestCopyFallsBackWithNoDevices(t *testing.T) {
	c := newTestContainer(t)
	n := constants.OffloadThreshold
	dst := make([]byte, n)
	src := make([]byte, n)
	for i := range src {
		src[i] = byte(i)
	}
	c.Copy(dst, src, n)
	require.Equal(t, src, dst)
	require.Equal(t, StatusMemcpyFailed, c.Status())
}

func TestFillFallsBackWithNoDevices(t *testing.T) {
	c := newTestContainer(t)
	n := constants.OffloadThreshold
	dst := make([]byte, n)
	for i := range dst {
		dst[i] = 0xff
	}
	c.Fill(dst, n)
	for _, b := range dst {
		require.Zero(t, b)
	}
	require.Equal(t, StatusMemfillFailed, c.Status())
}

func TestCloseIsIdempotent(t *testing.T) {
	c := newTestContainer(t)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestInitializeRejectsNumaCountMismatch(t *testing.T) {
	cfg := &accelcfg.Context{Root: t.TempDir()}
	c := NewContainer(&fakeTopology{maxNode: 1, configured: 2, noMemNode: 0}, cfg)
	require.ErrorIs(t, c.Initialize(), StatusInvalidNumaNodes)
}

func TestCopyRoutesToNumaLocalDevice(t *testing.T) {
	c := newTestContainer(t)

	var near, far fakeHandle
	far.onSubmit = func(_ int, _ int, desc *uapi.HWDescriptor, comp *uapi.CompletionRecord) {
		copy(unsafe.Slice((*byte)(unsafe.Pointer(uintptr(desc.DstAddr))), desc.XferSize),
			unsafe.Slice((*byte)(unsafe.Pointer(uintptr(desc.SrcAddr))), desc.XferSize))
		comp.Status = uapi.StatusSuccess
		comp.BytesCompleted = uint64(desc.XferSize)
	}
	devNear := newDeviceWithHandle(accelcfg.DeviceInfo{Name: "dsa0", NumaNode: 0}, &near)
	devFar := newDeviceWithHandle(accelcfg.DeviceInfo{Name: "dsa1", NumaNode: 1}, &far)

	c.devices = []*Device{devNear, devFar}
	c.devicesByNode = map[int][]*Device{0: {devNear}, 1: {devFar}}
	c.topology.(*fakeTopology).pageNode = 1

	n := constants.OffloadThreshold
	dst := make([]byte, n)
	src := make([]byte, n)
	for i := range src {
		src[i] = byte(i)
	}

	c.Copy(dst, src, n)

	require.Equal(t, src, dst)
	require.Equal(t, StatusOK, c.Status())
	require.Zero(t, near.submits)
	require.Equal(t, 1, far.submits)
}
