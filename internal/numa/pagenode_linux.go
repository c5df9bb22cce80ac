//go:build linux

package numa

import (
	"os"
	"syscall"
)

// PageNode implements Topology via the move_pages(2) syscall with a nil
// nodes argument, which asks the kernel to report (not change) the node
// each listed page currently resides on.
func (t *SysfsTopology) PageNode(addr uintptr) (int, error) {
	pageSize := uintptr(os.Getpagesize())
	pageAddr := addr &^ (pageSize - 1)

	pages := [movePagesSyscallNoopCount]uintptr{pageAddr}
	status := [movePagesSyscallNoopCount]int32{}

	_, _, errno := syscall.Syscall6(
		sysMovePages,
		0, // pid 0 = calling process
		uintptr(movePagesSyscallNoopCount),
		uintptr_unsafePointer(&pages[0]),
		0, // nodes == nil: query only, don't migrate
		uintptr_unsafePointer32(&status[0]),
		0, // flags
	)
	if errno != 0 {
		return 0, errno
	}
	if status[0] < 0 {
		return 0, syscall.Errno(-status[0])
	}
	return int(status[0]), nil
}
