//go:build linux

package numa

import (
	"syscall"
	"unsafe"
)

// sysMovePages is the move_pages(2) syscall number for the build's
// architecture (279 on linux/amd64, 239 on linux/arm64); x/sys/unix has no
// typed wrapper for it.
const sysMovePages = syscall.SYS_MOVE_PAGES

func uintptr_unsafePointer(p *uintptr) uintptr {
	return uintptr(unsafe.Pointer(p))
}

func uintptr_unsafePointer32(p *int32) uintptr {
	return uintptr(unsafe.Pointer(p))
}
