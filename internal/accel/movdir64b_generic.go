//go:build !amd64

package accel

import (
	"unsafe"

	"github.com/arjvik/go-dsa/internal/constants"
)

// movdir64b is unavailable outside amd64; newMmapHandle refuses to
// construct a real handle when haveMovdir64b is false, so this path is
// unreachable in practice and exists only to satisfy the handle's
// low-level submission seam on non-amd64 builds.
func movdir64b(portal unsafe.Pointer, desc *[constants.DescriptorSize]byte) {
	panic("accel: movdir64b issued on a platform without the instruction")
}

const haveMovdir64b = false
