//go:build amd64

package accel

import (
	"unsafe"

	"github.com/arjvik/go-dsa/internal/constants"
)

// movdir64b issues a single 64-byte direct store of desc to the work queue
// portal, preceded by an SFENCE so earlier stores to the descriptor's
// memory are globally visible before the device can observe it. portal
// must point at an mmap'd, write-only work queue page; desc must point at
// a 64-byte-aligned hardware descriptor.
//
//go:noescape
func movdir64bAsm(portal, desc unsafe.Pointer)

func movdir64b(portal unsafe.Pointer, desc *[constants.DescriptorSize]byte) {
	movdir64bAsm(portal, unsafe.Pointer(desc))
}

const haveMovdir64b = true
