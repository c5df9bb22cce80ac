// Package uapi defines the wire layout of the accelerator's hardware
// descriptor and completion record, and the opcodes/flags/status codes
// that populate them. The layout is fixed by the accelerator ISA, not by
// Go, so every struct here carries an explicit byte offset and a
// hand-written Marshal/Unmarshal pair rather than relying on Go's struct
// layout or encoding/gob.
package uapi

import "unsafe"

// Opcode identifies the operation a hardware descriptor requests.
type Opcode uint8

const (
	OpMemMove Opcode = 0x03
	OpMemFill Opcode = 0x04
	// OpCompare is reserved for a future accelerator generation able to
	// offload comparison; no Container method currently issues it.
	OpCompare Opcode = 0x05
)

// Descriptor flag bits.
const (
	FlagCompletionRecordAddrValid uint32 = 1 << 0
	FlagRequestCompletionRecord   uint32 = 1 << 1
)

// Completion status codes. Bits 0-6 carry the status class; bit 7 is the
// "block on fault" indicator the status-mask strips before comparison.
const (
	StatusNone           uint8 = 0x00
	StatusSuccess        uint8 = 0x01
	statusMask           uint8 = 0x7f
	StatusPageFaultNoBOF uint8 = 0x03 // page fault, no block-on-fault requested
)

// MaskStatus strips the block-on-fault bit so callers can compare against
// the documented status classes.
func MaskStatus(status uint8) uint8 {
	return status & statusMask
}

// HWDescriptor is the 64-byte hardware descriptor submitted to a work
// queue portal via a single MOVDIR64B store. Fields, in byte order: opcode,
// privilege bit, reserved, flags, completion-record address, source,
// destination, transfer size, reserved tail.
type HWDescriptor struct {
	Opcode          Opcode
	Priv            uint8
	_               uint16 // reserved, must be zero
	Flags           uint32
	CompletionAddr  uint64
	SrcAddr         uint64
	DstAddr         uint64
	XferSize        uint32
	_               [28]uint8 // reserved tail, pads to 64 bytes
}

var _ [64]byte = [unsafe.Sizeof(HWDescriptor{})]byte{}

// CompletionRecord is the fixed-size structure the device writes back.
// Status 0 means "not yet written"; BytesCompleted and FaultAddr are only
// meaningful once Status is nonzero.
type CompletionRecord struct {
	Status         uint8
	_              [7]uint8 // reserved, keeps BytesCompleted 8-byte aligned
	BytesCompleted uint64
	FaultAddr      uint64
	_              [8]uint8 // pad to CompletionAlignment (32 bytes)
}

var _ [32]byte = [unsafe.Sizeof(CompletionRecord{})]byte{}
