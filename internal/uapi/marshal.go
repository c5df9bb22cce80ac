package uapi

import "encoding/binary"

// MarshalDescriptor encodes a HWDescriptor into its 64-byte wire form.
func MarshalDescriptor(d *HWDescriptor) []byte {
	buf := make([]byte, 64)
	buf[0] = byte(d.Opcode)
	buf[1] = d.Priv
	binary.LittleEndian.PutUint32(buf[4:8], d.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], d.CompletionAddr)
	binary.LittleEndian.PutUint64(buf[16:24], d.SrcAddr)
	binary.LittleEndian.PutUint64(buf[24:32], d.DstAddr)
	binary.LittleEndian.PutUint32(buf[32:36], d.XferSize)
	return buf
}

// UnmarshalDescriptor decodes a 64-byte wire form back into a HWDescriptor.
func UnmarshalDescriptor(data []byte, d *HWDescriptor) error {
	if len(data) < 64 {
		return ErrInsufficientData
	}
	d.Opcode = Opcode(data[0])
	d.Priv = data[1]
	d.Flags = binary.LittleEndian.Uint32(data[4:8])
	d.CompletionAddr = binary.LittleEndian.Uint64(data[8:16])
	d.SrcAddr = binary.LittleEndian.Uint64(data[16:24])
	d.DstAddr = binary.LittleEndian.Uint64(data[24:32])
	d.XferSize = binary.LittleEndian.Uint32(data[32:36])
	return nil
}

// MarshalCompletion encodes a CompletionRecord into its wire form.
func MarshalCompletion(c *CompletionRecord) []byte {
	buf := make([]byte, 32)
	buf[0] = c.Status
	binary.LittleEndian.PutUint64(buf[8:16], c.BytesCompleted)
	binary.LittleEndian.PutUint64(buf[16:24], c.FaultAddr)
	return buf
}

// UnmarshalCompletion decodes a completion record's wire form.
func UnmarshalCompletion(data []byte, c *CompletionRecord) error {
	if len(data) < 32 {
		return ErrInsufficientData
	}
	c.Status = data[0]
	c.BytesCompleted = binary.LittleEndian.Uint64(data[8:16])
	c.FaultAddr = binary.LittleEndian.Uint64(data[16:24])
	return nil
}

// MarshalError is returned by Unmarshal functions when the supplied byte
// slice is too short for the target structure.
type MarshalError string

func (e MarshalError) Error() string { return string(e) }

const ErrInsufficientData MarshalError = "insufficient data for unmarshaling"
