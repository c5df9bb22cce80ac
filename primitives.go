package dsa

import (
	"bytes"
	"runtime"
	"strconv"

	"github.com/arjvik/go-dsa/internal/telemetry"
)

// callSite returns a "<file>_<line>_<function>" label for the function
// skip frames up from its own caller, matching the key shape the
// telemetry sink expects. skip=1 means "my caller"; pass 2 from a
// function that itself calls callSite on behalf of its own caller.
func callSite(skip int) string {
	pc, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "unknown_0_unknown"
	}
	fn := "unknown"
	if f := runtime.FuncForPC(pc); f != nil {
		name := f.Name()
		if idx := lastIndexByte(name, '.'); idx >= 0 {
			name = name[idx+1:]
		}
		fn = name
	}
	return file + "_" + strconv.Itoa(line) + "_" + fn
}

func lastIndexByte(s string, b byte) int {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i] == b {
			return i
		}
	}
	return -1
}

// Copy copies min(len(dst), len(src)) bytes from src to dst and returns
// dst, offloading to an accelerator when the transfer is large enough and
// one is available. It is a drop-in replacement for Go's builtin copy
// used as an expression rather than a statement.
func Copy(dst, src []byte) []byte {
	e := Default()
	return e.copyWithSite(dst, src, callSite(2), &e.copySink)
}

// Move behaves like Copy but is safe when dst and src overlap; the
// hardware opcode used is a genuine memmove, not a memcpy, so no extra
// host-side overlap handling is needed.
func Move(dst, src []byte) []byte {
	e := Default()
	return e.copyWithSite(dst, src, callSite(2), &e.moveSink)
}

// Set fills dst with value and returns dst. Only the zero-fill case
// (value == 0) is eligible for offload; any other value always runs on
// the CPU, since the accelerator path only ever programs a zero-fill
// descriptor.
func Set(dst []byte, value byte) []byte {
	return Default().setWithSite(dst, value, callSite(2))
}

// Compare returns an integer comparing a and b lexicographically, the
// same contract as bytes.Compare. No accelerator generation reachable
// from this container offloads comparison, so this always runs on the
// CPU; it exists so compare call sites get the same drop-in shim and
// telemetry treatment as the other three primitives.
func Compare(a, b []byte) int {
	if len(a) >= TelemetryThreshold {
		Default().compareSink.Record(callSite(2), len(a))
	}
	return bytes.Compare(a, b)
}

func (e *Engine) copyWithSite(dst, src []byte, site string, sink *telemetry.Sink) []byte {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	if n >= TelemetryThreshold {
		sink.Record(site, n)
	}
	e.container.Copy(dst, src, n)
	return dst
}

func (e *Engine) setWithSite(dst []byte, value byte, site string) []byte {
	n := len(dst)
	if n >= TelemetryThreshold {
		e.setSink.Record(site, n)
	}
	if value != 0 {
		for i := range dst {
			dst[i] = value
		}
		return dst
	}
	e.container.Fill(dst, n)
	return dst
}
