package dsa

import "errors"

// Status is a lightweight, comparable outcome code reported by
// Engine.Status for the most recent offload attempt. It implements error so callers that only care whether
// something went wrong can treat it as one, while callers that want the
// specific outcome can compare it directly against the Status* constants.
type Status string

const (
	StatusOK                  Status = "ok"
	StatusInvalidNumaNodes    Status = "invalid_numa_nodes"
	StatusInvalidAccfgCtx     Status = "invalid_accfg_ctx"
	StatusMemcpyFailed        Status = "memcpy_failed"
	StatusMemfillFailed       Status = "memfill_failed"
	StatusAlreadyInitialized  Status = "already_initialized"
	StatusUninitialized       Status = "uninitialized"
)

func (s Status) Error() string { return "dsa: " + string(s) }

// ErrorCode classifies an *Error the way Status classifies a bare outcome,
// but an *Error additionally carries the operation that failed and, where
// applicable, the error that caused it.
type ErrorCode string

const (
	CodeInit     ErrorCode = "init"
	CodeOffload  ErrorCode = "offload"
	CodeDevice   ErrorCode = "device"
	CodeTelemetry ErrorCode = "telemetry"
)

// Error is the richer error type Engine methods return when a Status
// alone wouldn't carry enough context to act on. Op names the failing
// operation ("Initialize", "DumpTelemetry"); Inner, when set, is the
// underlying cause and participates in errors.Is/errors.As via Unwrap.
type Error struct {
	Op    string
	Code  ErrorCode
	Inner error
}

func (e *Error) Error() string {
	if e.Inner != nil {
		return "dsa: " + e.Op + ": " + string(e.Code) + ": " + e.Inner.Error()
	}
	return "dsa: " + e.Op + ": " + string(e.Code)
}

func (e *Error) Unwrap() error { return e.Inner }

// Is reports whether target is an *Error with the same Code, or matches
// the wrapped Inner error.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return other.Code == e.Code
	}
	return errors.Is(e.Inner, target)
}

func newError(op string, code ErrorCode, inner error) *Error {
	return &Error{Op: op, Code: code, Inner: inner}
}
