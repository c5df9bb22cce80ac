// Package dsa provides drop-in Copy/Move/Set/Compare replacements that
// transparently offload large transfers to Intel Data Streaming
// Accelerator hardware when it is present, falling back to the CPU
// otherwise, with per-call-site telemetry recording which call sites
// exercise the fast path.
package dsa

import (
	"sync"

	"github.com/arjvik/go-dsa/internal/accel"
	"github.com/arjvik/go-dsa/internal/telemetry"
)

// Engine owns one accelerator container and the telemetry sinks fed by
// the package-level Copy/Move/Set/Compare shims. Most programs never
// construct one directly; they call Default() or the package-level
// functions, which lazily initialize a process-wide Engine the first
// time they're used.
type Engine struct {
	container *accel.Container

	copySink    telemetry.Sink
	moveSink    telemetry.Sink
	setSink     telemetry.Sink
	compareSink telemetry.Sink
}

// NewEngine builds an Engine with its own accelerator container, separate
// from the process-wide default. Most callers want Default() instead;
// NewEngine exists for tests and for processes that want isolated
// telemetry accounting.
func NewEngine() *Engine {
	return &Engine{container: accel.NewContainer(nil, nil)}
}

// Initialize enumerates accelerator devices. It is safe to call multiple
// times; only the first call does any work.
func (e *Engine) Initialize() error {
	err := e.container.Initialize()
	if err != nil && err != accel.StatusAlreadyInitialized {
		return newError("Initialize", CodeInit, err)
	}
	return nil
}

// Status reports the outcome of the most recent offload attempt.
func (e *Engine) Status() Status {
	return Status(e.container.Status())
}

// Close releases every device the engine's container opened.
func (e *Engine) Close() error {
	return e.container.Close()
}

// Stage queues a small write for later coalescing under tag, instead of
// offloading it immediately. Pair with Flush(tag) once the caller has
// staged every write in a batch of adjacent small writes.
func (e *Engine) Stage(tag string, dst, src []byte) {
	e.container.Stage(tag, dst, src)
}

// Flush merges tag's staged writes into maximal contiguous-destination
// runs and issues one transfer per run, falling back to the CPU per run
// the same way Copy does when no accelerator is usable.
func (e *Engine) Flush(tag string) error {
	return e.container.Flush(tag)
}

var (
	defaultOnce   sync.Once
	defaultEngine *Engine
)

// Default returns the process-wide Engine, initializing it on first use.
// Initialization failures are absorbed into the engine's Status rather
// than returned here, since the package-level shims need a usable Engine
// even when no accelerator is present; they simply fall back to the CPU.
func Default() *Engine {
	defaultOnce.Do(func() {
		defaultEngine = NewEngine()
		_ = defaultEngine.Initialize()
	})
	return defaultEngine
}
