// Package constants holds tunables shared across the offload engine.
package constants

import "time"

const (
	// OffloadThreshold is the minimum transfer size, in bytes, worth
	// submitting to the accelerator. Below this the per-descriptor
	// overhead dominates and the CPU primitive wins.
	OffloadThreshold = 131072

	// TelemetryThreshold is the minimum transfer size worth recording in
	// the call-site telemetry. It is independent of OffloadThreshold: it
	// selects which call sites are worth studying, not which individual
	// calls are worth offloading.
	TelemetryThreshold = 1024

	// MaxWorkQueuesPerDevice bounds the number of work-queue slots a
	// Device will track.
	MaxWorkQueuesPerDevice = 16

	// MaxDevices bounds the number of accelerators a Container will track.
	MaxDevices = 16

	// MaxNumaNodes bounds the devices-by-node index.
	MaxNumaNodes = 16

	// PortalSize is the size of one memory-mapped work-queue portal page.
	PortalSize = 4096

	// DescriptorSize is the fixed size of a hardware descriptor in bytes.
	DescriptorSize = 64

	// CompletionAlignment is the default alignment required for a
	// completion record when the platform handle doesn't report one.
	CompletionAlignment = 32
)

// CompletionWaitBudget bounds how long the accel package's mmapHandle.submit
// spins on a completion record before giving up, expressed as wall-clock
// time rather than TSC cycles.
const CompletionWaitBudget = 300 * time.Millisecond

// DeviceNamePrefix is the accelerator family name accel-config device
// directories are filtered on.
const DeviceNamePrefix = "dsa"
