package dsa

import "github.com/arjvik/go-dsa/internal/constants"

// OffloadThreshold is the minimum transfer size, in bytes, Copy/Move/Set
// will consider offloading. Smaller transfers always run on the CPU; the
// descriptor/completion round trip costs more than it saves below this
// size.
const OffloadThreshold = constants.OffloadThreshold

// TelemetryThreshold is the minimum transfer size a primitive call must
// reach before it is recorded in the telemetry sink at all, keeping the
// counters from drowning in tiny, uninteresting calls.
const TelemetryThreshold = constants.TelemetryThreshold
