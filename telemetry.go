package dsa

// TelemetryKind identifies one of the four primitive call-site counters.
type TelemetryKind string

const (
	TelemetryCopy    TelemetryKind = "copy"
	TelemetryMove    TelemetryKind = "move"
	TelemetrySet     TelemetryKind = "set"
	TelemetryCompare TelemetryKind = "compare"
)

// DumpTelemetry writes the requested counter set to path in
// "<call_site>,<size>,<count>" form.
func (e *Engine) DumpTelemetry(kind TelemetryKind, path string) error {
	sink := e.sinkFor(kind)
	if sink == nil {
		return newError("DumpTelemetry", CodeTelemetry, Status("unknown_kind"))
	}
	if err := sink.Dump(path); err != nil {
		return newError("DumpTelemetry", CodeTelemetry, err)
	}
	return nil
}

func (e *Engine) sinkFor(kind TelemetryKind) interface{ Dump(string) error } {
	switch kind {
	case TelemetryCopy:
		return &e.copySink
	case TelemetryMove:
		return &e.moveSink
	case TelemetrySet:
		return &e.setSink
	case TelemetryCompare:
		return &e.compareSink
	default:
		return nil
	}
}
