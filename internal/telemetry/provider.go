package telemetry

// Provider returns the latest telemetry, or nil when none has been received yet
type Provider interface {
	Get() *Telemetry
}
