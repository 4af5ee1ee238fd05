package dial

import "time"

// MetricsProvider allows integration with metrics systems like Prometheus, StatsD, etc.
// Implement this interface to receive callbacks on key panel, dispatcher,
// and store events.
type MetricsProvider interface {
	// OnSnapshot is called when the Panel publishes a combined snapshot.
	// Duration is the time taken to recombine the inputs.
	OnSnapshot(phase Phase, duration time.Duration)

	// OnCommand is called when a dispatcher command completes.
	OnCommand(kind CommandKind, duration time.Duration)

	// OnCommandFailure is called when a dispatcher command fails.
	OnCommandFailure(kind CommandKind, duration time.Duration)

	// OnFlush is called when settings are persisted to the sink.
	OnFlush(duration time.Duration)

	// OnFlushFailure is called when persistence fails.
	OnFlushFailure(duration time.Duration)
}

// NoOpMetricsProvider is a no-op implementation of MetricsProvider.
// Use this as an embedded type to implement only the methods you need.
type NoOpMetricsProvider struct{}

func (NoOpMetricsProvider) OnSnapshot(_ Phase, _ time.Duration)             {}
func (NoOpMetricsProvider) OnCommand(_ CommandKind, _ time.Duration)        {}
func (NoOpMetricsProvider) OnCommandFailure(_ CommandKind, _ time.Duration) {}
func (NoOpMetricsProvider) OnFlush(_ time.Duration)                         {}
func (NoOpMetricsProvider) OnFlushFailure(_ time.Duration)                  {}
