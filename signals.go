package dial

import "github.com/zoobzio/capitan"

// Panel lifecycle signals.
var (
	// PanelStarted is emitted when a Panel begins watching its inputs.
	PanelStarted = capitan.NewSignal(
		"dial.panel.started",
		"Panel watching started",
	)

	// PanelStopped is emitted when a Panel stops watching.
	PanelStopped = capitan.NewSignal(
		"dial.panel.stopped",
		"Panel watching stopped",
	)

	// PanelSnapshotPublished is emitted when a combined snapshot is published.
	PanelSnapshotPublished = capitan.NewSignal(
		"dial.panel.snapshot.published",
		"Combined snapshot published",
	)
)

// Dispatcher signals.
var (
	// CommandDispatched is emitted when a command task is scheduled.
	CommandDispatched = capitan.NewSignal(
		"dial.dispatcher.command.dispatched",
		"Command scheduled on scope",
	)

	// CommandFailed is emitted when command processing fails.
	CommandFailed = capitan.NewSignal(
		"dial.dispatcher.command.failed",
		"Command processing failed",
	)

	// NavigationRequested is emitted when a command requests a transition.
	NavigationRequested = capitan.NewSignal(
		"dial.dispatcher.navigation.requested",
		"Navigation transition requested",
	)

	// AdvisoryShown is emitted when a retention advisory is shown.
	AdvisoryShown = capitan.NewSignal(
		"dial.dispatcher.advisory.shown",
		"Retention advisory shown",
	)
)

// Store signals.
var (
	// StoreHydrated is emitted when settings are applied from the source.
	StoreHydrated = capitan.NewSignal(
		"dial.store.hydrated",
		"Settings applied from source",
	)

	// StoreHydrateFailed is emitted when a source change cannot be applied.
	StoreHydrateFailed = capitan.NewSignal(
		"dial.store.hydrate.failed",
		"Source change rejected",
	)

	// StoreFlushed is emitted when settings are persisted to the sink.
	StoreFlushed = capitan.NewSignal(
		"dial.store.flushed",
		"Settings persisted to sink",
	)

	// StoreFlushFailed is emitted when persistence fails.
	StoreFlushFailed = capitan.NewSignal(
		"dial.store.flush.failed",
		"Settings persistence failed",
	)
)
