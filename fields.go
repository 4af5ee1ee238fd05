package dial

import "github.com/zoobzio/capitan"

// Field keys for Panel, Dispatcher, and Store events.
var (
	// KeyPhase is the snapshot phase at publication.
	KeyPhase = capitan.NewStringKey("phase")

	// KeyCommand is the command kind being processed.
	KeyCommand = capitan.NewStringKey("command")

	// KeyDestination is the requested navigation destination.
	KeyDestination = capitan.NewStringKey("destination")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyDays is the raw retention day count.
	KeyDays = capitan.NewIntKey("days")

	// KeyFlushDebounce is the configured persistence debounce duration.
	KeyFlushDebounce = capitan.NewDurationKey("flush_debounce")

	// KeyContentType is the codec content type in use.
	KeyContentType = capitan.NewStringKey("content_type")
)
