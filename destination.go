package dial

// Destination identifies a navigation target reachable from the settings
// surface. The set is closed; the navigation graph itself is owned by the
// embedding application.
type Destination int

const (
	DestinationRecognitionPeriod Destination = iota
	DestinationRecognitionBuffer
	DestinationBedtime
	DestinationAdvanced
)

// String returns the string representation of the destination.
func (d Destination) String() string {
	switch d {
	case DestinationRecognitionPeriod:
		return "recognition-period"
	case DestinationRecognitionBuffer:
		return "recognition-buffer"
	case DestinationBedtime:
		return "bedtime"
	case DestinationAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}
