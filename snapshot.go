package dial

// Snapshot is the combined, immutable display state produced by a Panel.
// Phase discriminates the two variants: in PhaseLoading the remaining fields
// carry no meaning; in PhaseLoaded every field reflects the latest value of
// its input. A new Snapshot fully replaces the previous one on any change.
type Snapshot struct {
	Phase Phase

	RecognitionPeriod  RecognitionPeriod
	RecognitionBuffer  RecognitionBuffer
	ScreenOnTrigger    bool
	BedtimeMode        bool
	AlbumArt           bool
	OnlineFallback     bool
	SupportsSummary    bool
	HistorySummaryDays HistorySummaryDays
}

// Loading returns the empty pre-data snapshot.
func Loading() Snapshot {
	return Snapshot{Phase: PhaseLoading}
}

// Loaded stamps s as a loaded snapshot.
func Loaded(s Snapshot) Snapshot {
	s.Phase = PhaseLoaded
	return s
}
