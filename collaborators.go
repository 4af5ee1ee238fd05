package dial

import (
	"context"
	"time"
)

// Capability answers device capability queries. The query is made
// synchronously during every Panel recombination and is never cached.
type Capability interface {
	// SupportsSummaryAndEditing reports whether the device supports
	// history summaries and track editing.
	SupportsSummaryAndEditing(ctx context.Context) bool
}

// Navigator requests transitions to named destinations.
type Navigator interface {
	Navigate(ctx context.Context, dest Destination) error
}

// Notifier shows one-shot, non-blocking user-visible advisories.
type Notifier interface {
	Show(ctx context.Context, message string, d time.Duration) error
}

// NoticeLong is the duration for long-form advisory notices.
const NoticeLong = 3500 * time.Millisecond

// RetentionAdvisory is shown whenever a retention window of two months or
// more is selected.
const RetentionAdvisory = "Summaries over long history windows can take a while to build"
