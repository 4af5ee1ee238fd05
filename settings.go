package dial

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate = validator.New()

// RecognitionPeriod tunes how often recognition attempts are made.
type RecognitionPeriod int

const (
	PeriodShort RecognitionPeriod = iota
	PeriodMedium
	PeriodLong
)

// String returns the string representation of the period.
func (p RecognitionPeriod) String() string {
	switch p {
	case PeriodShort:
		return "short"
	case PeriodMedium:
		return "medium"
	case PeriodLong:
		return "long"
	default:
		return "unknown"
	}
}

// ParseRecognitionPeriod converts a wire string to a RecognitionPeriod.
func ParseRecognitionPeriod(s string) (RecognitionPeriod, error) {
	switch s {
	case "short":
		return PeriodShort, nil
	case "medium":
		return PeriodMedium, nil
	case "long":
		return PeriodLong, nil
	default:
		return PeriodMedium, fmt.Errorf("unknown recognition period %q", s)
	}
}

// RecognitionBuffer tunes how much audio is captured per recognition attempt.
type RecognitionBuffer int

const (
	BufferSmall RecognitionBuffer = iota
	BufferMedium
	BufferLarge
)

// String returns the string representation of the buffer size.
func (b RecognitionBuffer) String() string {
	switch b {
	case BufferSmall:
		return "small"
	case BufferMedium:
		return "medium"
	case BufferLarge:
		return "large"
	default:
		return "unknown"
	}
}

// ParseRecognitionBuffer converts a wire string to a RecognitionBuffer.
func ParseRecognitionBuffer(s string) (RecognitionBuffer, error) {
	switch s {
	case "small":
		return BufferSmall, nil
	case "medium":
		return BufferMedium, nil
	case "large":
		return BufferLarge, nil
	default:
		return BufferMedium, fmt.Errorf("unknown recognition buffer %q", s)
	}
}

// HistorySummaryDays is the closed set of history retention windows.
// Members are ordered by retention length; comparisons between tiers use
// that ordering.
type HistorySummaryDays int

const (
	OneDay HistorySummaryDays = iota
	OneWeek
	TwoWeeks
	OneMonth
	TwoMonths
	OneYear
)

// historyDays maps each member to its raw day count.
var historyDays = [...]int{1, 7, 14, 30, 60, 365}

// historyLabels maps each member to its display label.
var historyLabels = [...]string{"1 day", "1 week", "2 weeks", "1 month", "2 months", "1 year"}

// ForDays maps a raw day count to the matching member. Counts with no exact
// match resolve to OneMonth; the mapping never fails.
func ForDays(n int) HistorySummaryDays {
	for i, d := range historyDays {
		if d == n {
			return HistorySummaryDays(i)
		}
	}
	return OneMonth
}

// Days returns the raw day count for the member.
func (h HistorySummaryDays) Days() int {
	if h < OneDay || h > OneYear {
		return historyDays[OneMonth]
	}
	return historyDays[h]
}

// Label returns the display label for the member.
func (h HistorySummaryDays) Label() string {
	if h < OneDay || h > OneYear {
		return historyLabels[OneMonth]
	}
	return historyLabels[h]
}

// IsAtLeast reports whether the member retains at least as much history
// as other.
func (h HistorySummaryDays) IsAtLeast(other HistorySummaryDays) bool {
	return h >= other
}

// String returns the display label.
func (h HistorySummaryDays) String() string {
	return h.Label()
}

// Settings is the wire representation of the full preference set.
// Empty strings and zero day counts mean the corresponding cell is unset.
type Settings struct {
	RecognitionPeriod  string `json:"recognition_period" yaml:"recognition_period" validate:"omitempty,oneof=short medium long"`
	RecognitionBuffer  string `json:"recognition_buffer" yaml:"recognition_buffer" validate:"omitempty,oneof=small medium large"`
	ScreenOnTrigger    bool   `json:"screen_on_trigger" yaml:"screen_on_trigger"`
	BedtimeMode        bool   `json:"bedtime_mode" yaml:"bedtime_mode"`
	AlbumArt           bool   `json:"album_art" yaml:"album_art"`
	OnlineFallback     bool   `json:"online_fallback" yaml:"online_fallback"`
	HistorySummaryDays int    `json:"history_summary_days" yaml:"history_summary_days" validate:"omitempty,min=1,max=365"`
}

// Validate checks the wire representation against its constraints.
func (s Settings) Validate() error {
	return validate.Struct(s)
}
