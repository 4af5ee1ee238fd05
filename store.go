package dial

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// DefaultFlushDebounce is the default debounce duration for persistence.
const DefaultFlushDebounce = 100 * time.Millisecond

// Store owns the full set of preference cells. It can hydrate them from a
// Watcher and persist writes to a Sink. Writes are fire-and-forget: callers
// get no read-after-write confirmation, and persistence failures are
// recorded via LastError/ErrorHistory rather than surfaced.
type Store struct {
	RecognitionPeriod  *Cell[RecognitionPeriod]
	RecognitionBuffer  *Cell[RecognitionBuffer]
	ScreenOnTrigger    *Cell[bool]
	BedtimeMode        *Cell[bool]
	AlbumArt           *Cell[bool]
	OnlineFallback     *Cell[bool]
	HistorySummaryDays *Cell[int]

	clock         clockz.Clock
	codec         Codec
	flushDebounce time.Duration
	syncMode      bool
	metrics       MetricsProvider

	lastError    atomic.Pointer[error]
	errorHistory *errorRing

	// dirty carries at most one pending persistence request.
	dirty chan struct{}

	mu        sync.Mutex
	sink      Sink
	hydrating bool

	// For sync mode: channel to receive source changes
	changes <-chan []byte
}

// NewStore creates a Store with all cells unset.
func NewStore() *Store {
	s := &Store{
		RecognitionPeriod:  NewCell[RecognitionPeriod](),
		RecognitionBuffer:  NewCell[RecognitionBuffer](),
		ScreenOnTrigger:    NewCell[bool](),
		BedtimeMode:        NewCell[bool](),
		AlbumArt:           NewCell[bool](),
		OnlineFallback:     NewCell[bool](),
		HistorySummaryDays: NewCell[int](),
		clock:              clockz.RealClock,
		codec:              JSONCodec{},
		flushDebounce:      DefaultFlushDebounce,
		dirty:              make(chan struct{}, 1),
	}

	s.RecognitionPeriod.onSet = s.markDirty
	s.RecognitionBuffer.onSet = s.markDirty
	s.ScreenOnTrigger.onSet = s.markDirty
	s.BedtimeMode.onSet = s.markDirty
	s.AlbumArt.onSet = s.markDirty
	s.OnlineFallback.onSet = s.markDirty
	s.HistorySummaryDays.onSet = s.markDirty

	return s
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// Clock sets a custom clock for time operations.
// Use this with clockz.FakeClock for deterministic flush testing.
// Must be called before Hydrate() or Persist().
func (s *Store) Clock(clock clockz.Clock) *Store {
	s.clock = clock
	return s
}

// Codec sets the codec for settings data. Default: JSONCodec.
// Must be called before Hydrate() or Persist().
func (s *Store) Codec(codec Codec) *Store {
	s.codec = codec
	return s
}

// FlushDebounce sets the debounce duration for persistence. Writes arriving
// within this duration are coalesced into a single flush. Default: 100ms.
// Must be called before Persist().
func (s *Store) FlushDebounce(d time.Duration) *Store {
	s.flushDebounce = d
	return s
}

// SyncMode enables synchronous processing for testing. Source changes are
// applied via Pump() and persistence happens only on explicit Flush(),
// making tests deterministic. Must be called before Hydrate() or Persist().
func (s *Store) SyncMode() *Store {
	s.syncMode = true
	return s
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Hydrate() or Persist().
func (s *Store) Metrics(provider MetricsProvider) *Store {
	s.metrics = provider
	return s
}

// ErrorHistorySize sets the number of recent errors to retain.
// Use 0 (default) to only retain the most recent error via LastError().
// Must be called before Hydrate() or Persist().
func (s *Store) ErrorHistorySize(n int) *Store {
	s.errorHistory = newErrorRing(n)
	return s
}

// LastError returns the last error encountered, or nil.
func (s *Store) LastError() error {
	ptr := s.lastError.Load()
	if ptr == nil {
		return nil
	}
	return *ptr
}

// ErrorHistory returns the recent error history, oldest first.
// Returns nil if error history is not enabled (see ErrorHistorySize).
func (s *Store) ErrorHistory() []error {
	return s.errorHistory.all()
}

// Settings returns the wire representation of the current cell values.
// Unset cells appear as empty strings or zero day counts.
func (s *Store) Settings() Settings {
	var st Settings
	if v, ok := s.RecognitionPeriod.Get(); ok {
		st.RecognitionPeriod = v.String()
	}
	if v, ok := s.RecognitionBuffer.Get(); ok {
		st.RecognitionBuffer = v.String()
	}
	if v, ok := s.ScreenOnTrigger.Get(); ok {
		st.ScreenOnTrigger = v
	}
	if v, ok := s.BedtimeMode.Get(); ok {
		st.BedtimeMode = v
	}
	if v, ok := s.AlbumArt.Get(); ok {
		st.AlbumArt = v
	}
	if v, ok := s.OnlineFallback.Get(); ok {
		st.OnlineFallback = v
	}
	if v, ok := s.HistorySummaryDays.Get(); ok {
		st.HistorySummaryDays = v
	}
	return st
}

// Seed applies st to the cells without marking them dirty. Use it to load
// defaults before hydration.
func (s *Store) Seed(st Settings) {
	s.apply(st)
}

// Hydrate loads the initial settings from the watcher and keeps applying
// external changes as they arrive. It blocks until the first value is
// processed. Hydrated values never trigger persistence.
func (s *Store) Hydrate(ctx context.Context, w Watcher) error {
	s.mu.Lock()
	if s.hydrating {
		s.mu.Unlock()
		return fmt.Errorf("store already hydrating")
	}
	s.hydrating = true
	s.mu.Unlock()

	ch, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case raw, ok := <-ch:
		if !ok {
			return fmt.Errorf("watcher closed before emitting initial value")
		}
		st, err := s.decode(raw)
		if err != nil {
			s.setError(err)
			capitan.Emit(ctx, StoreHydrateFailed,
				KeyError.Field(err.Error()),
			)
			return fmt.Errorf("initial settings: %w", err)
		}
		s.apply(st)
		capitan.Emit(ctx, StoreHydrated,
			KeyContentType.Field(s.codec.ContentType()),
		)
	}

	if s.syncMode {
		s.changes = ch
		return nil
	}

	go s.hydrateLoop(ctx, ch)
	return nil
}

// Pump applies the next pending source change in sync mode.
// Returns false if no change is available or the channel is closed.
func (s *Store) Pump(ctx context.Context) bool {
	if !s.syncMode || s.changes == nil {
		return false
	}

	select {
	case raw, ok := <-s.changes:
		if !ok {
			return false
		}
		st, err := s.decode(raw)
		if err != nil {
			s.setError(err)
			capitan.Emit(ctx, StoreHydrateFailed,
				KeyError.Field(err.Error()),
			)
			return true
		}
		s.apply(st)
		capitan.Emit(ctx, StoreHydrated,
			KeyContentType.Field(s.codec.ContentType()),
		)
		return true
	default:
		return false
	}
}

// Persist begins persisting cell writes to the sink. Writes are debounced
// and flushed in the background; in sync mode nothing runs until Flush().
func (s *Store) Persist(ctx context.Context, sink Sink) error {
	s.mu.Lock()
	if s.sink != nil {
		s.mu.Unlock()
		return fmt.Errorf("store already persisting")
	}
	s.sink = sink
	s.mu.Unlock()

	if s.syncMode {
		return nil
	}

	go s.flushLoop(ctx)
	return nil
}

// Flush serializes the current cell values and stores them in the sink.
// On success, recorded errors are cleared.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	sink := s.sink
	s.mu.Unlock()
	if sink == nil {
		return fmt.Errorf("no sink configured")
	}

	start := s.clock.Now()
	st := s.Settings()

	if err := st.Validate(); err != nil {
		return s.flushFailed(ctx, start, fmt.Errorf("settings invalid: %w", err))
	}

	data, err := s.codec.Marshal(st)
	if err != nil {
		return s.flushFailed(ctx, start, fmt.Errorf("marshal failed: %w", err))
	}

	if err := sink.Store(ctx, data); err != nil {
		return s.flushFailed(ctx, start, fmt.Errorf("sink store failed: %w", err))
	}

	s.lastError.Store(nil)
	s.errorHistory.clear()
	capitan.Emit(ctx, StoreFlushed,
		KeyContentType.Field(s.codec.ContentType()),
		KeyFlushDebounce.Field(s.flushDebounce),
	)
	if s.metrics != nil {
		s.metrics.OnFlush(s.clock.Since(start))
	}
	return nil
}

func (s *Store) flushFailed(ctx context.Context, start time.Time, err error) error {
	s.setError(err)
	capitan.Emit(ctx, StoreFlushFailed,
		KeyError.Field(err.Error()),
	)
	if s.metrics != nil {
		s.metrics.OnFlushFailure(s.clock.Since(start))
	}
	return err
}

// markDirty records that a cell write is awaiting persistence.
func (s *Store) markDirty() {
	select {
	case s.dirty <- struct{}{}:
	default:
	}
}

// decode unmarshals and validates raw settings bytes.
func (s *Store) decode(raw []byte) (Settings, error) {
	var st Settings
	if err := s.codec.Unmarshal(raw, &st); err != nil {
		return st, fmt.Errorf("unmarshal failed: %w", err)
	}
	if err := st.Validate(); err != nil {
		return st, fmt.Errorf("validation failed: %w", err)
	}
	return st, nil
}

// apply pushes st into the cells without firing write hooks.
// Empty enumeration strings and zero day counts leave cells untouched.
func (s *Store) apply(st Settings) {
	if st.RecognitionPeriod != "" {
		if p, err := ParseRecognitionPeriod(st.RecognitionPeriod); err == nil {
			s.RecognitionPeriod.apply(p)
		}
	}
	if st.RecognitionBuffer != "" {
		if b, err := ParseRecognitionBuffer(st.RecognitionBuffer); err == nil {
			s.RecognitionBuffer.apply(b)
		}
	}
	s.ScreenOnTrigger.apply(st.ScreenOnTrigger)
	s.BedtimeMode.apply(st.BedtimeMode)
	s.AlbumArt.apply(st.AlbumArt)
	s.OnlineFallback.apply(st.OnlineFallback)
	if st.HistorySummaryDays != 0 {
		s.HistorySummaryDays.apply(st.HistorySummaryDays)
	}
}

// setError stores an error atomically and adds it to the error history.
func (s *Store) setError(err error) {
	e := err
	s.lastError.Store(&e)
	s.errorHistory.push(err)
}

// hydrateLoop keeps applying external source changes. Bad payloads are
// recorded and skipped; the last good values stay in the cells.
func (s *Store) hydrateLoop(ctx context.Context, ch <-chan []byte) {
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			st, err := s.decode(raw)
			if err != nil {
				s.setError(err)
				capitan.Emit(ctx, StoreHydrateFailed,
					KeyError.Field(err.Error()),
				)
				continue
			}
			s.apply(st)
			capitan.Emit(ctx, StoreHydrated,
				KeyContentType.Field(s.codec.ContentType()),
			)
		}
	}
}

// flushLoop persists dirty cells with debouncing.
func (s *Store) flushLoop(ctx context.Context) {
	var (
		timer      clockz.Timer
		timerC     <-chan time.Time
		hasPending bool
	)

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			if hasPending {
				_ = s.Flush(context.WithoutCancel(ctx)) //nolint:errcheck // Errors stored via setError
			}
			return

		case <-s.dirty:
			hasPending = true

			// Reset or start debounce timer
			if timer == nil {
				timer = s.clock.NewTimer(s.flushDebounce)
				timerC = timer.C()
			} else {
				if !timer.Stop() {
					select {
					case <-timerC:
					default:
					}
				}
				timer.Reset(s.flushDebounce)
			}

		case <-timerC:
			if hasPending {
				_ = s.Flush(ctx) //nolint:errcheck // Errors stored via setError
				hasPending = false
			}
		}
	}
}
