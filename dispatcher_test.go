package dial

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type fakeNavigator struct {
	mu    sync.Mutex
	dests []Destination
	err   error
}

func (n *fakeNavigator) Navigate(_ context.Context, dest Destination) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.dests = append(n.dests, dest)
	return nil
}

func (n *fakeNavigator) destinations() []Destination {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Destination(nil), n.dests...)
}

type fakeNotifier struct {
	mu        sync.Mutex
	messages  []string
	durations []time.Duration
	err       error
}

func (n *fakeNotifier) Show(_ context.Context, message string, d time.Duration) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.messages = append(n.messages, message)
	n.durations = append(n.durations, d)
	return nil
}

func (n *fakeNotifier) shown() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

func newSyncDispatcher(t *testing.T) (*Dispatcher, *Store, *fakeNavigator, *fakeNotifier, *Scope) {
	t.Helper()
	scope := NewScope(context.Background())
	t.Cleanup(scope.Cancel)
	store := NewStore()
	nav := &fakeNavigator{}
	notifier := &fakeNotifier{}
	d := NewDispatcher(scope, store, nav, notifier).SyncMode()
	return d, store, nav, notifier, scope
}

func TestDispatcher_RecognitionPeriodClicked(t *testing.T) {
	d, store, nav, _, _ := newSyncDispatcher(t)

	d.RecognitionPeriodClicked()

	dests := nav.destinations()
	if len(dests) != 1 || dests[0] != DestinationRecognitionPeriod {
		t.Errorf("expected one recognition-period navigation, got %v", dests)
	}
	// Navigation commands never write preferences
	if _, ok := store.RecognitionPeriod.Get(); ok {
		t.Error("unexpected preference write")
	}
}

func TestDispatcher_NavigationDestinations(t *testing.T) {
	d, _, nav, _, _ := newSyncDispatcher(t)

	d.RecognitionBufferClicked()
	d.BedtimeClicked()
	d.AdvancedClicked()

	want := []Destination{DestinationRecognitionBuffer, DestinationBedtime, DestinationAdvanced}
	got := nav.destinations()
	if len(got) != len(want) {
		t.Fatalf("expected %d navigations, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("navigation %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestDispatcher_ToggleWrites(t *testing.T) {
	d, store, _, _, _ := newSyncDispatcher(t)

	d.ScreenOnTriggerChanged(true)
	d.AlbumArtChanged(false)
	d.OnlineFallbackChanged(true)

	if v, ok := store.ScreenOnTrigger.Get(); !ok || !v {
		t.Errorf("expected screen-on trigger true, got %v (ok=%v)", v, ok)
	}
	if v, ok := store.AlbumArt.Get(); !ok || v {
		t.Errorf("expected album art false, got %v (ok=%v)", v, ok)
	}
	if v, ok := store.OnlineFallback.Get(); !ok || !v {
		t.Errorf("expected online fallback true, got %v (ok=%v)", v, ok)
	}
}

func TestDispatcher_HistoryDays_AdvisoryAtTwoMonths(t *testing.T) {
	d, store, _, notifier, _ := newSyncDispatcher(t)

	d.HistorySummaryDaysChanged(TwoMonths)

	shown := notifier.shown()
	if len(shown) != 1 || shown[0] != RetentionAdvisory {
		t.Errorf("expected one retention advisory, got %v", shown)
	}
	if notifier.durations[0] != NoticeLong {
		t.Errorf("expected long duration, got %v", notifier.durations[0])
	}
	if v, ok := store.HistorySummaryDays.Get(); !ok || v != 60 {
		t.Errorf("expected 60 days written, got %d (ok=%v)", v, ok)
	}
}

func TestDispatcher_HistoryDays_NoAdvisoryBelowTwoMonths(t *testing.T) {
	d, store, _, notifier, _ := newSyncDispatcher(t)

	d.HistorySummaryDaysChanged(OneWeek)

	if len(notifier.shown()) != 0 {
		t.Errorf("unexpected advisory %v", notifier.shown())
	}
	if v, ok := store.HistorySummaryDays.Get(); !ok || v != 7 {
		t.Errorf("expected 7 days written, got %d (ok=%v)", v, ok)
	}
}

func TestDispatcher_HistoryDays_AdvisoryRepeatsEveryQualifyingWrite(t *testing.T) {
	d, _, _, notifier, _ := newSyncDispatcher(t)

	d.HistorySummaryDaysChanged(TwoMonths)
	d.HistorySummaryDaysChanged(OneYear)
	d.HistorySummaryDaysChanged(TwoMonths)

	if got := len(notifier.shown()); got != 3 {
		t.Errorf("expected advisory on every qualifying write, got %d", got)
	}
}

func TestDispatcher_HistoryDays_AdvisoryPrecedesWrite(t *testing.T) {
	d, store, _, notifier, scope := newSyncDispatcher(t)
	notifier.err = errors.New("toast unavailable")

	d.HistorySummaryDaysChanged(OneYear)

	// The advisory failed before the write, so the cell stays unset
	if _, ok := store.HistorySummaryDays.Get(); ok {
		t.Error("expected write to be skipped when advisory fails")
	}
	if scope.Err() == nil {
		t.Error("expected command failure recorded on scope")
	}
}

func TestDispatcher_AsyncWritesLand(t *testing.T) {
	scope := NewScope(context.Background())
	store := NewStore()
	d := NewDispatcher(scope, store, &fakeNavigator{}, &fakeNotifier{})

	d.ScreenOnTriggerChanged(true)
	d.HistorySummaryDaysChanged(OneDay)

	waitFor(t, 2*time.Second, func() bool {
		v, ok := store.ScreenOnTrigger.Get()
		d2, ok2 := store.HistorySummaryDays.Get()
		return ok && v && ok2 && d2 == 1
	})

	scope.Cancel()
	if err := scope.Wait(); err != nil {
		t.Errorf("expected clean scope, got %v", err)
	}
}

func TestDispatcher_AsyncFailureCancelsScope(t *testing.T) {
	scope := NewScope(context.Background())
	store := NewStore()
	nav := &fakeNavigator{err: errors.New("graph detached")}
	d := NewDispatcher(scope, store, nav, &fakeNotifier{})

	d.BedtimeClicked()

	if err := scope.Wait(); err == nil {
		t.Error("expected navigation failure to fail the scope")
	}
}

func TestDispatcher_PipelineMiddleware(t *testing.T) {
	scope := NewScope(context.Background())
	t.Cleanup(scope.Cancel)
	store := NewStore()

	var seen []CommandKind
	var mu sync.Mutex
	d := NewDispatcher(scope, store, &fakeNavigator{}, &fakeNotifier{},
		WithMiddleware(
			UseEffect("audit", func(_ context.Context, cmd *Command) error {
				mu.Lock()
				seen = append(seen, cmd.Kind)
				mu.Unlock()
				return nil
			}),
		),
	).SyncMode()

	d.AlbumArtChanged(true)

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 1 || seen[0] != CommandAlbumArtChanged {
		t.Errorf("expected middleware to observe the command, got %v", seen)
	}
}

func TestDispatcher_RetryRecoversTransientFailure(t *testing.T) {
	scope := NewScope(context.Background())
	t.Cleanup(scope.Cancel)
	store := NewStore()

	attempts := 0
	nav := &flakyNavigator{failures: 2, inner: &fakeNavigator{}, attempts: &attempts}
	d := NewDispatcher(scope, store, nav, &fakeNotifier{}, WithRetry(3)).SyncMode()

	d.AdvancedClicked()

	if scope.Err() != nil {
		t.Errorf("expected retries to succeed, got %v", scope.Err())
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
}

type flakyNavigator struct {
	failures int
	attempts *int
	inner    Navigator
}

func (n *flakyNavigator) Navigate(ctx context.Context, dest Destination) error {
	*n.attempts++
	if *n.attempts <= n.failures {
		return errors.New("transient")
	}
	return n.inner.Navigate(ctx, dest)
}
