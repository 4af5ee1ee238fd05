package dial

import (
	"context"
	"fmt"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
	"github.com/zoobzio/pipz"
)

// commandID names the terminal pipeline stage.
const commandID pipz.Name = "command"

// CommandKind identifies a user intent.
type CommandKind int

const (
	CommandRecognitionPeriodClicked CommandKind = iota
	CommandRecognitionBufferClicked
	CommandScreenOnTriggerChanged
	CommandAlbumArtChanged
	CommandOnlineFallbackChanged
	CommandHistorySummaryDaysChanged
	CommandBedtimeClicked
	CommandAdvancedClicked
)

// String returns the string representation of the command kind.
func (k CommandKind) String() string {
	switch k {
	case CommandRecognitionPeriodClicked:
		return "recognition-period-clicked"
	case CommandRecognitionBufferClicked:
		return "recognition-buffer-clicked"
	case CommandScreenOnTriggerChanged:
		return "screen-on-trigger-changed"
	case CommandAlbumArtChanged:
		return "album-art-changed"
	case CommandOnlineFallbackChanged:
		return "online-fallback-changed"
	case CommandHistorySummaryDaysChanged:
		return "history-summary-days-changed"
	case CommandBedtimeClicked:
		return "bedtime-clicked"
	case CommandAdvancedClicked:
		return "advanced-clicked"
	default:
		return "unknown"
	}
}

// Command carries one user intent through the processing pipeline.
// Enabled is meaningful for the *Changed toggle kinds; Days is meaningful
// only for CommandHistorySummaryDaysChanged.
type Command struct {
	Kind    CommandKind
	Enabled bool
	Days    HistorySummaryDays
}

// Dispatcher translates discrete user intents into exactly one cell write
// or one navigation request. Each command runs as its own task on the
// owning Scope; callers never block and distinct commands have no ordering
// guarantee between them.
type Dispatcher struct {
	scope    *Scope
	store    *Store
	nav      Navigator
	notifier Notifier
	clock    clockz.Clock
	metrics  MetricsProvider
	syncMode bool

	pipeline pipz.Chainable[*Command]
}

// NewDispatcher creates a Dispatcher whose command tasks run on scope.
//
// Pipeline options (With*) wrap command processing:
//
//	d := dial.NewDispatcher(scope, store, nav, notifier,
//	    dial.WithRetry(3),
//	    dial.WithTimeout(time.Second),
//	)
func NewDispatcher(scope *Scope, store *Store, nav Navigator, notifier Notifier, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		scope:    scope,
		store:    store,
		nav:      nav,
		notifier: notifier,
		clock:    clockz.RealClock,
	}
	terminal := pipz.Effect(commandID, func(ctx context.Context, cmd *Command) error {
		return d.execute(ctx, cmd)
	})
	d.pipeline = buildPipeline(terminal, opts)
	return d
}

// Clock sets a custom clock for time operations.
func (d *Dispatcher) Clock(clock clockz.Clock) *Dispatcher {
	d.clock = clock
	return d
}

// Metrics sets a metrics provider for observability integration.
func (d *Dispatcher) Metrics(provider MetricsProvider) *Dispatcher {
	d.metrics = provider
	return d
}

// SyncMode processes commands inline on the caller for deterministic
// testing instead of scheduling scope tasks.
func (d *Dispatcher) SyncMode() *Dispatcher {
	d.syncMode = true
	return d
}

// RecognitionPeriodClicked requests navigation to the recognition period
// screen.
func (d *Dispatcher) RecognitionPeriodClicked() {
	d.submit(Command{Kind: CommandRecognitionPeriodClicked})
}

// RecognitionBufferClicked requests navigation to the recognition buffer
// screen.
func (d *Dispatcher) RecognitionBufferClicked() {
	d.submit(Command{Kind: CommandRecognitionBufferClicked})
}

// BedtimeClicked requests navigation to the bedtime mode screen.
func (d *Dispatcher) BedtimeClicked() {
	d.submit(Command{Kind: CommandBedtimeClicked})
}

// AdvancedClicked requests navigation to the advanced settings screen.
func (d *Dispatcher) AdvancedClicked() {
	d.submit(Command{Kind: CommandAdvancedClicked})
}

// ScreenOnTriggerChanged writes the screen-on trigger flag.
func (d *Dispatcher) ScreenOnTriggerChanged(enabled bool) {
	d.submit(Command{Kind: CommandScreenOnTriggerChanged, Enabled: enabled})
}

// AlbumArtChanged writes the album art flag.
func (d *Dispatcher) AlbumArtChanged(enabled bool) {
	d.submit(Command{Kind: CommandAlbumArtChanged, Enabled: enabled})
}

// OnlineFallbackChanged writes the online fallback flag.
func (d *Dispatcher) OnlineFallbackChanged(enabled bool) {
	d.submit(Command{Kind: CommandOnlineFallbackChanged, Enabled: enabled})
}

// HistorySummaryDaysChanged writes the retention window. Windows of two
// months or more show the retention advisory before the write, on every
// qualifying call.
func (d *Dispatcher) HistorySummaryDaysChanged(days HistorySummaryDays) {
	d.submit(Command{Kind: CommandHistorySummaryDaysChanged, Days: days})
}

// submit schedules cmd as a scope task, or runs it inline in sync mode.
func (d *Dispatcher) submit(cmd Command) {
	run := func(ctx context.Context) error {
		start := d.clock.Now()
		capitan.Emit(ctx, CommandDispatched,
			KeyCommand.Field(cmd.Kind.String()),
		)
		if _, err := d.pipeline.Process(ctx, &cmd); err != nil {
			capitan.Emit(ctx, CommandFailed,
				KeyCommand.Field(cmd.Kind.String()),
				KeyError.Field(err.Error()),
			)
			if d.metrics != nil {
				d.metrics.OnCommandFailure(cmd.Kind, d.clock.Since(start))
			}
			return fmt.Errorf("command %s: %w", cmd.Kind, err)
		}
		if d.metrics != nil {
			d.metrics.OnCommand(cmd.Kind, d.clock.Since(start))
		}
		return nil
	}

	if d.syncMode {
		if err := run(d.scope.Context()); err != nil {
			d.scope.fail(err)
		}
		return
	}
	d.scope.Go(run)
}

// execute performs the single write or navigation for cmd.
func (d *Dispatcher) execute(ctx context.Context, cmd *Command) error {
	switch cmd.Kind {
	case CommandRecognitionPeriodClicked:
		return d.navigate(ctx, DestinationRecognitionPeriod)
	case CommandRecognitionBufferClicked:
		return d.navigate(ctx, DestinationRecognitionBuffer)
	case CommandBedtimeClicked:
		return d.navigate(ctx, DestinationBedtime)
	case CommandAdvancedClicked:
		return d.navigate(ctx, DestinationAdvanced)

	case CommandScreenOnTriggerChanged:
		return d.store.ScreenOnTrigger.Set(ctx, cmd.Enabled)
	case CommandAlbumArtChanged:
		return d.store.AlbumArt.Set(ctx, cmd.Enabled)
	case CommandOnlineFallbackChanged:
		return d.store.OnlineFallback.Set(ctx, cmd.Enabled)

	case CommandHistorySummaryDaysChanged:
		// The advisory is shown before the write, unconditionally on
		// every qualifying tier. No debouncing, no only-on-increase check.
		if cmd.Days.IsAtLeast(TwoMonths) {
			if err := d.notifier.Show(ctx, RetentionAdvisory, NoticeLong); err != nil {
				return fmt.Errorf("advisory failed: %w", err)
			}
			capitan.Emit(ctx, AdvisoryShown,
				KeyDays.Field(cmd.Days.Days()),
			)
		}
		return d.store.HistorySummaryDays.Set(ctx, cmd.Days.Days())

	default:
		return fmt.Errorf("unknown command kind %d", cmd.Kind)
	}
}

// navigate requests a single transition.
func (d *Dispatcher) navigate(ctx context.Context, dest Destination) error {
	if err := d.nav.Navigate(ctx, dest); err != nil {
		return fmt.Errorf("navigate %s: %w", dest, err)
	}
	capitan.Emit(ctx, NavigationRequested,
		KeyDestination.Field(dest.String()),
	)
	return nil
}
