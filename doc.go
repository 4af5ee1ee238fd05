/*
Package dial provides reactive preference cells and settings presentation
state for embedding applications.

The core types are Cell, an observable and settable preference value, Panel,
which joins several cells into one live display snapshot, and Dispatcher,
which translates discrete user intents into cell writes or navigation
requests.

# Cells and Store

A Cell holds one preference value. Watchers receive the current value
immediately and every update after it, with latest-value semantics: a slow
reader sees the newest value, never a backlog.

	store := dial.NewStore()
	store.AlbumArt.Set(ctx, true)

Store owns the full set of recognition preferences and can hydrate them from
any byte-stream Watcher and persist them to any Sink:

	if err := store.Hydrate(ctx, dial.NewFileWatcher(path)); err != nil {
	    log.Printf("initial settings failed: %v", err)
	}
	store.Persist(ctx, dial.NewFileSink(path))

# Panel

Panel subscribes to every cell plus a Capability query and republishes a
combined Snapshot whenever any input changes. The stream is hot and cached:
the first value is always the Loading snapshot, and no Loaded snapshot is
produced until every input has emitted at least once.

	panel := dial.NewPanel(store, capability)
	if err := panel.Start(scope.Context()); err != nil {
	    return err
	}
	for snap := range panel.Watch(ctx) {
	    switch snap.Phase {
	    case dial.PhaseLoading:
	        render.Spinner()
	    case dial.PhaseLoaded:
	        render.Settings(snap)
	    }
	}

# Dispatcher

Dispatcher schedules each command as a task on a lifecycle Scope and never
blocks the caller. Commands either write exactly one cell or request exactly
one navigation transition:

	d := dial.NewDispatcher(scope, store, navigator, notifier)
	d.ScreenOnTriggerChanged(true)
	d.HistorySummaryDaysChanged(dial.TwoMonths)

Pipeline options (With*) wrap command processing with retry, backoff, or
timeout middleware, mirroring the option surface of pipz.

# Testing

Panel, Store, and Dispatcher support a synchronous mode that processes
pending input deterministically without goroutines or timers. Combined with
clockz.FakeClock, every timing-dependent path is testable without sleeps.
*/
package dial
