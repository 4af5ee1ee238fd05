package dial

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/zoobzio/capitan"
	"github.com/zoobzio/clockz"
)

// recognitionPair is the intermediate composite of the two recognition
// inputs. The join treats it as a single slot: neither half is visible to
// the output until both have emitted.
type recognitionPair struct {
	period RecognitionPeriod
	buffer RecognitionBuffer
}

// Panel joins the preference cells and a capability query into one hot,
// latest-value-cached Snapshot stream. The first value is always the
// Loading snapshot; a Loaded snapshot appears once every input has emitted
// at least once, and each subsequent input emission produces exactly one
// new Loaded snapshot.
//
// The capability query runs synchronously on every recombination. It has
// no subscription of its own and is never cached.
type Panel struct {
	store      *Store
	capability Capability
	clock      clockz.Clock
	metrics    MetricsProvider
	onStop     func(Phase)
	syncMode   bool

	current atomic.Pointer[Snapshot]

	mu      sync.Mutex
	started bool
	subs    []chan Snapshot

	// latest value per input slot
	period     RecognitionPeriod
	periodOK   bool
	buffer     RecognitionBuffer
	bufferOK   bool
	screenOn   bool
	screenOnOK bool
	bedtime    bool
	bedtimeOK  bool
	albumArt   bool
	albumArtOK bool
	online     bool
	onlineOK   bool
	days       int
	daysOK     bool

	// input channels
	periodCh   <-chan RecognitionPeriod
	bufferCh   <-chan RecognitionBuffer
	screenOnCh <-chan bool
	bedtimeCh  <-chan bool
	albumArtCh <-chan bool
	onlineCh   <-chan bool
	daysCh     <-chan int
}

// NewPanel creates a Panel over the store's cells. The Loading snapshot is
// available from Current() immediately, before Start() is called.
func NewPanel(store *Store, capability Capability) *Panel {
	p := &Panel{
		store:      store,
		capability: capability,
		clock:      clockz.RealClock,
	}
	snap := Loading()
	p.current.Store(&snap)
	return p
}

// -----------------------------------------------------------------------------
// Chainable Instance Configuration
// -----------------------------------------------------------------------------

// SyncMode enables synchronous processing for testing. Input emissions are
// applied via Pump() without goroutines, making tests deterministic.
// Must be called before Start().
func (p *Panel) SyncMode() *Panel {
	p.syncMode = true
	return p
}

// Clock sets a custom clock for time operations. Must be called before Start().
func (p *Panel) Clock(clock clockz.Clock) *Panel {
	p.clock = clock
	return p
}

// Metrics sets a metrics provider for observability integration.
// Must be called before Start().
func (p *Panel) Metrics(provider MetricsProvider) *Panel {
	p.metrics = provider
	return p
}

// OnStop sets a callback invoked with the final phase when the panel stops
// watching. Must be called before Start().
func (p *Panel) OnStop(fn func(Phase)) *Panel {
	p.onStop = fn
	return p
}

// Current returns the latest published snapshot. Reading it never
// re-triggers computation.
func (p *Panel) Current() Snapshot {
	return *p.current.Load()
}

// Phase returns the phase of the latest published snapshot.
func (p *Panel) Phase() Phase {
	return p.Current().Phase
}

// Watch returns a channel that emits the current snapshot immediately and
// every published snapshot after it, with latest-value semantics. The
// channel is closed when the context is canceled.
func (p *Panel) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	ch <- p.Current()
	p.mu.Lock()
	p.subs = append(p.subs, ch)
	p.mu.Unlock()

	go func() {
		<-ctx.Done()
		p.dropSub(ch)
	}()
	return ch
}

// Start subscribes to every cell and begins recombining. Subscriptions end
// when the context is canceled; pass the owning scope's context so the
// panel is torn down with its owner.
//
// Start can only be called once. Subsequent calls return an error.
func (p *Panel) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return fmt.Errorf("panel already started")
	}
	p.started = true
	p.mu.Unlock()

	capitan.Emit(ctx, PanelStarted)

	p.periodCh = p.store.RecognitionPeriod.Watch(ctx)
	p.bufferCh = p.store.RecognitionBuffer.Watch(ctx)
	p.screenOnCh = p.store.ScreenOnTrigger.Watch(ctx)
	p.bedtimeCh = p.store.BedtimeMode.Watch(ctx)
	p.albumArtCh = p.store.AlbumArt.Watch(ctx)
	p.onlineCh = p.store.OnlineFallback.Watch(ctx)
	p.daysCh = p.store.HistorySummaryDays.Watch(ctx)

	if p.syncMode {
		return nil
	}

	go p.watch(ctx)
	return nil
}

// Pump applies pending input emissions in sync mode and recombines once if
// anything changed. At most one value per input is consumed per call.
func (p *Panel) Pump(ctx context.Context) bool {
	if !p.syncMode {
		return false
	}

	changed := false
	p.mu.Lock()
	select {
	case v, ok := <-p.periodCh:
		if ok {
			p.period, p.periodOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.bufferCh:
		if ok {
			p.buffer, p.bufferOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.screenOnCh:
		if ok {
			p.screenOn, p.screenOnOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.bedtimeCh:
		if ok {
			p.bedtime, p.bedtimeOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.albumArtCh:
		if ok {
			p.albumArt, p.albumArtOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.onlineCh:
		if ok {
			p.online, p.onlineOK, changed = v, true, true
		}
	default:
	}
	select {
	case v, ok := <-p.daysCh:
		if ok {
			p.days, p.daysOK, changed = v, true, true
		}
	default:
	}
	p.mu.Unlock()

	if !changed {
		return false
	}
	p.recombine(ctx)
	return true
}

// pair returns the recognition composite once both halves have emitted.
// Callers must hold p.mu.
func (p *Panel) pair() (recognitionPair, bool) {
	if !p.periodOK || !p.bufferOK {
		return recognitionPair{}, false
	}
	return recognitionPair{period: p.period, buffer: p.buffer}, true
}

// ready reports whether every join slot has a value. Callers must hold p.mu.
func (p *Panel) ready() bool {
	if _, ok := p.pair(); !ok {
		return false
	}
	return p.screenOnOK && p.bedtimeOK && p.albumArtOK && p.onlineOK && p.daysOK
}

// recombine reads the latest slot values and publishes a Loaded snapshot.
// Before every slot is filled it publishes nothing; the cached Loading
// snapshot stays current.
func (p *Panel) recombine(ctx context.Context) {
	start := p.clock.Now()

	p.mu.Lock()
	if !p.ready() {
		p.mu.Unlock()
		return
	}
	pair, _ := p.pair()
	screenOn := p.screenOn
	bedtime := p.bedtime
	albumArt := p.albumArt
	online := p.online
	days := p.days
	p.mu.Unlock()

	supports := p.capability.SupportsSummaryAndEditing(ctx)

	snap := Loaded(Snapshot{
		RecognitionPeriod:  pair.period,
		RecognitionBuffer:  pair.buffer,
		ScreenOnTrigger:    screenOn,
		BedtimeMode:        bedtime,
		AlbumArt:           albumArt,
		OnlineFallback:     online,
		SupportsSummary:    supports,
		HistorySummaryDays: ForDays(days),
	})
	p.publish(ctx, snap)

	if p.metrics != nil {
		p.metrics.OnSnapshot(PhaseLoaded, p.clock.Since(start))
	}
}

// publish caches the snapshot and fans it out to watchers.
func (p *Panel) publish(ctx context.Context, snap Snapshot) {
	p.current.Store(&snap)

	p.mu.Lock()
	for _, ch := range p.subs {
		deliver(ch, snap)
	}
	p.mu.Unlock()

	capitan.Emit(ctx, PanelSnapshotPublished,
		KeyPhase.Field(snap.Phase.String()),
	)
}

// dropSub removes and closes a watcher channel.
func (p *Panel) dropSub(ch chan Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i, sub := range p.subs {
		if sub == ch {
			p.subs = append(p.subs[:i], p.subs[i+1:]...)
			close(ch)
			return
		}
	}
}

// watch fans the input channels into a single recombination loop.
// One recombination runs per input emission; there is no debouncing.
func (p *Panel) watch(ctx context.Context) {
	defer func() {
		phase := p.Phase()
		capitan.Emit(ctx, PanelStopped,
			KeyPhase.Field(phase.String()),
		)
		if p.onStop != nil {
			p.onStop(phase)
		}
	}()

	changed := make(chan struct{}, 7)

	var wg sync.WaitGroup
	wg.Add(7)
	go forward(ctx, &wg, p.periodCh, changed, func(v RecognitionPeriod) {
		p.mu.Lock()
		p.period, p.periodOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.bufferCh, changed, func(v RecognitionBuffer) {
		p.mu.Lock()
		p.buffer, p.bufferOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.screenOnCh, changed, func(v bool) {
		p.mu.Lock()
		p.screenOn, p.screenOnOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.bedtimeCh, changed, func(v bool) {
		p.mu.Lock()
		p.bedtime, p.bedtimeOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.albumArtCh, changed, func(v bool) {
		p.mu.Lock()
		p.albumArt, p.albumArtOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.onlineCh, changed, func(v bool) {
		p.mu.Lock()
		p.online, p.onlineOK = v, true
		p.mu.Unlock()
	})
	go forward(ctx, &wg, p.daysCh, changed, func(v int) {
		p.mu.Lock()
		p.days, p.daysOK = v, true
		p.mu.Unlock()
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changed:
				if !ok {
					return
				}
				p.recombine(ctx)
			}
		}
	}()

	wg.Wait()
	close(changed)
	<-done
}

// forward stores each emission and signals the recombination loop,
// one token per value.
func forward[T any](ctx context.Context, wg *sync.WaitGroup, ch <-chan T, changed chan<- struct{}, store func(T)) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-ch:
			if !ok {
				return
			}
			store(v)
			select {
			case changed <- struct{}{}:
			case <-ctx.Done():
				return
			}
		}
	}
}
