package dashboard

import (
	"context"
	"sync"
	"time"
)

// AutoRefreshIntervals are the dashboard-level silent refresh choices; zero
// disables the timer.
var AutoRefreshIntervals = []time.Duration{
	0,
	30 * time.Second,
	time.Minute,
	5 * time.Minute,
	10 * time.Minute,
	30 * time.Minute,
}

// Poller is an explicit cancellable refresh handle. Starting cancels any
// previous timer first, so reconfiguring a widget can never leak the old one;
// Stop is idempotent. The tick callback receives a context that is cancelled
// on Stop, which is the guard against state mutation after teardown.
type Poller struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewPoller builds an idle poller.
func NewPoller() *Poller {
	return &Poller{}
}

// Start begins invoking tick on the interval. A non-positive interval only
// cancels the current timer.
func (p *Poller) Start(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	p.Stop()
	if interval <= 0 || tick == nil {
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	p.mu.Lock()
	p.cancel = cancel
	p.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-runCtx.Done():
				return
			case <-ticker.C:
				tick(runCtx)
			}
		}
	}()
}

// Stop cancels the running timer, if any.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Running reports whether a timer is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// WidgetPollers owns one poller per widget so external refresh timers are
// torn down when a widget is removed or reconfigured.
type WidgetPollers struct {
	mu      sync.Mutex
	pollers map[string]*Poller
}

// NewWidgetPollers builds an empty set.
func NewWidgetPollers() *WidgetPollers {
	return &WidgetPollers{pollers: make(map[string]*Poller)}
}

// Track starts (or restarts) the poller for a widget based on its external
// refresh interval. Widgets without auto-refresh get their poller stopped.
func (wp *WidgetPollers) Track(ctx context.Context, w Widget, tick func(context.Context)) {
	interval := 0
	if w.Config.ExternalAPI != nil {
		interval = w.Config.ExternalAPI.RefreshInterval
	}
	wp.mu.Lock()
	poller, ok := wp.pollers[w.ID]
	if !ok {
		poller = NewPoller()
		wp.pollers[w.ID] = poller
	}
	wp.mu.Unlock()
	poller.Start(ctx, time.Duration(interval)*time.Second, tick)
}

// Release stops and forgets the poller for a removed widget.
func (wp *WidgetPollers) Release(widgetID string) {
	wp.mu.Lock()
	poller, ok := wp.pollers[widgetID]
	delete(wp.pollers, widgetID)
	wp.mu.Unlock()
	if ok {
		poller.Stop()
	}
}

// StopAll tears down every timer; called when a dashboard is closed.
func (wp *WidgetPollers) StopAll() {
	wp.mu.Lock()
	pollers := make([]*Poller, 0, len(wp.pollers))
	for id, poller := range wp.pollers {
		pollers = append(pollers, poller)
		delete(wp.pollers, id)
	}
	wp.mu.Unlock()
	for _, poller := range pollers {
		poller.Stop()
	}
}

// AutoRefresher drives the dashboard-level silent dataset refresh. It never
// flips the provider's loading flag, so widgets keep rendering their current
// values during background refreshes.
type AutoRefresher struct {
	datasets  DatasetProvider
	telemetry Telemetry
	poller    *Poller
}

// NewAutoRefresher builds a refresher for the dataset provider.
func NewAutoRefresher(datasets DatasetProvider, telemetry Telemetry) *AutoRefresher {
	return &AutoRefresher{
		datasets:  datasets,
		telemetry: normalizeTelemetry(telemetry),
		poller:    NewPoller(),
	}
}

// Start schedules silent refreshes on the interval; zero stops the timer.
func (a *AutoRefresher) Start(ctx context.Context, interval time.Duration) {
	if a.datasets == nil {
		return
	}
	a.poller.Start(ctx, interval, func(tickCtx context.Context) {
		if err := a.datasets.SilentRefresh(tickCtx); err != nil {
			a.telemetry.Record(tickCtx, "dashboard.dataset.refresh_error", map[string]any{
				"error": err.Error(),
			})
		}
	})
}

// Stop cancels the refresh timer.
func (a *AutoRefresher) Stop() {
	a.poller.Stop()
}
