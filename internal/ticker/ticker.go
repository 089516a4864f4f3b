// Package ticker runs the periodic background process that advances the
// simulation counter.
package ticker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/nvandessel/procsim/internal/constants"
	"github.com/nvandessel/procsim/internal/logging"
)

// ErrAlreadyStarted is returned when Start is called on a running ticker.
var ErrAlreadyStarted = errors.New("ticker already started")

// Incrementer is the state advanced on every tick.
type Incrementer interface {
	Inc() int32
}

// Ticker increments its target once per interval until stopped. Ticks
// delayed by the scheduler are dropped rather than caught up.
type Ticker struct {
	target   Incrementer
	interval time.Duration
	logger   *slog.Logger

	// OnTick, if set, is called after every increment with the new value.
	// It runs on the ticker goroutine and must not block.
	OnTick func(value int32)

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}
	ticks   atomic.Uint64
}

// New creates a ticker. A non-positive interval means
// constants.DefaultTickInterval and a nil logger discards output.
func New(target Incrementer, interval time.Duration, logger *slog.Logger) *Ticker {
	if interval <= 0 {
		interval = constants.DefaultTickInterval
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Ticker{
		target:   target,
		interval: interval,
		logger:   logger,
	}
}

// Interval returns the tick period.
func (t *Ticker) Interval() time.Duration {
	return t.interval
}

// Ticks returns the number of ticks performed so far.
func (t *Ticker) Ticks() uint64 {
	return t.ticks.Load()
}

// Start launches the tick loop. The loop ends when ctx is cancelled or Stop
// is called.
func (t *Ticker) Start(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.stopped != nil {
		return ErrAlreadyStarted
	}

	tickCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.stopped = make(chan struct{})

	tk := time.NewTicker(t.interval)
	go t.loop(tickCtx, tk, t.stopped)

	t.logger.Debug("counter ticker started", "interval", t.interval)

	return nil
}

// Stop cancels the tick loop, releases the timer and waits for the loop to
// exit. It is safe to call more than once and before Start.
func (t *Ticker) Stop() {
	t.mu.Lock()
	cancel, stopped := t.cancel, t.stopped
	t.mu.Unlock()

	if cancel == nil {
		return
	}

	cancel()
	<-stopped
}

func (t *Ticker) loop(ctx context.Context, tk *time.Ticker, stopped chan struct{}) {
	defer close(stopped)
	defer tk.Stop()

	for {
		select {
		case <-ctx.Done():
			t.logger.Debug("counter ticker stopped", "ticks", t.ticks.Load())
			return
		case <-tk.C:
			v := t.target.Inc()
			t.ticks.Add(1)
			if t.OnTick != nil {
				t.OnTick(v)
			}
			t.logger.Log(ctx, logging.LevelTrace, "tick", "counter", v)
		}
	}
}
