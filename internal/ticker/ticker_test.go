package ticker

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/procsim/internal/constants"
	"github.com/nvandessel/procsim/internal/signal"
)

// cappedCounter stops advancing once it reaches max. Only the ticker
// goroutine calls Inc, so the check-then-increment is race free.
type cappedCounter struct {
	c   *signal.Counter
	max int32
}

func (cc *cappedCounter) Inc() int32 {
	if cc.c.Load() >= cc.max {
		return cc.c.Load()
	}
	return cc.c.Inc()
}

func TestTicker_IncrementsOncePerInterval(t *testing.T) {
	c := signal.NewCounter()
	tk := New(c, 20*time.Millisecond, nil)

	require.NoError(t, tk.Start(context.Background()))
	time.Sleep(210 * time.Millisecond)
	tk.Stop()

	got := c.Load()
	assert.GreaterOrEqual(t, got, int32(5), "too few ticks")
	assert.LessOrEqual(t, got, int32(11), "too many ticks")
	assert.Equal(t, uint64(got), tk.Ticks())

	// No more increments after Stop.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, got, c.Load())
}

func TestTicker_StartTwice(t *testing.T) {
	tk := New(signal.NewCounter(), time.Hour, nil)
	require.NoError(t, tk.Start(context.Background()))
	defer tk.Stop()

	assert.ErrorIs(t, tk.Start(context.Background()), ErrAlreadyStarted)
}

func TestTicker_StopIsIdempotent(t *testing.T) {
	tk := New(signal.NewCounter(), time.Hour, nil)
	tk.Stop()

	require.NoError(t, tk.Start(context.Background()))
	tk.Stop()
	tk.Stop()
}

func TestTicker_ContextCancelStopsLoop(t *testing.T) {
	c := signal.NewCounter()
	ctx, cancel := context.WithCancel(context.Background())
	tk := New(c, 5*time.Millisecond, nil)

	require.NoError(t, tk.Start(ctx))
	cancel()
	tk.Stop()

	v := c.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, v, c.Load())
}

func TestTicker_DefaultInterval(t *testing.T) {
	assert.Equal(t, constants.DefaultTickInterval, New(signal.NewCounter(), 0, nil).Interval())
	assert.Equal(t, constants.DefaultTickInterval, New(signal.NewCounter(), -time.Second, nil).Interval())
	assert.Equal(t, time.Second, constants.DefaultTickInterval)
}

func TestTicker_OnTick(t *testing.T) {
	c := signal.NewCounter()
	tk := New(c, 5*time.Millisecond, nil)

	var last atomic.Int32
	tk.OnTick = func(v int32) { last.Store(v) }

	require.NoError(t, tk.Start(context.Background()))
	require.Eventually(t, func() bool { return last.Load() >= 3 }, time.Second, time.Millisecond)
	tk.Stop()

	assert.Equal(t, c.Load(), last.Load())
}

func TestTicker_ConcurrentReadsDuringFiveTicks(t *testing.T) {
	c := signal.NewCounter()
	initial := c.Load()
	final := initial + 5
	tk := New(&cappedCounter{c: c, max: final}, 2*time.Millisecond, nil)

	read := signal.NewProvider(nil, c).Definitions()[6].Evaluator

	const readers = 1000
	var (
		ready sync.WaitGroup
		wg    sync.WaitGroup
		start = make(chan struct{})
		errs  = make(chan string, readers)
	)

	for i := 0; i < readers; i++ {
		ready.Add(1)
		wg.Add(1)
		go func() {
			defer wg.Done()
			ready.Done()
			<-start

			prev := initial
			for {
				v := read.Evaluate().Int32()
				if v < initial || v > final {
					errs <- fmt.Sprintf("observed %d outside [%d, %d]", v, initial, final)
					return
				}
				if v < prev {
					errs <- fmt.Sprintf("counter went backwards: %d after %d", v, prev)
					return
				}
				prev = v
				if v == final {
					return
				}
				runtime.Gosched()
			}
		}()
	}

	// Every reader is spinning before the first tick can fire.
	ready.Wait()
	close(start)
	require.NoError(t, tk.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("readers did not observe the fifth tick")
	}
	tk.Stop()
	close(errs)

	for msg := range errs {
		t.Error(msg)
	}
	assert.Equal(t, final, c.Load())
}
