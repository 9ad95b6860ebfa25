// Tick source (C1) and the tick platform contract exposed to it (C8).
//
// On the real target this is TA0 CCR0 configured for a 1 kHz interrupt
// (see original_source/src/scheduler.c's TimerA0_Init_1ms and its sibling
// ISRs). On a hosted platform it is a time.Ticker-driven goroutine that
// calls the registered handler once per tick, standing in for the ISR.
// The handler itself is supplied by whichever dispatcher (C3/C4/C5) is
// running; TickSource's only job is to invoke it on schedule and to never
// invoke it concurrently with itself (spec.md §4.1: "the tick handler is
// never reentrant").

package cosched_internal

import (
	"sync"
	"time"
)

// TickHandler is invoked once per tick. Implementations must be fast,
// must not allocate, and must not call blocking external collaborators —
// spec.md §4.1's ISR contract.
type TickHandler func()

// TickSource models the platform's hardware timer interrupt (C1, C8).
type TickSource interface {
	// Start begins invoking handler once per tick until Stop is called.
	// Start must not block.
	Start(handler TickHandler)
	// Stop halts the tick source and waits for any in-flight handler
	// invocation to complete.
	Stop()
}

// HardwareTickSource is a time.Ticker-backed TickSource, the hosted
// equivalent of the MSP430's TimerA0 1 ms interrupt.
type HardwareTickSource struct {
	tickPeriod time.Duration
	ticker     *time.Ticker
	stopCh     chan struct{}
	wg         sync.WaitGroup
}

// NewHardwareTickSource returns a TickSource that fires every tickMs
// milliseconds. tickMs <= 0 falls back to DEFAULT_TICK_MS.
func NewHardwareTickSource(tickMs int) *HardwareTickSource {
	if tickMs <= 0 {
		tickMs = DEFAULT_TICK_MS
	}
	return &HardwareTickSource{
		tickPeriod: time.Duration(tickMs) * time.Millisecond,
	}
}

func (ts *HardwareTickSource) Start(handler TickHandler) {
	ts.ticker = time.NewTicker(ts.tickPeriod)
	ts.stopCh = make(chan struct{})
	ts.wg.Add(1)
	go func() {
		defer ts.wg.Done()
		for {
			select {
			case <-ts.stopCh:
				return
			case <-ts.ticker.C:
				handler()
			}
		}
	}()
}

func (ts *HardwareTickSource) Stop() {
	if ts.ticker != nil {
		ts.ticker.Stop()
	}
	if ts.stopCh != nil {
		close(ts.stopCh)
	}
	ts.wg.Wait()
}
