// External collaborators (C8): output sink and GPIO surface. These are
// narrow, pluggable interfaces — the core dispatchers never import a
// concrete implementation, only the interface, so illustrative tasks can
// be swapped for real peripheral drivers without touching C1–C7.

package cosched_internal

import (
	"io"
	"os"
	"sync"
)

// OutputSink models a blocking byte sink (e.g. a UART), per spec.md §4.8:
// "write_bytes(buffer) — blocking, byte-ordered."
type OutputSink interface {
	WriteBytes(buf []byte) (int, error)
}

// StdoutSink is a hosted OutputSink suitable for demos and tests, standing
// in for original_source/src/uart.c's uart_putchar/_write.
type StdoutSink struct {
	w io.Writer
}

// NewStdoutSink wraps w (os.Stdout if nil) as an OutputSink.
func NewStdoutSink(w io.Writer) *StdoutSink {
	if w == nil {
		w = os.Stdout
	}
	return &StdoutSink{w: w}
}

func (s *StdoutSink) WriteBytes(buf []byte) (int, error) {
	return s.w.Write(buf)
}

// GPIO models a non-blocking pin surface, per spec.md §4.8: "set/clear/
// toggle(pin) — non-blocking, no failure modes specified."
type GPIO interface {
	Set(pin int)
	Clear(pin int)
	Toggle(pin int)
}

var gpioLog = NewCompLogger("gpio")

// SimGPIO is an in-memory GPIO surface for hosted simulation and tests. It
// logs each transition instead of driving a real pin, standing in for the
// P1OUT bit-toggling throughout original_source/src/*.c.
type SimGPIO struct {
	mu    sync.Mutex
	state map[int]bool
}

// NewSimGPIO returns an all-low (false) simulated GPIO surface.
func NewSimGPIO() *SimGPIO {
	return &SimGPIO{state: make(map[int]bool)}
}

func (g *SimGPIO) Set(pin int) {
	g.mu.Lock()
	g.state[pin] = true
	g.mu.Unlock()
	gpioLog.Debugf("pin %d -> high", pin)
}

func (g *SimGPIO) Clear(pin int) {
	g.mu.Lock()
	g.state[pin] = false
	g.mu.Unlock()
	gpioLog.Debugf("pin %d -> low", pin)
}

func (g *SimGPIO) Toggle(pin int) {
	g.mu.Lock()
	g.state[pin] = !g.state[pin]
	now := g.state[pin]
	g.mu.Unlock()
	gpioLog.Debugf("pin %d -> %v", pin, now)
}

// State reports the current simulated level of pin (false/low if never set).
func (g *SimGPIO) State(pin int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state[pin]
}
