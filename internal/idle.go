// Superloop / idle policy (C6): the atomic mask-check-sleep discipline
// that prevents the classical lost-wakeup race, in which a wake event
// arrives after a thread decides to sleep but before it actually does.
//
// On the real target this is a single instruction pair,
// __bis_SR_register(LPM0_bits | GIE) executed with interrupts already
// masked, guaranteed by the CPU not to be split by an interrupt. On a
// hosted platform the equivalent atomic "release the lock and suspend"
// primitive is sync.Cond.Wait: it is documented to unlock and begin
// waiting as a single operation from the caller's perspective, so a
// signal arriving just before or just after the call is never missed.

package cosched_internal

import "sync"

// Idle models the platform's interrupt-mask/sleep primitive (C6, C8). A
// dispatcher's superloop masks interrupts, checks for pending work, and
// either proceeds (work found) or calls SleepUntilInterrupt (no work) —
// all while still holding the mask. The tick handler (the simulated ISR)
// masks interrupts, updates shared state, calls Wake, then unmasks.
type Idle struct {
	mu   sync.Mutex
	cond *sync.Cond
}

// NewIdle returns a ready-to-use Idle.
func NewIdle() *Idle {
	idle := &Idle{}
	idle.cond = sync.NewCond(&idle.mu)
	return idle
}

// MaskInterrupts begins a critical section. Critical sections guarded by
// Idle must be short (a handful of reads/writes) and must never invoke a
// task body or any blocking external collaborator (spec.md §5).
func (idle *Idle) MaskInterrupts() { idle.mu.Lock() }

// UnmaskInterrupts ends a critical section.
func (idle *Idle) UnmaskInterrupts() { idle.mu.Unlock() }

// SleepUntilInterrupt must be called with interrupts masked. It atomically
// releases the mask and suspends the caller until Wake is called,
// re-acquiring the mask before returning. Because the release-and-suspend
// step is indivisible, a Wake from the tick handler can never be lost
// between the final "no work" check and the call to sleep.
func (idle *Idle) SleepUntilInterrupt() { idle.cond.Wait() }

// Wake signals any superloop currently in SleepUntilInterrupt. The caller
// must hold the mask (i.e. call this between MaskInterrupts and
// UnmaskInterrupts) so that the state change it is announcing is visible
// to the waiter once it reacquires the mask.
func (idle *Idle) Wake() { idle.cond.Broadcast() }
