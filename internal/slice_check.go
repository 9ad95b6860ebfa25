// Slice self-check (C7): the cooperative overrun helper a task body uses
// to voluntarily stop once it has used up its advisory execution budget.
// The scheduler cannot preempt a task, so this is the only timing
// discipline a long-running task has.

package cosched_internal

// SliceExpired reports whether, given a task's start tick and its advisory
// slice budget (both in ms), the elapsed ticks since start meet or exceed
// the budget. The subtraction is performed in signed 32-bit arithmetic so
// that a run straddling a counter wrap (now_ms wrapping past its maximum)
// still self-checks correctly — the same technique used for every other
// "due" test in this package.
func SliceExpired(nowMs, startMs, limitMs uint32) bool {
	return int32(nowMs-startMs) >= int32(limitMs)
}
