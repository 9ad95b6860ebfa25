// Per-task and per-scheduler statistics shared by all three dispatch
// disciplines (C3/C4/C5), grounded on the TaskStats/SchedulerStats shape
// from the teacher's scheduler.go.

package cosched_internal

const (
	// Number of times the task's Fn was invoked.
	TASK_STATS_RUN_COUNT = iota
	// Number of times a tick observed the task already due while a previous
	// run's invocation count was still being drained (pending-counter: the
	// ISR incremented pending again before the superloop reset it to 0;
	// phase-offset: next_run_ms fell behind by at least one full period).
	// The table discipline does not count overruns.
	TASK_STATS_OVERRUN_COUNT
	// Number of times pending saturated at its ceiling (pending-counter
	// discipline only; zero under phase-offset/table).
	TASK_STATS_SATURATION_COUNT
	// Highest pending value observed at drain time (pending-counter only).
	TASK_STATS_MAX_PENDING
	// Total ticks elapsed between a task becoming due and actually running,
	// summed across all runs (a coarse, tick-granular latency accumulator).
	// Only the phase-offset discipline records it; it stays zero under the
	// pending-counter and table disciplines.
	TASK_STATS_TOTAL_LATENCY_TICKS

	TASK_STATS_UINT64_LEN
)

// TaskStats holds the running counters for a single task. The field names
// above double as stable indices into Uint64Stats so that a delta snapshot
// (new-old, per slot) is a plain element-wise subtraction — the same shape
// the metrics exposition layer in scheduler_metrics.go consumes.
type TaskStats struct {
	Uint64Stats []uint64
}

// NewTaskStats returns a zeroed TaskStats.
func NewTaskStats() *TaskStats {
	return &TaskStats{Uint64Stats: make([]uint64, TASK_STATS_UINT64_LEN)}
}

// SchedulerStats maps task ID to its stats. Every dispatcher exposes a
// thread-safe SnapStats returning one of these, so the metrics exposition
// layer and the demo harness can treat all three disciplines uniformly.
type SchedulerStats map[string]*TaskStats

// CloneSchedulerStats returns a deep copy of from, creating missing entries
// in a fresh map. Used to build the "previous" half of a delta pair.
func CloneSchedulerStats(from SchedulerStats) SchedulerStats {
	to := make(SchedulerStats, len(from))
	for id, stats := range from {
		clone := NewTaskStats()
		copy(clone.Uint64Stats, stats.Uint64Stats)
		to[id] = clone
	}
	return to
}

// DispatcherState mirrors the teacher's SchedulerState: a small enum
// reporting whether a dispatcher has been created, started or shut down.
// Start and Stop set it but do not check it, so a second Start or Stop is
// not rejected.
type DispatcherState int

const (
	DispatcherStateCreated DispatcherState = iota
	DispatcherStateRunning
	DispatcherStateStopped
)

var dispatcherStateName = map[DispatcherState]string{
	DispatcherStateCreated: "Created",
	DispatcherStateRunning: "Running",
	DispatcherStateStopped: "Stopped",
}

func (s DispatcherState) String() string { return dispatcherStateName[s] }
