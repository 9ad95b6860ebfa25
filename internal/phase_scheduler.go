// Phase-offset dispatcher (C4): each task carries an absolute next_run_ms,
// seeded from its phase_offset_ms; the superloop compares now_ms against it
// using wrap-safe signed-difference arithmetic and advances it by exactly
// one period per dispatch. Grounded on
// original_source/src/phase_offset.c's main loop, restructured around
// Idle (C6) and TickSource (C1).

package cosched_internal

import "sync"

var phaseSchedulerLog = NewCompLogger("phase_scheduler")

// CatchUpPolicy governs what happens when a task is discovered more than
// one period late (spec.md §4.4's policy knob).
type CatchUpPolicy int

const (
	// CatchUpReplay runs the task once per dispatch iteration until
	// next_run_ms catches back up to the present — the spec's default: no
	// activation is ever skipped, only delayed.
	CatchUpReplay CatchUpPolicy = iota
	// CatchUpSkip jumps next_run_ms forward to the nearest future multiple
	// of period_ms on first detecting a backlog, running the task once and
	// discarding the missed activations — intended for rate-limited tasks
	// where staleness, not completeness, matters.
	CatchUpSkip
)

type phaseTaskState struct {
	spec      *TaskSpec
	nextRunMs uint32
	policy    CatchUpPolicy
}

// PhaseOffsetScheduler implements the C4 discipline.
type PhaseOffsetScheduler struct {
	idle  *Idle
	tasks []*phaseTaskState

	mu    sync.Mutex
	stats SchedulerStats

	state  DispatcherState
	stopCh chan struct{}
	wg     sync.WaitGroup

	nowMs uint32
}

// NewPhaseOffsetScheduler builds a C4 dispatcher from a frozen task table.
// Every task uses CatchUpReplay; use SetCatchUpPolicy to opt a specific
// task into CatchUpSkip.
func NewPhaseOffsetScheduler(table *TaskTable) *PhaseOffsetScheduler {
	specs := table.Specs()
	tasks := make([]*phaseTaskState, len(specs))
	stats := make(SchedulerStats, len(specs))
	for i, spec := range specs {
		tasks[i] = &phaseTaskState{spec: spec, nextRunMs: spec.PhaseOffsetMs}
		stats[spec.ID] = NewTaskStats()
	}
	return &PhaseOffsetScheduler{
		tasks:  tasks,
		stats:  stats,
		state:  DispatcherStateCreated,
		stopCh: make(chan struct{}),
	}
}

// SetCatchUpPolicy overrides the catch-up policy for a single registered
// task. Must be called before Start.
func (s *PhaseOffsetScheduler) SetCatchUpPolicy(taskID string, policy CatchUpPolicy) {
	for _, t := range s.tasks {
		if t.spec.ID == taskID {
			t.policy = policy
			return
		}
	}
}

// OnTick is the tick handler: it increments now_ms and wakes the superloop
// unconditionally (C4 has no per-task accumulator to maintain in the ISR —
// due-ness is computed by the superloop itself).
func (s *PhaseOffsetScheduler) OnTick() {
	s.idle.MaskInterrupts()
	s.nowMs++
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
}

// Start launches the superloop goroutine.
func (s *PhaseOffsetScheduler) Start(idle *Idle) {
	s.idle = idle
	s.state = DispatcherStateRunning
	s.wg.Add(1)
	go s.superloop()
}

// Stop halts the superloop and waits for it to return.
func (s *PhaseOffsetScheduler) Stop() {
	s.mu.Lock()
	s.state = DispatcherStateStopped
	s.mu.Unlock()
	s.idle.MaskInterrupts()
	close(s.stopCh)
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
	s.wg.Wait()
}

func (s *PhaseOffsetScheduler) superloop() {
	defer s.wg.Done()
	for {
		s.idle.MaskInterrupts()
		select {
		case <-s.stopCh:
			s.idle.UnmaskInterrupts()
			return
		default:
		}
		now := s.nowMs
		haveWork := s.anyDue(now)
		if !haveWork {
			s.idle.SleepUntilInterrupt()
			s.idle.UnmaskInterrupts()
			continue
		}
		s.idle.UnmaskInterrupts()
		s.dispatch(now)
	}
}

func (s *PhaseOffsetScheduler) anyDue(now uint32) bool {
	for _, t := range s.tasks {
		if int32(now-t.nextRunMs) >= 0 {
			return true
		}
	}
	return false
}

// dispatch runs every due task, in registration order, exactly once per
// superloop iteration — a task more than one period behind is caught up
// (or skipped) on subsequent iterations rather than in a tight inner loop,
// matching original_source/src/phase_offset.c's single-pass structure.
func (s *PhaseOffsetScheduler) dispatch(now uint32) {
	for _, t := range s.tasks {
		lateness := int32(now - t.nextRunMs)
		if lateness < 0 {
			continue
		}

		s.mu.Lock()
		taskStats := s.stats[t.spec.ID]
		taskStats.Uint64Stats[TASK_STATS_RUN_COUNT]++
		if lateness >= int32(t.spec.PeriodMs) {
			taskStats.Uint64Stats[TASK_STATS_OVERRUN_COUNT]++
		}
		taskStats.Uint64Stats[TASK_STATS_TOTAL_LATENCY_TICKS] += uint64(lateness)
		s.mu.Unlock()

		t.spec.Fn(uint64(now), t.spec.Ctx)

		if t.policy == CatchUpSkip && lateness >= int32(t.spec.PeriodMs) {
			missed := lateness / int32(t.spec.PeriodMs)
			t.nextRunMs += uint32(missed) * t.spec.PeriodMs
		}
		t.nextRunMs += t.spec.PeriodMs
	}
}

// SnapStats returns a deep copy of the current per-task statistics.
func (s *PhaseOffsetScheduler) SnapStats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneSchedulerStats(s.stats)
}

// State reports the dispatcher's lifecycle state.
func (s *PhaseOffsetScheduler) State() DispatcherState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
