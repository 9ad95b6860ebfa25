// Pending-counter dispatcher (C3): the tick handler advances a per-task
// ms-accumulator and, when it reaches the task's period, saturating-
// increments a pending counter; the superloop drains pending counters and
// replays each task that many times. Grounded on
// original_source/src/scheduler.c's ISR/main-loop pair, restructured around
// Idle (C6) instead of raw LPM0/GIE and TickSource (C1) instead of a bare
// TA0 ISR.

package cosched_internal

import (
	"sync"
)

// PENDING_CEILING is the saturation ceiling for a task's pending counter
// (spec.md §6: "16-bit saturating... far beyond any plausible overrun").
const PENDING_CEILING = 1<<16 - 1

var pendingSchedulerLog = NewCompLogger("pending_scheduler")

// pendingTaskState is the per-task mutable bookkeeping the tick handler and
// the drain loop share. accumMs and pending are written only by the tick
// handler and by Drain while interrupts are masked (spec.md invariant 6).
type pendingTaskState struct {
	spec    *TaskSpec
	accumMs uint32
	pending uint32
}

// PendingCounterScheduler implements the C3 discipline.
type PendingCounterScheduler struct {
	idle  *Idle
	tasks []*pendingTaskState

	mu    sync.Mutex
	stats SchedulerStats

	state  DispatcherState
	stopCh chan struct{}
	wg     sync.WaitGroup

	nowMs uint64
}

// NewPendingCounterScheduler builds a C3 dispatcher from a frozen task
// table. The table must already have had Begin called.
func NewPendingCounterScheduler(table *TaskTable) *PendingCounterScheduler {
	specs := table.Specs()
	tasks := make([]*pendingTaskState, len(specs))
	stats := make(SchedulerStats, len(specs))
	for i, spec := range specs {
		tasks[i] = &pendingTaskState{spec: spec}
		stats[spec.ID] = NewTaskStats()
	}
	return &PendingCounterScheduler{
		tasks:  tasks,
		stats:  stats,
		state:  DispatcherStateCreated,
		stopCh: make(chan struct{}),
	}
}

// OnTick is the tick handler (C1's TickHandler): it advances each task's
// accumulator and, on rollover, saturating-increments its pending counter.
// It must run with the idle policy's mask held for its whole body (the
// simulated-ISR contract, spec.md §4.1) and must call Wake before
// returning so a sleeping superloop observes the new pending work.
func (s *PendingCounterScheduler) OnTick() {
	s.idle.MaskInterrupts()
	s.nowMs++
	for _, t := range s.tasks {
		t.accumMs++
		if t.accumMs >= t.spec.PeriodMs {
			t.accumMs = 0
			if t.pending < PENDING_CEILING {
				t.pending++
			} else {
				s.mu.Lock()
				s.stats[t.spec.ID].Uint64Stats[TASK_STATS_SATURATION_COUNT]++
				s.mu.Unlock()
			}
		}
	}
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
}

// Start launches the superloop goroutine. table must be frozen (Begin
// already called) before Start; the scheduler itself freezes nothing.
func (s *PendingCounterScheduler) Start(idle *Idle) {
	s.idle = idle
	s.state = DispatcherStateRunning
	s.wg.Add(1)
	go s.superloop()
}

// Stop halts the superloop and waits for it to return.
func (s *PendingCounterScheduler) Stop() {
	s.mu.Lock()
	s.state = DispatcherStateStopped
	s.mu.Unlock()
	s.idle.MaskInterrupts()
	close(s.stopCh)
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
	s.wg.Wait()
}

func (s *PendingCounterScheduler) superloop() {
	defer s.wg.Done()
	for {
		s.idle.MaskInterrupts()
		select {
		case <-s.stopCh:
			s.idle.UnmaskInterrupts()
			return
		default:
		}
		haveWork := false
		for _, t := range s.tasks {
			if t.pending > 0 {
				haveWork = true
				break
			}
		}
		if !haveWork {
			// Atomic unlock-and-suspend: a tick arriving between the loop
			// above and this call still wins the race because Wake is
			// called while the tick handler holds the same mask.
			s.idle.SleepUntilInterrupt()
			s.idle.UnmaskInterrupts()
			continue
		}
		s.idle.UnmaskInterrupts()
		s.drain()
	}
}

// drain snapshots and zeros each task's pending counter under the mask,
// then invokes fn that many times with interrupts enabled so the tick
// handler keeps running concurrently with task bodies, per spec.md §4.3.
func (s *PendingCounterScheduler) drain() {
	for _, t := range s.tasks {
		s.idle.MaskInterrupts()
		runCount := t.pending
		t.pending = 0
		now := s.nowMs
		s.idle.UnmaskInterrupts()

		if runCount == 0 {
			continue
		}

		s.mu.Lock()
		taskStats := s.stats[t.spec.ID]
		taskStats.Uint64Stats[TASK_STATS_RUN_COUNT] += uint64(runCount)
		if runCount > 1 {
			taskStats.Uint64Stats[TASK_STATS_OVERRUN_COUNT]++
		}
		if runCount > uint32(taskStats.Uint64Stats[TASK_STATS_MAX_PENDING]) {
			taskStats.Uint64Stats[TASK_STATS_MAX_PENDING] = uint64(runCount)
		}
		s.mu.Unlock()

		for i := uint32(0); i < runCount; i++ {
			t.spec.Fn(now, t.spec.Ctx)
		}
	}
}

// SnapStats returns a deep copy of the current per-task statistics.
func (s *PendingCounterScheduler) SnapStats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneSchedulerStats(s.stats)
}

// State reports the dispatcher's lifecycle state.
func (s *PendingCounterScheduler) State() DispatcherState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}
