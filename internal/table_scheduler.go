// Offline table planner and dispatcher companion (C5): a hyperperiod
// schedule of (fn, start_ms, duration_ms) slots is computed once, up
// front, by BuildSchedule, then replayed by TableScheduler forever.
// Grounded on original_source/src/scheduler_generator.c's
// compute_offsets/build_schedule/run_scheduler, with one deliberate
// deviation from the original's run_scheduler: it fires only on exact
// equality (sys_ms % H == slot.start_ms), so a superloop that wakes late
// by even one tick silently skips a slot. Per spec.md §9 Design Note 1,
// this implementation uses a >= test with explicit slot-index advance
// instead, so a late wakeup still executes the missed slot.

package cosched_internal

import (
	"sort"
	"sync"
)

var tableSchedulerLog = NewCompLogger("table_scheduler")

// Slot is one materialized entry in the hyperperiod schedule.
type Slot struct {
	Spec       *TaskSpec
	StartMs    uint32
	DurationMs uint32
}

func gcdUint32(a, b uint32) uint32 {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func lcmUint32(a, b uint32) uint32 {
	return a / gcdUint32(a, b) * b
}

// BuildSchedule computes the hyperperiod of the given specs, assigns each
// task a collision-avoiding offset, materializes every slot occurrence
// within the hyperperiod, and returns them sorted by start_ms ascending
// (ties broken by original registration order). specs must come from a
// frozen TaskTable in registration order.
//
// Offset assignment follows spec.md Scenario 3: tasks are considered in
// period-descending order and each is given the running sum of slices
// assigned so far, modulo its own period — the same greedy "pack slices
// back to back, largest period first" strategy as compute_offsets.
func BuildSchedule(specs []*TaskSpec, maxSlots int) ([]Slot, uint32, error) {
	if maxSlots <= 0 {
		maxSlots = DEFAULT_MAX_SLOTS
	}
	if len(specs) == 0 {
		return nil, 0, nil
	}

	ordered := make([]*TaskSpec, len(specs))
	copy(ordered, specs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PeriodMs > ordered[j].PeriodMs
	})

	hyper := ordered[0].PeriodMs
	for _, spec := range ordered[1:] {
		if hyper/gcdUint32(hyper, spec.PeriodMs) > ^uint32(0)/spec.PeriodMs {
			return nil, 0, ErrHyperperiodTooLarge
		}
		hyper = lcmUint32(hyper, spec.PeriodMs)
	}

	offsets := make(map[string]uint32, len(ordered))
	var accumSlice uint32
	for _, spec := range ordered {
		offsets[spec.ID] = accumSlice % spec.PeriodMs
		accumSlice += spec.SliceMs
	}

	var slots []Slot
	// Materialize in original registration order so that, combined with a
	// stable sort by start_ms below, ties break by registration order as
	// spec.md §4.5 invariant 5 requires.
	for _, spec := range specs {
		offset := offsets[spec.ID]
		instances := hyper / spec.PeriodMs
		for n := uint32(0); n < instances; n++ {
			if len(slots) >= maxSlots {
				return nil, 0, ErrSlotTableFull
			}
			slots = append(slots, Slot{
				Spec:       spec,
				StartMs:    offset + n*spec.PeriodMs,
				DurationMs: spec.SliceMs,
			})
		}
	}

	sort.SliceStable(slots, func(i, j int) bool {
		return slots[i].StartMs < slots[j].StartMs
	})

	for i := 0; i+1 < len(slots); i++ {
		if slots[i].StartMs+slots[i].DurationMs > slots[i+1].StartMs {
			return nil, 0, ErrScheduleConflict
		}
	}
	// The table is replayed cyclically: the last slot must also end before
	// the first slot of the next hyperperiod starts.
	if n := len(slots); n > 0 && slots[n-1].StartMs+slots[n-1].DurationMs > hyper+slots[0].StartMs {
		return nil, 0, ErrScheduleConflict
	}

	return slots, hyper, nil
}

// TableScheduler implements the C5 dispatcher companion: it replays a
// pre-built slot table forever, advancing slot_idx as ticks pass.
type TableScheduler struct {
	idle        *Idle
	slots       []Slot
	hyperperiod uint32

	mu          sync.Mutex
	stats       SchedulerStats
	slotIdx     int
	cycleBaseMs uint32

	state  DispatcherState
	stopCh chan struct{}
	wg     sync.WaitGroup

	nowMs uint32
}

// NewTableScheduler wraps an already-built slot table. hyperperiod must be
// the value BuildSchedule returned alongside the slots.
func NewTableScheduler(slots []Slot, hyperperiod uint32) *TableScheduler {
	stats := make(SchedulerStats)
	seen := make(map[string]bool)
	for _, slot := range slots {
		if !seen[slot.Spec.ID] {
			seen[slot.Spec.ID] = true
			stats[slot.Spec.ID] = NewTaskStats()
		}
	}
	return &TableScheduler{
		slots:       slots,
		hyperperiod: hyperperiod,
		stats:       stats,
		state:       DispatcherStateCreated,
		stopCh:      make(chan struct{}),
	}
}

// OnTick increments now_ms and wakes the superloop.
func (s *TableScheduler) OnTick() {
	s.idle.MaskInterrupts()
	s.nowMs++
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
}

// Start launches the superloop goroutine.
func (s *TableScheduler) Start(idle *Idle) {
	s.idle = idle
	s.state = DispatcherStateRunning
	s.wg.Add(1)
	go s.superloop()
}

// Stop halts the superloop and waits for it to return.
func (s *TableScheduler) Stop() {
	s.mu.Lock()
	s.state = DispatcherStateStopped
	s.mu.Unlock()
	s.idle.MaskInterrupts()
	close(s.stopCh)
	s.idle.Wake()
	s.idle.UnmaskInterrupts()
	s.wg.Wait()
}

func (s *TableScheduler) superloop() {
	defer s.wg.Done()
	if len(s.slots) == 0 {
		<-s.stopCh
		return
	}
	for {
		s.idle.MaskInterrupts()
		select {
		case <-s.stopCh:
			s.idle.UnmaskInterrupts()
			return
		default:
		}
		now := s.nowMs
		due := s.dueSlot(now)
		if due < 0 {
			s.idle.SleepUntilInterrupt()
			s.idle.UnmaskInterrupts()
			continue
		}
		s.idle.UnmaskInterrupts()
		s.runSlot(due, now)
	}
}

// dueSlot reports the index of the next slot to run if now_ms is at or
// past its scheduled absolute deadline, or -1 if none is due yet. The
// deadline is tracked as cycle_base_ms + slot.start_ms rather than
// compared via now_ms % hyperperiod: the slot with start_ms == 0 (there is
// always exactly one, since BuildSchedule gives the largest-period task
// offset 0) would otherwise be "due" for every phase in [0, hyperperiod),
// not just once per actual hyperperiod elapsed. cycle_base_ms only
// advances by hyperperiod when slot_idx wraps back to the start of the
// table, so each slot occurrence is due exactly once per cycle. Using >=
// (rather than the original's strict ==) means a superloop that wakes a
// tick or more late still executes the slot instead of silently skipping
// it.
func (s *TableScheduler) dueSlot(now uint32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	due := s.cycleBaseMs + s.slots[s.slotIdx].StartMs
	if int32(now-due) >= 0 {
		return s.slotIdx
	}
	return -1
}

func (s *TableScheduler) runSlot(idx int, now uint32) {
	slot := s.slots[idx]

	s.mu.Lock()
	taskStats := s.stats[slot.Spec.ID]
	taskStats.Uint64Stats[TASK_STATS_RUN_COUNT]++
	s.slotIdx = (s.slotIdx + 1) % len(s.slots)
	if s.slotIdx == 0 {
		s.cycleBaseMs += s.hyperperiod
	}
	s.mu.Unlock()

	slot.Spec.Fn(uint64(now), slot.Spec.Ctx)
}

// SnapStats returns a deep copy of the current per-task statistics.
func (s *TableScheduler) SnapStats() SchedulerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return CloneSchedulerStats(s.stats)
}

// State reports the dispatcher's lifecycle state.
func (s *TableScheduler) State() DispatcherState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Hyperperiod reports the schedule's hyperperiod in milliseconds.
func (s *TableScheduler) Hyperperiod() uint32 { return s.hyperperiod }
