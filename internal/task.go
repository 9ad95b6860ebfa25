// Task table: a statically sized, append-only registry of task descriptors.
//
// A task, for scheduling purposes, is a periodic function plus the
// attributes the three dispatcher disciplines need. The table itself is
// discipline-agnostic; each dispatcher (C3/C4/C5) builds its own runtime
// bookkeeping from a snapshot of TaskSpecs taken once, in its constructor.

package cosched_internal

import "sync"

const (
	// Default static capacity, per spec.md §6 ("MAX_TASKS (default 8, ≥1)").
	DEFAULT_MAX_TASKS = 8

	// Planner-only capacity, per spec.md §6 ("MAX_SLOTS (default 128...)").
	DEFAULT_MAX_SLOTS = 128

	// Default tick granularity, per spec.md §6 ("TICK_MS (default 1)").
	DEFAULT_TICK_MS = 1
)

// TaskFunc is the callable a task registers. nowMs is the tick count at
// invocation time; ctx is the per-task state registered alongside it (see
// spec.md Design Notes §9: "the interface should permit per-task state
// passed at registration").
type TaskFunc func(nowMs uint64, ctx any)

// TaskSpec is the immutable, discipline-agnostic part of a task descriptor.
// Once registered it is never mutated; each dispatcher keeps its own
// mutable runtime state (pending count, next run time, slot offset) keyed
// off of it.
type TaskSpec struct {
	ID            string
	Fn            TaskFunc
	Ctx           any
	PeriodMs      uint32
	SliceMs       uint32
	PhaseOffsetMs uint32 // meaningful only under the phase-offset discipline
}

// TaskTable is the static, append-only registry (C2). It accepts
// registrations until Begin is called, at which point it is frozen: a
// dispatcher owns the table from then on and registration is rejected,
// per spec.md invariant 1 ("append-only between 'begin init' and 'start
// dispatch'; no mutation afterward").
type TaskTable struct {
	mu       sync.Mutex
	specs    []*TaskSpec
	ids      map[string]bool
	maxTasks int
	started  bool
}

// NewTaskTable creates an empty table with the given static capacity. A
// non-positive maxTasks falls back to DEFAULT_MAX_TASKS.
func NewTaskTable(maxTasks int) *TaskTable {
	if maxTasks <= 0 {
		maxTasks = DEFAULT_MAX_TASKS
	}
	return &TaskTable{
		specs:    make([]*TaskSpec, 0, maxTasks),
		ids:      make(map[string]bool, maxTasks),
		maxTasks: maxTasks,
	}
}

// Register adds a task with zero phase offset (disciplines C3/C5/C7).
func (t *TaskTable) Register(id string, fn TaskFunc, ctx any, periodMs, sliceMs uint32) (*TaskSpec, error) {
	return t.register(id, fn, ctx, periodMs, sliceMs, 0)
}

// RegisterWithPhase adds a task with an explicit phase offset (discipline
// C4).
func (t *TaskTable) RegisterWithPhase(id string, fn TaskFunc, ctx any, periodMs, sliceMs, phaseOffsetMs uint32) (*TaskSpec, error) {
	return t.register(id, fn, ctx, periodMs, sliceMs, phaseOffsetMs)
}

func (t *TaskTable) register(id string, fn TaskFunc, ctx any, periodMs, sliceMs, phaseOffsetMs uint32) (*TaskSpec, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.started {
		return nil, ErrTableStarted
	}
	if fn == nil || id == "" || periodMs == 0 || sliceMs > periodMs || t.ids[id] {
		return nil, ErrInvalidTask
	}
	if len(t.specs) >= t.maxTasks {
		return nil, ErrTaskTableFull
	}

	spec := &TaskSpec{
		ID:            id,
		Fn:            fn,
		Ctx:           ctx,
		PeriodMs:      periodMs,
		SliceMs:       sliceMs,
		PhaseOffsetMs: phaseOffsetMs,
	}
	t.specs = append(t.specs, spec)
	t.ids[id] = true
	return spec, nil
}

// Begin freezes the table: further registration attempts return
// ErrTableStarted. It is idempotent.
func (t *TaskTable) Begin() {
	t.mu.Lock()
	t.started = true
	t.mu.Unlock()
}

// Specs returns a snapshot of the registered task specs, in registration
// order. Safe to call before or after Begin.
func (t *TaskTable) Specs() []*TaskSpec {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]*TaskSpec, len(t.specs))
	copy(out, t.specs)
	return out
}

// Len reports the current number of registered tasks.
func (t *TaskTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.specs)
}
