package cosched_internal

import "testing"

func TestCloneSchedulerStatsIsDeep(t *testing.T) {
	orig := SchedulerStats{"t": NewTaskStats()}
	orig["t"].Uint64Stats[TASK_STATS_RUN_COUNT] = 7

	clone := CloneSchedulerStats(orig)
	clone["t"].Uint64Stats[TASK_STATS_RUN_COUNT] = 99

	if orig["t"].Uint64Stats[TASK_STATS_RUN_COUNT] != 7 {
		t.Fatalf("mutating the clone affected the original: %d", orig["t"].Uint64Stats[TASK_STATS_RUN_COUNT])
	}
}

func TestDispatcherStateString(t *testing.T) {
	cases := map[DispatcherState]string{
		DispatcherStateCreated: "Created",
		DispatcherStateRunning: "Running",
		DispatcherStateStopped: "Stopped",
	}
	for state, want := range cases {
		if got := state.String(); got != want {
			t.Errorf("state %d: got %q, want %q", state, got, want)
		}
	}
}
