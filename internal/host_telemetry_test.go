package cosched_internal

import "testing"

func TestGetOnlineCPUCountPositive(t *testing.T) {
	if n := GetOnlineCPUCount(); n < 1 {
		t.Fatalf("expected at least 1 online CPU, got %d", n)
	}
}

func TestTakeHostSnapshotNeverFails(t *testing.T) {
	// Host telemetry is diagnostic only: TakeHostSnapshot must never panic
	// or block regardless of which individual collectors fail on the host
	// it happens to run on.
	snap := TakeHostSnapshot()
	if snap == nil {
		t.Fatal("expected a non-nil snapshot")
	}
	if snap.OnlineCPUs < 1 {
		t.Fatalf("expected at least 1 online CPU in snapshot, got %d", snap.OnlineCPUs)
	}
}
