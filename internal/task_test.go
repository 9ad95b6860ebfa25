package cosched_internal

import (
	"errors"
	"testing"
)

func TestRegisterBasics(t *testing.T) {
	table := NewTaskTable(2)

	spec, err := table.Register("a", func(uint64, any) {}, nil, 10, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.ID != "a" || spec.PeriodMs != 10 || spec.SliceMs != 1 {
		t.Fatalf("unexpected spec: %+v", spec)
	}

	if _, err := table.Register("b", func(uint64, any) {}, nil, 20, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := table.Register("c", func(uint64, any) {}, nil, 30, 1); !errors.Is(err, ErrTaskTableFull) {
		t.Fatalf("expected ErrTaskTableFull, got %v", err)
	}
}

func TestRegisterInvalid(t *testing.T) {
	table := NewTaskTable(4)

	cases := []struct {
		name     string
		fn       TaskFunc
		periodMs uint32
		sliceMs  uint32
	}{
		{"", func(uint64, any) {}, 10, 1},
		{"nilfn", nil, 10, 1},
		{"zeroperiod", func(uint64, any) {}, 0, 0},
		{"sliceoverperiod", func(uint64, any) {}, 10, 11},
	}
	for _, c := range cases {
		if _, err := table.Register(c.name, c.fn, nil, c.periodMs, c.sliceMs); !errors.Is(err, ErrInvalidTask) {
			t.Errorf("case %+v: expected ErrInvalidTask, got %v", c, err)
		}
	}

	if _, err := table.Register("dup", func(uint64, any) {}, nil, 10, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := table.Register("dup", func(uint64, any) {}, nil, 10, 1); !errors.Is(err, ErrInvalidTask) {
		t.Fatalf("expected ErrInvalidTask for duplicate id, got %v", err)
	}
}

func TestBeginFreezesTable(t *testing.T) {
	table := NewTaskTable(4)
	if _, err := table.Register("a", func(uint64, any) {}, nil, 10, 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	table.Begin()
	table.Begin() // idempotent

	if _, err := table.Register("b", func(uint64, any) {}, nil, 20, 1); !errors.Is(err, ErrTableStarted) {
		t.Fatalf("expected ErrTableStarted, got %v", err)
	}

	if n := table.Len(); n != 1 {
		t.Fatalf("expected 1 registered task, got %d", n)
	}
}

func TestSpecsSnapshotOrder(t *testing.T) {
	table := NewTaskTable(4)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := table.Register(id, func(uint64, any) {}, nil, 10, 1); err != nil {
			t.Fatalf("register %s: %v", id, err)
		}
	}

	specs := table.Specs()
	for i, id := range []string{"a", "b", "c"} {
		if specs[i].ID != id {
			t.Fatalf("expected registration order, got %v", specs)
		}
	}

	// Mutating the snapshot slice must not affect the table.
	specs[0] = nil
	if table.Specs()[0].ID != "a" {
		t.Fatalf("Specs() leaked internal storage")
	}
}

func TestRegisterWithPhase(t *testing.T) {
	table := NewTaskTable(1)
	spec, err := table.RegisterWithPhase("p", func(uint64, any) {}, nil, 100, 5, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if spec.PhaseOffsetMs != 10 {
		t.Fatalf("expected phase offset 10, got %d", spec.PhaseOffsetMs)
	}
}
