// Error kinds returned by task registration and schedule planning.

package cosched_internal

import "errors"

var (
	// Returned by Register/RegisterWithPhase: nil fn, empty or duplicate
	// id, zero period, or slice_ms > period_ms.
	ErrInvalidTask = errors.New("cosched: invalid task")

	// Returned by Register/RegisterWithPhase: the task table is full.
	ErrTaskTableFull = errors.New("cosched: task table full")

	// Returned by BuildSchedule: the LCM of all periods overflows the
	// representable tick range.
	ErrHyperperiodTooLarge = errors.New("cosched: hyperperiod too large")

	// Returned by BuildSchedule: the materialized slot count exceeds
	// MaxSlots.
	ErrSlotTableFull = errors.New("cosched: slot table full")

	// Returned by BuildSchedule: two slots in the sorted schedule overlap.
	ErrScheduleConflict = errors.New("cosched: schedule conflict")

	// Returned by TaskTable.Register* once dispatch has begun.
	ErrTableStarted = errors.New("cosched: task table already started")
)
