// Package cosched is the public face of a deterministic cooperative
// periodic task scheduler aimed at resource-constrained single-core
// targets. It re-exports the internal package's task table, the three
// dispatch disciplines (pending-counter, phase-offset, offline table),
// and the hosted runner, so callers never import the internal package
// directly.
package cosched

import (
	"github.com/sirupsen/logrus"

	cosched_internal "github.com/lautarovera/cosched/internal"
)

// Task registration.
type (
	TaskFunc  = cosched_internal.TaskFunc
	TaskSpec  = cosched_internal.TaskSpec
	TaskTable = cosched_internal.TaskTable
)

var NewTaskTable = cosched_internal.NewTaskTable

// Superloop / idle policy (C6) and tick source (C1).
type (
	Idle       = cosched_internal.Idle
	TickSource = cosched_internal.TickSource
	TickHandler = cosched_internal.TickHandler
)

var (
	NewIdle               = cosched_internal.NewIdle
	NewHardwareTickSource = cosched_internal.NewHardwareTickSource
)

// Slice self-check (C7).
var SliceExpired = cosched_internal.SliceExpired

// External collaborators (C8).
type (
	OutputSink = cosched_internal.OutputSink
	GPIO       = cosched_internal.GPIO
	StdoutSink = cosched_internal.StdoutSink
	SimGPIO    = cosched_internal.SimGPIO
)

var (
	NewStdoutSink = cosched_internal.NewStdoutSink
	NewSimGPIO    = cosched_internal.NewSimGPIO
)

// Dispatch disciplines (C3, C4, C5).
type (
	PendingCounterScheduler = cosched_internal.PendingCounterScheduler
	PhaseOffsetScheduler    = cosched_internal.PhaseOffsetScheduler
	TableScheduler          = cosched_internal.TableScheduler
	CatchUpPolicy           = cosched_internal.CatchUpPolicy
	Slot                    = cosched_internal.Slot
	Dispatcher              = cosched_internal.Dispatcher
)

const (
	CatchUpReplay = cosched_internal.CatchUpReplay
	CatchUpSkip   = cosched_internal.CatchUpSkip
)

var (
	NewPendingCounterScheduler = cosched_internal.NewPendingCounterScheduler
	NewPhaseOffsetScheduler    = cosched_internal.NewPhaseOffsetScheduler
	NewTableScheduler          = cosched_internal.NewTableScheduler
	BuildSchedule              = cosched_internal.BuildSchedule
)

// Stats and metrics exposition.
type (
	TaskStats        = cosched_internal.TaskStats
	SchedulerStats   = cosched_internal.SchedulerStats
	SchedulerMetrics = cosched_internal.SchedulerMetrics
)

var NewSchedulerMetrics = cosched_internal.NewSchedulerMetrics

// Configuration and logging.
type (
	Config       = cosched_internal.Config
	LoggerConfig = cosched_internal.LoggerConfig
	Discipline   = cosched_internal.Discipline
)

const (
	DisciplinePending = cosched_internal.DisciplinePending
	DisciplinePhase   = cosched_internal.DisciplinePhase
	DisciplineTable   = cosched_internal.DisciplineTable
)

var (
	DefaultConfig = cosched_internal.DefaultConfig
	LoadConfig    = cosched_internal.LoadConfig
)

// UpdateBuildInfo sets the version/git info reported by -version. Call
// before Run, typically from an init().
func UpdateBuildInfo(version, gitInfo string) {
	cosched_internal.Version = version
	cosched_internal.GitInfo = gitInfo
}

// GetInstance returns the current instance name, set from config or
// command line args.
func GetInstance() string { return cosched_internal.Instance }

// GetRootLogger exposes the root logger for test log capture (see
// testutils.TestLogCollect).
func GetRootLogger() any { return cosched_internal.GetRootLogger() }

// NewCompLogger returns a sub-logger tagging every record with comp=name.
func NewCompLogger(name string) *logrus.Entry { return cosched_internal.NewCompLogger(name) }

// Run loads configuration, builds the dispatcher buildDispatcher returns
// for the configured discipline, and blocks until a termination signal.
// It returns a process exit code.
func Run(table *TaskTable, buildDispatcher func(cfg *Config, table *TaskTable) (Dispatcher, error)) int {
	return cosched_internal.Run(table, buildDispatcher)
}
