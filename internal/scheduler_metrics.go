// Prometheus-style metrics exposition for dispatcher statistics (A3),
// condensed from the teacher's scheduler_internal_metrics.go: two stats
// snapshots (current, previous) are diffed per task, per counter, and
// written out as delta metrics plus a derived average-latency gauge.

package cosched_internal

import (
	"bytes"
	"fmt"
	"strconv"
)

const (
	METRIC_TASK_RUN_COUNT_TOTAL        = "cosched_task_run_count_total"
	METRIC_TASK_OVERRUN_COUNT_TOTAL    = "cosched_task_overrun_count_total"
	METRIC_TASK_SATURATION_COUNT_TOTAL = "cosched_task_saturation_count_total"
	METRIC_TASK_MAX_PENDING            = "cosched_task_max_pending"
	METRIC_TASK_AVG_LATENCY_TICKS      = "cosched_task_avg_latency_ticks"

	metricAvgLatencyPrecision = 3
)

// deltaMetricNames maps a TASK_STATS_* index to the metric name emitted as
// its delta (current - previous). TASK_STATS_TOTAL_LATENCY_TICKS is
// handled separately since it's divided by run count rather than emitted
// raw, and TASK_STATS_MAX_PENDING is a gauge, not a counter, so it is
// taken from the current snapshot directly rather than diffed.
var deltaMetricNames = map[int]string{
	TASK_STATS_RUN_COUNT:        METRIC_TASK_RUN_COUNT_TOTAL,
	TASK_STATS_OVERRUN_COUNT:    METRIC_TASK_OVERRUN_COUNT_TOTAL,
	TASK_STATS_SATURATION_COUNT: METRIC_TASK_SATURATION_COUNT_TOTAL,
}

// SchedulerMetrics renders delta metrics between two SchedulerStats
// snapshots (curr taken now, prev taken at the previous exposition cycle)
// for the given instance/hostname label pair.
type SchedulerMetrics struct {
	instance string
	hostname string
}

// NewSchedulerMetrics returns a renderer labeling every metric with
// instance/hostname.
func NewSchedulerMetrics(instance, hostname string) *SchedulerMetrics {
	return &SchedulerMetrics{instance: instance, hostname: hostname}
}

// Generate writes Prometheus text-format metrics comparing curr against
// prev (prev may be nil for the first cycle, in which case deltas equal
// curr's raw counters) into buf, returning the number of metric lines
// written.
func (sm *SchedulerMetrics) Generate(buf *bytes.Buffer, curr, prev SchedulerStats) int {
	count := 0
	for taskID, currStats := range curr {
		var prevStats *TaskStats
		if prev != nil {
			prevStats = prev[taskID]
		}

		for index, name := range deltaMetricNames {
			val := currStats.Uint64Stats[index]
			if prevStats != nil {
				val -= prevStats.Uint64Stats[index]
			}
			sm.writeLine(buf, name, taskID, strconv.FormatUint(val, 10))
			count++
		}

		sm.writeLine(buf, METRIC_TASK_MAX_PENDING, taskID,
			strconv.FormatUint(currStats.Uint64Stats[TASK_STATS_MAX_PENDING], 10))
		count++

		runDelta := currStats.Uint64Stats[TASK_STATS_RUN_COUNT]
		latencyDelta := currStats.Uint64Stats[TASK_STATS_TOTAL_LATENCY_TICKS]
		if prevStats != nil {
			runDelta -= prevStats.Uint64Stats[TASK_STATS_RUN_COUNT]
			latencyDelta -= prevStats.Uint64Stats[TASK_STATS_TOTAL_LATENCY_TICKS]
		}
		if runDelta > 0 {
			avg := float64(latencyDelta) / float64(runDelta)
			sm.writeLine(buf, METRIC_TASK_AVG_LATENCY_TICKS, taskID,
				strconv.FormatFloat(avg, 'f', metricAvgLatencyPrecision, 64))
			count++
		}
	}
	return count
}

func (sm *SchedulerMetrics) writeLine(buf *bytes.Buffer, name, taskID, value string) {
	fmt.Fprintf(buf, "%s{instance=%q,hostname=%q,task_id=%q} %s\n",
		name, sm.instance, sm.hostname, taskID, value)
}
