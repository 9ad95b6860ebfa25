// Host telemetry (A4): informational context about the hosted environment
// the simulation runs on. Absent on the real microcontroller target, this
// exists purely for the demo harness and runner's startup log line and
// process-level CPU accounting, grounded on the teacher's
// os_boot_time_unix.go / clktck_unix.go / process_unix.go /
// available_cpus_linux.go.

//go:build unix

package cosched_internal

import (
	"fmt"
	"time"

	"github.com/mackerelio/go-osstat/uptime"
	"github.com/tklauser/go-sysconf"
	"github.com/tklauser/numcpus"
	"golang.org/x/sys/unix"
)

// HostSnapshot is a point-in-time read of host-level facts unrelated to
// the scheduler itself but useful for diagnosing how representative a
// hosted run is of the real 1 MHz/1 ms target.
type HostSnapshot struct {
	BootTime   time.Time
	ClkTck     int64
	OnlineCPUs int
	CPUTimeSec float64
}

// GetOsBootTime derives the host's boot time from its current uptime.
func GetOsBootTime() (time.Time, error) {
	up, err := uptime.Get()
	if err != nil {
		return time.Now(), fmt.Errorf("uptime.Get(): %v", err)
	}
	return time.Now().Add(-up), nil
}

// GetSysClktck returns the kernel's clock ticks-per-second constant.
func GetSysClktck() (int64, error) {
	return sysconf.Sysconf(sysconf.SC_CLK_TCK)
}

// GetOnlineCPUCount returns the number of CPUs currently online, falling
// back to the process's scheduling affinity mask if the sysfs read fails.
func GetOnlineCPUCount() int {
	if n, err := numcpus.GetOnline(); err == nil {
		return n
	}
	cpuSet := unix.CPUSet{}
	if err := unix.SchedGetaffinity(0, &cpuSet); err != nil {
		return 1
	}
	count := 0
	for _, mask := range cpuSet {
		for mask != 0 {
			count++
			mask &= mask - 1
		}
	}
	if count == 0 {
		count = 1
	}
	return count
}

// GetMyCpuTime returns this process's accumulated user+system CPU time, in
// seconds, via getrusage(RUSAGE_SELF).
func GetMyCpuTime() (float64, error) {
	rusage := &unix.Rusage{}
	if err := unix.Getrusage(unix.RUSAGE_SELF, rusage); err != nil {
		return 0, err
	}
	return float64(rusage.Utime.Sec+rusage.Stime.Sec) +
		float64(rusage.Utime.Usec+rusage.Stime.Usec)/1e6, nil
}

// TakeHostSnapshot assembles a HostSnapshot, logging (but not failing on)
// any individual collection error — host telemetry is diagnostic only and
// must never block scheduler startup.
func TakeHostSnapshot() *HostSnapshot {
	snap := &HostSnapshot{OnlineCPUs: GetOnlineCPUCount()}

	if bootTime, err := GetOsBootTime(); err == nil {
		snap.BootTime = bootTime
	} else {
		hostTelemetryLog.Warnf("GetOsBootTime: %v", err)
	}

	if clktck, err := GetSysClktck(); err == nil {
		snap.ClkTck = clktck
	} else {
		hostTelemetryLog.Warnf("GetSysClktck: %v", err)
	}

	if cpuTime, err := GetMyCpuTime(); err == nil {
		snap.CPUTimeSec = cpuTime
	} else {
		hostTelemetryLog.Warnf("GetMyCpuTime: %v", err)
	}

	return snap
}

var hostTelemetryLog = NewCompLogger("host_telemetry")
