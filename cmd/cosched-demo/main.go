// cosched-demo wires up illustrative periodic tasks — LED-toggle analogues
// driven through a simulated GPIO, and a UART-analogue driven through a
// stdout sink — under whichever dispatch discipline the config or
// -discipline flag selects. It mirrors the task sets in
// original_source/src/scheduler.c (task_10ms/100ms/500ms) and
// original_source/src/phase_offset.c (task_fast/medium/slow).
package main

import (
	"fmt"
	"os"

	"github.com/lautarovera/cosched"
)

type blinker struct {
	gpio *cosched.SimGPIO
	pin  int
}

func toggleTask(nowMs uint64, ctx any) {
	b := ctx.(*blinker)
	b.gpio.Toggle(b.pin)
}

type uartPing struct {
	sink *cosched.StdoutSink
	name string
}

func pingTask(nowMs uint64, ctx any) {
	p := ctx.(*uartPing)
	p.sink.WriteBytes([]byte(fmt.Sprintf("%s tick at %dms\n", p.name, nowMs)))
}

func buildTaskTable(maxTasks int) (*cosched.TaskTable, *cosched.SimGPIO, *cosched.StdoutSink) {
	gpio := cosched.NewSimGPIO()
	sink := cosched.NewStdoutSink(os.Stdout)
	table := cosched.NewTaskTable(maxTasks)

	mustRegister(table, "led1-fast", toggleTask, &blinker{gpio: gpio, pin: 0}, 10, 1)
	mustRegister(table, "led1-medium", toggleTask, &blinker{gpio: gpio, pin: 0}, 100, 5)
	mustRegister(table, "led2-slow", toggleTask, &blinker{gpio: gpio, pin: 1}, 500, 2)
	mustRegisterWithPhase(table, "uart-status", pingTask, &uartPing{sink: sink, name: "uart-status"}, 250, 2, 15)

	return table, gpio, sink
}

func mustRegister(table *cosched.TaskTable, id string, fn cosched.TaskFunc, ctx any, periodMs, sliceMs uint32) {
	if _, err := table.Register(id, fn, ctx, periodMs, sliceMs); err != nil {
		fmt.Fprintf(os.Stderr, "register %s: %v\n", id, err)
		os.Exit(1)
	}
}

func mustRegisterWithPhase(table *cosched.TaskTable, id string, fn cosched.TaskFunc, ctx any, periodMs, sliceMs, phaseMs uint32) {
	if _, err := table.RegisterWithPhase(id, fn, ctx, periodMs, sliceMs, phaseMs); err != nil {
		fmt.Fprintf(os.Stderr, "register %s: %v\n", id, err)
		os.Exit(1)
	}
}

func buildDispatcher(cfg *cosched.Config, table *cosched.TaskTable) (cosched.Dispatcher, error) {
	switch cfg.Discipline {
	case cosched.DisciplinePhase:
		return cosched.NewPhaseOffsetScheduler(table), nil
	case cosched.DisciplineTable:
		slots, hyperperiod, err := cosched.BuildSchedule(table.Specs(), cfg.MaxSlots)
		if err != nil {
			return nil, err
		}
		return cosched.NewTableScheduler(slots, hyperperiod), nil
	default:
		return cosched.NewPendingCounterScheduler(table), nil
	}
}

func main() {
	cosched.UpdateBuildInfo("0.1.0", "")
	table, _, _ := buildTaskTable(0)
	os.Exit(cosched.Run(table, buildDispatcher))
}
