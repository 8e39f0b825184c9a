// Package sim provides the discrete-event engine for the MRI scan scheduling simulator.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - clock.go: conversion between simulation minutes and (day, clock time)
//   - machine.go: per-machine, per-day ledger of committed slots and true availability
//   - dispatch.go: dispatch policies and the Dispatcher that books slots
//   - event.go: the event heap and the lifecycle events of a patient process
//   - simulator.go: the event loop
//   - kpi.go: statistics over the outcome records of a run
//
// # Time
//
// Simulation time is measured in minutes since the opening of day 0. Only
// working time advances the clock: day d occupies [d*W, (d+1)*W) where W is the
// working-day length (540 minutes by default). Times stored on a Machine are
// minutes since the opening of that day and may exceed W when a day overruns.
//
// # Key Interfaces
//
//   - DispatchPolicy: select the machine that serves a request on its target day
//   - Event: a timed wake-up of a patient process
//
// Sub-packages:
//   - sim/workload/: ScanRecords CSV ingestion and outcome export
//   - sim/trace/: dispatch decision recording
//   - sim/metrics/: Prometheus export of a KPI report
package sim
