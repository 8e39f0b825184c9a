package sim

import (
	"github.com/sirupsen/logrus"
)

// Event defines the interface for all simulation events.
// Each event has a Timestamp (in simulation minutes) and an Execute method
// that advances the owning patient process when invoked.
type Event interface {
	Timestamp() float64
	Execute(*Simulator) error
}

// eventEntry wraps an Event with a sequence ID for deterministic FIFO
// tie-breaking when timestamps are equal.
type eventEntry struct {
	event Event
	seqID int64
}

// EventQueue is a min-heap ordered by (Timestamp, seqID).
// Implements heap.Interface.
type EventQueue []eventEntry

func (q EventQueue) Len() int { return len(q) }

func (q EventQueue) Less(i, j int) bool {
	if q[i].event.Timestamp() != q[j].event.Timestamp() {
		return q[i].event.Timestamp() < q[j].event.Timestamp()
	}
	return q[i].seqID < q[j].seqID
}

func (q EventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *EventQueue) Push(x any) {
	*q = append(*q, x.(eventEntry))
}

func (q *EventQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ArrivalEvent fires when a patient calls. The patient is dispatched
// synchronously and the scan start is scheduled.
type ArrivalEvent struct {
	time    float64
	process *PatientProcess
}

func (e *ArrivalEvent) Timestamp() float64 { return e.time }

// Execute assigns the patient and schedules the ScanStartEvent.
func (e *ArrivalEvent) Execute(sim *Simulator) error {
	p := e.process
	p.State = StateArrived
	_, callTime := sim.Calendar.ToCalendar(e.time)
	logrus.Infof("Day %d: Patient %d calls at %s", sim.Calendar.Day(e.time), p.Request.ID, callTime)

	outcome, err := sim.Dispatcher.Assign(p.Request)
	if err != nil {
		return err
	}
	p.Outcome = outcome
	p.State = StateAssigned
	sim.Outcomes = append(sim.Outcomes, outcome)
	logrus.Infof("Day %d: patient %d scheduled on %s in slot: %s to %s", outcome.Day, p.Request.ID, outcome.Machine,
		sim.Calendar.ClockTime(outcome.ScheduledStart), sim.Calendar.ClockTime(outcome.ScheduledFinish))

	sim.Schedule(&ScanStartEvent{
		time:    sim.Calendar.Absolute(outcome.Day, outcome.TrueStart),
		process: p,
	})
	return nil
}

// ScanStartEvent fires when the scan actually begins.
type ScanStartEvent struct {
	time    float64
	process *PatientProcess
}

func (e *ScanStartEvent) Timestamp() float64 { return e.time }

// Execute marks the patient started and schedules the ScanFinishEvent.
func (e *ScanStartEvent) Execute(sim *Simulator) error {
	p := e.process
	p.State = StateStarted
	logrus.Infof("Day %d: patient %d starts scan at %s on %s", p.Outcome.Day, p.Request.ID,
		sim.Calendar.ClockTime(p.Outcome.TrueStart), p.Outcome.Machine)

	sim.Schedule(&ScanFinishEvent{
		time:    sim.Calendar.Absolute(p.Outcome.Day, p.Outcome.TrueFinish),
		process: p,
	})
	return nil
}

// ScanFinishEvent fires when the scan completes. Terminal for the process.
type ScanFinishEvent struct {
	time    float64
	process *PatientProcess
}

func (e *ScanFinishEvent) Timestamp() float64 { return e.time }

// Execute marks the patient finished.
func (e *ScanFinishEvent) Execute(sim *Simulator) error {
	p := e.process
	p.State = StateFinished
	sim.finished++
	logrus.Infof("Day %d: patient %d finishes scan at %s on %s", p.Outcome.Day, p.Request.ID,
		sim.Calendar.ClockTime(p.Outcome.TrueFinish), p.Outcome.Machine)
	return nil
}
