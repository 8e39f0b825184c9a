// sim/simulator.go
package sim

import (
	"container/heap"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mri-sim/mri-sim/sim/trace"
)

// PatientProcess is the lifecycle of one request:
// pending -> arrived -> assigned -> started -> finished.
type PatientProcess struct {
	Request *Request
	State   RequestState
	Outcome Outcome // valid once State reaches StateAssigned
}

// Result is what a run hands to reporting: outcomes in assignment order and
// the final machine ledgers.
type Result struct {
	Policy   string
	Config   RunConfig
	Outcomes []Outcome
	Machines []MachineSnapshot
	Trace    *trace.SimulationTrace
}

// Simulator is the core object that holds simulation time, shared machine
// state, and the event loop. Execution is single-threaded; every state change
// happens inside one Execute call.
type Simulator struct {
	Clock      float64
	Config     RunConfig
	Calendar   Calendar
	EventQueue EventQueue
	Dispatcher *Dispatcher
	Machines   []*Machine
	Outcomes   []Outcome
	Processes  []*PatientProcess
	Trace      *trace.SimulationTrace

	policy   string
	nextSeq  int64
	finished int
}

// NewSimulator validates the configuration and every request before any event
// runs. A malformed request aborts construction with an *InputError.
func NewSimulator(cfg RunConfig, requests []*Request) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policyName, err := CanonicalPolicyName(cfg.Policy)
	if err != nil {
		return nil, err
	}
	for i, r := range requests {
		if r == nil {
			return nil, &InputError{Index: i, Field: "record", Err: ErrInvalidArrival}
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
	}

	names := cfg.MachineNames()
	machines := make([]*Machine, len(names))
	for i, name := range names {
		machines[i] = NewMachine(name)
	}
	policy, err := NewDispatchPolicy(policyName, names)
	if err != nil {
		return nil, err
	}
	cal := cfg.Calendar()
	dispatcher, err := NewDispatcher(policy, machines, cal, cfg.SlotLengthMap())
	if err != nil {
		return nil, err
	}

	s := &Simulator{
		Config:     cfg,
		Calendar:   cal,
		EventQueue: make(EventQueue, 0, len(requests)),
		Dispatcher: dispatcher,
		Machines:   machines,
		Outcomes:   make([]Outcome, 0, len(requests)),
		Processes:  make([]*PatientProcess, 0, len(requests)),
		policy:     policyName,
	}
	if trace.TraceLevel(cfg.TraceLevel) == trace.TraceLevelDecisions {
		s.Trace = trace.NewSimulationTrace(trace.TraceConfig{
			Level:    trace.TraceLevelDecisions,
			Policy:   policyName,
			Machines: names,
		})
		dispatcher.SetTrace(s.Trace)
	}

	// Processes are created in input order, so same-instant arrivals are
	// dispatched in that order.
	for _, r := range requests {
		p := &PatientProcess{Request: r, State: StatePending}
		s.Processes = append(s.Processes, p)
		s.Schedule(&ArrivalEvent{time: r.ArrivalTime, process: p})
	}
	return s, nil
}

// Schedule pushes an event into the EventQueue with the next sequence ID.
func (sim *Simulator) Schedule(ev Event) {
	heap.Push(&sim.EventQueue, eventEntry{event: ev, seqID: sim.nextSeq})
	sim.nextSeq++
}

// Run processes events until none remain and returns the run's results.
func (sim *Simulator) Run() (*Result, error) {
	logrus.Infof("Starting %s simulation with %d patients on %d machines", sim.policy, len(sim.Processes), len(sim.Machines))
	for len(sim.EventQueue) > 0 {
		entry := heap.Pop(&sim.EventQueue).(eventEntry)
		ev := entry.event

		if ev.Timestamp() < sim.Clock {
			panic(fmt.Sprintf("clock went backwards: %.2f < %.2f", ev.Timestamp(), sim.Clock))
		}
		sim.Clock = ev.Timestamp()
		logrus.Debugf("[t %10.2f] Executing %T", sim.Clock, ev)

		if err := ev.Execute(sim); err != nil {
			return nil, fmt.Errorf("simulation aborted at t=%.2f: %w", sim.Clock, err)
		}
	}
	if sim.finished != len(sim.Processes) {
		panic(fmt.Sprintf("simulation drained with %d of %d patients finished", sim.finished, len(sim.Processes)))
	}
	logrus.Infof("[t %10.2f] Simulation ended", sim.Clock)
	return sim.Result(), nil
}

// Result snapshots the current outcomes and machine ledgers.
func (sim *Simulator) Result() *Result {
	snapshots := make([]MachineSnapshot, len(sim.Machines))
	for i, m := range sim.Machines {
		snapshots[i] = m.Snapshot()
	}
	return &Result{
		Policy:   sim.policy,
		Config:   sim.Config,
		Outcomes: append([]Outcome(nil), sim.Outcomes...),
		Machines: snapshots,
		Trace:    sim.Trace,
	}
}

// RunSimulation is a convenience wrapper that builds and runs a simulator.
func RunSimulation(cfg RunConfig, requests []*Request) (*Result, error) {
	s, err := NewSimulator(cfg, requests)
	if err != nil {
		return nil, err
	}
	return s.Run()
}
