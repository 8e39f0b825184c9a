package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mri-sim/mri-sim/sim/trace"
)

const (
	PolicyDedicated         = "dedicated"
	PolicyEarliestAvailable = "earliest-available"
)

// policyAliases maps accepted policy names to their canonical form. "old" and
// "new" name the current and proposed hospital systems.
var policyAliases = map[string]string{
	"":                      PolicyDedicated,
	PolicyDedicated:         PolicyDedicated,
	"old":                   PolicyDedicated,
	PolicyEarliestAvailable: PolicyEarliestAvailable,
	"new":                   PolicyEarliestAvailable,
}

// CanonicalPolicyName resolves aliases. Unrecognized names return ErrUnknownPolicy.
func CanonicalPolicyName(name string) (string, error) {
	canonical, ok := policyAliases[name]
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
	return canonical, nil
}

// IsValidDispatchPolicy returns true if name is a recognized policy or alias.
func IsValidDispatchPolicy(name string) bool {
	_, ok := policyAliases[name]
	return ok
}

// DefaultMachineNames returns the machine names used for a policy when the
// configuration does not name them.
func DefaultMachineNames(policy string) []string {
	if policy == PolicyEarliestAvailable {
		return []string{"MRI_1", "MRI_2"}
	}
	return []string{"MRI_type1", "MRI_type2"}
}

// DispatchDecision is the machine chosen for a request.
type DispatchDecision struct {
	Machine      *Machine
	Reason       string
	Availability map[string]float64 // machine name -> next free on target day; nil when no search ran
}

// DispatchPolicy selects the machine that serves a request on its target day.
// Implementations must not mutate machine state.
type DispatchPolicy interface {
	Select(req *Request, targetDay int, machines []*Machine) (DispatchDecision, error)
}

// Dedicated sends every class to its own machine.
type Dedicated struct {
	Assignments map[PatientClass]string // class -> machine name
}

// Select implements DispatchPolicy for Dedicated.
func (d *Dedicated) Select(req *Request, _ int, machines []*Machine) (DispatchDecision, error) {
	if len(machines) == 0 {
		return DispatchDecision{}, ErrNoMachines
	}
	name, ok := d.Assignments[req.Class]
	if !ok {
		return DispatchDecision{}, fmt.Errorf("dedicated: %w: no machine for %s", ErrNoMachines, req.Class)
	}
	for _, m := range machines {
		if m.Name == name {
			return DispatchDecision{Machine: m, Reason: fmt.Sprintf("dedicated (%s)", req.Class)}, nil
		}
	}
	return DispatchDecision{}, fmt.Errorf("dedicated: %w: machine %q not found", ErrNoMachines, name)
}

// EarliestAvailable picks the machine that is free first on the target day.
// Ties are broken by first occurrence in machine order.
type EarliestAvailable struct{}

// Select implements DispatchPolicy for EarliestAvailable.
func (ea *EarliestAvailable) Select(_ *Request, targetDay int, machines []*Machine) (DispatchDecision, error) {
	if len(machines) == 0 {
		return DispatchDecision{}, ErrNoMachines
	}

	availability := make(map[string]float64, len(machines))
	best := machines[0]
	bestFree := best.Availability(targetDay)
	availability[best.Name] = bestFree

	for _, m := range machines[1:] {
		free := m.Availability(targetDay)
		availability[m.Name] = free
		if free < bestFree {
			bestFree = free
			best = m
		}
	}

	return DispatchDecision{
		Machine:      best,
		Reason:       fmt.Sprintf("earliest-available (free=%.2f)", bestFree),
		Availability: availability,
	}, nil
}

// NewDispatchPolicy creates a dispatch policy by name. For the dedicated
// policy, machine i serves AllClasses[i]; machineNames must cover every class.
func NewDispatchPolicy(name string, machineNames []string) (DispatchPolicy, error) {
	canonical, err := CanonicalPolicyName(name)
	if err != nil {
		return nil, err
	}
	switch canonical {
	case PolicyDedicated:
		if len(machineNames) < len(AllClasses) {
			return nil, fmt.Errorf("dedicated policy needs %d machines, got %d: %w", len(AllClasses), len(machineNames), ErrNoMachines)
		}
		assignments := make(map[PatientClass]string, len(AllClasses))
		for i, c := range AllClasses {
			assignments[c] = machineNames[i]
		}
		return &Dedicated{Assignments: assignments}, nil
	case PolicyEarliestAvailable:
		return &EarliestAvailable{}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownPolicy, name)
	}
}

// Dispatcher books requests onto machines under a policy. Assign reads and
// updates machine state in one step, so two assignments never interleave.
type Dispatcher struct {
	Policy      DispatchPolicy
	Machines    []*Machine
	Calendar    Calendar
	SlotLengths map[PatientClass]float64

	trace *trace.SimulationTrace
}

// NewDispatcher validates the machine set and slot lengths.
func NewDispatcher(policy DispatchPolicy, machines []*Machine, cal Calendar, slotLengths map[PatientClass]float64) (*Dispatcher, error) {
	if len(machines) == 0 {
		return nil, ErrNoMachines
	}
	for _, c := range AllClasses {
		if slotLengths[c] <= 0 {
			return nil, &ConfigError{Option: "slot_lengths", Err: fmt.Errorf("%w: %s slot length %v", ErrInvalidDuration, c, slotLengths[c])}
		}
	}
	return &Dispatcher{
		Policy:      policy,
		Machines:    machines,
		Calendar:    cal,
		SlotLengths: slotLengths,
	}, nil
}

// SetTrace enables decision recording. A nil trace disables it.
func (d *Dispatcher) SetTrace(st *trace.SimulationTrace) {
	d.trace = st
}

// Assign schedules req on its target day: pick a machine, book the next
// nominal slot for the class, then run the scan to get its true interval.
func (d *Dispatcher) Assign(req *Request) (Outcome, error) {
	slotLength, ok := d.SlotLengths[req.Class]
	if !ok {
		return Outcome{}, &InputError{Index: req.ID, Field: "PatientType", Err: ErrUnknownClass}
	}

	day := d.Calendar.TargetDay(req.ArrivalTime)
	decision, err := d.Policy.Select(req, day, d.Machines)
	if err != nil {
		return Outcome{}, fmt.Errorf("dispatching patient %d: %w", req.ID, err)
	}
	m := decision.Machine
	logrus.Debugf("dispatch: patient %d -> %s on day %d: %s", req.ID, m.Name, day, decision.Reason)

	scheduledStart, scheduledFinish := m.NextNominalSlot(day, slotLength)
	trueStart, trueFinish := m.Execute(day, req.TrueDuration, scheduledStart)

	if d.trace != nil {
		d.trace.RecordDispatch(trace.DispatchRecord{
			PatientID:     req.ID,
			Clock:         req.ArrivalTime,
			TargetDay:     day,
			ChosenMachine: m.Name,
			Reason:        decision.Reason,
			Availability:  decision.Availability,
			Delay:         max(0, trueStart-scheduledStart),
		})
	}

	return Outcome{
		PatientID:       req.ID,
		Machine:         m.Name,
		Class:           req.Class,
		Day:             day,
		ArrivalTime:     req.ArrivalTime,
		ScheduledStart:  scheduledStart,
		ScheduledFinish: scheduledFinish,
		TrueStart:       trueStart,
		TrueFinish:      trueFinish,
	}, nil
}
