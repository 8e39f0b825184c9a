package sim

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mri-sim/mri-sim/sim/trace"
)

func defaultSlotLengths() map[PatientClass]float64 {
	return DefaultRunConfig().SlotLengthMap()
}

func TestCanonicalPolicyName_Aliases(t *testing.T) {
	tests := map[string]string{
		"":                   PolicyDedicated,
		"dedicated":          PolicyDedicated,
		"old":                PolicyDedicated,
		"earliest-available": PolicyEarliestAvailable,
		"new":                PolicyEarliestAvailable,
	}
	for in, want := range tests {
		got, err := CanonicalPolicyName(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := CanonicalPolicyName("round-robin")
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
	assert.False(t, IsValidDispatchPolicy("round-robin"))
}

func TestDedicated_SelectsMachineByClass(t *testing.T) {
	policy, err := NewDispatchPolicy(PolicyDedicated, []string{"MRI_type1", "MRI_type2"})
	require.NoError(t, err)
	machines := []*Machine{NewMachine("MRI_type1"), NewMachine("MRI_type2")}

	d1, err := policy.Select(&Request{Class: ClassType1}, 1, machines)
	require.NoError(t, err)
	assert.Equal(t, "MRI_type1", d1.Machine.Name)
	assert.Nil(t, d1.Availability)

	// a busier machine does not change the dedicated choice
	machines[1].Execute(1, 500, 0)
	d2, err := policy.Select(&Request{Class: ClassType2}, 1, machines)
	require.NoError(t, err)
	assert.Equal(t, "MRI_type2", d2.Machine.Name)
}

func TestDedicated_MissingMachine_Errors(t *testing.T) {
	policy := &Dedicated{Assignments: map[PatientClass]string{ClassType1: "gone"}}
	_, err := policy.Select(&Request{Class: ClassType1}, 1, []*Machine{NewMachine("MRI_1")})
	assert.True(t, errors.Is(err, ErrNoMachines))

	_, err = policy.Select(&Request{Class: ClassType2}, 1, []*Machine{NewMachine("MRI_1")})
	assert.True(t, errors.Is(err, ErrNoMachines))
}

func TestNewDispatchPolicy_DedicatedNeedsOneMachinePerClass(t *testing.T) {
	_, err := NewDispatchPolicy(PolicyDedicated, []string{"only"})
	assert.True(t, errors.Is(err, ErrNoMachines))

	_, err = NewDispatchPolicy("fastest", nil)
	assert.True(t, errors.Is(err, ErrUnknownPolicy))
}

func TestEarliestAvailable_PicksStrictlyEarliest(t *testing.T) {
	// GIVEN three machines where the last one is strictly earliest on day 1
	a, b, c := NewMachine("A"), NewMachine("B"), NewMachine("C")
	a.Execute(1, 90, 0)
	b.Execute(1, 60, 0)
	c.Execute(1, 30, 0)

	// WHEN the greedy policy selects
	d, err := (&EarliestAvailable{}).Select(&Request{Class: ClassType1}, 1, []*Machine{a, b, c})
	require.NoError(t, err)

	// THEN the running minimum is tracked across all machines
	assert.Equal(t, "C", d.Machine.Name)
	assert.Equal(t, map[string]float64{"A": 90, "B": 60, "C": 30}, d.Availability)
}

func TestEarliestAvailable_RunningMinimumNotFirstElement(t *testing.T) {
	// GIVEN B improves on A and C improves on B but not on A's default
	a, b, c := NewMachine("A"), NewMachine("B"), NewMachine("C")
	a.Execute(2, 100, 0)
	b.Execute(2, 40, 0)
	c.Execute(2, 70, 0)

	d, err := (&EarliestAvailable{}).Select(&Request{}, 2, []*Machine{a, b, c})
	require.NoError(t, err)

	// THEN C (70) must not replace B (40) just because it beats A (100)
	assert.Equal(t, "B", d.Machine.Name)
}

func TestEarliestAvailable_TieKeepsFirst(t *testing.T) {
	a, b := NewMachine("A"), NewMachine("B")
	d, err := (&EarliestAvailable{}).Select(&Request{}, 1, []*Machine{a, b})
	require.NoError(t, err)
	assert.Equal(t, "A", d.Machine.Name)

	a.Execute(1, 30, 0)
	b.Execute(1, 30, 0)
	d, err = (&EarliestAvailable{}).Select(&Request{}, 1, []*Machine{a, b})
	require.NoError(t, err)
	assert.Equal(t, "A", d.Machine.Name)
}

func TestEarliestAvailable_UsesTargetDayOnly(t *testing.T) {
	a, b := NewMachine("A"), NewMachine("B")
	a.Execute(1, 300, 0) // busy on day 1 only
	d, err := (&EarliestAvailable{}).Select(&Request{}, 2, []*Machine{a, b})
	require.NoError(t, err)
	assert.Equal(t, "A", d.Machine.Name)
}

func TestPolicies_EmptyMachineSet_Errors(t *testing.T) {
	for _, p := range []DispatchPolicy{&EarliestAvailable{}, &Dedicated{}} {
		_, err := p.Select(&Request{Class: ClassType1}, 1, nil)
		assert.True(t, errors.Is(err, ErrNoMachines), "%T", p)
	}
	_, err := NewDispatcher(&EarliestAvailable{}, nil, testCalendar, defaultSlotLengths())
	assert.True(t, errors.Is(err, ErrNoMachines))
}

func TestNewDispatcher_RejectsNonPositiveSlotLength(t *testing.T) {
	_, err := NewDispatcher(&EarliestAvailable{}, []*Machine{NewMachine("A")}, testCalendar,
		map[PatientClass]float64{ClassType1: 30, ClassType2: 0})
	var cfgErr *ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}

func TestDispatcher_Assign_CascadingDelay(t *testing.T) {
	// GIVEN two Type 1 patients calling on day 0, each scan taking 45 minutes
	machines := []*Machine{NewMachine("MRI_type1"), NewMachine("MRI_type2")}
	policy, err := NewDispatchPolicy(PolicyDedicated, []string{"MRI_type1", "MRI_type2"})
	require.NoError(t, err)
	d, err := NewDispatcher(policy, machines, testCalendar, defaultSlotLengths())
	require.NoError(t, err)

	// WHEN both are assigned
	o1, err := d.Assign(newTestRequest(0, ClassType1, 0, 10, 45))
	require.NoError(t, err)
	o2, err := d.Assign(newTestRequest(1, ClassType1, 0, 20, 45))
	require.NoError(t, err)

	// THEN the first overrun delays the second by 15 minutes
	assert.Equal(t, Outcome{PatientID: 0, Machine: "MRI_type1", Class: ClassType1, Day: 1, ArrivalTime: 10,
		ScheduledStart: 0, ScheduledFinish: 30, TrueStart: 0, TrueFinish: 45}, o1)
	assert.Equal(t, Outcome{PatientID: 1, Machine: "MRI_type1", Class: ClassType1, Day: 1, ArrivalTime: 20,
		ScheduledStart: 30, ScheduledFinish: 60, TrueStart: 45, TrueFinish: 90}, o2)
	assert.Equal(t, 15.0, o2.Delay())
}

func TestDispatcher_Assign_RecordsTrace(t *testing.T) {
	machines := []*Machine{NewMachine("MRI_1"), NewMachine("MRI_2")}
	d, err := NewDispatcher(&EarliestAvailable{}, machines, testCalendar, defaultSlotLengths())
	require.NoError(t, err)
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: trace.TraceLevelDecisions})
	d.SetTrace(st)

	_, err = d.Assign(newTestRequest(0, ClassType2, 0, 0, 60))
	require.NoError(t, err)
	_, err = d.Assign(newTestRequest(1, ClassType1, 0, 5, 30))
	require.NoError(t, err)

	require.Len(t, st.Dispatches, 2)
	assert.Equal(t, "MRI_1", st.Dispatches[0].ChosenMachine)
	assert.True(t, st.Dispatches[0].Tied())
	assert.Equal(t, "MRI_2", st.Dispatches[1].ChosenMachine)
	assert.Equal(t, 1, st.Dispatches[1].TargetDay)
}
