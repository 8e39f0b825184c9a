package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMachine_NextNominalSlot_BackToBackFixedLength(t *testing.T) {
	// GIVEN a fresh machine
	m := NewMachine("MRI_1")

	// WHEN slots of 30 minutes are booked repeatedly on one day
	prevFinish := 0.0
	for k := 0; k < 25; k++ {
		start, finish := m.NextNominalSlot(1, 30)

		// THEN each slot starts where the previous ended and lasts exactly 30 minutes,
		// even past the end of the working day
		assert.Equal(t, prevFinish, start, "slot %d start", k)
		assert.Equal(t, 30.0, finish-start, "slot %d length", k)
		prevFinish = finish
	}
	assert.Equal(t, 25, m.SlotsCommitted(1))
}

func TestMachine_NextNominalSlot_DaysAreIndependent(t *testing.T) {
	m := NewMachine("MRI_1")
	m.NextNominalSlot(1, 54)
	m.NextNominalSlot(1, 54)

	start, finish := m.NextNominalSlot(2, 54)
	assert.Equal(t, 0.0, start)
	assert.Equal(t, 54.0, finish)
	assert.Equal(t, 2, m.SlotsCommitted(1))
	assert.Equal(t, 1, m.SlotsCommitted(2))
}

func TestMachine_Execute_CausalityAndNoOverlap(t *testing.T) {
	// GIVEN a day with a mix of short and long scans in 30-minute slots
	m := NewMachine("MRI_1")
	durations := []float64{20, 50, 10, 35, 31, 5, 90, 25}

	prevFinish := 0.0
	for i, d := range durations {
		scheduledStart, _ := m.NextNominalSlot(1, 30)
		trueStart, trueFinish := m.Execute(1, d, scheduledStart)

		// THEN a scan never starts before its slot nor before the previous scan ends
		assert.GreaterOrEqual(t, trueStart, scheduledStart, "scan %d", i)
		assert.GreaterOrEqual(t, trueStart, prevFinish, "scan %d", i)
		assert.Equal(t, d, trueFinish-trueStart, "scan %d", i)
		prevFinish = trueFinish
	}
	assert.Equal(t, prevFinish, m.Availability(1))
}

func TestMachine_Execute_OverrunPropagates(t *testing.T) {
	// GIVEN the first scan of the day overruns a 30-minute slot by 20 minutes
	m := NewMachine("MRI_1")
	s0, _ := m.NextNominalSlot(1, 30)
	_, f0 := m.Execute(1, 50, s0)
	require.Equal(t, 50.0, f0)

	// WHEN the next two scans take exactly their nominal length
	s1, _ := m.NextNominalSlot(1, 30)
	t1, f1 := m.Execute(1, 30, s1)
	s2, _ := m.NextNominalSlot(1, 30)
	t2, _ := m.Execute(1, 30, s2)

	// THEN both start at least 20 minutes late
	assert.Equal(t, 20.0, t1-s1)
	assert.Equal(t, 20.0, t2-s2)
	assert.Equal(t, f1, t2)
}

func TestMachine_Execute_DelayAbsorbedByLaterSlot(t *testing.T) {
	// GIVEN an overrun followed by short scans
	m := NewMachine("MRI_1")
	s0, _ := m.NextNominalSlot(1, 30)
	m.Execute(1, 40, s0) // finishes at 40
	s1, _ := m.NextNominalSlot(1, 30)
	t1, f1 := m.Execute(1, 10, s1) // starts 40, finishes 50
	s2, _ := m.NextNominalSlot(1, 30)
	t2, _ := m.Execute(1, 10, s2) // slot at 60 is after 50

	assert.Equal(t, 40.0, t1)
	assert.Equal(t, 50.0, f1)
	// THEN once the schedule catches up the scan starts on time
	assert.Equal(t, s2, t2)
}

func TestMachine_Execute_NoCarryOverBetweenDays(t *testing.T) {
	m := NewMachine("MRI_1")
	s, _ := m.NextNominalSlot(1, 30)
	m.Execute(1, 700, s) // runs far past closing on day 1

	s2, _ := m.NextNominalSlot(2, 30)
	t2, _ := m.Execute(2, 30, s2)
	assert.Equal(t, 0.0, t2)
}

func TestMachine_WorstFinishAndDays(t *testing.T) {
	m := NewMachine("MRI_1")
	_, ok := m.WorstFinish(3)
	assert.False(t, ok, "no execution yet")

	m.Execute(3, 600, 0)
	m.Execute(1, 20, 0)
	f, ok := m.WorstFinish(3)
	require.True(t, ok)
	assert.Equal(t, 600.0, f)
	assert.Equal(t, []int{1, 3}, m.Days())
	assert.Equal(t, 0.0, m.Availability(2), "untouched day defaults to 0")
}

func TestMachine_Snapshot_IsACopy(t *testing.T) {
	m := NewMachine("MRI_1")
	s, _ := m.NextNominalSlot(1, 30)
	m.Execute(1, 30, s)

	snap := m.Snapshot()
	m.Execute(1, 30, 30)

	assert.Equal(t, "MRI_1", snap.Name)
	assert.Equal(t, 30.0, snap.NextFree[1])
	assert.Equal(t, 30.0, snap.WorstFinish[1])
	assert.Equal(t, 1, snap.SlotsCommitted[1])
	assert.Equal(t, []int{1}, snap.Days())
}
