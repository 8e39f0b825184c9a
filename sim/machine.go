package sim

import "sort"

// Machine is a single-capacity scanner. All bookkeeping is per day and every
// time value is minutes since that day's opening. Days are independent: a day
// that overruns does not push work into the next one.
type Machine struct {
	Name string

	// nextFree is when the machine can start its next scan. Only moves forward.
	nextFree map[int]float64
	// worstFinish is the latest true finish seen on the day (used for overtime).
	worstFinish map[int]float64
	// slotsCommitted counts nominal slots handed out on the day.
	slotsCommitted map[int]int
}

// NewMachine creates a machine with an empty ledger.
func NewMachine(name string) *Machine {
	return &Machine{
		Name:           name,
		nextFree:       make(map[int]float64),
		worstFinish:    make(map[int]float64),
		slotsCommitted: make(map[int]int),
	}
}

// NextNominalSlot books the next back-to-back slot of slotLength minutes on day
// and returns its scheduled [start, finish). Days may be over-booked; the
// resulting overrun shows up in Execute, not here.
func (m *Machine) NextNominalSlot(day int, slotLength float64) (float64, float64) {
	k := m.slotsCommitted[day]
	start := float64(k) * slotLength
	finish := start + slotLength
	m.slotsCommitted[day] = k + 1
	return start, finish
}

// Execute runs a scan of trueDuration minutes that was scheduled to start at
// scheduledStart on day. The scan starts no earlier than its slot and no
// earlier than the end of the previous scan on this machine that day.
func (m *Machine) Execute(day int, trueDuration, scheduledStart float64) (float64, float64) {
	if _, ok := m.nextFree[day]; !ok {
		m.nextFree[day] = 0
		m.worstFinish[day] = 0
	}

	trueStart := max(scheduledStart, m.nextFree[day])
	trueFinish := trueStart + trueDuration

	m.nextFree[day] = trueFinish
	m.worstFinish[day] = max(m.worstFinish[day], trueFinish)
	return trueStart, trueFinish
}

// Availability returns when the machine is next free on day, 0 if nothing has
// run on that day yet.
func (m *Machine) Availability(day int) float64 {
	return m.nextFree[day]
}

// SlotsCommitted returns the number of nominal slots booked on day.
func (m *Machine) SlotsCommitted(day int) int {
	return m.slotsCommitted[day]
}

// WorstFinish returns the latest true finish on day and whether the machine
// executed anything that day.
func (m *Machine) WorstFinish(day int) (float64, bool) {
	f, ok := m.worstFinish[day]
	return f, ok
}

// Days returns the days on which the machine executed at least one scan, ascending.
func (m *Machine) Days() []int {
	days := make([]int, 0, len(m.worstFinish))
	for d := range m.worstFinish {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}

// MachineSnapshot is an immutable copy of a machine's ledger handed to reporting.
type MachineSnapshot struct {
	Name           string
	NextFree       map[int]float64
	WorstFinish    map[int]float64
	SlotsCommitted map[int]int
}

// Snapshot copies the machine's ledger.
func (m *Machine) Snapshot() MachineSnapshot {
	s := MachineSnapshot{
		Name:           m.Name,
		NextFree:       make(map[int]float64, len(m.nextFree)),
		WorstFinish:    make(map[int]float64, len(m.worstFinish)),
		SlotsCommitted: make(map[int]int, len(m.slotsCommitted)),
	}
	for d, v := range m.nextFree {
		s.NextFree[d] = v
	}
	for d, v := range m.worstFinish {
		s.WorstFinish[d] = v
	}
	for d, v := range m.slotsCommitted {
		s.SlotsCommitted[d] = v
	}
	return s
}

// Days returns the snapshot's executed days, ascending.
func (s MachineSnapshot) Days() []int {
	days := make([]int, 0, len(s.WorstFinish))
	for d := range s.WorstFinish {
		days = append(days, d)
	}
	sort.Ints(days)
	return days
}
