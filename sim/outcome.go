package sim

import "fmt"

// Outcome is the immutable record of how one request was served. Scheduled
// times are the nominal slot boundaries, true times include any overrun from
// earlier scans. All four are minutes since the opening of Day.
type Outcome struct {
	PatientID       int
	Machine         string
	Class           PatientClass
	Day             int
	ArrivalTime     float64 // absolute simulation minutes
	ScheduledStart  float64
	ScheduledFinish float64
	TrueStart       float64
	TrueFinish      float64
}

// Delay is how late the scan started relative to its slot.
func (o Outcome) Delay() float64 {
	return max(0, o.TrueStart-o.ScheduledStart)
}

// ScheduledDuration is the nominal slot length.
func (o Outcome) ScheduledDuration() float64 {
	return o.ScheduledFinish - o.ScheduledStart
}

// WaitingMinutes is the wall-clock time between the call and the scheduled
// slot. Both ends are placed on the 1440-minute calendar-day basis so nights
// count towards the wait.
func (o Outcome) WaitingMinutes(cal Calendar) float64 {
	scheduled := float64(o.Day)*MinutesPerCalendarDay + o.ScheduledStart
	return scheduled - cal.WallClockMinutes(o.ArrivalTime)
}

func (o Outcome) String() string {
	return fmt.Sprintf("Outcome: (Patient: %d, Machine: %s, Day: %d, Scheduled: [%.2f, %.2f), True: [%.2f, %.2f))",
		o.PatientID, o.Machine, o.Day, o.ScheduledStart, o.ScheduledFinish, o.TrueStart, o.TrueFinish)
}
