package sim

import (
	"fmt"
	"math"
)

const (
	// MinutesPerCalendarDay is the wall-clock day used for waiting time, which
	// keeps accruing outside working hours.
	MinutesPerCalendarDay = 24 * 60

	DefaultWorkdayMinutes = 9 * 60
	DefaultOpeningHour    = 8
)

// Calendar maps simulation instants (working minutes since the opening of day 0)
// to day indices and clock times. The clock does not advance between closing
// on day N and opening on day N+1.
type Calendar struct {
	WorkdayMinutes float64
	OpeningHour    int
}

// NewCalendar returns a Calendar with the given working-day length and the
// default 08:00 opening hour.
func NewCalendar(workdayMinutes float64) Calendar {
	return Calendar{WorkdayMinutes: workdayMinutes, OpeningHour: DefaultOpeningHour}
}

// Day returns the zero-based day index containing instant.
func (c Calendar) Day(instant float64) int {
	return int(math.Floor(instant / c.WorkdayMinutes))
}

// TimeOfDay returns the minutes elapsed since opening on the day containing instant.
func (c Calendar) TimeOfDay(instant float64) float64 {
	return instant - float64(c.Day(instant))*c.WorkdayMinutes
}

// ToCalendar converts an absolute instant into its day index and "HH:MM" clock time.
func (c Calendar) ToCalendar(instant float64) (int, string) {
	day := c.Day(instant)
	return day, c.ClockTime(c.TimeOfDay(instant))
}

// ClockTime renders minutes since opening as a wall-clock time. Values past
// the end of the working day keep counting (e.g. 18:15 on a 9-hour day).
func (c Calendar) ClockTime(sinceOpening float64) string {
	hour := c.OpeningHour + int(sinceOpening/60)
	minute := int(math.Mod(sinceOpening, 60))
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

// ArrivalInstant builds an absolute instant from a day index and the minutes
// elapsed since opening on that day.
func (c Calendar) ArrivalInstant(day int, sinceOpening float64) float64 {
	return float64(day)*c.WorkdayMinutes + sinceOpening
}

// Absolute converts a within-day offset on the given day into an absolute instant.
func (c Calendar) Absolute(day int, withinDay float64) float64 {
	return float64(day)*c.WorkdayMinutes + withinDay
}

// TargetDay is the first day on which a request arriving at instant may be
// served: always the next working day, never the day of the call.
func (c Calendar) TargetDay(arrival float64) int {
	return c.Day(arrival) + 1
}

// WallClockMinutes re-expresses an absolute instant on the 1440-minute
// calendar-day basis, keeping its day index and time since opening.
func (c Calendar) WallClockMinutes(instant float64) float64 {
	return float64(c.Day(instant))*MinutesPerCalendarDay + c.TimeOfDay(instant)
}
