// Computes the operational KPIs of a run from its outcome records and machine ledgers:
// waiting time, delay, and per-machine downtime, throughput and overtime.

package sim

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Stats describes a sample: population variance (divide by N), min and max.
type Stats struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	Variance float64 `json:"variance"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
}

// ComputeStats summarizes samples. An empty sample has no defined statistics
// and returns ErrNoData.
func ComputeStats(samples []float64) (Stats, error) {
	if len(samples) == 0 {
		return Stats{}, ErrNoData
	}
	mean, variance := stat.PopMeanVariance(samples, nil)
	return Stats{
		Count:    len(samples),
		Mean:     mean,
		Variance: variance,
		Min:      floats.Min(samples),
		Max:      floats.Max(samples),
	}, nil
}

// fractionAbove returns the share of samples strictly greater than threshold.
func fractionAbove(samples []float64, threshold float64) float64 {
	n := 0
	for _, v := range samples {
		if v > threshold {
			n++
		}
	}
	return float64(n) / float64(len(samples))
}

// WaitingKPI covers the time from call to scheduled slot, on the
// 1440-minute calendar-day basis.
type WaitingKPI struct {
	Stats             Stats                  `json:"stats"`
	ByClass           map[PatientClass]Stats `json:"by_class"`
	ThresholdMinutes  float64                `json:"threshold_minutes"`
	ExceedingFraction float64                `json:"exceeding_fraction"`
}

// DelayKPI covers how late scans start relative to their slot.
type DelayKPI struct {
	Stats             Stats   `json:"stats"`
	DelayedFraction   float64 `json:"delayed_fraction"`
	AmongDelayed      *Stats  `json:"among_delayed"` // nil when no scan was delayed
	ThresholdMinutes  float64 `json:"threshold_minutes"`
	ExceedingFraction float64 `json:"exceeding_fraction"`
}

// MachineKPI holds the per-day series of one machine and their statistics.
// Only days with at least one scan appear.
type MachineKPI struct {
	Name            string          `json:"name"`
	Days            []int           `json:"days"`
	DailyDowntime   map[int]float64 `json:"daily_downtime"`
	DailyThroughput map[int]int     `json:"daily_throughput"`
	DailyOvertime   map[int]float64 `json:"daily_overtime"`
	Downtime        Stats           `json:"downtime"`
	Throughput      Stats           `json:"throughput"`
	Overtime        Stats           `json:"overtime"`
	TotalOvertime   float64         `json:"total_overtime"`
	TotalPatients   int             `json:"total_patients"`
}

// KPIReport is the full set of KPIs for one run.
type KPIReport struct {
	Policy       string       `json:"policy"`
	Patients     int          `json:"patients"`
	Waiting      WaitingKPI   `json:"waiting"`
	Delay        DelayKPI     `json:"delay"`
	Machines     []MachineKPI `json:"machines"`
	IdleMachines []string     `json:"idle_machines"` // machines that served nobody
}

// GroupByMachineDay indexes outcomes by machine name and day.
func GroupByMachineDay(outcomes []Outcome) map[string]map[int][]Outcome {
	groups := make(map[string]map[int][]Outcome)
	for _, o := range outcomes {
		byDay, ok := groups[o.Machine]
		if !ok {
			byDay = make(map[int][]Outcome)
			groups[o.Machine] = byDay
		}
		byDay[o.Day] = append(byDay[o.Day], o)
	}
	return groups
}

// Downtime is the unscheduled part of the working day given that day's outcomes
// on one machine.
func Downtime(dayOutcomes []Outcome, workdayMinutes float64) float64 {
	scheduled := 0.0
	for _, o := range dayOutcomes {
		scheduled += o.ScheduledDuration()
	}
	return max(0, workdayMinutes-scheduled)
}

// Overtime is how far the last true finish of a day runs past closing.
func Overtime(worstFinish, workdayMinutes float64) float64 {
	return max(0, worstFinish-workdayMinutes)
}

// Summarize computes the KPI report of a run. A run without outcomes has no
// KPIs and returns ErrNoData.
func Summarize(res *Result) (*KPIReport, error) {
	if res == nil || len(res.Outcomes) == 0 {
		return nil, fmt.Errorf("summarizing run: %w", ErrNoData)
	}
	cfg := res.Config
	cal := cfg.Calendar()

	report := &KPIReport{
		Policy:   res.Policy,
		Patients: len(res.Outcomes),
	}

	waiting, err := summarizeWaiting(res.Outcomes, cal, cfg.WaitThresholdMinutes())
	if err != nil {
		return nil, fmt.Errorf("waiting time: %w", err)
	}
	report.Waiting = waiting

	delay, err := summarizeDelay(res.Outcomes, cfg.DelayThresholdMinutes)
	if err != nil {
		return nil, fmt.Errorf("delay: %w", err)
	}
	report.Delay = delay

	groups := GroupByMachineDay(res.Outcomes)
	for _, snap := range res.Machines {
		byDay, ok := groups[snap.Name]
		if !ok {
			report.IdleMachines = append(report.IdleMachines, snap.Name)
			continue
		}
		mk, err := summarizeMachine(snap, byDay, cfg.WorkdayMinutes)
		if err != nil {
			return nil, fmt.Errorf("machine %s: %w", snap.Name, err)
		}
		report.Machines = append(report.Machines, mk)
	}
	return report, nil
}

func summarizeWaiting(outcomes []Outcome, cal Calendar, threshold float64) (WaitingKPI, error) {
	all := make([]float64, len(outcomes))
	byClass := make(map[PatientClass][]float64)
	for i, o := range outcomes {
		w := o.WaitingMinutes(cal)
		all[i] = w
		byClass[o.Class] = append(byClass[o.Class], w)
	}
	st, err := ComputeStats(all)
	if err != nil {
		return WaitingKPI{}, err
	}
	kpi := WaitingKPI{
		Stats:             st,
		ByClass:           make(map[PatientClass]Stats, len(byClass)),
		ThresholdMinutes:  threshold,
		ExceedingFraction: fractionAbove(all, threshold),
	}
	for c, samples := range byClass {
		cs, err := ComputeStats(samples)
		if err != nil {
			return WaitingKPI{}, fmt.Errorf("%s: %w", c, err)
		}
		kpi.ByClass[c] = cs
	}
	return kpi, nil
}

func summarizeDelay(outcomes []Outcome, threshold float64) (DelayKPI, error) {
	all := make([]float64, len(outcomes))
	var delayed []float64
	for i, o := range outcomes {
		d := o.Delay()
		all[i] = d
		if d > 0 {
			delayed = append(delayed, d)
		}
	}
	st, err := ComputeStats(all)
	if err != nil {
		return DelayKPI{}, err
	}
	kpi := DelayKPI{
		Stats:             st,
		DelayedFraction:   float64(len(delayed)) / float64(len(all)),
		ThresholdMinutes:  threshold,
		ExceedingFraction: fractionAbove(all, threshold),
	}
	if len(delayed) > 0 {
		ds, err := ComputeStats(delayed)
		if err != nil {
			return DelayKPI{}, err
		}
		kpi.AmongDelayed = &ds
	}
	return kpi, nil
}

func summarizeMachine(snap MachineSnapshot, byDay map[int][]Outcome, workday float64) (MachineKPI, error) {
	days := make([]int, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	sort.Ints(days)

	mk := MachineKPI{
		Name:            snap.Name,
		Days:            days,
		DailyDowntime:   make(map[int]float64, len(days)),
		DailyThroughput: make(map[int]int, len(days)),
		DailyOvertime:   make(map[int]float64, len(days)),
	}
	downtime := make([]float64, 0, len(days))
	throughput := make([]float64, 0, len(days))
	overtime := make([]float64, 0, len(days))
	for _, d := range days {
		dt := Downtime(byDay[d], workday)
		tp := len(byDay[d])
		ot := Overtime(snap.WorstFinish[d], workday)

		mk.DailyDowntime[d] = dt
		mk.DailyThroughput[d] = tp
		mk.DailyOvertime[d] = ot
		mk.TotalOvertime += ot
		mk.TotalPatients += tp

		downtime = append(downtime, dt)
		throughput = append(throughput, float64(tp))
		overtime = append(overtime, ot)
	}

	var err error
	if mk.Downtime, err = ComputeStats(downtime); err != nil {
		return MachineKPI{}, fmt.Errorf("downtime: %w", err)
	}
	if mk.Throughput, err = ComputeStats(throughput); err != nil {
		return MachineKPI{}, fmt.Errorf("throughput: %w", err)
	}
	if mk.Overtime, err = ComputeStats(overtime); err != nil {
		return MachineKPI{}, fmt.Errorf("overtime: %w", err)
	}
	return mk, nil
}
