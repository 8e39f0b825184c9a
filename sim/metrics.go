// Renders a KPIReport as the plain-text tables printed at the end of a run.

package sim

import (
	"fmt"
	"io"
)

func printStats(w io.Writer, label, unit string, s Stats) {
	fmt.Fprintf(w, "%-22s: mean %8.2f %s | var %10.2f | min %8.2f | max %8.2f (n=%d)\n",
		label, s.Mean, unit, s.Variance, s.Min, s.Max, s.Count)
}

// Print displays the KPI tables of a run. Daily overtime per machine is listed
// in full, followed by the machine's total.
func (r *KPIReport) Print(w io.Writer) {
	fmt.Fprintf(w, "=== KPI Report (%s) ===\n", r.Policy)
	fmt.Fprintf(w, "Patients              : %d\n", r.Patients)

	fmt.Fprintln(w, "\n--- Waiting time (minutes, 24h days) ---")
	printStats(w, "All patients", "min", r.Waiting.Stats)
	for _, c := range AllClasses {
		if s, ok := r.Waiting.ByClass[c]; ok {
			printStats(w, c.String(), "min", s)
		}
	}
	fmt.Fprintf(w, "Above %.0f minutes      : %.2f%%\n", r.Waiting.ThresholdMinutes, 100*r.Waiting.ExceedingFraction)

	fmt.Fprintln(w, "\n--- Delay (minutes) ---")
	printStats(w, "All patients", "min", r.Delay.Stats)
	fmt.Fprintf(w, "Delayed patients      : %.2f%%\n", 100*r.Delay.DelayedFraction)
	if r.Delay.AmongDelayed != nil {
		printStats(w, "Among delayed", "min", *r.Delay.AmongDelayed)
	} else {
		fmt.Fprintln(w, "Among delayed         : n/a (no delayed scans)")
	}
	fmt.Fprintf(w, "Above %.0f minutes      : %.2f%%\n", r.Delay.ThresholdMinutes, 100*r.Delay.ExceedingFraction)

	for _, m := range r.Machines {
		fmt.Fprintf(w, "\n--- %s (%d days, %d patients) ---\n", m.Name, len(m.Days), m.TotalPatients)
		printStats(w, "Downtime", "min", m.Downtime)
		printStats(w, "Throughput", "pts", m.Throughput)
		printStats(w, "Overtime", "min", m.Overtime)
		for _, d := range m.Days {
			fmt.Fprintf(w, "Overtime on day %d: %.0f minutes\n", d, m.DailyOvertime[d])
		}
		fmt.Fprintf(w, "Total overtime: %.0f minutes\n", m.TotalOvertime)
	}
	for _, name := range r.IdleMachines {
		fmt.Fprintf(w, "\n--- %s: no patients ---\n", name)
	}
}
