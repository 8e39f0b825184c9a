package trace

// TraceSummary aggregates statistics from a SimulationTrace.
type TraceSummary struct {
	TotalDecisions     int
	DelayedCount       int
	TiedDecisions      int
	MeanDelay          float64
	MaxDelay           float64
	UniqueTargets      int
	TargetDistribution map[string]int // machine name -> count of patients dispatched
}

// Summarize computes aggregate statistics from a SimulationTrace.
// Safe for nil or empty traces (returns zero-value fields).
func Summarize(st *SimulationTrace) *TraceSummary {
	summary := &TraceSummary{
		TargetDistribution: make(map[string]int),
	}
	if st == nil {
		return summary
	}

	summary.TotalDecisions = len(st.Dispatches)
	if len(st.Dispatches) > 0 {
		totalDelay := 0.0
		for _, r := range st.Dispatches {
			summary.TargetDistribution[r.ChosenMachine]++
			if r.Delay > 0 {
				summary.DelayedCount++
			}
			if r.Tied() {
				summary.TiedDecisions++
			}
			totalDelay += r.Delay
			if r.Delay > summary.MaxDelay {
				summary.MaxDelay = r.Delay
			}
		}
		summary.MeanDelay = totalDelay / float64(len(st.Dispatches))
	}

	summary.UniqueTargets = len(summary.TargetDistribution)

	return summary
}
