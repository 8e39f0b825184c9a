// Package trace provides decision-trace recording for dispatch policy analysis.
// This package has no dependencies on sim/ — it stores pure data types.
package trace

// DispatchRecord captures a single dispatch policy decision.
type DispatchRecord struct {
	PatientID     int
	Clock         float64 // simulation minutes at which the decision was made
	TargetDay     int
	ChosenMachine string
	Reason        string
	Availability  map[string]float64 // machine -> next free on TargetDay (nil for dedicated)
	Delay         float64            // true start minus scheduled start of the booked scan
}

// Tied reports whether more than one machine shared the earliest availability.
func (r DispatchRecord) Tied() bool {
	if len(r.Availability) < 2 {
		return false
	}
	chosen, ok := r.Availability[r.ChosenMachine]
	if !ok {
		return false
	}
	n := 0
	for _, v := range r.Availability {
		if v == chosen {
			n++
		}
	}
	return n > 1
}
