package workload

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/mri-sim/mri-sim/sim"
)

// CSV column headers for outcome export.
var outcomeColumns = []string{
	"patient_id", "machine", "patient_type", "day", "arrival_time",
	"scheduled_start", "scheduled_finish", "true_start", "true_finish",
	"delay", "waiting",
}

func formatMinutes(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// WriteOutcomes writes one CSV row per outcome, in assignment order.
func WriteOutcomes(w io.Writer, outcomes []sim.Outcome, cal sim.Calendar) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(outcomeColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}
	for _, o := range outcomes {
		row := []string{
			strconv.Itoa(o.PatientID),
			o.Machine,
			o.Class.String(),
			strconv.Itoa(o.Day),
			formatMinutes(o.ArrivalTime),
			formatMinutes(o.ScheduledStart),
			formatMinutes(o.ScheduledFinish),
			formatMinutes(o.TrueStart),
			formatMinutes(o.TrueFinish),
			formatMinutes(o.Delay()),
			formatMinutes(o.WaitingMinutes(cal)),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing CSV row for patient %d: %w", o.PatientID, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// ExportOutcomes writes the outcomes of a run to a CSV file.
func ExportOutcomes(path string, res *sim.Result) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating outcome file: %w", err)
	}
	defer func() { _ = file.Close() }()
	return WriteOutcomes(file, res.Outcomes, res.Config.Calendar())
}
