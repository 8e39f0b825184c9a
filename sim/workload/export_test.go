package workload

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mri-sim/mri-sim/sim"
)

func TestWriteOutcomes_OneRowPerOutcome(t *testing.T) {
	cal := sim.NewCalendar(sim.DefaultWorkdayMinutes)
	outcomes := []sim.Outcome{
		{PatientID: 0, Machine: "MRI_type1", Class: sim.ClassType1, Day: 1, ArrivalTime: 10,
			ScheduledStart: 0, ScheduledFinish: 30, TrueStart: 0, TrueFinish: 45},
		{PatientID: 1, Machine: "MRI_type1", Class: sim.ClassType1, Day: 1, ArrivalTime: 20,
			ScheduledStart: 30, ScheduledFinish: 60, TrueStart: 45, TrueFinish: 75},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteOutcomes(&buf, outcomes, cal))

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, outcomeColumns, rows[0])
	assert.Equal(t, []string{"1", "MRI_type1", "Type 1", "1", "20.00", "30.00", "60.00", "45.00", "75.00", "15.00", "1450.00"}, rows[2])
}

func TestExportOutcomes_WritesFile(t *testing.T) {
	requests := []*sim.Request{{ID: 0, Class: sim.ClassType2, ArrivalTime: 0, TrueDuration: 54}}
	res, err := sim.RunSimulation(sim.DefaultRunConfig(), requests)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "outcomes.csv")
	require.NoError(t, ExportOutcomes(path, res))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "0,MRI_type2,Type 2,1,0.00,0.00,54.00,0.00,54.00,0.00,1440.00")

	assert.Error(t, ExportOutcomes(filepath.Join(t.TempDir(), "no", "such", "dir.csv"), res))
}
