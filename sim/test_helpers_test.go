package sim

import (
	"os"
	"path/filepath"
	"testing"
)

// testCalendar is the default 9-hour day opening at 08:00.
var testCalendar = NewCalendar(DefaultWorkdayMinutes)

// newTestRequest builds a request arriving on day at minutes since opening.
func newTestRequest(id int, class PatientClass, day int, sinceOpening, trueDuration float64) *Request {
	return &Request{
		ID:           id,
		Class:        class,
		ArrivalTime:  testCalendar.ArrivalInstant(day, sinceOpening),
		TrueDuration: trueDuration,
	}
}

// mustRun runs cfg over requests and fails the test on any error.
func mustRun(t *testing.T, cfg RunConfig, requests []*Request) *Result {
	t.Helper()
	res, err := RunSimulation(cfg, requests)
	if err != nil {
		t.Fatalf("RunSimulation: %v", err)
	}
	return res
}

// outcomesByPatient indexes outcomes by patient ID.
func outcomesByPatient(outcomes []Outcome) map[int]Outcome {
	m := make(map[int]Outcome, len(outcomes))
	for _, o := range outcomes {
		m[o.PatientID] = o
	}
	return m
}

func writeTempYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing temp yaml: %v", err)
	}
	return path
}
