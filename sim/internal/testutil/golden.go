// Package testutil provides shared test infrastructure for the MRI simulator:
// the golden scenario dataset and float assertion helpers.
package testutil

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// GoldenDataset represents the structure of testdata/goldendataset.json.
type GoldenDataset struct {
	Tests []GoldenTestCase `json:"tests"`
}

// GoldenTestCase is one hand-checked scenario: a policy, its calls and the
// KPIs the run must reproduce.
type GoldenTestCase struct {
	Name     string          `json:"name"`
	Policy   string          `json:"policy"`
	Requests []GoldenRequest `json:"requests"`
	Metrics  GoldenMetrics   `json:"metrics"`
}

// GoldenRequest places a call on a day at minutes since opening.
type GoldenRequest struct {
	PatientType  int     `json:"patient_type"`
	Day          int     `json:"day"`
	SinceOpening float64 `json:"since_opening"`
	Duration     float64 `json:"duration"`
}

// GoldenMetrics represents the expected KPIs of a golden scenario.
type GoldenMetrics struct {
	// Exact match
	Patients int `json:"patients"`

	WaitingMean     float64 `json:"waiting_mean"`
	DelayMean       float64 `json:"delay_mean"`
	DelayedFraction float64 `json:"delayed_fraction"`
	TotalOvertime   float64 `json:"total_overtime"`
}

// LoadGoldenDataset loads the golden dataset from the testdata directory.
// The path is resolved relative to this source file: sim/internal/testutil/ → testdata/.
func LoadGoldenDataset(t *testing.T) *GoldenDataset {
	t.Helper()

	_, thisFile, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to get current file path")
	}
	path := filepath.Join(filepath.Dir(thisFile), "..", "..", "..", "testdata", "goldendataset.json")
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read golden dataset: %v", err)
	}

	var dataset GoldenDataset
	if err := json.Unmarshal(data, &dataset); err != nil {
		t.Fatalf("Failed to parse golden dataset: %v", err)
	}
	return &dataset
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
