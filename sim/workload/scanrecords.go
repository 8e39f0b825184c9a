package workload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mri-sim/mri-sim/sim"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Column names of ScanRecords.csv.
const (
	ColumnDate        = "Date"
	ColumnTime        = "Time"
	ColumnDuration    = "Duration"
	ColumnPatientType = "PatientType"
)

var scanRecordColumns = []string{ColumnDate, ColumnTime, ColumnDuration, ColumnPatientType}

// ScanRecord is one parsed row of ScanRecords.csv.
type ScanRecord struct {
	Date          string
	TimeHours     float64 // clock time of the call, fractional hours (8.5 = 08:30)
	DurationHours float64 // measured scan duration, fractional hours
	Class         sim.PatientClass
}

// ParseScanRecords reads ScanRecords CSV data. The first row must be a header
// naming at least Date, Time, Duration and PatientType, in any order. Rows
// are returned in input order; the first malformed row aborts parsing with a
// *sim.InputError carrying its zero-based record index.
func ParseScanRecords(r io.Reader) ([]ScanRecord, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, col := range scanRecordColumns {
		if _, ok := idx[col]; !ok {
			return nil, &sim.InputError{Index: -1, Field: col, Err: ErrMissingColumn}
		}
	}

	var records []ScanRecord
	for i := 0; ; i++ {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV record %d: %w", i, err)
		}
		field := func(col string) string {
			if j := idx[col]; j < len(row) {
				return strings.TrimSpace(row[j])
			}
			return ""
		}

		rec := ScanRecord{Date: field(ColumnDate)}
		if rec.Date == "" {
			return nil, &sim.InputError{Index: i, Field: ColumnDate, Err: sim.ErrMissingDate}
		}
		rec.TimeHours, err = strconv.ParseFloat(field(ColumnTime), 64)
		if err != nil {
			return nil, &sim.InputError{Index: i, Field: ColumnTime, Err: fmt.Errorf("%w: %v", sim.ErrInvalidTime, err)}
		}
		if !finite(rec.TimeHours) {
			return nil, &sim.InputError{Index: i, Field: ColumnTime, Err: fmt.Errorf("%w: %v", sim.ErrInvalidTime, rec.TimeHours)}
		}
		rec.DurationHours, err = strconv.ParseFloat(field(ColumnDuration), 64)
		if err != nil {
			return nil, &sim.InputError{Index: i, Field: ColumnDuration, Err: fmt.Errorf("%w: %v", sim.ErrInvalidDuration, err)}
		}
		if !finite(rec.DurationHours) || rec.DurationHours <= 0 {
			return nil, &sim.InputError{Index: i, Field: ColumnDuration, Err: fmt.Errorf("%w: %v hours", sim.ErrInvalidDuration, rec.DurationHours)}
		}
		rec.Class, err = sim.ParseClass(field(ColumnPatientType))
		if err != nil {
			return nil, &sim.InputError{Index: i, Field: ColumnPatientType, Err: err}
		}
		records = append(records, rec)
	}
	return records, nil
}

// finite rejects the NaN and Inf spellings strconv.ParseFloat accepts.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// DayIndex assigns zero-based day indices to dates in order of first appearance.
func DayIndex(records []ScanRecord) map[string]int {
	days := make(map[string]int)
	for _, r := range records {
		if _, ok := days[r.Date]; !ok {
			days[r.Date] = len(days)
		}
	}
	return days
}

// ToRequests converts parsed records into simulation requests. Call times are
// clock hours and must fall within the working day of cal, closing included.
// A call at closing is placed at the next day's opening, the same instant on
// the working-minute clock.
func ToRequests(records []ScanRecord, cal sim.Calendar) ([]*sim.Request, error) {
	days := DayIndex(records)
	requests := make([]*sim.Request, 0, len(records))
	for i, rec := range records {
		sinceOpening := rec.TimeHours*60 - float64(cal.OpeningHour*60)
		if !finite(sinceOpening) || sinceOpening < 0 || sinceOpening > cal.WorkdayMinutes {
			return nil, &sim.InputError{Index: i, Field: ColumnTime,
				Err: fmt.Errorf("%w: %.2fh is outside working hours", sim.ErrInvalidTime, rec.TimeHours)}
		}
		req := &sim.Request{
			ID:           i,
			Class:        rec.Class,
			ArrivalTime:  cal.ArrivalInstant(days[rec.Date], sinceOpening),
			TrueDuration: rec.DurationHours * 60,
		}
		if err := req.Validate(); err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, nil
}

// LoadScanRecords reads a ScanRecords CSV file and converts it into requests.
func LoadScanRecords(path string, cal sim.Calendar) ([]*sim.Request, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scan records: %w", err)
	}
	defer func() { _ = file.Close() }()

	records, err := ParseScanRecords(file)
	if err != nil {
		return nil, err
	}
	requests, err := ToRequests(records, cal)
	if err != nil {
		return nil, err
	}
	logrus.Infof("Loaded %d scan records over %d days from %s", len(requests), len(DayIndex(records)), path)
	return requests, nil
}
