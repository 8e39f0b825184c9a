// Defines the Request struct that models a single patient call in the simulation.
// Tracks the patient class, arrival instant and the true (measured) scan duration.

package sim

import (
	"fmt"
	"strings"
)

// PatientClass identifies the kind of scan a patient needs. Each class has a
// nominal slot length configured in RunConfig.
type PatientClass int

const (
	ClassType1 PatientClass = 1
	ClassType2 PatientClass = 2
)

// AllClasses lists the recognized patient classes in a stable order.
var AllClasses = []PatientClass{ClassType1, ClassType2}

// classLabels maps input labels to classes. Labels match the PatientType column
// of ScanRecords.csv.
var classLabels = map[string]PatientClass{
	"Type 1": ClassType1,
	"Type 2": ClassType2,
}

// ParseClass converts an input label ("Type 1", "Type 2") into a PatientClass.
func ParseClass(label string) (PatientClass, error) {
	c, ok := classLabels[strings.TrimSpace(label)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownClass, label)
	}
	return c, nil
}

// IsValid reports whether c is one of the recognized classes.
func (c PatientClass) IsValid() bool {
	return c == ClassType1 || c == ClassType2
}

func (c PatientClass) String() string {
	switch c {
	case ClassType1:
		return "Type 1"
	case ClassType2:
		return "Type 2"
	default:
		return fmt.Sprintf("PatientClass(%d)", int(c))
	}
}

// RequestState represents the lifecycle state of a patient process.
type RequestState string

const (
	StatePending  RequestState = "pending"
	StateArrived  RequestState = "arrived"
	StateAssigned RequestState = "assigned"
	StateStarted  RequestState = "started"
	StateFinished RequestState = "finished"
)

// Request is an immutable patient call.
type Request struct {
	ID           int          // Position in the input sequence
	Class        PatientClass // Determines the nominal slot length
	ArrivalTime  float64      // Absolute simulation minutes of the call
	TrueDuration float64      // Minutes the scan actually takes
}

// Validate checks that the request can be simulated. Errors carry the request
// index and offending field.
func (r *Request) Validate() error {
	if !r.Class.IsValid() {
		return &InputError{Index: r.ID, Field: "PatientType", Err: fmt.Errorf("%w: %d", ErrUnknownClass, int(r.Class))}
	}
	if !isFinite(r.TrueDuration) || r.TrueDuration <= 0 {
		return &InputError{Index: r.ID, Field: "Duration", Err: fmt.Errorf("%w: %v minutes", ErrInvalidDuration, r.TrueDuration)}
	}
	if !isFinite(r.ArrivalTime) || r.ArrivalTime < 0 {
		return &InputError{Index: r.ID, Field: "Time", Err: fmt.Errorf("%w: %v", ErrInvalidArrival, r.ArrivalTime)}
	}
	return nil
}

func (r Request) String() string {
	return fmt.Sprintf("Request: (ID: %d, Class: %s, ArrivalTime: %.2f, TrueDuration: %.2f)", r.ID, r.Class, r.ArrivalTime, r.TrueDuration)
}
