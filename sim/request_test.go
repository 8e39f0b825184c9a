package sim

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestState_Constants_HaveExpectedStringValues(t *testing.T) {
	assert.Equal(t, RequestState("pending"), StatePending)
	assert.Equal(t, RequestState("arrived"), StateArrived)
	assert.Equal(t, RequestState("assigned"), StateAssigned)
	assert.Equal(t, RequestState("started"), StateStarted)
	assert.Equal(t, RequestState("finished"), StateFinished)
}

func TestParseClass(t *testing.T) {
	c, err := ParseClass("Type 1")
	require.NoError(t, err)
	assert.Equal(t, ClassType1, c)

	c, err = ParseClass(" Type 2 ")
	require.NoError(t, err)
	assert.Equal(t, ClassType2, c)

	_, err = ParseClass("Type 3")
	assert.True(t, errors.Is(err, ErrUnknownClass))
}

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name      string
		req       Request
		wantField string
		wantErr   error
	}{
		{"valid", Request{ID: 0, Class: ClassType1, ArrivalTime: 10, TrueDuration: 30}, "", nil},
		{"unknown class", Request{ID: 3, Class: PatientClass(7), ArrivalTime: 10, TrueDuration: 30}, "PatientType", ErrUnknownClass},
		{"zero duration", Request{ID: 4, Class: ClassType2, ArrivalTime: 10, TrueDuration: 0}, "Duration", ErrInvalidDuration},
		{"negative duration", Request{ID: 5, Class: ClassType2, ArrivalTime: 10, TrueDuration: -1}, "Duration", ErrInvalidDuration},
		{"negative arrival", Request{ID: 6, Class: ClassType1, ArrivalTime: -5, TrueDuration: 30}, "Time", ErrInvalidArrival},
		{"NaN duration", Request{ID: 7, Class: ClassType1, ArrivalTime: 10, TrueDuration: math.NaN()}, "Duration", ErrInvalidDuration},
		{"infinite duration", Request{ID: 8, Class: ClassType2, ArrivalTime: 10, TrueDuration: math.Inf(1)}, "Duration", ErrInvalidDuration},
		{"NaN arrival", Request{ID: 9, Class: ClassType1, ArrivalTime: math.NaN(), TrueDuration: 30}, "Time", ErrInvalidArrival},
		{"infinite arrival", Request{ID: 10, Class: ClassType1, ArrivalTime: math.Inf(1), TrueDuration: 30}, "Time", ErrInvalidArrival},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr), "expected *InputError, got %v", err)
			assert.Equal(t, tt.req.ID, inputErr.Index)
			assert.Equal(t, tt.wantField, inputErr.Field)
			assert.True(t, errors.Is(err, tt.wantErr))
		})
	}
}

func TestRequest_String_IncludesClass(t *testing.T) {
	req := Request{ID: 1, Class: ClassType2}
	assert.Contains(t, req.String(), "Type 2")
}
