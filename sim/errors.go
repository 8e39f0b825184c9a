package sim

import (
	"errors"
	"fmt"
	"math"
)

// Input errors. Always wrapped in an *InputError carrying the record index.
var (
	ErrUnknownClass    = errors.New("unknown patient class")
	ErrInvalidDuration = errors.New("invalid duration")
	ErrMissingDate     = errors.New("missing date")
	ErrInvalidTime     = errors.New("invalid time of day")
	ErrInvalidArrival  = errors.New("invalid arrival instant")
)

// ErrNoData is returned when a statistic is requested over an empty sample set.
var ErrNoData = errors.New("no data")

// Policy and configuration errors.
var (
	ErrNoMachines    = errors.New("no machines available for dispatch")
	ErrUnknownPolicy = errors.New("unknown dispatch policy")
)

// isFinite reports whether v is neither NaN nor an infinity. Ordered
// comparisons alone let both through.
func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// InputError reports a malformed request together with its position in the
// input sequence and the offending field.
type InputError struct {
	Index int
	Field string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("input error at record %d, field %q: %v", e.Index, e.Field, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// ConfigError reports an invalid run configuration option.
type ConfigError struct {
	Option string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error in %s: %v", e.Option, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
