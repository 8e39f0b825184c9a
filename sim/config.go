package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mri-sim/mri-sim/sim/trace"
)

// SlotLengthConfig holds the nominal slot length per patient class, in minutes.
type SlotLengthConfig struct {
	Type1 float64 `yaml:"type1"`
	Type2 float64 `yaml:"type2"`
}

// RunConfig groups every option of a simulation run. Loadable from YAML; fields
// absent from the file keep their defaults.
type RunConfig struct {
	Policy                string           `yaml:"policy"`                  // "dedicated" (alias "old") or "earliest-available" (alias "new")
	WorkdayMinutes        float64          `yaml:"workday_minutes"`         // length of the working day
	OpeningHour           int              `yaml:"opening_hour"`            // clock hour of minute 0 of each day
	SlotLengths           SlotLengthConfig `yaml:"slot_lengths"`            // nominal slot per class
	WaitThresholdDays     float64          `yaml:"wait_threshold_days"`     // waiting-time threshold in working days
	DelayThresholdMinutes float64          `yaml:"delay_threshold_minutes"` // delay threshold
	Machines              []string         `yaml:"machines"`                // machine names; empty uses the policy defaults
	TraceLevel            string           `yaml:"trace_level"`             // "none" or "decisions"
}

// DefaultRunConfig returns the configuration of the hospital's current system.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Policy:                PolicyDedicated,
		WorkdayMinutes:        DefaultWorkdayMinutes,
		OpeningHour:           DefaultOpeningHour,
		SlotLengths:           SlotLengthConfig{Type1: 30, Type2: 54},
		WaitThresholdDays:     5,
		DelayThresholdMinutes: 60,
		TraceLevel:            string(trace.TraceLevelNone),
	}
}

// LoadRunConfig reads a YAML run configuration on top of DefaultRunConfig.
// Unknown keys are rejected so typos surface as errors.
func LoadRunConfig(path string) (RunConfig, error) {
	cfg := DefaultRunConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading run config: %w", err)
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("parsing run config: %w", err)
	}
	return cfg, nil
}

// Validate checks option names and ranges.
func (c RunConfig) Validate() error {
	if !IsValidDispatchPolicy(c.Policy) {
		return &ConfigError{Option: "policy", Err: fmt.Errorf("%w %q", ErrUnknownPolicy, c.Policy)}
	}
	if !isFinite(c.WorkdayMinutes) || c.WorkdayMinutes <= 0 {
		return &ConfigError{Option: "workday_minutes", Err: fmt.Errorf("must be positive and finite, got %v", c.WorkdayMinutes)}
	}
	if c.OpeningHour < 0 || c.OpeningHour > 23 {
		return &ConfigError{Option: "opening_hour", Err: fmt.Errorf("must be in [0, 23], got %d", c.OpeningHour)}
	}
	if !isFinite(c.SlotLengths.Type1) || c.SlotLengths.Type1 <= 0 {
		return &ConfigError{Option: "slot_lengths.type1", Err: fmt.Errorf("%w: %v", ErrInvalidDuration, c.SlotLengths.Type1)}
	}
	if !isFinite(c.SlotLengths.Type2) || c.SlotLengths.Type2 <= 0 {
		return &ConfigError{Option: "slot_lengths.type2", Err: fmt.Errorf("%w: %v", ErrInvalidDuration, c.SlotLengths.Type2)}
	}
	if !isFinite(c.WaitThresholdDays) || c.WaitThresholdDays < 0 {
		return &ConfigError{Option: "wait_threshold_days", Err: fmt.Errorf("must be non-negative and finite, got %v", c.WaitThresholdDays)}
	}
	if !isFinite(c.DelayThresholdMinutes) || c.DelayThresholdMinutes < 0 {
		return &ConfigError{Option: "delay_threshold_minutes", Err: fmt.Errorf("must be non-negative and finite, got %v", c.DelayThresholdMinutes)}
	}
	if len(c.Machines) > 0 && len(c.Machines) < len(AllClasses) {
		return &ConfigError{Option: "machines", Err: fmt.Errorf("%w: need %d names, got %d", ErrNoMachines, len(AllClasses), len(c.Machines))}
	}
	seen := make(map[string]bool, len(c.Machines))
	for _, name := range c.Machines {
		if name == "" || seen[name] {
			return &ConfigError{Option: "machines", Err: fmt.Errorf("machine names must be unique and non-empty, got %q", c.Machines)}
		}
		seen[name] = true
	}
	if !trace.IsValidTraceLevel(c.TraceLevel) {
		return &ConfigError{Option: "trace_level", Err: fmt.Errorf("unknown trace level %q", c.TraceLevel)}
	}
	return nil
}

// Calendar returns the time model for this configuration.
func (c RunConfig) Calendar() Calendar {
	return Calendar{WorkdayMinutes: c.WorkdayMinutes, OpeningHour: c.OpeningHour}
}

// SlotLengthMap returns the nominal slot length keyed by class.
func (c RunConfig) SlotLengthMap() map[PatientClass]float64 {
	return map[PatientClass]float64{
		ClassType1: c.SlotLengths.Type1,
		ClassType2: c.SlotLengths.Type2,
	}
}

// MachineNames returns the configured machine names or the policy defaults.
func (c RunConfig) MachineNames() []string {
	if len(c.Machines) > 0 {
		return append([]string(nil), c.Machines...)
	}
	canonical, err := CanonicalPolicyName(c.Policy)
	if err != nil {
		canonical = PolicyDedicated
	}
	return DefaultMachineNames(canonical)
}

// WaitThresholdMinutes converts the waiting threshold to the 1440-minute basis
// on which waiting time is measured.
func (c RunConfig) WaitThresholdMinutes() float64 {
	return c.WaitThresholdDays * MinutesPerCalendarDay
}
