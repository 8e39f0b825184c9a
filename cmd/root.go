package cmd

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/mri-sim/mri-sim/sim"
	"github.com/mri-sim/mri-sim/sim/workload"
)

var (
	// CLI flags for the run
	inputPath             string  // ScanRecords CSV file
	configPath            string  // Optional YAML run configuration
	logLevel              string  // Log verbosity level
	policy                string  // Dispatch policy
	workdayMinutes        float64 // Length of the working day
	openingHour           int     // Clock hour at which the day starts
	slotType1             float64 // Nominal slot for Type 1 patients
	slotType2             float64 // Nominal slot for Type 2 patients
	waitThresholdDays     float64 // Waiting threshold in working days
	delayThresholdMinutes float64 // Delay threshold in minutes
	machineNames          []string
	traceLevel            string // Decision trace level

	// Output flags
	outputFormat string // text or json
	outcomesOut  string // CSV file for per-patient outcomes
	metricsOut   string // Prometheus textfile for KPIs
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "mri-sim",
	Short: "Discrete-event simulator for MRI scan appointment scheduling",
}

// runCmd executes one simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Simulate one dispatch policy and report its KPIs",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := buildRunConfig(cmd)
		requests := loadRequests(cfg)

		res, err := sim.RunSimulation(cfg, requests)
		if err != nil {
			fatalRunError("simulation", err)
		}
		report, err := sim.Summarize(res)
		if err != nil {
			fatalRunError("kpi", err)
		}

		if err := writeReports(os.Stdout, []*sim.Result{res}, []*sim.KPIReport{report}); err != nil {
			logrus.Fatalf("Writing report: %v", err)
		}
		exportArtifacts([]*sim.Result{res}, []*sim.KPIReport{report})
		logrus.Info("Simulation complete.")
	},
}

// setupLogging applies the --log flag.
func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

// buildRunConfig loads the YAML config (if any) and overlays flags the user set explicitly.
func buildRunConfig(cmd *cobra.Command) sim.RunConfig {
	cfg := sim.DefaultRunConfig()
	if configPath != "" {
		loaded, err := sim.LoadRunConfig(configPath)
		if err != nil {
			logrus.Fatalf("Unable to load run config: %v", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("policy") {
		cfg.Policy = policy
	}
	if flags.Changed("workday") {
		cfg.WorkdayMinutes = workdayMinutes
	}
	if flags.Changed("opening-hour") {
		cfg.OpeningHour = openingHour
	}
	if flags.Changed("slot-type1") {
		cfg.SlotLengths.Type1 = slotType1
	}
	if flags.Changed("slot-type2") {
		cfg.SlotLengths.Type2 = slotType2
	}
	if flags.Changed("wait-threshold-days") {
		cfg.WaitThresholdDays = waitThresholdDays
	}
	if flags.Changed("delay-threshold") {
		cfg.DelayThresholdMinutes = delayThresholdMinutes
	}
	if flags.Changed("machines") {
		cfg.Machines = machineNames
	}
	if flags.Changed("trace-level") {
		cfg.TraceLevel = traceLevel
	}

	if err := cfg.Validate(); err != nil {
		fatalRunError("config", err)
	}
	logrus.Infof("Run config: policy=%s workday=%.0fmin slots=%.0f/%.0fmin wait-threshold=%.1fd delay-threshold=%.0fmin",
		cfg.Policy, cfg.WorkdayMinutes, cfg.SlotLengths.Type1, cfg.SlotLengths.Type2, cfg.WaitThresholdDays, cfg.DelayThresholdMinutes)
	return cfg
}

// loadRequests reads the input CSV; any malformed record aborts before simulation.
func loadRequests(cfg sim.RunConfig) []*sim.Request {
	if inputPath == "" {
		logrus.Fatalf("Scan records not provided (--input). Exiting simulation.")
	}
	requests, err := workload.LoadScanRecords(inputPath, cfg.Calendar())
	if err != nil {
		fatalRunError("input", err)
	}
	return requests
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// registerRunFlags adds the flags shared by run and compare.
func registerRunFlags(cmd *cobra.Command) {
	defaults := sim.DefaultRunConfig()
	cmd.Flags().StringVar(&inputPath, "input", "", "ScanRecords CSV file (Date, Time, Duration, PatientType)")
	cmd.Flags().StringVar(&configPath, "config", "", "YAML run configuration; flags override its values")
	cmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	cmd.Flags().Float64Var(&workdayMinutes, "workday", defaults.WorkdayMinutes, "Working-day length in minutes")
	cmd.Flags().IntVar(&openingHour, "opening-hour", defaults.OpeningHour, "Clock hour at which the working day starts")
	cmd.Flags().Float64Var(&slotType1, "slot-type1", defaults.SlotLengths.Type1, "Nominal slot length for Type 1 patients (minutes)")
	cmd.Flags().Float64Var(&slotType2, "slot-type2", defaults.SlotLengths.Type2, "Nominal slot length for Type 2 patients (minutes)")
	cmd.Flags().Float64Var(&waitThresholdDays, "wait-threshold-days", defaults.WaitThresholdDays, "Waiting-time threshold in working days")
	cmd.Flags().Float64Var(&delayThresholdMinutes, "delay-threshold", defaults.DelayThresholdMinutes, "Delay threshold in minutes")
	cmd.Flags().StringSliceVar(&machineNames, "machines", nil, "Comma-separated machine names (default depends on policy)")
	cmd.Flags().StringVar(&traceLevel, "trace-level", "none", "Decision trace level (none, decisions)")
	cmd.Flags().StringVar(&outputFormat, "format", "text", "Report format: text|json")
	cmd.Flags().StringVar(&outcomesOut, "outcomes-out", "", "Write per-patient outcomes to this CSV file")
	cmd.Flags().StringVar(&metricsOut, "metrics-out", "", "Write KPIs in Prometheus text format to this file")
}

// init sets up CLI flags and subcommands
func init() {
	registerRunFlags(runCmd)
	runCmd.Flags().StringVar(&policy, "policy", sim.PolicyDedicated, "Dispatch policy: dedicated (old) | earliest-available (new)")

	registerRunFlags(compareCmd)

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(compareCmd)
}
