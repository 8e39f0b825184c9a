package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	sim "github.com/mri-sim/mri-sim/sim"
	"github.com/mri-sim/mri-sim/sim/metrics"
	"github.com/mri-sim/mri-sim/sim/trace"
	"github.com/mri-sim/mri-sim/sim/workload"
)

// validFormats is the set of recognized --format values.
var validFormats = map[string]bool{"text": true, "json": true}

// describeError names the error kind and, for input errors, the offending
// record and field.
func describeError(stage string, err error) string {
	var inputErr *sim.InputError
	var configErr *sim.ConfigError
	switch {
	case errors.As(err, &inputErr):
		if inputErr.Index < 0 {
			return fmt.Sprintf("input error: header, field %q: %v", inputErr.Field, inputErr.Err)
		}
		return fmt.Sprintf("input error: record %d, field %q: %v", inputErr.Index, inputErr.Field, inputErr.Err)
	case errors.As(err, &configErr):
		return fmt.Sprintf("config error: option %q: %v", configErr.Option, configErr.Err)
	case errors.Is(err, sim.ErrNoMachines), errors.Is(err, sim.ErrUnknownPolicy):
		return fmt.Sprintf("policy error: %v", err)
	case errors.Is(err, sim.ErrNoData):
		return fmt.Sprintf("aggregation error: %v", err)
	default:
		return fmt.Sprintf("%s error: %v", stage, err)
	}
}

func fatalRunError(stage string, err error) {
	logrus.Fatal(describeError(stage, err))
}

// jsonRun is the JSON shape of one policy's report.
type jsonRun struct {
	Report *sim.KPIReport      `json:"report"`
	Trace  *trace.TraceSummary `json:"trace,omitempty"`
}

// writeReports renders reports in the selected format. With more than one
// report a side-by-side comparison follows the text tables.
func writeReports(w io.Writer, results []*sim.Result, reports []*sim.KPIReport) error {
	if !validFormats[outputFormat] {
		return fmt.Errorf("format must be one of: text, json (got: %s)", outputFormat)
	}
	if outputFormat == "json" {
		runs := make([]jsonRun, len(reports))
		for i, r := range reports {
			runs[i] = jsonRun{Report: r}
			if results[i].Trace != nil {
				runs[i].Trace = trace.Summarize(results[i].Trace)
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}

	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(w)
		}
		r.Print(w)
		if results[i].Trace != nil {
			printTraceSummary(w, trace.Summarize(results[i].Trace))
		}
	}
	if len(reports) > 1 {
		printComparison(w, reports)
	}
	return nil
}

func printTraceSummary(w io.Writer, s *trace.TraceSummary) {
	fmt.Fprintln(w, "\n--- Dispatch decisions ---")
	fmt.Fprintf(w, "Decisions             : %d (tied: %d, delayed: %d)\n", s.TotalDecisions, s.TiedDecisions, s.DelayedCount)
	fmt.Fprintf(w, "Delay                 : mean %.2f min | max %.2f min\n", s.MeanDelay, s.MaxDelay)
	for _, name := range sortedKeys(s.TargetDistribution) {
		fmt.Fprintf(w, "  %-20s: %d\n", name, s.TargetDistribution[name])
	}
}

// printComparison lists the headline KPIs of each policy in one table.
func printComparison(w io.Writer, reports []*sim.KPIReport) {
	fmt.Fprintln(w, "\n=== Policy comparison ===")
	fmt.Fprintf(w, "%-28s", "KPI")
	for _, r := range reports {
		fmt.Fprintf(w, " %20s", r.Policy)
	}
	fmt.Fprintln(w)

	row := func(label string, value func(*sim.KPIReport) float64) {
		fmt.Fprintf(w, "%-28s", label)
		for _, r := range reports {
			fmt.Fprintf(w, " %20.2f", value(r))
		}
		fmt.Fprintln(w)
	}
	row("Mean waiting (min)", func(r *sim.KPIReport) float64 { return r.Waiting.Stats.Mean })
	row("Waiting above threshold (%)", func(r *sim.KPIReport) float64 { return 100 * r.Waiting.ExceedingFraction })
	row("Mean delay (min)", func(r *sim.KPIReport) float64 { return r.Delay.Stats.Mean })
	row("Delayed patients (%)", func(r *sim.KPIReport) float64 { return 100 * r.Delay.DelayedFraction })
	row("Delay above threshold (%)", func(r *sim.KPIReport) float64 { return 100 * r.Delay.ExceedingFraction })
	row("Total overtime (min)", func(r *sim.KPIReport) float64 {
		total := 0.0
		for _, m := range r.Machines {
			total += m.TotalOvertime
		}
		return total
	})
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// outcomePath returns path unchanged for a single run, and inserts the policy
// name before the extension when several runs share one flag.
func outcomePath(path, policy string, runs int) string {
	if runs <= 1 {
		return path
	}
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "." + policy + ext
}

// exportArtifacts writes the optional outcome CSVs and the Prometheus textfile.
func exportArtifacts(results []*sim.Result, reports []*sim.KPIReport) {
	if outcomesOut != "" {
		for _, res := range results {
			path := outcomePath(outcomesOut, res.Policy, len(results))
			if err := workload.ExportOutcomes(path, res); err != nil {
				logrus.Fatalf("Exporting outcomes: %v", err)
			}
			logrus.Infof("Wrote %d outcomes to %s", len(res.Outcomes), path)
		}
	}
	if metricsOut != "" {
		exporter := metrics.NewExporter()
		for _, r := range reports {
			exporter.Record(r)
		}
		if err := exporter.WriteTextfile(metricsOut); err != nil {
			logrus.Fatalf("Writing metrics: %v", err)
		}
		logrus.Infof("Wrote KPI metrics to %s", metricsOut)
	}
}
