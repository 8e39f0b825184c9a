// Package metrics exports KPI reports as Prometheus gauges.
// Each Exporter owns a private registry so several runs (e.g. both policies
// of a comparison) can be recorded side by side, labelled by policy.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mri-sim/mri-sim/sim"
)

const namespace = "mri_sim"

// Exporter holds the KPI gauges of one or more runs.
type Exporter struct {
	Registry *prometheus.Registry

	Patients         *prometheus.GaugeVec
	WaitingMinutes   *prometheus.GaugeVec
	WaitingExceeding *prometheus.GaugeVec
	DelayMinutes     *prometheus.GaugeVec
	DelayedFraction  *prometheus.GaugeVec
	DelayExceeding   *prometheus.GaugeVec
	DowntimeMinutes  *prometheus.GaugeVec
	ThroughputPerDay *prometheus.GaugeVec
	OvertimeMinutes  *prometheus.GaugeVec
	OvertimeTotal    *prometheus.GaugeVec
	MachinePatients  *prometheus.GaugeVec
}

// NewExporter registers all KPI gauges on a fresh registry.
func NewExporter() *Exporter {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Exporter{
		Registry: reg,
		Patients: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "patients",
			Help:      "Number of patients simulated",
		}, []string{"policy"}),
		WaitingMinutes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_minutes",
			Help:      "Waiting time from call to scheduled slot (24h-day minutes) by statistic",
		}, []string{"policy", "stat"}),
		WaitingExceeding: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "waiting_exceeding_ratio",
			Help:      "Share of patients waiting longer than the waiting threshold",
		}, []string{"policy"}),
		DelayMinutes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delay_minutes",
			Help:      "Delay of true scan start after the scheduled start by statistic",
		}, []string{"policy", "stat"}),
		DelayedFraction: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delayed_ratio",
			Help:      "Share of patients whose scan started late",
		}, []string{"policy"}),
		DelayExceeding: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "delay_exceeding_ratio",
			Help:      "Share of patients delayed longer than the delay threshold",
		}, []string{"policy"}),
		DowntimeMinutes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "downtime_minutes",
			Help:      "Unscheduled minutes per machine-day by statistic",
		}, []string{"policy", "machine", "stat"}),
		ThroughputPerDay: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "throughput_patients",
			Help:      "Patients scanned per machine-day by statistic",
		}, []string{"policy", "machine", "stat"}),
		OvertimeMinutes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overtime_minutes",
			Help:      "Minutes past closing per machine-day by statistic",
		}, []string{"policy", "machine", "stat"}),
		OvertimeTotal: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overtime_total_minutes",
			Help:      "Total overtime per machine over the run",
		}, []string{"policy", "machine"}),
		MachinePatients: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "machine_patients",
			Help:      "Patients scanned per machine over the run",
		}, []string{"policy", "machine"}),
	}
}

func setStats(g *prometheus.GaugeVec, s sim.Stats, labels ...string) {
	for stat, v := range map[string]float64{
		"mean":     s.Mean,
		"variance": s.Variance,
		"min":      s.Min,
		"max":      s.Max,
	} {
		g.WithLabelValues(append(labels, stat)...).Set(v)
	}
}

// Record sets the gauges for one report. Recording the same policy twice
// overwrites the earlier values.
func (e *Exporter) Record(r *sim.KPIReport) {
	p := r.Policy
	e.Patients.WithLabelValues(p).Set(float64(r.Patients))

	setStats(e.WaitingMinutes, r.Waiting.Stats, p)
	e.WaitingExceeding.WithLabelValues(p).Set(r.Waiting.ExceedingFraction)

	setStats(e.DelayMinutes, r.Delay.Stats, p)
	e.DelayedFraction.WithLabelValues(p).Set(r.Delay.DelayedFraction)
	e.DelayExceeding.WithLabelValues(p).Set(r.Delay.ExceedingFraction)

	for _, m := range r.Machines {
		setStats(e.DowntimeMinutes, m.Downtime, p, m.Name)
		setStats(e.ThroughputPerDay, m.Throughput, p, m.Name)
		setStats(e.OvertimeMinutes, m.Overtime, p, m.Name)
		e.OvertimeTotal.WithLabelValues(p, m.Name).Set(m.TotalOvertime)
		e.MachinePatients.WithLabelValues(p, m.Name).Set(float64(m.TotalPatients))
	}
	for _, name := range r.IdleMachines {
		e.MachinePatients.WithLabelValues(p, name).Set(0)
	}
}

// WriteTextfile writes the registry in the text exposition format, suitable
// for the node_exporter textfile collector.
func (e *Exporter) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, e.Registry)
}
