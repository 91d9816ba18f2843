// Package telemetry exposes Prometheus metrics for the task engine.
//
// All metrics are prefixed with "fetchd_" for namespacing. Metrics are
// registered once at package initialization against the default registry,
// preventing duplicate collector registration panics.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TaskRuns counts task executions started.
	TaskRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchd_task_runs_total",
		Help: "Total number of task runs started",
	})

	// EntriesProduced counts entries surviving the input phase.
	EntriesProduced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchd_entries_produced_total",
		Help: "Total number of entries produced by input plugins",
	})

	// PluginFaults counts fatal plugin faults that aborted a run.
	PluginFaults = promauto.NewCounter(prometheus.CounterOpts{
		Name: "fetchd_plugin_faults_total",
		Help: "Total number of fatal plugin faults",
	})
)
