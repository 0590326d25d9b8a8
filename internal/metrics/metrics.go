// Package metrics provides a small, backend-agnostic abstraction for
// recording operational metrics from the lake ETL.
//
// A narrow Backend interface (counters plus duration observations) hides the
// concrete metric system; a global, pluggable backend defaults to a no-op
// implementation so instrumentation calls are always safe, even when no
// backend is configured. Concrete systems (Prometheus Pushgateway, Datadog)
// live in subpackages and are the only places with vendor dependencies.
package metrics

import "time"

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveDuration records a duration-style value in seconds.
	ObserveDuration(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)      {}
func (nopBackend) ObserveDuration(string, float64, Labels) {}
func (nopBackend) Flush() error                            { return nil }

var backend Backend = nopBackend{}

// SetBackend installs a concrete backend. Passing nil keeps the existing one.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	backend = b
}

// Flush delegates to the current backend.
func Flush() error {
	return backend.Flush()
}

// RecordStage measures one pipeline stage: latency plus success/failure.
// Stages are the coarse units of the run: "read_songs", "read_logs",
// "build_dimensions", "build_facts", "write".
func RecordStage(job, stage string, err error, d time.Duration) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	lbls := Labels{
		"job":    job,
		"stage":  stage,
		"status": status,
	}
	backend.IncCounter("lakeetl_stage_total", 1, lbls)
	backend.ObserveDuration("lakeetl_stage_duration_seconds", d.Seconds(), lbls)
}

// RecordRows increments a row-level counter for the given job and kind.
//
// Typical kinds mirror the run summary fields, e.g.:
//   - "songs_read", "events_read"
//   - "malformed_songs", "malformed_events"
//   - table names for built row counts ("song_plays", "users", ...)
func RecordRows(job, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("lakeetl_rows_total", float64(delta), Labels{
		"job":  job,
		"kind": kind,
	})
}

// RecordUnresolved counts playback events whose song/artist lookup failed
// and were emitted with null foreign keys.
func RecordUnresolved(job string, delta int64) {
	if delta <= 0 {
		return
	}
	backend.IncCounter("lakeetl_unresolved_events_total", float64(delta), Labels{
		"job": job,
	})
}
