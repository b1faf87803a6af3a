// Package metrics exposes Prometheus counters for load passes.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Namespace for all metrics.
const namespace = "evtx"

// Chunk statuses.
const (
	ChunkOK       = "ok"
	ChunkEmpty    = "empty"
	ChunkDegraded = "degraded"
	ChunkCorrupt  = "corrupt"
)

// Collector holds the load metrics. A nil *Collector is valid and records
// nothing.
type Collector struct {
	ChunksParsed      *prometheus.CounterVec
	RecordsDecoded    *prometheus.CounterVec
	TemplatesCompiled prometheus.Counter
	Diagnostics       *prometheus.CounterVec
	LoadDuration      prometheus.Histogram
	Workers           prometheus.Gauge
}

// New registers the collectors on reg. Registering twice on the same
// registerer reuses the existing collectors. A nil reg yields a nil Collector.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		return nil, nil
	}
	c := &Collector{}
	var err error

	if c.ChunksParsed, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "chunks_total",
			Help:      "Chunks parsed by status (ok, empty, degraded, corrupt)",
		},
		[]string{"status"},
	)); err != nil {
		return nil, err
	}

	if c.RecordsDecoded, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "records_total",
			Help:      "Event records read by outcome (decoded, failed)",
		},
		[]string{"outcome"},
	)); err != nil {
		return nil, err
	}

	if c.TemplatesCompiled, err = register(reg, prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "templates_compiled_total",
			Help:      "Template definitions compiled",
		},
	)); err != nil {
		return nil, err
	}

	if c.Diagnostics, err = register(reg, prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "diagnostics_total",
			Help:      "Diagnostics recorded by kind and severity",
		},
		[]string{"kind", "severity"},
	)); err != nil {
		return nil, err
	}

	if c.LoadDuration, err = register(reg, prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "duration_seconds",
			Help:      "Wall time of complete loads",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		},
	)); err != nil {
		return nil, err
	}

	if c.Workers, err = register(reg, prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "load",
			Name:      "workers",
			Help:      "Worker goroutines used by the most recent load",
		},
	)); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, err
	}
	return c, nil
}

// Chunk records one parsed chunk.
func (c *Collector) Chunk(status string, decoded, failed, templates int) {
	if c == nil {
		return
	}
	c.ChunksParsed.WithLabelValues(status).Inc()
	c.RecordsDecoded.WithLabelValues("decoded").Add(float64(decoded))
	c.RecordsDecoded.WithLabelValues("failed").Add(float64(failed))
	c.TemplatesCompiled.Add(float64(templates))
}

// Diagnostic records one diagnostic.
func (c *Collector) Diagnostic(kind, severity string) {
	if c == nil {
		return
	}
	c.Diagnostics.WithLabelValues(kind, severity).Inc()
}

// LoadFinished records a completed load.
func (c *Collector) LoadFinished(d time.Duration, workers int) {
	if c == nil {
		return
	}
	c.LoadDuration.Observe(d.Seconds())
	c.Workers.Set(float64(workers))
}
