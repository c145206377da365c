package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for dataset loading and caching.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Loads            *prometheus.CounterVec
	LoadDuration     prometheus.Histogram
	EncodingAttempts *prometheus.CounterVec
	CacheLookups     *prometheus.CounterVec
	Records          prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	m := &Metrics{
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "dataset",
				Name:      "loads_total",
				Help:      "Total number of dataset loads by result",
			},
			[]string{"result"},
		),
		LoadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "dataset",
				Name:      "load_duration_seconds",
				Help:      "Time spent reading, decoding and parsing the source file",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
			},
		),
		EncodingAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "loader",
				Name:      "encoding_attempts_total",
				Help:      "Candidate encoding attempts by encoding and outcome",
			},
			[]string{"encoding", "outcome"},
		),
		CacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "lookups_total",
				Help:      "Dataset cache lookups by result (hit or miss)",
			},
			[]string{"result"},
		),
		Records: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "dataset",
				Name:      "records",
				Help:      "Number of records in the cached dataset",
			},
		),
	}

	if reg != nil {
		reg.MustRegister(m.Loads, m.LoadDuration, m.EncodingAttempts, m.CacheLookups, m.Records)
	}
	return m
}

func (m *Metrics) observeAttempt(a Attempt) {
	if m == nil {
		return
	}
	m.EncodingAttempts.WithLabelValues(a.Encoding, string(a.Outcome)).Inc()
}

func (m *Metrics) observeLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheLookups.WithLabelValues("hit").Inc()
	} else {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *Metrics) observeLoad(err error, elapsed time.Duration, records int) {
	if m == nil {
		return
	}
	m.LoadDuration.Observe(elapsed.Seconds())
	if err != nil {
		m.Loads.WithLabelValues(MapError(err).Code).Inc()
		return
	}
	m.Loads.WithLabelValues("ok").Inc()
	m.Records.Set(float64(records))
}
