package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles the service's Prometheus collectors.
type Metrics struct {
	ReadingsInserted  prometheus.Counter
	ReadingsRejected  prometheus.Counter
	SecondaryFailures prometheus.Counter
	EntityDrift       prometheus.Gauge
	ReadingDrift      prometheus.Gauge
}

// New registers the collectors on reg. Tests pass a fresh registry so
// parallel packages never collide on the default one.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReadingsInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infrasight_readings_inserted_total",
			Help: "Readings committed to the target store.",
		}),
		ReadingsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infrasight_readings_rejected_total",
			Help: "Readings rejected during ingestion (unknown entity, transform or sub-batch failure).",
		}),
		SecondaryFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "infrasight_dualwrite_secondary_failures_total",
			Help: "Target-store writes absorbed after retry exhaustion.",
		}),
		EntityDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "infrasight_drift_entities",
			Help: "Legacy minus target entity count as observed by the auditor.",
		}),
		ReadingDrift: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "infrasight_drift_readings",
			Help: "Legacy minus target reading count as observed by the auditor.",
		}),
	}
	reg.MustRegister(m.ReadingsInserted, m.ReadingsRejected, m.SecondaryFailures, m.EntityDrift, m.ReadingDrift)
	return m
}
