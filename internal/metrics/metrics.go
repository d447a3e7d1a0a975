// Package metrics holds the Prometheus collectors exported on the metrics port.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	AuditsSaved      *prometheus.CounterVec
	ActionsGenerated prometheus.Counter
	ImageEdits       *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	ActionsOverdue   prometheus.Gauge
}

// New registers every collector with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		AuditsSaved: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audit5s_audits_saved_total",
			Help: "Audits saved, by operation (create, update).",
		}, []string{"op"}),
		ActionsGenerated: f.NewCounter(prometheus.CounterOpts{
			Name: "audit5s_actions_generated_total",
			Help: "Corrective actions derived from new audits.",
		}),
		ImageEdits: f.NewCounterVec(prometheus.CounterOpts{
			Name: "audit5s_image_edits_total",
			Help: "Image edit requests, by outcome (ok, no_image, error).",
		}, []string{"outcome"}),
		RequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "audit5s_http_request_duration_seconds",
			Help:    "HTTP request latency by route pattern and status code.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "code"}),
		ActionsOverdue: f.NewGauge(prometheus.GaugeOpts{
			Name: "audit5s_actions_overdue",
			Help: "Open actions whose due date has passed, as of the last sweep.",
		}),
	}
}
