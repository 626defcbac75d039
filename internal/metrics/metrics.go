// Package metrics exposes the prometheus instruments for storage operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
)

type Metrics struct {
	Registry *prometheus.Registry

	AssignmentsTotal prometheus.Counter
	ReleasesTotal    prometheus.Counter
	BoxesStoredTotal prometheus.Counter
	BoxesFreedTotal  prometheus.Counter
	ScanTotal        *prometheus.CounterVec
	HTTPDuration     *prometheus.HistogramVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		Registry: reg,
		AssignmentsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warelane_assignments_total",
			Help: "Completed rack assignment batches.",
		}),
		ReleasesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warelane_releases_total",
			Help: "Completed release batches.",
		}),
		BoxesStoredTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warelane_boxes_stored_total",
			Help: "Boxes moved into rack storage.",
		}),
		BoxesFreedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "warelane_boxes_freed_total",
			Help: "Boxes released out of rack storage.",
		}),
		ScanTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "warelane_scans_total",
			Help: "Scanned labels by classified kind.",
		}, []string{"kind"}),
		HTTPDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "warelane_http_request_duration_seconds",
			Help:    "HTTP request latency by route and status.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.AssignmentsTotal, m.ReleasesTotal, m.BoxesStoredTotal, m.BoxesFreedTotal, m.ScanTotal, m.HTTPDuration)
	return m
}

var Module = fx.Module("metrics",
	fx.Provide(New),
)
