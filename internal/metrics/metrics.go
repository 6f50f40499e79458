package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ngxmgr"

// Collector owns every prometheus metric of the process.
// A nil *Collector is valid and records nothing, so callers and tests
// may run without metrics.
type Collector struct {
	registry *prometheus.Registry

	probesTotal   *prometheus.CounterVec
	probeDuration *prometheus.HistogramVec
	upstreamUp    *prometheus.GaugeVec

	validationsTotal *prometheus.CounterVec
	activationsTotal *prometheus.CounterVec

	certDaysRemaining *prometheus.GaugeVec
	certRenewDue      *prometheus.GaugeVec
	certScansTotal    *prometheus.CounterVec
}

// NewCollector registers all metrics on registry. A nil registry gets a fresh one
// with the go and process collectors attached.
func NewCollector(registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	c := &Collector{
		registry: registry,
		probesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "probes_total",
			Help:      "Upstream health probes by result.",
		}, []string{"upstream", "result"}),
		probeDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "probe_duration_seconds",
			Help:      "Upstream health probe latency.",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"upstream"}),
		upstreamUp: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "upstream_up",
			Help:      "1 when the last probe of the upstream was healthy.",
		}, []string{"upstream"}),
		validationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "validations_total",
			Help:      "Candidate configuration checks by outcome.",
		}, []string{"outcome"}),
		activationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "config",
			Name:      "activations_total",
			Help:      "Live configuration swaps by outcome.",
		}, []string{"outcome"}),
		certDaysRemaining: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "certificate",
			Name:      "days_remaining",
			Help:      "Whole days until the certificate expires.",
		}, []string{"name"}),
		certRenewDue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "certificate",
			Name:      "renew_due",
			Help:      "1 when the certificate is eligible for renewal.",
		}, []string{"name"}),
		certScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "certificate",
			Name:      "scans_total",
			Help:      "Certificate scanner runs by outcome.",
		}, []string{"outcome"}),
	}

	registry.MustRegister(
		c.probesTotal,
		c.probeDuration,
		c.upstreamUp,
		c.validationsTotal,
		c.activationsTotal,
		c.certDaysRemaining,
		c.certRenewDue,
		c.certScansTotal,
	)
	return c
}

// Registry returns the registry metrics are registered on
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// Handler serves the prometheus exposition format
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}

// RecordProbe records one upstream probe
func (c *Collector) RecordProbe(upstream, result string, healthy bool, duration time.Duration) {
	if c == nil {
		return
	}
	c.probesTotal.WithLabelValues(upstream, result).Inc()
	c.probeDuration.WithLabelValues(upstream).Observe(duration.Seconds())
	if healthy {
		c.upstreamUp.WithLabelValues(upstream).Set(1)
	} else {
		c.upstreamUp.WithLabelValues(upstream).Set(0)
	}
}

// RecordValidation counts a candidate check ("accepted", "rejected", "error")
func (c *Collector) RecordValidation(outcome string) {
	if c == nil {
		return
	}
	c.validationsTotal.WithLabelValues(outcome).Inc()
}

// RecordActivation counts a live swap ("activated", "reload_failed", "error")
func (c *Collector) RecordActivation(outcome string) {
	if c == nil {
		return
	}
	c.activationsTotal.WithLabelValues(outcome).Inc()
}

// RecordCertificate sets the expiry gauges of one certificate
func (c *Collector) RecordCertificate(name string, daysRemaining int, renewDue bool) {
	if c == nil {
		return
	}
	c.certDaysRemaining.WithLabelValues(name).Set(float64(daysRemaining))
	if renewDue {
		c.certRenewDue.WithLabelValues(name).Set(1)
	} else {
		c.certRenewDue.WithLabelValues(name).Set(0)
	}
}

// RecordScan counts a scanner run ("ok", "error")
func (c *Collector) RecordScan(outcome string) {
	if c == nil {
		return
	}
	c.certScansTotal.WithLabelValues(outcome).Inc()
}
