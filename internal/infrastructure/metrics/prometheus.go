// Package metrics exposes service metrics to Prometheus.
package metrics

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var latencyBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Prometheus implements every recorder interface the application declares
type Prometheus struct {
	registry *prometheus.Registry

	useCaseTotal     *prometheus.CounterVec
	useCaseDuration  *prometheus.HistogramVec
	httpDuration     *prometheus.HistogramVec
	orderEvents      *prometheus.CounterVec
	closedOrderTotal prometheus.Histogram
	outboxEntries    *prometheus.CounterVec
}

// NewPrometheus registers the collectors on a private registry
func NewPrometheus(namespace, serviceName string) *Prometheus {
	labels := prometheus.Labels{"service": serviceName}
	m := &Prometheus{
		registry: prometheus.NewRegistry(),
		useCaseTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "usecase_total",
			Help:        "Total number of use case executions.",
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		useCaseDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "usecase_duration_seconds",
			Help:        "Use case execution latency.",
			Buckets:     latencyBuckets,
			ConstLabels: labels,
		}, []string{"use_case", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency.",
			Buckets:     latencyBuckets,
			ConstLabels: labels,
		}, []string{"method", "path", "status_code"}),
		orderEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "sales_order_events_total",
			Help:        "Sales order domain events delivered.",
			ConstLabels: labels,
		}, []string{"event_type"}),
		closedOrderTotal: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "sales_order_closed_amount",
			Help:        "Total amount of closed sales orders.",
			Buckets:     []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			ConstLabels: labels,
		}),
		outboxEntries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "outbox_entries_processed_total",
			Help:        "Outbox entries processed by outcome.",
			ConstLabels: labels,
		}, []string{"event_type", "outcome"}),
	}

	m.registry.MustRegister(
		m.useCaseTotal,
		m.useCaseDuration,
		m.httpDuration,
		m.orderEvents,
		m.closedOrderTotal,
		m.outboxEntries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry returns the registry, for tests and extra collectors
func (p *Prometheus) Registry() *prometheus.Registry {
	return p.registry
}

// Handler serves the scrape endpoint
func (p *Prometheus) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// RegisterDBStats exports connection pool statistics
func (p *Prometheus) RegisterDBStats(db *sql.DB, dbName string) error {
	return p.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// RegisterCounterFunc exports a monotonically increasing value read on scrape
func (p *Prometheus) RegisterCounterFunc(name, help string, fn func() float64) error {
	return p.registry.Register(prometheus.NewCounterFunc(prometheus.CounterOpts{
		Name: name,
		Help: help,
	}, fn))
}

func (p *Prometheus) RecordUseCaseExecution(useCase string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "failure"
	}
	p.useCaseTotal.WithLabelValues(useCase, status).Inc()
	p.useCaseDuration.WithLabelValues(useCase, status).Observe(duration.Seconds())
}

func (p *Prometheus) ObserveHTTPRequestDuration(method, path, code string, duration float64) {
	p.httpDuration.WithLabelValues(method, path, code).Observe(duration)
}

func (p *Prometheus) RecordOrderEvent(eventType string) {
	p.orderEvents.WithLabelValues(eventType).Inc()
}

func (p *Prometheus) ObserveClosedOrderTotal(total float64) {
	p.closedOrderTotal.Observe(total)
}

func (p *Prometheus) OutboxEntryProcessed(eventType, outcome string) {
	p.outboxEntries.WithLabelValues(eventType, outcome).Inc()
}
