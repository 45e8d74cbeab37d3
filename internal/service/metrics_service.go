package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/college-icrs/icrs-api/internal/models"
)

// Notification outcomes recorded by MetricsService.
const (
	NotificationEnqueued = "enqueued"
	NotificationSent     = "sent"
	NotificationFailed   = "failed"
	NotificationDropped  = "dropped"
)

// MetricsService encapsulates Prometheus instrumentation. A nil *MetricsService is a no-op.
type MetricsService struct {
	registry          *prometheus.Registry
	handler           http.Handler
	requestDuration   *prometheus.HistogramVec
	requestTotal      *prometheus.CounterVec
	grievancesCreated *prometheus.CounterVec
	transitions       *prometheus.CounterVec
	notifications     *prometheus.CounterVec
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	grievancesCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icrs_grievances_created_total",
		Help: "Grievances created, by routing rule that picked the assignee",
	}, []string{"route"})

	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icrs_status_transitions_total",
		Help: "Grievance status transitions recorded in the ledger",
	}, []string{"from", "to"})

	notifications := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "icrs_notifications_total",
		Help: "Notification tasks by kind and outcome",
	}, []string{"kind", "outcome"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, grievancesCreated, transitions, notifications, goroutines)

	return &MetricsService{
		registry:          registry,
		handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:   requestDuration,
		requestTotal:      requestTotal,
		grievancesCreated: grievancesCreated,
		transitions:       transitions,
		notifications:     notifications,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// RegisterQueueDepth exposes the pending notification count as a gauge.
func (m *MetricsService) RegisterQueueDepth(depth func() float64) error {
	if m == nil || depth == nil {
		return nil
	}
	return m.registry.Register(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "icrs_notification_queue_depth",
		Help: "Notifications waiting for a worker",
	}, depth))
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordGrievanceCreated counts a new grievance by routing rule.
func (m *MetricsService) RecordGrievanceCreated(source RouteSource) {
	if m == nil {
		return
	}
	m.grievancesCreated.WithLabelValues(string(source)).Inc()
}

// RecordTransition counts a status transition.
func (m *MetricsService) RecordTransition(from, to models.GrievanceStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// RecordNotification counts a notification outcome.
func (m *MetricsService) RecordNotification(kind models.NotificationKind, outcome string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(kind), outcome).Inc()
}
