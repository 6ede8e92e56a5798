package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DashboardMetrics holds the application-specific instruments. Every
// recording method is nil-safe so tests can pass a nil receiver.
type DashboardMetrics struct {
	DatasetLoadsTotal   metric.Int64Counter
	DatasetLoadDuration metric.Float64Histogram
	RecomputationsTotal metric.Int64Counter

	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
}

// CreateDashboardMetrics registers the dashboard instruments on the
// given meter.
func CreateDashboardMetrics(meter metric.Meter) (*DashboardMetrics, error) {
	loads, err := meter.Int64Counter(
		"dataset_loads_total",
		metric.WithDescription("Total number of dataset load attempts"),
	)
	if err != nil {
		return nil, err
	}

	loadDuration, err := meter.Float64Histogram(
		"dataset_load_duration_seconds",
		metric.WithDescription("Dataset decode duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	recomputations, err := meter.Int64Counter(
		"dashboard_recomputations_total",
		metric.WithDescription("Total number of filter/aggregation passes"),
	)
	if err != nil {
		return nil, err
	}

	httpRequests, err := meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	)
	if err != nil {
		return nil, err
	}

	httpDuration, err := meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &DashboardMetrics{
		DatasetLoadsTotal:   loads,
		DatasetLoadDuration: loadDuration,
		RecomputationsTotal: recomputations,
		HTTPRequestsTotal:   httpRequests,
		HTTPRequestDuration: httpDuration,
	}, nil
}

// RecordLoad records one dataset load attempt.
func (m *DashboardMetrics) RecordLoad(ctx context.Context, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "failure"
	}
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.DatasetLoadsTotal.Add(ctx, 1, attrs)
	m.DatasetLoadDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordRecompute records one filter/aggregation pass.
func (m *DashboardMetrics) RecordRecompute(ctx context.Context) {
	if m == nil {
		return
	}
	m.RecomputationsTotal.Add(ctx, 1)
}

// RecordHTTPRequest records one completed HTTP request.
func (m *DashboardMetrics) RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("path", path),
		attribute.Int("status", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
