package otel

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "promanage/backend"

// AuthMetrics counts session outcomes. A nil *AuthMetrics records nothing.
type AuthMetrics struct {
	logins    metric.Int64Counter
	refreshes metric.Int64Counter
	failures  metric.Int64Counter
}

// NewAuthMetrics registers the auth counters on mp.
func NewAuthMetrics(mp metric.MeterProvider) (*AuthMetrics, error) {
	m := mp.Meter(meterName)
	logins, err := m.Int64Counter("promanage.auth.logins", metric.WithDescription("Successful logins and registrations"))
	if err != nil {
		return nil, err
	}
	refreshes, err := m.Int64Counter("promanage.auth.refreshes", metric.WithDescription("Access tokens issued from a refresh token"))
	if err != nil {
		return nil, err
	}
	failures, err := m.Int64Counter("promanage.auth.failures", metric.WithDescription("Rejected session operations"))
	if err != nil {
		return nil, err
	}
	return &AuthMetrics{logins: logins, refreshes: refreshes, failures: failures}, nil
}

// Login records a session start; method is "login" or "register".
func (m *AuthMetrics) Login(ctx context.Context, method string) {
	if m == nil {
		return
	}
	m.logins.Add(ctx, 1, metric.WithAttributes(attribute.String("method", method)))
}

// Refresh records a successful refresh.
func (m *AuthMetrics) Refresh(ctx context.Context) {
	if m == nil {
		return
	}
	m.refreshes.Add(ctx, 1)
}

// Failure records a rejected operation such as "login" or "refresh".
func (m *AuthMetrics) Failure(ctx context.Context, operation string) {
	if m == nil {
		return
	}
	m.failures.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}
