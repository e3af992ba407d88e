package otel

import (
	"context"
	"testing"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestNewProviders_EmptyEndpoint(t *testing.T) {
	ctx := context.Background()
	for _, endpoint := range []string{"", "   "} {
		p, err := NewProviders(ctx, endpoint, "promanage-test", false)
		if err != nil {
			t.Fatalf("NewProviders(%q): %v", endpoint, err)
		}
		if p.TracerProvider == nil || p.MeterProvider == nil || p.LoggerProvider == nil {
			t.Fatalf("providers = %+v, want all set", p)
		}
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
		if err := p.Shutdown(ctx); err != nil {
			t.Errorf("second Shutdown: %v", err)
		}
	}
}

func TestNewProviders_InvalidEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
	}{
		{"no scheme or host", "://invalid"},
		{"bad ipv6", "http://[invalid"},
		{"missing host", "http://"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewProviders(context.Background(), tt.endpoint, "promanage-test", false); err == nil {
				t.Errorf("NewProviders(%q) should fail", tt.endpoint)
			}
		})
	}
}

func TestNewProviders_ValidEndpoints(t *testing.T) {
	// Exporters dial lazily, so construction succeeds without a collector.
	for _, endpoint := range []string{"localhost:4317", "http://localhost:4317/v1/traces", "https://collector:4317"} {
		p, err := NewProviders(context.Background(), endpoint, "promanage-test", false)
		if err != nil {
			t.Logf("NewProviders(%q): %v", endpoint, err)
			continue
		}
		_ = p.Shutdown(context.Background())
	}
}

func TestSetGlobal(t *testing.T) {
	oldTP, oldMP := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(oldTP)
		otel.SetMeterProvider(oldMP)
	})

	tp := sdktrace.NewTracerProvider()
	defer func() { _ = tp.Shutdown(context.Background()) }()
	(&Providers{TracerProvider: tp}).SetGlobal()
	if otel.GetTracerProvider() != tp {
		t.Error("TracerProvider should be installed globally")
	}
	if otel.GetMeterProvider() != oldMP {
		t.Error("nil MeterProvider must leave the global untouched")
	}
	(&Providers{}).SetGlobal()
}

func TestParseCollector(t *testing.T) {
	tests := []struct {
		endpoint      string
		forceInsecure bool
		target        string
		insecure      bool
	}{
		{"localhost:4317", false, "localhost:4317", true},
		{"http://collector:4317/v1/traces", false, "collector:4317", true},
		{"https://collector:4317", false, "collector:4317", false},
		{"https://collector:4317", true, "collector:4317", true},
	}
	for _, tt := range tests {
		c, err := parseCollector(tt.endpoint, tt.forceInsecure)
		if err != nil {
			t.Fatalf("parseCollector(%q): %v", tt.endpoint, err)
		}
		if c.target != tt.target || c.insecure != tt.insecure {
			t.Errorf("parseCollector(%q, %v) = %+v", tt.endpoint, tt.forceInsecure, c)
		}
	}
}
