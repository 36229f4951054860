package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PrometheusBridge wires an OTel MeterProvider to a Prometheus registry so
// instruments created from its meters surface on the scrape endpoint. Each
// bridge owns an independent registry to avoid collector conflicts when
// several bridges coexist in one process.
type PrometheusBridge struct {
	provider *sdkmetric.MeterProvider
	registry *prometheus.Registry
}

// NewPrometheusBridge creates a bridge with a fresh registry.
func NewPrometheusBridge() (*PrometheusBridge, error) {
	registry := prometheus.NewRegistry()

	exporter, err := promexporter.New(
		promexporter.WithRegisterer(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("create prometheus exporter: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))

	return &PrometheusBridge{provider: provider, registry: registry}, nil
}

// Meter returns a named meter backed by the bridge's provider.
func (b *PrometheusBridge) Meter(name string) metric.Meter {
	return b.provider.Meter(name)
}

// Handler returns the /metrics scrape endpoint for the bridge's registry.
func (b *PrometheusBridge) Handler() http.Handler {
	return promhttp.HandlerFor(b.registry, promhttp.HandlerOpts{})
}

// Shutdown flushes pending metrics and releases provider resources.
func (b *PrometheusBridge) Shutdown(ctx context.Context) error {
	if err := b.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown meter provider: %w", err)
	}

	return nil
}
