package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "thirdpersonmp/internal/telemetry"

// Metrics はOTelのメーター上でレイテンシとカウンタを記録します。
type Metrics struct {
	latency metric.Float64Histogram
	meter   metric.Meter

	mu       sync.Mutex
	counters map[string]metric.Int64Counter
}

// NewMetrics はグローバルのMeterProviderからMetricsを作成します。
func NewMetrics() (*Metrics, error) {
	return NewMetricsWithProvider(otel.GetMeterProvider())
}

func NewMetricsWithProvider(provider metric.MeterProvider) (*Metrics, error) {
	if provider == nil {
		return nil, errors.New("telemetry: meter provider is required")
	}
	meter := provider.Meter(meterName)
	latency, err := meter.Float64Histogram("request.latency",
		metric.WithDescription("request latency by endpoint"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("create latency histogram: %w", err)
	}
	return &Metrics{
		latency:  latency,
		meter:    meter,
		counters: make(map[string]metric.Int64Counter),
	}, nil
}

func (m *Metrics) RecordLatency(ctx context.Context, endpoint string, d time.Duration) {
	m.latency.Record(ctx, float64(d)/float64(time.Millisecond),
		metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

func (m *Metrics) IncrementCounter(ctx context.Context, name string, delta int) {
	counter, err := m.counter(name)
	if err != nil {
		otel.Handle(err)
		return
	}
	counter.Add(ctx, int64(delta))
}

func (m *Metrics) counter(name string) (metric.Int64Counter, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.counters[name]; ok {
		return c, nil
	}
	c, err := m.meter.Int64Counter(name)
	if err != nil {
		return nil, err
	}
	m.counters[name] = c
	return c, nil
}
