package telemetry

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	tel, err := Setup(context.Background(), "", "test-service")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	base := slog.NewTextHandler(io.Discard, nil)
	if tel.LogHandler(base) != slog.Handler(base) {
		t.Errorf("log handler should be unchanged without endpoint")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}

type recordingSpanExporter struct{ shutdown bool }

func (e *recordingSpanExporter) ExportSpans(context.Context, []sdktrace.ReadOnlySpan) error {
	return nil
}

func (e *recordingSpanExporter) Shutdown(context.Context) error {
	e.shutdown = true
	return nil
}

type discardLogExporter struct{}

func (discardLogExporter) Export(context.Context, []sdklog.Record) error { return nil }
func (discardLogExporter) Shutdown(context.Context) error                  { return nil }
func (discardLogExporter) ForceFlush(context.Context) error                { return nil }

func localExporters(spans *recordingSpanExporter, reader sdkmetric.Reader) exporters {
	return exporters{
		trace:  func(context.Context) (sdktrace.SpanExporter, error) { return spans, nil },
		metric: func(context.Context) (sdkmetric.Reader, error) { return reader, nil },
		log:    func(context.Context) (sdklog.Exporter, error) { return discardLogExporter{}, nil },
	}
}

func TestSetup_CreatesProviders(t *testing.T) {
	ctx := context.Background()
	spans := &recordingSpanExporter{}
	tel, err := setup(ctx, "test-service", localExporters(spans, sdkmetric.NewManualReader()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tel.LogHandler(slog.NewTextHandler(io.Discard, nil)).(fanout); !ok {
		t.Errorf("log handler should fan out to OTLP")
	}
	if err := tel.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if !spans.shutdown {
		t.Errorf("span exporter should be shut down")
	}
}

func TestSetup_ShutsDownRegisteredProvidersOnFailure(t *testing.T) {
	ctx := context.Background()
	spans := &recordingSpanExporter{}
	exp := localExporters(spans, sdkmetric.NewManualReader())
	boom := errors.New("log exporter unavailable")
	exp.log = func(context.Context) (sdklog.Exporter, error) { return nil, boom }

	tel, err := setup(ctx, "test-service", exp)
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if tel != nil {
		t.Errorf("telemetry should be nil on failure")
	}
	if !spans.shutdown {
		t.Errorf("tracer provider should be shut down when log setup fails")
	}
}

func TestSetup_MeterProviderCollectsLatency(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	tel, err := setup(ctx, "test-service", localExporters(&recordingSpanExporter{}, reader))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	m, err := NewMetrics()
	if err != nil {
		t.Fatalf("NewMetrics failed: %v", err)
	}
	m.RecordLatency(ctx, "/damage", 15*time.Millisecond)
	m.IncrementCounter(ctx, "damage.applied", 1)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect failed: %v", err)
	}
	var latency, counter bool
	for _, sm := range rm.ScopeMetrics {
		for _, md := range sm.Metrics {
			switch md.Name {
			case "request.latency":
				h, ok := md.Data.(metricdata.Histogram[float64])
				latency = ok && len(h.DataPoints) == 1 && h.DataPoints[0].Count == 1
			case "damage.applied":
				counter = true
			}
		}
	}
	if !latency {
		t.Errorf("request.latency histogram not collected: %+v", rm.ScopeMetrics)
	}
	if !counter {
		t.Errorf("damage.applied counter not collected")
	}
}

func TestFanout_WritesToAllEnabledHandlers(t *testing.T) {
	var info, debug bytes.Buffer
	h := fanout{
		slog.NewTextHandler(&info, &slog.HandlerOptions{Level: slog.LevelInfo}),
		slog.NewTextHandler(&debug, &slog.HandlerOptions{Level: slog.LevelDebug}),
	}
	logger := slog.New(h).With("peer", 1)
	logger.Debug("only debug")
	logger.Info("both")

	if strings.Contains(info.String(), "only debug") || !strings.Contains(info.String(), "both") {
		t.Errorf("info handler got %q", info.String())
	}
	if !strings.Contains(debug.String(), "only debug") || !strings.Contains(debug.String(), "peer=1") {
		t.Errorf("debug handler got %q", debug.String())
	}
}

func TestMetrics_CachesCounters(t *testing.T) {
	m, err := NewMetricsWithProvider(noop.NewMeterProvider())
	if err != nil {
		t.Fatalf("NewMetricsWithProvider failed: %v", err)
	}
	ctx := context.Background()
	m.RecordLatency(ctx, "damage", 3*time.Millisecond)
	m.IncrementCounter(ctx, "requests.damage", 1)
	m.IncrementCounter(ctx, "requests.damage", 1)
	m.IncrementCounter(ctx, "requests.debug", 1)

	if len(m.counters) != 2 {
		t.Errorf("counters = %d, want 2", len(m.counters))
	}
}

func TestNewMetricsWithProvider_RequiresProvider(t *testing.T) {
	if _, err := NewMetricsWithProvider(nil); err == nil {
		t.Fatalf("expected error for nil provider")
	}
}
