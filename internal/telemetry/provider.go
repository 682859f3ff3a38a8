package telemetry

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Telemetry はOTLPへ送るトレース、メトリクス、ログのプロバイダを保持します。
type Telemetry struct {
	serviceName string
	logs        *sdklog.LoggerProvider
	shutdowns   []func(context.Context) error
}

// exporters は送信先ごとのエクスポータを作る関数です。
type exporters struct {
	trace  func(ctx context.Context) (sdktrace.SpanExporter, error)
	metric func(ctx context.Context) (sdkmetric.Reader, error)
	log    func(ctx context.Context) (sdklog.Exporter, error)
}

func otlpExporters(endpoint string) exporters {
	return exporters{
		trace: func(ctx context.Context) (sdktrace.SpanExporter, error) {
			return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
		},
		metric: func(ctx context.Context) (sdkmetric.Reader, error) {
			exp, err := otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithEndpointURL(endpoint))
			if err != nil {
				return nil, err
			}
			return sdkmetric.NewPeriodicReader(exp), nil
		},
		log: func(ctx context.Context) (sdklog.Exporter, error) {
			return otlploggrpc.New(ctx, otlploggrpc.WithEndpointURL(endpoint))
		},
	}
}

// Setup はOTLPへのトレース、メトリクス、ログの送信を初期化します。
//
// endpoint が空の場合は何も登録しません。その場合 LogHandler は渡されたハンドラをそのまま返し、
// Shutdown は何もしません。途中で失敗した場合は登録済みのプロバイダを終了してからエラーを返します。
func Setup(ctx context.Context, endpoint, serviceName string) (*Telemetry, error) {
	if endpoint == "" {
		return &Telemetry{serviceName: serviceName}, nil
	}
	return setup(ctx, serviceName, otlpExporters(endpoint))
}

func setup(ctx context.Context, serviceName string, exp exporters) (*Telemetry, error) {
	t := &Telemetry{serviceName: serviceName}
	fail := func(err error) (*Telemetry, error) {
		return nil, errors.Join(err, t.Shutdown(ctx))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return fail(err)
	}

	traceExporter, err := exp.trace(ctx)
	if err != nil {
		return fail(err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.shutdowns = append(t.shutdowns, tp.Shutdown)

	reader, err := exp.metric(ctx)
	if err != nil {
		return fail(err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(reader),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)
	t.shutdowns = append(t.shutdowns, mp.Shutdown)

	logExporter, err := exp.log(ctx)
	if err != nil {
		return fail(err)
	}
	t.logs = sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	t.shutdowns = append(t.shutdowns, t.logs.Shutdown)

	return t, nil
}

// LogHandler はログ送信が有効なら base とOTLPの両方へ書くハンドラを返します。
func (t *Telemetry) LogHandler(base slog.Handler) slog.Handler {
	if t.logs == nil {
		return base
	}
	return fanout{base, otelslog.NewHandler(t.serviceName, otelslog.WithLoggerProvider(t.logs))}
}

// Shutdown は未送信のスパンとログを書き出します。
func (t *Telemetry) Shutdown(ctx context.Context) error {
	var errs []error
	for i := len(t.shutdowns) - 1; i >= 0; i-- {
		errs = append(errs, t.shutdowns[i](ctx))
	}
	return errors.Join(errs...)
}

// fanout は全てのハンドラへ同じレコードを渡します。
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
