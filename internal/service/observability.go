package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("casetree.service")

// UseCaseEvent captures lightweight execution telemetry for a service use case.
type UseCaseEvent struct {
	Name          string
	CorrelationID string
	Duration      time.Duration
	Success       bool
	Err           error
	Fields        map[string]any
	StartedAt     time.Time
}

// UseCaseObserver receives use-case execution events.
type UseCaseObserver interface {
	ObserveUseCase(ctx context.Context, event UseCaseEvent)
}

// NoopUseCaseObserver ignores all events.
type NoopUseCaseObserver struct{}

func (NoopUseCaseObserver) ObserveUseCase(context.Context, UseCaseEvent) {}

type logUseCaseObserver struct {
	logger *slog.Logger
}

// NewLogUseCaseObserver writes service use-case events to the provided writer.
func NewLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

// NewJSONLogUseCaseObserver is NewLogUseCaseObserver with JSON output.
func NewJSONLogUseCaseObserver(w io.Writer) UseCaseObserver {
	if w == nil {
		return NoopUseCaseObserver{}
	}
	return &logUseCaseObserver{
		logger: slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})),
	}
}

func (o *logUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	attrs := make([]any, 0, 10+len(event.Fields)*2)
	attrs = append(attrs,
		"use_case", event.Name,
		"correlation_id", event.CorrelationID,
		"duration_ms", event.Duration.Milliseconds(),
		"success", event.Success,
	)
	for k, v := range event.Fields {
		attrs = append(attrs, k, v)
	}
	if event.Err != nil {
		attrs = append(attrs, "error", event.Err.Error())
		o.logger.ErrorContext(ctx, "service_use_case", attrs...)
		return
	}
	o.logger.InfoContext(ctx, "service_use_case", attrs...)
}

// rowFields are event fields that count rows written by a use case.
var rowFields = []string{"paths_rewritten", "orders_changed", "nodes_deleted", "keywords_deleted"}

type metricsUseCaseObserver struct {
	duration *prometheus.HistogramVec
	failures *prometheus.CounterVec
	rows     *prometheus.CounterVec
}

// NewMetricsUseCaseObserver registers use-case metrics with reg and records
// every event into them.
func NewMetricsUseCaseObserver(reg prometheus.Registerer) UseCaseObserver {
	factory := promauto.With(reg)
	return &metricsUseCaseObserver{
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "casetree",
			Subsystem: "service",
			Name:      "use_case_duration_seconds",
			Help:      "Service use-case latency in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"use_case", "status"}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casetree",
			Subsystem: "service",
			Name:      "use_case_failures_total",
			Help:      "Total failed service use cases",
		}, []string{"use_case"}),
		rows: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "casetree",
			Subsystem: "service",
			Name:      "rows_written_total",
			Help:      "Rows rewritten by structural maintenance, by kind",
		}, []string{"use_case", "kind"}),
	}
}

func (o *metricsUseCaseObserver) ObserveUseCase(_ context.Context, event UseCaseEvent) {
	status := "success"
	if !event.Success {
		status = "error"
		o.failures.WithLabelValues(event.Name).Inc()
	}
	o.duration.WithLabelValues(event.Name, status).Observe(event.Duration.Seconds())

	for _, kind := range rowFields {
		if n, ok := event.Fields[kind]; ok {
			if v, ok := toFloat(n); ok && v > 0 {
				o.rows.WithLabelValues(event.Name, kind).Add(v)
			}
		}
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

type multiUseCaseObserver []UseCaseObserver

// NewMultiUseCaseObserver fans every event out to all non-nil observers.
func NewMultiUseCaseObserver(observers ...UseCaseObserver) UseCaseObserver {
	var out multiUseCaseObserver
	for _, o := range observers {
		if o != nil {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return NoopUseCaseObserver{}
	}
	return out
}

func (m multiUseCaseObserver) ObserveUseCase(ctx context.Context, event UseCaseEvent) {
	for _, o := range m {
		o.ObserveUseCase(ctx, event)
	}
}

func useCaseObserverOrNoop(observers []UseCaseObserver) UseCaseObserver {
	for _, obs := range observers {
		if obs != nil {
			return obs
		}
	}
	return NoopUseCaseObserver{}
}

// useCase tracks one running use case: its span, fields and start time.
type useCase struct {
	name      string
	startedAt time.Time
	fields    map[string]any
	span      trace.Span
	observer  UseCaseObserver
}

func beginUseCase(ctx context.Context, observer UseCaseObserver, name string) (context.Context, *useCase) {
	ctx, span := tracer.Start(ctx, "service."+name)
	return ctx, &useCase{
		name:      name,
		startedAt: time.Now().UTC(),
		fields:    map[string]any{},
		span:      span,
		observer:  observer,
	}
}

func (u *useCase) set(key string, value any) {
	u.fields[key] = value
}

func (u *useCase) end(ctx context.Context, err error) {
	for k, v := range u.fields {
		switch val := v.(type) {
		case int:
			u.span.SetAttributes(attribute.Int(k, val))
		case int64:
			u.span.SetAttributes(attribute.Int64(k, val))
		case bool:
			u.span.SetAttributes(attribute.Bool(k, val))
		default:
			u.span.SetAttributes(attribute.String(k, fmt.Sprint(val)))
		}
	}
	if err != nil {
		u.span.RecordError(err)
		u.span.SetStatus(codes.Error, err.Error())
	} else {
		u.span.SetStatus(codes.Ok, "")
	}
	u.span.End()

	u.observer.ObserveUseCase(ctx, UseCaseEvent{
		Name:          u.name,
		CorrelationID: uuid.NewString(),
		StartedAt:     u.startedAt,
		Duration:      time.Since(u.startedAt),
		Success:       err == nil,
		Err:           err,
		Fields:        u.fields,
	})
}
