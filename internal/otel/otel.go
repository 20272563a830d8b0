package otel

import (
	"context"
	"errors"
	"sync"
	"time"

	eventbus "github.com/hanpama/scalarlink/internal/eventbus"
	events "github.com/hanpama/scalarlink/internal/events"
	reqid "github.com/hanpama/scalarlink/internal/reqid"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrNoBus is returned by Setup when telemetry is requested before a global
// event bus is installed.
var ErrNoBus = errors.New("otel: no event bus installed")

// Setup configures OpenTelemetry and attaches subscribers to the global
// event bus. If endpoint is empty, no telemetry is configured.
func Setup(endpoint, service string) (func(context.Context) error, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	if eventbus.Default() == nil {
		return nil, ErrNoBus
	}
	exp, err := otlptracegrpc.New(context.Background(),
		otlptracegrpc.WithEndpoint(endpoint),
		otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(service),
		)),
	)
	otel.SetTracerProvider(tp)

	sub := &subscriber{tracer: otel.Tracer("scalarlink")}
	unsubscribe := sub.register(eventbus.Default())

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

type subscriber struct {
	tracer    trace.Tracer
	opSpans   spanStack
	httpSpans spanStack
}

// spanStack holds the open spans of each request id. Chained links share a
// request id, so their operation spans nest.
type spanStack struct {
	mu    sync.Mutex
	spans map[int64][]trace.Span
}

func (s *spanStack) push(rid int64, span trace.Span) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.spans == nil {
		s.spans = make(map[int64][]trace.Span)
	}
	s.spans[rid] = append(s.spans[rid], span)
}

func (s *spanStack) top(rid int64) (trace.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.spans[rid]
	if len(st) == 0 {
		return nil, false
	}
	return st[len(st)-1], true
}

func (s *spanStack) pop(rid int64) (trace.Span, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.spans[rid]
	if len(st) == 0 {
		return nil, false
	}
	span := st[len(st)-1]
	if len(st) == 1 {
		delete(s.spans, rid)
	} else {
		s.spans[rid] = st[:len(st)-1]
	}
	return span, true
}

func (s *subscriber) register(b *eventbus.Bus) (unsubscribe func()) {
	unsubs := []func(){
		eventbus.SubscribeTo(b, func(ctx context.Context, e events.OperationStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if outer, ok := s.opSpans.top(rid); ok {
				parent = trace.ContextWithSpan(ctx, outer)
			}
			_, span := s.tracer.Start(parent, "scalarlink.operation", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
				attribute.Int("graphql.variable_count", e.Variables),
			)
			s.opSpans.push(rid, span)
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.OperationFinish) {
			rid, _ := reqid.FromContext(ctx)
			span, ok := s.opSpans.pop(rid)
			if !ok {
				return
			}
			span.SetAttributes(
				attribute.Int("scalarlink.path_count", e.Paths),
				attribute.Int("graphql.error_count", e.Errors),
			)
			endWithError(span, e.Err)
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.HTTPClientStart) {
			rid, _ := reqid.FromContext(ctx)
			parent := ctx
			if op, ok := s.opSpans.top(rid); ok {
				parent = trace.ContextWithSpan(ctx, op)
			}
			_, span := s.tracer.Start(parent, "http.client", trace.WithSpanKind(trace.SpanKindClient))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				semconv.HTTPURLKey.String(e.Request.URL.String()),
			)
			s.httpSpans.push(rid, span)
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.HTTPClientFinish) {
			rid, _ := reqid.FromContext(ctx)
			span, ok := s.httpSpans.pop(rid)
			if !ok {
				return
			}
			if e.Status != 0 {
				span.SetAttributes(semconv.HTTPStatusCodeKey.Int(e.Status))
			}
			endWithError(span, e.Err)
		}),

		eventbus.SubscribeTo(b, func(ctx context.Context, e events.PathsResolved) {
			end := time.Now()
			_, span := s.tracer.Start(ctx, "scalarlink.resolve_paths", trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.Int("scalarlink.operation_count", e.Operations),
				attribute.Int("scalarlink.fragment_count", e.Fragments),
				attribute.Int("scalarlink.path_count", e.Paths),
			)
			span.End(trace.WithTimestamp(end))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func endWithError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
