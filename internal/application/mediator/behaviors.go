package mediator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// outcome is implemented by shared.Result and shared.ValueResult
type outcome interface {
	Succeeded() bool
	String() string
}

func succeeded(out any, err error) bool {
	if err != nil {
		return false
	}
	if o, ok := out.(outcome); ok {
		return o.Succeeded()
	}
	return true
}

// LoggingBehavior logs every request with its duration and outcome.
// Failed results are warnings, errors are errors.
func LoggingBehavior(logger *zap.Logger) Behavior {
	return func(ctx context.Context, req Request, next Next) (any, error) {
		start := time.Now()
		out, err := next(ctx)
		fields := []zap.Field{
			zap.String("request", req.Name),
			zap.Duration("duration", time.Since(start)),
		}
		if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
			fields = append(fields, zap.String("trace_id", sc.TraceID().String()))
		}

		switch {
		case err != nil:
			logger.Error("Request failed", append(fields, zap.Error(err))...)
		case !succeeded(out, nil):
			if o, ok := out.(outcome); ok {
				fields = append(fields, zap.String("result", o.String()))
			}
			logger.Warn("Request rejected", fields...)
		default:
			logger.Debug("Request handled", fields...)
		}
		return out, err
	}
}

// UseCaseRecorder receives one observation per handled request
type UseCaseRecorder interface {
	RecordUseCaseExecution(useCase string, success bool, duration time.Duration)
}

// MetricsBehavior records request count and latency
func MetricsBehavior(recorder UseCaseRecorder) Behavior {
	return func(ctx context.Context, req Request, next Next) (any, error) {
		start := time.Now()
		out, err := next(ctx)
		recorder.RecordUseCaseExecution(req.Name, succeeded(out, err), time.Since(start))
		return out, err
	}
}

// TracingBehavior opens a span per request
func TracingBehavior(tracerName string) Behavior {
	tracer := otel.Tracer(tracerName)
	return func(ctx context.Context, req Request, next Next) (any, error) {
		ctx, span := tracer.Start(ctx, "mediator."+req.Name, trace.WithAttributes(
			attribute.String("mediator.request", req.Name),
		))
		defer span.End()

		out, err := next(ctx)
		switch {
		case err != nil:
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case !succeeded(out, nil):
			span.SetAttributes(attribute.Bool("mediator.rejected", true))
		}
		return out, err
	}
}

// RecoveryBehavior turns a handler panic into an error
func RecoveryBehavior(logger *zap.Logger) Behavior {
	return func(ctx context.Context, req Request, next Next) (out any, err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("Request panicked",
					zap.String("request", req.Name),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()),
				)
				out = nil
				err = fmt.Errorf("mediator: %s panicked: %v", req.Name, r)
			}
		}()
		return next(ctx)
	}
}
