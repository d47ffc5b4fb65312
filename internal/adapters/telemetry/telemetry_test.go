package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.trai.ch/backoffice/internal/adapters/telemetry"
	"go.trai.ch/backoffice/internal/core/ports"
	"go.trai.ch/backoffice/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestOTelTracer_RecordsAttributesAndErrors(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := telemetry.NewOTelTracerFrom(tp, "test")

	_, span := tracer.Start(context.Background(), "GET /products",
		ports.WithAttribute("http.method", "GET"),
		ports.WithAttribute("attempt", 1),
	)
	span.SetAttribute("http.status_code", 500)
	span.SetAttribute("retryable", true)
	span.SetAttribute("elapsed", 1500*time.Millisecond)
	span.RecordError(errors.New("server error"))
	span.RecordError(nil)
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)
	got := ended[0]

	assert.Equal(t, "GET /products", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "server error", got.Status().Description)

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	assert.Equal(t, "GET", attrs["http.method"].AsString())
	assert.Equal(t, int64(1), attrs["attempt"].AsInt64())
	assert.Equal(t, int64(500), attrs["http.status_code"].AsInt64())
	assert.True(t, attrs["retryable"].AsBool())
	assert.Equal(t, int64(1500), attrs["elapsed_ms"].AsInt64())
}

func TestBridge_OnEnd(t *testing.T) {
	t.Run("success logs at debug", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockLogger := mocks.NewMockLogger(ctrl)
		mockLogger.EXPECT().Debug(gomock.Any()).Do(func(msg string) {
			assert.Contains(t, msg, "fetch products took")
		}).Times(1)

		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockLogger)))
		_, span := tp.Tracer("test").Start(context.Background(), "fetch products")
		span.End()
	})

	t.Run("failure logs a warning", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockLogger := mocks.NewMockLogger(ctrl)
		mockLogger.EXPECT().Warn(gomock.Any()).Do(func(msg string) {
			assert.Contains(t, msg, "fetch products failed after")
			assert.Contains(t, msg, "timeout")
		}).Times(1)

		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(mockLogger)))
		_, span := tp.Tracer("test").Start(context.Background(), "fetch products")
		span.SetStatus(codes.Error, "timeout")
		span.End()
	})

	t.Run("nil logger", func(_ *testing.T) {
		tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(telemetry.NewBridge(nil)))
		_, span := tp.Tracer("test").Start(context.Background(), "fetch products")
		span.End()
	})
}

func TestBridge_FlushAndShutdown(t *testing.T) {
	bridge := telemetry.NewBridge(nil)
	require.NoError(t, bridge.ForceFlush(context.Background()))
	require.NoError(t, bridge.Shutdown(context.Background()))
}

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "test-span", ports.WithAttribute("k", "v"))
	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttribute("key", "value")
	span.RecordError(errors.New("test error"))
	span.End()
}
