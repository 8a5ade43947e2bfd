package otelhelper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/dukex/resumeflow/pkg/otelhelper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanAndSetError(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tracer := provider.Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "step",
		attribute.String(otelhelper.StepNameKey, "parse-profile"))
	otelhelper.SetError(span, errors.New("quota exceeded"), attribute.String(otelhelper.ErrorKindKey, "service"))
	span.End()

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	got := ended[0]
	assert.Equal(t, "step", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Equal(t, "quota exceeded", got.Status().Description)
	assert.Contains(t, got.Attributes(), attribute.String(otelhelper.StepNameKey, "parse-profile"))

	names := make([]string, 0, len(got.Events()))
	for _, event := range got.Events() {
		names = append(names, event.Name)
	}

	assert.Equal(t, []string{"exception", "error_occurred"}, names)
}

func TestSetError_NilError(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tracer := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder)).Tracer("test")

	_, span := otelhelper.StartSpan(context.Background(), tracer, "step")
	otelhelper.SetError(span, nil)
	span.End()

	got := recorder.Ended()[0]
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Len(t, got.Events(), 1)
}

func TestNoopTracer(t *testing.T) {
	t.Parallel()

	_, span := otelhelper.StartSpan(context.Background(), otelhelper.NoopTracer(), "noop")
	defer span.End()

	assert.False(t, span.IsRecording())
}
