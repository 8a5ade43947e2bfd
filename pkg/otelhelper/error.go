package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks span as failed. A nil err only records the event, which is
// how rejected steps without an underlying error are reported.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	description := "step did not complete"

	if err != nil {
		span.RecordError(err)
		description = err.Error()
	}

	span.SetStatus(codes.Error, description)
	span.AddEvent("error_occurred", trace.WithAttributes(attrs...))
}
