package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	mnerrors "github.com/otherjamesbrown/minutes-cli/pkg/errors"
)

const (
	// TracerName is the instrumentation name of pipeline spans.
	TracerName = "minutes"
)

// Span attribute keys
const (
	AttrRunID      = "run_id"
	AttrSessionID  = "session_id"
	AttrSource     = "source"
	AttrStage      = "stage"
	AttrModel      = "model"
	AttrSegments   = "segments"
	AttrChunks     = "chunks"
	AttrInputChars = "input_chars"
	AttrErrorCode  = "error_code"
	AttrFallback   = "fallback"
)

// Span names
const (
	SpanProcess = "minutes.process"
)

// Tracer starts pipeline spans.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from tp, or from the global provider when tp
// is nil.
func NewTracer(tp trace.TracerProvider) *Tracer {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Tracer{tracer: tp.Tracer(TracerName)}
}

// StartRunSpan starts the root span of a pipeline run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	ctx, span := t.tracer.Start(ctx, SpanProcess,
		trace.WithAttributes(attribute.String(AttrRunID, runID)),
	)
	if source != "" {
		span.SetAttributes(attribute.String(AttrSource, source))
	}
	return ctx, span
}

// StartStageSpan starts a span for one pipeline stage.
func (t *Tracer) StartStageSpan(ctx context.Context, stage string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, fmt.Sprintf("minutes.stage.%s", stage),
		trace.WithAttributes(attribute.String(AttrStage, stage)),
	)
}

// SpanHelper sets common attributes on a span.
type SpanHelper struct {
	span trace.Span
}

// NewSpanHelper wraps span.
func NewSpanHelper(span trace.Span) *SpanHelper {
	return &SpanHelper{span: span}
}

// SetCount sets an integer attribute such as AttrSegments.
func (h *SpanHelper) SetCount(key string, n int) {
	h.span.SetAttributes(attribute.Int(key, n))
}

// SetModel sets the summarizer model attribute.
func (h *SpanHelper) SetModel(model string) {
	h.span.SetAttributes(attribute.String(AttrModel, model))
}

// SetError records err on the span with its classified code.
func (h *SpanHelper) SetError(err error, stage string) {
	code := mnerrors.CodeOf(err, stage)
	h.span.SetStatus(codes.Error, err.Error())
	h.span.SetAttributes(attribute.String(AttrErrorCode, string(code)))
	h.span.RecordError(err)
}

// SetSuccess marks the span as successful.
func (h *SpanHelper) SetSuccess() {
	h.span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span.
func (h *SpanHelper) AddEvent(name string, attrs ...attribute.KeyValue) {
	h.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// GetTraceID returns the trace id in ctx, or "".
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().HasTraceID() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
