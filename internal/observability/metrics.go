package observability

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/getsentry/sentry-go/attribute"
)

type meterContextKey struct{}

// WithMeter stores a request-scoped meter on ctx. A nil meter is replaced by
// a fresh one so downstream code can always count.
func WithMeter(ctx context.Context, meter sentry.Meter) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter == nil {
		meter = sentry.NewMeter(ctx)
	}
	return context.WithValue(ctx, meterContextKey{}, meter.WithCtx(ctx))
}

// MeterFromContext returns the meter installed by WithMeter, bound to ctx.
func MeterFromContext(ctx context.Context) sentry.Meter {
	if ctx == nil {
		ctx = context.Background()
	}
	if meter, ok := ctx.Value(meterContextKey{}).(sentry.Meter); ok && meter != nil {
		return meter.WithCtx(ctx)
	}
	return sentry.NewMeter(ctx).WithCtx(ctx)
}

// Operation is a manually instrumented service call: one span plus a
// "<metric>.completed" or "<metric>.failed" counter when it finishes.
type Operation struct {
	span   *sentry.Span
	meter  sentry.Meter
	metric string
	attrs  []attribute.Builder
}

// StartOperation opens a span "service.<metric>" under op and returns the
// context carrying it. attrs are attached to the outcome counter.
func StartOperation(ctx context.Context, op, description, metric string, attrs ...attribute.Builder) (context.Context, *Operation) {
	if ctx == nil {
		ctx = context.Background()
	}
	span := sentry.StartSpan(
		ctx,
		"service."+metric,
		sentry.WithOpName(op),
		sentry.WithDescription(description),
		sentry.WithSpanOrigin(sentry.SpanOriginManual),
	)
	ctx = span.Context()
	return ctx, &Operation{
		span:   span,
		meter:  MeterFromContext(ctx),
		metric: metric,
		attrs:  attrs,
	}
}

// Finish records the outcome and closes the span. extra attributes are only
// attached on success.
func (o *Operation) Finish(err error, extra ...attribute.Builder) {
	if o == nil {
		return
	}
	defer o.span.Finish()

	if err != nil {
		o.meter.Count(o.metric+".failed", 1, sentry.WithAttributes(o.attrs...))
		o.span.Status = sentry.SpanStatusInternalError
		return
	}
	attrs := append(append([]attribute.Builder(nil), o.attrs...), extra...)
	o.meter.Count(o.metric+".completed", 1, sentry.WithAttributes(attrs...))
	o.span.Status = sentry.SpanStatusOK
}
