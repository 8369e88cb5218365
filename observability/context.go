package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/kbukum/authd/errors"
)

// Operation is one traced unit of work in the token core.
type Operation struct {
	Name  string
	Start time.Time
	span  trace.Span
}

// StartOperation opens a span named name and returns the context carrying it.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, *Operation) {
	ctx, span := StartSpan(ctx, name)
	span.SetAttributes(attribute.String(AttrOperation, name))
	span.SetAttributes(attrs...)
	return ctx, &Operation{Name: name, Start: time.Now(), span: span}
}

// End closes the span. Client errors are tagged with their code and leave
// the span status unset; anything else marks the span as failed.
func (o *Operation) End(err error) {
	defer o.span.End()
	if err == nil {
		o.span.SetAttributes(attribute.String(AttrStatus, "ok"))
		return
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		o.span.SetAttributes(attribute.String(AttrErrorCode, string(appErr.Code)))
		if !appErr.IsServerError() {
			o.span.SetAttributes(attribute.String(AttrStatus, "rejected"))
			return
		}
	}
	o.span.SetAttributes(attribute.String(AttrStatus, "error"))
	o.span.RecordError(err)
	o.span.SetStatus(codes.Error, err.Error())
}

// Duration returns the time elapsed since the operation started.
func (o *Operation) Duration() time.Duration {
	return time.Since(o.Start)
}
