// Package observability sets up OpenTelemetry tracing for authd.
//
//	tp, err := observability.InitTracer(ctx, cfg.Tracing, "authd", version.Get().Version, cfg.Environment)
//	defer tp.Shutdown(ctx)
//
// Operations in the token core are wrapped with StartOperation, which opens
// a span, tags it with the operation name and records the outcome:
//
//	ctx, op := observability.StartOperation(ctx, "oauth.redeem_code")
//	defer func() { op.End(err) }()
//
// Span attributes never carry secrets; callers tag ids and classifiers only.
package observability
