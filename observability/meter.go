package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/authd/logger"
)

const meterName = "github.com/kbukum/authd"

// InitMeter installs a global meter provider pushing over OTLP/HTTP every
// cfg.Interval. The returned provider must be shut down on exit. With
// metrics disabled it has no reader and exports nothing.
func InitMeter(ctx context.Context, cfg MetricsConfig, service, version, environment string) (*sdkmetric.MeterProvider, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	res, err := newResource(service, version, environment)
	if err != nil {
		return nil, err
	}

	if !cfg.Enabled {
		mp := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
		otel.SetMeterProvider(mp)
		return mp, nil
	}

	opts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}
	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}
	interval, _ := time.ParseDuration(cfg.Interval)

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	logger.Info("meter initialized", logger.Fields(
		"endpoint", cfg.Endpoint,
		"interval", cfg.Interval,
	))
	return mp, nil
}

// Metric attribute keys.
const (
	MetricTokenType = "token_type"
	MetricReason    = "reason"
	MetricPrincipal = "principal"
	MetricOperation = "operation"
)

// Metrics holds the instruments of the token core and the resolver.
type Metrics struct {
	tokensIssued   metric.Int64Counter
	tokensRevoked  metric.Int64Counter
	codesIssued    metric.Int64Counter
	codesRedeemed  metric.Int64Counter
	authResolved   metric.Int64Counter
	authRejections metric.Int64Counter
}

// NewMetrics creates the instruments on mp.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	meter := mp.Meter(meterName)
	m := &Metrics{}
	for _, c := range []struct {
		dst         *metric.Int64Counter
		name, descr string
	}{
		{&m.tokensIssued, "authd.tokens.issued", "Tokens issued by type"},
		{&m.tokensRevoked, "authd.tokens.revoked", "Tokens expired or deleted by operation"},
		{&m.codesIssued, "authd.codes.issued", "Grant codes issued"},
		{&m.codesRedeemed, "authd.codes.redeemed", "Grant codes exchanged for a token pair"},
		{&m.authResolved, "authd.auth.resolved", "Requests authenticated by principal kind"},
		{&m.authRejections, "authd.auth.rejections", "Credentials rejected by reason"},
	} {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.descr))
		if err != nil {
			return nil, fmt.Errorf("creating %s counter: %w", c.name, err)
		}
		*c.dst = counter
	}
	return m, nil
}

// NopMetrics returns Metrics whose instruments record nothing.
func NopMetrics() *Metrics {
	m, _ := NewMetrics(noop.NewMeterProvider())
	return m
}

// TokenIssued counts one issued token of tokenType.
func (m *Metrics) TokenIssued(ctx context.Context, tokenType string) {
	m.tokensIssued.Add(ctx, 1, metric.WithAttributes(attribute.String(MetricTokenType, tokenType)))
}

// TokensRevoked counts n tokens revoked by operation.
func (m *Metrics) TokensRevoked(ctx context.Context, operation string, n int64) {
	if n <= 0 {
		return
	}
	m.tokensRevoked.Add(ctx, n, metric.WithAttributes(attribute.String(MetricOperation, operation)))
}

// CodeIssued counts one grant code.
func (m *Metrics) CodeIssued(ctx context.Context) {
	m.codesIssued.Add(ctx, 1)
}

// CodeRedeemed counts one redeemed grant code.
func (m *Metrics) CodeRedeemed(ctx context.Context) {
	m.codesRedeemed.Add(ctx, 1)
}

// AuthResolved counts one authenticated request.
func (m *Metrics) AuthResolved(ctx context.Context, principal string) {
	m.authResolved.Add(ctx, 1, metric.WithAttributes(attribute.String(MetricPrincipal, principal)))
}

// AuthRejected counts one rejected credential.
func (m *Metrics) AuthRejected(ctx context.Context, reason string) {
	m.authRejections.Add(ctx, 1, metric.WithAttributes(attribute.String(MetricReason, reason)))
}
