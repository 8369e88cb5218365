package authn

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/oauth"
	"github.com/kbukum/authd/observability"
)

// Requirement names which principal kinds an endpoint accepts.
type Requirement string

const (
	AsUser  Requirement = "user"
	AsAdmin Requirement = "admin"
	AsAny   Requirement = "any"
)

func (r Requirement) allowsUser() bool { return r == AsUser || r == AsAny }

func (r Requirement) allowsAdmin() bool { return r == AsAdmin || r == AsAny }

const (
	schemeBearer   = "bearer"
	schemeAdminKey = "adminkey"
)

// Backend is what the resolver needs from the token and client stores.
// *oauth.Service implements it.
type Backend interface {
	LookupToken(ctx context.Context, secret, tokenType string) (*oauth.TokenGrant, error)
	FindClientByAdminKey(ctx context.Context, key string) (*entity.ClientInfo, error)
	Now() time.Time
}

var _ Backend = (*oauth.Service)(nil)

// Rejection reasons, as logged and counted.
const (
	ReasonMissing        = "missing_credentials"
	ReasonMalformed      = "malformed_header"
	ReasonScheme         = "scheme_not_accepted"
	ReasonUnknown        = "unknown_credential"
	ReasonOriginMismatch = "origin_mismatch"
	ReasonExpired        = "expired"
)

// Resolver turns Authorization headers into principals.
type Resolver struct {
	backend Backend
	log     *logger.Logger
	metrics *observability.Metrics
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithMetrics counts resolutions and rejections on m.
func WithMetrics(m *observability.Metrics) ResolverOption {
	return func(r *Resolver) { r.metrics = m }
}

// NewResolver returns a Resolver reading tokens and clients from backend.
func NewResolver(backend Backend, log *logger.Logger, opts ...ResolverOption) (*Resolver, error) {
	if backend == nil {
		return nil, fmt.Errorf("authn: backend is required")
	}
	if log == nil {
		log = logger.NewNop()
	}
	r := &Resolver{backend: backend, log: log.WithComponent("authn"), metrics: observability.NopMetrics()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Resolve authenticates authorization for an endpoint accepting as. For
// bearer tokens tokenType names the required token type. origin is the
// request's Origin header.
func (r *Resolver) Resolve(ctx context.Context, authorization, origin string, as Requirement, tokenType string) (p *Principal, err error) {
	ctx, op := observability.StartOperation(ctx, "authn.resolve",
		attribute.String("authn.requirement", string(as)))
	defer func() { op.End(err) }()

	if strings.TrimSpace(authorization) == "" {
		r.reject(ctx, ReasonMissing, logger.Fields())
		return nil, errors.Unauthorized()
	}
	parts := strings.Fields(authorization)
	if len(parts) != 2 {
		r.reject(ctx, ReasonMalformed, logger.Fields("parts", len(parts)))
		return nil, errors.BadRequest("authorization header must be '<scheme> <credential>'")
	}
	scheme, credential := strings.ToLower(parts[0]), parts[1]

	switch {
	case scheme == schemeBearer && as.allowsUser():
		p, err = r.resolveToken(ctx, credential, origin, tokenType)
	case scheme == schemeAdminKey && as.allowsAdmin():
		p, err = r.resolveAdminKey(ctx, credential, origin)
	default:
		r.reject(ctx, ReasonScheme, logger.Fields("scheme", scheme, "requirement", string(as)))
		return nil, errors.Unauthorized()
	}
	if err != nil {
		return nil, err
	}
	observability.SetSpanAttribute(ctx, observability.AttrPrincipal, string(p.Kind))
	r.metrics.AuthResolved(ctx, string(p.Kind))
	return p, nil
}

func (r *Resolver) resolveToken(ctx context.Context, secret, origin, tokenType string) (*Principal, error) {
	g, err := r.backend.LookupToken(ctx, secret, tokenType)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeUnauthorized) {
			r.reject(ctx, ReasonUnknown, logger.Fields(logger.FieldTokenType, tokenType))
		}
		return nil, err
	}
	if !originAllowed(origin, g.CallbackURLs) {
		r.reject(ctx, ReasonOriginMismatch, logger.Fields(logger.FieldClientID, g.ClientID, "origin", origin))
		return nil, errors.Unauthorized()
	}
	if g.IsExpired(r.backend.Now()) {
		r.reject(ctx, ReasonExpired, logger.Fields(logger.FieldRegistrationID, g.RegistrationID.String(), logger.FieldTokenType, g.TokenType))
		return nil, errors.Unauthorized()
	}
	observability.SetSpanAttribute(ctx, observability.AttrClientID, g.ClientID)
	return userPrincipal(g), nil
}

func (r *Resolver) resolveAdminKey(ctx context.Context, key, origin string) (*Principal, error) {
	client, err := r.backend.FindClientByAdminKey(ctx, key)
	if err != nil {
		if errors.HasCode(err, errors.ErrCodeNotFound) {
			r.reject(ctx, ReasonUnknown, logger.Fields("scheme", schemeAdminKey))
			return nil, errors.Unauthorized()
		}
		return nil, err
	}
	urls := make([]string, 0, len(client.CallbackURLs))
	for _, cb := range client.CallbackURLs {
		urls = append(urls, cb.URL)
	}
	if !originAllowed(origin, urls) {
		r.reject(ctx, ReasonOriginMismatch, logger.Fields(logger.FieldClientID, client.ClientID, "origin", origin))
		return nil, errors.Unauthorized()
	}
	observability.SetSpanAttribute(ctx, observability.AttrClientID, client.ClientID)
	return adminPrincipal(client), nil
}

func (r *Resolver) reject(ctx context.Context, reason string, fields map[string]interface{}) {
	r.metrics.AuthRejected(ctx, reason)
	fields["reason"] = reason
	r.log.Debug("credential rejected", fields)
}

func originAllowed(origin string, callbacks []string) bool {
	for _, cb := range callbacks {
		if CompareBaseURL(origin, cb) {
			return true
		}
	}
	return false
}

var defaultPorts = map[string]string{
	"http":  "80",
	"https": "443",
	"ws":    "80",
	"wss":   "443",
}

type baseURL struct {
	scheme, host, port string
}

func parseBase(raw string) (baseURL, bool) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Hostname() == "" {
		return baseURL{}, false
	}
	port := u.Port()
	if port == defaultPorts[u.Scheme] {
		port = ""
	}
	return baseURL{scheme: u.Scheme, host: strings.ToLower(u.Hostname()), port: port}, true
}

// CompareBaseURL reports whether a and b have the same scheme, host and
// port. Hosts compare case-insensitively and a scheme's default port
// equals no port. Malformed or relative URLs never match.
func CompareBaseURL(a, b string) bool {
	ba, ok := parseBase(a)
	if !ok {
		return false
	}
	bb, ok := parseBase(b)
	return ok && ba == bb
}
