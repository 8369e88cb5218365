package authn

import (
	"context"

	"github.com/google/uuid"

	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/oauth"
)

// Kind discriminates the Principal variants.
type Kind string

const (
	KindUser  Kind = "USER"
	KindAdmin Kind = "SERVICE_ADMIN"
)

// UserPrincipal is an end user acting through a token issued to a client.
type UserPrincipal struct {
	Grant *oauth.TokenGrant
}

// UserID is the authenticated user.
func (u *UserPrincipal) UserID() uuid.UUID { return u.Grant.UserInfoID }

// RegistrationID is the registration the token was issued for.
func (u *UserPrincipal) RegistrationID() uuid.UUID { return u.Grant.RegistrationID }

// AdminPrincipal is a client acting with its admin key.
type AdminPrincipal struct {
	Client *entity.ClientInfo
}

// Principal is the result of authentication. Exactly one of User and Admin
// is set, matching Kind.
type Principal struct {
	Kind  Kind
	User  *UserPrincipal
	Admin *AdminPrincipal
}

func userPrincipal(g *oauth.TokenGrant) *Principal {
	return &Principal{Kind: KindUser, User: &UserPrincipal{Grant: g}}
}

func adminPrincipal(c *entity.ClientInfo) *Principal {
	return &Principal{Kind: KindAdmin, Admin: &AdminPrincipal{Client: c}}
}

type contextKey struct{}

// WithPrincipal stores p in ctx.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, contextKey{}, p)
}

// FromContext returns the Principal stored by WithPrincipal.
func FromContext(ctx context.Context) (*Principal, bool) {
	p, ok := ctx.Value(contextKey{}).(*Principal)
	return p, ok && p != nil
}

// MustFromContext is FromContext for handlers behind RequireAuth. It
// panics when no Principal is present.
func MustFromContext(ctx context.Context) *Principal {
	p, ok := FromContext(ctx)
	if !ok {
		panic("authn: no principal in context")
	}
	return p
}
