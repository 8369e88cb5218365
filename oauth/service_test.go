package oauth

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/kbukum/authd/auth/password"
	"github.com/kbukum/authd/database"
	"github.com/kbukum/authd/database/testutil"
	"github.com/kbukum/authd/entity"
	"github.com/kbukum/authd/errors"
	"github.com/kbukum/authd/logger"
	"github.com/kbukum/authd/store"
)

const (
	callback = "https://app.example/cb"
	grantTTL = int64(60_000)
)

type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time { return c.t }

func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	svc   *Service
	db    *database.DB
	clock *testClock
}

func newFixture(t *testing.T, mutate func(*Config), opts ...Option) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	h, err := password.NewPbkdf2Hasher(password.Config{HashLength: 32, SaltLength: 16, Iterations: 100})
	if err != nil {
		t.Fatalf("hasher: %v", err)
	}
	cfg := Config{GrantCodeTTL: grantTTL}
	if mutate != nil {
		mutate(&cfg)
	}
	clock := &testClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	opts = append([]Option{WithClock(clock.Now), WithLogger(logger.NewNop())}, opts...)
	svc, err := NewService(cfg, store.New(db), password.NewPool(h, password.Config{}), opts...)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return &fixture{svc: svc, db: db, clock: clock}
}

func (f *fixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	if err := f.db.GormDB.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func (f *fixture) client(t *testing.T, name string) *entity.ClientInfo {
	t.Helper()
	c, err := f.svc.RegisterClient(context.Background(), ClientRegistration{
		Name:            name,
		Email:           name + "@app.example",
		ManagementEmail: "ops@app.example",
		HomepageURL:     "https://" + name + ".example",
		RedirectURIs:    []string{"https://" + name + ".example/cb"},
	})
	if err != nil {
		t.Fatalf("RegisterClient: %v", err)
	}
	return c
}

func (f *fixture) user(t *testing.T, name string) *entity.UserInfo {
	t.Helper()
	u, err := f.svc.SignupUser(context.Background(), Signup{
		Email:    name + "@example.com",
		Username: name,
		Password: "pw-" + name,
		Mobile:   "010-1234-5678",
	})
	if err != nil {
		t.Fatalf("SignupUser: %v", err)
	}
	return u
}

func (f *fixture) registration(t *testing.T, c *entity.ClientInfo, u *entity.UserInfo) *entity.Registration {
	t.Helper()
	reg, err := f.svc.Link(context.Background(), c, u)
	if err != nil {
		t.Fatalf("Link: %v", err)
	}
	return reg
}

func wantCode(t *testing.T, err error, code errors.ErrorCode) {
	t.Helper()
	if !errors.HasCode(err, code) {
		t.Fatalf("expected %s, got %v", code, err)
	}
}

func TestConfig(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	if cfg.AccessTokenTTL != 3_600_000 || cfg.RefreshTokenTTL != 1_296_000_000 {
		t.Errorf("unexpected ttl defaults %+v", cfg)
	}
	if !cfg.ConsumesCodes() || cfg.RotateRefreshTokens {
		t.Error("expected consume on and rotate off by default")
	}

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"missing grant code ttl", Config{AccessTokenTTL: 1, RefreshTokenTTL: 1}, true},
		{"negative access ttl", Config{AccessTokenTTL: -1, RefreshTokenTTL: 1, GrantCodeTTL: 1}, true},
		{"relative login url", Config{AccessTokenTTL: 1, RefreshTokenTTL: 1, GrantCodeTTL: 1, LoginURL: "/login"}, true},
		{"valid", Config{AccessTokenTTL: 1, RefreshTokenTTL: 1, GrantCodeTTL: 1, LoginURL: "https://login.example/"}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}

	if _, err := NewService(Config{}, nil, nil); err == nil {
		t.Error("expected NewService to reject a config without grant code ttl")
	}
}

func TestRegisterClient(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	a := f.client(t, "alpha")
	b := f.client(t, "beta")
	for _, c := range []*entity.ClientInfo{a, b} {
		if c.ClientID == "" || c.ClientSecret == "" || c.AdminKey == "" {
			t.Fatalf("expected generated credentials, got %+v", c)
		}
	}
	if a.ClientID == b.ClientID || a.ClientSecret == b.ClientSecret || a.AdminKey == b.AdminKey {
		t.Error("generated credentials must differ between clients")
	}
	if len(a.ClientSecret) != 64 || len(a.AdminKey) != 128 {
		t.Errorf("unexpected secret lengths %d/%d", len(a.ClientSecret), len(a.AdminKey))
	}

	_, err := f.svc.RegisterClient(ctx, ClientRegistration{
		Name: "alpha", Email: "x@app.example", ManagementEmail: "ops@app.example", HomepageURL: "https://x.example",
	})
	wantCode(t, err, errors.ErrCodeAlreadyExists)

	_, err = f.svc.RegisterClient(ctx, ClientRegistration{Name: "gamma"})
	wantCode(t, err, errors.ErrCodeInvalidInput)

	_, err = f.svc.RegisterClient(ctx, ClientRegistration{
		Name: "delta", Email: "d@app.example", ManagementEmail: "ops@app.example", HomepageURL: "https://d.example",
		RedirectURIs: []string{"https://alpha.example/cb"},
	})
	wantCode(t, err, errors.ErrCodeAlreadyExists)
	if _, err := f.svc.FindClient(ctx, ""); err == nil {
		t.Error("expected lookup of empty client id to fail")
	}
	if n := f.count(t, &entity.ClientInfo{}); n != 2 {
		t.Errorf("failed registrations must not leave rows, have %d clients", n)
	}
}

func TestAddCallbackURLs(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")

	added, err := f.svc.AddCallbackURLs(ctx, c, []string{"https://alpha.example/cb2", "http://localhost:3000/cb"})
	if err != nil {
		t.Fatalf("AddCallbackURLs: %v", err)
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 callbacks, got %d", len(added))
	}
	found, err := f.svc.FindClient(ctx, c.ClientID)
	if err != nil {
		t.Fatalf("FindClient: %v", err)
	}
	if len(found.CallbackURLs) != 3 {
		t.Errorf("expected 3 callbacks, got %d", len(found.CallbackURLs))
	}

	_, err = f.svc.AddCallbackURLs(ctx, c, []string{callback, "https://alpha.example/cb"})
	wantCode(t, err, errors.ErrCodeAlreadyExists)
}

func TestCreateTokenPair(t *testing.T) {
	f := newFixture(t, nil)
	reg := f.registration(t, f.client(t, "alpha"), f.user(t, "kim"))

	pair, err := f.svc.CreateTokenPair(context.Background(), reg)
	if err != nil {
		t.Fatalf("CreateTokenPair: %v", err)
	}
	if pair.Access.TokenType != entity.TokenTypeAccess || pair.Refresh.TokenType != entity.TokenTypeRefresh {
		t.Errorf("unexpected types %s/%s", pair.Access.TokenType, pair.Refresh.TokenType)
	}
	if pair.Access.Token == pair.Refresh.Token {
		t.Error("access and refresh secrets must differ")
	}
	if pair.Access.ExpiresIn != DefaultAccessTokenTTL || pair.Refresh.ExpiresIn != DefaultRefreshTokenTTL {
		t.Errorf("unexpected lifetimes %d/%d", pair.Access.ExpiresIn, pair.Refresh.ExpiresIn)
	}
	for _, tok := range []*entity.Token{pair.Access, pair.Refresh} {
		if !tok.IssuedAt.Equal(f.clock.Now()) {
			t.Errorf("issued_at = %v, want %v", tok.IssuedAt, f.clock.Now())
		}
		if tok.IsExpired(f.clock.Now()) {
			t.Error("fresh token must not be expired")
		}
		if tok.RegistrationID != reg.ID {
			t.Error("token bound to the wrong registration")
		}
	}
}

func TestRedeemCode(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(t *testing.T, f *fixture, c *entity.ClientInfo, code *entity.AccessCode) TokenRequest
	}{
		{"unknown code", func(_ *testing.T, f *fixture, c *entity.ClientInfo, _ *entity.AccessCode) TokenRequest {
			return TokenRequest{Type: GrantTypeCode, ClientID: c.ClientID, ClientSecret: c.ClientSecret, Code: "nope"}
		}},
		{"expired at boundary", func(_ *testing.T, f *fixture, c *entity.ClientInfo, code *entity.AccessCode) TokenRequest {
			f.clock.Advance(time.Duration(grantTTL) * time.Millisecond)
			return TokenRequest{Type: GrantTypeCode, ClientID: c.ClientID, ClientSecret: c.ClientSecret, Code: code.Code}
		}},
		{"wrong client secret", func(_ *testing.T, f *fixture, c *entity.ClientInfo, code *entity.AccessCode) TokenRequest {
			return TokenRequest{Type: GrantTypeCode, ClientID: c.ClientID, ClientSecret: "guess", Code: code.Code}
		}},
		{"unknown client", func(_ *testing.T, f *fixture, _ *entity.ClientInfo, code *entity.AccessCode) TokenRequest {
			return TokenRequest{Type: GrantTypeCode, ClientID: "ghost", Code: code.Code}
		}},
		{"code of another client", func(t *testing.T, f *fixture, _ *entity.ClientInfo, code *entity.AccessCode) TokenRequest {
			other := f.client(t, "beta")
			return TokenRequest{Type: GrantTypeCode, ClientID: other.ClientID, ClientSecret: other.ClientSecret, Code: code.Code}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, nil)
			c := f.client(t, "alpha")
			reg := f.registration(t, c, f.user(t, "kim"))
			code, err := f.svc.IssueCode(context.Background(), reg)
			if err != nil {
				t.Fatalf("IssueCode: %v", err)
			}

			_, err = f.svc.Exchange(context.Background(), tc.mutate(t, f, c, code))
			wantCode(t, err, errors.ErrCodeUnauthorized)
			if n := f.count(t, &entity.Token{}); n != 0 {
				t.Errorf("rejected redemption created %d tokens", n)
			}
		})
	}
}

func TestRedeemCode_ConsumesCode(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")
	reg := f.registration(t, c, f.user(t, "kim"))
	code, err := f.svc.IssueCode(ctx, reg)
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}
	if len(code.Code) != 128 || code.ExpiresIn != grantTTL {
		t.Errorf("unexpected code %d chars, ttl %d", len(code.Code), code.ExpiresIn)
	}

	req := TokenRequest{Type: GrantTypeCode, ClientID: c.ClientID, ClientSecret: c.ClientSecret, Code: code.Code}
	pair, err := f.svc.Exchange(ctx, req)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if pair.Access == nil || pair.Refresh == nil || pair.Access.RegistrationID != reg.ID {
		t.Fatalf("expected a pair on the code's registration, got %+v", pair)
	}
	after, err := f.svc.FindRegistration(ctx, reg.UserClassifier)
	if err != nil || after.ID != reg.ID {
		t.Errorf("classifier must still resolve to the registration: %v", err)
	}

	_, err = f.svc.Exchange(ctx, req)
	wantCode(t, err, errors.ErrCodeUnauthorized)
	if n := f.count(t, &entity.AccessCode{}); n != 0 {
		t.Errorf("expected the code row to be deleted, have %d", n)
	}
}

func TestRedeemCode_ReplayWithoutConsume(t *testing.T) {
	f := newFixture(t, func(c *Config) {
		keep := false
		c.ConsumeGrantCodes = &keep
	})
	ctx := context.Background()
	c := f.client(t, "alpha")
	code, err := f.svc.IssueCode(ctx, f.registration(t, c, f.user(t, "kim")))
	if err != nil {
		t.Fatalf("IssueCode: %v", err)
	}

	req := TokenRequest{Type: GrantTypeCode, ClientID: c.ClientID, ClientSecret: c.ClientSecret, Code: code.Code}
	for i := 0; i < 2; i++ {
		if _, err := f.svc.Exchange(ctx, req); err != nil {
			t.Fatalf("redemption %d: %v", i+1, err)
		}
	}
	if n := f.count(t, &entity.Token{}); n != 4 {
		t.Errorf("expected two pairs, have %d tokens", n)
	}
}

func TestRefresh(t *testing.T) {
	for _, rotate := range []bool{false, true} {
		name := "keep refresh token"
		if rotate {
			name = "rotate refresh token"
		}
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, func(c *Config) { c.RotateRefreshTokens = rotate })
			ctx := context.Background()
			c := f.client(t, "alpha")
			reg := f.registration(t, c, f.user(t, "kim"))
			pair, err := f.svc.CreateTokenPair(ctx, reg)
			if err != nil {
				t.Fatalf("CreateTokenPair: %v", err)
			}

			req := TokenRequest{Type: GrantTypeRefresh, ClientID: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: pair.Refresh.Token}
			got, err := f.svc.Exchange(ctx, req)
			if err != nil {
				t.Fatalf("Refresh: %v", err)
			}
			if got.Access == nil || got.Access.TokenType != entity.TokenTypeAccess || got.Access.RegistrationID != reg.ID {
				t.Fatalf("expected a new access token, got %+v", got.Access)
			}
			if (got.Refresh != nil) != rotate {
				t.Errorf("refresh returned = %v, want %v", got.Refresh != nil, rotate)
			}

			_, err = f.svc.Exchange(ctx, req)
			if rotate {
				wantCode(t, err, errors.ErrCodeUnauthorized)
			} else if err != nil {
				t.Errorf("refresh token should stay usable: %v", err)
			}
		})
	}
}

func TestRefresh_Rejections(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")
	other := f.client(t, "beta")
	pair, err := f.svc.CreateTokenPair(ctx, f.registration(t, c, f.user(t, "kim")))
	if err != nil {
		t.Fatalf("CreateTokenPair: %v", err)
	}

	tests := []struct {
		name string
		req  TokenRequest
	}{
		{"access token as refresh", TokenRequest{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: pair.Access.Token}},
		{"unknown token", TokenRequest{ClientID: c.ClientID, ClientSecret: c.ClientSecret, RefreshToken: "nope"}},
		{"another client", TokenRequest{ClientID: other.ClientID, ClientSecret: other.ClientSecret, RefreshToken: pair.Refresh.Token}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.req.Type = GrantTypeRefresh
			_, err := f.svc.Exchange(ctx, tc.req)
			wantCode(t, err, errors.ErrCodeUnauthorized)
		})
	}

	t.Run("expired", func(t *testing.T) {
		f.clock.Advance(time.Duration(DefaultRefreshTokenTTL) * time.Millisecond)
		_, err := f.svc.Refresh(ctx, c.ClientID, c.ClientSecret, pair.Refresh.Token)
		wantCode(t, err, errors.ErrCodeUnauthorized)
	})

	t.Run("unsupported type", func(t *testing.T) {
		_, err := f.svc.Exchange(ctx, TokenRequest{Type: "password"})
		wantCode(t, err, errors.ErrCodeInvalidInput)
	})
}

func TestExpireAll(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")
	mine := f.registration(t, c, f.user(t, "kim"))
	theirs := f.registration(t, c, f.user(t, "lee"))
	pair, _ := f.svc.CreateTokenPair(ctx, mine)
	other, _ := f.svc.CreateTokenPair(ctx, theirs)

	n, err := f.svc.ExpireAll(ctx, mine.ID)
	if err != nil || n != 2 {
		t.Fatalf("ExpireAll = %d, %v", n, err)
	}
	for _, secret := range []string{pair.Access.Token, pair.Refresh.Token} {
		g, err := f.svc.LookupToken(ctx, secret, "")
		if err != nil {
			t.Fatalf("LookupToken: %v", err)
		}
		if !g.IsExpired(f.clock.Now()) {
			t.Error("logged out token must be expired immediately")
		}
	}
	g, err := f.svc.LookupToken(ctx, other.Access.Token, entity.TokenTypeAccess)
	if err != nil || g.IsExpired(f.clock.Now()) {
		t.Errorf("tokens of other registrations must be untouched: %v", err)
	}
}

func TestLookupToken(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")
	reg := f.registration(t, c, f.user(t, "kim"))
	pair, _ := f.svc.CreateTokenPair(ctx, reg)

	g, err := f.svc.LookupToken(ctx, pair.Access.Token, entity.TokenTypeAccess)
	if err != nil {
		t.Fatalf("LookupToken: %v", err)
	}
	if g.ClientID != c.ClientID || g.UserClassifier != reg.UserClassifier || g.RegistrationID != reg.ID {
		t.Errorf("unexpected grant %+v", g)
	}
	if len(g.CallbackURLs) != 1 || g.CallbackURLs[0] != "https://alpha.example/cb" {
		t.Errorf("unexpected callbacks %v", g.CallbackURLs)
	}

	for _, tc := range []struct{ name, secret, tokenType string }{
		{"wrong type", pair.Access.Token, entity.TokenTypeRefresh},
		{"unknown", "nope", entity.TokenTypeAccess},
		{"empty", "", ""},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.LookupToken(ctx, tc.secret, tc.tokenType)
			wantCode(t, err, errors.ErrCodeUnauthorized)
		})
	}

	info := f.svc.TokenInfo(g)
	f.clock.Advance(time.Minute)
	later := f.svc.TokenInfo(g)
	if info.ExpiresIn != DefaultAccessTokenTTL || later.ExpiresIn != DefaultAccessTokenTTL-60_000 {
		t.Errorf("unexpected remaining %d then %d", info.ExpiresIn, later.ExpiresIn)
	}
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	t.Run("to login page", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.LoginURL = "https://login.example/signin" })
		c := f.client(t, "alpha")
		loc, err := f.svc.Authorize(ctx, AuthorizeRequest{ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb", State: "xyz"})
		if err != nil {
			t.Fatalf("Authorize: %v", err)
		}
		u, _ := url.Parse(loc)
		if u.Host != "login.example" || u.Path != "/signin" {
			t.Errorf("unexpected target %s", loc)
		}
		q := u.Query()
		if q.Get("callback") != "https://alpha.example/cb" || q.Get("client_id") != c.ClientID || q.Get("state") != "xyz" {
			t.Errorf("unexpected query %v", q)
		}
	})

	t.Run("back to redirect uri and no code minted", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.client(t, "alpha")
		loc, err := f.svc.Authorize(ctx, AuthorizeRequest{ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb"})
		if err != nil {
			t.Fatalf("Authorize: %v", err)
		}
		want := "https://alpha.example/cb?callback=https%3A%2F%2Falpha.example%2Fcb&client_id=" + c.ClientID
		if loc != want {
			t.Errorf("location = %s, want %s", loc, want)
		}
		// Authorize only validates; grant codes are minted by Login.
		if n := f.count(t, &entity.AccessCode{}); n != 0 {
			t.Errorf("authorize minted %d codes", n)
		}
	})

	t.Run("rejections", func(t *testing.T) {
		f := newFixture(t, nil)
		c := f.client(t, "alpha")
		_, err := f.svc.Authorize(ctx, AuthorizeRequest{ClientID: "ghost", RedirectURI: "https://alpha.example/cb"})
		wantCode(t, err, errors.ErrCodeUnauthorized)
		_, err = f.svc.Authorize(ctx, AuthorizeRequest{ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb/"})
		wantCode(t, err, errors.ErrCodeNotFound)
	})
}

func TestLogin(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c := f.client(t, "alpha")
	u := f.user(t, "kim")

	loc, err := f.svc.Login(ctx, LoginRequest{
		Email: "kim@example.com", Password: "pw-kim",
		ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb", State: "s1",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	parsed, _ := url.Parse(loc)
	code := parsed.Query().Get("code")
	if code == "" || parsed.Query().Get("state") != "s1" {
		t.Fatalf("unexpected redirect %s", loc)
	}

	regs, err := f.svc.FindRegistrations(ctx, store.RelationFilter{ClientInfoID: c.ID, UserInfoID: u.ID})
	if err != nil || len(regs) != 1 {
		t.Fatalf("expected one registration, got %d (%v)", len(regs), err)
	}

	pair, err := f.svc.RedeemCode(ctx, c.ClientID, c.ClientSecret, code)
	if err != nil {
		t.Fatalf("RedeemCode: %v", err)
	}
	if pair.Access.RegistrationID != regs[0].ID {
		t.Error("pair bound to the wrong registration")
	}

	if _, err := f.svc.Login(ctx, LoginRequest{Email: "kim@example.com", Password: "pw-kim", ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb"}); err != nil {
		t.Fatalf("second Login: %v", err)
	}
	regs, _ = f.svc.FindRegistrations(ctx, store.RelationFilter{UserInfoID: u.ID})
	if len(regs) != 1 {
		t.Errorf("logging in again must reuse the registration, have %d", len(regs))
	}

	tests := []struct {
		name string
		req  LoginRequest
		code errors.ErrorCode
	}{
		{"wrong password", LoginRequest{Email: "kim@example.com", Password: "nope", ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb"}, errors.ErrCodeUnauthorized},
		{"unknown email", LoginRequest{Email: "ghost@example.com", Password: "pw", ClientID: c.ClientID, RedirectURI: "https://alpha.example/cb"}, errors.ErrCodeUnauthorized},
		{"unknown client", LoginRequest{Email: "kim@example.com", Password: "pw-kim", ClientID: "ghost", RedirectURI: "https://alpha.example/cb"}, errors.ErrCodeUnauthorized},
		{"unregistered redirect", LoginRequest{Email: "kim@example.com", Password: "pw-kim", ClientID: c.ClientID, RedirectURI: callback}, errors.ErrCodeNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(ctx, tc.req)
			wantCode(t, err, tc.code)
		})
	}
}

func TestSignupUser(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	u := f.user(t, "kim")
	if u.Credential == nil || u.Credential.Digest == "pw-kim" {
		t.Fatal("expected a hashed credential")
	}

	_, err := f.svc.SignupUser(ctx, Signup{Email: "kim@example.com", Username: "other", Password: "pw", Mobile: "010-1234-5678"})
	wantCode(t, err, errors.ErrCodeAlreadyExists)
	_, err = f.svc.SignupUser(ctx, Signup{Email: "new@example.com", Username: "new", Mobile: "010-1234-5678"})
	wantCode(t, err, errors.ErrCodeInvalidInput)
	if n := f.count(t, &entity.UserCredential{}); n != 1 {
		t.Errorf("expected one credential, have %d", n)
	}
}

func TestUnlink(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alpha := f.client(t, "alpha")
	beta := f.client(t, "beta")
	kim := f.user(t, "kim")
	regA := f.registration(t, alpha, kim)
	regB := f.registration(t, beta, kim)
	if _, err := f.svc.CreateTokenPair(ctx, regA); err != nil {
		t.Fatal(err)
	}

	wantCode(t, f.svc.UnlinkByAdmin(ctx, alpha.ID, "missing"), errors.ErrCodeConflict)
	wantCode(t, f.svc.UnlinkByAdmin(ctx, alpha.ID, regB.UserClassifier), errors.ErrCodeUnauthorized)

	if err := f.svc.UnlinkByAdmin(ctx, alpha.ID, regA.UserClassifier); err != nil {
		t.Fatalf("UnlinkByAdmin: %v", err)
	}
	if n := f.count(t, &entity.Token{}); n != 0 {
		t.Errorf("unlink must delete the registration's tokens, have %d", n)
	}

	if err := f.svc.Unlink(ctx, regB.ID); err != nil {
		t.Fatalf("Unlink: %v", err)
	}
	wantCode(t, f.svc.Unlink(ctx, regB.ID), errors.ErrCodeNotFound)
	if n := f.count(t, &entity.Registration{}); n != 0 {
		t.Errorf("expected no registrations, have %d", n)
	}
}

func TestProfiles(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alpha := f.client(t, "alpha")
	beta := f.client(t, "beta")
	kim := f.user(t, "kim")
	reg := f.registration(t, alpha, kim)

	p, err := f.svc.Profile(ctx, kim.ID)
	if err != nil || len(p.Registrations) != 1 || p.Registrations[0].ClientInfo == nil {
		t.Fatalf("Profile = %+v, %v", p, err)
	}

	got, err := f.svc.ProfileByClassifier(ctx, alpha.ID, reg.UserClassifier)
	if err != nil || got.ID != kim.ID {
		t.Fatalf("ProfileByClassifier = %v, %v", got, err)
	}
	_, err = f.svc.ProfileByClassifier(ctx, beta.ID, reg.UserClassifier)
	wantCode(t, err, errors.ErrCodeUnauthorized)
	_, err = f.svc.ProfileByClassifier(ctx, alpha.ID, "missing")
	wantCode(t, err, errors.ErrCodeUnauthorized)

	name := "Kim Minsu"
	updated, err := f.svc.UpdateProfile(ctx, kim.ID, store.UserUpdate{Realname: &name})
	if err != nil || updated.Realname != name {
		t.Fatalf("UpdateProfile = %v, %v", updated, err)
	}
	_, err = f.svc.UpdateProfile(ctx, kim.ID, store.UserUpdate{})
	wantCode(t, err, errors.ErrCodeInvalidInput)
}

func TestSignoutAndDeleteClientCascade(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	alpha := f.client(t, "alpha")
	kim := f.user(t, "kim")
	lee := f.user(t, "lee")
	if _, err := f.svc.CreateTokenPair(ctx, f.registration(t, alpha, kim)); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.IssueCode(ctx, f.registration(t, alpha, lee)); err != nil {
		t.Fatal(err)
	}

	if err := f.svc.Signout(ctx, kim.ID); err != nil {
		t.Fatalf("Signout: %v", err)
	}
	if n := f.count(t, &entity.Token{}); n != 0 {
		t.Errorf("signout left %d tokens", n)
	}
	if n := f.count(t, &entity.UserCredential{}); n != 1 {
		t.Errorf("expected only lee's credential, have %d", n)
	}

	if err := f.svc.DeleteClient(ctx, alpha); err != nil {
		t.Fatalf("DeleteClient: %v", err)
	}
	for _, m := range []any{&entity.Registration{}, &entity.AccessCode{}, &entity.CallbackURL{}} {
		if n := f.count(t, m); n != 0 {
			t.Errorf("%T: %d rows left", m, n)
		}
	}
	if n := f.count(t, &entity.UserInfo{}); n != 1 {
		t.Errorf("users must survive a client delete, have %d", n)
	}
}
