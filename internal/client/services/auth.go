// Package services contains application services for the gym client.
// This file defines the authentication service: password login, social-login
// landing, logout, identity lookup and local token diagnostics.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/gymhub/gymclient/internal/client/client"
	"github.com/gymhub/gymclient/internal/client/models"
	"github.com/gymhub/gymclient/internal/client/session"
	"github.com/gymhub/gymclient/internal/client/tokens"
	"github.com/gymhub/gymclient/internal/common"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: exchange credentials for a token pair and resolve the session.
//   - AcceptRedirect: store a pair delivered by a social-login redirect.
//   - Logout: clear the local token pair.
//   - Whoami: resolve the session behind the stored token.
//   - Status: describe the stored tokens without a network call.
//
// All methods must honor context cancellation/timeouts.
type AuthService interface {
	Login(ctx context.Context, email string, password []byte) (*models.Session, error)
	AcceptRedirect(ctx context.Context, accessToken, refreshToken string) (*models.Session, error)
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) (*models.Session, error)
	Status(ctx context.Context) TokenStatus
}

// TokenStatus is a local view of the stored pair.
type TokenStatus struct {
	HasAccess  bool
	HasRefresh bool
	Claims     tokens.Claims
	ClaimsErr  error
}

// Check classifies the access token as of now. It returns nil for a token
// that looks usable; the server remains the authority.
func (s TokenStatus) Check(now time.Time) error {
	switch {
	case !s.HasAccess:
		return common.ErrNoToken
	case s.ClaimsErr != nil:
		return s.ClaimsErr
	case s.Claims.Expired(now):
		return common.ErrTokenExpired
	}
	return nil
}

type authService struct {
	client   client.Client
	tokens   tokens.Store
	resolver *session.Resolver
}

// NewAuthService constructs an AuthService bound to the API client, the
// token store it reads from and the session resolver.
func NewAuthService(client client.Client, store tokens.Store, resolver *session.Resolver) AuthService {
	return &authService{client: client, tokens: store, resolver: resolver}
}

// Login wipes password once the request has been sent.
func (a *authService) Login(ctx context.Context, email string, password []byte) (*models.Session, error) {
	err := a.client.Login(ctx, email, string(password))
	common.WipeByteArray(password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	return a.Whoami(ctx)
}

func (a *authService) AcceptRedirect(ctx context.Context, accessToken, refreshToken string) (*models.Session, error) {
	if tokens.Normalize(accessToken) == "" {
		return nil, common.ErrNoToken
	}
	if err := a.tokens.Set(ctx, accessToken, refreshToken); err != nil {
		return nil, fmt.Errorf("store tokens: %w", err)
	}
	return a.Whoami(ctx)
}

func (a *authService) Logout(ctx context.Context) error {
	return a.tokens.Clear(ctx)
}

func (a *authService) Whoami(ctx context.Context) (*models.Session, error) {
	if !a.tokens.Get(ctx).HasAccess() {
		return nil, common.ErrNoToken
	}
	s, ok := a.resolver.Resolve(ctx)
	if !ok {
		return nil, common.ErrNoSession
	}
	return s, nil
}

func (a *authService) Status(ctx context.Context) TokenStatus {
	pair := a.tokens.Get(ctx)
	st := TokenStatus{HasAccess: pair.HasAccess(), HasRefresh: pair.HasRefresh()}
	if st.HasAccess {
		st.Claims, st.ClaimsErr = tokens.Inspect(pair.AccessToken)
	}
	return st
}
