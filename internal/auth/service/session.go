package service

import (
	"context"
	"errors"

	"dentalcare_backend/internal/auth/repository"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/httpkit"
)

// SessionAuthenticator verifies the bearer token and then reloads the
// account, so role changes and deactivation apply to tokens already issued.
type SessionAuthenticator struct {
	tokens httpkit.Authenticator
	users  repository.UserReader
}

// NewSessionAuthenticator wraps tokens with an account lookup in users.
func NewSessionAuthenticator(tokens httpkit.Authenticator, users repository.UserReader) *SessionAuthenticator {
	return &SessionAuthenticator{tokens: tokens, users: users}
}

// Authenticate returns the principal with the roles currently stored for
// the account rather than the ones in the token.
func (a *SessionAuthenticator) Authenticate(ctx context.Context, header string) (httpkit.Principal, error) {
	claimed, err := a.tokens.Authenticate(ctx, header)
	if err != nil {
		return httpkit.Principal{}, err
	}

	user, err := a.users.GetUserByID(ctx, claimed.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return httpkit.Principal{}, apperr.Unauthorized("invalid token")
	}
	if err != nil {
		return httpkit.Principal{}, apperr.Wrap(apperr.KindInternal, "failed to load account", err).WithOp("auth.Authenticate")
	}
	if !user.IsActive {
		return httpkit.Principal{}, apperr.Unauthorized("account is disabled")
	}

	roles, err := a.users.GetUserRoles(ctx, user.ID)
	if err != nil {
		return httpkit.Principal{}, apperr.Wrap(apperr.KindInternal, "failed to load roles", err).WithOp("auth.Authenticate")
	}
	return httpkit.Principal{UserID: user.ID, Username: user.Username, Roles: roles}, nil
}

var _ httpkit.Authenticator = (*SessionAuthenticator)(nil)
