// Package token issues and verifies HS256 access tokens.
package token

import (
	"context"
	"errors"
	"time"

	"dentalcare_backend/internal/auth/validator"
	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/httpkit"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const accessTokenType = "access"

// Claims are the access token claims.
type Claims struct {
	Username string   `json:"username"`
	Roles    []string `json:"roles"`
	Type     string   `json:"type"`
	jwt.RegisteredClaims
}

// Manager signs and verifies access tokens with a shared secret.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a Manager. now may be nil.
func NewManager(secret string, ttl time.Duration, now func() time.Time) *Manager {
	if now == nil {
		now = time.Now
	}
	return &Manager{secret: []byte(secret), ttl: ttl, now: now}
}

// Issue returns a signed access token and its expiry.
func (m *Manager) Issue(userID uuid.UUID, username string, roles []string) (string, time.Time, error) {
	issuedAt := m.now()
	expiresAt := issuedAt.Add(m.ttl)
	claims := Claims{
		Username: username,
		Roles:    roles,
		Type:     accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies raw and returns its claims.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if errors.Is(err, jwt.ErrTokenExpired) {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "token expired", err)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}
	if claims.Type != accessTokenType {
		return nil, apperr.Unauthorized("invalid token")
	}
	return claims, nil
}

// Authenticate implements httpkit.Authenticator: the header must carry a
// Bearer credential shaped like a JWT whose signature and expiry verify.
func (m *Manager) Authenticate(_ context.Context, header string) (httpkit.Principal, error) {
	raw, err := validator.ExtractBearerToken(header)
	if err != nil {
		return httpkit.Principal{}, err
	}
	if err := validator.ValidateTokenFormat(raw); err != nil {
		return httpkit.Principal{}, err
	}

	claims, err := m.Parse(raw)
	if err != nil {
		return httpkit.Principal{}, err
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return httpkit.Principal{}, apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
	}

	return httpkit.Principal{UserID: userID, Username: claims.Username, Roles: claims.Roles}, nil
}

var _ httpkit.Authenticator = (*Manager)(nil)
