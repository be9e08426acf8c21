// Package httpkit provides HTTP utilities including identity abstraction.
package httpkit

import (
	"slices"

	"dentalcare_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextUserIDKey is the gin context key for the authenticated user ID.
	ContextUserIDKey = "userID"
	// ContextUsernameKey is the gin context key for the authenticated username.
	ContextUsernameKey = "username"
	// ContextRolesKey is the gin context key for the user's roles.
	ContextRolesKey = "roles"
)

// Principal is what an Authenticator learns from a valid credential.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Roles    []string
}

// Identity represents the authenticated user's identity.
// Handlers read it without depending on gin context keys.
type Identity interface {
	UserID() uuid.UUID
	Username() string
	Roles() []string
	HasRole(role string) bool
	IsAuthenticated() bool
}

type identity struct {
	principal     Principal
	authenticated bool
}

func (i *identity) UserID() uuid.UUID        { return i.principal.UserID }
func (i *identity) Username() string         { return i.principal.Username }
func (i *identity) Roles() []string          { return i.principal.Roles }
func (i *identity) HasRole(role string) bool { return slices.Contains(i.principal.Roles, role) }
func (i *identity) IsAuthenticated() bool    { return i.authenticated }

// SetPrincipal stores p on the gin context.
func SetPrincipal(c *gin.Context, p Principal) {
	c.Set(ContextUserIDKey, p.UserID)
	c.Set(ContextUsernameKey, p.Username)
	c.Set(ContextRolesKey, p.Roles)
}

// GetIdentity extracts the Identity from a Gin context.
// Returns an unauthenticated identity if user info is not present.
func GetIdentity(c *gin.Context) Identity {
	raw, ok := c.Get(ContextUserIDKey)
	if !ok {
		return &identity{}
	}
	uid, ok := raw.(uuid.UUID)
	if !ok {
		return &identity{}
	}

	p := Principal{UserID: uid, Username: c.GetString(ContextUsernameKey)}
	if roles, ok := c.Get(ContextRolesKey); ok {
		p.Roles, _ = roles.([]string)
	}
	return &identity{principal: p, authenticated: true}
}

// MustGetIdentity extracts the Identity from a Gin context.
// If the user is not authenticated, it aborts with 401 Unauthorized and returns nil.
func MustGetIdentity(c *gin.Context) Identity {
	id := GetIdentity(c)
	if !id.IsAuthenticated() {
		Abort(c, apperr.Unauthorized("unauthorized"))
		return nil
	}
	return id
}
