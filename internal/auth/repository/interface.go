package repository

import (
	"context"

	"github.com/google/uuid"
)

// UserReader is the read side used for sign-in and profile lookups.
type UserReader interface {
	GetUserByUsername(ctx context.Context, username string) (User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (User, error)
	GetUserRoles(ctx context.Context, userID uuid.UUID) ([]string, error)
	ListUsers(ctx context.Context) ([]UserWithRoles, error)
}

// UserWriter covers user administration.
type UserWriter interface {
	CreateUser(ctx context.Context, params NewUser) (User, error)
	SetUserRoles(ctx context.Context, userID uuid.UUID, roles []string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	TouchLastSignIn(ctx context.Context, userID uuid.UUID) error
}

// AuthRepository is everything the auth service needs from storage.
type AuthRepository interface {
	UserReader
	UserWriter
}

// Ensure Repository implements AuthRepository
var _ AuthRepository = (*Repository)(nil)
