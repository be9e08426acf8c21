// Package auth provides the authentication bounded context module.
// This file defines the module that encapsulates all auth setup and route registration.
package auth

import (
	"dentalcare_backend/internal/auth/handler"
	"dentalcare_backend/internal/auth/lockout"
	"dentalcare_backend/internal/auth/permission"
	"dentalcare_backend/internal/auth/repository"
	"dentalcare_backend/internal/auth/service"
	"dentalcare_backend/internal/auth/timingguard"
	"dentalcare_backend/internal/auth/token"
	authvalidator "dentalcare_backend/internal/auth/validator"
	apphttp "dentalcare_backend/internal/http"
	"dentalcare_backend/platform/config"
	"dentalcare_backend/platform/httpkit"
	"dentalcare_backend/platform/logger"
	"dentalcare_backend/platform/phone"
	"dentalcare_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ModuleConfig is the configuration the auth module reads.
type ModuleConfig interface {
	config.AuthServiceConfig
	config.TimingGuardConfig
}

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler       *handler.Handler
	service       *service.Service
	authenticator *service.SessionAuthenticator
}

// NewModule creates and initializes the auth module with all its dependencies.
// The auth validation tags are registered on val.
func NewModule(
	pool *pgxpool.Pool,
	cfg ModuleConfig,
	tokens *token.Manager,
	store lockout.Store,
	resolver *permission.Resolver,
	val *validator.Validator,
	log *logger.Logger,
) (*Module, error) {
	if err := authvalidator.Register(val); err != nil {
		return nil, err
	}

	guard := timingguard.New(timingguard.Config{
		MinResponseTime: cfg.GetAuthMinResponseTime(),
		MaxJitter:       cfg.GetAuthMaxJitter(),
	})

	repo := repository.New(pool)
	svc := service.New(service.Deps{
		Repo:        repo,
		Lockout:     store,
		Tokens:      tokens,
		Guard:       guard,
		Permissions: resolver,
		Phone:       phone.NewNormalizer(cfg.GetDefaultPhoneRegion()),
		Log:         log,
		MaxAttempts: cfg.GetLoginMaxAttempts(),
	})

	return &Module{
		handler:       handler.New(svc, val),
		service:       svc,
		authenticator: service.NewSessionAuthenticator(tokens, repo),
	}, nil
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// Service returns the auth service.
func (m *Module) Service() *service.Service {
	return m.service
}

// Authenticator verifies access tokens against the current account state.
func (m *Module) Authenticator() httpkit.Authenticator {
	return m.authenticator
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	m.handler.RegisterRoutes(authGroup)

	// Protected user routes
	ctx.Protected.GET("/users/me", m.handler.GetMe)
	ctx.Protected.GET("/users/me/permissions", m.handler.GetMyPermissions)
	ctx.Protected.POST("/users/me/password", m.handler.ChangePassword)

	// Account administration
	ctx.Protected.GET("/users", ctx.Require(permission.UsersView), m.handler.ListUsers)
	ctx.Protected.POST("/users", ctx.Require(permission.UsersManage), m.handler.CreateUser)
	ctx.Protected.PUT("/users/:id/roles", ctx.Require(permission.UsersManage), m.handler.SetUserRoles)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
