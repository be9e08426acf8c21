// Package http provides HTTP server infrastructure including the Module interface
// that all domain modules must implement for route registration.
package http

import (
	"dentalcare_backend/platform/httpkit"
	"dentalcare_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

// Module represents a bounded context that can register its HTTP routes.
// Each domain module implements this interface to encapsulate its own
// route setup, keeping the main router decoupled from specific endpoints.
type Module interface {
	// Name returns the module's identifier for logging purposes.
	Name() string
	// RegisterRoutes mounts the module's routes on the provided router group.
	// The RouterContext provides access to shared middleware and configuration.
	RegisterRoutes(ctx *RouterContext)
}

// RouterContext provides shared dependencies for module route registration.
type RouterContext struct {
	// Engine is the root Gin engine for modules that need engine-level access.
	Engine *gin.Engine
	// V1 is the /api/v1 route group.
	V1 *gin.RouterGroup
	// Protected is the authenticated route group under /api/v1.
	Protected *gin.RouterGroup
	// Permissions resolves role permissions for route guards.
	Permissions httpkit.PermissionChecker
	// AuthRateLimiter is the stricter rate limiter for auth routes.
	AuthRateLimiter *httpkit.AuthRateLimiter
	// Logger is the request-independent logger.
	Logger *logger.Logger
}

// Require guards a route with every listed permission.
func (ctx *RouterContext) Require(permissions ...string) gin.HandlerFunc {
	return httpkit.RequirePermission(ctx.Permissions, ctx.Logger, permissions...)
}

// RequireAny guards a route with at least one of the listed permissions.
func (ctx *RouterContext) RequireAny(permissions ...string) gin.HandlerFunc {
	return httpkit.RequireAnyPermission(ctx.Permissions, ctx.Logger, permissions...)
}
