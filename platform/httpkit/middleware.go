package httpkit

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// HeaderRequestID carries the request correlation ID.
const HeaderRequestID = "X-Request-ID"

// Authenticator turns an Authorization header into a Principal.
type Authenticator interface {
	Authenticate(ctx context.Context, authorizationHeader string) (Principal, error)
}

// PermissionChecker decides route access from a role set.
type PermissionChecker interface {
	HasAnyPermission(roles []string, permissions []string) bool
	HasAllPermissions(roles []string, permissions []string) bool
}

// RequestID propagates an incoming X-Request-ID or assigns a new one, and
// stores it on the request context for the logger.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(HeaderRequestID))
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs HTTP requests with timing. Server errors recorded on
// the context are logged with their cause.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		status := c.Writer.Status()
		reqLog := log.WithContext(c.Request.Context())
		if status >= http.StatusInternalServerError && len(c.Errors) > 0 {
			reqLog.HTTPError(c.Request.Method, path, status, c.Errors.Last().Err, c.ClientIP())
			return
		}
		reqLog.HTTPRequest(c.Request.Method, path, status, float64(time.Since(start).Milliseconds()), c.ClientIP())
	}
}

// SecurityHeaders adds security headers to responses.
func SecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Header("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
		c.Header("Cache-Control", "no-store")

		if c.Request.TLS != nil {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

const (
	limiterIdleTTL = 10 * time.Minute
	sweepInterval  = time.Minute
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// IPRateLimiter manages per-IP rate limiters. Limiters idle for longer than
// the idle TTL are dropped; by then their bucket has refilled, so the next
// request from that IP sees the same budget either way.
type IPRateLimiter struct {
	limiters  sync.Map
	rate      rate.Limit
	burst     int
	log       *logger.Logger
	idleTTL   time.Duration
	now       func() time.Time
	nextSweep atomic.Int64
}

// NewIPRateLimiter creates a new IP-based rate limiter.
func NewIPRateLimiter(r rate.Limit, burst int, log *logger.Logger) *IPRateLimiter {
	return &IPRateLimiter{rate: r, burst: burst, log: log, idleTTL: limiterIdleTTL, now: time.Now}
}

func (i *IPRateLimiter) getLimiter(ip string) *rate.Limiter {
	now := i.now()
	i.sweep(now)

	value, ok := i.limiters.Load(ip)
	if !ok {
		entry := &ipLimiter{limiter: rate.NewLimiter(i.rate, i.burst)}
		entry.lastSeen.Store(now.UnixNano())
		value, _ = i.limiters.LoadOrStore(ip, entry)
	}
	entry := value.(*ipLimiter)
	entry.lastSeen.Store(now.UnixNano())
	return entry.limiter
}

// sweep drops idle limiters, at most once per sweepInterval.
func (i *IPRateLimiter) sweep(now time.Time) {
	next := i.nextSweep.Load()
	if now.UnixNano() < next || !i.nextSweep.CompareAndSwap(next, now.Add(sweepInterval).UnixNano()) {
		return
	}
	cutoff := now.Add(-i.idleTTL).UnixNano()
	i.limiters.Range(func(key, value any) bool {
		if value.(*ipLimiter).lastSeen.Load() < cutoff {
			i.limiters.CompareAndDelete(key, value)
		}
		return true
	})
}

// RateLimit returns a middleware that rate limits by IP.
func (i *IPRateLimiter) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if !i.getLimiter(ip).Allow() {
			if i.log != nil {
				i.log.RateLimitExceeded(ip, c.Request.URL.Path)
			}
			Abort(c, apperr.TooManyRequests("rate limit exceeded"))
			return
		}
		c.Next()
	}
}

// AuthRateLimiter is a stricter rate limiter for auth endpoints.
type AuthRateLimiter struct {
	*IPRateLimiter
}

// NewAuthRateLimiter allows 10 sign-in requests per minute per IP.
func NewAuthRateLimiter(log *logger.Logger) *AuthRateLimiter {
	return &AuthRateLimiter{
		IPRateLimiter: NewIPRateLimiter(rate.Limit(10.0/60.0), 10, log),
	}
}

// AuthRequired rejects requests without a valid bearer token. Failures are
// 401 responses carrying the failure code.
func AuthRequired(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			if apperr.GetKind(err) == apperr.KindUnknown {
				err = apperr.Wrap(apperr.KindUnauthorized, "invalid token", err)
			}
			Abort(c, err)
			return
		}

		SetPrincipal(c, principal)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, principal.UserID.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequirePermission allows the request only if the caller's roles grant
// every listed permission.
func RequirePermission(checker PermissionChecker, log *logger.Logger, permissions ...string) gin.HandlerFunc {
	return requirePermissions(checker.HasAllPermissions, log, permissions)
}

// RequireAnyPermission allows the request if any listed permission is granted.
func RequireAnyPermission(checker PermissionChecker, log *logger.Logger, permissions ...string) gin.HandlerFunc {
	return requirePermissions(checker.HasAnyPermission, log, permissions)
}

func requirePermissions(allowed func(roles, permissions []string) bool, log *logger.Logger, permissions []string) gin.HandlerFunc {
	required := strings.Join(permissions, ",")
	return func(c *gin.Context) {
		id := MustGetIdentity(c)
		if id == nil {
			return
		}
		if !allowed(id.Roles(), permissions) {
			if log != nil {
				log.WithContext(c.Request.Context()).PermissionDenied(id.UserID().String(), required, c.Request.URL.Path)
			}
			Abort(c, apperr.Forbidden("forbidden"))
			return
		}
		c.Next()
	}
}
