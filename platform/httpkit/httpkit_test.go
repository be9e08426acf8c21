package httpkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
	"time"

	"dentalcare_backend/platform/apperr"
	"dentalcare_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubAuthenticator struct {
	principal Principal
	err       error
}

func (s stubAuthenticator) Authenticate(context.Context, string) (Principal, error) {
	return s.principal, s.err
}

type roleChecker map[string][]string

func (r roleChecker) has(roles []string, permission string) bool {
	for _, role := range roles {
		if slices.Contains(r[role], permission) {
			return true
		}
	}
	return false
}

func (r roleChecker) HasAnyPermission(roles []string, permissions []string) bool {
	for _, p := range permissions {
		if r.has(roles, p) {
			return true
		}
	}
	return false
}

func (r roleChecker) HasAllPermissions(roles []string, permissions []string) bool {
	if len(roles) == 0 || len(permissions) == 0 {
		return false
	}
	for _, p := range permissions {
		if !r.has(roles, p) {
			return false
		}
	}
	return true
}

func quietLogger() *logger.Logger {
	return logger.NewWithWriter("production", io.Discard)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func newProtectedEngine(auth Authenticator, checker PermissionChecker, permissions ...string) *gin.Engine {
	engine := gin.New()
	engine.Use(RequestID())
	group := engine.Group("/", AuthRequired(auth))
	group.GET("/me", func(c *gin.Context) {
		id := MustGetIdentity(c)
		OK(c, gin.H{"username": id.Username(), "userId": id.UserID().String()})
	})
	group.GET("/users", RequirePermission(checker, quietLogger(), permissions...), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})
	group.GET("/any", RequireAnyPermission(checker, quietLogger(), permissions...), func(c *gin.Context) {
		OK(c, gin.H{"ok": true})
	})
	return engine
}

func TestAuthRequiredRejectsWithKindCode(t *testing.T) {
	auth := stubAuthenticator{err: apperr.New(apperr.KindTokenNotProvided, "bearer token not provided")}
	engine := newProtectedEngine(auth, roleChecker{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "TokenNotProvided" {
		t.Fatalf("unexpected code %q", body.Code)
	}
}

func TestAuthRequiredWrapsUntypedErrors(t *testing.T) {
	engine := newProtectedEngine(stubAuthenticator{err: errors.New("signature is invalid")}, roleChecker{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "Unauthorized" || body.Error != "invalid token" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestAuthRequiredSetsIdentity(t *testing.T) {
	userID := uuid.New()
	auth := stubAuthenticator{principal: Principal{UserID: userID, Username: "drg_siti", Roles: []string{"dokter"}}}
	engine := newProtectedEngine(auth, roleChecker{})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["username"] != "drg_siti" || body["userId"] != userID.String() {
		t.Fatalf("unexpected body %v", body)
	}
	if rec.Header().Get(HeaderRequestID) == "" {
		t.Fatal("expected request id header")
	}
}

func TestRequirePermission(t *testing.T) {
	checker := roleChecker{"kepala_klinik": {"users:manage", "users:view"}, "staf": {"users:view"}}

	cases := []struct {
		role string
		path string
		want int
	}{
		{"kepala_klinik", "/users", http.StatusOK},
		{"staf", "/users", http.StatusForbidden},
		{"staf", "/any", http.StatusOK},
		{"dokter", "/any", http.StatusForbidden},
	}

	for _, tc := range cases {
		auth := stubAuthenticator{principal: Principal{UserID: uuid.New(), Roles: []string{tc.role}}}
		engine := newProtectedEngine(auth, checker, "users:manage", "users:view")

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if rec.Code != tc.want {
			t.Fatalf("%s %s: expected %d, got %d", tc.role, tc.path, tc.want, rec.Code)
		}
		if tc.want == http.StatusForbidden && decodeError(t, rec).Code != "Forbidden" {
			t.Fatalf("%s %s: expected Forbidden code", tc.role, tc.path)
		}
	}
}

func TestMustGetIdentityWithoutAuth(t *testing.T) {
	engine := gin.New()
	engine.GET("/me", func(c *gin.Context) {
		if MustGetIdentity(c) != nil {
			OK(c, gin.H{})
		}
	})

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestHandleError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{apperr.ValidationFailed("diskon", "Diskon tidak valid"), http.StatusBadRequest, "ValidationFailed"},
		{fmt.Errorf("preview: %w", apperr.InvalidValueObject("amount must not be negative")), http.StatusBadRequest, "InvalidValueObject"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Internal"},
	}

	for _, tc := range cases {
		engine := gin.New()
		engine.GET("/", func(c *gin.Context) { HandleError(c, tc.err) })

		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		if rec.Code != tc.status {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
		body := decodeError(t, rec)
		if body.Code != tc.code {
			t.Fatalf("%v: expected code %s, got %s", tc.err, tc.code, body.Code)
		}
		if tc.status == http.StatusInternalServerError && body.Error != msgInternal {
			t.Fatalf("internal error message leaked: %q", body.Error)
		}
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(rate.Limit(0.001), 2, quietLogger())
	engine := gin.New()
	engine.GET("/", limiter.RateLimit(), func(c *gin.Context) { OK(c, gin.H{}) })

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		statuses = append(statuses, rec.Code)
	}
	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK || statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected statuses %v", statuses)
	}
}

func countLimiters(l *IPRateLimiter) map[string]bool {
	ips := make(map[string]bool)
	l.limiters.Range(func(key, _ any) bool {
		ips[key.(string)] = true
		return true
	})
	return ips
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(rate.Limit(1), 1, quietLogger())
	limiter.now = func() time.Time { return now }

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		limiter.getLimiter(ip)
	}
	now = now.Add(5 * time.Minute)
	kept := limiter.getLimiter("10.0.0.1")

	now = now.Add(6 * time.Minute)
	limiter.getLimiter("10.0.0.4")

	ips := countLimiters(limiter)
	if len(ips) != 2 || !ips["10.0.0.1"] || !ips["10.0.0.4"] {
		t.Fatalf("expected only recently seen clients to remain, got %v", ips)
	}
	if limiter.getLimiter("10.0.0.1") != kept {
		t.Fatal("expected an active client to keep its limiter")
	}
}

func TestRateLimiterSweepsAtMostOncePerInterval(t *testing.T) {
	now := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(rate.Limit(1), 1, quietLogger())
	limiter.now = func() time.Time { return now }
	limiter.idleTTL = time.Second

	limiter.getLimiter("10.0.0.1")
	now = now.Add(30 * time.Second)
	limiter.getLimiter("10.0.0.2")
	if ips := countLimiters(limiter); len(ips) != 2 {
		t.Fatalf("expected no sweep inside the interval, got %v", ips)
	}

	now = now.Add(sweepInterval)
	limiter.getLimiter("10.0.0.3")
	if ips := countLimiters(limiter); len(ips) != 1 || !ips["10.0.0.3"] {
		t.Fatalf("expected idle clients swept, got %v", ips)
	}
}

func TestSecurityHeaders(t *testing.T) {
	engine := gin.New()
	engine.Use(SecurityHeaders())
	engine.GET("/", func(c *gin.Context) { OK(c, gin.H{}) })

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" || rec.Header().Get("X-Frame-Options") != "DENY" {
		t.Fatalf("missing security headers: %v", rec.Header())
	}
}
