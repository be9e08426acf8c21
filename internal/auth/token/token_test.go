package token

import (
	"context"
	"testing"
	"time"

	"dentalcare_backend/platform/apperr"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestIssueAndAuthenticate(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	m := NewManager("secret", 15*time.Minute, fixedClock(now))
	userID := uuid.New()

	raw, expiresAt, err := m.Issue(userID, "drg_siti", []string{"dokter"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(15 * time.Minute)) {
		t.Fatalf("unexpected expiry %v", expiresAt)
	}

	p, err := m.Authenticate(context.Background(), "Bearer "+raw)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if p.UserID != userID || p.Username != "drg_siti" || len(p.Roles) != 1 || p.Roles[0] != "dokter" {
		t.Fatalf("unexpected principal %+v", p)
	}
}

func TestAuthenticateHeaderErrors(t *testing.T) {
	m := NewManager("secret", time.Minute, nil)

	cases := []struct {
		header string
		kind   apperr.Kind
	}{
		{"", apperr.KindMissingAuthorization},
		{"Bearer", apperr.KindTokenNotProvided},
		{"Basic dXNlcjpwYXNz", apperr.KindInvalidAuthScheme},
		{"Bearer not-a-jwt", apperr.KindInvalidTokenFormat},
		{"Bearer aaa.bbb.ccc", apperr.KindUnauthorized},
	}
	for _, tc := range cases {
		if _, err := m.Authenticate(context.Background(), tc.header); !apperr.Is(err, tc.kind) {
			t.Fatalf("%q: expected %s, got %v", tc.header, tc.kind, err)
		}
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	now := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	issuer := NewManager("secret", time.Minute, fixedClock(now))
	raw, _, err := issuer.Issue(uuid.New(), "budi", []string{"staf"})
	if err != nil {
		t.Fatal(err)
	}

	later := NewManager("secret", time.Minute, fixedClock(now.Add(2*time.Minute)))
	_, err = later.Parse(raw)
	if !apperr.Is(err, apperr.KindUnauthorized) || err.(*apperr.Error).Message != "token expired" {
		t.Fatalf("expected token expired, got %v", err)
	}

	other := NewManager("other-secret", time.Minute, fixedClock(now))
	if _, err := other.Parse(raw); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected signature failure, got %v", err)
	}
}

func TestParseRejectsNonAccessTokens(t *testing.T) {
	now := time.Now()
	claims := Claims{
		Type: "refresh",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := NewManager("secret", time.Minute, nil).Parse(raw); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected refresh token to be rejected, got %v", err)
	}
}

func TestParseRejectsOtherAlgorithms(t *testing.T) {
	claims := Claims{
		Type: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewManager("secret", time.Minute, nil).Parse(raw); !apperr.Is(err, apperr.KindUnauthorized) {
		t.Fatalf("expected HS512 token to be rejected, got %v", err)
	}
}
