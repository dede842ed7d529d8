package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/staffdesk/apiserver/config"
	"github.com/staffdesk/apiserver/types"
)

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:        "test-secret",
		Issuer:        "staffdesk",
		Audience:      "staffdesk-clients",
		ExpiryMinutes: 60,
	}
}

func newTestIssuer(t *testing.T, cfg config.JWTConfig) *TokenIssuer {
	t.Helper()
	issuer, err := NewTokenIssuer(cfg)
	if err != nil {
		t.Fatalf("new token issuer: %v", err)
	}
	return issuer
}

func testUser() types.User {
	return types.User{
		ID:        7,
		Username:  "jsmith",
		Email:     "jane.smith@company.com",
		FirstName: "Jane",
		LastName:  "Smith",
		Role:      types.RoleHR,
		IsActive:  true,
	}
}

func TestNewTokenIssuerRequiresSettings(t *testing.T) {
	cfg := testJWTConfig()
	cfg.Secret = " "
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Fatalf("expected missing secret to fail")
	}
	cfg = testJWTConfig()
	cfg.Audience = ""
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Fatalf("expected missing audience to fail")
	}
	cfg = testJWTConfig()
	cfg.ExpiryMinutes = 0
	if _, err := NewTokenIssuer(cfg); err == nil {
		t.Fatalf("expected zero expiry to fail")
	}
}

func TestIssueAndParseRoundTrip(t *testing.T) {
	issuer := newTestIssuer(t, testJWTConfig())
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return now }

	token, expiresAt, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if !expiresAt.Equal(now.Add(time.Hour)) {
		t.Fatalf("unexpected expiry: %v", expiresAt)
	}

	claims, err := issuer.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	id, err := claims.UserID()
	if err != nil || id != 7 {
		t.Fatalf("unexpected subject: %d, %v", id, err)
	}
	if claims.Role != types.RoleHR || claims.Username != "jsmith" || claims.Email != "jane.smith@company.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Name != "Jane Smith" {
		t.Fatalf("unexpected display name: %q", claims.Name)
	}
}

func TestParseRejectsInvalidTokens(t *testing.T) {
	base := testJWTConfig()
	issuer := newTestIssuer(t, base)

	valid, _, err := issuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	expiredIssuer := newTestIssuer(t, base)
	expiredIssuer.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	expired, _, err := expiredIssuer.Issue(testUser())
	if err != nil {
		t.Fatalf("issue expired: %v", err)
	}

	otherIssuerCfg := base
	otherIssuerCfg.Issuer = "someone-else"
	wrongIssuer, _, _ := newTestIssuer(t, otherIssuerCfg).Issue(testUser())

	otherAudienceCfg := base
	otherAudienceCfg.Audience = "other-clients"
	wrongAudience, _, _ := newTestIssuer(t, otherAudienceCfg).Issue(testUser())

	otherSecretCfg := base
	otherSecretCfg.Secret = "different-secret"
	badSignature, _, _ := newTestIssuer(t, otherSecretCfg).Issue(testUser())

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    base.Issuer,
		Audience:  jwt.ClaimStrings{base.Audience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none token: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{name: "expired", token: expired},
		{name: "wrong_issuer", token: wrongIssuer},
		{name: "wrong_audience", token: wrongAudience},
		{name: "bad_signature", token: badSignature},
		{name: "tampered", token: splice(valid, wrongAudience)},
		{name: "alg_none", token: noneToken},
		{name: "garbage", token: "not.a.token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := issuer.Parse(tt.token); err == nil {
				t.Fatalf("expected %s token to be rejected", tt.name)
			}
		})
	}

	if _, err := issuer.Parse(valid); err != nil {
		t.Fatalf("expected valid token to parse: %v", err)
	}
}

func TestParseRejectsNonNumericSubject(t *testing.T) {
	cfg := testJWTConfig()
	issuer := newTestIssuer(t, cfg)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		Role: types.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(cfg.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := issuer.Parse(token); err == nil || !strings.Contains(err.Error(), "subject") {
		t.Fatalf("expected subject error, got %v", err)
	}
}

// splice keeps the header and signature of signed but swaps in the payload of other.
func splice(signed, other string) string {
	a := strings.Split(signed, ".")
	b := strings.Split(other, ".")
	return a[0] + "." + b[1] + "." + a[2]
}
