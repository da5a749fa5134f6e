package application

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

func TestJWTIssuerRoundTrip(t *testing.T) {
	issuer, err := NewJWTIssuer("k", time.Hour, WithIssuer("staff-auth-service"))
	require.NoError(t, err)

	before := time.Now().Truncate(time.Second)
	token, expiresAt, err := issuer.Issue("E1001")
	require.NoError(t, err)
	assert.Len(t, strings.Split(token, "."), 3)
	assert.WithinDuration(t, before.Add(time.Hour), expiresAt, 2*time.Second)

	subject, exp, err := issuer.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "E1001", subject)
	assert.True(t, exp.Equal(expiresAt))
}

func TestJWTIssuerExpired(t *testing.T) {
	past := time.Now().Add(-2 * time.Hour)
	old, err := NewJWTIssuer("k", time.Hour, WithClock(func() time.Time { return past }))
	require.NoError(t, err)
	token, _, err := old.Issue("E1001")
	require.NoError(t, err)

	current, err := NewJWTIssuer("k", time.Hour)
	require.NoError(t, err)
	_, _, err = current.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	assert.NotErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTIssuerExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	clock := issuedAt
	issuer, err := NewJWTIssuer("k", time.Hour, WithClock(func() time.Time { return clock }))
	require.NoError(t, err)

	token, expiresAt, err := issuer.Issue("E1001")
	require.NoError(t, err)
	require.True(t, expiresAt.Equal(issuedAt.Add(time.Hour)))

	clock = expiresAt
	subject, _, err := issuer.Validate(token)
	require.NoError(t, err, "valid at the exact expiry instant")
	assert.Equal(t, "E1001", subject)

	clock = expiresAt.Add(time.Millisecond)
	_, _, err = issuer.Validate(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestJWTIssuerTamperedSignature(t *testing.T) {
	issuer, err := NewJWTIssuer("k", time.Hour)
	require.NoError(t, err)
	token, _, err := issuer.Issue("E1001")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	sig := []byte(parts[2])
	mid := len(sig) / 2
	if sig[mid] == 'A' {
		sig[mid] = 'B'
	} else {
		sig[mid] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, _, err = issuer.Validate(tampered)
	assert.ErrorIs(t, err, domain.ErrTokenInvalid)
}

func TestJWTIssuerRejects(t *testing.T) {
	issuer, err := NewJWTIssuer("k", time.Hour)
	require.NoError(t, err)

	otherKey, err := NewJWTIssuer("other", time.Hour)
	require.NoError(t, err)
	foreign, _, err := otherKey.Issue("E1001")
	require.NoError(t, err)

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{
		Subject:   "E1001",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	noExp, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "E1001"}).SignedString([]byte("k"))
	require.NoError(t, err)

	noSubject, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"empty", ""},
		{"wrong key", foreign},
		{"alg none", noneToken},
		{"missing exp", noExp},
		{"missing subject", noSubject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := issuer.Validate(tt.token)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
		})
	}
}

func TestNewJWTIssuerValidation(t *testing.T) {
	_, err := NewJWTIssuer("", time.Hour)
	assert.Error(t, err)
	_, err = NewJWTIssuer("k", 0)
	assert.Error(t, err)
	_, _, err = mustIssuer(t).Issue("")
	assert.Error(t, err)
}

func mustIssuer(t *testing.T) *JWTIssuer {
	t.Helper()
	issuer, err := NewJWTIssuer("k", time.Hour)
	require.NoError(t, err)
	return issuer
}
