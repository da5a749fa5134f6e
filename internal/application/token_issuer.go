package application

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"gitlab.com/timkado/api/staff-auth-service/internal/domain"
)

// JWTIssuer implements domain.TokenIssuer with HS256-signed JWTs.
type JWTIssuer struct {
	secret []byte
	expiry time.Duration
	issuer string
	now    func() time.Time
	parser *jwt.Parser
}

// JWTOption customizes a JWTIssuer.
type JWTOption func(*JWTIssuer)

// WithIssuer sets the iss claim.
func WithIssuer(iss string) JWTOption {
	return func(j *JWTIssuer) { j.issuer = iss }
}

// WithClock replaces time.Now, used by tests to issue tokens in the past.
func WithClock(now func() time.Time) JWTOption {
	return func(j *JWTIssuer) { j.now = now }
}

// NewJWTIssuer creates a token issuer signing with secret. Tokens live for expiry.
func NewJWTIssuer(secret string, expiry time.Duration, opts ...JWTOption) (*JWTIssuer, error) {
	if secret == "" {
		return nil, errors.New("token secret must not be empty")
	}
	if expiry <= 0 {
		return nil, fmt.Errorf("token expiry must be positive, got %s", expiry)
	}
	j := &JWTIssuer{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithStrictDecoding(),
		jwt.WithTimeFunc(func() time.Time { return j.now() }),
		// jwt treats now == exp as expired; a token stays valid through its expiry instant.
		jwt.WithLeeway(time.Nanosecond),
	}
	if j.issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(j.issuer))
	}
	j.parser = jwt.NewParser(parserOpts...)
	return j, nil
}

var _ domain.TokenIssuer = (*JWTIssuer)(nil)

// Issue signs a token for subject and returns it with its absolute expiry.
func (j *JWTIssuer) Issue(subject string) (string, time.Time, error) {
	if subject == "" {
		return "", time.Time{}, errors.New("token subject must not be empty")
	}
	now := j.now().Truncate(time.Second) // NumericDate has second precision
	expiresAt := now.Add(j.expiry)

	claims := jwt.RegisteredClaims{
		Subject:   subject,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        uuid.NewString(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, expiresAt, nil
}

// Validate checks signature and expiry and returns the token subject.
// A token is expired only once the clock is strictly past its exp claim.
func (j *JWTIssuer) Validate(token string) (string, time.Time, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := j.parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrTokenExpired, err)
		}
		return "", time.Time{}, fmt.Errorf("%w: %w", domain.ErrTokenInvalid, err)
	}
	if claims.Subject == "" || claims.ExpiresAt == nil {
		return "", time.Time{}, fmt.Errorf("%w: missing subject", domain.ErrTokenInvalid)
	}
	return claims.Subject, claims.ExpiresAt.Time, nil
}
