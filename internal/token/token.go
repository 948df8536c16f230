// Package token issues and verifies the HS256 session tokens handed out at
// signin. Tokens are stateless: there is no revocation, only expiry.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/ErlanBelekov/credit-market/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMalformed = errors.New("token is malformed")
	ErrSignature = errors.New("token signature is invalid")
	ErrExpired   = errors.New("token has expired")
)

type Claims struct {
	Email string      `json:"email"`
	Role  domain.Role `json:"role"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewManager(secret []byte, ttl time.Duration) *Manager {
	return &Manager{secret: secret, ttl: ttl, now: time.Now}
}

func (m *Manager) TTL() time.Duration {
	return m.ttl
}

// Issue signs a token for email/role that expires TTL from now. Times are
// truncated to whole seconds, the precision of the exp claim, so the
// returned expiry is the one Parse enforces.
func (m *Manager) Issue(email string, role domain.Role) (string, time.Time, error) {
	now := m.now().Truncate(time.Second)
	expiresAt := now.Add(m.ttl)

	claims := Claims{
		Email: email,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign jwt: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies signature and expiry. The returned error is always one of
// ErrMalformed, ErrSignature or ErrExpired.
func (m *Manager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}

	tok, err := jwt.ParseWithClaims(raw, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return nil, ErrSignature
	case err != nil:
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	case !tok.Valid:
		return nil, ErrMalformed
	}

	if claims.Email == "" || !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: missing email or role claim", ErrMalformed)
	}
	return claims, nil
}
