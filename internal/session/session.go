package session

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"branchpulse/internal/util"
)

const (
	tokenIssuer   = "branchpulse"
	tokenAudience = "branchpulse-admin"
)

// ErrInvalidToken covers every verification failure: bad signature, expired,
// malformed, wrong issuer/audience, revoked. Callers must not distinguish.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the decoded identity attached to a verified request.
type Claims struct {
	AdminID string
	Email   string
}

type tokenClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies HMAC-SHA256 bearer tokens with a fixed TTL.
// An optional Revoker turns logout into a denylist entry; without one,
// tokens simply age out.
type Sessions struct {
	secret  []byte
	ttl     time.Duration
	revoker Revoker
}

// New builds a session manager. The secret comes from configuration and has
// no default.
func New(secret string, ttl time.Duration, revoker Revoker) (*Sessions, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, errors.New("session secret is required")
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Sessions{secret: []byte(secret), ttl: ttl, revoker: revoker}, nil
}

// Issue creates a signed token for the admin.
func (s *Sessions) Issue(adminID, email string) (string, error) {
	now := time.Now().UTC()
	claims := tokenClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   adminID,
			Issuer:    tokenIssuer,
			Audience:  jwt.ClaimStrings{tokenAudience},
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ID:        util.NewID(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, expiry, issuer and audience, and the revocation
// denylist when configured. All failures collapse to ErrInvalidToken.
func (s *Sessions) Verify(token string) (Claims, error) {
	claims, err := s.parse(token)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	if s.revoker != nil {
		revoked, err := s.revoker.IsRevoked(claims.ID)
		if err != nil || revoked {
			return Claims{}, ErrInvalidToken
		}
	}
	return Claims{AdminID: claims.Subject, Email: claims.Email}, nil
}

// Revoke denylists the token until its natural expiry. A no-op without a
// configured revoker.
func (s *Sessions) Revoke(token string) error {
	if s.revoker == nil {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		return ErrInvalidToken
	}
	until := time.Until(claims.ExpiresAt.Time)
	if until <= 0 {
		return nil
	}
	return s.revoker.Revoke(claims.ID, until)
}

func (s *Sessions) parse(token string) (*tokenClaims, error) {
	claims := &tokenClaims{}
	parsed, err := jwt.ParseWithClaims(
		token,
		claims,
		func(t *jwt.Token) (any, error) { return s.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
