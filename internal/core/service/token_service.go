package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/identity-systems/user-api/internal/core/domain"
)

const defaultTokenTTL = 7 * 24 * time.Hour

// TokenService issues and validates HS256-signed bearer tokens. The
// signing key and validity window are fixed at construction; there is no
// rotation, so every token issued by one instance validates against it
// for the token's whole lifetime.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenService(secret string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	return &TokenService{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue creates a token asserting subject, valid from now for the
// configured window.
func (s *TokenService) Issue(subject string) (string, error) {
	now := s.now().UTC()
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Refresh issues a fresh token for an already-authenticated subject. The
// prior token stays valid until its own expiry.
func (s *TokenService) Refresh(subject string) (string, error) {
	return s.Issue(subject)
}

// Validate checks signature and expiry and returns the subject. It fails
// closed: malformed tokens, wrong signing method, bad signatures and
// expired tokens all yield domain.ErrTokenInvalid. Whether the subject
// still exists is the caller's concern, not the token's.
func (s *TokenService) Validate(raw string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	tkn, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil || !tkn.Valid || claims.Subject == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.Subject, nil
}
