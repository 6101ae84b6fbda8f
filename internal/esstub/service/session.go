package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aussiebroadwan/memberauth/pkg/idx"
)

// ErrInvalidSession reports a session token that fails verification.
var ErrInvalidSession = errors.New("service: invalid session token")

// issueSession signs an HS256 session token for username.
func (s *Service) issueSession(username string, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Issuer:    s.cfg.Issuer,
		Subject:   username,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.SessionTTL)),
		ID:        idx.NewAt(now).String(),
	}
	if s.cfg.AppID != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.AppID}
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.SigningSecret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// VerifySession checks a session token issued by this service and returns
// its claims.
func (s *Service) VerifySession(token string) (*jwt.RegisteredClaims, error) {
	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims,
		func(*jwt.Token) (any, error) { return s.cfg.SigningSecret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSession, err)
	}
	return &claims, nil
}
