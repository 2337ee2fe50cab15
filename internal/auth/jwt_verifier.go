package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"documentum/internal/domain"
	"documentum/internal/domain/models"
	"documentum/internal/domain/models/docsystem"
)

// DefaultSessionTTL is how long an issued session token stays valid
const DefaultSessionTTL = 12 * time.Hour

const issuer = "documentum"

// HMACTokenService issues and verifies HS256 session tokens with a shared secret
type HMACTokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger
}

// NewHMACTokenService creates a token service. now may be nil for the wall clock.
func NewHMACTokenService(secret string, ttl time.Duration, now func() time.Time, logger *slog.Logger) (*HMACTokenService, error) {
	if secret == "" {
		return nil, errors.New("session secret cannot be empty")
	}
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if now == nil {
		now = time.Now
	}
	return &HMACTokenService{secret: []byte(secret), ttl: ttl, now: now, logger: logger}, nil
}

var _ JWTVerifier = (*HMACTokenService)(nil)

// Issue signs a session token for user
func (s *HMACTokenService) Issue(user docsystem.User, provider string) (string, error) {
	now := s.now()
	claims := models.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Email:     user.Email,
		Name:      user.Name,
		Role:      string(user.Role),
		Provider:  provider,
		SessionID: uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a token and extracts its claims
func (s *HMACTokenService) VerifyToken(tokenString string) (*models.SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.SessionClaims{},
		func(*jwt.Token) (interface{}, error) { return s.secret, nil },
		// Only HS256 is accepted, preventing algorithm confusion
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		s.logger.Debug("token parse failed", "error", err)
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(*models.SessionClaims)
	if !ok || !token.Valid {
		s.logger.Warn("token claims invalid")
		return nil, domain.ErrUnauthorized
	}

	if claims.Subject == "" {
		s.logger.Debug("token missing subject claim")
		return nil, domain.ErrUnauthorized
	}

	return claims, nil
}

// Close is a no-op; the secret lives in memory only
func (s *HMACTokenService) Close() error {
	return nil
}
