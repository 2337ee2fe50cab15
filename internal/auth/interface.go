package auth

import "documentum/internal/domain/models"

// JWTVerifier validates session tokens for the HTTP middleware
type JWTVerifier interface {
	// VerifyToken validates a token string and returns its claims.
	// Any failure is reported as domain.ErrUnauthorized.
	VerifyToken(tokenString string) (*models.SessionClaims, error)

	// Close releases resources held by the verifier
	Close() error
}
