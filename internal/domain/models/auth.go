package models

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is the JWT claim set of a console session
type SessionClaims struct {
	jwt.RegisteredClaims        // sub is the user id
	Email                string `json:"email"`
	Name                 string `json:"name"`
	Role                 string `json:"role"`
	Provider             string `json:"provider"` // "email" or an OAuth provider id
	SessionID            string `json:"session_id"`
}

// GetUserID returns the user ID from the subject claim
func (c *SessionClaims) GetUserID() string {
	return c.Subject
}
