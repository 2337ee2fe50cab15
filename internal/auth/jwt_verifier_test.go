package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"documentum/internal/domain"
	"documentum/internal/domain/models/docsystem"
)

var testUser = docsystem.User{ID: "user-1", Name: "John Doe", Email: "john.doe@company.com", Role: docsystem.RoleAdmin}

func newTestTokens(t *testing.T, now *time.Time) *HMACTokenService {
	t.Helper()
	svc, err := NewHMACTokenService("test-secret", time.Hour, func() time.Time { return *now }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("NewHMACTokenService: %v", err)
	}
	return svc
}

func TestHMACTokenService_RoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc := newTestTokens(t, &now)

	token, err := svc.Issue(testUser, "google")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	claims, err := svc.VerifyToken(token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if claims.GetUserID() != "user-1" || claims.Email != testUser.Email || claims.Provider != "google" {
		t.Errorf("claims = %+v", claims)
	}
	if claims.SessionID == "" {
		t.Error("session id not set")
	}
}

func TestHMACTokenService_Rejects(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	svc := newTestTokens(t, &now)
	valid, err := svc.Issue(testUser, "email")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	other, _ := NewHMACTokenService("other-secret", time.Hour, func() time.Time { return now }, slog.New(slog.NewTextHandler(io.Discard, nil)))
	forged, _ := other.Issue(testUser, "email")

	unsigned, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "user-1", "iss": "documentum"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name  string
		token string
		at    time.Time
	}{
		{name: "garbage", token: "not-a-token", at: now},
		{name: "wrong secret", token: forged, at: now},
		{name: "none algorithm", token: unsigned, at: now},
		{name: "expired", token: valid, at: now.Add(2 * time.Hour)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := tt.at
			checker := newTestTokens(t, &clock)
			if _, err := checker.VerifyToken(tt.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Errorf("VerifyToken error = %v, want ErrUnauthorized", err)
			}
		})
	}
}

func TestNewHMACTokenService_EmptySecret(t *testing.T) {
	if _, err := NewHMACTokenService("", 0, nil, slog.Default()); err == nil {
		t.Fatal("expected error for empty secret")
	}
}
