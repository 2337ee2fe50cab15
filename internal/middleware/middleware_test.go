package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"documentum/internal/auth"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/httputil"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(httputil.GetUserID(r)))
	})
}

func TestAuthMiddleware(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	tokens, err := auth.NewHMACTokenService("test-secret", time.Hour, func() time.Time { return now }, testLogger())
	if err != nil {
		t.Fatalf("NewHMACTokenService: %v", err)
	}
	token, err := tokens.Issue(docsystem.User{ID: "user-1", Email: "john.doe@company.com"}, "google")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	h := AuthMiddleware(tokens, testLogger())(echoUser())

	tests := []struct {
		name     string
		method   string
		path     string
		header   string
		wantCode int
		wantBody string
	}{
		{"valid token", http.MethodGet, "/api/ui", "Bearer " + token, http.StatusOK, "user-1"},
		{"missing header", http.MethodGet, "/api/ui", "", http.StatusUnauthorized, ""},
		{"wrong scheme", http.MethodGet, "/api/ui", "Basic " + token, http.StatusUnauthorized, ""},
		{"garbage token", http.MethodGet, "/api/ui", "Bearer nope", http.StatusUnauthorized, ""},
		{"health is public", http.MethodGet, "/health", "", http.StatusOK, ""},
		{"oauth is public", http.MethodPost, "/api/auth/oauth/google", "", http.StatusOK, ""},
		{"login is public", http.MethodPost, "/api/auth/login", "", http.StatusOK, ""},
		{"signout is not public", http.MethodPost, "/api/auth/signout", "", http.StatusUnauthorized, ""},
		{"preflight passes", http.MethodOptions, "/api/ui", "", http.StatusOK, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantCode)
			}
			if tt.wantCode == http.StatusOK && rec.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestRecovery(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ui", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
}

func TestRecovery_RepanicsAbort(t *testing.T) {
	h := Recovery(testLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic(http.ErrAbortHandler)
	}))

	defer func() {
		if rec := recover(); rec != http.ErrAbortHandler {
			t.Fatalf("recovered %v, want http.ErrAbortHandler", rec)
		}
	}()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/ui", nil))
	t.Fatal("ServeHTTP returned without panicking")
}
