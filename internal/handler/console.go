package handler

import (
	"context"
	"net/http"
	"time"

	"documentum/internal/httputil"
	"documentum/internal/service/console"
)

// Sessions resolves the console session of the signed-in user
type Sessions interface {
	Session(ctx context.Context, userID string) (*console.Session, error)
	End(userID string) bool
}

// sessionFor loads the caller's session, writing the error response itself
func sessionFor(w http.ResponseWriter, r *http.Request, sessions Sessions) (*console.Session, bool) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing user")
		return nil, false
	}
	s, err := sessions.Session(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return nil, false
	}
	return s, true
}

// HealthCheck is a simple health check endpoint
// GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now(),
	})
}
