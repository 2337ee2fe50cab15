package handler

import (
	"log/slog"
	"net"
	"net/http"
	"sync"

	"documentum/internal/domain/services"
	"documentum/internal/httputil"
	authService "documentum/internal/service/auth"
	"documentum/internal/task"
)

// AuthHandler handles login and sign-out
type AuthHandler struct {
	authenticator *authService.Authenticator
	sessions      Sessions
	scheduler     task.Scheduler
	logger        *slog.Logger

	mu       sync.Mutex
	signOuts map[string]*authService.SignOut
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authenticator *authService.Authenticator, sessions Sessions, scheduler task.Scheduler, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authenticator: authenticator,
		sessions:      sessions,
		scheduler:     scheduler,
		logger:        logger,
		signOuts:      make(map[string]*authService.SignOut),
	}
}

// ProvidersResponse lists the login options
type ProvidersResponse struct {
	Providers []authService.Provider `json:"providers"`
	Loading   string                 `json:"loading,omitempty"`
}

// ListProviders returns the OAuth providers
// GET /api/auth/providers
func (h *AuthHandler) ListProviders(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, ProvidersResponse{
		Providers: authService.Providers,
		Loading:   h.authenticator.Loading(clientKey(r)),
	})
}

// OAuthLogin signs in through a provider
// POST /api/auth/oauth/{provider}
func (h *AuthHandler) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	results, err := h.authenticator.BeginOAuth(clientKey(r), r.PathValue("provider"))
	if err != nil {
		handleError(w, err)
		return
	}
	h.awaitLogin(w, r, results)
}

// EmailLogin signs in with email and password
// POST /api/auth/login
func (h *AuthHandler) EmailLogin(w http.ResponseWriter, r *http.Request) {
	var req authService.EmailLogin
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	results, err := h.authenticator.LoginWithEmail(clientKey(r), req)
	if err != nil {
		handleError(w, err)
		return
	}
	h.awaitLogin(w, r, results)
}

// ClientIDHeader identifies a browser before it holds a session token
const ClientIDHeader = "X-Client-ID"

// clientKey identifies the caller of an unauthenticated login request: the
// X-Client-ID header when set, otherwise the remote host.
func clientKey(r *http.Request) string {
	if id := r.Header.Get(ClientIDHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (h *AuthHandler) awaitLogin(w http.ResponseWriter, r *http.Request, results <-chan authService.LoginResult) {
	select {
	case <-r.Context().Done():
		h.logger.Warn("client left during login", "error", r.Context().Err())
	case result := <-results:
		if result.Err != nil {
			handleError(w, result.Err)
			return
		}
		httputil.RespondJSON(w, http.StatusOK, result)
	}
}

// StartSignOut begins the sign-out countdown. The session ends when it runs out.
// POST /api/auth/signout
func (h *AuthHandler) StartSignOut(w http.ResponseWriter, r *http.Request) {
	userID := httputil.GetUserID(r)
	if userID == "" {
		httputil.RespondError(w, http.StatusUnauthorized, "missing user")
		return
	}

	h.mu.Lock()
	so, ok := h.signOuts[userID]
	if !ok || so.State().Done {
		so = authService.StartSignOut(h.scheduler, services.NavigatorFunc(func(path string) {
			h.finishSignOut(userID, path)
		}))
		h.signOuts[userID] = so
	}
	h.mu.Unlock()

	httputil.RespondJSON(w, http.StatusAccepted, so.State())
}

// GetSignOut returns the countdown
// GET /api/auth/signout
func (h *AuthHandler) GetSignOut(w http.ResponseWriter, r *http.Request) {
	so, ok := h.signOutFor(w, r)
	if !ok {
		return
	}
	httputil.RespondJSON(w, http.StatusOK, so.State())
}

// SkipSignOut ends the countdown now
// POST /api/auth/signout/skip
func (h *AuthHandler) SkipSignOut(w http.ResponseWriter, r *http.Request) {
	so, ok := h.signOutFor(w, r)
	if !ok {
		return
	}
	so.Skip()
	httputil.RespondJSON(w, http.StatusOK, so.State())
}

// CancelSignOut stops the countdown and keeps the session
// DELETE /api/auth/signout
func (h *AuthHandler) CancelSignOut(w http.ResponseWriter, r *http.Request) {
	so, ok := h.signOutFor(w, r)
	if !ok {
		return
	}
	so.Cancel()

	h.mu.Lock()
	if h.signOuts[httputil.GetUserID(r)] == so {
		delete(h.signOuts, httputil.GetUserID(r))
	}
	h.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) signOutFor(w http.ResponseWriter, r *http.Request) (*authService.SignOut, bool) {
	userID := httputil.GetUserID(r)
	h.mu.Lock()
	so, ok := h.signOuts[userID]
	h.mu.Unlock()
	if userID == "" || !ok {
		httputil.RespondError(w, http.StatusNotFound, "no sign-out in progress")
		return nil, false
	}
	return so, true
}

func (h *AuthHandler) finishSignOut(userID, path string) {
	h.sessions.End(userID)
	h.logger.Info("signed out", "user_id", userID, "redirect", path)
}
