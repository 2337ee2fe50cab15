// Package auth simulates the console sign-in and sign-out flows on top of
// locally signed session tokens.
package auth

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"documentum/internal/domain"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/task"
)

// LoginDelay is how long a simulated login takes
const LoginDelay = 1500 * time.Millisecond

// MethodEmail is the in-flight marker for email logins
const MethodEmail = "email"

// Provider is an OAuth identity provider offered on the login page
type Provider struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Providers lists the OAuth providers in display order
var Providers = []Provider{
	{ID: "google", Name: "Google"},
	{ID: "microsoft", Name: "Microsoft"},
	{ID: "github", Name: "GitHub"},
	{ID: "okta", Name: "Okta SSO"},
}

// LoginResult is delivered once a login attempt finishes
type LoginResult struct {
	Token string         `json:"token,omitempty"`
	User  docsystem.User `json:"user"`
	Err   error          `json:"-"`
}

// TokenIssuer signs session tokens
type TokenIssuer interface {
	Issue(user docsystem.User, provider string) (string, error)
}

// EmailLogin is the email form payload
type EmailLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the email form
func (l EmailLogin) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Email, validation.Required, is.EmailFormat),
		validation.Field(&l.Password, validation.Required),
	)
}

// Authenticator runs simulated logins. Each client may have one login in
// flight; different clients log in independently.
type Authenticator struct {
	scheduler   task.Scheduler
	issuer      TokenIssuer
	users       []docsystem.User
	defaultUser docsystem.User
	logger      *slog.Logger

	mu       sync.Mutex
	inFlight map[string]string // client -> provider id or MethodEmail
}

// NewAuthenticator creates an authenticator. OAuth logins resolve to
// defaultUser; email logins resolve to the user with that address.
func NewAuthenticator(scheduler task.Scheduler, issuer TokenIssuer, users []docsystem.User, defaultUser docsystem.User, logger *slog.Logger) *Authenticator {
	return &Authenticator{
		scheduler:   scheduler,
		issuer:      issuer,
		users:       users,
		defaultUser: defaultUser,
		logger:      logger,
		inFlight:    make(map[string]string),
	}
}

// Loading returns the provider id or MethodEmail of client's login in
// flight, "" if none
func (a *Authenticator) Loading(client string) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.inFlight[client]
}

// BeginOAuth starts a login with the named provider. The result arrives on
// the returned channel after LoginDelay.
func (a *Authenticator) BeginOAuth(client, providerID string) (<-chan LoginResult, error) {
	if !knownProvider(providerID) {
		return nil, &domain.ValidationError{Message: fmt.Sprintf("unknown provider: %s", providerID)}
	}
	user := a.defaultUser
	return a.start(client, providerID, func() LoginResult { return a.issue(user, providerID) })
}

// LoginWithEmail starts an email login. Form errors are returned immediately;
// an unknown address fails with ErrUnauthorized after LoginDelay.
func (a *Authenticator) LoginWithEmail(client string, login EmailLogin) (<-chan LoginResult, error) {
	if err := login.Validate(); err != nil {
		return nil, domain.NewValidationError("invalid login", err)
	}
	return a.start(client, MethodEmail, func() LoginResult {
		user, ok := a.userByEmail(login.Email)
		if !ok {
			return LoginResult{Err: fmt.Errorf("no account for %s: %w", login.Email, domain.ErrUnauthorized)}
		}
		return a.issue(user, MethodEmail)
	})
}

func (a *Authenticator) start(client, method string, complete func() LoginResult) (<-chan LoginResult, error) {
	a.mu.Lock()
	if busy, ok := a.inFlight[client]; ok {
		a.mu.Unlock()
		return nil, &domain.ValidationError{Message: fmt.Sprintf("login with %s already in progress", busy)}
	}
	a.inFlight[client] = method
	a.mu.Unlock()

	a.logger.Debug("login started", "method", method, "client", client)
	results := make(chan LoginResult, 1)
	a.scheduler.AfterFunc(LoginDelay, func() {
		result := complete()

		a.mu.Lock()
		delete(a.inFlight, client)
		a.mu.Unlock()

		if result.Err != nil {
			a.logger.Warn("login failed", "method", method, "error", result.Err)
		} else {
			a.logger.Info("login complete", "method", method, "user_id", result.User.ID)
		}
		results <- result
		close(results)
	})
	return results, nil
}

func (a *Authenticator) issue(user docsystem.User, provider string) LoginResult {
	token, err := a.issuer.Issue(user, provider)
	if err != nil {
		return LoginResult{Err: err}
	}
	return LoginResult{Token: token, User: user}
}

func (a *Authenticator) userByEmail(email string) (docsystem.User, bool) {
	for _, u := range a.users {
		if strings.EqualFold(u.Email, email) {
			return u, true
		}
	}
	return docsystem.User{}, false
}

func knownProvider(id string) bool {
	for _, p := range Providers {
		if p.ID == id {
			return true
		}
	}
	return false
}
