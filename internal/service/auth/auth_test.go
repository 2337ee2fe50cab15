package auth

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"documentum/internal/domain"
	"documentum/internal/domain/models/docsystem"
	"documentum/internal/domain/services"
	"documentum/internal/task"
)

var testStart = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

var testUsers = []docsystem.User{
	{ID: "user-1", Name: "John Doe", Email: "john.doe@company.com", Role: docsystem.RoleAdmin},
	{ID: "user-2", Name: "Sarah Chen", Email: "sarah.chen@company.com", Role: docsystem.RoleEditor},
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(user docsystem.User, provider string) (string, error) {
	return provider + ":" + user.ID, nil
}

func newTestAuthenticator() (*Authenticator, *task.VirtualScheduler) {
	scheduler := task.NewVirtualScheduler(testStart)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewAuthenticator(scheduler, fakeIssuer{}, testUsers, testUsers[0], logger), scheduler
}

func receive(t *testing.T, ch <-chan LoginResult) (LoginResult, bool) {
	t.Helper()
	select {
	case r := <-ch:
		return r, true
	default:
		return LoginResult{}, false
	}
}

func TestBeginOAuth_CompletesAfterDelay(t *testing.T) {
	a, scheduler := newTestAuthenticator()

	ch, err := a.BeginOAuth("browser-1", "github")
	if err != nil {
		t.Fatalf("BeginOAuth: %v", err)
	}
	if a.Loading("browser-1") != "github" {
		t.Fatalf("Loading = %q, want github", a.Loading("browser-1"))
	}
	if a.Loading("browser-2") != "" {
		t.Fatalf("other client loading %q", a.Loading("browser-2"))
	}

	scheduler.Advance(LoginDelay - time.Millisecond)
	if _, ok := receive(t, ch); ok {
		t.Fatal("login finished early")
	}

	scheduler.Advance(time.Millisecond)
	r, ok := receive(t, ch)
	if !ok {
		t.Fatal("login did not finish")
	}
	if r.Err != nil || r.Token != "github:user-1" || r.User.ID != "user-1" {
		t.Fatalf("result = %+v", r)
	}
	if a.Loading("browser-1") != "" {
		t.Fatalf("still loading %q", a.Loading("browser-1"))
	}
}

func TestBeginOAuth_RejectsUnknownProviderAndConcurrentLogin(t *testing.T) {
	a, _ := newTestAuthenticator()

	if _, err := a.BeginOAuth("browser-1", "myspace"); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("unknown provider error = %v", err)
	}
	if _, err := a.BeginOAuth("browser-1", "okta"); err != nil {
		t.Fatalf("BeginOAuth: %v", err)
	}
	if _, err := a.LoginWithEmail("browser-1", EmailLogin{Email: "john.doe@company.com", Password: "x"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("concurrent login error = %v", err)
	}
}

func TestLogin_ClientsAreIndependent(t *testing.T) {
	a, scheduler := newTestAuthenticator()

	oauth, err := a.BeginOAuth("browser-1", "google")
	if err != nil {
		t.Fatalf("BeginOAuth: %v", err)
	}
	email, err := a.LoginWithEmail("browser-2", EmailLogin{Email: "sarah.chen@company.com", Password: "pw"})
	if err != nil {
		t.Fatalf("LoginWithEmail while another client logs in: %v", err)
	}

	scheduler.Advance(LoginDelay)
	r1, ok1 := receive(t, oauth)
	r2, ok2 := receive(t, email)
	if !ok1 || !ok2 {
		t.Fatalf("finished = %v, %v; want both", ok1, ok2)
	}
	if r1.User.ID != "user-1" || r2.User.ID != "user-2" {
		t.Fatalf("users = %s, %s; want user-1, user-2", r1.User.ID, r2.User.ID)
	}
	if a.Loading("browser-1") != "" || a.Loading("browser-2") != "" {
		t.Fatal("logins still in flight")
	}
}

func TestLoginWithEmail(t *testing.T) {
	tests := []struct {
		name      string
		login     EmailLogin
		formError bool
		wantUser  string
		wantErr   error
	}{
		{name: "known address", login: EmailLogin{Email: "Sarah.Chen@company.com", Password: "pw"}, wantUser: "user-2"},
		{name: "unknown address", login: EmailLogin{Email: "nobody@company.com", Password: "pw"}, wantErr: domain.ErrUnauthorized},
		{name: "unresolvable domain is only checked for format", login: EmailLogin{Email: "someone@documentum.invalid", Password: "pw"}, wantErr: domain.ErrUnauthorized},
		{name: "malformed address", login: EmailLogin{Email: "not-an-email", Password: "pw"}, formError: true},
		{name: "missing password", login: EmailLogin{Email: "john.doe@company.com"}, formError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, scheduler := newTestAuthenticator()
			ch, err := a.LoginWithEmail("browser-1", tt.login)
			if tt.formError {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("error = %v, want validation error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoginWithEmail: %v", err)
			}

			scheduler.Advance(LoginDelay)
			r, ok := receive(t, ch)
			if !ok {
				t.Fatal("login did not finish")
			}
			if tt.wantErr != nil {
				if !errors.Is(r.Err, tt.wantErr) {
					t.Fatalf("result error = %v, want %v", r.Err, tt.wantErr)
				}
				return
			}
			if r.Err != nil || r.User.ID != tt.wantUser {
				t.Fatalf("result = %+v, want user %s", r, tt.wantUser)
			}
		})
	}
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) NavigateTo(path string) { n.paths = append(n.paths, path) }

var _ services.Navigator = (*recordingNavigator)(nil)

func TestSignOut_Countdown(t *testing.T) {
	scheduler := task.NewVirtualScheduler(testStart)
	nav := &recordingNavigator{}
	s := StartSignOut(scheduler, nav)

	for i := 1; i < SignOutSeconds; i++ {
		scheduler.Advance(SignOutTick)
		st := s.State()
		if st.Remaining != SignOutSeconds-i || st.Progress != 20*i || st.Done {
			t.Fatalf("after %d ticks state = %+v", i, st)
		}
	}
	if len(nav.paths) != 0 {
		t.Fatalf("navigated early: %v", nav.paths)
	}

	scheduler.Advance(SignOutTick)
	st := s.State()
	if !st.Done || st.Progress != 100 || st.Remaining != 0 {
		t.Fatalf("final state = %+v", st)
	}
	if len(nav.paths) != 1 || nav.paths[0] != LoginPath {
		t.Fatalf("navigations = %v, want [%s]", nav.paths, LoginPath)
	}
	if scheduler.Pending() != 0 {
		t.Fatalf("countdown still armed: %d", scheduler.Pending())
	}
}

func TestSignOut_SkipAndCancel(t *testing.T) {
	t.Run("skip", func(t *testing.T) {
		scheduler := task.NewVirtualScheduler(testStart)
		nav := &recordingNavigator{}
		s := StartSignOut(scheduler, nav)
		scheduler.Advance(SignOutTick)

		s.Skip()
		s.Skip()
		scheduler.Advance(10 * SignOutTick)
		if len(nav.paths) != 1 {
			t.Fatalf("navigations = %v, want one", nav.paths)
		}
	})

	t.Run("cancel", func(t *testing.T) {
		scheduler := task.NewVirtualScheduler(testStart)
		nav := &recordingNavigator{}
		s := StartSignOut(scheduler, nav)

		s.Cancel()
		scheduler.Advance(10 * SignOutTick)
		if len(nav.paths) != 0 {
			t.Fatalf("navigated after cancel: %v", nav.paths)
		}
		if st := s.State(); st.Remaining != SignOutSeconds {
			t.Fatalf("countdown moved after cancel: %+v", st)
		}
	})
}
