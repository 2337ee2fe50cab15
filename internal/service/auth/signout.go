package auth

import (
	"sync"
	"time"

	"documentum/internal/domain/services"
	"documentum/internal/task"
)

const (
	// SignOutSeconds is the countdown length
	SignOutSeconds = 5
	// SignOutTick is the countdown step
	SignOutTick = time.Second
	// LoginPath is where a finished sign-out lands
	LoginPath = "/login"
)

// SignOutState is a snapshot of the countdown
type SignOutState struct {
	Remaining int  `json:"remaining"`
	Progress  int  `json:"progress"`
	Done      bool `json:"done"`
}

// SignOut counts down and then navigates to the login page.
// Skip navigates immediately; Cancel stops without navigating.
type SignOut struct {
	navigator services.Navigator

	mu    sync.Mutex
	state SignOutState
	timer task.Timer
}

// StartSignOut begins the countdown on scheduler
func StartSignOut(scheduler task.Scheduler, navigator services.Navigator) *SignOut {
	s := &SignOut{navigator: navigator, state: SignOutState{Remaining: SignOutSeconds}}
	s.mu.Lock()
	s.timer = scheduler.Every(SignOutTick, s.tick)
	s.mu.Unlock()
	return s
}

// State returns the current countdown
func (s *SignOut) State() SignOutState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Skip ends the countdown and navigates now
func (s *SignOut) Skip() {
	if s.finish() {
		s.navigator.NavigateTo(LoginPath)
	}
}

// Cancel stops the countdown without navigating
func (s *SignOut) Cancel() {
	s.finish()
}

func (s *SignOut) tick() {
	s.mu.Lock()
	if s.state.Done {
		s.mu.Unlock()
		return
	}
	s.state.Remaining--
	s.state.Progress += 100 / SignOutSeconds
	last := s.state.Remaining <= 0
	s.mu.Unlock()

	if last && s.finish() {
		s.navigator.NavigateTo(LoginPath)
	}
}

// finish marks the countdown done; it reports false if it already was
func (s *SignOut) finish() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Done {
		return false
	}
	s.state.Done = true
	s.timer.Stop()
	return true
}
