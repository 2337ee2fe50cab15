// Package task runs delayed and repeating callbacks against a clock that
// is either the wall clock or a manually advanced virtual clock.
package task

import (
	"sort"
	"sync"
	"time"
)

// Timer is a handle to a scheduled callback
type Timer interface {
	// Stop cancels the callback. It returns false if the timer already
	// fired (one-shot) or was already stopped.
	Stop() bool
}

// Scheduler schedules callbacks relative to its clock
type Scheduler interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func()) Timer
	Every(d time.Duration, fn func()) Timer
}

// RealScheduler uses the wall clock and runtime timers.
// Callbacks run on their own goroutines.
type RealScheduler struct{}

// NewRealScheduler returns a wall-clock scheduler
func NewRealScheduler() *RealScheduler {
	return &RealScheduler{}
}

func (RealScheduler) Now() time.Time { return time.Now() }

func (RealScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}

func (RealScheduler) Every(d time.Duration, fn func()) Timer {
	t := &tickerTimer{ticker: time.NewTicker(d), done: make(chan struct{})}
	go func() {
		for {
			select {
			case <-t.ticker.C:
				fn()
			case <-t.done:
				return
			}
		}
	}()
	return t
}

type tickerTimer struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

func (t *tickerTimer) Stop() bool {
	stopped := false
	t.once.Do(func() {
		t.ticker.Stop()
		close(t.done)
		stopped = true
	})
	return stopped
}

// VirtualScheduler is a manually advanced clock. Callbacks only run inside
// Advance, on the caller's goroutine, ordered by deadline and then by the
// order they were scheduled.
type VirtualScheduler struct {
	mu      sync.Mutex
	now     time.Time
	seq     uint64
	pending []*virtualTimer
}

// NewVirtualScheduler starts the virtual clock at start
func NewVirtualScheduler(start time.Time) *VirtualScheduler {
	return &VirtualScheduler{now: start}
}

type virtualTimer struct {
	s        *VirtualScheduler
	deadline time.Time
	interval time.Duration
	seq      uint64
	fn       func()
	stopped  bool
	fired    bool
}

func (t *virtualTimer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	if t.stopped || (t.fired && t.interval == 0) {
		return false
	}
	t.stopped = true
	t.s.remove(t)
	return true
}

// Now returns the virtual time
func (s *VirtualScheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *VirtualScheduler) AfterFunc(d time.Duration, fn func()) Timer {
	return s.schedule(d, 0, fn)
}

// Every fires fn every d of virtual time until stopped. d must be positive.
func (s *VirtualScheduler) Every(d time.Duration, fn func()) Timer {
	if d <= 0 {
		panic("task: non-positive interval for Every")
	}
	return s.schedule(d, d, fn)
}

func (s *VirtualScheduler) schedule(d, interval time.Duration, fn func()) *virtualTimer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &virtualTimer{s: s, deadline: s.now.Add(d), interval: interval, seq: s.seq, fn: fn}
	s.pending = append(s.pending, t)
	return t
}

// Advance moves the clock forward by d, running every callback whose
// deadline falls within the window, including callbacks scheduled by
// other callbacks during the advance.
func (s *VirtualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now.Add(d)
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDue(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.deadline
		if next.interval > 0 {
			s.seq++
			next.seq = s.seq
			next.deadline = next.deadline.Add(next.interval)
		} else {
			next.fired = true
			s.remove(next)
		}
		fn := next.fn
		s.mu.Unlock()

		fn()
	}
}

// Pending returns the number of scheduled, unfired callbacks
func (s *VirtualScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// nextDue returns the earliest timer at or before target; caller holds mu
func (s *VirtualScheduler) nextDue(target time.Time) *virtualTimer {
	if len(s.pending) == 0 {
		return nil
	}
	sort.SliceStable(s.pending, func(i, j int) bool {
		a, b := s.pending[i], s.pending[j]
		if !a.deadline.Equal(b.deadline) {
			return a.deadline.Before(b.deadline)
		}
		return a.seq < b.seq
	})
	if s.pending[0].deadline.After(target) {
		return nil
	}
	return s.pending[0]
}

// remove drops t from the pending list; caller holds mu
func (s *VirtualScheduler) remove(t *virtualTimer) {
	for i, p := range s.pending {
		if p == t {
			s.pending = append(s.pending[:i], s.pending[i+1:]...)
			return
		}
	}
}
