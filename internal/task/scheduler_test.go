package task

import (
	"reflect"
	"testing"
	"time"
)

var epoch = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func TestVirtualScheduler_AfterFuncOrder(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	var got []string

	s.AfterFunc(300*time.Millisecond, func() { got = append(got, "c") })
	s.AfterFunc(100*time.Millisecond, func() { got = append(got, "a") })
	s.AfterFunc(100*time.Millisecond, func() { got = append(got, "b") })

	s.Advance(99 * time.Millisecond)
	if len(got) != 0 {
		t.Fatalf("fired early: %v", got)
	}

	s.Advance(time.Second)
	if want := []string{"a", "b", "c"}; !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
	if !s.Now().Equal(epoch.Add(1099 * time.Millisecond)) {
		t.Errorf("Now() = %v", s.Now())
	}
	if s.Pending() != 0 {
		t.Errorf("Pending() = %d, want 0", s.Pending())
	}
}

func TestVirtualScheduler_NowInsideCallback(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	var at time.Time
	s.AfterFunc(1500*time.Millisecond, func() { at = s.Now() })

	s.Advance(5 * time.Second)
	if want := epoch.Add(1500 * time.Millisecond); !at.Equal(want) {
		t.Errorf("callback saw %v, want %v", at, want)
	}
}

func TestVirtualScheduler_Stop(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	fired := false
	timer := s.AfterFunc(time.Second, func() { fired = true })

	if !timer.Stop() {
		t.Error("first Stop() = false, want true")
	}
	if timer.Stop() {
		t.Error("second Stop() = true, want false")
	}
	s.Advance(2 * time.Second)
	if fired {
		t.Error("stopped timer fired")
	}

	done := s.AfterFunc(time.Second, func() {})
	s.Advance(time.Second)
	if done.Stop() {
		t.Error("Stop() after fire = true, want false")
	}
}

func TestVirtualScheduler_Every(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	ticks := 0
	var timer Timer
	timer = s.Every(time.Second, func() {
		ticks++
		if ticks == 3 {
			timer.Stop()
		}
	})

	s.Advance(10 * time.Second)
	if ticks != 3 {
		t.Errorf("ticks = %d, want 3", ticks)
	}
}

func TestVirtualScheduler_ScheduleDuringAdvance(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	var got []string
	s.AfterFunc(time.Second, func() {
		got = append(got, "outer")
		s.AfterFunc(time.Second, func() { got = append(got, "inner") })
	})

	s.Advance(2 * time.Second)
	if want := []string{"outer", "inner"}; !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestRealScheduler_AfterFunc(t *testing.T) {
	s := NewRealScheduler()
	done := make(chan struct{})
	s.AfterFunc(time.Millisecond, func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback did not run")
	}
}

// Store timers (notification expiry, sign-out ticks) reschedule and cancel
// from inside their callbacks and tests assert right after Advance, so
// callbacks must run to completion on the advancing goroutine.
func TestVirtualScheduler_CallbacksFinishBeforeAdvanceReturns(t *testing.T) {
	s := NewVirtualScheduler(epoch)
	var log []string
	var later Timer
	later = s.AfterFunc(3*time.Second, func() { log = append(log, "cancelled") })

	ticks := 0
	var ticker Timer
	ticker = s.Every(time.Second, func() {
		ticks++
		log = append(log, s.Now().Sub(epoch).String())
		if ticks == 2 {
			later.Stop()
			ticker.Stop()
			s.AfterFunc(0, func() { log = append(log, "follow-up") })
		}
	})

	s.Advance(5 * time.Second)
	want := []string{"1s", "2s", "follow-up"}
	if !reflect.DeepEqual(log, want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d, want 0", s.Pending())
	}
}
