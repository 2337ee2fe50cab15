package upload

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"documentum/internal/task"
)

// SimulatedTickInterval is the delay between simulated progress steps
const SimulatedTickInterval = 200 * time.Millisecond

// SimulatedTransport advances progress by a random step of up to 20 percent
// per tick until it reaches 100. No bytes are read.
type SimulatedTransport struct {
	scheduler task.Scheduler

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSimulatedTransport creates a transport driven by scheduler. A fixed
// seed makes progress sequences reproducible.
func NewSimulatedTransport(scheduler task.Scheduler, seed int64) *SimulatedTransport {
	return &SimulatedTransport{scheduler: scheduler, rng: rand.New(rand.NewSource(seed))}
}

func (t *SimulatedTransport) Start(_ context.Context, _ string, _ File, report func(float64), done func(error)) func() {
	var (
		mu       sync.Mutex
		progress float64
		finished bool
		timer    task.Timer
	)

	mu.Lock()
	defer mu.Unlock()
	timer = t.scheduler.Every(SimulatedTickInterval, func() {
		mu.Lock()
		if finished {
			mu.Unlock()
			return
		}
		progress += t.step()
		if progress >= 100 {
			progress = 100
			finished = true
			timer.Stop()
		}
		p, last := progress, finished
		mu.Unlock()

		if last {
			done(nil)
			return
		}
		report(p)
	})

	return func() {
		mu.Lock()
		defer mu.Unlock()
		finished = true
		timer.Stop()
	}
}

func (t *SimulatedTransport) step() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.rng.Float64() * 20
}
