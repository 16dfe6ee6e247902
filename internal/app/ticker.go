package app

import (
	"sync"
	"time"
)

// Ticker calls a function periodically on its own goroutine. The function
// receives the tick number, starting at 1 for each Start.
type Ticker struct {
	interval time.Duration
	fn       func(n int)

	mu      sync.Mutex
	stop    chan struct{}
	done    chan struct{}
	running bool
}

// NewTicker creates a stopped ticker.
func NewTicker(interval time.Duration, fn func(n int)) *Ticker {
	return &Ticker{interval: interval, fn: fn}
}

// Start begins ticking. It fails with ErrAlreadyRunning if the ticker is
// running.
func (t *Ticker) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return ErrAlreadyRunning
	}
	t.running = true
	t.stop = make(chan struct{})
	t.done = make(chan struct{})

	go t.loop(t.stop, t.done)
	return nil
}

func (t *Ticker) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	tk := time.NewTicker(t.interval)
	defer tk.Stop()

	for n := 1; ; n++ {
		select {
		case <-stop:
			return
		case <-tk.C:
			t.fn(n)
		}
	}
}

// Stop stops the ticker and waits for a running callback to return.
// Stopping a stopped ticker does nothing.
func (t *Ticker) Stop() {
	t.mu.Lock()
	if !t.running {
		t.mu.Unlock()
		return
	}
	t.running = false
	close(t.stop)
	done := t.done
	t.mu.Unlock()

	<-done
}

// Running reports whether the ticker is started.
func (t *Ticker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
