// Package timer holds the single shared countdown the table uses for
// discussion phases. It is plain deadline arithmetic against a clock:
// there is no background goroutine, so restarting or toggling can never
// leave two countdowns running against the same value.
package timer

import (
	"errors"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

var ErrInvalidDuration = errors.New("duration must be positive")

type Countdown struct {
	mu       sync.Mutex
	clock    clockwork.Clock
	running  bool
	paused   bool
	deadline time.Time     // valid while running and not paused
	left     time.Duration // remaining time, frozen while paused
}

func New(clock clockwork.Clock) *Countdown {
	return &Countdown{clock: clock}
}

// Start arms the countdown for the given number of seconds, replacing
// any countdown already running.
func (c *Countdown) Start(seconds int) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.running = true
	c.paused = false
	c.deadline = c.clock.Now().Add(time.Duration(seconds) * time.Second)
	return nil
}

// Toggle pauses a running countdown or resumes a paused one. Before the
// first Start it is a no-op.
func (c *Countdown) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	if c.paused {
		c.deadline = c.clock.Now().Add(c.left)
		c.paused = false
		return
	}
	c.left = max(c.deadline.Sub(c.clock.Now()), 0)
	c.paused = true
}

// Current reports whole seconds remaining, clamped at zero.
func (c *Countdown) Current() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return 0
	}
	remaining := c.left
	if !c.paused {
		remaining = c.deadline.Sub(c.clock.Now())
	}
	return int(max(remaining, 0) / time.Second)
}
