package session

import (
	"time"

	"bankist.org/internal/presenter"
	"bankist.org/internal/schedule"
)

const (
	DefaultIdleTicks    = 10
	DefaultTickInterval = time.Second
	DefaultLoanDelay    = 2500 * time.Millisecond
)

// Renderer receives a fresh view after every state change.
type Renderer interface {
	Render(presenter.View)
}

type nopRenderer struct{}

func (nopRenderer) Render(presenter.View) {}

// Option configures a Controller.
type Option func(*Controller)

func WithScheduler(s schedule.Scheduler) Option {
	return func(c *Controller) {
		if s != nil {
			c.sched = s
		}
	}
}

func WithRenderer(r Renderer) Option {
	return func(c *Controller) {
		if r != nil {
			c.renderer = r
		}
	}
}

// WithIdleTicks sets how many ticks without activity end a session.
func WithIdleTicks(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.idleTicks = n
		}
	}
}

func WithTickInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.tickInterval = d
		}
	}
}

func WithLoanDelay(d time.Duration) Option {
	return func(c *Controller) {
		if d >= 0 {
			c.loanDelay = d
		}
	}
}
