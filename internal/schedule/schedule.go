// Package schedule runs recurring and one-shot tasks with explicit cancel
// handles, and supplies the clock those tasks observe.
package schedule

import (
	"context"
	"sync"
	"time"
)

// Cancel stops a scheduled task. Calling it more than once is harmless.
type Cancel func()

// Scheduler schedules tasks and tells the time.
type Scheduler interface {
	Now() time.Time
	// Every runs fn once per interval until cancelled.
	Every(interval time.Duration, fn func()) Cancel
	// After runs fn once after delay unless cancelled first.
	After(delay time.Duration, fn func()) Cancel
}

// Real is backed by the wall clock and runtime timers.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) Every(interval time.Duration, fn func()) Cancel {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
	return Cancel(cancel)
}

func (Real) After(delay time.Duration, fn func()) Cancel {
	t := time.AfterFunc(delay, fn)
	var once sync.Once
	return func() { once.Do(func() { t.Stop() }) }
}
