package sim

import (
	"context"
	"fmt"
	"time"

	"bankist.org/internal/schedule"
	"bankist.org/internal/session"
)

// Runner replays generated actions against a controller driven by a manual clock.
type Runner struct {
	Ctrl  *session.Controller
	Clock *schedule.Manual
	Tick  time.Duration
	// Settle is how long a customer waits for pending loans before someone
	// else logs in, and after the last action.
	Settle time.Duration
}

func (r Runner) Run(ctx context.Context, gen Generator, steps int) (Counter, error) {
	var c Counter
	before := r.Ctrl.Status()
	for i := 0; i < steps; i++ {
		if err := ctx.Err(); err != nil {
			r.collectLoans(&c, before)
			return c, err
		}
		act := gen.Next()
		if err := r.ensureLoggedIn(ctx, gen, act.Actor, &c); err != nil {
			r.collectLoans(&c, before)
			return c, err
		}
		err := r.apply(ctx, act)
		if err != nil && !session.IsRejection(err) {
			r.collectLoans(&c, before)
			return c, fmt.Errorf("step %d %s: %w", i, act.Kind, err)
		}
		c.Add(act, err)
	}
	r.settle()
	r.collectLoans(&c, before)
	return c, nil
}

// collectLoans copies loan outcomes observed since before into c.
func (r Runner) collectLoans(c *Counter, before session.Status) {
	after := r.Ctrl.Status()
	c.LoansPosted = after.LoansPosted - before.LoansPosted
	c.LoansDiscarded = after.LoansDiscarded - before.LoansDiscarded
	c.PostedVolume = after.PostedVolume.Sub(before.PostedVolume)
}

func (r Runner) settle() {
	if r.Settle > 0 && r.Ctrl.Status().PendingLoans > 0 {
		r.Clock.Advance(r.Settle)
	}
}

func (r Runner) ensureLoggedIn(ctx context.Context, gen Generator, user string, c *Counter) error {
	st := r.Ctrl.Status()
	if st.LoggedIn && st.UserName == user {
		return nil
	}
	if st.LoggedIn {
		r.settle()
	}
	pin, ok := gen.pin(user)
	if !ok {
		return fmt.Errorf("unknown customer %q", user)
	}
	if err := r.Ctrl.Login(ctx, user, pin); err != nil {
		return fmt.Errorf("login %s: %w", user, err)
	}
	c.Logins++
	return nil
}

func (r Runner) apply(ctx context.Context, a Action) error {
	switch a.Kind {
	case KindTransfer:
		return r.Ctrl.Transfer(ctx, a.To, a.Amount)
	case KindLoan:
		return r.Ctrl.RequestLoan(ctx, a.Amount)
	case KindSort:
		return r.Ctrl.ToggleSort(ctx)
	case KindWait:
		r.Clock.Advance(time.Duration(a.Ticks) * r.Tick)
		return nil
	}
	return fmt.Errorf("unknown action kind %q", a.Kind)
}
