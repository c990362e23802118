// Package session is the bank's controller: it owns the account directory and
// the logged-in/logged-out state machine, including the inactivity timer and
// deferred loan postings.
//
// Every entry point, timer tick and deferred effect runs to completion under a
// single mutex, so no two mutations ever interleave.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"bankist.org/internal/audit"
	"bankist.org/internal/auth"
	"bankist.org/internal/directory"
	"bankist.org/internal/ids"
	"bankist.org/internal/ledger"
	"bankist.org/internal/obs"
	"bankist.org/internal/presenter"
	"bankist.org/internal/schedule"
)

var ten = decimal.NewFromInt(10)

// BankState is the whole mutable state of the page.
type BankState struct {
	dir *directory.Directory

	current   string // username; empty when logged out
	sessionID string
	epoch     uint64 // bumped whenever a session ends, invalidating deferred work
	idleLeft  int
	timerGen  uint64
	sorted    bool
	locked    bool
}

// Status is a read-only snapshot of the session.
type Status struct {
	LoggedIn     bool
	UserName     string
	SessionID    string
	IdleLeft     int
	Sorted       bool
	// SessionStarted is read back from the session id; zero when logged out.
	SessionStarted time.Time
	PendingLoans   int
	// Loan outcomes since the controller was created.
	LoansPosted    int
	LoansDiscarded int
	PostedVolume   decimal.Decimal
}

type loanToken struct {
	id     string
	epoch  uint64
	user   string
	amount decimal.Decimal
}

// Controller mediates every user action against the directory.
type Controller struct {
	mu sync.Mutex
	st BankState

	sched        schedule.Scheduler
	renderer     Renderer
	idleTicks    int
	tickInterval time.Duration
	loanDelay    time.Duration

	stopIdle schedule.Cancel
	loans    map[string]schedule.Cancel

	loansPosted    int
	loansDiscarded int
	postedVolume   decimal.Decimal
}

// New creates a logged-out controller over dir.
func New(dir *directory.Directory, opts ...Option) *Controller {
	c := &Controller{
		st:           BankState{dir: dir},
		sched:        schedule.Real{},
		renderer:     nopRenderer{},
		idleTicks:    DefaultIdleTicks,
		tickInterval: DefaultTickInterval,
		loanDelay:    DefaultLoanDelay,
		loans:        make(map[string]schedule.Cancel),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Login switches to the account if the username exists and the PIN matches.
// Any previous session ends first; a failed attempt leaves the page logged out and locked.
func (c *Controller) Login(ctx context.Context, userName string, pin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loggedIn() {
		c.endSessionLocked(ctx, "session.logout", "relogin")
	}

	acc, ok := c.st.dir.FindByUserName(userName)
	if !ok || auth.VerifyPIN(acc.PINHash, pin) != nil {
		c.st.locked = true
		obs.ObserveLogin("rejected")
		_ = audit.LogEvent(ctx, "session.login_failed", map[string]any{"user": userName})
		c.renderLocked()
		return ErrInvalidCredentials
	}

	now := c.sched.Now()
	c.st.current = acc.UserName
	c.st.sessionID = ids.Prefixed("ses", now)
	c.st.locked = false
	c.st.sorted = false
	c.resetIdleLocked()

	obs.ObserveLogin("success")
	obs.SetSessionActive(true)
	_ = audit.LogEvent(c.auditCtx(ctx), "session.login", nil)
	c.renderLocked()
	return nil
}

// Logout ends the current session.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	c.endSessionLocked(ctx, "session.logout", "user")
	c.renderLocked()
	return nil
}

// RecordActivity restarts the inactivity window.
func (c *Controller) RecordActivity(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loggedIn() {
		return ErrNotLoggedIn
	}
	c.resetIdleLocked()
	c.renderLocked()
	return nil
}

// Tick counts down one idle interval and logs out when the window is spent.
// The scheduler calls it once per tick interval; callers may also drive it directly.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tickLocked()
}

// Transfer moves amount from the current account to the named recipient.
func (c *Controller) Transfer(ctx context.Context, to string, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, err := c.activeLocked()
	if err != nil {
		return err
	}
	c.resetIdleLocked()

	recv, ok := c.st.dir.FindByUserName(to)
	switch {
	case !amount.IsPositive():
		err = ErrInvalidAmount
	case !ok:
		err = ErrUnknownRecipient
	case acc.Balance().LessThan(amount):
		err = ErrInsufficientFunds
	case recv.UserName == acc.UserName:
		err = ErrSelfTransfer
	}
	if err != nil {
		obs.ObserveTransfer("rejected")
		_ = audit.LogEvent(c.auditCtx(ctx), "ledger.transfer.rejected", map[string]any{
			"to": to, "amount": amount.String(), "reason": err.Error(),
		})
		c.renderLocked()
		return err
	}

	now := c.sched.Now()
	acc.Append(amount.Neg(), now)
	recv.Append(amount, now)

	obs.ObserveTransfer("executed")
	_ = audit.LogEvent(c.auditCtx(ctx), "ledger.transfer.execute", map[string]any{
		"to": recv.UserName, "amount": amount.String(),
	})
	c.renderLocked()
	return nil
}

// RequestLoan schedules a deposit of floor(amount) after the processing delay,
// provided some deposit is at least a tenth of it. The posting is dropped if
// the session ends or the account disappears before it fires.
func (c *Controller) RequestLoan(ctx context.Context, amount decimal.Decimal) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, err := c.activeLocked()
	if err != nil {
		return err
	}
	c.resetIdleLocked()

	amt := amount.Floor()
	switch {
	case !amt.IsPositive():
		err = ErrInvalidAmount
	case !acc.HasDepositAtLeast(amt.Div(ten)):
		err = ErrLoanNotBacked
	}
	if err != nil {
		obs.ObserveLoan("rejected")
		_ = audit.LogEvent(c.auditCtx(ctx), "ledger.loan.rejected", map[string]any{
			"amount": amount.String(), "reason": err.Error(),
		})
		c.renderLocked()
		return err
	}

	tok := loanToken{
		id:     ids.Prefixed("loan", c.sched.Now()),
		epoch:  c.st.epoch,
		user:   acc.UserName,
		amount: amt,
	}
	// Audit context is captured now; the request context may be gone when the loan posts.
	actx := context.WithoutCancel(c.auditCtx(ctx))
	c.loans[tok.id] = c.sched.After(c.loanDelay, func() { c.completeLoan(actx, tok) })

	obs.ObserveLoan("scheduled")
	_ = audit.LogEvent(actx, "ledger.loan.requested", map[string]any{
		"loan_id": tok.id, "amount": amt.String(),
	})
	c.renderLocked()
	return nil
}

func (c *Controller) completeLoan(ctx context.Context, tok loanToken) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, pending := c.loans[tok.id]; !pending {
		return
	}
	delete(c.loans, tok.id)

	acc, ok := c.st.dir.FindByUserName(tok.user)
	if !ok || tok.epoch != c.st.epoch || c.st.current != tok.user {
		c.loansDiscarded++
		obs.ObserveLoan("discarded")
		_ = audit.LogEvent(ctx, "ledger.loan.discarded", map[string]any{"loan_id": tok.id})
		return
	}

	acc.Append(tok.amount, c.sched.Now())
	c.loansPosted++
	c.postedVolume = c.postedVolume.Add(tok.amount)
	obs.ObserveLoan("posted")
	_ = audit.LogEvent(ctx, "ledger.loan.posted", map[string]any{
		"loan_id": tok.id, "amount": tok.amount.String(),
	})
	c.renderLocked()
}

// CloseAccount removes the current account when both username and PIN match it,
// then logs out.
func (c *Controller) CloseAccount(ctx context.Context, userName string, pin int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	acc, err := c.activeLocked()
	if err != nil {
		return err
	}
	c.resetIdleLocked()

	if userName != acc.UserName || auth.VerifyPIN(acc.PINHash, pin) != nil {
		_ = audit.LogEvent(c.auditCtx(ctx), "directory.account.close_rejected", nil)
		c.renderLocked()
		return ErrInvalidCredentials
	}
	if err := c.st.dir.Remove(acc.UserName); err != nil {
		return fmt.Errorf("close account %s: %w", acc.UserName, err)
	}

	_ = audit.LogEvent(c.auditCtx(ctx), "directory.account.close", nil)
	c.endSessionLocked(ctx, "session.logout", "account_closed")
	c.renderLocked()
	return nil
}

// ToggleSort flips between chronological and ascending-by-amount display.
func (c *Controller) ToggleSort(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.activeLocked(); err != nil {
		return err
	}
	c.resetIdleLocked()
	c.st.sorted = !c.st.sorted
	c.renderLocked()
	return nil
}

// View renders the current state.
func (c *Controller) View() presenter.View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Status returns a snapshot of the session state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	st := Status{
		LoggedIn:       c.loggedIn(),
		UserName:       c.st.current,
		SessionID:      c.st.sessionID,
		IdleLeft:       c.st.idleLeft,
		Sorted:         c.st.sorted,
		PendingLoans:   len(c.loans),
		LoansPosted:    c.loansPosted,
		LoansDiscarded: c.loansDiscarded,
		PostedVolume:   c.postedVolume,
	}
	if started, ok := ids.Time(c.st.sessionID); ok {
		st.SessionStarted = started
	}
	return st
}

// Accounts lists the usernames currently in the directory.
func (c *Controller) Accounts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, a := range c.st.dir.List() {
		out = append(out, a.UserName)
	}
	return out
}

// Close stops all timers without touching the directory.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.loggedIn() {
		c.endSessionLocked(context.Background(), "session.logout", "shutdown")
	}
}

// --- internals; callers hold c.mu ---

func (c *Controller) loggedIn() bool { return c.st.current != "" }

func (c *Controller) activeLocked() (*ledger.Account, error) {
	if !c.loggedIn() {
		return nil, ErrNotLoggedIn
	}
	acc, ok := c.st.dir.FindByUserName(c.st.current)
	if !ok {
		return nil, ErrNotLoggedIn
	}
	return acc, nil
}

// resetIdleLocked refills the idle window and replaces the idle task.
// The old task is cancelled first; a tick it already queued is ignored by generation.
func (c *Controller) resetIdleLocked() {
	c.st.idleLeft = c.idleTicks
	c.stopIdleLocked()
	c.st.timerGen++
	gen := c.st.timerGen
	c.stopIdle = c.sched.Every(c.tickInterval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.st.timerGen {
			return
		}
		c.tickLocked()
	})
}

func (c *Controller) stopIdleLocked() {
	if c.stopIdle != nil {
		c.stopIdle()
		c.stopIdle = nil
	}
}

func (c *Controller) tickLocked() {
	if !c.loggedIn() {
		return
	}
	c.st.idleLeft--
	if c.st.idleLeft <= 0 {
		obs.ObserveTimeout()
		c.endSessionLocked(context.Background(), "session.timeout", "idle")
	}
	c.renderLocked()
}

// endSessionLocked tears the session down: timers and pending loans are
// cancelled and the epoch moves on so any straggling callback is discarded.
func (c *Controller) endSessionLocked(ctx context.Context, event, reason string) {
	_ = audit.LogEvent(c.auditCtx(ctx), event, map[string]any{"reason": reason})

	c.stopIdleLocked()
	c.st.timerGen++
	for id, cancel := range c.loans {
		cancel()
		delete(c.loans, id)
		c.loansDiscarded++
		obs.ObserveLoan("discarded")
	}
	c.st.epoch++
	c.st.current = ""
	c.st.sessionID = ""
	c.st.idleLeft = 0
	c.st.sorted = false
	obs.SetSessionActive(false)
}

func (c *Controller) auditCtx(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if !c.loggedIn() {
		return ctx
	}
	return auth.ContextWithPrincipal(ctx, auth.Principal{UserName: c.st.current, SessionID: c.st.sessionID})
}

func (c *Controller) viewLocked() presenter.View {
	acc, err := c.activeLocked()
	if err != nil {
		return presenter.LoggedOut(c.st.locked)
	}
	return presenter.Render(presenter.Input{
		Account:   acc,
		Sorted:    c.st.sorted,
		Now:       c.sched.Now(),
		Remaining: time.Duration(c.st.idleLeft) * c.tickInterval,
	})
}

func (c *Controller) renderLocked() {
	c.renderer.Render(c.viewLocked())
}

// IsRejection reports whether err is one of the silent no-op outcomes.
func IsRejection(err error) bool {
	for _, target := range []error{
		ErrNotLoggedIn, ErrInvalidCredentials, ErrInvalidAmount, ErrUnknownRecipient,
		ErrInsufficientFunds, ErrSelfTransfer, ErrLoanNotBacked,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
