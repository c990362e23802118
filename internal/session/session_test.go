package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"bankist.org/internal/auth"
	"bankist.org/internal/directory"
	"bankist.org/internal/ledger"
	"bankist.org/internal/presenter"
	"bankist.org/internal/schedule"
)

var start = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

type recorder struct{ views []presenter.View }

func (r *recorder) Render(v presenter.View) { r.views = append(r.views, v) }

func (r *recorder) last() presenter.View { return r.views[len(r.views)-1] }

type fixture struct {
	t     *testing.T
	ctx   context.Context
	dir   *directory.Directory
	clock *schedule.Manual
	view  *recorder
	c     *Controller
}

func openAccount(t *testing.T, owner string, pin int, vals ...int64) *ledger.Account {
	t.Helper()
	hash, err := auth.HashPIN(pin, bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	movs := make([]decimal.Decimal, len(vals))
	dates := make([]time.Time, len(vals))
	for i, v := range vals {
		movs[i] = decimal.NewFromInt(v)
		dates[i] = start.AddDate(0, 0, -len(vals)+i)
	}
	acc, err := ledger.NewAccount(ledger.Opening{
		Owner:        owner,
		PINHash:      hash,
		InterestRate: decimal.NewFromInt(1),
		Currency:     "USD",
		Locale:       "en-US",
		Movements:    movs,
		Dates:        dates,
	})
	if err != nil {
		t.Fatal(err)
	}
	return acc
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dir, err := directory.New(
		openAccount(t, "Jonas Schmedtmann", 1111, 1000),
		openAccount(t, "Jessica Davis", 2222, 5000, -30),
		openAccount(t, "Steven Thomas Williams", 3333, 200, -200, 340, -300, -20, 50, 400, -460),
	)
	if err != nil {
		t.Fatal(err)
	}
	f := &fixture{t: t, ctx: context.Background(), dir: dir, clock: schedule.NewManual(start), view: &recorder{}}
	f.c = New(dir,
		WithScheduler(f.clock),
		WithRenderer(f.view),
		WithIdleTicks(10),
		WithTickInterval(time.Second),
		WithLoanDelay(3*time.Second),
	)
	t.Cleanup(f.c.Close)
	return f
}

func (f *fixture) account(name string) *ledger.Account {
	f.t.Helper()
	acc, ok := f.dir.FindByUserName(name)
	if !ok {
		f.t.Fatalf("account %s missing", name)
	}
	return acc
}

func (f *fixture) login(name string, pin int) {
	f.t.Helper()
	if err := f.c.Login(f.ctx, name, pin); err != nil {
		f.t.Fatalf("Login(%s): %v", name, err)
	}
}

func TestLogin(t *testing.T) {
	f := newFixture(t)

	if err := f.c.Login(f.ctx, "js", 9999); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if f.c.Status().LoggedIn || !f.view.last().Locked {
		t.Fatalf("failed login must leave a locked, logged-out page")
	}
	if err := f.c.Login(f.ctx, "nobody", 1111); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}

	f.login("js", 1111)
	st := f.c.Status()
	if !st.LoggedIn || st.UserName != "js" || st.IdleLeft != 10 || st.SessionID == "" {
		t.Fatalf("unexpected status after login: %+v", st)
	}
	if !st.SessionStarted.Equal(start) {
		t.Fatalf("session started %v, want clock time %v", st.SessionStarted, start)
	}
	v := f.view.last()
	if !v.LoggedIn || v.Greeting != "Welcome back, Jonas" || v.Timer != "00:10" {
		t.Fatalf("unexpected view after login: %+v", v)
	}

	// A failed attempt while logged in ends the current session.
	_ = f.c.Login(f.ctx, "jd", 1)
	if f.c.Status().LoggedIn {
		t.Fatalf("failed relogin should log out")
	}
}

func TestIdleTimeout(t *testing.T) {
	f := newFixture(t)
	f.login("js", 1111)

	for i := 0; i < 9; i++ {
		f.c.Tick()
	}
	if st := f.c.Status(); !st.LoggedIn || st.IdleLeft != 1 {
		t.Fatalf("should still be logged in with 1 tick left: %+v", st)
	}

	if err := f.c.RecordActivity(f.ctx); err != nil {
		t.Fatal(err)
	}
	if st := f.c.Status(); st.IdleLeft != 10 {
		t.Fatalf("activity should refill the window: %+v", st)
	}

	for i := 0; i < 10; i++ {
		f.c.Tick()
	}
	if f.c.Status().LoggedIn {
		t.Fatalf("10 idle ticks should log out")
	}
	if f.view.last().LoggedIn {
		t.Fatalf("last render should be the logged-out page")
	}
}

func TestIdleTimerDrivenByScheduler(t *testing.T) {
	f := newFixture(t)
	f.login("js", 1111)

	f.clock.Advance(9 * time.Second)
	if !f.c.Status().LoggedIn {
		t.Fatalf("logged out too early")
	}
	f.clock.Advance(time.Second)
	if f.c.Status().LoggedIn {
		t.Fatalf("scheduler ticks should end the session")
	}
	if f.clock.Pending() != 0 {
		t.Fatalf("idle task should be cancelled on logout, pending=%d", f.clock.Pending())
	}
}

func TestOnlyOneIdleTimer(t *testing.T) {
	f := newFixture(t)
	f.login("js", 1111)
	for i := 0; i < 5; i++ {
		if err := f.c.RecordActivity(f.ctx); err != nil {
			t.Fatal(err)
		}
	}
	f.login("jd", 2222)
	if got := f.clock.Pending(); got != 1 {
		t.Fatalf("pending tasks=%d want exactly one idle timer", got)
	}
	f.clock.Advance(3 * time.Second)
	if st := f.c.Status(); st.IdleLeft != 7 {
		t.Fatalf("duplicate countdowns: idle left %d want 7", st.IdleLeft)
	}
}

func TestTransfer(t *testing.T) {
	f := newFixture(t)
	f.login("js", 1111)
	js, jd := f.account("js"), f.account("jd")
	jdBefore := jd.Balance()

	f.clock.Advance(500 * time.Millisecond)
	if err := f.c.Transfer(f.ctx, "jd", decimal.NewFromInt(500)); err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if !js.Balance().Equal(decimal.NewFromInt(500)) {
		t.Fatalf("sender balance=%s want 500", js.Balance())
	}
	if !jd.Balance().Equal(jdBefore.Add(decimal.NewFromInt(500))) {
		t.Fatalf("recipient balance=%s", jd.Balance())
	}
	if js.Len() != 2 || jd.Len() != 3 {
		t.Fatalf("each ledger gains one pair: js=%d jd=%d", js.Len(), jd.Len())
	}
	last := js.Movements()[1]
	if !last.Amount.Equal(decimal.NewFromInt(-500)) || !last.Date.Equal(f.clock.Now()) {
		t.Fatalf("unexpected sender movement: %+v", last)
	}
}

func TestTransferRejections(t *testing.T) {
	f := newFixture(t)

	if err := f.c.Transfer(f.ctx, "jd", decimal.NewFromInt(1)); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	f.login("js", 1111)
	js, jd := f.account("js"), f.account("jd")

	cases := []struct {
		name   string
		to     string
		amount int64
		want   error
	}{
		{"zero", "jd", 0, ErrInvalidAmount},
		{"negative", "jd", -5, ErrInvalidAmount},
		{"unknown", "zz", 10, ErrUnknownRecipient},
		{"insufficient", "jd", 1001, ErrInsufficientFunds},
		{"self", "js", 10, ErrSelfTransfer},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := f.c.Transfer(f.ctx, tc.to, decimal.NewFromInt(tc.amount))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if !IsRejection(err) {
				t.Fatalf("%v should be a rejection", err)
			}
			if js.Len() != 1 || jd.Len() != 2 {
				t.Fatalf("rejected transfer changed state: js=%d jd=%d", js.Len(), jd.Len())
			}
		})
	}
}

func TestLoanPostsAfterDelay(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	acc := f.account("stw")

	if err := f.c.RequestLoan(f.ctx, decimal.RequireFromString("40.9")); err != nil {
		t.Fatalf("RequestLoan: %v", err)
	}
	if acc.Len() != 8 || f.c.Status().PendingLoans != 1 {
		t.Fatalf("loan must not post before the delay")
	}

	f.clock.Advance(3 * time.Second)
	if acc.Len() != 9 {
		t.Fatalf("loan not posted, len=%d", acc.Len())
	}
	posted := acc.Movements()[8]
	if !posted.Amount.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("loan amount=%s want floor(40.9)=40", posted.Amount)
	}
	if !posted.Date.Equal(start.Add(3 * time.Second)) {
		t.Fatalf("loan should be stamped at completion, got %v", posted.Date)
	}
	st := f.c.Status()
	if st.PendingLoans != 0 || st.LoansPosted != 1 || st.LoansDiscarded != 0 {
		t.Fatalf("unexpected loan counters: %+v", st)
	}
	if !st.PostedVolume.Equal(decimal.NewFromInt(40)) {
		t.Fatalf("posted volume=%s want 40", st.PostedVolume)
	}
}

func TestLoanRejections(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	acc := f.account("stw")

	// The largest deposit is 400, so anything above 4000 is unbacked.
	if err := f.c.RequestLoan(f.ctx, decimal.NewFromInt(4010)); !errors.Is(err, ErrLoanNotBacked) {
		t.Fatalf("expected ErrLoanNotBacked, got %v", err)
	}
	for _, raw := range []string{"0", "0.7", "-10"} {
		if err := f.c.RequestLoan(f.ctx, decimal.RequireFromString(raw)); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("RequestLoan(%s): expected ErrInvalidAmount, got %v", raw, err)
		}
	}
	f.clock.Advance(10 * time.Second)
	if acc.Len() != 8 {
		t.Fatalf("rejected loans changed state: len=%d", acc.Len())
	}
}

func TestLoanThresholdIsInclusive(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	if err := f.c.RequestLoan(f.ctx, decimal.NewFromInt(4000)); err != nil {
		t.Fatalf("a 400 deposit backs a 4000 loan: %v", err)
	}
}

func TestLoanDiscardedAfterLogout(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	acc := f.account("stw")

	if err := f.c.RequestLoan(f.ctx, decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := f.c.Logout(f.ctx); err != nil {
		t.Fatal(err)
	}
	f.login("stw", 3333)

	f.clock.Advance(5 * time.Second)
	if acc.Len() != 8 {
		t.Fatalf("loan from an ended session must be discarded, len=%d", acc.Len())
	}
	if st := f.c.Status(); st.LoansDiscarded != 1 || st.LoansPosted != 0 || !st.PostedVolume.IsZero() {
		t.Fatalf("unexpected loan counters: %+v", st)
	}
}

func TestStaleLoanCallbackIsIgnored(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	acc := f.account("stw")

	tok := loanToken{id: "loan_stale", epoch: f.c.st.epoch, user: "stw", amount: decimal.NewFromInt(50)}
	f.c.loans[tok.id] = func() {}
	f.c.mu.Lock()
	f.c.st.epoch++
	f.c.mu.Unlock()

	f.c.completeLoan(f.ctx, tok)
	if acc.Len() != 8 {
		t.Fatalf("stale loan applied")
	}
}

func TestCloseAccount(t *testing.T) {
	f := newFixture(t)
	f.login("jd", 2222)

	if err := f.c.CloseAccount(f.ctx, "jd", 1111); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong pin: expected ErrInvalidCredentials, got %v", err)
	}
	if err := f.c.CloseAccount(f.ctx, "js", 2222); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong user: expected ErrInvalidCredentials, got %v", err)
	}
	if _, ok := f.dir.FindByUserName("jd"); !ok || !f.c.Status().LoggedIn {
		t.Fatalf("rejected close changed state")
	}

	if err := f.c.CloseAccount(f.ctx, "jd", 2222); err != nil {
		t.Fatalf("CloseAccount: %v", err)
	}
	if _, ok := f.dir.FindByUserName("jd"); ok {
		t.Fatalf("account still in directory")
	}
	if f.c.Status().LoggedIn {
		t.Fatalf("closing must log out")
	}
	if err := f.c.Login(f.ctx, "jd", 2222); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("closed account must not log in, got %v", err)
	}
}

func TestLoanDiscardedAfterClose(t *testing.T) {
	f := newFixture(t)
	f.login("stw", 3333)
	if err := f.c.RequestLoan(f.ctx, decimal.NewFromInt(100)); err != nil {
		t.Fatal(err)
	}
	if err := f.c.CloseAccount(f.ctx, "stw", 3333); err != nil {
		t.Fatal(err)
	}
	f.clock.Advance(5 * time.Second)
	if f.clock.Pending() != 0 || f.c.Status().PendingLoans != 0 {
		t.Fatalf("loan for closed account still pending")
	}
}

func TestToggleSort(t *testing.T) {
	f := newFixture(t)
	if err := f.c.ToggleSort(f.ctx); !errors.Is(err, ErrNotLoggedIn) {
		t.Fatalf("expected ErrNotLoggedIn, got %v", err)
	}

	f.login("stw", 3333)
	acc := f.account("stw")
	before := acc.Movements()
	original := f.c.View().Rows

	if err := f.c.ToggleSort(f.ctx); err != nil {
		t.Fatal(err)
	}
	sorted := f.c.View()
	if !sorted.Sorted || sorted.Rows[0].Amount == original[0].Amount {
		t.Fatalf("sort did not change display order")
	}
	if err := f.c.ToggleSort(f.ctx); err != nil {
		t.Fatal(err)
	}
	again := f.c.View()
	for i := range original {
		if again.Rows[i] != original[i] {
			t.Fatalf("two toggles should restore row %d: %+v vs %+v", i, again.Rows[i], original[i])
		}
	}
	after := acc.Movements()
	for i := range before {
		if !before[i].Amount.Equal(after[i].Amount) {
			t.Fatalf("sorting mutated stored movements")
		}
	}
}

func TestAccounts(t *testing.T) {
	f := newFixture(t)
	got := f.c.Accounts()
	if len(got) != 3 || got[0] != "js" || got[1] != "jd" || got[2] != "stw" {
		t.Fatalf("unexpected accounts: %v", got)
	}
}
