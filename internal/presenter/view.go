// Package presenter turns account and session state into display text.
package presenter

import (
	"strings"
	"time"

	"bankist.org/internal/ledger"
)

// Row is one rendered movement.
type Row struct {
	Index  int    `json:"index"` // 1-based position in the chosen ordering
	Type   string `json:"type"`  // deposit | withdrawal
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

// View is everything the page shows at one moment.
type View struct {
	LoggedIn  bool   `json:"logged_in"`
	Locked    bool   `json:"locked"`
	Greeting  string `json:"greeting"`
	UserName  string `json:"user_name,omitempty"`
	DateLabel string `json:"date_label,omitempty"`
	Sorted    bool   `json:"sorted"`
	Rows      []Row  `json:"rows,omitempty"`
	Balance   string `json:"balance,omitempty"`
	In        string `json:"in,omitempty"`
	Out       string `json:"out,omitempty"`
	Interest  string `json:"interest,omitempty"`
	Timer     string `json:"timer,omitempty"`
}

// Input is the state a view is rendered from.
type Input struct {
	Account   *ledger.Account
	Sorted    bool
	Now       time.Time
	Remaining time.Duration
}

const loggedOutGreeting = "Log in to get started"

// LoggedOut renders the login screen; locked marks a rejected login.
func LoggedOut(locked bool) View {
	return View{Locked: locked, Greeting: loggedOutGreeting}
}

// Render builds the logged-in view. Rows are listed newest first, or largest
// first when sorted, matching how the page stacks each row on top.
func Render(in Input) View {
	acc := in.Account
	movs := acc.Movements()
	if in.Sorted {
		movs = acc.SortedView()
	}

	rows := make([]Row, 0, len(movs))
	for i := len(movs) - 1; i >= 0; i-- {
		m := movs[i]
		typ := "deposit"
		if !m.IsDeposit() {
			typ = "withdrawal"
		}
		rows = append(rows, Row{
			Index:  i + 1,
			Type:   typ,
			Date:   RelativeDate(m.Date, in.Now, acc.Locale),
			Amount: FormatCurrency(m.Amount, acc.Currency, acc.Locale),
		})
	}

	return View{
		LoggedIn:  true,
		Greeting:  "Welcome back, " + firstName(acc.Owner),
		UserName:  acc.UserName,
		DateLabel: FormatDateTime(acc.Locale, in.Now),
		Sorted:    in.Sorted,
		Rows:      rows,
		Balance:   FormatCurrency(acc.Balance(), acc.Currency, acc.Locale),
		In:        FormatCurrency(acc.TotalIn(), acc.Currency, acc.Locale),
		Out:       FormatCurrency(acc.TotalOut(), acc.Currency, acc.Locale),
		Interest:  FormatCurrency(acc.Interest(), acc.Currency, acc.Locale),
		Timer:     FormatTimer(in.Remaining),
	}
}

func firstName(owner string) string {
	if f := strings.Fields(owner); len(f) > 0 {
		return f[0]
	}
	return owner
}
