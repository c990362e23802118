package ledger

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Movement is a single signed ledger entry. Positive amounts are deposits,
// negative amounts are withdrawals.
type Movement struct {
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
}

func (m Movement) IsDeposit() bool { return m.Amount.IsPositive() }

// Opening describes an account as it is loaded at startup.
type Opening struct {
	Owner        string
	PINHash      string
	InterestRate decimal.Decimal // percent
	Currency     string
	Locale       string
	Movements    []decimal.Decimal
	Dates        []time.Time
}

// Account is one customer account: owner, credentials and its movement history.
// Balance is never stored; it is derived from the movements on every read.
type Account struct {
	Owner        string          `json:"owner"`
	UserName     string          `json:"user_name"`
	PINHash      string          `json:"-"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	Currency     string          `json:"currency"`
	Locale       string          `json:"locale"`

	movements []decimal.Decimal
	dates     []time.Time
}

var (
	ErrLengthMismatch = errors.New("movements and dates must have the same length")
	ErrMissingOwner   = errors.New("owner is required")
)
