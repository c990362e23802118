package ledger

import (
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// NewAccount validates an opening and copies its history into a fresh account.
// UserName is left empty; the directory derives it on insertion.
func NewAccount(o Opening) (*Account, error) {
	if strings.TrimSpace(o.Owner) == "" {
		return nil, ErrMissingOwner
	}
	if len(o.Movements) != len(o.Dates) {
		return nil, ErrLengthMismatch
	}
	return &Account{
		Owner:        o.Owner,
		PINHash:      o.PINHash,
		InterestRate: o.InterestRate,
		Currency:     o.Currency,
		Locale:       o.Locale,
		movements:    slices.Clone(o.Movements),
		dates:        slices.Clone(o.Dates),
	}, nil
}

// Len returns the number of movements.
func (a *Account) Len() int { return len(a.movements) }

// Balance is the sum of all movements.
func (a *Account) Balance() decimal.Decimal {
	return decimal.Sum(decimal.Zero, a.movements...)
}

// TotalIn is the sum of deposits, zero if there are none.
func (a *Account) TotalIn() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.movements {
		if m.IsPositive() {
			total = total.Add(m)
		}
	}
	return total
}

// TotalOut is the signed sum of withdrawals, so it is never positive.
func (a *Account) TotalOut() decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.movements {
		if m.IsNegative() {
			total = total.Add(m)
		}
	}
	return total
}

// QualifyingInterest sums deposit*rate/100 over deposits, skipping any term below 1.
func (a *Account) QualifyingInterest(ratePercent decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, m := range a.movements {
		if !m.IsPositive() {
			continue
		}
		term := m.Mul(ratePercent).Div(hundred)
		if term.LessThan(decimal.NewFromInt(1)) {
			continue
		}
		total = total.Add(term)
	}
	return total
}

// Interest is QualifyingInterest at the account's own rate.
func (a *Account) Interest() decimal.Decimal {
	return a.QualifyingInterest(a.InterestRate)
}

// Append records one movement and its timestamp. No validation happens here.
func (a *Account) Append(amount decimal.Decimal, at time.Time) {
	a.movements = append(a.movements, amount)
	a.dates = append(a.dates, at)
}

// Movements returns the history in chronological order.
func (a *Account) Movements() []Movement {
	out := make([]Movement, len(a.movements))
	for i, m := range a.movements {
		out[i] = Movement{Amount: m, Date: a.dates[i]}
	}
	return out
}

// SortedView returns the history ascending by amount, each amount still paired
// with its own date. Stored order is left untouched.
func (a *Account) SortedView() []Movement {
	out := a.Movements()
	slices.SortStableFunc(out, func(x, y Movement) int {
		return x.Amount.Cmp(y.Amount)
	})
	return out
}

// HasDepositAtLeast reports whether any single movement is >= threshold.
func (a *Account) HasDepositAtLeast(threshold decimal.Decimal) bool {
	return slices.ContainsFunc(a.movements, func(m decimal.Decimal) bool {
		return m.IsPositive() && m.GreaterThanOrEqual(threshold)
	})
}
