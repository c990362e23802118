package session

import "errors"

// Rejections. None of them change state; the page simply keeps showing what it showed.
var (
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidAmount      = errors.New("amount must be > 0")
	ErrUnknownRecipient   = errors.New("unknown recipient")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrSelfTransfer       = errors.New("cannot transfer to own account")
	ErrLoanNotBacked      = errors.New("no deposit of at least 10% of the requested loan")
)
