// Package directory holds the set of accounts known to the bank and resolves
// short usernames to them.
package directory

import (
	"errors"
	"slices"
	"strings"
	"unicode/utf8"

	"bankist.org/internal/ledger"
)

var (
	ErrNotFound          = errors.New("account not found")
	ErrDuplicateUserName = errors.New("username already taken")
	ErrEmptyUserName     = errors.New("username derives to empty string")
)

// Directory is the queryable collection of all accounts, in insertion order.
// It is not safe for concurrent use; the session controller serializes access.
type Directory struct {
	accts []*ledger.Account
}

// New builds a directory from the given accounts, deriving each username.
func New(accts ...*ledger.Account) (*Directory, error) {
	d := &Directory{}
	for _, a := range accts {
		if err := d.Add(a); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// DeriveUserName lowercases the owner's name and joins the first letter of each word.
// "Steven Thomas Williams" becomes "stw".
func DeriveUserName(owner string) string {
	var b strings.Builder
	for _, word := range strings.Fields(strings.ToLower(owner)) {
		r, _ := utf8.DecodeRuneInString(word)
		b.WriteRune(r)
	}
	return b.String()
}

// Add derives the account's username and inserts it. Usernames must be unique.
func (d *Directory) Add(a *ledger.Account) error {
	name := DeriveUserName(a.Owner)
	if name == "" {
		return ErrEmptyUserName
	}
	if _, ok := d.FindByUserName(name); ok {
		return ErrDuplicateUserName
	}
	a.UserName = name
	d.accts = append(d.accts, a)
	return nil
}

// FindByUserName returns the matching account. Absence is a normal outcome.
func (d *Directory) FindByUserName(name string) (*ledger.Account, bool) {
	for _, a := range d.accts {
		if a.UserName == name {
			return a, true
		}
	}
	return nil, false
}

// Remove deletes the account permanently.
func (d *Directory) Remove(name string) error {
	i := slices.IndexFunc(d.accts, func(a *ledger.Account) bool { return a.UserName == name })
	if i < 0 {
		return ErrNotFound
	}
	d.accts = slices.Delete(d.accts, i, i+1)
	return nil
}

// List returns the accounts in insertion order.
func (d *Directory) List() []*ledger.Account {
	return slices.Clone(d.accts)
}

func (d *Directory) Len() int { return len(d.accts) }
