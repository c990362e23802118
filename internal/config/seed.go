package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"bankist.org/internal/auth"
	"bankist.org/internal/directory"
	"bankist.org/internal/ledger"
)

//go:embed accounts.toml
var defaultSeed []byte

// Seed is the static account list the bank starts with.
type Seed struct {
	Accounts []SeedAccount `toml:"accounts"`
}

type SeedAccount struct {
	Owner        string            `toml:"owner"`
	PIN          int               `toml:"pin"`
	InterestRate float64           `toml:"interest_rate"`
	Currency     string            `toml:"currency"`
	Locale       string            `toml:"locale"`
	Movements    []decimal.Decimal `toml:"movements"`
	Dates        []time.Time       `toml:"dates"`
}

var ErrNoAccounts = errors.New("seed has no accounts")

// LoadSeed reads a seed file, or the built-in demo accounts when path is empty.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return ParseSeed(defaultSeed)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read seed: %w", err)
	}
	return ParseSeed(data)
}

// ParseSeed decodes and validates TOML seed data.
func ParseSeed(data []byte) (Seed, error) {
	var s Seed
	md, err := toml.Decode(string(data), &s)
	if err != nil {
		return Seed{}, fmt.Errorf("decode seed: %w", err)
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		return Seed{}, fmt.Errorf("decode seed: unknown keys %v", undec)
	}
	if err := s.Validate(); err != nil {
		return Seed{}, err
	}
	return s, nil
}

// Validate checks every account before anything is hashed or inserted.
func (s Seed) Validate() error {
	if len(s.Accounts) == 0 {
		return ErrNoAccounts
	}
	for i, a := range s.Accounts {
		switch {
		case strings.TrimSpace(a.Owner) == "":
			return fmt.Errorf("account %d: %w", i, ledger.ErrMissingOwner)
		case a.PIN < 0:
			return fmt.Errorf("account %d (%s): %w", i, a.Owner, auth.ErrInvalidPIN)
		case len(a.Movements) != len(a.Dates):
			return fmt.Errorf("account %d (%s): %w", i, a.Owner, ledger.ErrLengthMismatch)
		}
	}
	return nil
}

// Directory hashes each PIN at the given bcrypt cost and builds the account directory.
func (s Seed) Directory(pinCost int) (*directory.Directory, error) {
	accts := make([]*ledger.Account, 0, len(s.Accounts))
	for _, a := range s.Accounts {
		hash, err := auth.HashPIN(a.PIN, pinCost)
		if err != nil {
			return nil, fmt.Errorf("hash pin for %s: %w", a.Owner, err)
		}
		acc, err := ledger.NewAccount(ledger.Opening{
			Owner:        a.Owner,
			PINHash:      hash,
			InterestRate: decimal.NewFromFloat(a.InterestRate),
			Currency:     a.Currency,
			Locale:       a.Locale,
			Movements:    a.Movements,
			Dates:        a.Dates,
		})
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Owner, err)
		}
		accts = append(accts, acc)
	}
	dir, err := directory.New(accts...)
	if err != nil {
		return nil, fmt.Errorf("build directory: %w", err)
	}
	return dir, nil
}
