package auth

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

var maxPIN = decimal.NewFromInt(math.MaxInt32)

// HashPIN hashes the canonical decimal form of a numeric PIN using bcrypt.
// A cost of zero selects bcrypt.DefaultCost.
func HashPIN(pin int, cost int) (string, error) {
	if pin < 0 {
		return "", ErrInvalidPIN
	}
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(strconv.Itoa(pin)), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPIN compares a numeric PIN with the stored hash. Two PINs match when
// they are numerically equal, so "0042" and 42 are the same credential.
func VerifyPIN(hash string, pin int) error {
	if hash == "" {
		return errors.New("pin hash is empty")
	}
	if pin < 0 {
		return ErrInvalidPIN
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strconv.Itoa(pin))); err != nil {
		return ErrUnauthorized
	}
	return nil
}

// ParsePIN turns user input into a numeric PIN. Any spelling of a whole
// number is accepted, so "1111", "01111" and "1111.0" are the same PIN.
func ParsePIN(raw string) (int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() || !d.Equal(d.Truncate(0)) || d.GreaterThan(maxPIN) {
		return 0, ErrInvalidPIN
	}
	return int(d.IntPart()), nil
}
