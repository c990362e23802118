// Package config loads the seed accounts and the runtime settings of the bank.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime settings. Zero values fall back to Default().
type Config struct {
	Addr         string
	SeedFile     string
	IdleTicks    int
	TickInterval time.Duration
	LoanDelay    time.Duration
	PINCost      int
	RateBurst    int
	RatePerSec   int
}

// Default returns the settings of the reference page: ten one-second ticks of
// inactivity and a 2.5s loan processing delay.
func Default() Config {
	return Config{
		Addr:         ":8080",
		IdleTicks:    10,
		TickInterval: time.Second,
		LoanDelay:    2500 * time.Millisecond,
		PINCost:      10,
		RateBurst:    20,
		RatePerSec:   10,
	}
}

// FromEnv loads an optional dotenv file (missing files are fine) and then
// overrides Default() with BANKIST_* variables.
func FromEnv(envFiles ...string) (Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load env file: %w", err)
	}

	cfg := Default()
	var err error
	if v := getEnv("BANKIST_ADDR"); v != "" {
		cfg.Addr = v
	}
	cfg.SeedFile = getEnv("BANKIST_SEED_FILE")
	if cfg.IdleTicks, err = envInt("BANKIST_IDLE_TICKS", cfg.IdleTicks); err != nil {
		return Config{}, err
	}
	if cfg.TickInterval, err = envDuration("BANKIST_TICK_INTERVAL", cfg.TickInterval); err != nil {
		return Config{}, err
	}
	if cfg.LoanDelay, err = envDuration("BANKIST_LOAN_DELAY", cfg.LoanDelay); err != nil {
		return Config{}, err
	}
	if cfg.PINCost, err = envInt("BANKIST_PIN_COST", cfg.PINCost); err != nil {
		return Config{}, err
	}
	if cfg.RateBurst, err = envInt("BANKIST_RATE_BURST", cfg.RateBurst); err != nil {
		return Config{}, err
	}
	if cfg.RatePerSec, err = envInt("BANKIST_RATE_PER_SEC", cfg.RatePerSec); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate rejects settings the controller cannot run with.
func (c Config) Validate() error {
	switch {
	case c.IdleTicks <= 0:
		return errors.New("idle ticks must be > 0")
	case c.TickInterval <= 0:
		return errors.New("tick interval must be > 0")
	case c.LoanDelay < 0:
		return errors.New("loan delay must be >= 0")
	case c.RateBurst <= 0 || c.RatePerSec <= 0:
		return errors.New("rate limit must be > 0")
	}
	return nil
}

// IdleTimeout is the wall-clock length of the inactivity window.
func (c Config) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTicks) * c.TickInterval
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func envInt(key string, def int) (int, error) {
	raw := getEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}
