package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out.String())
	}
	return out.String()
}

func TestVersionCommand(t *testing.T) {
	out := run(t, "version")
	if !strings.HasPrefix(out, "bankist "+version) {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestAccountsCommand(t *testing.T) {
	out := run(t, "accounts")
	for _, want := range []string{"USER", "js", "jd", "stw", "ss", "Steven Thomas Williams"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSimulateCommand(t *testing.T) {
	out := run(t, "simulate", "--steps", "30", "--rand-seed", "3")
	if !strings.Contains(out, "actions: 30") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
