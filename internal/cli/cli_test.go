package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"golang.org/x/crypto/bcrypt"

	"timed-exam-service/internal/config"
)

func TestDefaultBankIsValid(t *testing.T) {
	bank := defaultBank("default")
	if err := bank.Validate(); err != nil {
		t.Fatalf("default bank invalid: %v", err)
	}
	if len(bank.Questions) != 10 {
		t.Fatalf("expected 10 questions, got %d", len(bank.Questions))
	}
	want := map[int]string{1: "C", 2: "D", 3: "A", 4: "D", 5: "C", 6: "C", 7: "B", 8: "A", 9: "A", 10: "A"}
	for _, q := range bank.Questions {
		if q.CorrectOptionID != want[q.ID] {
			t.Errorf("question %d: correct option %q, want %q", q.ID, q.CorrectOptionID, want[q.ID])
		}
	}
}

func TestHashSecretCommand(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("practice-pass\n"))
	cmd.SetArgs([]string{"hash-secret", "--cost", "4"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	hash := strings.TrimSpace(out.String())
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte("practice-pass")); err != nil {
		t.Fatalf("printed hash does not verify: %v", err)
	}
}

func TestHashSecretRejectsShortSecret(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetIn(strings.NewReader("abc\n"))
	cmd.SetArgs([]string{"hash-secret"})

	if err := cmd.Execute(); err == nil {
		t.Fatalf("expected short secret to be rejected")
	}
}

func TestResultsListWithMemoryStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: error\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"results", "list", "--config", path})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.HasPrefix(out.String(), "NAME") {
		t.Fatalf("expected table header, got %q", out.String())
	}
}

func TestResultsClearNeedsConfirmation(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"results", "clear"})
	err := cmd.Execute()
	if err == nil || !strings.Contains(err.Error(), "--yes") {
		t.Fatalf("expected confirmation error, got %v", err)
	}
}

func TestDropCachedBankRemovesOnlyThatBank(t *testing.T) {
	mr := miniredis.RunT(t)
	if err := mr.Set("exam:bank:bank-1", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := mr.Set("exam:bank:bank-2", "{}"); err != nil {
		t.Fatalf("set: %v", err)
	}

	var cfg config.Config
	cfg.Redis.Addr = mr.Addr()
	if err := dropCachedBank(context.Background(), cfg, "bank-1"); err != nil {
		t.Fatalf("drop cached bank: %v", err)
	}
	if mr.Exists("exam:bank:bank-1") {
		t.Fatalf("expected bank-1 cache entry removed")
	}
	if !mr.Exists("exam:bank:bank-2") {
		t.Fatalf("expected bank-2 cache entry kept")
	}
}
