package main

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

func captureOutput(t *testing.T, fn func()) string {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	fn()

	_ = w.Close()
	os.Stdout = origStdout

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("failed to read stdout: %v", err)
	}
	return buf.String()
}

func TestParseAccountNumber(t *testing.T) {
	n, err := parseAccountNumber("100001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 100001 {
		t.Fatalf("expected 100001, got %d", n)
	}

	if _, err := parseAccountNumber("acct-1"); err == nil {
		t.Fatal("expected error for non-numeric account number")
	}
}

func TestPrintAccountSavings(t *testing.T) {
	acc := &domain.Account{
		Number:  100001,
		Name:    "Asha Verma",
		Phone:   "9876543210",
		Balance: 10_050,
		Kind:    domain.AccountSavings,
		Savings: &domain.SavingsDetails{InterestRate: decimal.RequireFromString("5.5")},
	}

	out := captureOutput(t, func() { printAccount(acc) })

	if !strings.Contains(out, "Account 100001 (SAVINGS)") {
		t.Fatalf("missing header in:\n%s", out)
	}
	if !strings.Contains(out, "Rs.100.50") {
		t.Fatalf("missing balance in:\n%s", out)
	}
	if !strings.Contains(out, "5.5%") {
		t.Fatalf("missing rate in:\n%s", out)
	}
}

func TestPrintEntries(t *testing.T) {
	entries := []domain.Entry{{
		ID:           "01A",
		Kind:         domain.EntryDeposit,
		Amount:       5_000,
		BalanceAfter: 15_000,
		Timestamp:    time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Memo:         "Cash/Cheque deposit",
	}}

	out := captureOutput(t, func() { printEntries(entries) })

	if !strings.Contains(out, "DEPOSIT") || !strings.Contains(out, "Rs.50.00") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if !strings.Contains(out, "2026-01-15 10:00:00") {
		t.Fatalf("missing timestamp in:\n%s", out)
	}
}
