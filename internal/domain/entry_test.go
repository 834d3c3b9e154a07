package domain

import (
	"strings"
	"testing"
	"time"
)

func TestEntryLineRoundTrip(t *testing.T) {
	e := Entry{
		ID:           "01HXYZENTRY",
		Kind:         EntryTransferOut,
		Amount:       2500,
		BalanceAfter: 7500,
		Timestamp:    time.Unix(1735689600, 0).UTC(),
		Memo:         "Transfer to 100002",
	}

	parsed, err := ParseEntryLine(e.Line())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != e {
		t.Errorf("round trip mismatch: got %+v, want %+v", parsed, e)
	}
}

func TestEntryLineEmptyMemo(t *testing.T) {
	e := Entry{
		ID:           "01HXYZENTRY",
		Kind:         EntryDeposit,
		Amount:       100,
		BalanceAfter: 100,
		Timestamp:    time.Unix(1700000000, 0).UTC(),
	}

	line := e.Line()
	if !strings.HasSuffix(line, "|") {
		t.Fatalf("expected trailing empty memo field in %q", line)
	}

	parsed, err := ParseEntryLine(line)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed.Memo != "" {
		t.Errorf("expected empty memo, got %q", parsed.Memo)
	}
}

func TestParseEntryLineErrors(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{name: "empty", line: ""},
		{name: "too few fields", line: "id|DEPOSIT|100"},
		{name: "unknown kind", line: "id|GIFT|100|100|1700000000|"},
		{name: "bad amount", line: "id|DEPOSIT|abc|100|1700000000|"},
		{name: "bad balance", line: "id|DEPOSIT|100|abc|1700000000|"},
		{name: "bad timestamp", line: "id|DEPOSIT|100|100|later|"},
		{name: "truncated crash line", line: "id|DEPO"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseEntryLine(tt.line); err == nil {
				t.Errorf("expected error for %q", tt.line)
			}
		})
	}
}

func TestEntryKindSign(t *testing.T) {
	credits := []EntryKind{EntryDeposit, EntryCredit, EntryTransferIn, EntryInterestApplied, EntryAccountCreated}
	debits := []EntryKind{EntryWithdrawal, EntryDebit, EntryTransferOut, EntryEMIPayment, EntryOverdraftWithdrawal}
	neutral := []EntryKind{EntryLoanClosed, EntryOverdraftRepay}

	for _, k := range credits {
		if k.Sign() != 1 {
			t.Errorf("%s sign = %d, want 1", k, k.Sign())
		}
	}
	for _, k := range debits {
		if k.Sign() != -1 {
			t.Errorf("%s sign = %d, want -1", k, k.Sign())
		}
	}
	for _, k := range neutral {
		if k.Sign() != 0 {
			t.Errorf("%s sign = %d, want 0", k, k.Sign())
		}
	}
}

func TestEntrySigned(t *testing.T) {
	e := Entry{Kind: EntryWithdrawal, Amount: 300}
	if e.Signed() != -300 {
		t.Errorf("Signed() = %d, want -300", e.Signed())
	}
}
