package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EntryKind classifies a ledger entry.
type EntryKind string

const (
	EntryDeposit             EntryKind = "DEPOSIT"
	EntryWithdrawal          EntryKind = "WITHDRAWAL"
	EntryCredit              EntryKind = "CREDIT"
	EntryDebit               EntryKind = "DEBIT"
	EntryTransferIn          EntryKind = "TRANSFER_IN"
	EntryTransferOut         EntryKind = "TRANSFER_OUT"
	EntryInterestApplied     EntryKind = "INTEREST_APPLIED"
	EntryEMIPayment          EntryKind = "EMI_PAYMENT"
	EntryLoanClosed          EntryKind = "LOAN_CLOSED"
	EntryOverdraftWithdrawal EntryKind = "OVERDRAFT_WITHDRAWAL"
	EntryOverdraftRepay      EntryKind = "OVERDRAFT_REPAY"
	EntryAccountCreated      EntryKind = "ACCOUNT_CREATED"
)

var entryKindSigns = map[EntryKind]int64{
	EntryDeposit:             1,
	EntryWithdrawal:          -1,
	EntryCredit:              1,
	EntryDebit:               -1,
	EntryTransferIn:          1,
	EntryTransferOut:         -1,
	EntryInterestApplied:     1,
	EntryEMIPayment:          -1,
	EntryLoanClosed:          0,
	EntryOverdraftWithdrawal: -1,
	EntryOverdraftRepay:      0,
	EntryAccountCreated:      1,
}

// IsValid reports whether k is a known entry kind.
func (k EntryKind) IsValid() bool {
	_, ok := entryKindSigns[k]
	return ok
}

// Sign is the direction the entry moves the account balance: +1 credit,
// -1 debit, 0 for entries that do not touch the balance (markers and
// overdraft-limit restorations).
func (k EntryKind) Sign() int64 {
	return entryKindSigns[k]
}

// Entry is one immutable fact in an account's journal.
type Entry struct {
	ID           string
	Kind         EntryKind
	Amount       Money
	BalanceAfter Money
	Timestamp    time.Time
	Memo         string
}

// Signed returns the amount with the direction implied by the entry kind.
func (e Entry) Signed() Money {
	return Money(int64(e.Amount) * e.Kind.Sign())
}

// Line serializes the entry to its journal line:
// id|kind|amount|balance_after|unix_ts|memo
func (e Entry) Line() string {
	return strings.Join([]string{
		e.ID,
		string(e.Kind),
		strconv.FormatInt(int64(e.Amount), 10),
		strconv.FormatInt(int64(e.BalanceAfter), 10),
		strconv.FormatInt(e.Timestamp.Unix(), 10),
		e.Memo,
	}, "|")
}

// ParseEntryLine deserializes a journal line. The memo is the final field
// and may itself contain delimiters.
func ParseEntryLine(line string) (Entry, error) {
	fields := strings.SplitN(line, "|", 6)
	if len(fields) < 5 {
		return Entry{}, fmt.Errorf("journal line has %d fields, want at least 5", len(fields))
	}

	kind := EntryKind(fields[1])
	if !kind.IsValid() {
		return Entry{}, fmt.Errorf("unknown entry kind %q", fields[1])
	}

	amount, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad amount %q: %w", fields[2], err)
	}

	balance, err := strconv.ParseInt(fields[3], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad balance %q: %w", fields[3], err)
	}

	ts, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return Entry{}, fmt.Errorf("bad timestamp %q: %w", fields[4], err)
	}

	var memo string
	if len(fields) == 6 {
		memo = fields[5]
	}

	return Entry{
		ID:           fields[0],
		Kind:         kind,
		Amount:       Money(amount),
		BalanceAfter: Money(balance),
		Timestamp:    time.Unix(ts, 0).UTC(),
		Memo:         memo,
	}, nil
}

// EntryDraft is a balance change an account has applied in memory but not
// yet stamped with an ID and timestamp. The ledger service turns drafts
// into journal entries inside the same mutating call.
type EntryDraft struct {
	Kind   EntryKind
	Amount Money
	// BalanceAfter is the account balance immediately after this draft
	// was applied.
	BalanceAfter Money
	Memo         string
}
