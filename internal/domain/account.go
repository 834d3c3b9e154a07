package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind discriminates the account variants. Kind-specific state
// lives in the matching details struct; exactly one of them is set.
type AccountKind string

const (
	AccountSavings AccountKind = "SAVINGS"
	AccountCurrent AccountKind = "CURRENT"
	AccountLoan    AccountKind = "LOAN"
)

// IsValid reports whether k is a known account kind.
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountSavings, AccountCurrent, AccountLoan:
		return true
	}
	return false
}

// SavingsDetails holds savings-specific state.
type SavingsDetails struct {
	InterestRate decimal.Decimal // percent per month
}

// CurrentDetails holds current-account overdraft state. Limit is the
// remaining overdraft capacity; Cap is the ceiling it can be restored to.
type CurrentDetails struct {
	OverdraftLimit Money
	OverdraftCap   Money
}

// LoanDetails holds loan-specific state. The EMI is derived from these
// fields rather than stored.
type LoanDetails struct {
	Principal    Money
	InterestRate decimal.Decimal // percent per annum
	TenureMonths int
	PaymentsMade int
}

// Account is a ledger account. Balance is a materialized cache of the
// journal; the journal is the source of truth. For loan accounts the
// balance is the outstanding principal and trends toward zero.
type Account struct {
	Number    int64
	Name      string
	Phone     string
	Address   string
	Balance   Money
	Kind      AccountKind
	CreatedAt time.Time

	Savings *SavingsDetails
	Current *CurrentDetails
	Loan    *LoanDetails

	// History is the in-memory bounded window of recent entries,
	// oldest first. The on-disk journal is never pruned.
	History []Entry
}

// Record appends an entry to the in-memory window, evicting the oldest
// once the window exceeds cap.
func (a *Account) Record(e Entry, cap int) {
	a.History = append(a.History, e)
	if cap > 0 && len(a.History) > cap {
		a.History = a.History[len(a.History)-cap:]
	}
}

// RecentEntries returns up to limit entries, most recent first,
// optionally filtered by kind (empty kind means no filter).
func (a *Account) RecentEntries(limit int, kind EntryKind) []Entry {
	var out []Entry
	for i := len(a.History) - 1; i >= 0; i-- {
		if kind != "" && a.History[i].Kind != kind {
			continue
		}
		out = append(out, a.History[i])
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// Credit adds amount to the balance and returns the draft entry to
// journal. Never fails for a representable result.
func (a *Account) Credit(amount Money, kind EntryKind, memo string) (EntryDraft, error) {
	newBalance, err := a.Balance.Add(amount)
	if err != nil {
		return EntryDraft{}, err
	}

	a.Balance = newBalance
	return EntryDraft{Kind: kind, Amount: amount, BalanceAfter: a.Balance, Memo: memo}, nil
}

// DebitBalance removes amount from the balance alone, never drawing on
// overdraft capacity. Transfers use this path so the source side always
// journals the requested entry kind and only the balance changes.
func (a *Account) DebitBalance(amount Money, kind EntryKind, memo string) (EntryDraft, error) {
	if a.Kind == AccountLoan {
		return EntryDraft{}, fmt.Errorf("%w: loan accounts cannot be debited", ErrWrongAccountKind)
	}
	if amount > a.Balance {
		return EntryDraft{}, fmt.Errorf("%w: cannot debit %s, available %s",
			ErrInsufficientFunds, amount, a.Balance)
	}

	newBalance, err := a.Balance.Sub(amount)
	if err != nil {
		return EntryDraft{}, err
	}
	a.Balance = newBalance
	return EntryDraft{Kind: kind, Amount: amount, BalanceAfter: a.Balance, Memo: memo}, nil
}

// Debit removes amount from the balance. Current accounts may draw from
// the remaining overdraft capacity: the balance is zeroed and the
// shortfall reduces the overdraft limit, recorded as a single
// OVERDRAFT_WITHDRAWAL. Loan accounts cannot be debited.
func (a *Account) Debit(amount Money, kind EntryKind, memo string) (EntryDraft, error) {
	if a.Kind == AccountLoan {
		return EntryDraft{}, fmt.Errorf("%w: loan accounts cannot be debited", ErrWrongAccountKind)
	}

	if amount <= a.Balance {
		return a.DebitBalance(amount, kind, memo)
	}

	if a.Kind != AccountCurrent {
		return EntryDraft{}, fmt.Errorf("%w: cannot debit %s, available %s",
			ErrInsufficientFunds, amount, a.Balance)
	}

	available, err := a.Balance.Add(a.Current.OverdraftLimit)
	if err != nil {
		return EntryDraft{}, err
	}
	if amount > available {
		return EntryDraft{}, fmt.Errorf("%w: %s exceeds balance plus overdraft limit %s",
			ErrInsufficientFunds, amount, available)
	}

	shortfall := amount - a.Balance
	a.Balance = 0
	a.Current.OverdraftLimit -= shortfall
	return EntryDraft{
		Kind:         EntryOverdraftWithdrawal,
		Amount:       amount,
		BalanceAfter: a.Balance,
		Memo:         memo,
	}, nil
}

// CalculateInterest returns one month of interest on the current balance
// of a savings account. Non-mutating.
func (a *Account) CalculateInterest() (Money, error) {
	if a.Kind != AccountSavings {
		return 0, fmt.Errorf("%w: interest applies to savings accounts", ErrWrongAccountKind)
	}
	return PercentOf(a.Balance, a.Savings.InterestRate), nil
}

// ApplyMonthlyInterest credits the calculated interest to the balance.
func (a *Account) ApplyMonthlyInterest() (EntryDraft, error) {
	interest, err := a.CalculateInterest()
	if err != nil {
		return EntryDraft{}, err
	}
	return a.Credit(interest, EntryInterestApplied, "Monthly interest credited")
}

// RepayOverdraft applies a deposit toward restoring a current account's
// overdraft limit. A repayment that would push the limit past the cap is
// split: the limit is topped up to the cap and the excess is credited to
// the balance, yielding up to two drafts (OVERDRAFT_REPAY then DEPOSIT).
// The repayment draft does not change the balance, so its sign is zero.
func (a *Account) RepayOverdraft(amount Money) ([]EntryDraft, error) {
	if a.Kind != AccountCurrent {
		return nil, fmt.Errorf("%w: overdraft repayment applies to current accounts", ErrWrongAccountKind)
	}

	od := a.Current
	restored, err := od.OverdraftLimit.Add(amount)
	if err != nil {
		return nil, err
	}

	if restored <= od.OverdraftCap {
		od.OverdraftLimit = restored
		return []EntryDraft{{
			Kind:         EntryOverdraftRepay,
			Amount:       amount,
			BalanceAfter: a.Balance,
			Memo:         "Overdraft limit restoration",
		}}, nil
	}

	toRepay := od.OverdraftCap - od.OverdraftLimit
	excess := amount - toRepay
	if toRepay <= 0 {
		// Overdraft already full, whole deposit goes to the balance.
		return a.depositDrafts(amount, "Deposit to balance (overdraft full)")
	}

	od.OverdraftLimit = od.OverdraftCap
	drafts := []EntryDraft{{
		Kind:         EntryOverdraftRepay,
		Amount:       toRepay,
		BalanceAfter: a.Balance,
		Memo:         "Overdraft repayment",
	}}

	if excess > 0 {
		more, err := a.depositDrafts(excess, "Excess amount to balance")
		if err != nil {
			return nil, err
		}
		drafts = append(drafts, more...)
	}

	return drafts, nil
}

func (a *Account) depositDrafts(amount Money, memo string) ([]EntryDraft, error) {
	draft, err := a.Credit(amount, EntryDeposit, memo)
	if err != nil {
		return nil, err
	}
	return []EntryDraft{draft}, nil
}

// EMI computes the equated monthly installment with the standard
// amortization formula P*r*(1+r)^n / ((1+r)^n - 1). The intermediate math
// runs in decimal and only the final figure is converted to Money; it is
// a derived payment amount, never a ledger balance.
func (a *Account) EMI() (Money, error) {
	if a.Kind != AccountLoan {
		return 0, fmt.Errorf("%w: EMI applies to loan accounts", ErrWrongAccountKind)
	}

	l := a.Loan
	if l.TenureMonths <= 0 {
		return 0, fmt.Errorf("%w: %d months", ErrInvalidTenure, l.TenureMonths)
	}

	monthlyRate := l.InterestRate.Div(decimal.NewFromInt(1200))
	if monthlyRate.IsZero() {
		return Money(int64(l.Principal) / int64(l.TenureMonths)), nil
	}

	factor := decimal.NewFromInt(1).Add(monthlyRate).Pow(decimal.NewFromInt(int64(l.TenureMonths)))
	principal := l.Principal.Decimal()
	emi := principal.Mul(monthlyRate).Mul(factor).Div(factor.Sub(decimal.NewFromInt(1)))

	return Money(emi.Mul(hundred).Round(0).IntPart()), nil
}

// ProcessPayment debits a loan payment. A payment exceeding the
// outstanding balance is clipped, not rejected. Closing payment clamps
// the balance to exactly zero and appends a LOAN_CLOSED marker.
func (a *Account) ProcessPayment(amount Money) ([]EntryDraft, error) {
	if a.Kind != AccountLoan {
		return nil, fmt.Errorf("%w: payments apply to loan accounts", ErrWrongAccountKind)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: payment must be positive", ErrInvalidAmount)
	}

	if amount > a.Balance {
		amount = a.Balance
	}

	a.Balance -= amount
	a.Loan.PaymentsMade++

	drafts := []EntryDraft{{
		Kind:         EntryEMIPayment,
		Amount:       amount,
		BalanceAfter: a.Balance,
		Memo:         fmt.Sprintf("EMI payment #%d", a.Loan.PaymentsMade),
	}}

	if a.Balance <= 0 {
		a.Balance = 0
		drafts = append(drafts, EntryDraft{
			Kind:         EntryLoanClosed,
			Amount:       0,
			BalanceAfter: 0,
			Memo:         "Loan account closed - fully paid",
		})
	}

	return drafts, nil
}
