package usecase

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// Limits are the configured bounds the ledger enforces on inputs.
type Limits struct {
	HistoryWindow         int
	MinAccountNumber      int64
	MaxAccountNumber      int64
	StartingAccountNumber int64
	MinAmount             domain.Money
	MaxAmount             domain.Money
	SavingsMinRate        decimal.Decimal
	SavingsMaxRate        decimal.Decimal
	LoanMinRate           decimal.Decimal
	LoanMaxRate           decimal.Decimal
	LoanMinTenureMonths   int
	LoanMaxTenureMonths   int
}

// LedgerUseCase owns the in-memory account registry and is its sole
// mutator. Every mutating operation appends to the on-disk journal
// inside the same call that changes the balance, then rewrites the
// account snapshot. The mutation path is single-writer; the mutex is
// the mutual-exclusion boundary for callers that bring goroutines.
type LedgerUseCase struct {
	mu         sync.Mutex
	accounts   map[int64]*domain.Account
	nextNumber int64

	journal      JournalStore
	accountStore AccountStore
	idGen        IDGenerator
	clock        domain.Clock
	log          zerolog.Logger
	metrics      *metrics.Metrics
	limits       Limits
}

// NewLedgerUseCase creates a LedgerUseCase. Call Load before first use.
func NewLedgerUseCase(
	journal JournalStore,
	accountStore AccountStore,
	idGen IDGenerator,
	clock domain.Clock,
	log zerolog.Logger,
	m *metrics.Metrics,
	limits Limits,
) *LedgerUseCase {
	return &LedgerUseCase{
		accounts:     make(map[int64]*domain.Account),
		nextNumber:   limits.StartingAccountNumber,
		journal:      journal,
		accountStore: accountStore,
		idGen:        idGen,
		clock:        clock,
		log:          log,
		metrics:      m,
		limits:       limits,
	}
}

// Load restores the registry from the account snapshot and replays each
// account's journal into its in-memory history window. The numbering
// counter advances past every loaded account.
func (uc *LedgerUseCase) Load() error {
	accounts, err := uc.accountStore.LoadAll()
	if err != nil {
		return err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	for _, acc := range accounts {
		uc.accounts[acc.Number] = acc
		if acc.Number > uc.nextNumber {
			uc.nextNumber = acc.Number
		}

		entries, err := uc.journal.Replay(acc.Number)
		if err != nil {
			return err
		}
		for _, e := range entries {
			acc.Record(e, uc.limits.HistoryWindow)
		}
	}

	uc.log.Info().Int("accounts", len(accounts)).Msg("ledger loaded")
	return nil
}

// OpenAccountInput carries the fields for opening an account. A zero
// Number requests auto-assignment from the numbering counter.
type OpenAccountInput struct {
	Number         int64
	Name           string
	Phone          string
	Address        string
	OpeningBalance domain.Money
	Kind           domain.AccountKind

	// Savings
	InterestRate decimal.Decimal

	// Current
	OverdraftLimit domain.Money

	// Loan
	TenureMonths int
}

// OpenAccount validates the input, assigns the account number and
// records an ACCOUNT_CREATED entry equal to the opening balance.
func (uc *LedgerUseCase) OpenAccount(input OpenAccountInput) (*domain.Account, error) {
	if err := domain.ValidateName(input.Name); err != nil {
		return nil, err
	}
	if err := domain.ValidatePhone(input.Phone); err != nil {
		return nil, err
	}
	if err := domain.ValidateAddress(input.Address); err != nil {
		return nil, err
	}
	if input.OpeningBalance < 0 {
		return nil, fmt.Errorf("%w: opening balance cannot be negative", domain.ErrInvalidAmount)
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	number, err := uc.assignNumberLocked(input.Number)
	if err != nil {
		return nil, err
	}

	acc := &domain.Account{
		Number:    number,
		Name:      input.Name,
		Phone:     input.Phone,
		Address:   input.Address,
		Balance:   input.OpeningBalance,
		Kind:      input.Kind,
		CreatedAt: uc.clock.Now(),
	}

	switch input.Kind {
	case domain.AccountSavings:
		if err := domain.ValidateInterestRate(input.InterestRate, uc.limits.SavingsMinRate, uc.limits.SavingsMaxRate); err != nil {
			return nil, err
		}
		acc.Savings = &domain.SavingsDetails{InterestRate: input.InterestRate}

	case domain.AccountCurrent:
		if input.OverdraftLimit < 0 {
			return nil, fmt.Errorf("%w: overdraft limit cannot be negative", domain.ErrInvalidAmount)
		}
		acc.Current = &domain.CurrentDetails{
			OverdraftLimit: input.OverdraftLimit,
			OverdraftCap:   input.OverdraftLimit,
		}

	case domain.AccountLoan:
		if err := domain.ValidateInterestRate(input.InterestRate, uc.limits.LoanMinRate, uc.limits.LoanMaxRate); err != nil {
			return nil, err
		}
		if err := domain.ValidateTenure(input.TenureMonths, uc.limits.LoanMinTenureMonths, uc.limits.LoanMaxTenureMonths); err != nil {
			return nil, err
		}
		acc.Loan = &domain.LoanDetails{
			Principal:    input.OpeningBalance,
			InterestRate: input.InterestRate,
			TenureMonths: input.TenureMonths,
		}

	default:
		return nil, fmt.Errorf("%w: unknown account kind %q", domain.ErrWrongAccountKind, input.Kind)
	}

	draft := domain.EntryDraft{
		Kind:         domain.EntryAccountCreated,
		Amount:       input.OpeningBalance,
		BalanceAfter: input.OpeningBalance,
		Memo:         "Account opened",
	}
	if _, err := uc.appendDraftLocked(acc, draft); err != nil {
		return nil, err
	}

	uc.accounts[number] = acc
	if uc.metrics != nil {
		uc.metrics.AccountsOpened.Inc()
	}
	uc.log.Info().Int64("account", number).Str("kind", string(acc.Kind)).Msg("account opened")

	return acc, uc.persistLocked()
}

// Deposit credits amount to a savings or current account. For current
// accounts toOverdraft routes the deposit into overdraft repayment,
// splitting into up to two entries when the cap would be exceeded.
func (uc *LedgerUseCase) Deposit(accountNo int64, amount domain.Money, toOverdraft bool) ([]domain.Entry, error) {
	if err := domain.ValidateAmountBounds(amount, uc.limits.MinAmount, uc.limits.MaxAmount); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return nil, err
	}
	if acc.Kind == domain.AccountLoan {
		return nil, fmt.Errorf("%w: loan accounts take EMI payments, not deposits", domain.ErrWrongAccountKind)
	}

	restore := captureState(acc)

	var drafts []domain.EntryDraft
	if toOverdraft && acc.Kind == domain.AccountCurrent {
		drafts, err = acc.RepayOverdraft(amount)
	} else {
		var draft domain.EntryDraft
		draft, err = acc.Credit(amount, domain.EntryDeposit, "Cash/Cheque deposit")
		drafts = []domain.EntryDraft{draft}
	}
	if err != nil {
		return nil, err
	}

	return uc.commitLocked(acc, drafts, restore)
}

// WithdrawResult reports the outcome of a withdrawal. Loan accounts do
// not support withdrawal: Applied is false and Note explains why, with
// no error and no state change.
type WithdrawResult struct {
	Applied bool
	Note    string
	Entries []domain.Entry
}

// Withdraw debits amount from the account, drawing on the overdraft
// allowance for current accounts.
func (uc *LedgerUseCase) Withdraw(accountNo int64, amount domain.Money) (WithdrawResult, error) {
	if err := domain.ValidateAmountBounds(amount, uc.limits.MinAmount, uc.limits.MaxAmount); err != nil {
		return WithdrawResult{}, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return WithdrawResult{}, err
	}

	if acc.Kind == domain.AccountLoan {
		return WithdrawResult{
			Note: "withdrawal not allowed on loan accounts; make an EMI payment instead",
		}, nil
	}

	restore := captureState(acc)

	draft, err := acc.Debit(amount, domain.EntryWithdrawal, "ATM/Branch withdrawal")
	if err != nil {
		return WithdrawResult{}, err
	}

	entries, err := uc.commitLocked(acc, []domain.EntryDraft{draft}, restore)
	if err != nil {
		return WithdrawResult{}, err
	}

	return WithdrawResult{Applied: true, Entries: entries}, nil
}

// CalculateInterest returns one month of interest for a savings account
// without mutating anything.
func (uc *LedgerUseCase) CalculateInterest(accountNo int64) (domain.Money, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return 0, err
	}
	return acc.CalculateInterest()
}

// ApplyMonthlyInterest credits monthly interest to one savings account.
func (uc *LedgerUseCase) ApplyMonthlyInterest(accountNo int64) ([]domain.Entry, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.applyInterestLocked(accountNo)
}

// ApplyMonthlyInterestAll credits monthly interest to every savings
// account, returning how many were credited and the total interest.
func (uc *LedgerUseCase) ApplyMonthlyInterestAll() (int, domain.Money, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	var (
		count int
		total domain.Money
	)
	for _, number := range uc.sortedNumbersLocked() {
		if uc.accounts[number].Kind != domain.AccountSavings {
			continue
		}
		entries, err := uc.applyInterestLocked(number)
		if err != nil {
			return count, total, err
		}
		count++
		total += entries[0].Amount
	}

	uc.log.Info().Int("accounts", count).Stringer("total", total).Msg("monthly interest applied")
	return count, total, nil
}

func (uc *LedgerUseCase) applyInterestLocked(accountNo int64) ([]domain.Entry, error) {
	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return nil, err
	}

	restore := captureState(acc)
	draft, err := acc.ApplyMonthlyInterest()
	if err != nil {
		return nil, err
	}

	return uc.commitLocked(acc, []domain.EntryDraft{draft}, restore)
}

// LoanEMI returns the equated monthly installment for a loan account.
func (uc *LedgerUseCase) LoanEMI(accountNo int64) (domain.Money, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return 0, err
	}
	return acc.EMI()
}

// PayLoan applies a payment toward a loan account's outstanding balance.
func (uc *LedgerUseCase) PayLoan(accountNo int64, amount domain.Money) ([]domain.Entry, error) {
	if err := domain.ValidateAmountBounds(amount, uc.limits.MinAmount, uc.limits.MaxAmount); err != nil {
		return nil, err
	}

	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return nil, err
	}

	restore := captureState(acc)
	drafts, err := acc.ProcessPayment(amount)
	if err != nil {
		return nil, err
	}

	return uc.commitLocked(acc, drafts, restore)
}

// History returns up to limit entries from the account's in-memory
// window, most recent first, optionally filtered by kind.
func (uc *LedgerUseCase) History(accountNo int64, limit int, kind domain.EntryKind) ([]domain.Entry, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	acc, err := uc.accountLocked(accountNo)
	if err != nil {
		return nil, err
	}
	return acc.RecentEntries(limit, kind), nil
}

// Account returns the account with the given number.
func (uc *LedgerUseCase) Account(accountNo int64) (*domain.Account, error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()
	return uc.accountLocked(accountNo)
}

// Accounts returns every account ordered by number.
func (uc *LedgerUseCase) Accounts() []*domain.Account {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	out := make([]*domain.Account, 0, len(uc.accounts))
	for _, number := range uc.sortedNumbersLocked() {
		out = append(out, uc.accounts[number])
	}
	return out
}

func (uc *LedgerUseCase) accountLocked(accountNo int64) (*domain.Account, error) {
	acc, ok := uc.accounts[accountNo]
	if !ok {
		return nil, fmt.Errorf("%w: %d", domain.ErrAccountNotFound, accountNo)
	}
	return acc, nil
}

func (uc *LedgerUseCase) assignNumberLocked(requested int64) (int64, error) {
	if requested == 0 {
		if uc.nextNumber >= uc.limits.MaxAccountNumber {
			return 0, fmt.Errorf("%w: reached %d", domain.ErrNumbersExhausted, uc.limits.MaxAccountNumber)
		}
		uc.nextNumber++
		return uc.nextNumber, nil
	}

	if requested < uc.limits.MinAccountNumber || requested > uc.limits.MaxAccountNumber {
		return 0, fmt.Errorf("%w: account number %d outside range %d-%d",
			domain.ErrInvalidAmount, requested, uc.limits.MinAccountNumber, uc.limits.MaxAccountNumber)
	}
	if _, exists := uc.accounts[requested]; exists {
		return 0, fmt.Errorf("%w: %d", domain.ErrAccountExists, requested)
	}
	if requested > uc.nextNumber {
		uc.nextNumber = requested
	}
	return requested, nil
}

// commitLocked turns drafts into journal entries. The journal append
// runs before the call returns; if it fails, the in-memory mutation is
// reverted via restore so no acknowledged state precedes the disk write.
func (uc *LedgerUseCase) commitLocked(acc *domain.Account, drafts []domain.EntryDraft, restore accountState) ([]domain.Entry, error) {
	var entries []domain.Entry
	for _, draft := range drafts {
		entry, err := uc.appendDraftLocked(acc, draft)
		if err != nil {
			restore.apply(acc)
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := uc.persistLocked(); err != nil {
		return nil, err
	}
	return entries, nil
}

func (uc *LedgerUseCase) appendDraftLocked(acc *domain.Account, draft domain.EntryDraft) (domain.Entry, error) {
	entry := domain.Entry{
		ID:           uc.idGen.Generate(),
		Kind:         draft.Kind,
		Amount:       draft.Amount,
		BalanceAfter: draft.BalanceAfter,
		Timestamp:    uc.clock.Now(),
		Memo:         draft.Memo,
	}

	if err := uc.journal.Append(acc.Number, entry); err != nil {
		return domain.Entry{}, err
	}

	acc.Record(entry, uc.limits.HistoryWindow)
	uc.log.Info().
		Int64("account", acc.Number).
		Str("kind", string(entry.Kind)).
		Stringer("amount", entry.Amount).
		Msg("entry recorded")
	return entry, nil
}

func (uc *LedgerUseCase) persistLocked() error {
	accounts := make([]*domain.Account, 0, len(uc.accounts))
	for _, number := range uc.sortedNumbersLocked() {
		accounts = append(accounts, uc.accounts[number])
	}

	err := uc.accountStore.SaveAll(accounts)
	if uc.metrics != nil {
		if err != nil {
			uc.metrics.SnapshotErrors.Inc()
		} else {
			uc.metrics.SnapshotWrites.Inc()
		}
	}
	return err
}

func (uc *LedgerUseCase) sortedNumbersLocked() []int64 {
	numbers := make([]int64, 0, len(uc.accounts))
	for n := range uc.accounts {
		numbers = append(numbers, n)
	}
	sort.Slice(numbers, func(i, j int) bool { return numbers[i] < numbers[j] })
	return numbers
}

// accountState is a pre-image of the mutable account fields, used to
// revert an in-memory mutation whose journal append failed.
type accountState struct {
	balance domain.Money
	current domain.CurrentDetails
	loan    domain.LoanDetails
}

func captureState(acc *domain.Account) accountState {
	s := accountState{balance: acc.Balance}
	if acc.Current != nil {
		s.current = *acc.Current
	}
	if acc.Loan != nil {
		s.loan = *acc.Loan
	}
	return s
}

func (s accountState) apply(acc *domain.Account) {
	acc.Balance = s.balance
	if acc.Current != nil {
		*acc.Current = s.current
	}
	if acc.Loan != nil {
		*acc.Loan = s.loan
	}
}
