package usecase

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// AccountSnapshot is the pre/post image of one account inside a unit of
// work. It exists only between Begin and Commit/Rollback.
type AccountSnapshot struct {
	AccountNo       int64
	PreviousBalance domain.Money
	NewBalance      domain.Money
	Modified        bool
}

// Coordinator tracks exactly one unit of work at a time. The engine is
// single-threaded and has no nested-transaction support, so a second
// Begin while a unit is active is a state violation. Balances are
// applied eagerly by the caller; the coordinator only remembers the
// images needed to undo them in memory.
type Coordinator struct {
	active    bool
	snapshots []AccountSnapshot
	log       zerolog.Logger
}

// NewCoordinator creates an idle Coordinator.
func NewCoordinator(log zerolog.Logger) *Coordinator {
	return &Coordinator{log: log}
}

// Active reports whether a unit of work is open.
func (c *Coordinator) Active() bool {
	return c.active
}

// Begin opens a unit of work.
func (c *Coordinator) Begin() error {
	if c.active {
		return fmt.Errorf("%w: transaction already active", domain.ErrTransaction)
	}
	c.snapshots = nil
	c.active = true
	c.log.Debug().Msg("transaction started")
	return nil
}

// Snapshot records an account's pre-image.
func (c *Coordinator) Snapshot(accountNo int64, balance domain.Money) error {
	if !c.active {
		return fmt.Errorf("%w: no active transaction to snapshot into", domain.ErrTransaction)
	}
	c.snapshots = append(c.snapshots, AccountSnapshot{
		AccountNo:       accountNo,
		PreviousBalance: balance,
		NewBalance:      balance,
	})
	return nil
}

// RecordNewBalance updates the post-image of a previously snapshotted
// account. Operating on an account that was never snapshotted in this
// unit is a state violation.
func (c *Coordinator) RecordNewBalance(accountNo int64, balance domain.Money) error {
	if !c.active {
		return fmt.Errorf("%w: no active transaction to update", domain.ErrTransaction)
	}
	for i := range c.snapshots {
		if c.snapshots[i].AccountNo == accountNo {
			c.snapshots[i].NewBalance = balance
			c.snapshots[i].Modified = true
			return nil
		}
	}
	return fmt.Errorf("%w: account %d not snapshotted in this transaction", domain.ErrTransaction, accountNo)
}

// Commit closes the unit of work and discards the snapshots. Balances
// and journals are already correct because mutations were applied
// eagerly.
func (c *Coordinator) Commit() error {
	if !c.active {
		return fmt.Errorf("%w: no active transaction to commit", domain.ErrTransaction)
	}
	c.log.Debug().Int("accounts", len(c.snapshots)).Msg("transaction committed")
	c.active = false
	c.snapshots = nil
	return nil
}

// Rollback closes the unit of work and hands the snapshots to the
// caller, which must restore each modified account's in-memory balance
// to its pre-image.
func (c *Coordinator) Rollback() ([]AccountSnapshot, error) {
	if !c.active {
		return nil, fmt.Errorf("%w: no active transaction to rollback", domain.ErrTransaction)
	}
	out := c.snapshots
	c.active = false
	c.snapshots = nil
	c.log.Warn().Int("accounts", len(out)).Msg("transaction rolled back")
	return out, nil
}

// TransferUseCase moves money between exactly two accounts as one
// all-or-nothing unit, guarded by the authorization gate.
type TransferUseCase struct {
	ledger  *LedgerUseCase
	coord   *Coordinator
	gate    AuthGate
	log     zerolog.Logger
	metrics *metrics.Metrics
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(ledger *LedgerUseCase, coord *Coordinator, gate AuthGate, log zerolog.Logger, m *metrics.Metrics) *TransferUseCase {
	return &TransferUseCase{
		ledger:  ledger,
		coord:   coord,
		gate:    gate,
		log:     log,
		metrics: m,
	}
}

// Transfer debits amount from the source account and credits it to the
// destination, appending one TRANSFER_OUT and one TRANSFER_IN in that
// order. The debit is balance-only: a current account's overdraft
// capacity is never drawn by a transfer, so the coordinator's balance
// snapshots fully describe the unit of work. On failure after the
// debit, in-memory balances are restored
// from the coordinator's snapshots; journal lines already written stay
// (journals are append-only), and the restored balance is authoritative
// from then on.
func (uc *TransferUseCase) Transfer(fromNo, toNo int64, amount domain.Money, pin string) error {
	if fromNo == toNo {
		return domain.ErrSameAccount
	}
	if err := domain.ValidateAmountBounds(amount, uc.ledger.limits.MinAmount, uc.ledger.limits.MaxAmount); err != nil {
		return err
	}

	// Hard precondition: never snapshot or mutate unauthorized.
	if err := uc.gate.Authorize(fromNo, pin); err != nil {
		return err
	}

	// The whole unit of work runs in the ledger's critical section.
	uc.ledger.mu.Lock()
	defer uc.ledger.mu.Unlock()

	from, err := uc.ledger.accountLocked(fromNo)
	if err != nil {
		return err
	}
	to, err := uc.ledger.accountLocked(toNo)
	if err != nil {
		return err
	}

	if err := uc.coord.Begin(); err != nil {
		return err
	}
	if err := uc.coord.Snapshot(fromNo, from.Balance); err != nil {
		return uc.abort(err)
	}
	if err := uc.coord.Snapshot(toNo, to.Balance); err != nil {
		return uc.abort(err)
	}

	outDraft, err := from.DebitBalance(amount, domain.EntryTransferOut, fmt.Sprintf("Transfer to %d", toNo))
	if err != nil {
		return uc.abort(err)
	}
	if err := uc.coord.RecordNewBalance(fromNo, from.Balance); err != nil {
		return uc.abort(err)
	}
	if _, err := uc.ledger.appendDraftLocked(from, outDraft); err != nil {
		return uc.abort(err)
	}

	inDraft, err := to.Credit(amount, domain.EntryTransferIn, fmt.Sprintf("Transfer from %d", fromNo))
	if err != nil {
		return uc.abort(err)
	}
	if err := uc.coord.RecordNewBalance(toNo, to.Balance); err != nil {
		return uc.abort(err)
	}
	if _, err := uc.ledger.appendDraftLocked(to, inDraft); err != nil {
		return uc.abort(err)
	}

	if err := uc.coord.Commit(); err != nil {
		return err
	}

	if uc.metrics != nil {
		uc.metrics.TransfersCreated.Inc()
	}
	uc.log.Info().
		Int64("from", fromNo).
		Int64("to", toNo).
		Stringer("amount", amount).
		Msg("transfer committed")

	return uc.ledger.persistLocked()
}

// abort rolls the unit of work back, restores modified in-memory
// balances from the pre-images and logs each reversal. Journal entries
// already appended are not retracted.
func (uc *TransferUseCase) abort(cause error) error {
	snapshots, err := uc.coord.Rollback()
	if err != nil {
		return fmt.Errorf("rollback after %v: %w", cause, err)
	}

	for _, snap := range snapshots {
		if !snap.Modified {
			continue
		}
		if acc, ok := uc.ledger.accounts[snap.AccountNo]; ok {
			acc.Balance = snap.PreviousBalance
			uc.log.Warn().
				Int64("account", snap.AccountNo).
				Stringer("restored", snap.PreviousBalance).
				Msg("balance restored after failed transfer")
		}
	}

	if uc.metrics != nil {
		uc.metrics.TransfersRolledBack.Inc()
	}
	return fmt.Errorf("transfer failed and rolled back: %w", cause)
}
