package usecase

import (
	"github.com/iho/bankcore/internal/domain"
)

// JournalStore defines the append-only per-account journal. Append must
// flush before returning; Replay must tolerate corrupted lines and a
// missing file.
type JournalStore interface {
	Append(accountNo int64, entry domain.Entry) error
	Replay(accountNo int64) ([]domain.Entry, error)
}

// AccountStore defines the atomic whole-collection account snapshot.
type AccountStore interface {
	SaveAll(accounts []*domain.Account) error
	LoadAll() ([]*domain.Account, error)
}

// UserStore defines the atomic whole-collection user snapshot.
type UserStore interface {
	SaveAll(users []*domain.User) error
	LoadAll() ([]*domain.User, error)
}

// AuthGate authorizes an account-scoped operation before any ledger
// mutation. A non-nil error is a hard precondition failure: the caller
// must not proceed to snapshot or mutate.
type AuthGate interface {
	Authorize(accountNo int64, pin string) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}
