// Package mocks provides hand-rolled fakes for the usecase interfaces.
// Each fake records calls and delegates to an optional func field so
// tests can inject failures per call.
package mocks

import (
	"fmt"
	"sync"
	"time"

	"github.com/iho/bankcore/internal/domain"
)

// JournalStore is an in-memory journal with optional fault injection.
type JournalStore struct {
	mu      sync.Mutex
	Entries map[int64][]domain.Entry

	AppendFunc func(accountNo int64, entry domain.Entry) error
	ReplayFunc func(accountNo int64) ([]domain.Entry, error)
}

func NewJournalStore() *JournalStore {
	return &JournalStore{Entries: make(map[int64][]domain.Entry)}
}

func (s *JournalStore) Append(accountNo int64, entry domain.Entry) error {
	if s.AppendFunc != nil {
		if err := s.AppendFunc(accountNo, entry); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Entries[accountNo] = append(s.Entries[accountNo], entry)
	return nil
}

func (s *JournalStore) Replay(accountNo int64) ([]domain.Entry, error) {
	if s.ReplayFunc != nil {
		return s.ReplayFunc(accountNo)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Entry, len(s.Entries[accountNo]))
	copy(out, s.Entries[accountNo])
	return out, nil
}

// Len returns how many entries the journal holds for the account.
func (s *JournalStore) Len(accountNo int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Entries[accountNo])
}

// AccountStore is an in-memory account snapshot store. Accounts are
// deep-copied on save and load, like the real store's serialize/parse
// boundary: stored state never aliases live accounts and the in-memory
// history window does not round-trip.
type AccountStore struct {
	mu       sync.Mutex
	Saved    []*domain.Account
	SaveCnt  int
	SaveFunc func(accounts []*domain.Account) error
	LoadFunc func() ([]*domain.Account, error)
}

func NewAccountStore() *AccountStore {
	return &AccountStore{}
}

func (s *AccountStore) SaveAll(accounts []*domain.Account) error {
	if s.SaveFunc != nil {
		if err := s.SaveFunc(accounts); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = cloneAccounts(accounts)
	s.SaveCnt++
	return nil
}

func (s *AccountStore) LoadAll() ([]*domain.Account, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneAccounts(s.Saved), nil
}

func cloneAccounts(accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, len(accounts))
	for i, acc := range accounts {
		c := *acc
		c.History = nil
		if acc.Savings != nil {
			savings := *acc.Savings
			c.Savings = &savings
		}
		if acc.Current != nil {
			current := *acc.Current
			c.Current = &current
		}
		if acc.Loan != nil {
			loan := *acc.Loan
			c.Loan = &loan
		}
		out[i] = &c
	}
	return out
}

// UserStore is an in-memory user snapshot store.
type UserStore struct {
	mu       sync.Mutex
	Saved    []*domain.User
	SaveFunc func(users []*domain.User) error
	LoadFunc func() ([]*domain.User, error)
}

func NewUserStore() *UserStore {
	return &UserStore{}
}

func (s *UserStore) SaveAll(users []*domain.User) error {
	if s.SaveFunc != nil {
		if err := s.SaveFunc(users); err != nil {
			return err
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Saved = users
	return nil
}

func (s *UserStore) LoadAll() ([]*domain.User, error) {
	if s.LoadFunc != nil {
		return s.LoadFunc()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Saved, nil
}

// AuthGate approves everything unless AuthorizeFunc says otherwise.
type AuthGate struct {
	Calls         []int64
	AuthorizeFunc func(accountNo int64, pin string) error
}

func (g *AuthGate) Authorize(accountNo int64, pin string) error {
	g.Calls = append(g.Calls, accountNo)
	if g.AuthorizeFunc != nil {
		return g.AuthorizeFunc(accountNo, pin)
	}
	return nil
}

// IDGenerator hands out sequential IDs.
type IDGenerator struct {
	mu sync.Mutex
	n  int
}

func (g *IDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("entry-%04d", g.n)
}

// Clock returns a fixed instant, advancing one second per call so
// entry timestamps stay distinct and ordered.
type Clock struct {
	mu   sync.Mutex
	now  time.Time
	tick time.Duration
}

func NewClock(start time.Time) *Clock {
	return &Clock{now: start, tick: time.Second}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.tick)
	return t
}
