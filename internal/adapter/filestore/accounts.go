package filestore

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankcore/internal/domain"
)

// AccountsFile is the snapshot file holding current account state.
const AccountsFile = "accounts.dat"

// AccountStore persists the whole account collection atomically. This is
// the authoritative "current state" file, distinct from the append-only
// journals.
type AccountStore struct {
	path string
	log  zerolog.Logger
}

// NewAccountStore creates an AccountStore under dir.
func NewAccountStore(dir string, log zerolog.Logger) *AccountStore {
	return &AccountStore{path: filepath.Join(dir, AccountsFile), log: log}
}

// SaveAll rewrites the snapshot with every account, atomically.
func (s *AccountStore) SaveAll(accounts []*domain.Account) error {
	return atomicWrite(s.path, func(w io.Writer) error {
		for _, acc := range accounts {
			if _, err := io.WriteString(w, serializeAccount(acc)+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

// LoadAll reads the snapshot, skipping malformed lines with a warning.
// A missing file means a fresh system: empty slice, no error.
func (s *AccountStore) LoadAll() ([]*domain.Account, error) {
	var accounts []*domain.Account

	err := readLines(s.path, s.log, func(line string) error {
		acc, err := parseAccountLine(line)
		if err != nil {
			return err
		}
		accounts = append(accounts, acc)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Int("count", len(accounts)).Msg("loaded accounts from snapshot")
	return accounts, nil
}

// serializeAccount maps an account to its snapshot line, switching on the
// kind discriminator for the trailing kind-specific fields.
func serializeAccount(acc *domain.Account) string {
	fields := []string{
		strconv.FormatInt(acc.Number, 10),
		acc.Name,
		acc.Phone,
		acc.Address,
		strconv.FormatInt(int64(acc.Balance), 10),
		string(acc.Kind),
		strconv.FormatInt(acc.CreatedAt.Unix(), 10),
	}

	switch acc.Kind {
	case domain.AccountSavings:
		fields = append(fields, acc.Savings.InterestRate.String())
	case domain.AccountCurrent:
		fields = append(fields,
			strconv.FormatInt(int64(acc.Current.OverdraftLimit), 10),
			strconv.FormatInt(int64(acc.Current.OverdraftCap), 10),
		)
	case domain.AccountLoan:
		fields = append(fields,
			strconv.FormatInt(int64(acc.Loan.Principal), 10),
			acc.Loan.InterestRate.String(),
			strconv.Itoa(acc.Loan.TenureMonths),
			strconv.Itoa(acc.Loan.PaymentsMade),
		)
	}

	return strings.Join(fields, "|")
}

func parseAccountLine(line string) (*domain.Account, error) {
	fields := strings.Split(line, "|")
	if len(fields) < 7 {
		return nil, fmt.Errorf("account line has %d fields, want at least 7", len(fields))
	}

	number, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad account number %q: %w", fields[0], err)
	}

	balance, err := strconv.ParseInt(fields[4], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad balance %q: %w", fields[4], err)
	}

	kind := domain.AccountKind(fields[5])
	if !kind.IsValid() {
		return nil, fmt.Errorf("unknown account kind %q", fields[5])
	}

	created, err := strconv.ParseInt(fields[6], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bad created timestamp %q: %w", fields[6], err)
	}

	acc := &domain.Account{
		Number:    number,
		Name:      fields[1],
		Phone:     fields[2],
		Address:   fields[3],
		Balance:   domain.Money(balance),
		Kind:      kind,
		CreatedAt: time.Unix(created, 0).UTC(),
	}

	extras := fields[7:]
	switch kind {
	case domain.AccountSavings:
		if len(extras) < 1 {
			return nil, fmt.Errorf("savings line missing interest rate")
		}
		rate, err := decimal.NewFromString(extras[0])
		if err != nil {
			return nil, fmt.Errorf("bad interest rate %q: %w", extras[0], err)
		}
		acc.Savings = &domain.SavingsDetails{InterestRate: rate}

	case domain.AccountCurrent:
		if len(extras) < 2 {
			return nil, fmt.Errorf("current line missing overdraft fields")
		}
		limit, err := strconv.ParseInt(extras[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad overdraft limit %q: %w", extras[0], err)
		}
		cap, err := strconv.ParseInt(extras[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad overdraft cap %q: %w", extras[1], err)
		}
		acc.Current = &domain.CurrentDetails{
			OverdraftLimit: domain.Money(limit),
			OverdraftCap:   domain.Money(cap),
		}

	case domain.AccountLoan:
		if len(extras) < 4 {
			return nil, fmt.Errorf("loan line missing loan fields")
		}
		principal, err := strconv.ParseInt(extras[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad principal %q: %w", extras[0], err)
		}
		rate, err := decimal.NewFromString(extras[1])
		if err != nil {
			return nil, fmt.Errorf("bad loan rate %q: %w", extras[1], err)
		}
		tenure, err := strconv.Atoi(extras[2])
		if err != nil {
			return nil, fmt.Errorf("bad tenure %q: %w", extras[2], err)
		}
		if tenure <= 0 {
			return nil, fmt.Errorf("non-positive tenure %d", tenure)
		}
		payments, err := strconv.Atoi(extras[3])
		if err != nil {
			return nil, fmt.Errorf("bad payments made %q: %w", extras[3], err)
		}
		acc.Loan = &domain.LoanDetails{
			Principal:    domain.Money(principal),
			InterestRate: rate,
			TenureMonths: tenure,
			PaymentsMade: payments,
		}
	}

	return acc, nil
}
