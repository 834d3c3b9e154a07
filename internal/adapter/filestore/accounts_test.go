package filestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/bankcore/internal/domain"
)

func TestAccountStoreRoundTripAllKinds(t *testing.T) {
	created := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	accounts := []*domain.Account{
		{
			Number: 100001, Name: "Asha Verma", Phone: "9876543210",
			Address: "12 MG Road", Balance: 10_000,
			Kind: domain.AccountSavings, CreatedAt: created,
			Savings: &domain.SavingsDetails{InterestRate: decimal.RequireFromString("5.5")},
		},
		{
			Number: 100002, Name: "Ravi Nair", Phone: "9123456780",
			Address: "4 Park Street", Balance: 0,
			Kind: domain.AccountCurrent, CreatedAt: created,
			Current: &domain.CurrentDetails{OverdraftLimit: 2_000, OverdraftCap: 5_000},
		},
		{
			Number: 100003, Name: "Meera Iyer", Phone: "9988776655",
			Address: "", Balance: 1_100_000,
			Kind: domain.AccountLoan, CreatedAt: created,
			Loan: &domain.LoanDetails{
				Principal:    1_200_000,
				InterestRate: decimal.RequireFromString("12.0"),
				TenureMonths: 24,
				PaymentsMade: 3,
			},
		},
	}

	store := NewAccountStore(t.TempDir(), zerolog.Nop())
	require.NoError(t, store.SaveAll(accounts))

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 3)

	assert.Equal(t, accounts[0].Number, loaded[0].Number)
	assert.Equal(t, accounts[0].Balance, loaded[0].Balance)
	require.NotNil(t, loaded[0].Savings)
	assert.True(t, accounts[0].Savings.InterestRate.Equal(loaded[0].Savings.InterestRate))

	require.NotNil(t, loaded[1].Current)
	assert.Equal(t, domain.Money(2_000), loaded[1].Current.OverdraftLimit)
	assert.Equal(t, domain.Money(5_000), loaded[1].Current.OverdraftCap)

	require.NotNil(t, loaded[2].Loan)
	assert.Equal(t, domain.Money(1_200_000), loaded[2].Loan.Principal)
	assert.Equal(t, 24, loaded[2].Loan.TenureMonths)
	assert.Equal(t, 3, loaded[2].Loan.PaymentsMade)
	assert.Equal(t, created, loaded[2].CreatedAt)
}

func TestAccountStoreLoadMissingFile(t *testing.T) {
	store := NewAccountStore(t.TempDir(), zerolog.Nop())

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestAccountStoreSkipsMalformedLines(t *testing.T) {
	dir := t.TempDir()
	store := NewAccountStore(dir, zerolog.Nop())

	good := &domain.Account{
		Number: 100001, Name: "Asha Verma", Phone: "9876543210",
		Balance: 10_000, Kind: domain.AccountSavings,
		CreatedAt: time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
		Savings:   &domain.SavingsDetails{InterestRate: decimal.RequireFromString("5.0")},
	}
	content := "not|enough|fields\n" +
		serializeAccount(good) + "\n" +
		"100009|X|123|addr|notanumber|SAVINGS|0|5.0\n" +
		"100010|Y|9876543210|addr|1000|LOAN|0|1200|12.0|0|0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, AccountsFile), []byte(content), 0o644))

	loaded, err := store.LoadAll()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, int64(100001), loaded[0].Number)
}
