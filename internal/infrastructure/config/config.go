package config

import (
	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration.
type Config struct {
	// Storage
	DataDir string `env:"DATA_DIR" envDefault:"data"`

	// Account numbering
	MinAccountNumber      int64 `env:"MIN_ACCOUNT_NUMBER"      envDefault:"100001"`
	MaxAccountNumber      int64 `env:"MAX_ACCOUNT_NUMBER"      envDefault:"999999"`
	StartingAccountNumber int64 `env:"STARTING_ACCOUNT_NUMBER" envDefault:"100000"`

	// Ledger
	HistoryWindow  int   `env:"HISTORY_WINDOW"   envDefault:"500"`
	MinAmountPaise int64 `env:"MIN_AMOUNT_PAISE" envDefault:"1"`
	MaxAmountPaise int64 `env:"MAX_AMOUNT_PAISE" envDefault:"100000000"`

	// Savings
	SavingsMinRate string `env:"SAVINGS_MIN_INTEREST_RATE" envDefault:"0.1"`
	SavingsMaxRate string `env:"SAVINGS_MAX_INTEREST_RATE" envDefault:"15.0"`

	// Loans
	LoanMinRate         string `env:"LOAN_MIN_INTEREST_RATE" envDefault:"1.0"`
	LoanMaxRate         string `env:"LOAN_MAX_INTEREST_RATE" envDefault:"20.0"`
	LoanMinTenureMonths int    `env:"LOAN_MIN_TENURE_MONTHS" envDefault:"6"`
	LoanMaxTenureMonths int    `env:"LOAN_MAX_TENURE_MONTHS" envDefault:"360"`

	// Security
	MaxPinAttempts    int  `env:"MAX_PIN_ATTEMPTS"    envDefault:"3"`
	PinLength         int  `env:"PIN_LENGTH"          envDefault:"4"`
	MinPasswordLength int  `env:"MIN_PASSWORD_LENGTH" envDefault:"6"`
	RequireOTP        bool `env:"REQUIRE_OTP"         envDefault:"false"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	err := env.Parse(cfg)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
