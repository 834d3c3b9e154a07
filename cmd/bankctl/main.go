package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/bankcore/internal/adapter/filestore"
	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/auth"
	"github.com/iho/bankcore/internal/infrastructure/config"
	"github.com/iho/bankcore/internal/infrastructure/logger"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
	"github.com/iho/bankcore/internal/usecase"
)

// app wires configuration, stores and use cases for one invocation.
type app struct {
	cfg       *config.Config
	log       zerolog.Logger
	vault     *auth.Vault
	ledger    *usecase.LedgerUseCase
	transfers *usecase.TransferUseCase
	users     *usecase.UserUseCase
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	m := metrics.New(prometheus.NewRegistry())

	limits, err := buildLimits(cfg)
	if err != nil {
		return nil, err
	}

	journal := filestore.NewJournalStore(cfg.DataDir, log, m)
	accountStore := filestore.NewAccountStore(cfg.DataDir, log)
	userStore := filestore.NewUserStore(cfg.DataDir, log)
	pinStore := filestore.NewPinStore(cfg.DataDir, log)

	vault := auth.NewVault(pinStore, log, m, cfg.MaxPinAttempts, cfg.PinLength)
	if err := vault.Load(); err != nil {
		return nil, fmt.Errorf("loading PIN credentials: %w", err)
	}

	clock := domain.UTCClock{}
	ledger := usecase.NewLedgerUseCase(journal, accountStore, filestore.NewULIDGenerator(), clock, log, m, limits)
	if err := ledger.Load(); err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}

	users := usecase.NewUserUseCase(userStore, clock, log, cfg.MinPasswordLength)
	if err := users.Load(); err != nil {
		return nil, fmt.Errorf("loading users: %w", err)
	}
	if err := users.EnsureAdmin(); err != nil {
		return nil, fmt.Errorf("bootstrapping admin: %w", err)
	}

	return &app{
		cfg:       cfg,
		log:       log,
		vault:     vault,
		ledger:    ledger,
		transfers: usecase.NewTransferUseCase(ledger, usecase.NewCoordinator(log), vault, log, m),
		users:     users,
	}, nil
}

func buildLimits(cfg *config.Config) (usecase.Limits, error) {
	parse := func(name, s string) (decimal.Decimal, error) {
		d, err := decimal.NewFromString(s)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("bad %s %q: %w", name, s, err)
		}
		return d, nil
	}

	savingsMin, err := parse("savings min rate", cfg.SavingsMinRate)
	if err != nil {
		return usecase.Limits{}, err
	}
	savingsMax, err := parse("savings max rate", cfg.SavingsMaxRate)
	if err != nil {
		return usecase.Limits{}, err
	}
	loanMin, err := parse("loan min rate", cfg.LoanMinRate)
	if err != nil {
		return usecase.Limits{}, err
	}
	loanMax, err := parse("loan max rate", cfg.LoanMaxRate)
	if err != nil {
		return usecase.Limits{}, err
	}

	return usecase.Limits{
		HistoryWindow:         cfg.HistoryWindow,
		MinAccountNumber:      cfg.MinAccountNumber,
		MaxAccountNumber:      cfg.MaxAccountNumber,
		StartingAccountNumber: cfg.StartingAccountNumber,
		MinAmount:             domain.Money(cfg.MinAmountPaise),
		MaxAmount:             domain.Money(cfg.MaxAmountPaise),
		SavingsMinRate:        savingsMin,
		SavingsMaxRate:        savingsMax,
		LoanMinRate:           loanMin,
		LoanMaxRate:           loanMax,
		LoanMinTenureMonths:   cfg.LoanMinTenureMonths,
		LoanMaxTenureMonths:   cfg.LoanMaxTenureMonths,
	}, nil
}

func parseAccountNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad account number %q", s)
	}
	return n, nil
}

func printAccount(acc *domain.Account) {
	fmt.Printf("Account %d (%s)\n", acc.Number, acc.Kind)
	fmt.Printf("  Holder:  %s, %s\n", acc.Name, acc.Phone)
	if acc.Address != "" {
		fmt.Printf("  Address: %s\n", acc.Address)
	}
	fmt.Printf("  Balance: %s\n", acc.Balance.Format())
	switch acc.Kind {
	case domain.AccountSavings:
		fmt.Printf("  Interest rate: %s%% per month\n", acc.Savings.InterestRate)
	case domain.AccountCurrent:
		fmt.Printf("  Overdraft: %s available of %s\n",
			acc.Current.OverdraftLimit.Format(), acc.Current.OverdraftCap.Format())
	case domain.AccountLoan:
		fmt.Printf("  Principal: %s at %s%% p.a., %d months, %d payments made\n",
			acc.Loan.Principal.Format(), acc.Loan.InterestRate,
			acc.Loan.TenureMonths, acc.Loan.PaymentsMade)
	}
}

func printEntries(entries []domain.Entry) {
	for _, e := range entries {
		fmt.Printf("%s  %-20s  %12s  balance %12s  %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"),
			e.Kind, e.Amount.Format(), e.BalanceAfter.Format(), e.Memo)
	}
}

func main() {
	var a *app

	rootCmd := &cobra.Command{
		Use:   "bankctl",
		Short: "File-backed banking ledger",
		Long:  `bankctl manages accounts, deposits, withdrawals, transfers and loans on a local file-backed ledger.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			a, err = newApp()
			return err
		},
		SilenceUsage: true,
	}

	// account open/list/show
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Account management",
	}

	var (
		openKind      string
		openName      string
		openPhone     string
		openAddress   string
		openBalance   string
		openRate      string
		openOverdraft string
		openTenure    int
		openNumber    int64
		openOwner     string
	)
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a savings, current or loan account",
		RunE: func(cmd *cobra.Command, args []string) error {
			balance, err := domain.ParseMoney(openBalance)
			if err != nil {
				return err
			}

			input := usecase.OpenAccountInput{
				Number:         openNumber,
				Name:           openName,
				Phone:          openPhone,
				Address:        openAddress,
				OpeningBalance: balance,
				Kind:           domain.AccountKind(openKind),
				TenureMonths:   openTenure,
			}
			if openRate != "" {
				input.InterestRate, err = decimal.NewFromString(openRate)
				if err != nil {
					return fmt.Errorf("bad interest rate %q: %w", openRate, err)
				}
			}
			if openOverdraft != "" {
				input.OverdraftLimit, err = domain.ParseMoney(openOverdraft)
				if err != nil {
					return err
				}
			}

			acc, err := a.ledger.OpenAccount(input)
			if err != nil {
				return err
			}
			if openOwner != "" {
				if err := a.users.AttachAccount(openOwner, acc.Number); err != nil {
					return err
				}
			}
			printAccount(acc)
			return nil
		},
	}
	openCmd.Flags().StringVar(&openKind, "kind", "SAVINGS", "account kind: SAVINGS, CURRENT or LOAN")
	openCmd.Flags().StringVar(&openName, "name", "", "account holder name")
	openCmd.Flags().StringVar(&openPhone, "phone", "", "10-digit phone number")
	openCmd.Flags().StringVar(&openAddress, "address", "", "postal address")
	openCmd.Flags().StringVar(&openBalance, "balance", "0", "opening balance (loan: principal)")
	openCmd.Flags().StringVar(&openRate, "rate", "", "interest rate percent")
	openCmd.Flags().StringVar(&openOverdraft, "overdraft", "", "overdraft limit (current accounts)")
	openCmd.Flags().IntVar(&openTenure, "tenure", 0, "loan tenure in months")
	openCmd.Flags().Int64Var(&openNumber, "number", 0, "requested account number (0 = auto)")
	openCmd.Flags().StringVar(&openOwner, "owner", "", "username to attach the account to")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List all accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, acc := range a.ledger.Accounts() {
				fmt.Printf("%d  %-8s  %12s  %s\n", acc.Number, acc.Kind, acc.Balance.Format(), acc.Name)
			}
			return nil
		},
	}

	showCmd := &cobra.Command{
		Use:   "show <account>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			acc, err := a.ledger.Account(number)
			if err != nil {
				return err
			}
			printAccount(acc)
			return nil
		},
	}

	accountCmd.AddCommand(openCmd, listCmd, showCmd)
	rootCmd.AddCommand(accountCmd)

	// deposit
	var depositToOverdraft bool
	depositCmd := &cobra.Command{
		Use:   "deposit <account> <amount>",
		Short: "Deposit into an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(args[1])
			if err != nil {
				return err
			}
			entries, err := a.ledger.Deposit(number, amount, depositToOverdraft)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}
	depositCmd.Flags().BoolVar(&depositToOverdraft, "overdraft", false, "repay overdraft first (current accounts)")
	rootCmd.AddCommand(depositCmd)

	// withdraw
	withdrawCmd := &cobra.Command{
		Use:   "withdraw <account> <amount>",
		Short: "Withdraw from an account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(args[1])
			if err != nil {
				return err
			}
			res, err := a.ledger.Withdraw(number, amount)
			if err != nil {
				return err
			}
			if !res.Applied {
				fmt.Println(res.Note)
				return nil
			}
			printEntries(res.Entries)
			return nil
		},
	}
	rootCmd.AddCommand(withdrawCmd)

	// transfer
	var transferPin string
	transferCmd := &cobra.Command{
		Use:   "transfer <from> <to> <amount>",
		Short: "Transfer between two accounts",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			to, err := parseAccountNumber(args[1])
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(args[2])
			if err != nil {
				return err
			}
			if err := a.transfers.Transfer(from, to, amount, transferPin); err != nil {
				return err
			}
			fmt.Printf("Transferred %s from %d to %d\n", amount.Format(), from, to)
			return nil
		},
	}
	transferCmd.Flags().StringVar(&transferPin, "pin", "", "PIN of the source account")
	rootCmd.AddCommand(transferCmd)

	// interest calc/apply/apply-all
	interestCmd := &cobra.Command{
		Use:   "interest",
		Short: "Savings interest operations",
	}

	interestCalcCmd := &cobra.Command{
		Use:   "calc <account>",
		Short: "Show the interest one application would credit",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			interest, err := a.ledger.CalculateInterest(number)
			if err != nil {
				return err
			}
			fmt.Printf("Interest: %s\n", interest.Format())
			return nil
		},
	}

	interestApplyCmd := &cobra.Command{
		Use:   "apply <account>",
		Short: "Credit interest to one savings account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			entries, err := a.ledger.ApplyMonthlyInterest(number)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}

	interestApplyAllCmd := &cobra.Command{
		Use:   "apply-all",
		Short: "Credit interest to every savings account",
		RunE: func(cmd *cobra.Command, args []string) error {
			count, total, err := a.ledger.ApplyMonthlyInterestAll()
			if err != nil {
				return err
			}
			fmt.Printf("Credited %s across %d savings accounts\n", total.Format(), count)
			return nil
		},
	}

	interestCmd.AddCommand(interestCalcCmd, interestApplyCmd, interestApplyAllCmd)
	rootCmd.AddCommand(interestCmd)

	// loan emi/pay
	loanCmd := &cobra.Command{
		Use:   "loan",
		Short: "Loan account operations",
	}

	loanEMICmd := &cobra.Command{
		Use:   "emi <account>",
		Short: "Show the equated monthly installment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			emi, err := a.ledger.LoanEMI(number)
			if err != nil {
				return err
			}
			fmt.Printf("EMI: %s\n", emi.Format())
			return nil
		},
	}

	loanPayCmd := &cobra.Command{
		Use:   "pay <account> <amount>",
		Short: "Make a loan payment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			amount, err := domain.ParseMoney(args[1])
			if err != nil {
				return err
			}
			entries, err := a.ledger.PayLoan(number, amount)
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}

	loanCmd.AddCommand(loanEMICmd, loanPayCmd)
	rootCmd.AddCommand(loanCmd)

	// history
	var (
		historyLimit int
		historyKind  string
	)
	historyCmd := &cobra.Command{
		Use:   "history <account>",
		Short: "Show recent ledger entries, most recent first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			entries, err := a.ledger.History(number, historyLimit, domain.EntryKind(historyKind))
			if err != nil {
				return err
			}
			printEntries(entries)
			return nil
		},
	}
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show")
	historyCmd.Flags().StringVar(&historyKind, "kind", "", "filter by entry kind, e.g. DEPOSIT")
	rootCmd.AddCommand(historyCmd)

	// user register/attach
	userCmd := &cobra.Command{
		Use:   "user",
		Short: "User management",
	}

	var registerPassword string
	userRegisterCmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := a.users.Register(args[0], registerPassword)
			if err != nil {
				return err
			}
			fmt.Printf("User %s registered (%s)\n", u.Username, u.Role)
			return nil
		},
	}
	userRegisterCmd.Flags().StringVar(&registerPassword, "password", "", "password for the new user")

	userAttachCmd := &cobra.Command{
		Use:   "attach <username> <account>",
		Short: "Attach an account to a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[1])
			if err != nil {
				return err
			}
			return a.users.AttachAccount(args[0], number)
		},
	}

	userCmd.AddCommand(userRegisterCmd, userAttachCmd)
	rootCmd.AddCommand(userCmd)

	// pin set/unlock
	pinCmd := &cobra.Command{
		Use:   "pin",
		Short: "PIN management",
	}

	pinSetCmd := &cobra.Command{
		Use:   "set <account> <pin>",
		Short: "Register or replace an account PIN",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			if _, err := a.ledger.Account(number); err != nil {
				return err
			}
			return a.vault.SetPIN(number, args[1])
		},
	}

	pinUnlockCmd := &cobra.Command{
		Use:   "unlock <account>",
		Short: "Clear an account's failed PIN attempts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			number, err := parseAccountNumber(args[0])
			if err != nil {
				return err
			}
			a.vault.Unlock(number)
			return nil
		},
	}

	pinCmd.AddCommand(pinSetCmd, pinUnlockCmd)
	rootCmd.AddCommand(pinCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
