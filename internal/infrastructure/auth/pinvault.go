// Package auth implements the authorization gate in front of
// balance-mutating operations: per-account PINs hashed with bcrypt, a
// failed-attempt lockout counter, and an optional one-time-password
// second factor.
package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/iho/bankcore/internal/domain"
	"github.com/iho/bankcore/internal/infrastructure/metrics"
)

// Credential is one account's stored PIN hash and salt.
type Credential struct {
	AccountNo int64
	Hash      string
	Salt      string
}

// CredentialStore persists PIN credentials.
type CredentialStore interface {
	SaveAll(records []Credential) error
	LoadAll() ([]Credential, error)
}

const saltChars = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// Vault guards accounts with PINs. It is safe for concurrent use: the
// attempt counters are shared mutable state and serialize on one mutex.
type Vault struct {
	mu          sync.Mutex
	credentials map[int64]Credential
	failed      map[int64]int
	otps        map[int64]string

	store       CredentialStore
	log         zerolog.Logger
	metrics     *metrics.Metrics
	maxAttempts int
	pinLength   int
	saltLength  int
}

// NewVault creates a Vault. Call Load before first use.
func NewVault(store CredentialStore, log zerolog.Logger, m *metrics.Metrics, maxAttempts, pinLength int) *Vault {
	return &Vault{
		credentials: make(map[int64]Credential),
		failed:      make(map[int64]int),
		otps:        make(map[int64]string),
		store:       store,
		log:         log,
		metrics:     m,
		maxAttempts: maxAttempts,
		pinLength:   pinLength,
		saltLength:  16,
	}
}

// Load restores persisted credentials. All attempt counters start at zero.
func (v *Vault) Load() error {
	records, err := v.store.LoadAll()
	if err != nil {
		return err
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	for _, r := range records {
		v.credentials[r.AccountNo] = r
		v.failed[r.AccountNo] = 0
	}
	v.log.Info().Int("count", len(records)).Msg("loaded PIN credentials")
	return nil
}

// HasPIN reports whether the account has a registered PIN.
func (v *Vault) HasPIN(accountNo int64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.credentials[accountNo]
	return ok
}

// SetPIN registers or replaces the account's PIN and persists the vault.
func (v *Vault) SetPIN(accountNo int64, pin string) error {
	if err := domain.ValidatePIN(pin, v.pinLength); err != nil {
		return err
	}

	salt, err := RandomSalt(v.saltLength)
	if err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(salt+pin), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.credentials[accountNo] = Credential{AccountNo: accountNo, Hash: string(hash), Salt: salt}
	v.failed[accountNo] = 0
	records := v.snapshotLocked()
	v.mu.Unlock()

	v.log.Info().Int64("account", accountNo).Msg("PIN registered")
	return v.store.SaveAll(records)
}

// Authorize verifies the PIN and maintains the lockout counter. Once the
// counter reaches the configured maximum the account stays locked until
// Unlock. A locked or unauthorized account must never proceed to mutate
// the ledger.
func (v *Vault) Authorize(accountNo int64, pin string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	cred, ok := v.credentials[accountNo]
	if !ok {
		v.countAttempt("missing_pin")
		return fmt.Errorf("%w: no PIN registered for account %d", domain.ErrUnauthorized, accountNo)
	}

	if v.failed[accountNo] >= v.maxAttempts {
		v.countAttempt("locked")
		return fmt.Errorf("%w: account %d", domain.ErrAccountLocked, accountNo)
	}

	if bcrypt.CompareHashAndPassword([]byte(cred.Hash), []byte(cred.Salt+pin)) != nil {
		v.failed[accountNo]++
		remaining := v.maxAttempts - v.failed[accountNo]
		v.countAttempt("failed")
		if remaining <= 0 {
			if v.metrics != nil {
				v.metrics.AccountLockouts.Inc()
			}
			v.log.Error().Int64("account", accountNo).Msg("account locked after failed PIN attempts")
			return fmt.Errorf("%w: account %d", domain.ErrAccountLocked, accountNo)
		}
		v.log.Warn().Int64("account", accountNo).Int("remaining", remaining).Msg("failed PIN attempt")
		return fmt.Errorf("%w: wrong PIN, %d attempts remaining", domain.ErrUnauthorized, remaining)
	}

	v.failed[accountNo] = 0
	v.countAttempt("ok")
	return nil
}

// Unlock clears the failed-attempt counter for the account.
func (v *Vault) Unlock(accountNo int64) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.failed[accountNo] = 0
	v.log.Info().Int64("account", accountNo).Msg("account unlocked")
}

// IssueOTP generates and remembers a 6-digit one-time password for the
// account. Delivery is the caller's concern.
func (v *Vault) IssueOTP(accountNo int64) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	otp := fmt.Sprintf("%06d", n.Int64()+100000)

	v.mu.Lock()
	v.otps[accountNo] = otp
	v.mu.Unlock()
	return otp, nil
}

// VerifyOTP consumes the pending OTP for the account.
func (v *Vault) VerifyOTP(accountNo int64, otp string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	pending, ok := v.otps[accountNo]
	if !ok || pending != otp {
		v.countAttempt("bad_otp")
		return fmt.Errorf("%w: invalid OTP", domain.ErrUnauthorized)
	}

	delete(v.otps, accountNo)
	return nil
}

func (v *Vault) countAttempt(status string) {
	if v.metrics != nil {
		v.metrics.AuthAttempts.WithLabelValues(status).Inc()
	}
}

func (v *Vault) snapshotLocked() []Credential {
	records := make([]Credential, 0, len(v.credentials))
	for _, c := range v.credentials {
		records = append(records, c)
	}
	return records
}

// RandomSalt returns length alphanumeric characters from crypto/rand.
func RandomSalt(length int) (string, error) {
	salt := make([]byte, length)
	for i := range salt {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(saltChars))))
		if err != nil {
			return "", err
		}
		salt[i] = saltChars[n.Int64()]
	}
	return string(salt), nil
}
