package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidName         = errors.New("invalid account holder name")
	ErrInvalidAddress      = errors.New("invalid address")
	ErrInvalidPhone        = errors.New("invalid phone number")
	ErrInvalidInterestRate = errors.New("interest rate out of range")
	ErrInvalidTenure       = errors.New("loan tenure out of range")
	ErrInvalidPIN          = errors.New("invalid PIN")
	ErrPasswordTooWeak     = errors.New("password does not meet requirements")
)

var (
	phoneRegex = regexp.MustCompile(`^[0-9]{10}$`)
	pinRegex   = regexp.MustCompile(`^[0-9]+$`)
)

// ValidateName validates an account holder name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name cannot be empty", ErrInvalidName)
	}
	if strings.ContainsRune(name, '|') {
		return fmt.Errorf("%w: contains forbidden characters", ErrInvalidName)
	}
	return nil
}

// ValidateAddress accepts an empty address but rejects the snapshot field
// delimiter, which would shift every following field on reload.
func ValidateAddress(address string) error {
	if strings.ContainsRune(address, '|') {
		return fmt.Errorf("%w: contains forbidden characters", ErrInvalidAddress)
	}
	return nil
}

// ValidatePhone requires exactly 10 digits.
func ValidatePhone(phone string) error {
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("%w: must be exactly 10 digits", ErrInvalidPhone)
	}
	return nil
}

// ValidateInterestRate checks that rate lies within [min, max] percent.
func ValidateInterestRate(rate, min, max decimal.Decimal) error {
	if rate.LessThan(min) || rate.GreaterThan(max) {
		return fmt.Errorf("%w: %s must be between %s%% and %s%%", ErrInvalidInterestRate, rate, min, max)
	}
	return nil
}

// ValidateTenure checks that a loan tenure lies within [min, max] months.
func ValidateTenure(months, min, max int) error {
	if months < min || months > max {
		return fmt.Errorf("%w: %d must be between %d and %d months", ErrInvalidTenure, months, min, max)
	}
	return nil
}

// ValidateAmountBounds checks an amount against configured minor-unit limits.
func ValidateAmountBounds(amount, min, max Money) error {
	if amount < min {
		return fmt.Errorf("%w: below minimum %s", ErrInvalidAmount, min)
	}
	if amount > max {
		return fmt.Errorf("%w: above maximum %s", ErrInvalidAmount, max)
	}
	return nil
}

// ValidatePIN requires exactly length digits.
func ValidatePIN(pin string, length int) error {
	if len(pin) != length || !pinRegex.MatchString(pin) {
		return fmt.Errorf("%w: must be exactly %d digits", ErrInvalidPIN, length)
	}
	return nil
}

// ValidatePassword enforces the configured minimum length.
func ValidatePassword(password string, minLength int) error {
	if len(password) < minLength {
		return fmt.Errorf("%w: must be at least %d characters", ErrPasswordTooWeak, minLength)
	}
	return nil
}
