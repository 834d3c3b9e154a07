package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		name        string
		phone       string
		expectError bool
	}{
		{name: "valid", phone: "9876543210"},
		{name: "too short", phone: "123456789", expectError: true},
		{name: "too long", phone: "12345678901", expectError: true},
		{name: "letters", phone: "98765abcde", expectError: true},
		{name: "empty", phone: "", expectError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePhone(tt.phone)
			if tt.expectError && err == nil {
				t.Errorf("expected error for %q", tt.phone)
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	if err := ValidateName("Asha Rao"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateName("   "); err == nil {
		t.Error("expected error for blank name")
	}
	if err := ValidateName("a|b"); err == nil {
		t.Error("expected error for delimiter in name")
	}
}

func TestValidateAddress(t *testing.T) {
	if err := ValidateAddress("12 MG Road"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAddress(""); err != nil {
		t.Errorf("unexpected error for empty address: %v", err)
	}
	if err := ValidateAddress("Flat 4 | MG Road"); !errors.Is(err, ErrInvalidAddress) {
		t.Errorf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestValidateInterestRate(t *testing.T) {
	min := decimal.RequireFromString("0.1")
	max := decimal.RequireFromString("15.0")

	if err := ValidateInterestRate(decimal.RequireFromString("5.0"), min, max); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateInterestRate(decimal.RequireFromString("15.5"), min, max); err == nil {
		t.Error("expected error above max")
	}
	if err := ValidateInterestRate(decimal.RequireFromString("0.05"), min, max); err == nil {
		t.Error("expected error below min")
	}
}

func TestValidateAmountBounds(t *testing.T) {
	if err := ValidateAmountBounds(100, 1, 100000000); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateAmountBounds(0, 1, 100000000); err == nil {
		t.Error("expected error below minimum")
	}
	if err := ValidateAmountBounds(100000001, 1, 100000000); err == nil {
		t.Error("expected error above maximum")
	}
}

func TestValidatePIN(t *testing.T) {
	if err := ValidatePIN("1234", 4); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidatePIN("123", 4); err == nil {
		t.Error("expected error for short PIN")
	}
	if err := ValidatePIN("12a4", 4); err == nil {
		t.Error("expected error for non-digit PIN")
	}
}
