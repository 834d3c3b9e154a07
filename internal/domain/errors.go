package domain

import "errors"

var (
	// Money errors
	ErrInvalidAmount = errors.New("invalid monetary amount")
	ErrOverflow      = errors.New("monetary addition overflow")
	ErrUnderflow     = errors.New("monetary addition underflow")

	// Account errors
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrAccountNotFound   = errors.New("account not found")
	ErrAccountExists     = errors.New("account number already in use")
	ErrNumbersExhausted  = errors.New("account number space exhausted")
	ErrWrongAccountKind  = errors.New("operation not supported for this account kind")

	// Transfer errors
	ErrSameAccount = errors.New("cannot transfer to same account")
	ErrTransaction = errors.New("transaction state violation")

	// Persistence errors
	ErrDataIntegrity = errors.New("data integrity failure")

	// Authentication errors
	ErrUnauthorized  = errors.New("unauthorized")
	ErrAccountLocked = errors.New("account locked due to failed authentication attempts")
	ErrUserExists    = errors.New("username already exists")
	ErrUserNotFound  = errors.New("user not found")
)
