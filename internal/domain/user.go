package domain

import "time"

// Role represents a user's access level.
type Role int

const (
	// RoleUser can operate only accounts they own.
	RoleUser Role = 0

	// RoleAdmin can operate every account and run batch operations.
	RoleAdmin Role = 1
)

// IsValid checks if the role is a valid role.
func (r Role) IsValid() bool {
	return r == RoleUser || r == RoleAdmin
}

func (r Role) String() string {
	if r == RoleAdmin {
		return "ADMIN"
	}
	return "USER"
}

// User is a system user. Passwords are stored as a salted bcrypt hash;
// the salt is kept alongside so the snapshot line format round-trips.
type User struct {
	Username       string
	HashedPassword string
	Salt           string
	Role           Role
	CreatedAt      time.Time
	LastLogin      time.Time
	Accounts       []int64
}

// OwnsAccount reports whether the user owns the given account number.
func (u *User) OwnsAccount(accountNo int64) bool {
	for _, no := range u.Accounts {
		if no == accountNo {
			return true
		}
	}
	return false
}

// AddAccount assigns an account to the user, once.
func (u *User) AddAccount(accountNo int64) {
	if !u.OwnsAccount(accountNo) {
		u.Accounts = append(u.Accounts, accountNo)
	}
}

// CanAccess reports whether the user may operate the given account.
func (u *User) CanAccess(accountNo int64) bool {
	return u.Role == RoleAdmin || u.OwnsAccount(accountNo)
}
