package domain

import "time"

// Clock supplies the current instant for every timestamp the ledger
// records. Implementations must return UTC; local time is never used.
type Clock interface {
	Now() time.Time
}

// UTCClock is the production Clock backed by the system wall clock.
type UTCClock struct{}

func (UTCClock) Now() time.Time {
	return time.Now().UTC()
}
