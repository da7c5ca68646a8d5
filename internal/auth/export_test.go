package auth

import "time"

// SetClock replaces the time source of an Issuer in tests.
func (i *Issuer) SetClock(now func() time.Time) {
	i.now = now
}
