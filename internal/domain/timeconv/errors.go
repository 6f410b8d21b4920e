package timeconv

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrInvalidTimezone = errors.New("invalid timezone")
	ErrInvalidOffset   = errors.New("invalid hour offset")
)
