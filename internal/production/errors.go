package production

import "errors"

var (
	// ErrConfiguration is returned for invalid static parameters. Fatal at startup.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrInsufficientFunds is returned when a purchase costs more than the balance.
	// The purchase does not proceed and no state changes.
	ErrInsufficientFunds = errors.New("insufficient funds")
	// ErrPersistence is returned when saving or loading a snapshot fails.
	// In-memory state stays authoritative.
	ErrPersistence = errors.New("persistence failure")
)
