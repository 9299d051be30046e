package credits

import "errors"

var (
	ErrNotFound            = errors.New("credit balance not found")
	ErrInsufficientCredits = errors.New("insufficient credits")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrDuplicateReference  = errors.New("credit already applied for reference")
)
