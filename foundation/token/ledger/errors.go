package ledger

import "errors"

// Set of typed errors the ledger operations can return. Business rule
// violations are returned to the caller as one of these values, with the
// ledger state left untouched.
var (
	ErrInsufficientAllowance = errors.New("insufficient allowance")
	ErrInsufficientBalance   = errors.New("insufficient balance")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrAmountTooSmall        = errors.New("amount too small")
	ErrFeeExceededLimit      = errors.New("fee exceeded limit")
)

// IsRecordable reports whether a failed operation that returned the
// specified error reached fee/balance evaluation and therefore must be
// recorded in the transaction log with a Failed status. Pure validation
// failures are reported to the caller without a log entry.
func IsRecordable(err error) bool {
	switch {
	case errors.Is(err, ErrInsufficientAllowance),
		errors.Is(err, ErrInsufficientBalance),
		errors.Is(err, ErrFeeExceededLimit):
		return true
	}

	return false
}
