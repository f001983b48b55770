package stockfolio

import "errors"

// The engine reports failures through sentinel errors wrapped with context.
// Callers match with errors.Is; no condition is ever retried internally and
// a failed multi-entry operation leaves every ledger untouched.
var (
	// Validation errors: bad input shape. Surfaced immediately, no partial effect.
	ErrInvalidVolume   = errors.New("invalid volume")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrInvalidName     = errors.New("invalid portfolio name")
	ErrInvalidWeights  = errors.New("invalid weights")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrEmptyInput      = errors.New("empty input")

	// Temporal errors: the date is outside the window where the operation is defined.
	ErrFutureDate         = errors.New("date is in the future")
	ErrOutOfListingWindow = errors.New("date outside listing window")
	ErrStartAfterEnd      = errors.New("start date after end date")

	// State errors: detected by replaying the full ledger, not just the tail.
	ErrNegativePosition   = errors.New("position would go negative")
	ErrDuplicatePortfolio = errors.New("portfolio already exists")

	// Data source errors: propagated unchanged from the price oracle.
	ErrUnsupportedSymbol = errors.New("unsupported symbol")
	ErrStockMismatch     = errors.New("stock does not match oracle record")
)
