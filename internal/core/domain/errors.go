package domain

import "errors"

// Loan/stock error taxonomy. Every failure a caller can observe from the
// loan core maps to exactly one of these sentinels.
var (
	ErrBookNotFound     = errors.New("book not found")
	ErrLoanNotFound     = errors.New("loan not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrInvalidState     = errors.New("action not applicable to current loan status")
	ErrOutOfStock       = errors.New("no available stock")
	ErrPermissionDenied = errors.New("admin role required")
	ErrConflict         = errors.New("transaction conflict")
	ErrUserInactive     = errors.New("user account is inactive")
	ErrDuplicateReview  = errors.New("review already recorded")
	ErrInvalidRating    = errors.New("rating must be between 1 and 5")
)

// Kind returns the machine-readable kind string for a taxonomy error,
// or "internal" for anything outside the taxonomy.
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrBookNotFound), errors.Is(err, ErrLoanNotFound), errors.Is(err, ErrUserNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, ErrOutOfStock):
		return "out_of_stock"
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrUserInactive):
		return "permission_denied"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrDuplicateReview):
		return "duplicate"
	case errors.Is(err, ErrInvalidRating):
		return "invalid_argument"
	}
	return "internal"
}
