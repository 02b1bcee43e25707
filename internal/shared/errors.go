package shared

import "errors"

var (
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate indicates a uniqueness violation.
	ErrDuplicate = errors.New("duplicate entry")
	// ErrInvalidInput indicates a request the domain layer refuses.
	ErrInvalidInput = errors.New("invalid input")
)

// UserSafeMessage maps internal errors to text safe for API clients.
func UserSafeMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrNotFound):
		return "The requested record was not found."
	case errors.Is(err, ErrDuplicate):
		return "A record with the same identity already exists."
	case errors.Is(err, ErrInvalidInput):
		return "The request contains invalid values."
	default:
		return "Something went wrong. Please try again."
	}
}
