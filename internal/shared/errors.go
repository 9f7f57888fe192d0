package shared

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates an ownership mismatch between actor and entity.
	ErrForbidden = errors.New("forbidden")
	// ErrDuplicateEmail indicates the email uniqueness constraint was violated.
	ErrDuplicateEmail = errors.New("email already registered")
	// ErrInvalidCredentials indicates login failure. Unknown email, wrong
	// password and internal errors all surface as this one value.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidFilter indicates a malformed sort or type parameter.
	ErrInvalidFilter = errors.New("invalid filter parameter")
	// ErrUnauthenticated indicates no valid session identity on the request.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrDeleteFailed wraps a storage-layer failure during delete.
	ErrDeleteFailed = errors.New("delete failed")
)

// DeleteFailed wraps a storage error so callers can match ErrDeleteFailed
// while the original message stays attached for diagnostics.
func DeleteFailed(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrDeleteFailed, err)
}
