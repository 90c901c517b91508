package auth

import "errors"

var (
	// ErrNotFound indicates the requested identity does not exist.
	ErrNotFound = errors.New("auth: not found")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate email.
	ErrConflict = errors.New("auth: already exists")
	// ErrInvalidInput indicates a malformed registration or update payload.
	ErrInvalidInput = errors.New("auth: invalid input")
	// ErrInvalidCredentials is returned for any login failure. Unknown email,
	// wrong password and deactivated accounts are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	// ErrIdentityRevoked is returned when a syntactically valid token refers
	// to an identity that no longer exists or has been deactivated.
	ErrIdentityRevoked = errors.New("auth: identity revoked")
)
