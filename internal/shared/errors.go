package shared

import "errors"

var (
	// ErrNotFound is the generic missing-resource sentinel for layers
	// without a domain-specific variant.
	ErrNotFound = errors.New("not found")
	// ErrInvalidCredentials covers every login failure uniformly so callers
	// cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrCSRFTokenMissing means the request carried no CSRF token or the
	// session never issued one.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch means the supplied token does not match the
	// session token.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
