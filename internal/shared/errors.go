package shared

import "errors"

var (
	// ErrSessionCorrupt indicates a stored session payload could not be decoded.
	ErrSessionCorrupt = errors.New("session payload corrupt")
	// ErrCSRFTokenMissing occurs when CSRF token missing.
	ErrCSRFTokenMissing = errors.New("csrf token missing")
	// ErrCSRFTokenMismatch occurs when CSRF tokens do not match.
	ErrCSRFTokenMismatch = errors.New("csrf token mismatch")
)
