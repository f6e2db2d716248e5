package httpx

import "errors"

// Sentinel errors returned by the helpers in this package.
var (
	ErrBadRequest  = errors.New("bad request")
	ErrUnavailable = errors.New("dependency unavailable")
)
