package auth

import (
	"context"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/shared"
)

// StorageKey is the session value holding the signed-in user as JSON.
const StorageKey = "hawi_pms_auth"

// Messages returned by Login.
const (
	MessageCredentialsRequired = "Username and password are required."
	MessageLoginFailed         = "Login failed."
)

// Store persists the session record. *shared.Session satisfies it.
type Store interface {
	Get(key string) string
	Set(key, value string)
	Delete(key string)
}

// Authenticator verifies credentials against the backend.
type Authenticator interface {
	Login(ctx context.Context, creds backend.Credentials) (*shared.User, error)
}

// Result is the outcome of a login attempt.
type Result struct {
	OK      bool
	Message string
}
