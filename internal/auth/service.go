package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/shared"
)

// SessionContext holds the signed-in user of one request. It is built from
// the session store and threaded explicitly to whoever needs it.
type SessionContext struct {
	store     Store
	authn     Authenticator
	logger    *slog.Logger
	validator *validator.Validate
	user      *shared.User
}

type credentials struct {
	Username string `validate:"required"`
	Password string `validate:"required"`
}

var validate = validator.New()

// NewSessionContext reads the stored user. A missing record means no user;
// a record that does not decode is removed and also means no user.
func NewSessionContext(store Store, authn Authenticator, logger *slog.Logger) *SessionContext {
	if logger == nil {
		logger = slog.Default()
	}
	sc := &SessionContext{store: store, authn: authn, logger: logger, validator: validate}
	if store == nil {
		return sc
	}
	raw := store.Get(StorageKey)
	if raw == "" {
		return sc
	}
	var user shared.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		logger.Warn("discarding unreadable session user", slog.Any("error", err))
		store.Delete(StorageKey)
		return sc
	}
	sc.user = &user
	return sc
}

// User returns the signed-in user or nil.
func (s *SessionContext) User() *shared.User {
	if s == nil {
		return nil
	}
	return s.user
}

// Authenticated reports whether a user is signed in.
func (s *SessionContext) Authenticated() bool {
	return s.User() != nil
}

// Login checks the credentials locally, then against the backend. The user
// returned by the backend is kept in memory and in the store.
func (s *SessionContext) Login(ctx context.Context, username, password string) Result {
	form := credentials{Username: strings.TrimSpace(username), Password: strings.TrimSpace(password)}
	if err := s.validator.Struct(form); err != nil {
		return Result{Message: MessageCredentialsRequired}
	}
	if s.authn == nil {
		return Result{Message: MessageLoginFailed}
	}

	user, err := s.authn.Login(ctx, backend.Credentials{Username: form.Username, Password: password})
	if err != nil {
		s.logger.Info("login rejected", slog.String("username", form.Username), slog.Any("error", err))
		return Result{Message: backend.Message(err, MessageLoginFailed)}
	}
	if user == nil {
		return Result{Message: MessageLoginFailed}
	}

	payload, err := json.Marshal(user)
	if err != nil {
		return Result{Message: MessageLoginFailed}
	}
	s.user = user
	if s.store != nil {
		s.store.Set(StorageKey, string(payload))
	}
	return Result{OK: true}
}

// Logout forgets the user in memory and in the store.
func (s *SessionContext) Logout() {
	s.user = nil
	if s.store != nil {
		s.store.Delete(StorageKey)
	}
}

type sessionContextKey struct{}

// WithSessionContext stores sc in ctx together with its user.
func WithSessionContext(ctx context.Context, sc *SessionContext) context.Context {
	ctx = context.WithValue(ctx, sessionContextKey{}, sc)
	if user := sc.User(); user != nil {
		ctx = shared.ContextWithUser(ctx, user)
	}
	return ctx
}

// FromContext returns the request's SessionContext, or nil.
func FromContext(ctx context.Context) *SessionContext {
	sc, _ := ctx.Value(sessionContextKey{}).(*SessionContext)
	return sc
}
