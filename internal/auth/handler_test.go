package auth_test

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/auth"
	"github.com/hawi-pms/console/internal/backend"
	"github.com/hawi-pms/console/internal/shared"
	"github.com/hawi-pms/console/internal/testing/webtest"
)

type stubAuthenticator struct {
	user *shared.User
	err  error
	got  backend.Credentials
}

func (s *stubAuthenticator) Login(_ context.Context, creds backend.Credentials) (*shared.User, error) {
	s.got = creds
	if s.err != nil {
		return nil, s.err
	}
	return s.user, nil
}

type recordingRepo struct {
	mu      sync.Mutex
	created []auth.SessionRecord
	ended   []string
}

func (r *recordingRepo) CreateSession(_ context.Context, rec auth.SessionRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, rec)
	return nil
}

func (r *recordingRepo) EndSession(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ended = append(r.ended, id)
	return nil
}

func pharmacist() *shared.User {
	return &shared.User{ID: 3, Username: "abebe", Name: "Abebe Kebede", Role: "Pharmacist", Active: true}
}

func mountAuth(env *webtest.Env, authn auth.Authenticator, repo auth.Repository, limit int) func(chi.Router) {
	h := auth.NewHandler(nil, env.Responder, env.Sessions, repo, limit)
	mw := auth.Middleware{Authenticator: authn}
	return func(r chi.Router) {
		r.Use(mw.Load)
		h.MountRoutes(r)
	}
}

func TestLoginPage(t *testing.T) {
	env := webtest.New(t)
	call := env.Do(t, mountAuth(env, &stubAuthenticator{}, nil, 0), nil, http.MethodGet, "/login?next=/sales", nil)

	assert.Equal(t, http.StatusOK, call.Recorder.Code)
	assert.Contains(t, call.Body(), "Sign in to continue.")
	assert.Contains(t, call.Body(), `name="next" value="/sales"`)
}

func TestLoginSuccessRedirectsToNext(t *testing.T) {
	env := webtest.New(t)
	authn := &stubAuthenticator{user: pharmacist()}
	repo := &recordingRepo{}
	form := url.Values{"username": {" abebe "}, "password": {"secret"}, "next": {"/medicines?page=2"}}

	call := env.Do(t, mountAuth(env, authn, repo, 0), nil, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, "/medicines?page=2", call.Recorder.Header().Get("Location"))
	assert.Equal(t, "abebe", authn.got.Username)
	assert.Equal(t, "Welcome back, Abebe Kebede.", call.Flash())
	assert.NotEmpty(t, call.Session.Get(auth.StorageKey))
	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(3), repo.created[0].UserID)
	assert.Equal(t, "Pharmacist", repo.created[0].Role)
	assert.Equal(t, call.Session.ID, repo.created[0].ID)
}

func TestLoginRejectsOffsiteNext(t *testing.T) {
	env := webtest.New(t)
	form := url.Values{"username": {"abebe"}, "password": {"secret"}, "next": {"//evil.example/"}}

	call := env.Do(t, mountAuth(env, &stubAuthenticator{user: pharmacist()}, nil, 0), nil, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, auth.DefaultLanding, call.Recorder.Header().Get("Location"))
}

func TestLoginMissingCredentials(t *testing.T) {
	env := webtest.New(t)
	authn := &stubAuthenticator{user: pharmacist()}
	form := url.Values{"username": {"abebe"}, "password": {"   "}}

	call := env.Do(t, mountAuth(env, authn, nil, 0), nil, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusBadRequest, call.Recorder.Code)
	assert.Contains(t, call.Body(), auth.MessageCredentialsRequired)
	assert.Empty(t, authn.got.Username)
}

func TestLoginShowsBackendDetail(t *testing.T) {
	env := webtest.New(t)
	authn := &stubAuthenticator{err: &backend.Error{Status: http.StatusUnauthorized, Detail: "Invalid username or password"}}
	form := url.Values{"username": {"abebe"}, "password": {"wrong"}}

	call := env.Do(t, mountAuth(env, authn, nil, 0), nil, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusUnauthorized, call.Recorder.Code)
	assert.Contains(t, call.Body(), "Invalid username or password")
	assert.Contains(t, call.Body(), `value="abebe"`)
	assert.Empty(t, call.Session.Get(auth.StorageKey))
}

func TestLoginUnreachableBackend(t *testing.T) {
	env := webtest.New(t)
	authn := &stubAuthenticator{err: &backend.Error{Unreachable: true}}
	form := url.Values{"username": {"abebe"}, "password": {"secret"}}

	call := env.Do(t, mountAuth(env, authn, nil, 0), nil, http.MethodPost, "/login", form)

	assert.Equal(t, http.StatusUnauthorized, call.Recorder.Code)
	assert.Contains(t, call.Body(), backend.UnreachableMessage)
}

func TestLoginRateLimited(t *testing.T) {
	env := webtest.New(t)
	mount := mountAuth(env, &stubAuthenticator{err: &backend.Error{Status: http.StatusUnauthorized}}, nil, 1)
	form := url.Values{"username": {"abebe"}, "password": {"wrong"}}

	first := env.Do(t, mount, nil, http.MethodPost, "/login", form)
	assert.Equal(t, http.StatusUnauthorized, first.Recorder.Code)
	assert.Contains(t, first.Body(), auth.MessageLoginFailed)

	second := env.Do(t, mount, nil, http.MethodPost, "/login", form)
	assert.Equal(t, http.StatusTooManyRequests, second.Recorder.Code)
	assert.Contains(t, second.Body(), "Too many sign-in attempts.")
}

func TestLogoutEndsSession(t *testing.T) {
	env := webtest.New(t)
	repo := &recordingRepo{}

	call := env.Do(t, mountAuth(env, &stubAuthenticator{}, repo, 0), nil, http.MethodPost, "/logout", url.Values{})

	assert.Equal(t, http.StatusSeeOther, call.Recorder.Code)
	assert.Equal(t, "/login", call.Recorder.Header().Get("Location"))
	assert.Equal(t, []string{call.Session.ID}, repo.ended)
}
