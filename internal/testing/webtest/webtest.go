// Package webtest builds requests and responders for page handler tests.
package webtest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/rbac"
	"github.com/hawi-pms/console/internal/shared"
	_ "github.com/hawi-pms/console/internal/testing/guard"
	"github.com/hawi-pms/console/internal/view"
)

// Env carries what a handler test needs.
type Env struct {
	Responder *view.Responder
	Sessions  *shared.SessionManager
	Exports   *ExportCounter
	Redis     *miniredis.Miniredis
}

// ExportCounter records observed CSV exports.
type ExportCounter struct {
	Files []string
}

// ObserveExport implements view.ExportObserver.
func (c *ExportCounter) ObserveExport(file string) {
	c.Files = append(c.Files, file)
}

// New builds an Env backed by miniredis and the embedded templates.
func New(t *testing.T) *Env {
	t.Helper()
	engine, err := view.NewEngine()
	require.NoError(t, err)
	mr := miniredis.RunT(t)
	sessions := shared.NewSessionManager(redis.NewClient(&redis.Options{Addr: mr.Addr()}), "test_session", "secret", time.Hour, false)
	responder := view.NewResponder(engine, shared.NewCSRFManager("csrfsecret"), rbac.DefaultPolicy(), nil)
	exports := &ExportCounter{}
	responder.Exports = exports
	return &Env{Responder: responder, Sessions: sessions, Exports: exports, Redis: mr}
}

// Call is one request issued against a router.
type Call struct {
	Recorder *httptest.ResponseRecorder
	Session  *shared.Session
}

// Body returns the response body.
func (c Call) Body() string { return c.Recorder.Body.String() }

// Flash pops the queued flash message, if any.
func (c Call) Flash() string {
	if msg := c.Session.PopFlash(); msg != nil {
		return msg.Message
	}
	return ""
}

// Do sends method target through mount as user. A non-nil form is sent
// urlencoded.
func (e *Env) Do(t *testing.T, mount func(chi.Router), user *shared.User, method, target string, form url.Values) Call {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	sess, err := e.Sessions.Load(context.Background(), req)
	require.NoError(t, err)
	ctx := shared.ContextWithSession(req.Context(), sess)
	if user != nil {
		ctx = shared.ContextWithUser(ctx, user)
	}
	req = req.WithContext(ctx)

	router := chi.NewRouter()
	mount(router)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return Call{Recorder: rec, Session: sess}
}

// User returns a signed-in user with role.
func User(role string) *shared.User {
	return &shared.User{ID: 7, Username: "tester", Name: "Test User", Role: role, Active: true}
}
