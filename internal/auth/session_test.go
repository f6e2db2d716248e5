package auth_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hawi-pms/console/internal/auth"
	"github.com/hawi-pms/console/internal/shared"
)

type mapStore map[string]string

func (m mapStore) Get(key string) string { return m[key] }
func (m mapStore) Set(key, value string) { m[key] = value }
func (m mapStore) Delete(key string) { delete(m, key) }

func TestSessionContextRoundTrip(t *testing.T) {
	store := mapStore{}
	sc := auth.NewSessionContext(store, &stubAuthenticator{user: pharmacist()}, nil)
	require.False(t, sc.Authenticated())

	result := sc.Login(context.Background(), "abebe", "secret")
	require.True(t, result.OK)
	assert.Equal(t, "abebe", sc.User().Username)

	restored := auth.NewSessionContext(store, nil, nil)
	require.True(t, restored.Authenticated())
	assert.Equal(t, "Pharmacist", restored.User().Role)

	restored.Logout()
	assert.False(t, restored.Authenticated())
	assert.Empty(t, store[auth.StorageKey])
}

func TestSessionContextDropsUnreadableRecord(t *testing.T) {
	store := mapStore{auth.StorageKey: "{not json"}
	sc := auth.NewSessionContext(store, nil, nil)

	assert.False(t, sc.Authenticated())
	_, kept := store[auth.StorageKey]
	assert.False(t, kept)
}

func TestSessionContextWithoutAuthenticator(t *testing.T) {
	sc := auth.NewSessionContext(mapStore{}, nil, nil)
	result := sc.Login(context.Background(), "abebe", "secret")

	assert.False(t, result.OK)
	assert.Equal(t, auth.MessageLoginFailed, result.Message)
}

func TestSafeNext(t *testing.T) {
	cases := map[string]string{
		"":                      auth.DefaultLanding,
		"/":                     auth.DefaultLanding,
		"/login?next=/sales":    auth.DefaultLanding,
		"https://evil.example/": auth.DefaultLanding,
		"//evil.example/":       auth.DefaultLanding,
		"/\\evil.example":       auth.DefaultLanding,
		"/stock?lowOnly=1":      "/stock?lowOnly=1",
		"/sales/4/receipt":      "/sales/4/receipt",
	}
	for next, want := range cases {
		assert.Equal(t, want, auth.SafeNext(next), next)
	}
}

func TestLoginURL(t *testing.T) {
	assert.Equal(t, "/login", auth.LoginURL(""))
	assert.Equal(t, "/login", auth.LoginURL("//evil.example"))
	assert.Equal(t, "/login?next=%2Fsales%3Fpage%3D2", auth.LoginURL("/sales?page=2"))
}

func TestRequireAuth(t *testing.T) {
	mw := auth.Middleware{}
	protected := mw.Load(mw.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, shared.UserFromContext(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})))

	anon := httptest.NewRecorder()
	protected.ServeHTTP(anon, httptest.NewRequest(http.MethodGet, "/stock?page=3", nil))
	assert.Equal(t, http.StatusSeeOther, anon.Code)
	assert.Equal(t, "/login?next=%2Fstock%3Fpage%3D3", anon.Header().Get("Location"))

	store := mapStore{}
	require.True(t, auth.NewSessionContext(store, &stubAuthenticator{user: pharmacist()}, nil).Login(context.Background(), "abebe", "secret").OK)
	sess := &shared.Session{}
	sess.Set(auth.StorageKey, store[auth.StorageKey])
	req := httptest.NewRequest(http.MethodGet, "/stock", nil)
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))

	signedIn := httptest.NewRecorder()
	protected.ServeHTTP(signedIn, req)
	assert.Equal(t, http.StatusNoContent, signedIn.Code)
}
