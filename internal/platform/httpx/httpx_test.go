package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReady(t *testing.T) {
	ok := Check{Name: "redis", Probe: func(context.Context) error { return nil }}
	down := Check{Name: "backend", Probe: func(context.Context) error { return errors.New("connection refused") }}

	rec := httptest.NewRecorder()
	Ready(time.Second, ok)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	Ready(time.Second, ok, down)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body readiness
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "unavailable", body.Status)
	assert.Equal(t, map[string]string{"redis": "ok", "backend": "connection refused"}, body.Checks)
}

func TestIDParam(t *testing.T) {
	r := chi.NewRouter()
	var got int64
	var gotErr error
	r.Get("/sales/{id}", func(w http.ResponseWriter, req *http.Request) {
		got, gotErr = IDParam(req, "id")
		if gotErr != nil {
			http.Error(w, gotErr.Error(), http.StatusBadRequest)
		}
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/42", nil))
	require.NoError(t, gotErr)
	assert.Equal(t, int64(42), got)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sales/abc", nil))
	assert.ErrorIs(t, gotErr, ErrBadRequest)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
