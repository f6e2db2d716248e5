package httpx

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Check probes one dependency.
type Check struct {
	Name  string
	Probe func(ctx context.Context) error
}

type readiness struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Health answers liveness probes.
func Health(w http.ResponseWriter, _ *http.Request) {
	JSON(w, http.StatusOK, readiness{Status: "ok"})
}

// Ready runs every check with timeout and answers 503 when any fails.
func Ready(timeout time.Duration, checks ...Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		result := readiness{Status: "ok", Checks: make(map[string]string, len(checks))}
		var failed error
		for _, check := range checks {
			if err := check.Probe(ctx); err != nil {
				result.Checks[check.Name] = err.Error()
				if failed == nil {
					failed = fmt.Errorf("%w: %s", ErrUnavailable, check.Name)
				}
				continue
			}
			result.Checks[check.Name] = "ok"
		}
		if failed != nil {
			result.Status = "unavailable"
			JSON(w, http.StatusServiceUnavailable, result)
			return
		}
		JSON(w, http.StatusOK, result)
	}
}
