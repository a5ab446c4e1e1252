package http

import (
	"net/http"
	"time"

	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/pkg/httpx"
	"github.com/rblessings/urlradar/pkg/jwtx"
)

// ReadyzHandler reports whether the service can do useful work: the store
// must answer, and the verifier must hold keys. The cache is checked when a
// pinger is provided but never fails readiness on its own, since reads
// degrade to the store.
func ReadyzHandler(
	startTime time.Time,
	version string,
	st store.Store,
	cache Pinger,
	keys *jwtx.KeySet,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &HealthChecks{
			Database: "ok",
			Cache:    "ok",
			Verifier: "ok",
		}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		if cache == nil {
			checks.Cache = "disabled"
		} else if err := cache.Ping(r.Context()); err != nil {
			// Degraded but still serving: lookups fall back to the store.
			checks.Cache = "error: " + err.Error()
		}

		if !keys.IsReady() {
			checks.Verifier = "error: no keys loaded"
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
