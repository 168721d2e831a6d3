package http

import (
	"net/http"
	"time"

	"github.com/parkmead/sprintdeck/internal/auth/store"
	"github.com/parkmead/sprintdeck/pkg/authsdk"
	"github.com/parkmead/sprintdeck/pkg/httpx"
)

// ReadyzHandler answers readiness probes, checking the session store on
// every call.
func ReadyzHandler(startTime time.Time, version string, st store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &authsdk.HealthChecks{Database: "ok"}
		overallStatus := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			overallStatus = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, authsdk.HealthResponse{
			Status:  overallStatus,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
