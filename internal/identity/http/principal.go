package http

import (
	"net/http"

	"github.com/rblessings/urlradar/internal/identity/security"
	"github.com/rblessings/urlradar/pkg/httpx"
)

// PrincipalHandler echoes the caller's authorization context. Useful for
// clients and operators inspecting what a token actually grants.
func PrincipalHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := security.PrincipalFromContext(r.Context())
		if !ok {
			httpx.WriteBearerError(w, "missing bearer token")
			return
		}
		httpx.WriteEnvelope(w, httpx.Success(http.StatusOK, p))
	}
}
