// Package http wires the identity service's HTTP surface: the users API,
// the principal endpoint, and the health probes.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/rblessings/urlradar/internal/identity/security"
	"github.com/rblessings/urlradar/internal/identity/service"
	"github.com/rblessings/urlradar/internal/identity/store"
	"github.com/rblessings/urlradar/pkg/httpx"
	"github.com/rblessings/urlradar/pkg/jwtx"
	"github.com/rblessings/urlradar/pkg/slogx"
)

// RequiredScope gates every business endpoint. The authorization server
// grants it to registered API clients.
const RequiredScope = "apis"

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	keys         *jwtx.KeySet
	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store

	UserService *service.UserService

	// CachePinger, when set, lets the readiness probe verify the cache
	// connection. The in-memory cache has nothing to check and leaves it nil.
	CachePinger Pinger
}

// Pinger reports whether a backing connection is alive.
type Pinger interface {
	Ping(ctx context.Context) error
}

func NewRouter(
	keys *jwtx.KeySet,
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		keys:         keys,
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerUsers()
	r.registerPrincipal()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// POST /users - strict rate limit by IP (account creation)
	securedCreate := httpx.Chain(http.HandlerFunc(h.HandleRegister),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(RequiredScope),
		httpx.RateLimitByIP(httpx.StrictLimit),
	)

	// GET /users/{id} - lenient rate limit by authenticated subject
	securedGet := httpx.Chain(http.HandlerFunc(h.HandleGetByID),
		httpx.AuthnMiddleware(r.verifier),
		httpx.RequireAnyScope(RequiredScope),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	r.Mux.Handle("POST /api/v1/users", securedCreate)
	r.Mux.Handle("GET /api/v1/users/{id}", securedGet)
}

func (r *Router) registerPrincipal() {
	secured := httpx.Chain(PrincipalHandler(),
		httpx.AuthnMiddleware(r.verifier),
		security.PrincipalMiddleware(),
		httpx.RateLimitBySubject(httpx.LenientLimit),
	)

	r.Mux.Handle("GET /api/v1/principal", secured)
}

func (r *Router) registerSystem() {
	// Health probes stay public; monitoring systems may poll frequently.
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.CachePinger, r.keys),
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}
