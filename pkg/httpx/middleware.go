// Package httpx holds the HTTP middleware chain primitives: bearer-token
// authentication, scope enforcement, rate limiting, and the response
// envelope shared by all handlers.
package httpx

import "net/http"

// Middleware wraps an http.Handler with additional behaviour.
type Middleware func(http.Handler) http.Handler

// Chain applies middlewares to h so the first listed middleware runs first
// at request time. Routes declare their policy as an explicit ordered chain.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
