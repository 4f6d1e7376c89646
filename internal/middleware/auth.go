// Package middleware contains HTTP middleware for the DistrIA dashboard.
//
// Middleware functions follow the standard Go pattern of wrapping http.Handler.
// They are designed to be composed using a middleware stack approach.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/graphql"
	"github.com/distria/distria/internal/handler"
	"github.com/distria/distria/internal/session"
)

// =============================================================================
// Identity Verifier
// =============================================================================

// IdentityVerifier confirms the identity behind a stored token against the
// backend. A nil user with a nil error means the backend did not recognize
// the session.
type IdentityVerifier interface {
	Me(ctx context.Context) (*domain.User, error)
}

// =============================================================================
// Auth Middleware Configuration
// =============================================================================

// AuthMiddleware provides session hydration and route guarding.
//
// This struct holds dependencies needed by auth middleware functions.
// Create one instance and use its methods as middleware.
type AuthMiddleware struct {
	verifier IdentityVerifier
	logger   *slog.Logger
	isSecure bool // Whether to set Secure flag on cookies (true in production)
}

// NewAuthMiddleware creates a new AuthMiddleware instance.
//
// Parameters:
// - verifier: Backend client used to confirm stored identities
// - logger: Structured logger for auth events
// - isSecure: Set to true in production to enable Secure cookie flag
func NewAuthMiddleware(verifier IdentityVerifier, logger *slog.Logger, isSecure bool) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		logger:   logger,
		isSecure: isSecure,
	}
}

// =============================================================================
// Hydrate Middleware
// =============================================================================

// Hydrate builds the request's session store from its cookies and places it,
// together with the credential store, in the request context.
//
// Every route goes through Hydrate, public ones included: the sign-in page
// needs the credential store to write the token after a successful login,
// and public pages may render differently for a returning visitor.
//
// Each request owns its store. Nothing here is shared between requests, so
// two in-flight requests can never cross-write each other's session state.
//
// Flow:
//
//	Request -> Hydrate -> Handler
//	           |
//	           +-> Build cookie-backed credential store
//	           +-> Build session store (loading)
//	           +-> Restore persisted profile from cookie
//	           +-> Attach store + credentials to context
//	           +-> Call next handler (always)
func (m *AuthMiddleware) Hydrate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		creds := session.NewCookieCredentials(w, r, m.isSecure)
		store := session.New(creds)
		store.ReadProfileCookie(r)

		ctx := auth.WithSession(r.Context(), store)
		ctx = graphql.WithCredentials(ctx, creds)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// =============================================================================
// RequireAuth Middleware
// =============================================================================

// RequireAuth is the route guard for protected pages.
//
// This middleware:
// 1. Runs CheckAuth on the request's session store (local token inspection)
// 2. If unauthenticated, redirects to /sign-in (HTML) or returns 401 (JSON)
// 3. Otherwise verifies the identity against the backend with a me query
// 4. On a confirmed record, promotes it into the store and the context
// 5. On an empty record or any failure, tears the session down and redirects
//
// The me query always hits the backend. Protected content never renders on
// an identity the backend has not confirmed for this request.
//
// IMPORTANT: This middleware must be used AFTER Hydrate in the middleware chain.
//
// Flow:
//
//	Request -> Hydrate -> RequireAuth -> Handler
//	                      |
//	                      +-> CheckAuth (expired/absent token -> purge + redirect)
//	                      +-> me query through the link chain
//	                      +-> SetUser + refresh profile cookie on success
//	                      +-> Logout + clear cookies on anything else
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store := auth.GetSession(r.Context())
		if store == nil {
			m.logger.Error("RequireAuth called without session in context", "path", r.URL.Path)
			m.reject(w, r)
			return
		}

		store.CheckAuth()
		if !store.IsAuthenticated() {
			session.ClearProfileCookie(w, m.isSecure)
			m.reject(w, r)
			return
		}

		user, err := m.verifier.Me(r.Context())
		if err != nil || user == nil {
			if err != nil {
				m.logger.Info("session verification failed",
					"code", domain.ErrorCode(err),
					"path", r.URL.Path,
				)
			}
			store.Logout()
			session.ClearProfileCookie(w, m.isSecure)
			m.reject(w, r)
			return
		}

		store.SetUser(user)
		store.WriteProfileCookie(w, m.isSecure)

		ctx := auth.SetUser(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// reject ends an unauthenticated request: 401 for API clients, a redirect to
// the sign-in page for browsers. The original path rides along so the login
// handler can send the user back where they were headed.
func (m *AuthMiddleware) reject(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		handler.UnauthorizedResponse(w, r, m.logger)
		return
	}

	returnTo := r.URL.Path
	if r.URL.RawQuery != "" {
		returnTo += "?" + r.URL.RawQuery
	}
	http.Redirect(w, r, "/sign-in?return_to="+returnTo, http.StatusSeeOther)
}

// =============================================================================
// RequireRole Middleware
// =============================================================================

// RequireRole restricts a route to users carrying the given role.
//
// Users with a different role are not shown an error page; they are sent to
// their own home surface, matching how the dashboard routes admins and
// couriers to separate areas.
//
// IMPORTANT: Use this AFTER RequireAuth in the middleware chain.
//
// Usage:
//
//	mux.Handle("GET /products",
//	    authMw.Hydrate(
//	        authMw.RequireAuth(
//	            authMw.RequireRole(domain.RoleAdmin)(productsHandler))))
func (m *AuthMiddleware) RequireRole(role domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := auth.GetUser(r.Context())
			if user == nil {
				// This shouldn't happen if RequireAuth is used before this middleware
				m.logger.Error("RequireRole called without user in context", "path", r.URL.Path)
				m.reject(w, r)
				return
			}

			if user.Role != role {
				if isAPIRequest(r) {
					handler.ForbiddenResponse(w, r, m.logger)
					return
				}
				http.Redirect(w, r, RoleHome(user.Role), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RoleHome returns the landing page for a role.
func RoleHome(role domain.Role) string {
	if role == domain.RoleCourier {
		return "/courier/dashboard"
	}
	return "/dashboard"
}

// =============================================================================
// Request Helpers
// =============================================================================

// isAPIRequest determines if the request expects a JSON response.
//
// This is used to decide whether to redirect (HTML) or return JSON errors (API).
//
// Checks:
// 1. Accept header contains application/json
// 2. Content-Type is application/json
// 3. URL path starts with /api/
func isAPIRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	if strings.Contains(accept, "application/json") {
		return true
	}

	contentType := r.Header.Get("Content-Type")
	if strings.Contains(contentType, "application/json") {
		return true
	}

	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}

	return false
}

// =============================================================================
// Middleware Stack Helpers
// =============================================================================

// Stack composes multiple middleware functions into a single middleware.
//
// Middleware is applied in the order provided, meaning the first middleware
// in the slice is the outermost (runs first on request, last on response).
//
// Example:
//
//	stack := Stack(loggingMw, authMw.Hydrate, authMw.RequireAuth)
//	mux.Handle("GET /dashboard", stack(dashboardHandler))
//
// This is equivalent to:
//
//	mux.Handle("GET /dashboard",
//	    loggingMw(authMw.Hydrate(authMw.RequireAuth(dashboardHandler))))
func Stack(middlewares ...func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// =============================================================================
// Compile-time checks
// =============================================================================

// Ensure middleware functions have correct signature
var (
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).Hydrate
	_ func(http.Handler) http.Handler = (&AuthMiddleware{}).RequireAuth
)
