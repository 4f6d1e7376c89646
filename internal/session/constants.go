// Package session manages the client-side authentication session: the bearer
// token held in the credential cookie, the user identity derived from it, and
// the four transitions (Login, Logout, SetUser, CheckAuth) every consumer
// goes through.
package session

const (
	// CookieName is the credential store entry holding the bearer token.
	CookieName = "auth_token"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// CookieMaxAge sets the token cookie expiration (1 day = 86400 seconds).
	// This matches the expiry the backend embeds in freshly issued tokens.
	CookieMaxAge = 24 * 60 * 60

	// ProfileCookieName is the general persisted-state blob. It carries only
	// the non-sensitive user profile, never the bearer token.
	ProfileCookieName = "auth_storage"
)
