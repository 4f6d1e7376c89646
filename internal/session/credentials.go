package session

import "net/http"

// CredentialStore is the small persisted key-value mechanism holding only the
// bearer token. It is the source of truth for the token across reloads; the
// Store's in-memory copy is a read-through cache of it.
type CredentialStore interface {
	// Token returns the stored token, or false if none is present.
	Token() (string, bool)

	// SetToken stores the token with the standard 1-day expiry.
	SetToken(token string)

	// Clear removes the stored token.
	Clear()
}

// =============================================================================
// Cookie-backed implementation
// =============================================================================

// CookieCredentials is a CredentialStore backed by the auth_token cookie of a
// single HTTP exchange: reads come from the request, writes go to the response.
type CookieCredentials struct {
	r        *http.Request
	w        http.ResponseWriter
	isSecure bool

	// pending mirrors writes made during this exchange so that a read after
	// SetToken or Clear observes the new value rather than the stale request
	// cookie.
	pending *string
}

// NewCookieCredentials creates a credential store bound to one request cycle.
// Set isSecure to true in production to enable the Secure cookie flag.
func NewCookieCredentials(w http.ResponseWriter, r *http.Request, isSecure bool) *CookieCredentials {
	return &CookieCredentials{r: r, w: w, isSecure: isSecure}
}

// Token returns the bearer token for this exchange.
func (c *CookieCredentials) Token() (string, bool) {
	if c.pending != nil {
		if *c.pending == "" {
			return "", false
		}
		return *c.pending, true
	}
	cookie, err := c.r.Cookie(CookieName)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

// SetToken writes the token cookie on the response.
func (c *CookieCredentials) SetToken(token string) {
	c.pending = &token
	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HttpOnly: true,
		Secure:   c.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear removes the token cookie.
func (c *CookieCredentials) Clear() {
	empty := ""
	c.pending = &empty
	http.SetCookie(c.w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1, // Delete immediately
		HttpOnly: true,
		Secure:   c.isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// =============================================================================
// In-memory implementation
// =============================================================================

// MemoryCredentials is an in-memory CredentialStore for tests.
type MemoryCredentials struct {
	token string
	set   bool
}

// NewMemoryCredentials creates an empty in-memory credential store.
func NewMemoryCredentials() *MemoryCredentials {
	return &MemoryCredentials{}
}

// WithToken creates an in-memory credential store pre-seeded with a token.
func WithToken(token string) *MemoryCredentials {
	return &MemoryCredentials{token: token, set: true}
}

func (m *MemoryCredentials) Token() (string, bool) {
	if !m.set || m.token == "" {
		return "", false
	}
	return m.token, true
}

func (m *MemoryCredentials) SetToken(token string) {
	m.token = token
	m.set = true
}

func (m *MemoryCredentials) Clear() {
	m.token = ""
	m.set = false
}
