// Package csrf guards the dashboard's form submissions with the
// double-submit cookie pattern: a random token travels both in a cookie and
// in a hidden field of every mutating form, and the two must match on POST.
// A cross-site attacker can make the browser send our cookie but cannot read
// it, so it cannot forge the matching field.
package csrf

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
)

const (
	// CookieName holds the token half the browser sends automatically.
	CookieName = "distria_csrf"

	// FormFieldName is the hidden input rendered by the csrfField template
	// helper into every dashboard form.
	FormFieldName = "csrf_token"

	// TokenLength is the number of random bytes per token.
	TokenLength = 32

	// CookieMaxAge keeps the token short-lived (1 hour); page renders
	// re-issue it as needed.
	CookieMaxAge = 3600
)

// GenerateToken returns TokenLength bytes of crypto/rand data,
// base64 URL-encoded.
func GenerateToken() (string, error) {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// MustGenerateToken generates a token or panics. A crypto/rand failure means
// the host is broken badly enough that serving forms is pointless.
func MustGenerateToken() string {
	token, err := GenerateToken()
	if err != nil {
		panic("csrf: failed to generate token: " + err.Error())
	}
	return token
}

// ValidateToken compares the cookie token with the form token in constant
// time. Empty tokens never match.
func ValidateToken(cookieToken, formToken string) bool {
	if cookieToken == "" || formToken == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(cookieToken), []byte(formToken)) == 1
}

// ValidateRequest checks the double-submit pair on a mutating request. The
// form side comes from FormValue, so ParseForm must already have run or be
// implied by the call.
func ValidateRequest(r *http.Request) bool {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return false
	}
	return ValidateToken(cookie.Value, r.FormValue(FormFieldName))
}

// SetCookie writes the token cookie. It is deliberately not HttpOnly: the
// same token has to be readable for the hidden form field, and SameSite
// Strict plus the pairing check carry the protection.
func SetCookie(w http.ResponseWriter, token string, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   CookieMaxAge,
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteStrictMode,
	})
}

// GetTokenFromRequest returns the current token cookie value, or "" when the
// browser has none yet.
func GetTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// EnsureToken returns the request's existing token or mints one and sets the
// cookie. Page handlers call it while building their template data so every
// rendered form carries a valid pair.
func EnsureToken(w http.ResponseWriter, r *http.Request, isSecure bool) string {
	if existing := GetTokenFromRequest(r); existing != "" {
		return existing
	}
	token := MustGenerateToken()
	SetCookie(w, token, isSecure)
	return token
}

// RefreshToken rotates the token, invalidating any copies already rendered
// into pages. Called after sign-in and sign-up so a pre-auth token cannot be
// replayed into an authenticated session.
func RefreshToken(w http.ResponseWriter, isSecure bool) string {
	token := MustGenerateToken()
	SetCookie(w, token, isSecure)
	return token
}
