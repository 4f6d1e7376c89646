package session

import (
	"encoding/json"
	"net/http"

	"github.com/distria/distria/internal/domain"
)

// persistedState is the explicit allow-list of session fields that survive in
// the general persisted blob. The bearer token is deliberately absent from
// this type: it lives only in the credential store cookie, never here.
type persistedState struct {
	User *domain.User `json:"user"`
}

// MarshalPersisted serializes the persisted subset of the session.
func (s *Store) MarshalPersisted() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return json.Marshal(persistedState{User: s.user})
}

// RestorePersisted loads a previously persisted blob into the store. Only the
// user field is restored, and only while the store is still in its loading
// state; it never flips the authenticated flag.
func (s *Store) RestorePersisted(data []byte) {
	var state persistedState
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading && s.user == nil {
		s.user = state.User
	}
}

// WriteProfileCookie persists the session's allow-listed subset to the
// profile cookie so the last-known identity survives reloads.
func (s *Store) WriteProfileCookie(w http.ResponseWriter, isSecure bool) {
	blob, err := s.MarshalPersisted()
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookieName,
		Value:    encodeCookieValue(blob),
		Path:     CookiePath,
		MaxAge:   CookieMaxAge,
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearProfileCookie removes the persisted profile from the client.
func ClearProfileCookie(w http.ResponseWriter, isSecure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     ProfileCookieName,
		Value:    "",
		Path:     CookiePath,
		MaxAge:   -1,
		HttpOnly: false,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

// ReadProfileCookie restores the persisted subset from the request, if any.
func (s *Store) ReadProfileCookie(r *http.Request) {
	cookie, err := r.Cookie(ProfileCookieName)
	if err != nil || cookie.Value == "" {
		return
	}
	blob, err := decodeCookieValue(cookie.Value)
	if err != nil {
		return
	}
	s.RestorePersisted(blob)
}
