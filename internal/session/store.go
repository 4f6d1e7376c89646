package session

import (
	"sync"
	"time"

	"github.com/distria/distria/internal/domain"
)

// Store holds the authentication session state and exposes the four
// transitions all consumers go through. One Store exists per request cycle,
// constructed from the credential store; no ambient global instance exists.
//
// State machine:
//
//	Unknown (loading) --CheckAuth/Login--> Authenticated | Unauthenticated
//	Authenticated --Logout/expired CheckAuth--> Unauthenticated
//	Unauthenticated --Login--> Authenticated
//
// No transition re-enters the Unknown state.
type Store struct {
	mu    sync.RWMutex
	creds CredentialStore

	user          *domain.User
	token         string
	authenticated bool
	loading       bool

	// now is a clock hook for expiry tests.
	now func() time.Time
}

// New creates a Store in the Unknown state, backed by the given credential
// store.
func New(creds CredentialStore) *Store {
	return &Store{
		creds:   creds,
		loading: true,
		now:     time.Now,
	}
}

// Login establishes a session from the backend's login/signup response.
//
// The token is persisted to the credential store with the standard 1-day
// expiry and a provisional user is populated from the response fields. The
// response is trusted verbatim; this operation cannot fail locally.
func (s *Store) Login(res domain.AuthResult) {
	s.creds.SetToken(res.Token)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &domain.User{
		ID:       res.UserID,
		FullName: res.FullName,
		Email:    res.Email,
		Role:     res.Role,
		Active:   true,
	}
	s.token = res.Token
	s.authenticated = true
	s.loading = false
}

// Logout removes the token from the credential store and clears all session
// fields. Calling it on an already logged-out store is a harmless no-op.
func (s *Store) Logout() {
	s.creds.Clear()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.token = ""
	s.authenticated = false
	s.loading = false
}

// SetUser replaces the user record without touching the token or the
// authenticated flag. Used to upgrade a provisional (token-derived) identity
// to the backend-verified one.
func (s *Store) SetUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

// CheckAuth re-derives the session state from the credential store.
//
// A missing token yields the logged-out field state. A present token is
// decoded locally; expired or malformed tokens force a full Logout. A valid
// token yields a provisional user and an authenticated session. The decode is
// a trust-on-read preview only; the route guard still verifies the session
// against the backend before protected content renders.
func (s *Store) CheckAuth() {
	token, ok := s.creds.Token()
	if !ok {
		s.mu.Lock()
		s.user = nil
		s.token = ""
		s.authenticated = false
		s.loading = false
		s.mu.Unlock()
		return
	}

	identity, err := DecodeToken(token, s.now())
	if err != nil {
		// Never trust an unparseable or expired token.
		s.Logout()
		return
	}

	s.mu.Lock()
	s.user = identity.User()
	s.token = token
	s.authenticated = true
	s.loading = false
	s.mu.Unlock()
}

// User returns the current user record, or nil when logged out. The record is
// provisional until the route guard has called SetUser with the backend's
// me result.
func (s *Store) User() *domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// Token returns the cached bearer token, or empty when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// IsAuthenticated reports whether a non-expired token was present at the last
// check.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.authenticated
}

// IsLoading reports whether the first check has yet to complete. Consumers
// use it to suppress premature redirects.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}
