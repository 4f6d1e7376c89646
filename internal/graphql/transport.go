package graphql

import (
	"context"
	"net/http"

	"github.com/distria/distria/internal/session"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const credentialsContextKey contextKey = "credentials"

// WithCredentials binds a credential store to the context so the auth
// transport can read the current token for every operation issued under it.
func WithCredentials(ctx context.Context, creds session.CredentialStore) context.Context {
	return context.WithValue(ctx, credentialsContextKey, creds)
}

// CredentialsFrom retrieves the credential store from the context, if any.
func CredentialsFrom(ctx context.Context) (session.CredentialStore, bool) {
	creds, ok := ctx.Value(credentialsContextKey).(session.CredentialStore)
	return creds, ok
}

// authTransport injects the bearer token into every outgoing operation.
//
// It reads from the credential store rather than any in-memory session copy,
// so it stays correct even when the session has not re-hydrated yet.
// Operations without a token proceed without the header; the backend rejects
// those as unauthenticated. No retries, no response transformation.
type authTransport struct {
	base http.RoundTripper
}

func newAuthTransport(base http.RoundTripper) *authTransport {
	return &authTransport{base: base}
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	creds, ok := CredentialsFrom(req.Context())
	if !ok {
		return t.base.RoundTrip(req)
	}
	token, ok := creds.Token()
	if !ok {
		return t.base.RoundTrip(req)
	}

	// Per RoundTripper contract the request must not be mutated in place.
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+token)
	return t.base.RoundTrip(clone)
}
