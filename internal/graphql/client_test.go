package graphql

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// backendStub records the last request and replies with a fixed body.
type backendStub struct {
	status     int
	body       string
	lastAuth   string
	lastQuery  string
	lastVars   map[string]any
	callCount  int
}

func (b *backendStub) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b.callCount++
		b.lastAuth = r.Header.Get("Authorization")

		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.lastQuery = req.Query
		b.lastVars = req.Variables

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(b.status)
		_, _ = w.Write([]byte(b.body))
	}
}

func TestAuthHeaderInjectedFromCredentialStore(t *testing.T) {
	stub := &backendStub{status: http.StatusOK, body: `{"data":{"me":null}}`}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	ctx := WithCredentials(context.Background(), session.WithToken("tok-abc"))

	_, _ = client.Me(ctx)

	assert.Equal(t, "Bearer tok-abc", stub.lastAuth)
}

func TestNoAuthHeaderWithoutToken(t *testing.T) {
	stub := &backendStub{status: http.StatusOK, body: `{"data":{"me":null}}`}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())

	// No credential store at all.
	_, _ = client.Me(context.Background())
	assert.Empty(t, stub.lastAuth)

	// Credential store present but empty.
	ctx := WithCredentials(context.Background(), session.NewMemoryCredentials())
	_, _ = client.Me(ctx)
	assert.Empty(t, stub.lastAuth)
}

func TestLoginDecodesAuthResult(t *testing.T) {
	stub := &backendStub{
		status: http.StatusOK,
		body: `{"data":{"login":{
			"token":"abc","tipo":"Bearer","userId":"1",
			"email":"a@b.com","nombreCompleto":"Ana","rol":"ADMIN"}}}`,
	}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	result, err := client.Login(context.Background(), "a@b.com", "secret")

	require.NoError(t, err)
	assert.Equal(t, "abc", result.Token)
	assert.Equal(t, "1", result.UserID)
	assert.Equal(t, domain.RoleAdmin, result.Role)
	assert.Contains(t, stub.lastQuery, "mutation Login")
	assert.Equal(t, "a@b.com", stub.lastVars["email"])
}

func TestMeReturnsVerifiedUser(t *testing.T) {
	stub := &backendStub{
		status: http.StatusOK,
		body: `{"data":{"me":{
			"id":"1","nombreCompleto":"Ana R.","email":"a@b.com",
			"rol":"ADMIN","activo":true}}}`,
	}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	user, err := client.Me(context.Background())

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "Ana R.", user.FullName)
	assert.True(t, user.Active)
}

func TestMeNullWithoutErrorMeansUnrecognizedSession(t *testing.T) {
	stub := &backendStub{status: http.StatusOK, body: `{"data":{"me":null}}`}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	user, err := client.Me(context.Background())

	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestGraphQLErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{
			name:     "unauthenticated classification",
			body:     `{"errors":[{"message":"expired","extensions":{"classification":"UNAUTHENTICATED"}}]}`,
			wantCode: domain.EUNAUTHORIZED,
		},
		{
			name:     "unauthorized code",
			body:     `{"errors":[{"message":"no session","extensions":{"code":"UNAUTHORIZED"}}]}`,
			wantCode: domain.EUNAUTHORIZED,
		},
		{
			name:     "forbidden",
			body:     `{"errors":[{"message":"admins only","extensions":{"classification":"FORBIDDEN"}}]}`,
			wantCode: domain.EFORBIDDEN,
		},
		{
			name:     "not found",
			body:     `{"errors":[{"message":"missing","extensions":{"classification":"NOT_FOUND"}}]}`,
			wantCode: domain.ENOTFOUND,
		},
		{
			name:     "validation",
			body:     `{"errors":[{"message":"bad input","extensions":{"classification":"BAD_REQUEST"}}]}`,
			wantCode: domain.EINVALID,
		},
		{
			name:     "unlabeled error",
			body:     `{"errors":[{"message":"boom"}]}`,
			wantCode: domain.EINTERNAL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &backendStub{status: http.StatusOK, body: tt.body}
			srv := httptest.NewServer(stub.handler())
			defer srv.Close()

			client := NewClient(srv.URL, testLogger())
			_, err := client.Me(context.Background())

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, domain.ErrorCode(err))
		})
	}
}

func TestTransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // Connection refused from here on.

	client := NewClient(srv.URL, testLogger())
	_, err := client.Me(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.EUNAVAILABLE, domain.ErrorCode(err))
}

func TestHTTPUnauthorizedStatus(t *testing.T) {
	stub := &backendStub{status: http.StatusUnauthorized, body: `unauthorized`}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	_, err := client.Me(context.Background())

	require.Error(t, err)
	assert.Equal(t, domain.EUNAUTHORIZED, domain.ErrorCode(err))
}

func TestPaginatedDecode(t *testing.T) {
	stub := &backendStub{
		status: http.StatusOK,
		body: `{"data":{"clientes":{
			"content":[{"id":"c1","nombre":"Mercado Norte","email":"mn@x.com","telefono":"777","direccion":"Av. Banzer 4to anillo","activo":true}],
			"totalElements":14,"totalPages":2,"page":0,"size":10}}}`,
	}
	srv := httptest.NewServer(stub.handler())
	defer srv.Close()

	client := NewClient(srv.URL, testLogger())
	page, err := client.Clients(context.Background(), domain.PageRequest{Page: 0, Size: 10})

	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "Mercado Norte", page.Content[0].Name)
	assert.Equal(t, 14, page.TotalElements)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrev())
}
