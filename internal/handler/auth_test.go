package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/session"
)

// =============================================================================
// Mocks
// =============================================================================

type mockAuthService struct {
	loginFunc      func(ctx context.Context, email, password string) (*domain.AuthResult, error)
	createUserFunc func(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (*domain.AuthResult, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, email, password)
	}
	return nil, domain.Unauthorized("mock.Login", "Credenciales inválidas")
}

func (m *mockAuthService) CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
	if m.createUserFunc != nil {
		return m.createUserFunc(ctx, input)
	}
	return nil, domain.Internal(nil, "mock.CreateUser", "not configured")
}

// mockRenderer records the last template rendered and its data.
type mockRenderer struct {
	lastName string
	lastData interface{}
}

func (m *mockRenderer) RenderHTTP(w http.ResponseWriter, name string, data interface{}) {
	m.lastName = name
	m.lastData = data
	w.Write([]byte("rendered:" + name))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// signInRequest builds a POST /sign-in with a matching CSRF cookie/field pair
// and an empty session store in the context.
func signInRequest(t *testing.T, form url.Values) (*http.Request, *session.Store) {
	t.Helper()

	token := csrf.MustGenerateToken()
	form.Set("csrf_token", token)

	req := httptest.NewRequest("POST", "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})

	store := session.New(session.NewMemoryCredentials())
	req = req.WithContext(auth.WithSession(req.Context(), store))
	return req, store
}

// =============================================================================
// Sign-In Tests
// =============================================================================

func TestSignIn_Success_RedirectsToRoleHome(t *testing.T) {
	backend := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			if email != "ana@distria.com" {
				t.Errorf("unexpected email: %s", email)
			}
			return &domain.AuthResult{
				Token:    "tok-123",
				UserID:   "u1",
				Email:    email,
				FullName: "Ana Pérez",
				Role:     domain.RoleAdmin,
			}, nil
		},
	}
	renderer := &mockRenderer{}
	h := NewAuthHandler(backend, renderer, testLogger(), false)

	form := url.Values{}
	form.Set("email", "Ana@distria.com") // normalized to lowercase
	form.Set("password", "secret")

	req, store := signInRequest(t, form)
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %s", loc)
	}
	if !store.IsAuthenticated() {
		t.Error("store should be authenticated after login")
	}
	if store.Token() != "tok-123" {
		t.Errorf("expected token in store, got %q", store.Token())
	}
}

func TestSignIn_CourierRedirectsToCourierDashboard(t *testing.T) {
	backend := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return &domain.AuthResult{
				Token:  "tok-456",
				UserID: "u2",
				Email:  email,
				Role:   domain.RoleCourier,
			}, nil
		},
	}
	h := NewAuthHandler(backend, &mockRenderer{}, testLogger(), false)

	form := url.Values{}
	form.Set("email", "luis@distria.com")
	form.Set("password", "secret")

	req, _ := signInRequest(t, form)
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/courier/dashboard" {
		t.Errorf("expected redirect to /courier/dashboard, got %s", loc)
	}
}

func TestSignIn_InvalidCredentials_GenericMessage(t *testing.T) {
	backend := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return nil, domain.Unauthorized("graphql.Login", "Credenciales inválidas")
		},
	}
	renderer := &mockRenderer{}
	h := NewAuthHandler(backend, renderer, testLogger(), false)

	form := url.Values{}
	form.Set("email", "ana@distria.com")
	form.Set("password", "wrong")

	req, store := signInRequest(t, form)
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if renderer.lastName != "auth/sign-in" {
		t.Fatalf("expected sign-in re-render, got %q", renderer.lastName)
	}
	data, ok := renderer.lastData.(AuthPageData)
	if !ok {
		t.Fatalf("unexpected data type %T", renderer.lastData)
	}
	if data.Flash == nil || data.Flash.Type != "error" {
		t.Fatal("expected error flash")
	}
	// Generic message only; nothing that confirms whether the account exists.
	if data.Flash.Message != "Correo o contraseña incorrectos" {
		t.Errorf("unexpected flash message: %s", data.Flash.Message)
	}
	if store.IsAuthenticated() {
		t.Error("store must not authenticate on failure")
	}
}

func TestSignIn_MissingFields_FieldErrors(t *testing.T) {
	renderer := &mockRenderer{}
	h := NewAuthHandler(&mockAuthService{}, renderer, testLogger(), false)

	req, _ := signInRequest(t, url.Values{})
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	data := renderer.lastData.(AuthPageData)
	if data.Errors["email"] == "" {
		t.Error("expected email error")
	}
	if data.Errors["password"] == "" {
		t.Error("expected password error")
	}
}

func TestSignIn_InvalidCSRF_Rejected(t *testing.T) {
	backend := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			t.Fatal("backend must not be called with an invalid CSRF token")
			return nil, nil
		},
	}
	renderer := &mockRenderer{}
	h := NewAuthHandler(backend, renderer, testLogger(), false)

	form := url.Values{}
	form.Set("email", "ana@distria.com")
	form.Set("password", "secret")
	form.Set("csrf_token", "forged")

	req := httptest.NewRequest("POST", "/sign-in", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: "different"})
	req = req.WithContext(auth.WithSession(req.Context(), session.New(session.NewMemoryCredentials())))
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	data := renderer.lastData.(AuthPageData)
	if data.Flash == nil || data.Flash.Type != "error" {
		t.Fatal("expected error flash for CSRF failure")
	}
}

func TestSignIn_UnsafeReturnTo_Ignored(t *testing.T) {
	backend := &mockAuthService{
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return &domain.AuthResult{Token: "t", UserID: "u1", Role: domain.RoleAdmin}, nil
		},
	}
	h := NewAuthHandler(backend, &mockRenderer{}, testLogger(), false)

	form := url.Values{}
	form.Set("email", "ana@distria.com")
	form.Set("password", "secret")
	form.Set("return_to", "https://evil.example/phish")

	req, _ := signInRequest(t, form)
	rec := httptest.NewRecorder()

	h.SignIn(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("open redirect not blocked, got %s", loc)
	}
}

// =============================================================================
// Sign-Up Tests
// =============================================================================

func signUpForm() url.Values {
	form := url.Values{}
	form.Set("full_name", "Ana Pérez")
	form.Set("email", "ana@distria.com")
	form.Set("password", "secret1")
	form.Set("password_confirmation", "secret1")
	form.Set("role", "ADMIN")
	return form
}

func signUpRequest(t *testing.T, form url.Values) (*http.Request, *session.Store) {
	t.Helper()

	token := csrf.MustGenerateToken()
	form.Set("csrf_token", token)

	req := httptest.NewRequest("POST", "/sign-up", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrf.CookieName, Value: token})

	store := session.New(session.NewMemoryCredentials())
	req = req.WithContext(auth.WithSession(req.Context(), store))
	return req, store
}

func TestSignUp_Success_SignsInAndRedirectsToRoleHome(t *testing.T) {
	backend := &mockAuthService{
		createUserFunc: func(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
			if input.Role != domain.RoleAdmin {
				t.Errorf("unexpected role: %s", input.Role)
			}
			return &domain.User{ID: "u1", Email: input.Email, Role: input.Role}, nil
		},
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			if email != "ana@distria.com" || password != "secret1" {
				t.Errorf("login called with %s / %s", email, password)
			}
			return &domain.AuthResult{
				Token:  "tok-new",
				UserID: "u1",
				Email:  email,
				Role:   domain.RoleAdmin,
			}, nil
		},
	}
	h := NewAuthHandler(backend, &mockRenderer{}, testLogger(), false)

	req, store := signUpRequest(t, signUpForm())
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/dashboard" {
		t.Errorf("expected redirect to /dashboard, got %s", loc)
	}
	if !store.IsAuthenticated() {
		t.Error("store should be authenticated right after registration")
	}
	if store.Token() != "tok-new" {
		t.Errorf("expected token in store, got %q", store.Token())
	}
}

func TestSignUp_CourierLandsOnCourierDashboard(t *testing.T) {
	backend := &mockAuthService{
		createUserFunc: func(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
			return &domain.User{ID: "u2", Email: input.Email, Role: input.Role}, nil
		},
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return &domain.AuthResult{Token: "t", UserID: "u2", Email: email, Role: domain.RoleCourier}, nil
		},
	}
	h := NewAuthHandler(backend, &mockRenderer{}, testLogger(), false)

	form := signUpForm()
	form.Set("role", "REPARTIDOR")

	req, _ := signUpRequest(t, form)
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	if loc := rec.Header().Get("Location"); loc != "/courier/dashboard" {
		t.Errorf("expected redirect to /courier/dashboard, got %s", loc)
	}
}

func TestSignUp_LoginFailsAfterCreate_FallsBackToSignIn(t *testing.T) {
	backend := &mockAuthService{
		createUserFunc: func(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
			return &domain.User{ID: "u1", Email: input.Email, Role: input.Role}, nil
		},
		loginFunc: func(ctx context.Context, email, password string) (*domain.AuthResult, error) {
			return nil, domain.Unavailable(nil, "graphql.Login", "Backend no disponible")
		},
	}
	h := NewAuthHandler(backend, &mockRenderer{}, testLogger(), false)

	req, store := signUpRequest(t, signUpForm())
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	// Registration itself succeeded, so the user goes to sign-in manually.
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sign-in?registered=1" {
		t.Errorf("unexpected redirect: %s", loc)
	}
	if store.IsAuthenticated() {
		t.Error("store must not authenticate when the follow-up login fails")
	}
}

func TestSignUp_PasswordMismatch(t *testing.T) {
	renderer := &mockRenderer{}
	h := NewAuthHandler(&mockAuthService{}, renderer, testLogger(), false)

	form := signUpForm()
	form.Set("password_confirmation", "otra-cosa")

	req, _ := signUpRequest(t, form)
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	data := renderer.lastData.(AuthPageData)
	if data.Errors["password_confirmation"] == "" {
		t.Error("expected password_confirmation error")
	}
}

func TestSignUp_InvalidRole(t *testing.T) {
	renderer := &mockRenderer{}
	h := NewAuthHandler(&mockAuthService{}, renderer, testLogger(), false)

	form := signUpForm()
	form.Set("role", "SUPERUSER")

	req, _ := signUpRequest(t, form)
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	data := renderer.lastData.(AuthPageData)
	if data.Errors["role"] == "" {
		t.Error("expected role error")
	}
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	backend := &mockAuthService{
		createUserFunc: func(ctx context.Context, input domain.CreateUserInput) (*domain.User, error) {
			return nil, &domain.Error{Code: domain.ECONFLICT, Message: "El email ya está registrado"}
		},
	}
	renderer := &mockRenderer{}
	h := NewAuthHandler(backend, renderer, testLogger(), false)

	req, _ := signUpRequest(t, signUpForm())
	rec := httptest.NewRecorder()
	h.SignUp(rec, req)

	data := renderer.lastData.(AuthPageData)
	if data.Errors["email"] == "" {
		t.Error("expected email conflict error")
	}
	// Form values survive the re-render so the user does not retype.
	if data.Form["FullName"] != "Ana Pérez" {
		t.Errorf("form values lost: %v", data.Form)
	}
}

// =============================================================================
// Logout Tests
// =============================================================================

func TestLogout_ClearsSessionAndRedirects(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{}, &mockRenderer{}, testLogger(), false)

	store := session.New(session.NewMemoryCredentials())
	store.Login(domain.AuthResult{Token: "tok-123", UserID: "u1", Role: domain.RoleAdmin})

	req := httptest.NewRequest("POST", "/logout", nil)
	req = req.WithContext(auth.WithSession(req.Context(), store))
	rec := httptest.NewRecorder()

	h.Logout(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/sign-in?logout=1" {
		t.Errorf("unexpected redirect: %s", loc)
	}
	if store.IsAuthenticated() {
		t.Error("store should be cleared after logout")
	}
	if store.Token() != "" {
		t.Error("token should be cleared after logout")
	}
}
