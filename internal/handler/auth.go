// Package handler contains HTTP handlers for the DistrIA dashboard.
//
// This file implements authentication handlers for sign-in, sign-up and
// logout. Authentication itself lives in the backend; these handlers drive
// the GraphQL mutations and manage the session cookies.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/distria/distria/internal/auth"
	"github.com/distria/distria/internal/csrf"
	"github.com/distria/distria/internal/domain"
	"github.com/distria/distria/internal/metrics"
	"github.com/distria/distria/internal/session"
)

// =============================================================================
// Handler Configuration
// =============================================================================

// TemplateRenderer is the interface for rendering HTML templates.
// This interface allows for mocking in tests.
type TemplateRenderer interface {
	RenderHTTP(w http.ResponseWriter, name string, data interface{})
}

// AuthService is the slice of the backend client the auth handlers need.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*domain.AuthResult, error)
	CreateUser(ctx context.Context, input domain.CreateUserInput) (*domain.User, error)
}

// AuthHandler handles authentication-related HTTP requests.
//
// Routes handled:
// - GET  /sign-in  -> ShowSignIn
// - POST /sign-in  -> SignIn
// - GET  /sign-up  -> ShowSignUp
// - POST /sign-up  -> SignUp
// - POST /logout   -> Logout
type AuthHandler struct {
	backend  AuthService
	renderer TemplateRenderer
	logger   *slog.Logger
	isSecure bool
}

// NewAuthHandler creates a new AuthHandler with the required dependencies.
func NewAuthHandler(backend AuthService, renderer TemplateRenderer, logger *slog.Logger, isSecure bool) *AuthHandler {
	return &AuthHandler{
		backend:  backend,
		renderer: renderer,
		logger:   logger,
		isSecure: isSecure,
	}
}

// =============================================================================
// Template Data Types
// =============================================================================

// Flash represents a flash message to display to the user.
//
// The Type field determines styling in templates:
// - "success" -> green background
// - "error"   -> red background
// - "info"    -> blue background
type Flash struct {
	Type    string // "success", "error", or "info"
	Message string
}

// AuthPageData contains common data for authentication pages.
type AuthPageData struct {
	CurrentPath string            // Current URL path
	CSRFToken   string            // CSRF token for form protection
	Form        map[string]string // Form field values for re-populating on error
	Errors      map[string]string // Field-level validation errors
	Flash       *Flash            // Flash message to display
	ReturnTo    string            // URL to redirect to after successful sign-in
	Roles       []domain.Role     // Selectable roles on the sign-up form
}

// =============================================================================
// GET /sign-in - Show Sign-In Form
// =============================================================================

// ShowSignIn renders the sign-in form.
//
// Query Parameters:
// - return_to (optional): URL to redirect to after successful sign-in
// - registered (optional): If "1", show success message for new account
// - logout (optional): If "1", show signed-out message
func (h *AuthHandler) ShowSignIn(w http.ResponseWriter, r *http.Request) {
	// A visitor with a still-valid token skips the form
	if store := auth.GetSession(r.Context()); store != nil {
		store.CheckAuth()
		if store.IsAuthenticated() {
			http.Redirect(w, r, roleHome(store.User()), http.StatusSeeOther)
			return
		}
	}

	var flash *Flash
	switch {
	case r.URL.Query().Get("registered") == "1":
		flash = &Flash{Type: "success", Message: "Cuenta creada. Inicia sesión para continuar."}
	case r.URL.Query().Get("logout") == "1":
		flash = &Flash{Type: "success", Message: "Sesión cerrada."}
	}

	data := AuthPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        make(map[string]string),
		Errors:      make(map[string]string),
		Flash:       flash,
		ReturnTo:    r.URL.Query().Get("return_to"),
	}

	h.renderer.RenderHTTP(w, "auth/sign-in", data)
}

// =============================================================================
// POST /sign-in - Process Sign-In
// =============================================================================

// SignIn processes the sign-in form submission.
//
// On success the backend returns the bearer token plus the identity fields.
// The session store writes the token to its cookie and the identity to the
// profile cookie; the browser is then redirected to the role's home surface
// or the return_to target.
//
// Invalid credentials always produce the same generic message.
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		h.renderSignInError(w, r, nil, nil, &Flash{
			Type:    "error",
			Message: "Formulario inválido. Intenta de nuevo.",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	returnTo := r.FormValue("return_to")

	formValues := map[string]string{
		"Email": email,
	}

	if !csrf.ValidateRequest(r) {
		h.renderSignInError(w, r, formValues, nil, &Flash{
			Type:    "error",
			Message: "Token de seguridad inválido. Intenta de nuevo.",
		})
		return
	}

	errors := make(map[string]string)
	if email == "" {
		errors["email"] = "El correo es obligatorio"
	} else if !isValidEmail(email) {
		errors["email"] = "Ingresa un correo válido"
	}
	if password == "" {
		errors["password"] = "La contraseña es obligatoria"
	}
	if len(errors) > 0 {
		h.renderSignInError(w, r, formValues, errors, nil)
		return
	}

	result, err := h.backend.Login(r.Context(), email, password)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("failure").Inc()

		switch domain.ErrorCode(err) {
		case domain.EUNAUTHORIZED:
			// Invalid credentials - use generic message
			h.renderSignInError(w, r, formValues, nil, &Flash{
				Type:    "error",
				Message: "Correo o contraseña incorrectos",
			})
		case domain.EUNAVAILABLE:
			h.renderSignInError(w, r, formValues, nil, &Flash{
				Type:    "error",
				Message: "El servidor no está disponible. Intenta más tarde.",
			})
		default:
			h.logger.Error("sign-in failed", "error", err, "email", email)
			h.renderSignInError(w, r, formValues, nil, &Flash{
				Type:    "error",
				Message: "No se pudo iniciar sesión. Intenta más tarde.",
			})
		}
		return
	}

	store := auth.GetSession(r.Context())
	if store == nil {
		h.logger.Error("sign-in without session in context")
		InternalErrorResponse(w, r, h.logger, domain.Internal(nil, "handler.SignIn", "session not hydrated"))
		return
	}

	// Login writes the token cookie through the credential store; the
	// profile cookie carries only the allow-listed subset.
	store.Login(*result)
	store.WriteProfileCookie(w, h.isSecure)
	csrf.RefreshToken(w, h.isSecure)

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.logger.Info("user signed in",
		"user_id", result.UserID,
		"role", string(result.Role),
	)

	redirectURL := roleHome(store.User())
	if returnTo != "" && isSafeRedirectURL(returnTo) {
		redirectURL = returnTo
	}
	http.Redirect(w, r, redirectURL, http.StatusSeeOther)
}

// renderSignInError re-renders the sign-in form with errors.
func (h *AuthHandler) renderSignInError(
	w http.ResponseWriter,
	r *http.Request,
	formValues map[string]string,
	errors map[string]string,
	flash *Flash,
) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if errors == nil {
		errors = make(map[string]string)
	}

	data := AuthPageData{
		CurrentPath: "/sign-in",
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        formValues,
		Errors:      errors,
		Flash:       flash,
		ReturnTo:    r.FormValue("return_to"),
	}

	h.renderer.RenderHTTP(w, "auth/sign-in", data)
}

// =============================================================================
// GET /sign-up - Show Sign-Up Form
// =============================================================================

// ShowSignUp renders the account creation form.
func (h *AuthHandler) ShowSignUp(w http.ResponseWriter, r *http.Request) {
	data := AuthPageData{
		CurrentPath: r.URL.Path,
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        make(map[string]string),
		Errors:      make(map[string]string),
		Roles:       []domain.Role{domain.RoleAdmin, domain.RoleCourier},
	}

	h.renderer.RenderHTTP(w, "auth/sign-up", data)
}

// =============================================================================
// POST /sign-up - Process Sign-Up
// =============================================================================

// SignUp processes the account creation form.
//
// Form Fields:
// - full_name (required)
// - email (required)
// - password (required, min 6 chars to match the backend constraint)
// - password_confirmation (required)
// - phone (optional)
// - role (required): ADMIN or REPARTIDOR
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.logger.Error("failed to parse form", "error", err)
		h.renderSignUpError(w, r, nil, nil, &Flash{
			Type:    "error",
			Message: "Formulario inválido. Intenta de nuevo.",
		})
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.ToLower(strings.TrimSpace(r.FormValue("email")))
	password := r.FormValue("password")
	passwordConfirmation := r.FormValue("password_confirmation")
	phone := strings.TrimSpace(r.FormValue("phone"))
	role := domain.Role(r.FormValue("role"))

	formValues := map[string]string{
		"FullName": fullName,
		"Email":    email,
		"Phone":    phone,
		"Role":     string(role),
	}

	if !csrf.ValidateRequest(r) {
		h.renderSignUpError(w, r, formValues, nil, &Flash{
			Type:    "error",
			Message: "Token de seguridad inválido. Intenta de nuevo.",
		})
		return
	}

	errors := make(map[string]string)
	if fullName == "" {
		errors["full_name"] = "El nombre completo es obligatorio"
	}
	if email == "" {
		errors["email"] = "El correo es obligatorio"
	} else if !isValidEmail(email) {
		errors["email"] = "Ingresa un correo válido"
	}
	if password == "" {
		errors["password"] = "La contraseña es obligatoria"
	} else if len(password) < 6 {
		errors["password"] = "La contraseña debe tener al menos 6 caracteres"
	}
	if passwordConfirmation == "" {
		errors["password_confirmation"] = "Confirma tu contraseña"
	} else if password != passwordConfirmation {
		errors["password_confirmation"] = "Las contraseñas no coinciden"
	}
	if role != domain.RoleAdmin && role != domain.RoleCourier {
		errors["role"] = "Selecciona un rol válido"
	}
	if len(errors) > 0 {
		h.renderSignUpError(w, r, formValues, errors, nil)
		return
	}

	user, err := h.backend.CreateUser(r.Context(), domain.CreateUserInput{
		FullName: fullName,
		Email:    email,
		Password: password,
		Phone:    phone,
		Role:     role,
	})
	if err != nil {
		switch domain.ErrorCode(err) {
		case domain.ECONFLICT:
			errors["email"] = "Ya existe una cuenta con este correo"
			h.renderSignUpError(w, r, formValues, errors, nil)
		case domain.EINVALID:
			h.renderSignUpError(w, r, formValues, nil, &Flash{
				Type:    "error",
				Message: domain.ErrorMessage(err),
			})
		default:
			h.logger.Error("sign-up failed", "error", err, "email", email)
			h.renderSignUpError(w, r, formValues, nil, &Flash{
				Type:    "error",
				Message: "No se pudo crear la cuenta. Intenta más tarde.",
			})
		}
		return
	}

	h.logger.Info("user registered", "user_id", user.ID, "role", string(user.Role))

	// The account exists; now sign the user straight in so they land on
	// their dashboard instead of retyping credentials.
	result, err := h.backend.Login(r.Context(), email, password)
	if err != nil {
		h.logger.Warn("post-registration login failed", "error", err, "user_id", user.ID)
		http.Redirect(w, r, "/sign-in?registered=1", http.StatusSeeOther)
		return
	}

	store := auth.GetSession(r.Context())
	if store == nil {
		h.logger.Error("sign-up without session in context")
		http.Redirect(w, r, "/sign-in?registered=1", http.StatusSeeOther)
		return
	}

	store.Login(*result)
	store.WriteProfileCookie(w, h.isSecure)
	csrf.RefreshToken(w, h.isSecure)
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	http.Redirect(w, r, roleHome(store.User()), http.StatusSeeOther)
}

// renderSignUpError re-renders the sign-up form with errors.
func (h *AuthHandler) renderSignUpError(
	w http.ResponseWriter,
	r *http.Request,
	formValues map[string]string,
	errors map[string]string,
	flash *Flash,
) {
	if formValues == nil {
		formValues = make(map[string]string)
	}
	if errors == nil {
		errors = make(map[string]string)
	}

	data := AuthPageData{
		CurrentPath: "/sign-up",
		CSRFToken:   csrf.EnsureToken(w, r, h.isSecure),
		Form:        formValues,
		Errors:      errors,
		Flash:       flash,
		Roles:       []domain.Role{domain.RoleAdmin, domain.RoleCourier},
	}

	h.renderer.RenderHTTP(w, "auth/sign-up", data)
}

// =============================================================================
// POST /logout - Process Logout
// =============================================================================

// Logout clears the session and both cookies.
//
// Notes:
// - This operation is idempotent - calling without a session is fine
// - There is no backend call; the token simply stops being presented
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if store := auth.GetSession(r.Context()); store != nil {
		store.Logout()
	}
	session.ClearProfileCookie(w, h.isSecure)

	h.logger.Debug("user logged out")

	http.Redirect(w, r, "/sign-in?logout=1", http.StatusSeeOther)
}

// =============================================================================
// Helper Functions
// =============================================================================

// roleHome returns the landing page for a user's role.
func roleHome(user *domain.User) string {
	if user != nil && user.Role == domain.RoleCourier {
		return "/courier/dashboard"
	}
	return "/dashboard"
}

// isValidEmail performs basic email format validation.
//
// This is a simple check - the backend performs the thorough validation.
func isValidEmail(email string) bool {
	atIndex := strings.Index(email, "@")
	if atIndex < 1 {
		return false
	}
	if atIndex >= len(email)-1 {
		return false
	}

	domainPart := email[atIndex+1:]
	return strings.Contains(domainPart, ".")
}

// isSafeRedirectURL checks if a URL is safe to redirect to.
//
// This prevents open redirect vulnerabilities by ensuring the URL is
// relative (starts with a single /).
func isSafeRedirectURL(target string) bool {
	if !strings.HasPrefix(target, "/") {
		return false
	}
	if strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return false
	}
	return true
}
