package csrf

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestGenerateToken_UniqueAndLongEnough(t *testing.T) {
	a := MustGenerateToken()
	b := MustGenerateToken()

	if a == b {
		t.Error("two tokens should never collide")
	}
	if len(a) < 40 {
		t.Errorf("token too short: %d chars", len(a))
	}
}

func TestValidateToken(t *testing.T) {
	token := MustGenerateToken()

	if !ValidateToken(token, token) {
		t.Error("matching tokens should validate")
	}
	if ValidateToken(token, MustGenerateToken()) {
		t.Error("different tokens must not validate")
	}
	if ValidateToken("", "") {
		t.Error("empty tokens must not validate")
	}
	if ValidateToken(token, "") {
		t.Error("empty form token must not validate")
	}
}

func TestValidateRequest_MatchingPair(t *testing.T) {
	token := MustGenerateToken()

	form := url.Values{}
	form.Set(FormFieldName, token)

	req := httptest.NewRequest("POST", "/dashboard/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})

	if !ValidateRequest(req) {
		t.Error("matching cookie/field pair should validate")
	}
}

func TestValidateRequest_MissingCookie(t *testing.T) {
	form := url.Values{}
	form.Set(FormFieldName, MustGenerateToken())

	req := httptest.NewRequest("POST", "/dashboard/products", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	if ValidateRequest(req) {
		t.Error("request without the token cookie must not validate")
	}
}

func TestEnsureToken_ReusesExistingCookie(t *testing.T) {
	token := MustGenerateToken()

	req := httptest.NewRequest("GET", "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: token})
	rec := httptest.NewRecorder()

	got := EnsureToken(rec, req, false)

	if got != token {
		t.Errorf("expected existing token back, got %q", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no new cookie should be set when one exists")
	}
}

func TestEnsureToken_MintsWhenAbsent(t *testing.T) {
	req := httptest.NewRequest("GET", "/dashboard", nil)
	rec := httptest.NewRecorder()

	got := EnsureToken(rec, req, true)
	if got == "" {
		t.Fatal("expected a token")
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected one %s cookie, got %v", CookieName, cookies)
	}
	if cookies[0].Value != got {
		t.Error("cookie value should match the returned token")
	}
	if !cookies[0].Secure {
		t.Error("cookie should be Secure when isSecure is true")
	}
	if cookies[0].SameSite != http.SameSiteStrictMode {
		t.Error("cookie should be SameSite=Strict")
	}
}

func TestRefreshToken_RotatesValue(t *testing.T) {
	rec := httptest.NewRecorder()

	first := RefreshToken(rec, false)
	second := RefreshToken(rec, false)

	if first == second {
		t.Error("refresh should mint a fresh token each time")
	}
}
