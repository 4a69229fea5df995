package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/riyajha981219/squareboat-job-portal/internal/database"
)

func TestRegisterThenLoginAuthenticates(t *testing.T) {
	s := newTestServer(t)

	registerToken := s.register(t, "Alice", "alice@x.com", "password1", "candidate")

	w := s.do(t, http.MethodGet, "/user", registerToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /user with register token: expected 200 got %d body=%s", w.Code, w.Body.String())
	}
	if body := w.Body.String(); strings.Contains(body, "password") || strings.Contains(body, "PasswordHash") {
		t.Fatalf("user response leaks password material: %s", body)
	}

	w = s.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "alice@x.com",
		"password": "password1",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Data struct {
			AccessToken string        `json:"access_token"`
			TokenType   string        `json:"token_type"`
			User        database.User `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode login response: %v", err)
	}
	if resp.Data.TokenType != "Bearer" {
		t.Fatalf("expected token_type Bearer, got %q", resp.Data.TokenType)
	}
	if resp.Data.User.Email != "alice@x.com" {
		t.Fatalf("expected user email alice@x.com, got %q", resp.Data.User.Email)
	}

	w = s.do(t, http.MethodGet, "/user", resp.Data.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /user with login token: expected 200 got %d", w.Code)
	}

	// Login revoked every prior session, including the register token.
	w = s.do(t, http.MethodGet, "/user", registerToken, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("stale token after re-login: expected 401 got %d", w.Code)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/register", "", map[string]any{
		"name":                  "",
		"email":                 "not-an-email",
		"password":              "short",
		"password_confirmation": "different",
		"role":                  "admin",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	for _, field := range []string{"name", "email", "password", "role"} {
		if len(resp.Errors[field]) == 0 {
			t.Errorf("expected a validation error for %q, got %v", field, resp.Errors)
		}
	}

	var count int64
	s.db.Model(&database.User{}).Count(&count)
	if count != 0 {
		t.Fatalf("expected no users after failed registration, got %d", count)
	}
}

func TestRegisterPasswordConfirmationMismatch(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/register", "", map[string]any{
		"name":                  "Alice",
		"email":                 "alice@x.com",
		"password":              "password1",
		"password_confirmation": "password2",
		"role":                  "candidate",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(resp.Errors["password_confirmation"]) == 0 {
		t.Fatalf("expected password_confirmation error, got %v", resp.Errors)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	s := newTestServer(t)

	s.register(t, "Alice", "alice@x.com", "password1", "candidate")

	w := s.do(t, http.MethodPost, "/register", "", map[string]any{
		"name":                  "Alice Again",
		"email":                 "alice@x.com",
		"password":              "password1",
		"password_confirmation": "password1",
		"role":                  "candidate",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 got %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Errors map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(resp.Errors["email"]) == 0 {
		t.Fatalf("expected email error, got %v", resp.Errors)
	}

	var count int64
	s.db.Model(&database.User{}).Where("email = ?", "alice@x.com").Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one user row, got %d", count)
	}
}

func TestLoginWrongPasswordLeavesSessionsIntact(t *testing.T) {
	s := newTestServer(t)

	token := s.register(t, "Alice", "alice@x.com", "password1", "candidate")

	w := s.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "alice@x.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d body=%s", w.Code, w.Body.String())
	}
	env := decodeEnvelope(t, w)
	if env.Message != "Invalid login credentials." {
		t.Fatalf("unexpected message %q", env.Message)
	}

	// Unknown email yields the same response as a wrong password.
	w = s.do(t, http.MethodPost, "/login", "", map[string]any{
		"email":    "nobody@x.com",
		"password": "password1",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown email, got %d", w.Code)
	}
	if got := decodeEnvelope(t, w).Message; got != env.Message {
		t.Fatalf("failure messages differ: %q vs %q", got, env.Message)
	}

	// The failed attempt must not touch existing tokens.
	w = s.do(t, http.MethodGet, "/user", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("existing token after failed login: expected 200 got %d", w.Code)
	}
}

func TestLogoutRevokesOnlyCurrentToken(t *testing.T) {
	s := newTestServer(t)

	token := s.register(t, "Alice", "alice@x.com", "password1", "candidate")

	w := s.do(t, http.MethodPost, "/logout", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d body=%s", w.Code, w.Body.String())
	}

	w = s.do(t, http.MethodGet, "/user", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("token after logout: expected 401 got %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/logout", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("logout with revoked token: expected 401 got %d", w.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/logout"},
		{http.MethodGet, "/user"},
		{http.MethodGet, "/jobs"},
		{http.MethodPost, "/jobs"},
		{http.MethodPost, "/jobs/1/apply"},
		{http.MethodGet, "/my-applications"},
		{http.MethodGet, "/my-posted-jobs/applicants"},
	} {
		w := s.do(t, route.method, route.path, "", nil)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s %s without token: expected 401 got %d", route.method, route.path, w.Code)
		}
	}
}
