package httpapi

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/kiwabc123/supply-admin/internal/auth"
)

func TestHealthz(t *testing.T) {
	env := newTestAPI(t)
	rr := env.do(t, http.MethodGet, "/healthz", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestReadyWithoutDB(t *testing.T) {
	env := newTestAPI(t)
	rr := env.do(t, http.MethodGet, "/readyz", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestRegisterLoginMe(t *testing.T) {
	env := newTestAPI(t)

	rr := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "s3cret!", "name": "Alice",
	}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("register: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created auth.User
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	if created.Role != auth.RoleUser {
		t.Fatalf("expected default role USER, got %s", created.Role)
	}
	if rr.Body.String() != "" && json.Valid(rr.Body.Bytes()) {
		var raw map[string]any
		_ = json.Unmarshal(rr.Body.Bytes(), &raw)
		if _, leaked := raw["password_hash"]; leaked {
			t.Fatal("password digest must never appear in responses")
		}
	}

	token := env.login(t, "alice@example.com", "s3cret!")

	rr = env.do(t, http.MethodGet, "/api/auth/me", nil, token)
	if rr.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var me auth.User
	if err := json.Unmarshal(rr.Body.Bytes(), &me); err != nil {
		t.Fatalf("decode me response: %v", err)
	}
	if me.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", me)
	}
	if me.LastLogin == nil {
		t.Fatal("login must update last_login")
	}
}

func TestRegisterDuplicate(t *testing.T) {
	env := newTestAPI(t)
	env.seedUser(t, "alice@example.com", "s3cret!", auth.RoleUser)

	rr := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "s3cret!", "name": "Alice",
	}, "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rr.Code)
	}
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	env := newTestAPI(t)
	rr := env.do(t, http.MethodPost, "/api/auth/register", map[string]any{
		"email": "alice@example.com", "password": "s3cret!", "name": "Alice", "role": "ADMIN",
	}, "")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", rr.Code)
	}
}

func TestLoginFailuresShareOneAnswer(t *testing.T) {
	env := newTestAPI(t)
	alice := env.seedUser(t, "alice@example.com", "s3cret!", auth.RoleUser)

	check := func(email, password string) string {
		t.Helper()
		rr := env.do(t, http.MethodPost, "/api/auth/login", map[string]any{
			"email": email, "password": password,
		}, "")
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rr.Code)
		}
		var body map[string]any
		_ = json.Unmarshal(rr.Body.Bytes(), &body)
		msg, _ := body["error"].(string)
		return msg
	}

	wrongPassword := check("alice@example.com", "nope")
	unknownEmail := check("ghost@example.com", "s3cret!")
	env.users.users[alice.ID].IsActive = false
	inactive := check("alice@example.com", "s3cret!")

	if wrongPassword != unknownEmail || unknownEmail != inactive {
		t.Fatalf("failure messages must be indistinguishable: %q %q %q", wrongPassword, unknownEmail, inactive)
	}
}

func TestAuthVerbRejections(t *testing.T) {
	env := newTestAPI(t)

	rr := env.do(t, http.MethodGet, "/api/auth/login", nil, "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
	if rr.Header().Get("Allow") != http.MethodPost {
		t.Fatalf("expected Allow header, got %q", rr.Header().Get("Allow"))
	}
}

func TestLogoutRequiresAuth(t *testing.T) {
	env := newTestAPI(t)
	rr := env.do(t, http.MethodPost, "/api/auth/logout", nil, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}
