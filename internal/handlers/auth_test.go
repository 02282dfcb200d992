package handlers

import (
	"net/http"
	"net/url"
	"testing"
)

func TestRegister_ReturnsPublicProjection(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := registerUser(t, r, "test@example.com", "testuser", "testpass123")
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	decodeBody(t, w, &resp)
	if resp["email"] != "test@example.com" || resp["username"] != "testuser" {
		t.Fatalf("unexpected body: %v", resp)
	}
	if _, ok := resp["id"]; !ok {
		t.Fatalf("missing id: %v", resp)
	}
	for _, forbidden := range []string{"password", "password_hash"} {
		if _, ok := resp[forbidden]; ok {
			t.Fatalf("response leaks %q: %v", forbidden, resp)
		}
	}
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	r, _, _ := newTestServer(t)

	if w := registerUser(t, r, "test@example.com", "testuser1", "testpass123"); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	w := registerUser(t, r, "test@example.com", "testuser2", "testpass123")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate email: status = %d, want 409", w.Code)
	}
}

func TestRegister_DuplicateUsernameConflicts(t *testing.T) {
	r, _, _ := newTestServer(t)

	if w := registerUser(t, r, "a@example.com", "testuser", "testpass123"); w.Code != http.StatusCreated {
		t.Fatalf("first register: %d", w.Code)
	}
	w := registerUser(t, r, "b@example.com", "testuser", "testpass123")
	if w.Code != http.StatusConflict {
		t.Fatalf("duplicate username: status = %d, want 409", w.Code)
	}
}

func TestRegister_InvalidBody(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := registerUser(t, r, "not-an-email", "testuser", "testpass123")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad email: status = %d, want 400", w.Code)
	}
	w = registerUser(t, r, "a@example.com", "", "testpass123")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty username: status = %d, want 400", w.Code)
	}
}

func TestLogin_TokenResolvesToSameUser(t *testing.T) {
	r, _, _ := newTestServer(t)
	token := userToken(t, r)

	// A guarded route accepts the token, proving the subject resolves.
	w := doJSON(t, r, http.MethodGet, "/api/sweets", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("guarded route with fresh token: status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	r, _, _ := newTestServer(t)
	registerUser(t, r, "test@example.com", "testuser", "testpass123")

	w := doForm(t, r, "/api/auth/login", url.Values{
		"username": {"testuser"},
		"password": {"wrongpassword"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d, want 401", w.Code)
	}
	w = doForm(t, r, "/api/auth/login", url.Values{
		"username": {"nobody"},
		"password": {"testpass123"},
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status = %d, want 401", w.Code)
	}
}

func TestGuard_MissingOrInvalidToken(t *testing.T) {
	r, _, _ := newTestServer(t)

	w := doJSON(t, r, http.MethodGet, "/api/sweets", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, "/api/sweets", "garbage.token.value", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: status = %d, want 401", w.Code)
	}
}

func TestGuard_VanishedSubject(t *testing.T) {
	r, users, _ := newTestServer(t)
	token := userToken(t, r)

	users.remove("testuser")

	w := doJSON(t, r, http.MethodGet, "/api/sweets", token, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("vanished subject: status = %d, want 401", w.Code)
	}
}
