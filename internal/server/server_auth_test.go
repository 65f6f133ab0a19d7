package server

import (
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"branchpulse/internal/app"
)

func TestGuardRejectionMatrix(t *testing.T) {
	srv := newTestServer(t, nil)

	expired := signExpiredToken(t, testSecret)
	wrongKey := signExpiredToken(t, "some-other-secret")

	for _, tc := range []struct {
		name    string
		token   string
		wantMsg string
	}{
		{"missing header", "", msgAccessDenied},
		{"malformed token", "not.a.jwt", msgInvalidToken},
		{"expired token", expired, msgInvalidToken},
		{"wrong signature", wrongKey, msgInvalidToken},
	} {
		req, _ := http.NewRequest(http.MethodGet, srv.URL+"/api/feedback", nil)
		if tc.token != "" {
			req.Header.Set("Authorization", "Bearer "+tc.token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("%s: expected 401, got %d", tc.name, resp.StatusCode)
		}
		var body struct {
			Error string `json:"error"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		resp.Body.Close()
		if body.Error != tc.wantMsg {
			t.Fatalf("%s: error = %q, want %q", tc.name, body.Error, tc.wantMsg)
		}
	}
}

func TestValidTokenPassesGuard(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerAndLogin(t, srv.URL)

	resp, items := listFeedback(t, srv.URL, token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", resp.StatusCode)
	}
	if len(items) != 0 {
		t.Fatalf("expected empty listing, got %d records", len(items))
	}
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	srv := newTestServer(t, nil)
	registerAndLogin(t, srv.URL)

	read := func(email, password string) (int, string) {
		resp := postJSON(t, srv.URL+"/api/admin/login", map[string]string{
			"email":    email,
			"password": password,
		})
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, string(body)
	}

	wrongPassStatus, wrongPassBody := read("admin@example.com", "not-the-password")
	unknownStatus, unknownBody := read("ghost@example.com", "whatever")

	if wrongPassStatus != http.StatusUnauthorized || unknownStatus != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassStatus, unknownStatus)
	}
	if wrongPassBody != unknownBody {
		t.Fatalf("login failure bodies differ:\n%s\n%s", wrongPassBody, unknownBody)
	}
}

func TestRegistrationDisabled(t *testing.T) {
	srv := newTestServer(t, func(cfg *app.Config) { cfg.AllowRegistration = false })

	resp := postJSON(t, srv.URL+"/api/admin/register", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter2hunter2",
	})
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 when registration disabled, got %d", resp.StatusCode)
	}
}

func TestLogoutReturnsNoContent(t *testing.T) {
	srv := newTestServer(t, nil)
	token := registerAndLogin(t, srv.URL)

	req, _ := http.NewRequest(http.MethodPost, srv.URL+"/api/admin/logout", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

// signExpiredToken builds a token with the server's claim shape whose expiry
// is in the past.
func signExpiredToken(t *testing.T, secret string) string {
	t.Helper()
	past := time.Now().UTC().Add(-10 * time.Minute)
	claims := jwt.MapClaims{
		"sub":   "adm-1",
		"email": "admin@example.com",
		"iss":   "branchpulse",
		"aud":   "branchpulse-admin",
		"iat":   past.Unix(),
		"nbf":   past.Unix(),
		"exp":   past.Add(time.Minute).Unix(),
		"jti":   "expired-token",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign expired token: %v", err)
	}
	return signed
}
