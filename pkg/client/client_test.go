package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"branchpulse/pkg/domain"
)

func TestSubmitSendsMultipartWithAttachment(t *testing.T) {
	var gotName, gotBranch, gotRating, gotFile string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/feedback" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		gotName = r.FormValue("name")
		gotBranch = r.FormValue("branch")
		gotRating = r.FormValue("cooking")
		if _, header, err := r.FormFile("attachment"); err == nil {
			gotFile = header.Filename
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"message": "Form submitted successfully!", "id": "fb-9"})
	}))
	defer srv.Close()

	result, err := NewClient(srv.URL).Submit(Submission{
		Branch:     "MANAMA",
		Name:       "Alice",
		Phone:      "5551234",
		Ratings:    map[string]domain.Rating{"cooking": domain.RatingExcellent},
		Attachment: &Attachment{Filename: "receipt.jpg", Content: []byte("bytes")},
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if result.ID != "fb-9" {
		t.Fatalf("result = %+v", result)
	}
	if gotName != "Alice" || gotBranch != "MANAMA" || gotRating != "excellent" || gotFile != "receipt.jpg" {
		t.Fatalf("server saw name=%q branch=%q cooking=%q file=%q", gotName, gotBranch, gotRating, gotFile)
	}
}

func TestClientSurfacesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"error": "Name is required."})
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Submit(Submission{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Status != http.StatusBadRequest || apiErr.Message != "Name is required." {
		t.Fatalf("apiErr = %+v", apiErr)
	}
}

func TestListSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok-123" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"error": "Invalid token."})
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"items": []domain.Feedback{{ID: "f1", Branch: "SITRA"}},
			"count": 1,
		})
	}))
	defer srv.Close()

	items, err := NewClient(srv.URL).List("tok-123")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 1 || items[0].ID != "f1" {
		t.Fatalf("items = %+v", items)
	}
}

func TestTokenCacheRoundTrip(t *testing.T) {
	cache := NewTokenCache(filepath.Join(t.TempDir(), "state", "token"))

	if _, err := cache.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("empty cache: got %v, want ErrNoToken", err)
	}
	if err := cache.Save("tok-123"); err != nil {
		t.Fatalf("save: %v", err)
	}
	token, err := cache.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if token != "tok-123" {
		t.Fatalf("token = %q", token)
	}
	if err := cache.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, err := cache.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("cleared cache: got %v, want ErrNoToken", err)
	}
	// Clearing again must be a no-op.
	if err := cache.Clear(); err != nil {
		t.Fatalf("double clear: %v", err)
	}
}

func TestAdminSessionSkipsNetworkWithoutToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("no request expected without a cached token")
	}))
	defer srv.Close()

	session := NewAdminSession(NewClient(srv.URL), NewTokenCache(filepath.Join(t.TempDir(), "token")))
	if _, err := session.List(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("got %v, want ErrNoToken", err)
	}
}

func TestAdminSessionEvictsRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]string{"error": "Invalid token."})
	}))
	defer srv.Close()

	cache := NewTokenCache(filepath.Join(t.TempDir(), "token"))
	if err := cache.Save("stale-token"); err != nil {
		t.Fatalf("seed cache: %v", err)
	}
	session := NewAdminSession(NewClient(srv.URL), cache)

	_, err := session.List()
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("got %v, want 401 APIError", err)
	}
	if _, err := cache.Load(); !errors.Is(err, ErrNoToken) {
		t.Fatalf("rejected token must be evicted, load returned %v", err)
	}
}

func TestAdminSessionLoginPersistsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/login":
			json.NewEncoder(w).Encode(map[string]string{"message": "Login successful!", "token": "tok-fresh"})
		case "/api/feedback":
			if r.Header.Get("Authorization") != "Bearer tok-fresh" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"error": "Invalid token."})
				return
			}
			json.NewEncoder(w).Encode(map[string]any{"items": []domain.Feedback{}, "count": 0})
		default:
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	cache := NewTokenCache(filepath.Join(t.TempDir(), "token"))
	session := NewAdminSession(NewClient(srv.URL), cache)

	if err := session.Login("admin@example.com", "hunter2hunter2"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if token, err := cache.Load(); err != nil || token != "tok-fresh" {
		t.Fatalf("cached token = %q, %v", token, err)
	}
	if _, err := session.List(); err != nil {
		t.Fatalf("list with persisted token: %v", err)
	}
}
