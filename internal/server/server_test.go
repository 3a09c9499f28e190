package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/agriconnect/agriconnect/internal/config"
	"github.com/agriconnect/agriconnect/internal/logging"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.Config{
		AppName:       "AgriConnect",
		AppEnv:        "development",
		Port:          "8080",
		JWTSecret:     "test-secret",
		TokenTTL:      time.Hour,
		OTPTTL:        5 * time.Minute,
		BcryptCost:    4,
		LoginAttempts: 5,
		LoginWindow:   5 * time.Minute,
	}
	srv, err := New(cfg, nil, nil, logging.Discard())
	if err != nil {
		t.Fatalf("build server: %v", err)
	}
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) (*http.Response, map[string]any) {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := srv.app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode %s %s response: %v", method, path, err)
	}
	resp.Body.Close()
	return resp, payload
}

func TestRegisterLoginMe(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":      "Ram Patil",
		"mobile":    "9876543210",
		"password":  "Abc123",
		"role":      "farmer",
		"farm_name": "Green Acres",
		"crops":     []string{"tomato"},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, payload)
	}
	token, _ := payload["token"].(string)
	if token == "" {
		t.Fatalf("expected a token, got %v", payload)
	}

	resp, payload = doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	user, _ := payload["user"].(map[string]any)
	if user["mobile"] != "9876543210" {
		t.Fatalf("unexpected me payload: %v", payload)
	}
	if _, ok := user["password_hash"]; ok {
		t.Fatalf("password hash leaked in response: %v", user)
	}
	profile, _ := payload["profile"].(map[string]any)
	if profile["farm_name"] != "Green Acres" {
		t.Fatalf("expected farmer profile in me payload, got %v", payload)
	}

	resp, payload = doJSON(t, srv, http.MethodPost, "/api/v1/auth/login", "", map[string]any{
		"mobile":   "9876543210",
		"password": "Abc123",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	if payload["token"] == "" {
		t.Fatalf("expected a token on login, got %v", payload)
	}
}

func TestRegisterDuplicateReturnsConflict(t *testing.T) {
	srv := newTestServer(t)
	body := map[string]any{
		"name":     "Ram Patil",
		"mobile":   "9876543210",
		"password": "Abc123",
		"role":     "farmer",
	}

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	resp, payload := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %v", resp.StatusCode, payload)
	}
	if payload["success"] != false {
		t.Fatalf("expected error envelope, got %v", payload)
	}
}

func TestValidationEnvelope(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register", "", map[string]any{
		"name":     "Ram Patil",
		"mobile":   "123",
		"password": "abc",
		"role":     "farmer",
	})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %v", resp.StatusCode, payload)
	}
	if payload["success"] != false {
		t.Fatalf("expected success=false, got %v", payload)
	}
	fields, _ := payload["errors"].(map[string]any)
	if _, ok := fields["mobile"]; !ok {
		t.Fatalf("expected mobile field error, got %v", payload)
	}
}

func TestGuardRejectsMissingAndBadTokens(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %v", resp.StatusCode, payload)
	}
	if payload["message"] != "missing bearer token" {
		t.Fatalf("unexpected message: %v", payload)
	}

	resp, payload = doJSON(t, srv, http.MethodGet, "/api/v1/notifications/", "garbage-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d: %v", resp.StatusCode, payload)
	}
	if payload["message"] != "invalid token" {
		t.Fatalf("unexpected message: %v", payload)
	}
}

func TestRoleScopedProfileRoute(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, srv, http.MethodPost, "/api/v1/vendors/register", "", map[string]any{
		"name":      "Sita Stores",
		"mobile":    "8876543210",
		"password":  "Abc123",
		"shop_name": "Fresh Mart",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", resp.StatusCode, payload)
	}
	token, _ := payload["token"].(string)

	// a vendor may not hit the farmer profile route
	resp, payload = doJSON(t, srv, http.MethodPut, "/api/v1/farmers/profile", token, map[string]any{})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d: %v", resp.StatusCode, payload)
	}

	resp, payload = doJSON(t, srv, http.MethodPut, "/api/v1/vendors/profile", token, map[string]any{
		"payment_terms": "weekly",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
	prof, _ := payload["profile"].(map[string]any)
	if prof["payment_terms"] != "weekly" {
		t.Fatalf("expected updated vendor profile, got %v", payload)
	}
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	resp, payload := doJSON(t, srv, http.MethodGet, "/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", resp.StatusCode, payload)
	}
}
