package backendtest

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
)

func TestHasherRoundTrip(t *testing.T) {
	h, err := NewHasher(fastHasherConfig)
	if err != nil {
		t.Fatalf("NewHasher: %v", err)
	}
	hash, err := h.Hash("correct-password-123")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=8192,t=1,p=1$") {
		t.Fatalf("unexpected PHC string %q", hash)
	}

	ok, err := h.Verify("correct-password-123", hash)
	if err != nil || !ok {
		t.Fatalf("Verify(correct) = %v, %v", ok, err)
	}
	ok, err = h.Verify("wrong-password-123", hash)
	if err != nil || ok {
		t.Fatalf("Verify(wrong) = %v, %v", ok, err)
	}
	if _, err := h.Verify("x", "$bcrypt$whatever"); err == nil {
		t.Fatal("expected malformed hash error")
	}
	if _, err := h.Hash("short"); err == nil {
		t.Fatal("expected short password error")
	}
}

func TestNewHasherRejectsWeakConfig(t *testing.T) {
	cfg := fastHasherConfig
	cfg.SaltLength = 8
	if _, err := NewHasher(cfg); err == nil {
		t.Fatal("expected salt length error")
	}
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := b.Start()
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/account/all")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	var env struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Status != http.StatusUnauthorized || env.Message != "Unauthorized" {
		t.Fatalf("unexpected envelope %+v", env)
	}

	token, err := b.Token(AdminUsername)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/account/all", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp2, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET with token: %v", err)
	}
	resp2.Body.Close()
	if resp2.StatusCode != http.StatusOK {
		t.Fatalf("status with token = %d", resp2.StatusCode)
	}
}

func TestFailOverridesRoute(t *testing.T) {
	b, err := New()
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv := b.Start()
	defer srv.Close()

	b.Fail(http.MethodPost, "/auth/login", Failure{HTTPStatus: http.StatusBadGateway, Raw: "<html>Bad Gateway</html>"})
	resp, err := http.Post(srv.URL+"/auth/login", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}

	b.Recover(http.MethodPost, "/auth/login")
	resp, err = http.Post(srv.URL+"/auth/login", "application/json",
		strings.NewReader(`{"username":"staff","password":"staff-password"}`))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status after recover = %d", resp.StatusCode)
	}
	if n := len(b.RequestsTo(http.MethodPost, "/auth/login")); n != 2 {
		t.Fatalf("recorded %d login requests, want 2", n)
	}
}
