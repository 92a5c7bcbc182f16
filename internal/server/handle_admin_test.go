package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
)

func (e *testEnv) bootstrapAdmin(t *testing.T) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if err := EnsureAdmin(context.Background(), logger, e.db, "admin@storytrail.se", "hunter22"); err != nil {
		t.Fatalf("ensuring admin: %v", err)
	}
}

func (e *testEnv) adminLogin(t *testing.T, email, password string) (*httptest.ResponseRecorder, *http.Cookie) {
	t.Helper()
	body, _ := json.Marshal(AdminLoginRequest{Email: email, Password: password})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.Name == adminCookieName && c.Value != "" {
			return w, c
		}
	}
	return w, nil
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bootstrapAdmin(t)

	w, cookie := env.adminLogin(t, "admin@storytrail.se", "hunter22")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}
	if !cookie.HttpOnly {
		t.Error("expected HttpOnly cookie")
	}

	var resp AdminMeResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if resp.Email != "admin@storytrail.se" {
		t.Errorf("expected admin email, got %q", resp.Email)
	}

	// The cookie authenticates /me.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	mw := httptest.NewRecorder()
	env.router.ServeHTTP(mw, req)
	if mw.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", mw.Code)
	}
}

func TestAdminLoginBadCredentials(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bootstrapAdmin(t)

	for _, tc := range []struct{ email, password string }{
		{"admin@storytrail.se", "wrong"},
		{"nobody@storytrail.se", "hunter22"},
	} {
		w, cookie := env.adminLogin(t, tc.email, tc.password)
		if w.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", tc.email, w.Code)
		}
		if cookie != nil {
			t.Errorf("%s: expected no session cookie", tc.email)
		}
	}
}

func TestAdminLogout(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bootstrapAdmin(t)

	_, cookie := env.adminLogin(t, "admin@storytrail.se", "hunter22")
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}

	req := httptest.NewRequest(http.MethodPost, "/api/admin/logout", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("logout: expected 200, got %d", w.Code)
	}

	// The session no longer authenticates.
	req = httptest.NewRequest(http.MethodGet, "/api/admin/me", nil)
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("me after logout: expected 401, got %d", w.Code)
	}
}

func TestPlaytestToggleRequiresAdmin(t *testing.T) {
	env := newTestEnv(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings/playtest", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("get: expected 401, got %d", w.Code)
	}

	body, _ := json.Marshal(PlaytestSetting{Enabled: true})
	req = httptest.NewRequest(http.MethodPut, "/api/admin/settings/playtest", bytes.NewReader(body))
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("put: expected 401, got %d", w.Code)
	}
}

func TestPlaytestToggle(t *testing.T) {
	env := newTestEnv(t, nil)
	env.bootstrapAdmin(t)
	_, cookie := env.adminLogin(t, "admin@storytrail.se", "hunter22")
	if cookie == nil {
		t.Fatal("expected a session cookie")
	}

	// Off by default.
	req := httptest.NewRequest(http.MethodGet, "/api/admin/settings/playtest", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	var setting PlaytestSetting
	json.NewDecoder(w.Body).Decode(&setting)
	if setting.Enabled {
		t.Error("expected playtest off by default")
	}

	// Toggle on.
	body, _ := json.Marshal(PlaytestSetting{Enabled: true})
	req = httptest.NewRequest(http.MethodPut, "/api/admin/settings/playtest", bytes.NewReader(body))
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("put: expected 200, got %d", w.Code)
	}

	enabled, err := env.store.PlaytestEnabled(context.Background())
	if err != nil {
		t.Fatalf("reading flag: %v", err)
	}
	if !enabled {
		t.Error("expected playtest enabled after toggle")
	}
}

func TestEnsureAdminIdempotent(t *testing.T) {
	env := newTestEnv(t, nil)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := context.Background()

	if err := EnsureAdmin(ctx, logger, env.db, "admin@storytrail.se", "hunter22"); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}
	// A second bootstrap with a different password never replaces the account.
	if err := EnsureAdmin(ctx, logger, env.db, "admin@storytrail.se", "other-password"); err != nil {
		t.Fatalf("second bootstrap: %v", err)
	}

	var count int
	if err := env.db.QueryRow(`SELECT COUNT(*) FROM admins`).Scan(&count); err != nil {
		t.Fatalf("counting admins: %v", err)
	}
	if count != 1 {
		t.Errorf("expected one admin, got %d", count)
	}

	w, _ := env.adminLogin(t, "admin@storytrail.se", "hunter22")
	if w.Code != http.StatusOK {
		t.Errorf("original password should still work, got %d", w.Code)
	}
}
