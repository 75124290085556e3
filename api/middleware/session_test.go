package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/smehta-dev/storefront-backend/pkg/auth"
	"github.com/smehta-dev/storefront-backend/pkg/config"
)

func sessionTestConfig() config.SessionConfig {
	return config.SessionConfig{
		Secret:     "secret",
		Issuer:     "storefront",
		CookieName: "sf_session",
		TTLHours:   1,
	}
}

func TestSessionMintsCookieForNewVisitor(t *testing.T) {
	cfg := sessionTestConfig()

	var captured string
	handler := Session(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if captured == "" {
		t.Fatal("expected a session id in the request context")
	}

	cookies := resp.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != cfg.CookieName {
		t.Fatalf("expected a %s cookie, got %v", cfg.CookieName, cookies)
	}
	if !cookies[0].HttpOnly {
		t.Fatal("expected the session cookie to be http-only")
	}

	sid, err := auth.ParseSessionToken(cfg, cookies[0].Value)
	if err != nil {
		t.Fatalf("parse minted cookie: %v", err)
	}
	if sid != captured {
		t.Fatalf("cookie session %q does not match context session %q", sid, captured)
	}
}

func TestSessionReusesValidCookie(t *testing.T) {
	cfg := sessionTestConfig()
	token, sid, err := auth.MintSessionToken(cfg, time.Now().UTC(), "")
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}

	var captured string
	handler := Session(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured != sid {
		t.Fatalf("expected session %q got %q", sid, captured)
	}
	if len(resp.Result().Cookies()) != 0 {
		t.Fatal("expected no replacement cookie for a valid session")
	}
}

func TestSessionReplacesInvalidCookie(t *testing.T) {
	cfg := sessionTestConfig()

	var captured string
	handler := Session(cfg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = SessionIDFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: "garbage"})
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)

	if captured == "" {
		t.Fatal("expected a fresh session id")
	}
	if len(resp.Result().Cookies()) != 1 {
		t.Fatal("expected a replacement cookie")
	}
}

func TestRequestIDGeneratesAndEchoesHeader(t *testing.T) {
	handler := RequestID(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a generated request id header")
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-123")
	resp = httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if got := resp.Header().Get(requestIDHeader); got != "req-123" {
		t.Fatalf("expected echoed request id, got %q", got)
	}
}

func TestRecovererConvertsPanicTo500(t *testing.T) {
	handler := Recoverer(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", resp.Code)
	}
}
