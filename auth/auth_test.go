package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func sessionCookie(t *testing.T, uid uint) *http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	CreateSession(w, uid)
	cookies := w.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected 1 cookie got %d", len(cookies))
	}
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(sessionCookie(t, 42))
	uid, ok := ParseSession(r)
	if !ok || uid != 42 {
		t.Fatalf("expected uid 42, got %d %v", uid, ok)
	}
}

func TestParseSessionRejectsTampering(t *testing.T) {
	c := sessionCookie(t, 42)
	c.Value = strings.Replace(c.Value, "42:", "43:", 1)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := ParseSession(r); ok {
		t.Fatal("tampered cookie accepted")
	}
}

func TestParseSessionRejectsOtherSecret(t *testing.T) {
	c := sessionCookie(t, 7)
	SetSecret("rotated")
	defer SetSecret("")
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(c)
	if _, ok := ParseSession(r); ok {
		t.Fatal("cookie signed with old secret accepted")
	}
}

func TestParseSessionRejectsExpired(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: sessionCookieName, Value: sign("5:1000")})
	if _, ok := ParseSession(r); ok {
		t.Fatal("expired cookie accepted")
	}
}

func TestRequireAuth(t *testing.T) {
	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		uid, _ := UserIDFromContext(r.Context())
		if uid != 9 {
			t.Errorf("expected uid 9 in context got %d", uid)
		}
		w.WriteHeader(http.StatusNoContent)
	})))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"error":"unauthorized"`) {
		t.Fatalf("unexpected body %s", w.Body.String())
	}

	r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	r.AddCookie(sessionCookie(t, 9))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", w.Code)
	}
}

func TestRequireAuthVerifier(t *testing.T) {
	SetUserVerifier(func(_ context.Context, uid uint) bool { return uid != 9 })
	defer SetUserVerifier(nil)

	h := Middleware(RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})))
	r := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	r.AddCookie(sessionCookie(t, 9))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown user got %d", w.Code)
	}
}
