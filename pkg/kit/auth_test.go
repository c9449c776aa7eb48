package kit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTokenMaker_RoundTrip(t *testing.T) {
	tm := NewTokenMaker("secret-secret-secret-secret-1234")

	tok, err := tm.New("alice", "clerk", time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	c, err := tm.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Subject != "alice" || c.Role != "clerk" || c.Issuer != defaultIssuer {
		t.Fatalf("claims=%+v", c)
	}
}

func TestTokenMaker_Rejects(t *testing.T) {
	tm := NewTokenMaker("secret-secret-secret-secret-1234")

	expired, err := tm.New("alice", "clerk", -time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	foreign, err := NewTokenMaker("another-secret-another-secret-12").New("alice", "clerk", time.Minute)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	for name, tok := range map[string]string{
		"expired": expired,
		"foreign": foreign,
		"garbage": "not.a.token",
	} {
		if _, err := tm.Parse(tok); err != ErrInvalidToken {
			t.Fatalf("%s: err=%v want ErrInvalidToken", name, err)
		}
	}
}

func TestRequireJWT(t *testing.T) {
	tm := NewTokenMaker("secret-secret-secret-secret-1234")
	tok, _ := tm.New("alice", "clerk", time.Minute)

	var gotSubject string
	h := RequireJWT(tm)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, _ := ClaimsFromContext(r.Context())
		gotSubject = c.Subject
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		authz string
		want  int
	}{
		{"", http.StatusUnauthorized},
		{"Basic abc", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer " + tok, http.StatusNoContent},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodPost, "/products", nil)
		if tt.authz != "" {
			req.Header.Set("Authorization", tt.authz)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Fatalf("authz=%q status=%d want %d", tt.authz, rec.Code, tt.want)
		}
	}
	if gotSubject != "alice" {
		t.Fatalf("subject=%q", gotSubject)
	}
}

func TestRequireJWT_NilMakerPassesThrough(t *testing.T) {
	h := RequireJWT(nil)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/products", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status=%d", rec.Code)
	}
}

func TestRequireStaticToken(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		token string
		authz string
		want  int
	}{
		{"", "Bearer ", http.StatusForbidden},
		{"t0k", "", http.StatusForbidden},
		{"t0k", "Bearer wrong", http.StatusForbidden},
		{"t0k", "Bearer t0k", http.StatusOK},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
		if tt.authz != "" {
			req.Header.Set("Authorization", tt.authz)
		}
		rec := httptest.NewRecorder()
		RequireStaticToken(tt.token)(ok).ServeHTTP(rec, req)
		if rec.Code != tt.want {
			t.Fatalf("token=%q authz=%q status=%d want %d", tt.token, tt.authz, rec.Code, tt.want)
		}
	}
}
