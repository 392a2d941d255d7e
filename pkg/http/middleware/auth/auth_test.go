package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestMiddleware(t *testing.T) {
	a := NewAuthenticator("secret", "zyntherraa")
	valid, err := a.Issue("user-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	expired, err := a.Issue("user-1", "admin", -time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	foreign, err := NewAuthenticator("other", "zyntherraa").Issue("user-1", "admin", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	noSubject, err := a.Issue("", "admin", time.Hour)
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	tests := []struct {
		name      string
		header    string
		want      int
		challenge string
	}{
		{"valid token", "Bearer " + valid, http.StatusOK, ""},
		{"missing header", "", http.StatusUnauthorized,
			`Bearer error="invalid_request", error_description="missing bearer token"`},
		{"not bearer", "Basic abc", http.StatusUnauthorized,
			`Bearer error="invalid_request", error_description="missing bearer token"`},
		{"expired", "Bearer " + expired, http.StatusUnauthorized,
			`Bearer error="invalid_token", error_description="token is expired"`},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized,
			`Bearer error="invalid_token", error_description="token signature is invalid"`},
		{"quote in token", `Bearer a"b.c.d`, http.StatusUnauthorized,
			`Bearer error="invalid_token", error_description="token is malformed"`},
		{"no subject", "Bearer " + noSubject, http.StatusUnauthorized,
			`Bearer error="invalid_token", error_description="token has no subject"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Identity
			h := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = FromContext(r.Context())
			}))

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Fatalf("status = %d, want %d", rec.Code, tt.want)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != tt.challenge {
				t.Errorf("WWW-Authenticate = %s, want %s", got, tt.challenge)
			}
			if tt.want == http.StatusOK && (got.Subject != "user-1" || got.Role != "admin") {
				t.Errorf("identity = %+v", got)
			}
		})
	}
}
