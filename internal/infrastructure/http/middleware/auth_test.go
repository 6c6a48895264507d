package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	infraauth "github.com/AndreFerreira5/starranja/internal/infrastructure/auth"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func newTestIssuer(t *testing.T) *infraauth.TokenService {
	t.Helper()
	svc, err := infraauth.NewTokenService(testKeyHex, 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenService: %v", err)
	}
	return svc
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthValidator(t *testing.T) {
	issuer := newTestIssuer(t)
	token, err := issuer.Generate("f47ac10b-58cc-4372-a567-0e02b2c3d479", []string{"gerente"})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	handler := NewAuthValidator(issuer).Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			t.Error("claims missing from context")
		} else if claims.UserID != "f47ac10b-58cc-4372-a567-0e02b2c3d479" {
			t.Errorf("unexpected user id %q", claims.UserID)
		}
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name   string
		header string
		want   int
	}{
		{"valid token", "Bearer " + token, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer v4.local.garbage", http.StatusUnauthorized},
		{"tampered token", "Bearer " + token[:len(token)-2], http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRoles(t *testing.T) {
	issuer := newTestIssuer(t)
	mint := func(roles ...string) string {
		token, err := issuer.Generate("f47ac10b-58cc-4372-a567-0e02b2c3d479", roles)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return token
	}

	chain := NewAuthValidator(issuer).Handler(RequireRoles("gerente", "admin")(okHandler()))

	cases := []struct {
		name  string
		token string
		want  int
	}{
		{"allowed role", mint("gerente"), http.StatusOK},
		{"one of several", mint("mecanico", "admin"), http.StatusOK},
		{"wrong role", mint("mecanico"), http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/invoices", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)
			if rec.Code != tc.want {
				t.Errorf("status = %d, want %d", rec.Code, tc.want)
			}
		})
	}
}

func TestRequireRolesWithoutClaims(t *testing.T) {
	handler := RequireRoles("admin")(okHandler())
	req := httptest.NewRequest(http.MethodGet, "/invoices", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}
