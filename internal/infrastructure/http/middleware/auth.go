package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/AndreFerreira5/starranja/internal/application/ports"
)

// AuthValidator verifies the bearer token and sets the claims in context
// (see ClaimsFromContext).
type AuthValidator struct {
	issuer ports.TokenIssuer
}

func NewAuthValidator(issuer ports.TokenIssuer) *AuthValidator {
	return &AuthValidator{issuer: issuer}
}

func (m *AuthValidator) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
			writeErr(w, http.StatusUnauthorized, "missing or invalid authorization")
			return
		}
		tokenString := strings.TrimPrefix(auth, "Bearer ")
		claims, err := m.issuer.Verify(tokenString)
		if err != nil {
			// Expired, tampered, and malformed tokens all get the same
			// response; the distinction stays in the logs.
			writeErr(w, http.StatusUnauthorized, "invalid token")
			return
		}
		ctx := WithClaims(r.Context(), claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles guards a route group: the verified claims must carry at
// least one of the allowed roles. Use after AuthValidator.
func RequireRoles(allowed ...string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := ClaimsFromContext(r.Context())
			if claims == nil {
				writeErr(w, http.StatusUnauthorized, "missing or invalid authorization")
				return
			}
			if !claims.HasAnyRole(allowed...) {
				writeErr(w, http.StatusForbidden, "insufficient role")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func writeErr(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
