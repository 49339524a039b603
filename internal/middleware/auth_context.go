package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"notes-api/internal/ports/auth"
)

type ctxKey string

const claimsKey ctxKey = "claims"

const (
	msgMissingAuth  = "Missing or invalid Authorization header"
	msgInvalidToken = "Invalid or expired token"
)

// RequireAuth exige "Authorization: Bearer <token>" válido.
// - Sin header o con otro esquema => 401 (missing/invalid header).
// - Token rechazado por el verifier => 401 (invalid or expired), sin detalle del motivo.
// - OK => claims en el context, ver GetClaims.
// Con verifier nil todo request se rechaza.
func RequireAuth(verifier auth.Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				writeUnauthorized(w, msgMissingAuth)
				return
			}

			if verifier == nil {
				writeUnauthorized(w, msgInvalidToken)
				return
			}

			claims, err := verifier.Verify(r.Context(), token)
			if err != nil {
				writeUnauthorized(w, msgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), claimsKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return nil, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
