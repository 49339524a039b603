package middleware

import (
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"

	"notes-api/internal/platform/logger"
)

// Recover convierte un panic en 500 JSON y lo loguea con el stack.
func Recover(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				// http.ErrAbortHandler debe seguir propagándose
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				log.Error("unhandled panic", map[string]any{
					"request_id": GetRequestID(r.Context()),
					"method":     r.Method,
					"path":       r.URL.Path,
					"panic":      fmt.Sprint(rec),
					"stack":      string(debug.Stack()),
				})

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(map[string]string{
					"error":   "Internal server error",
					"details": fmt.Sprint(rec),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
