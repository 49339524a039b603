package middleware

import (
	"net/http"
	"time"

	"notes-api/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// AccessLog loguea método, path, status y duración de cada request.
func AccessLog(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			log.Info("http request", map[string]any{
				"request_id":  GetRequestID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.RequestURI(),
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote_addr": r.RemoteAddr,
			})
		})
	}
}
