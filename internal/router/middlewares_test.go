package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"notes-api/internal/platform/logger"
	"notes-api/internal/platform/metrics"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMiddlewares_PanicIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewFromZap(zap.New(core))
	collector := metrics.New("notes_api_test")

	r := chi.NewRouter()
	r.Use(middlewares(log, collector, nil)...)
	r.Get("/boom", func(http.ResponseWriter, *http.Request) {
		panic("kaboom")
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}

	if logs.FilterMessage("unhandled panic").Len() != 1 {
		t.Fatalf("expected panic to be logged once, got %d", logs.FilterMessage("unhandled panic").Len())
	}
	access := logs.FilterMessage("http request").All()
	if len(access) != 1 {
		t.Fatalf("expected one access log line, got %d", len(access))
	}
	if got := access[0].ContextMap()["status"]; got != int64(http.StatusInternalServerError) {
		t.Fatalf("expected access log status 500, got %v", got)
	}

	mrec := httptest.NewRecorder()
	collector.Handler().ServeHTTP(mrec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, _ := io.ReadAll(mrec.Body)
	if !strings.Contains(string(body), `route="/boom",status_code="500"`) {
		t.Fatalf("expected 500 sample for /boom, body=%s", string(body))
	}
}
