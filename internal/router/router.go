package router

import (
	"net/http"

	mem "notes-api/internal/adapters/storage/memory"
	"notes-api/internal/domain/notes"
	"notes-api/internal/middleware"
	"notes-api/internal/platform/logger"
	"notes-api/internal/platform/metrics"
	"notes-api/internal/ports/auth"

	_ "notes-api/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Obligatorio: sin verifier todas las rutas de notas responden 401.
	Verifier auth.Verifier

	// Opcional: si viene, usa ese repo (Postgres). Si no, in-memory.
	Repo notes.Repository

	// Opcional: nil => sin validación por tags (solo title != "").
	Validator notes.InputValidator

	Logger logger.Logger

	// Opcional: nil => no se expone /metrics.
	Metrics *metrics.Collector

	// Vacío => "*".
	CORSAllowedOrigins []string
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	r := chi.NewRouter()
	r.Use(middlewares(log, opts.Metrics, opts.CORSAllowedOrigins)...)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	repo := opts.Repo
	if repo == nil {
		repo = mem.NewNotesRepo()
	}

	notesSvc := notes.NewService(repo, opts.Validator)

	// Rutas protegidas
	r.Group(func(pr chi.Router) {
		pr.Use(middleware.RequireAuth(opts.Verifier))
		notes.RegisterRoutes(pr, notesSvc, log)
	})

	return r
}

// middlewares arma la cadena global. Recover va dentro de AccessLog y
// métricas para que el 500 de un panic quede registrado.
func middlewares(log logger.Logger, m *metrics.Collector, origins []string) chi.Middlewares {
	mws := chi.Middlewares{
		middleware.RequestID,
		chimw.RealIP,
		middleware.AccessLog(log),
	}
	if m != nil {
		mws = append(mws, m.Middleware)
	}
	return append(mws,
		middleware.Recover(log),
		newCORS(origins).Handler,
		optionsNoContent,
	)
}

// optionsNoContent responde 204 a todo OPTIONS que no sea un preflight CORS
// (los preflight los corta rs/cors antes).
func optionsNoContent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func newCORS(origins []string) *cors.Cors {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{middleware.HeaderRequestID},
		MaxAge:         300,
	})
}
