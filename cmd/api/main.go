package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"notes-api/internal/adapters/auth/hmacjwt"
	pg "notes-api/internal/adapters/storage/postgres"
	"notes-api/internal/domain/notes"
	"notes-api/internal/platform/config"
	"notes-api/internal/platform/logger"
	"notes-api/internal/platform/metrics"
	"notes-api/internal/platform/validator"
	"notes-api/internal/router"
)

// @title Notes API
// @version 1.0
// @description CRUD de notas protegido con bearer token HS256.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer token HS256: "Bearer <token>"
func main() {
	cfg, err := config.Load(".env")
	if err != nil {
		// sin config todavía no hay logger configurado
		logger.New(logger.Options{Format: logger.FormatJSON}).Error("config error", map[string]any{"err": err})
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logger.Options{
		Level:  level,
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})
	defer func() { _ = log.Sync() }()
	log.Info("logger ready", map[string]any{"level": level.String()})

	if err := run(cfg, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	secret, insecure, err := cfg.SigningSecret()
	if err != nil {
		return err
	}
	if insecure {
		log.Warn("using insecure default JWT secret; set JWT_SECRET in production", nil)
	}

	verifier, err := hmacjwt.NewVerifier(secret, hmacjwt.WithLogger(log.With(map[string]any{"component": "auth"})))
	if err != nil {
		return err
	}

	val, err := validator.New()
	if err != nil {
		return err
	}

	var repo notes.Repository
	if cfg.DatabaseURL != "" {
		db, err := pg.Open(ctx, cfg.DatabaseURL, pg.Options{MaxOpenConns: cfg.DatabaseMaxConns})
		if err != nil {
			return err
		}
		defer db.Close()
		repo = pg.NewNotesRepo(db)
		log.Info("using postgres storage", nil)
	} else {
		log.Warn("DATABASE_URL not set; using in-memory storage (data is lost on restart)", nil)
	}

	var collector *metrics.Collector
	if cfg.MetricsEnabled {
		collector = metrics.New(cfg.AppName)
	}

	r := router.NewRouter(router.Options{
		Verifier:           verifier,
		Repo:               repo,
		Validator:          val,
		Logger:             log,
		Metrics:            collector,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
