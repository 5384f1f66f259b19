package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Simplici0/scenarios/internal/config"
	"github.com/Simplici0/scenarios/internal/db"
	"github.com/Simplici0/scenarios/internal/migrations"
	"github.com/Simplici0/scenarios/internal/pdftext"
	"github.com/Simplici0/scenarios/internal/store"
)

type server struct {
	store     *store.Store
	log       *zap.Logger
	uploadDir string

	// extractText turns an uploaded document into plain text. Held as a
	// field so tests can run the upload path without real PDF files.
	extractText func(path string) (string, error)
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/", s.handleRoot)
	r.Get("/api/scenarios", s.handleList)
	r.Post("/api/scenarios", s.handleCreate)
	r.Post("/api/scenarios/upload", s.handleUpload)
	r.Get("/api/scenarios/{id}", s.handleGet)
	r.Put("/api/scenarios/{id}", s.handleReplace)
	r.Delete("/api/scenarios/{id}", s.handleDelete)
	r.Post("/api/scenarios/{id}/duplicate", s.handleDuplicate)
	return r
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		logger.Fatal("failed to create upload directory", zap.Error(err))
	}

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal("failed to open database", zap.Error(err))
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := migrations.Up(ctx, database, cfg.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run database migrations", zap.Error(err))
	}

	srv := &server{
		store:       store.New(database),
		log:         logger,
		uploadDir:   cfg.UploadDir,
		extractText: pdftext.FromFile,
	}

	addr := ":" + cfg.Port
	httpServer := &http.Server{Addr: addr, Handler: srv.routes()}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("listening", zap.String("addr", addr))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server stopped", zap.Error(err))
	}

	logger.Info("server shut down gracefully")
}
